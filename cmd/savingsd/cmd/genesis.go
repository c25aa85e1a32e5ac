package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/openalpha/savings-ledger/app"
	savingstypes "github.com/openalpha/savings-ledger/x/savings/types"
)

const (
	flagAdmin          = "admin"
	flagFeeRecipient   = "fee-recipient"
	flagAllowedTokens  = "allowed-tokens"
	flagTokenFiltering = "token-filtering"
	flagGenesisFile    = "genesis"
)

// InitCmd returns the command that applies genesis to a fresh ledger
func InitCmd(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the ledger from flags or a genesis file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genesis, err := genesisFromFlags(cmd)
			if err != nil {
				return err
			}

			ledger, err := d.openApp()
			if err != nil {
				return err
			}
			defer ledger.Close()

			if err := ledger.InitChain(genesis, time.Now().UTC()); err != nil {
				return err
			}
			cmd.Printf("ledger initialized at %s\n", d.cfg.DataDir())
			return nil
		},
	}

	cmd.Flags().String(flagAdmin, "", "Administrator address")
	cmd.Flags().String(flagFeeRecipient, "", "Early withdrawal fee recipient")
	cmd.Flags().StringSlice(flagAllowedTokens, nil, "Tokens on the allowlist")
	cmd.Flags().Bool(flagTokenFiltering, false, "Enable token filtering")
	cmd.Flags().String(flagGenesisFile, "", "Genesis JSON file, overrides the other flags")
	return cmd
}

func genesisFromFlags(cmd *cobra.Command) (app.GenesisState, error) {
	if path, _ := cmd.Flags().GetString(flagGenesisFile); path != "" {
		bz, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var genesis app.GenesisState
		if err := json.Unmarshal(bz, &genesis); err != nil {
			return nil, fmt.Errorf("invalid genesis file %s: %w", path, err)
		}
		return genesis, nil
	}

	admin, _ := cmd.Flags().GetString(flagAdmin)
	if _, err := sdk.AccAddressFromBech32(admin); err != nil {
		return nil, fmt.Errorf("--%s: %w", flagAdmin, err)
	}
	feeRecipient, _ := cmd.Flags().GetString(flagFeeRecipient)
	tokens, _ := cmd.Flags().GetStringSlice(flagAllowedTokens)
	filtering, _ := cmd.Flags().GetBool(flagTokenFiltering)

	gs := savingstypes.DefaultGenesis(admin)
	gs.Admin.FeeRecipient = feeRecipient
	gs.Admin.TokenFilteringEnabled = filtering
	gs.AllowedTokens = append(gs.AllowedTokens, tokens...)
	if err := gs.Validate(); err != nil {
		return nil, err
	}

	genesis := app.NewDefaultGenesisState(admin)
	bz, err := json.Marshal(gs)
	if err != nil {
		return nil, err
	}
	genesis[savingstypes.ModuleName] = bz
	return genesis, nil
}

func genesisCommand(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Genesis subcommands",
	}
	cmd.AddCommand(ExportCmd(d))
	return cmd
}

// ExportCmd returns the command that prints the committed state as genesis
func ExportCmd(d *daemon) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the committed ledger state as genesis JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := d.openApp()
			if err != nil {
				return err
			}
			defer ledger.Close()

			if !ledger.IsInitialized() {
				return app.ErrNotInitialized
			}
			genesis, err := ledger.ExportGenesis()
			if err != nil {
				return err
			}
			bz, err := json.MarshalIndent(genesis, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
}

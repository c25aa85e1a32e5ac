package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cometbft/cometbft/crypto/tmhash"
	"github.com/cosmos/cosmos-sdk/client"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	custodytypes "github.com/openalpha/savings-ledger/x/custody/types"
)

func custodyTxCmd(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        custodytypes.ModuleName,
		Short:                      "Custody ledger transaction commands",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	cmd.AddCommand(CmdFund(d))
	return cmd
}

func custodyQueryCmd(d *daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        custodytypes.ModuleName,
		Short:                      "Querying commands for the custody ledger",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	cmd.AddCommand(CmdBalance(d), CmdAddress())
	return cmd
}

// CmdFund returns the command that credits coins to an address
func CmdFund(d *daemon) *cobra.Command {
	return &cobra.Command{
		Use:   "fund [address] [coins]",
		Short: "Credit coins to an address on the local ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return err
			}
			coins, err := sdk.ParseCoinsNormalized(args[1])
			if err != nil {
				return err
			}

			ledger, err := d.openApp()
			if err != nil {
				return err
			}
			defer ledger.Close()

			_, err = ledger.Execute(time.Now().UTC(), func(ctx sdk.Context) error {
				return ledger.CustodyKeeper.Fund(ctx, addr, coins)
			})
			if err != nil {
				return err
			}
			cmd.Printf("funded %s with %s\n", addr, coins)
			return nil
		},
	}
}

// CmdBalance returns the command that prints an address's balances
func CmdBalance(d *daemon) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the balances held by an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return err
			}

			ledger, err := d.openApp()
			if err != nil {
				return err
			}
			defer ledger.Close()

			balances := ledger.CustodyKeeper.GetAllBalances(ledger.QueryContext(), addr)
			bz, err := json.MarshalIndent(custodytypes.Balance{Address: addr.String(), Coins: balances}, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
}

// CmdAddress returns the command that derives a deterministic local address from a name
func CmdAddress() *cobra.Command {
	return &cobra.Command{
		Use:   "address [name]",
		Short: "Derive a local account address from a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(sdk.AccAddress(tmhash.SumTruncated([]byte(args[0]))).String())
			return nil
		},
	}
}

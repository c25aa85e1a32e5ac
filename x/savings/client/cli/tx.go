package cli

import (
	"strconv"
	"time"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/openalpha/savings-ledger/x/savings/keeper"
	"github.com/openalpha/savings-ledger/x/savings/types"
)

// GetTxCmd returns the transaction commands for the savings module
func GetTxCmd(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Savings module transaction commands",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdOpenPool(newClient),
		CmdUpdatePool(newClient),
		CmdWithdrawPool(newClient),
		CmdStopPool(newClient),
		CmdRestartPool(newClient),
		CmdSetAllowedToken(newClient),
		CmdSetTokenFiltering(newClient),
		CmdSetFeeRecipient(newClient),
		CmdTransferAdmin(newClient),
	)

	return cmd
}

func addTxFlags(cmd *cobra.Command) {
	cmd.Flags().String(flags.FlagFrom, "", "Address of the caller")
	cmd.Flags().String(FlagTime, "", "Block time in RFC3339 (defaults to now)")
	_ = cmd.MarkFlagRequired(flags.FlagFrom)
}

// runTx validates msg, executes handle against the ledger and prints the
// response with the emitted events
func runTx(
	newClient ClientFactory,
	cmd *cobra.Command,
	msg interface{ ValidateBasic() error },
	handle func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error),
) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	now, err := blockTime(cmd)
	if err != nil {
		return err
	}
	return withClient(newClient, cmd, func(c *Client) error {
		srv := keeper.NewMsgServerImpl(c.Keeper)
		var resp interface{}
		events, err := c.Ledger.Execute(now, func(ctx sdk.Context) error {
			var err error
			resp, err = handle(ctx, srv)
			return err
		})
		if err != nil {
			return err
		}
		res := txResult{Response: resp, Events: events}
		if c.Codec != nil {
			if res.Msg, err = c.Codec.MarshalJSON(msg); err != nil {
				return err
			}
		}
		return printJSON(cmd, res)
	})
}

// CmdOpenPool returns the command to open a saving pool
func CmdOpenPool(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [token-id] [amount]",
		Short: "Open a saving pool and move amount into custody",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			lockType, _ := cmd.Flags().GetString(FlagLockType)
			duration, _ := cmd.Flags().GetDuration(FlagDuration)
			reason, _ := cmd.Flags().GetString(FlagReason)

			msg := &types.MsgOpenPool{
				Saver:           from,
				TokenID:         args[0],
				Amount:          args[1],
				Reason:          reason,
				LockType:        lockType,
				DurationSeconds: int64(duration / time.Second),
			}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.OpenPool(ctx, msg)
			})
		},
	}

	cmd.Flags().String(FlagLockType, types.LockTypeFlexible.String(), "FLEXIBLE, LOCK or STRICTLOCK")
	cmd.Flags().Duration(FlagDuration, 0, "Saving period, required for LOCK and STRICTLOCK")
	cmd.Flags().String(FlagReason, "", "Free-form saving goal")
	addTxFlags(cmd)
	return cmd
}

// CmdUpdatePool returns the command to add funds to a pool
func CmdUpdatePool(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [pool-id] [amount]",
		Short: "Add funds to an active pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			msg := &types.MsgUpdatePool{Saver: from, PoolID: args[0], Amount: args[1]}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.UpdatePool(ctx, msg)
			})
		},
	}

	addTxFlags(cmd)
	return cmd
}

// CmdWithdrawPool returns the command to withdraw a pool
func CmdWithdrawPool(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw [pool-id]",
		Short: "Withdraw a pool, paying the early withdrawal fee if applicable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			msg := &types.MsgWithdrawPool{Saver: from, PoolID: args[0]}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.WithdrawPool(ctx, msg)
			})
		},
	}

	addTxFlags(cmd)
	return cmd
}

// CmdStopPool returns the command to pause a pool
func CmdStopPool(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop [pool-id]",
		Short: "Pause an active pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			msg := &types.MsgStopPool{Saver: from, PoolID: args[0]}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.StopPool(ctx, msg)
			})
		},
	}

	addTxFlags(cmd)
	return cmd
}

// CmdRestartPool returns the command to resume a stopped pool
func CmdRestartPool(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart [pool-id]",
		Short: "Resume a stopped pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			msg := &types.MsgRestartPool{Saver: from, PoolID: args[0]}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.RestartPool(ctx, msg)
			})
		},
	}

	addTxFlags(cmd)
	return cmd
}

// CmdSetAllowedToken returns the command to edit the token allowlist
func CmdSetAllowedToken(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-allowed-token [token-id] [true|false]",
		Short: "Allow or disallow a token (administrator only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			allowed, err := strconv.ParseBool(args[1])
			if err != nil {
				return err
			}
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			msg := &types.MsgSetAllowedToken{Authority: from, TokenID: args[0], Allowed: allowed}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.SetAllowedToken(ctx, msg)
			})
		},
	}

	addTxFlags(cmd)
	return cmd
}

// CmdSetTokenFiltering returns the command to toggle token filtering
func CmdSetTokenFiltering(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-token-filtering [true|false]",
		Short: "Enable or disable token filtering (administrator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				return err
			}
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			msg := &types.MsgSetTokenFiltering{Authority: from, Enabled: enabled}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.SetTokenFiltering(ctx, msg)
			})
		},
	}

	addTxFlags(cmd)
	return cmd
}

// CmdSetFeeRecipient returns the command to set the fee recipient
func CmdSetFeeRecipient(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-fee-recipient [address]",
		Short: "Set the early withdrawal fee recipient (administrator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			msg := &types.MsgSetFeeRecipient{Authority: from, Recipient: args[0]}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.SetFeeRecipient(ctx, msg)
			})
		},
	}

	addTxFlags(cmd)
	return cmd
}

// CmdTransferAdmin returns the command to hand administration to another address
func CmdTransferAdmin(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer-admin [address]",
		Short: "Hand administration to another address (administrator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString(flags.FlagFrom)
			msg := &types.MsgTransferAdmin{Authority: from, NewAdmin: args[0]}
			return runTx(newClient, cmd, msg, func(ctx sdk.Context, srv *keeper.MsgServer) (interface{}, error) {
				return srv.TransferAdmin(ctx, msg)
			})
		},
	}

	addTxFlags(cmd)
	return cmd
}

package cli

import (
	"strconv"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/spf13/cobra"

	"github.com/openalpha/savings-ledger/x/savings/keeper"
	"github.com/openalpha/savings-ledger/x/savings/types"
)

// GetQueryCmd returns the query commands for the savings module
func GetQueryCmd(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the savings module",
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryPool(newClient),
		CmdQueryPools(newClient),
		CmdQueryPoolID(newClient),
		CmdQueryCount(newClient),
		CmdQueryAdmin(newClient),
		CmdQueryTokenAllowed(newClient),
	)

	return cmd
}

func runQuery(newClient ClientFactory, cmd *cobra.Command, fn func(c *Client, q *keeper.QueryServer) (interface{}, error)) error {
	return withClient(newClient, cmd, func(c *Client) error {
		res, err := fn(c, keeper.NewQueryServerImpl(c.Keeper))
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	})
}

// CmdQueryPool returns the command to query a pool by id
func CmdQueryPool(newClient ClientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "pool [pool-id]",
		Short: "Query a pool by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(newClient, cmd, func(c *Client, q *keeper.QueryServer) (interface{}, error) {
				return q.Pool(c.Ledger.QueryContext(), args[0])
			})
		},
	}
}

// CmdQueryPools returns the command to list a saver's pools
func CmdQueryPools(newClient ClientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools [saver]",
		Short: "List a saver's pools in index order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, _ := cmd.Flags().GetUint64(FlagOffset)
			limit, _ := cmd.Flags().GetUint64(FlagLimit)
			return runQuery(newClient, cmd, func(c *Client, q *keeper.QueryServer) (interface{}, error) {
				pools, total, err := q.SaverPools(c.Ledger.QueryContext(), args[0], offset, limit)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"pools": pools, "total": total}, nil
			})
		},
	}

	cmd.Flags().Uint64(FlagOffset, 0, "Index of the first pool")
	cmd.Flags().Uint64(FlagLimit, 100, "Maximum number of pools, 0 for all")
	return cmd
}

// CmdQueryPoolID returns the command to resolve a saver's pool by position
func CmdQueryPoolID(newClient ClientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "pool-id [saver] [index]",
		Short: "Query the id of the pool at index of a saver's list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}
			return runQuery(newClient, cmd, func(c *Client, q *keeper.QueryServer) (interface{}, error) {
				poolID, err := q.SaverPoolID(c.Ledger.QueryContext(), args[0], index)
				if err != nil {
					return nil, err
				}
				return map[string]string{"pool_id": poolID}, nil
			})
		},
	}
}

// CmdQueryCount returns the command to count pools, globally or for one saver
func CmdQueryCount(newClient ClientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "count [saver]",
		Short: "Count live pools, optionally for one saver",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(newClient, cmd, func(c *Client, q *keeper.QueryServer) (interface{}, error) {
				ctx := c.Ledger.QueryContext()
				if len(args) == 1 {
					return map[string]uint64{"count": c.Keeper.GetUserPoolCount(ctx, args[0])}, nil
				}
				return map[string]uint64{"count": q.PoolCount(ctx)}, nil
			})
		},
	}
}

// CmdQueryAdmin returns the command to show the admin configuration
func CmdQueryAdmin(newClient ClientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Show the administrator, fee recipient and token allowlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(newClient, cmd, func(c *Client, q *keeper.QueryServer) (interface{}, error) {
				cfg, tokens, err := q.Admin(c.Ledger.QueryContext())
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"config": cfg, "allowed_tokens": tokens}, nil
			})
		},
	}
}

// CmdQueryTokenAllowed returns the command to check a token against the allowlist
func CmdQueryTokenAllowed(newClient ClientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "token-allowed [token-id]",
		Short: "Check whether a token may be saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(newClient, cmd, func(c *Client, q *keeper.QueryServer) (interface{}, error) {
				allowed, err := q.TokenAllowed(c.Ledger.QueryContext(), args[0])
				if err != nil {
					return nil, err
				}
				return map[string]bool{"allowed": allowed}, nil
			})
		},
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/openalpha/savings-ledger/x/savings/keeper"
)

const (
	FlagLockType = "lock-type"
	FlagDuration = "duration"
	FlagReason   = "reason"
	FlagTime     = "time"
	FlagOffset   = "offset"
	FlagLimit    = "limit"
)

// Ledger runs operations against committed state
type Ledger interface {
	Execute(now time.Time, fn func(ctx sdk.Context) error) (sdk.Events, error)
	QueryContext() sdk.Context
}

// Client is what the savings commands operate on. Codec, when set, encodes
// executed msgs as amino JSON in the tx output.
type Client struct {
	Ledger Ledger
	Keeper *keeper.Keeper
	Codec  *codec.LegacyAmino
	Close  func() error
}

// ClientFactory opens a client for cmd
type ClientFactory func(cmd *cobra.Command) (*Client, error)

func withClient(newClient ClientFactory, cmd *cobra.Command, fn func(c *Client) error) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	if c.Close != nil {
		defer c.Close()
	}
	return fn(c)
}

// blockTime returns the --time flag or the current time
func blockTime(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString(FlagTime)
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

type txResult struct {
	Msg      json.RawMessage `json:"msg,omitempty"`
	Response interface{}     `json:"response"`
	Events   sdk.Events      `json:"events,omitempty"`
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}

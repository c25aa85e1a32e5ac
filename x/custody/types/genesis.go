package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Balance is the set of coins held by one address
type Balance struct {
	Address string    `json:"address"`
	Coins   sdk.Coins `json:"coins"`
}

// GenesisState is the exported state of the custody ledger
type GenesisState struct {
	Balances []Balance `json:"balances"`
}

// DefaultGenesis returns an empty ledger
func DefaultGenesis() *GenesisState {
	return &GenesisState{Balances: []Balance{}}
}

// Validate performs stateless validation of the genesis state
func (gs GenesisState) Validate() error {
	seen := make(map[string]struct{}, len(gs.Balances))
	for _, b := range gs.Balances {
		if _, err := sdk.AccAddressFromBech32(b.Address); err != nil {
			return ErrInvalidAddress.Wrapf("%s: %v", b.Address, err)
		}
		if _, dup := seen[b.Address]; dup {
			return ErrInvalidAddress.Wrapf("duplicate balance for %s", b.Address)
		}
		seen[b.Address] = struct{}{}
		if !b.Coins.IsValid() {
			return ErrInvalidCoins.Wrapf("%s: %s", b.Address, b.Coins)
		}
	}
	return nil
}

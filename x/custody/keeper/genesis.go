package keeper

import (
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/custody/types"
)

// InitGenesis loads balances into the store
func (k *Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	for _, b := range gs.Balances {
		addr, err := sdk.AccAddressFromBech32(b.Address)
		if err != nil {
			return types.ErrInvalidAddress.Wrap(err.Error())
		}
		k.addCoins(ctx, addr, b.Coins)
	}
	return nil
}

// ExportGenesis walks every stored balance. Module accounts are exported
// like any other address.
func (k *Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.BalanceKeyPrefix)
	defer iterator.Close()

	gs := types.DefaultGenesis()
	for ; iterator.Valid(); iterator.Next() {
		addr, denom, ok := types.SplitBalanceKey(iterator.Key())
		if !ok {
			k.logger.Error("Skipping malformed balance key", "key", iterator.Key())
			continue
		}
		amount, ok := math.NewIntFromString(string(iterator.Value()))
		if !ok {
			k.logger.Error("Skipping corrupted balance record", "address", addr.String(), "denom", denom)
			continue
		}
		coin := sdk.NewCoin(denom, amount)

		n := len(gs.Balances)
		if n > 0 && gs.Balances[n-1].Address == addr.String() {
			gs.Balances[n-1].Coins = gs.Balances[n-1].Coins.Add(coin)
			continue
		}
		gs.Balances = append(gs.Balances, types.Balance{Address: addr.String(), Coins: sdk.NewCoins(coin)})
	}
	return gs
}

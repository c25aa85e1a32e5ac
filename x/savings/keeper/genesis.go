package keeper

import (
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

// InitGenesis loads gs into the store, rebuilding saver indexes and counters
func (k *Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}

	k.SetAdminConfig(ctx, gs.Admin)
	for _, token := range gs.AllowedTokens {
		k.setTokenAllowed(ctx, token, true)
	}
	for i := range gs.Pools {
		pool := gs.Pools[i]
		if k.HasPool(ctx, pool.PoolID) {
			return types.ErrPoolAlreadyExists.Wrapf("pool %s", pool.PoolID)
		}
		k.setPool(ctx, &pool)
		k.appendIndex(ctx, pool.Saver, pool.PoolID)
	}
	for _, seq := range gs.Sequences {
		k.setUint64(ctx, types.SaverSequenceKey(seq.Saver), seq.Sequence)
	}

	k.logger.Info("Savings genesis initialized",
		"pools", len(gs.Pools),
		"allowed_tokens", len(gs.AllowedTokens),
	)
	return nil
}

// ExportGenesis dumps the module state. Pools are emitted per saver in index
// order so that InitGenesis reproduces identical positions.
func (k *Keeper) ExportGenesis(ctx sdk.Context) (*types.GenesisState, error) {
	cfg, err := k.GetAdminConfig(ctx)
	if err != nil {
		return nil, err
	}
	gs := &types.GenesisState{
		Admin:         cfg,
		AllowedTokens: k.GetAllowedTokens(ctx),
		Pools:         []types.SavingPool{},
		Sequences:     []types.SaverSequence{},
	}
	if gs.AllowedTokens == nil {
		gs.AllowedTokens = []string{}
	}

	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.SaverSequenceKeyPrefix)
	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		saver := string(iterator.Key()[len(types.SaverSequenceKeyPrefix):])
		gs.Sequences = append(gs.Sequences, types.SaverSequence{
			Saver:    saver,
			Sequence: sdk.BigEndianToUint64(iterator.Value()),
		})

		pools, err := k.GetUserPools(ctx, saver)
		if err != nil {
			return nil, err
		}
		for _, pool := range pools {
			gs.Pools = append(gs.Pools, *pool)
		}
	}
	return gs, nil
}

package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

// QueryServer defines the savings QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// Pool returns a pool by ID
func (q *QueryServer) Pool(ctx context.Context, poolID string) (*types.SavingPool, error) {
	return q.keeper.GetPool(sdk.UnwrapSDKContext(ctx), poolID)
}

// SaverPools returns a page of the saver's pools in index order along with the saver's pool count
func (q *QueryServer) SaverPools(ctx context.Context, saver string, offset, limit uint64) ([]*types.SavingPool, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	total := q.keeper.GetUserPoolCount(sdkCtx, saver)

	if offset >= total {
		return []*types.SavingPool{}, total, nil
	}
	end := total
	if limit != 0 && limit < total-offset {
		end = offset + limit
	}

	pools := make([]*types.SavingPool, 0, end-offset)
	for i := offset; i < end; i++ {
		poolID, err := q.keeper.GetUserPoolIDByIndex(sdkCtx, saver, i)
		if err != nil {
			return nil, total, err
		}
		pool, err := q.keeper.GetPool(sdkCtx, poolID)
		if err != nil {
			return nil, total, types.ErrIndexCorrupted.Wrapf("index entry %s: %v", poolID, err)
		}
		pools = append(pools, pool)
	}
	return pools, total, nil
}

// PoolCount returns the number of live pools
func (q *QueryServer) PoolCount(ctx context.Context) uint64 {
	return q.keeper.GetPoolCount(sdk.UnwrapSDKContext(ctx))
}

// SaverPoolID returns the pool id at position index of the saver's list
func (q *QueryServer) SaverPoolID(ctx context.Context, saver string, index uint64) (string, error) {
	return q.keeper.GetUserPoolIDByIndex(sdk.UnwrapSDKContext(ctx), saver, index)
}

// Admin returns the admin configuration and the allowlist
func (q *QueryServer) Admin(ctx context.Context) (types.AdminConfig, []string, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	cfg, err := q.keeper.GetAdminConfig(sdkCtx)
	if err != nil {
		return types.AdminConfig{}, nil, err
	}
	return cfg, q.keeper.GetAllowedTokens(sdkCtx), nil
}

// TokenAllowed reports whether tokenID may be saved
func (q *QueryServer) TokenAllowed(ctx context.Context, tokenID string) (bool, error) {
	return q.keeper.IsTokenAllowed(sdk.UnwrapSDKContext(ctx), tokenID)
}

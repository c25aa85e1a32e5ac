package keeper

import (
	"encoding/json"
	"math"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

// ============ Pool Records ============

// GetPool retrieves a pool by id
func (k *Keeper) GetPool(ctx sdk.Context, poolID string) (*types.SavingPool, error) {
	var pool types.SavingPool
	found, err := k.getJSON(ctx, types.PoolKey(poolID), &pool)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.ErrPoolNotFound.Wrapf("pool %s", poolID)
	}
	return &pool, nil
}

// HasPool reports whether a pool record exists
func (k *Keeper) HasPool(ctx sdk.Context, poolID string) bool {
	return k.GetStore(ctx).Has(types.PoolKey(poolID))
}

func (k *Keeper) setPool(ctx sdk.Context, pool *types.SavingPool) {
	k.setJSON(ctx, types.PoolKey(pool.PoolID), pool)
}

// IteratePools walks all pool records in key order until cb returns true
func (k *Keeper) IteratePools(ctx sdk.Context, cb func(pool *types.SavingPool) (stop bool)) error {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.PoolKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var pool types.SavingPool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			return types.ErrCorruptedRecord.Wrapf("key %x: %v", iterator.Key(), err)
		}
		if cb(&pool) {
			break
		}
	}
	return nil
}

// ============ Counters ============

// GetPoolCount returns the number of live pools
func (k *Keeper) GetPoolCount(ctx sdk.Context) uint64 {
	return k.getUint64(ctx, types.TotalPoolsKey)
}

// GetUserPoolCount returns the number of live pools owned by saver
func (k *Keeper) GetUserPoolCount(ctx sdk.Context, saver string) uint64 {
	return k.getUint64(ctx, types.SaverCountKey(saver))
}

// GetSaverSequence returns how many pools saver has ever opened
func (k *Keeper) GetSaverSequence(ctx sdk.Context, saver string) uint64 {
	return k.getUint64(ctx, types.SaverSequenceKey(saver))
}

// ============ Saver Index ============

// GetUserPoolIDByIndex returns the pool id at position i of the saver's list
func (k *Keeper) GetUserPoolIDByIndex(ctx sdk.Context, saver string, i uint64) (string, error) {
	count := k.GetUserPoolCount(ctx, saver)
	if i >= count {
		return "", types.ErrIndexOutOfBounds.Wrapf("index %d, count %d", i, count)
	}
	bz := k.GetStore(ctx).Get(types.SaverIndexKey(saver, i))
	if bz == nil {
		return "", types.ErrIndexCorrupted.Wrapf("saver %s has no entry at %d", saver, i)
	}
	return string(bz), nil
}

// GetUserPools returns the saver's pools in index order
func (k *Keeper) GetUserPools(ctx sdk.Context, saver string) ([]*types.SavingPool, error) {
	count := k.GetUserPoolCount(ctx, saver)
	pools := make([]*types.SavingPool, 0, count)
	for i := uint64(0); i < count; i++ {
		poolID, err := k.GetUserPoolIDByIndex(ctx, saver, i)
		if err != nil {
			return nil, err
		}
		pool, err := k.GetPool(ctx, poolID)
		if err != nil {
			return nil, types.ErrIndexCorrupted.Wrapf("index entry %s: %v", poolID, err)
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

func (k *Keeper) positionOf(ctx sdk.Context, saver, poolID string) (uint64, bool) {
	bz := k.GetStore(ctx).Get(types.SaverPositionKey(saver, poolID))
	if bz == nil {
		return 0, false
	}
	return sdk.BigEndianToUint64(bz), true
}

func (k *Keeper) putIndexEntry(ctx sdk.Context, saver string, position uint64, poolID string) {
	store := k.GetStore(ctx)
	store.Set(types.SaverIndexKey(saver, position), []byte(poolID))
	store.Set(types.SaverPositionKey(saver, poolID), sdk.Uint64ToBigEndian(position))
}

// appendIndex pushes poolID at the end of the saver's list and bumps both counters
func (k *Keeper) appendIndex(ctx sdk.Context, saver, poolID string) {
	count := k.GetUserPoolCount(ctx, saver)
	k.putIndexEntry(ctx, saver, count, poolID)
	k.setUint64(ctx, types.SaverCountKey(saver), count+1)
	k.setUint64(ctx, types.TotalPoolsKey, k.GetPoolCount(ctx)+1)
}

// ============ Registry Operations ============

// CreatePool validates the request, derives a fresh pool id and inserts the
// record into the registry and the saver's index. The store is untouched on failure.
func (k *Keeper) CreatePool(
	ctx sdk.Context,
	saver, tokenID string,
	amount uint64,
	reason string,
	lockType types.LockType,
	duration, now int64,
) (*types.SavingPool, error) {
	if amount == 0 {
		return nil, types.ErrInvalidAmount
	}
	if !lockType.IsValid() {
		return nil, types.ErrInvalidLockType.Wrapf("%d", int32(lockType))
	}
	if lockType.RequiresDuration() {
		if duration <= 0 {
			return nil, types.ErrMissingDuration.Wrapf("lock type %s", lockType)
		}
	} else {
		duration = 0
	}

	sequence := k.GetSaverSequence(ctx, saver)
	poolID := k.deriveID(saver, sequence, now)
	if k.HasPool(ctx, poolID) {
		return nil, types.ErrPoolAlreadyExists.Wrapf("pool %s", poolID)
	}

	pool := &types.SavingPool{
		Saver:       saver,
		TokenID:     tokenID,
		Reason:      reason,
		PoolID:      poolID,
		StartDate:   now,
		Duration:    duration,
		AmountSaved: amount,
		LockType:    lockType,
	}
	k.setPool(ctx, pool)
	k.appendIndex(ctx, saver, poolID)
	k.setUint64(ctx, types.SaverSequenceKey(saver), sequence+1)

	return pool, nil
}

// AppendFunds increases the balance of an active pool
func (k *Keeper) AppendFunds(ctx sdk.Context, poolID string, amount uint64) (*types.SavingPool, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool.IsStopped {
		return nil, types.ErrPoolStopped.Wrapf("pool %s", poolID)
	}
	if amount == 0 {
		return nil, types.ErrInvalidAmount
	}
	if pool.AmountSaved > math.MaxUint64-amount {
		return nil, types.ErrAmountOverflow.Wrapf("pool %s", poolID)
	}

	pool.AmountSaved += amount
	k.setPool(ctx, pool)
	return pool, nil
}

// RemovePool deletes a pool record and swap-removes it from the saver's index.
// An id missing from the index means the registry is corrupted.
func (k *Keeper) RemovePool(ctx sdk.Context, saver, poolID string) error {
	position, ok := k.positionOf(ctx, saver, poolID)
	if !ok {
		return types.ErrIndexCorrupted.Wrapf("pool %s not indexed for %s", poolID, saver)
	}
	count := k.GetUserPoolCount(ctx, saver)
	total := k.GetPoolCount(ctx)
	if count == 0 || position >= count || total == 0 {
		return types.ErrIndexCorrupted.Wrapf("pool %s at %d, count %d, total %d", poolID, position, count, total)
	}

	store := k.GetStore(ctx)
	last := count - 1
	if position != last {
		lastID := store.Get(types.SaverIndexKey(saver, last))
		if lastID == nil {
			return types.ErrIndexCorrupted.Wrapf("saver %s has no entry at %d", saver, last)
		}
		k.putIndexEntry(ctx, saver, position, string(lastID))
	}
	store.Delete(types.SaverIndexKey(saver, last))
	store.Delete(types.SaverPositionKey(saver, poolID))
	store.Delete(types.PoolKey(poolID))

	k.setUint64(ctx, types.SaverCountKey(saver), last)
	k.setUint64(ctx, types.TotalPoolsKey, total-1)
	return nil
}

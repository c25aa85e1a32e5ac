package keeper

import (
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

// RegisterInvariants registers the savings invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k *Keeper) {
	ir.RegisterRoute(types.ModuleName, "total-pools", TotalPoolsInvariant(k))
	ir.RegisterRoute(types.ModuleName, "index-consistency", IndexConsistencyInvariant(k))
}

// AllInvariants runs every savings invariant
func AllInvariants(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		if res, stop := TotalPoolsInvariant(k)(ctx); stop {
			return res, stop
		}
		return IndexConsistencyInvariant(k)(ctx)
	}
}

// TotalPoolsInvariant checks that the global counter equals the sum of all
// saver counts and the number of stored pool records
func TotalPoolsInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var sum uint64
		iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.SaverCountKeyPrefix)
		for ; iterator.Valid(); iterator.Next() {
			sum += sdk.BigEndianToUint64(iterator.Value())
		}
		iterator.Close()

		var records uint64
		err := k.IteratePools(ctx, func(*types.SavingPool) bool {
			records++
			return false
		})

		total := k.GetPoolCount(ctx)
		broken := err != nil || total != sum || total != records
		msg := fmt.Sprintf("total pools %d, sum of saver counts %d, pool records %d", total, sum, records)
		if err != nil {
			msg += fmt.Sprintf(", error: %v", err)
		}
		return sdk.FormatInvariant(types.ModuleName, "total-pools", msg), broken
	}
}

// IndexConsistencyInvariant checks that every pool is indexed exactly once,
// by its own saver, at a position that maps back to it, and that every index
// slot resolves to a stored pool of that saver
func IndexConsistencyInvariant(k *Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var problems []string
		err := k.IteratePools(ctx, func(pool *types.SavingPool) bool {
			position, ok := k.positionOf(ctx, pool.Saver, pool.PoolID)
			if !ok {
				problems = append(problems, fmt.Sprintf("pool %s not indexed", pool.PoolID))
				return false
			}
			if position >= k.GetUserPoolCount(ctx, pool.Saver) {
				problems = append(problems, fmt.Sprintf("pool %s at %d beyond saver count", pool.PoolID, position))
				return false
			}
			bz := k.GetStore(ctx).Get(types.SaverIndexKey(pool.Saver, position))
			if string(bz) != pool.PoolID {
				problems = append(problems, fmt.Sprintf("slot %d of %s holds %q, want %s", position, pool.Saver, bz, pool.PoolID))
			}
			return false
		})
		if err != nil {
			problems = append(problems, err.Error())
		}

		// slot keys are prefix | saver | ':' | position(8)
		iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.SaverIndexKeyPrefix)
		for ; iterator.Valid(); iterator.Next() {
			key := iterator.Key()
			if len(key) < len(types.SaverIndexKeyPrefix)+9 {
				problems = append(problems, fmt.Sprintf("malformed index key %x", key))
				continue
			}
			saver := string(key[len(types.SaverIndexKeyPrefix) : len(key)-9])
			poolID := string(iterator.Value())
			pool, err := k.GetPool(ctx, poolID)
			if err != nil {
				problems = append(problems, fmt.Sprintf("slot of %s holds unknown pool %s", saver, poolID))
				continue
			}
			if pool.Saver != saver {
				problems = append(problems, fmt.Sprintf("slot of %s holds pool %s of %s", saver, poolID, pool.Saver))
			}
		}
		iterator.Close()

		msg := fmt.Sprintf("%d problems found", len(problems))
		for _, p := range problems {
			msg += "\n\t" + p
		}
		return sdk.FormatInvariant(types.ModuleName, "index-consistency", msg), len(problems) > 0
	}
}

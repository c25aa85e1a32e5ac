package keeper

import (
	"encoding/json"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

// Metrics receives notifications about committed savings operations
type Metrics interface {
	RecordPoolOpened(tokenID, lockType string, amount uint64)
	RecordPoolUpdated(tokenID string, amount uint64)
	RecordPoolWithdrawn(tokenID, lockType string, released, fee uint64)
	RecordOperationError(operation, kind string)
}

// Keeper manages the savings module state
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	deriveID   types.IDDeriver
	metrics    Metrics
	logger     log.Logger
	authority  string
}

// NewKeeper creates a new savings keeper. authority is the administrator used
// until an admin configuration is stored.
func NewKeeper(
	storeKey storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		storeKey:   storeKey,
		bankKeeper: bankKeeper,
		deriveID:   types.DerivePoolID,
		authority:  authority,
		logger:     logger.With("module", "x/"+types.ModuleName),
	}
}

// SetMetrics installs a metrics sink
func (k *Keeper) SetMetrics(m Metrics) {
	k.metrics = m
}

// SetIDDeriver replaces the pool id derivation function
func (k *Keeper) SetIDDeriver(fn types.IDDeriver) {
	k.deriveID = fn
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

func (k *Keeper) getJSON(ctx sdk.Context, key []byte, v interface{}) (bool, error) {
	bz := k.GetStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return true, types.ErrCorruptedRecord.Wrapf("key %x: %v", key, err)
	}
	return true, nil
}

func (k *Keeper) setJSON(ctx sdk.Context, key []byte, v interface{}) {
	bz, err := json.Marshal(v)
	if err != nil {
		// all stored types marshal without error
		panic(err)
	}
	k.GetStore(ctx).Set(key, bz)
}

func (k *Keeper) getUint64(ctx sdk.Context, key []byte) uint64 {
	bz := k.GetStore(ctx).Get(key)
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

func (k *Keeper) setUint64(ctx sdk.Context, key []byte, v uint64) {
	store := k.GetStore(ctx)
	if v == 0 {
		store.Delete(key)
		return
	}
	store.Set(key, sdk.Uint64ToBigEndian(v))
}

func (k *Keeper) recordError(operation string, err error) {
	if k.metrics != nil {
		k.metrics.RecordOperationError(operation, string(types.ErrorKind(err)))
	}
}

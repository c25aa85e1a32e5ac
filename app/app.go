package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/store"
	storemetrics "cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/metrics"
	custodykeeper "github.com/openalpha/savings-ledger/x/custody/keeper"
	custodytypes "github.com/openalpha/savings-ledger/x/custody/types"
	"github.com/openalpha/savings-ledger/x/savings"
	savingskeeper "github.com/openalpha/savings-ledger/x/savings/keeper"
	savingstypes "github.com/openalpha/savings-ledger/x/savings/types"
)

const (
	Name = "savingsd"
)

var (
	// DefaultNodeHome default home directories for the ledger daemon
	DefaultNodeHome string

	// ErrNotInitialized is returned when operating on a ledger without genesis
	ErrNotInitialized = errorsmod.Register(Name, 1, "ledger not initialized")
	// ErrAlreadyInitialized is returned when genesis is applied twice
	ErrAlreadyInitialized = errorsmod.Register(Name, 2, "ledger already initialized")
	// ErrInvariantBroken is returned when a committed operation breaks an invariant
	ErrInvariantBroken = errorsmod.Register(Name, 3, "invariant broken")
)

func init() {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	DefaultNodeHome = filepath.Join(userHomeDir, ".savingsd")
}

// GenesisState is the genesis of every module keyed by module name
type GenesisState map[string]json.RawMessage

// NewDefaultGenesisState returns the default genesis administered by admin
func NewDefaultGenesisState(admin string) GenesisState {
	custodyGenesis, _ := json.Marshal(custodytypes.DefaultGenesis())
	return GenesisState{
		savingstypes.ModuleName: savings.AppModuleBasic{}.DefaultGenesis(admin),
		custodytypes.ModuleName: custodyGenesis,
	}
}

// App is a single-process savings ledger over a commit multistore. Every
// operation runs against a branch of the store that is written and committed
// only when the operation succeeds.
type App struct {
	logger  log.Logger
	db      dbm.DB
	cms     storetypes.CommitMultiStore
	chainID string

	legacyAmino *codec.LegacyAmino

	// Keys
	keys map[string]*storetypes.KVStoreKey

	// Keepers
	CustodyKeeper *custodykeeper.Keeper
	SavingsKeeper *savingskeeper.Keeper

	SavingsModule savings.AppModule

	metrics         *metrics.Collector
	pending         *pendingMetrics
	checkInvariants bool
	invariants      invariantRegistry

	mu sync.Mutex
}

// OpenDB opens the database selected by cfg
func OpenDB(cfg Config) (dbm.DB, error) {
	if cfg.DBBackend == BackendMemDB {
		return dbm.NewMemDB(), nil
	}
	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return nil, err
	}
	return dbm.NewDB("ledger", dbm.BackendType(cfg.DBBackend), cfg.DataDir())
}

// NewApp returns a new App instance. collector may be nil.
func NewApp(logger log.Logger, db dbm.DB, cfg Config, collector *metrics.Collector) (*App, error) {
	keys := storetypes.NewKVStoreKeys(savingstypes.StoreKey, custodytypes.StoreKey)

	cms := store.NewCommitMultiStore(db, logger, storemetrics.NewNoOpMetrics())
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, errorsmod.Wrap(err, "failed to load store")
	}

	app := &App{
		logger:          logger,
		db:              db,
		cms:             cms,
		chainID:         cfg.ChainID,
		legacyAmino:     codec.NewLegacyAmino(),
		keys:            keys,
		metrics:         collector,
		checkInvariants: cfg.CheckInvariants,
	}

	app.CustodyKeeper = custodykeeper.NewKeeper(keys[custodytypes.StoreKey], logger)
	app.SavingsKeeper = savingskeeper.NewKeeper(
		keys[savingstypes.StoreKey],
		app.CustodyKeeper,
		"",
		logger,
	)
	if collector != nil {
		app.pending = newPendingMetrics(collector)
		app.SavingsKeeper.SetMetrics(app.pending)
	}
	app.SavingsModule = savings.NewAppModule(app.SavingsKeeper)
	app.SavingsModule.RegisterLegacyAminoCodec(app.legacyAmino)
	app.SavingsModule.RegisterInvariants(&app.invariants)

	logger.Info("Ledger loaded", "version", cms.LastCommitID().Version, "chain_id", cfg.ChainID)
	return app, nil
}

// Logger returns the app logger
func (app *App) Logger() log.Logger {
	return app.logger
}

// LegacyAmino returns the amino codec holding the savings msgs
func (app *App) LegacyAmino() *codec.LegacyAmino {
	return app.legacyAmino
}

// GetKey returns the KVStoreKey for the provided store key
func (app *App) GetKey(storeKey string) *storetypes.KVStoreKey {
	return app.keys[storeKey]
}

// InvariantRoutes lists the invariants checked after every operation
func (app *App) InvariantRoutes() []string {
	return app.invariants.Routes()
}

// LastVersion returns the last committed version
func (app *App) LastVersion() int64 {
	return app.cms.LastCommitID().Version
}

// IsInitialized reports whether genesis has been committed
func (app *App) IsInitialized() bool {
	return app.LastVersion() > 0
}

func (app *App) newContext(ms storetypes.MultiStore, now time.Time) sdk.Context {
	return sdk.NewContext(ms, cmtproto.Header{
		ChainID: app.chainID,
		Height:  app.LastVersion() + 1,
		Time:    now,
	}, false, app.logger)
}

// QueryContext returns a read-only context over the last committed state
func (app *App) QueryContext() sdk.Context {
	return app.newContext(app.cms.CacheMultiStore(), time.Now().UTC())
}

// Execute runs fn against a branch of the committed state at block time now.
// The branch is written and committed only when fn and the invariant check
// succeed. The events emitted by fn are returned.
func (app *App) Execute(now time.Time, fn func(ctx sdk.Context) error) (sdk.Events, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if !app.IsInitialized() {
		return nil, ErrNotInitialized
	}
	return app.execute(now, fn)
}

func (app *App) execute(now time.Time, fn func(ctx sdk.Context) error) (sdk.Events, error) {
	timer := metrics.NewTimer()
	branch := app.cms.CacheMultiStore()
	ctx := app.newContext(branch, now)

	if app.pending != nil {
		defer app.pending.discard()
	}

	if err := fn(ctx); err != nil {
		return nil, err
	}
	if app.checkInvariants {
		if route, msg, broken := app.invariants.Check(ctx); broken {
			app.logger.Error("Invariant broken, discarding operation", "route", route, "details", msg)
			return nil, ErrInvariantBroken.Wrapf("%s: %s", route, msg)
		}
	}

	branch.Write()
	commitID := app.cms.Commit()

	if app.pending != nil {
		app.pending.flush()
	}
	if app.metrics != nil {
		app.metrics.RecordCommit(commitID.Version)
		app.metrics.RecordOperationLatency("commit", timer.ElapsedMs())
	}
	app.logger.Debug("Committed", "version", commitID.Version, "hash", commitID.Hash)
	return ctx.EventManager().Events(), nil
}

// InitChain applies genesis and commits the first version
func (app *App) InitChain(genesis GenesisState, now time.Time) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.IsInitialized() {
		return ErrAlreadyInitialized
	}

	_, err := app.execute(now, func(ctx sdk.Context) error {
		if bz, ok := genesis[custodytypes.ModuleName]; ok {
			var gs custodytypes.GenesisState
			if err := json.Unmarshal(bz, &gs); err != nil {
				return errorsmod.Wrap(err, "custody genesis")
			}
			if err := app.CustodyKeeper.InitGenesis(ctx, gs); err != nil {
				return err
			}
		}

		bz, ok := genesis[savingstypes.ModuleName]
		if !ok {
			return savingstypes.ErrInvalidGenesis.Wrap("missing savings genesis")
		}
		return app.SavingsModule.InitGenesis(ctx, bz)
	})
	if err != nil {
		return err
	}

	app.logger.Info("Genesis applied", "chain_id", app.chainID)
	return nil
}

// ExportGenesis exports the committed state of every module
func (app *App) ExportGenesis() (GenesisState, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	ctx := app.QueryContext()
	savingsGenesis, err := app.SavingsModule.ExportGenesis(ctx)
	if err != nil {
		return nil, err
	}
	custodyGenesis, err := json.MarshalIndent(app.CustodyKeeper.ExportGenesis(ctx), "", "  ")
	if err != nil {
		return nil, err
	}
	return GenesisState{
		savingstypes.ModuleName: savingsGenesis,
		custodytypes.ModuleName: custodyGenesis,
	}, nil
}

// Close closes the underlying database
func (app *App) Close() error {
	return app.db.Close()
}

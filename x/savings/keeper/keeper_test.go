package keeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	custodykeeper "github.com/openalpha/savings-ledger/x/custody/keeper"
	custodytypes "github.com/openalpha/savings-ledger/x/custody/types"
	"github.com/openalpha/savings-ledger/x/savings/types"
)

const (
	testToken  = "usdc"
	startFunds = 1_000_000
	testStart  = int64(1_700_000_000)
	testPeriod = int64(30 * 24 * 3600)
	testReason = "rainy day"
)

func testAddr(name string) sdk.AccAddress {
	bz := make([]byte, 20)
	copy(bz, name)
	return sdk.AccAddress(bz)
}

// failingBank wraps the custody keeper and fails selected transfers
type failingBank struct {
	inner   types.BankKeeper
	failIn  bool
	failOut int // fail the n-th transfer out (1-based), 0 never
	outs    int
}

func (b *failingBank) SendCoinsFromAccountToModule(ctx context.Context, sender sdk.AccAddress, module string, amt sdk.Coins) error {
	if b.failIn {
		return errors.New("custody unavailable")
	}
	return b.inner.SendCoinsFromAccountToModule(ctx, sender, module, amt)
}

func (b *failingBank) SendCoinsFromModuleToAccount(ctx context.Context, module string, recipient sdk.AccAddress, amt sdk.Coins) error {
	b.outs++
	if b.failOut > 0 && b.outs == b.failOut {
		return errors.New("custody unavailable")
	}
	return b.inner.SendCoinsFromModuleToAccount(ctx, module, recipient, amt)
}

// recordingMetrics counts metric notifications
type recordingMetrics struct {
	opened    int
	updated   int
	withdrawn int
	fees      uint64
	errors    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{errors: make(map[string]int)}
}

func (m *recordingMetrics) RecordPoolOpened(string, string, uint64) { m.opened++ }
func (m *recordingMetrics) RecordPoolUpdated(string, uint64)        { m.updated++ }
func (m *recordingMetrics) RecordPoolWithdrawn(_, _ string, _, fee uint64) {
	m.withdrawn++
	m.fees += fee
}
func (m *recordingMetrics) RecordOperationError(operation, kind string) {
	m.errors[operation+"/"+kind]++
}

type KeeperTestSuite struct {
	suite.Suite

	ctx      sdk.Context
	storeKey *storetypes.KVStoreKey
	keeper   *Keeper
	custody  *custodykeeper.Keeper
	metrics  *recordingMetrics

	admin string
	saver string
	other string
	fees  string
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

// SetupTest builds a fresh in-memory ledger before each test
func (s *KeeperTestSuite) SetupTest() {
	s.storeKey = storetypes.NewKVStoreKey(types.StoreKey)
	custodyKey := storetypes.NewKVStoreKey(custodytypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(s.storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(custodyKey, storetypes.StoreTypeIAVL, db)
	s.Require().NoError(stateStore.LoadLatestVersion())

	s.ctx = sdk.NewContext(stateStore, cmtproto.Header{
		Time:   time.Unix(testStart, 0),
		Height: 1,
	}, false, log.NewNopLogger())

	s.admin = testAddr("admin").String()
	s.saver = testAddr("saver").String()
	s.other = testAddr("other").String()
	s.fees = testAddr("fees").String()

	s.custody = custodykeeper.NewKeeper(custodyKey, log.NewNopLogger())
	s.keeper = NewKeeper(s.storeKey, s.custody, s.admin, log.NewNopLogger())
	s.metrics = newRecordingMetrics()
	s.keeper.SetMetrics(s.metrics)

	for _, addr := range []string{s.saver, s.other} {
		s.Require().NoError(s.custody.Fund(s.ctx, sdk.MustAccAddressFromBech32(addr), s.coins(startFunds)))
	}
}

func (s *KeeperTestSuite) coins(amount uint64) sdk.Coins {
	return sdk.NewCoins(sdk.NewCoin(testToken, math.NewIntFromUint64(amount)))
}

func (s *KeeperTestSuite) balance(addr string) uint64 {
	return s.custody.GetBalance(s.ctx, sdk.MustAccAddressFromBech32(addr), testToken).Amount.Uint64()
}

func (s *KeeperTestSuite) moduleBalance() uint64 {
	return s.custody.GetModuleBalance(s.ctx, types.ModuleAccountName, testToken).Amount.Uint64()
}

func (s *KeeperTestSuite) open(lockType types.LockType, amount uint64, duration int64) *types.SavingPool {
	pool, err := s.keeper.Open(s.ctx, s.saver, testToken, amount, testReason, lockType, duration, testStart)
	s.Require().NoError(err)
	return pool
}

func (s *KeeperTestSuite) setFeeRecipient() {
	s.Require().NoError(s.keeper.SetFeeRecipient(s.ctx, s.admin, s.fees))
}

func (s *KeeperTestSuite) hasEvent(eventType string) bool {
	for _, ev := range s.ctx.EventManager().Events() {
		if ev.Type == eventType {
			return true
		}
	}
	return false
}

// ============ Registry ============

func (s *KeeperTestSuite) TestOpenFlexiblePool() {
	pool := s.open(types.LockTypeFlexible, 100, 0)

	s.Require().Equal(uint64(1), s.keeper.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(1), s.keeper.GetUserPoolCount(s.ctx, s.saver))
	s.Require().Equal(s.saver, pool.Saver)
	s.Require().Equal(testToken, pool.TokenID)
	s.Require().Equal(testReason, pool.Reason)
	s.Require().Equal(uint64(100), pool.AmountSaved)
	s.Require().Equal(testStart, pool.StartDate)
	s.Require().False(pool.IsStopped)
	s.Require().False(pool.IsGoalAccomplished)

	stored, err := s.keeper.GetPool(s.ctx, pool.PoolID)
	s.Require().NoError(err)
	s.Require().Equal(*pool, *stored)

	id, err := s.keeper.GetUserPoolIDByIndex(s.ctx, s.saver, 0)
	s.Require().NoError(err)
	s.Require().Equal(pool.PoolID, id)

	s.Require().Equal(uint64(startFunds-100), s.balance(s.saver))
	s.Require().Equal(uint64(100), s.moduleBalance())
	s.Require().True(s.hasEvent(types.EventTypeOpen))
	s.Require().Equal(1, s.metrics.opened)
}

func (s *KeeperTestSuite) TestFlexibleDurationIgnored() {
	pool := s.open(types.LockTypeFlexible, 100, 500)
	s.Require().Equal(int64(0), pool.Duration)
}

func (s *KeeperTestSuite) TestOpenZeroAmount() {
	_, err := s.keeper.Open(s.ctx, s.saver, testToken, 0, "", types.LockTypeFlexible, 0, testStart)
	s.Require().ErrorIs(err, types.ErrInvalidAmount)
	s.Require().Equal(uint64(0), s.keeper.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(0), s.keeper.GetSaverSequence(s.ctx, s.saver))
	s.Require().Equal(1, s.metrics.errors[types.TypeMsgOpenPool+"/"+string(types.KindValidation)])
}

func (s *KeeperTestSuite) TestOpenMissingDuration() {
	for _, lt := range []types.LockType{types.LockTypeLock, types.LockTypeStrictLock} {
		_, err := s.keeper.Open(s.ctx, s.saver, testToken, 10, "", lt, 0, testStart)
		s.Require().ErrorIs(err, types.ErrMissingDuration)
	}
	s.Require().Equal(uint64(0), s.keeper.GetPoolCount(s.ctx))
}

func (s *KeeperTestSuite) TestOpenInvalidLockType() {
	_, err := s.keeper.Open(s.ctx, s.saver, testToken, 10, "", types.LockType(5), 60, testStart)
	s.Require().ErrorIs(err, types.ErrInvalidLockType)
}

func (s *KeeperTestSuite) TestIndexOutOfBounds() {
	s.open(types.LockTypeFlexible, 10, 0)

	_, err := s.keeper.GetUserPoolIDByIndex(s.ctx, s.saver, 1)
	s.Require().ErrorIs(err, types.ErrIndexOutOfBounds)
	_, err = s.keeper.GetUserPoolIDByIndex(s.ctx, s.other, 0)
	s.Require().ErrorIs(err, types.ErrIndexOutOfBounds)
}

func (s *KeeperTestSuite) TestGetUnknownPool() {
	_, err := s.keeper.GetPool(s.ctx, "missing")
	s.Require().ErrorIs(err, types.ErrPoolNotFound)

	_, err = s.keeper.Withdraw(s.ctx, s.saver, "missing", testStart)
	s.Require().ErrorIs(err, types.ErrPoolNotFound)
}

func (s *KeeperTestSuite) TestSwapRemove() {
	a := s.open(types.LockTypeFlexible, 10, 0)
	b := s.open(types.LockTypeFlexible, 20, 0)
	c := s.open(types.LockTypeFlexible, 30, 0)
	s.Require().Equal(uint64(3), s.keeper.GetUserPoolCount(s.ctx, s.saver))

	_, err := s.keeper.Withdraw(s.ctx, s.saver, b.PoolID, testStart)
	s.Require().NoError(err)

	s.Require().Equal(uint64(2), s.keeper.GetUserPoolCount(s.ctx, s.saver))
	s.Require().Equal(uint64(2), s.keeper.GetPoolCount(s.ctx))

	first, err := s.keeper.GetUserPoolIDByIndex(s.ctx, s.saver, 0)
	s.Require().NoError(err)
	second, err := s.keeper.GetUserPoolIDByIndex(s.ctx, s.saver, 1)
	s.Require().NoError(err)
	s.Require().ElementsMatch([]string{a.PoolID, c.PoolID}, []string{first, second})

	_, err = s.keeper.GetUserPoolIDByIndex(s.ctx, s.saver, 2)
	s.Require().ErrorIs(err, types.ErrIndexOutOfBounds)

	// withdrawing the remaining pools empties the index
	_, err = s.keeper.Withdraw(s.ctx, s.saver, a.PoolID, testStart)
	s.Require().NoError(err)
	_, err = s.keeper.Withdraw(s.ctx, s.saver, c.PoolID, testStart)
	s.Require().NoError(err)
	s.Require().Equal(uint64(0), s.keeper.GetUserPoolCount(s.ctx, s.saver))
	s.Require().Equal(uint64(0), s.keeper.GetPoolCount(s.ctx))
}

func (s *KeeperTestSuite) TestRemoveUnindexedPool() {
	err := s.keeper.RemovePool(s.ctx, s.saver, "ghost")
	s.Require().ErrorIs(err, types.ErrIndexCorrupted)
	s.Require().Equal(types.KindIntegrity, types.ErrorKind(err))
}

func (s *KeeperTestSuite) TestPoolIDCollision() {
	s.keeper.SetIDDeriver(func(string, uint64, int64) string { return "fixed" })

	s.open(types.LockTypeFlexible, 10, 0)
	_, err := s.keeper.Open(s.ctx, s.saver, testToken, 10, "", types.LockTypeFlexible, 0, testStart)
	s.Require().ErrorIs(err, types.ErrPoolAlreadyExists)

	s.Require().Equal(uint64(1), s.keeper.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(startFunds-10), s.balance(s.saver))
}

func (s *KeeperTestSuite) TestPoolIDsUniqueAfterRemove() {
	ids := make(map[string]struct{})
	for i := 0; i < 3; i++ {
		pool := s.open(types.LockTypeFlexible, 10, 0)
		_, dup := ids[pool.PoolID]
		s.Require().False(dup, "pool id reused: %s", pool.PoolID)
		ids[pool.PoolID] = struct{}{}

		_, err := s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart)
		s.Require().NoError(err)
	}
	s.Require().Equal(uint64(3), s.keeper.GetSaverSequence(s.ctx, s.saver))
}

func (s *KeeperTestSuite) TestAppendFundsOverflow() {
	pool := s.open(types.LockTypeFlexible, 10, 0)
	pool.AmountSaved = ^uint64(0) - 5
	s.keeper.setPool(s.ctx, pool)

	_, err := s.keeper.AppendFunds(s.ctx, pool.PoolID, 10)
	s.Require().ErrorIs(err, types.ErrAmountOverflow)
}

// ============ Lifecycle ============

func (s *KeeperTestSuite) TestUpdatePool() {
	pool := s.open(types.LockTypeLock, 100, testPeriod)

	updated, err := s.keeper.Update(s.ctx, s.saver, pool.PoolID, 50)
	s.Require().NoError(err)
	s.Require().Equal(uint64(150), updated.AmountSaved)
	s.Require().Equal(uint64(150), s.moduleBalance())
	s.Require().Equal(uint64(startFunds-150), s.balance(s.saver))
	s.Require().True(s.hasEvent(types.EventTypeUpdate))

	_, err = s.keeper.Update(s.ctx, s.saver, pool.PoolID, 0)
	s.Require().ErrorIs(err, types.ErrInvalidAmount)

	_, err = s.keeper.Update(s.ctx, s.other, pool.PoolID, 5)
	s.Require().ErrorIs(err, types.ErrNotPoolOwner)
}

func (s *KeeperTestSuite) TestWithdrawFlexible() {
	pool := s.open(types.LockTypeFlexible, 100, 0)

	decision, err := s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart+1)
	s.Require().NoError(err)
	s.Require().Equal(types.WithdrawalDecision{Released: 100, Fee: 0, GoalAccomplished: true}, decision)

	_, err = s.keeper.GetPool(s.ctx, pool.PoolID)
	s.Require().ErrorIs(err, types.ErrPoolNotFound)
	s.Require().Equal(uint64(0), s.keeper.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(startFunds), s.balance(s.saver))
	s.Require().Equal(uint64(0), s.moduleBalance())
	s.Require().True(s.hasEvent(types.EventTypeWithdraw))
	s.Require().Equal(1, s.metrics.withdrawn)
}

func (s *KeeperTestSuite) TestWithdrawLockEarly() {
	s.setFeeRecipient()
	pool := s.open(types.LockTypeLock, 100, testPeriod)

	decision, err := s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart+10)
	s.Require().NoError(err)
	s.Require().Equal(uint64(97), decision.Released)
	s.Require().Equal(uint64(3), decision.Fee)
	s.Require().False(decision.GoalAccomplished)

	s.Require().Equal(uint64(startFunds-3), s.balance(s.saver))
	s.Require().Equal(uint64(3), s.balance(s.fees))
	s.Require().Equal(uint64(0), s.moduleBalance())
	s.Require().Equal(uint64(3), s.metrics.fees)
}

func (s *KeeperTestSuite) TestWithdrawLockEarlyWithoutFeeRecipient() {
	pool := s.open(types.LockTypeLock, 100, testPeriod)

	_, err := s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart+10)
	s.Require().ErrorIs(err, types.ErrFeeRecipientNotSet)
	s.Require().Equal(types.KindPolicy, types.ErrorKind(err))

	stored, err := s.keeper.GetPool(s.ctx, pool.PoolID)
	s.Require().NoError(err)
	s.Require().Equal(uint64(100), stored.AmountSaved)
	s.Require().Equal(uint64(1), s.keeper.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(100), s.moduleBalance())
}

func (s *KeeperTestSuite) TestWithdrawLockMatured() {
	pool := s.open(types.LockTypeLock, 100, testPeriod)

	decision, err := s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart+testPeriod)
	s.Require().NoError(err)
	s.Require().Equal(types.WithdrawalDecision{Released: 100, Fee: 0, GoalAccomplished: true}, decision)
	s.Require().Equal(uint64(startFunds), s.balance(s.saver))
}

func (s *KeeperTestSuite) TestWithdrawStrictLockActive() {
	s.setFeeRecipient()
	pool := s.open(types.LockTypeStrictLock, 100, testPeriod)

	_, err := s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart+testPeriod-1)
	s.Require().ErrorIs(err, types.ErrSavingPeriodActive)

	stored, err := s.keeper.GetPool(s.ctx, pool.PoolID)
	s.Require().NoError(err)
	s.Require().Equal(*pool, *stored)
	s.Require().Equal(uint64(1), s.keeper.GetUserPoolCount(s.ctx, s.saver))
	s.Require().Equal(uint64(startFunds-100), s.balance(s.saver))
	s.Require().Equal(uint64(0), s.balance(s.fees))
}

func (s *KeeperTestSuite) TestWithdrawStrictLockMatured() {
	pool := s.open(types.LockTypeStrictLock, 100, testPeriod)

	decision, err := s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart+testPeriod+1)
	s.Require().NoError(err)
	s.Require().Equal(uint64(100), decision.Released)
	s.Require().True(decision.GoalAccomplished)
}

func (s *KeeperTestSuite) TestWithdrawNotOwner() {
	pool := s.open(types.LockTypeFlexible, 100, 0)

	_, err := s.keeper.Withdraw(s.ctx, s.other, pool.PoolID, testStart)
	s.Require().ErrorIs(err, types.ErrNotPoolOwner)
	s.Require().Equal(types.KindAuthorization, types.ErrorKind(err))
	s.Require().Equal(uint64(1), s.keeper.GetPoolCount(s.ctx))
}

func (s *KeeperTestSuite) TestStopRestart() {
	pool := s.open(types.LockTypeFlexible, 100, 0)

	s.Require().NoError(s.keeper.Stop(s.ctx, s.saver, pool.PoolID))
	stored, err := s.keeper.GetPool(s.ctx, pool.PoolID)
	s.Require().NoError(err)
	s.Require().True(stored.IsStopped)
	s.Require().True(s.hasEvent(types.EventTypeStop))

	s.Require().ErrorIs(s.keeper.Stop(s.ctx, s.saver, pool.PoolID), types.ErrPoolStopped)

	_, err = s.keeper.Update(s.ctx, s.saver, pool.PoolID, 10)
	s.Require().ErrorIs(err, types.ErrPoolStopped)
	_, err = s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart)
	s.Require().ErrorIs(err, types.ErrPoolStopped)

	s.Require().NoError(s.keeper.Restart(s.ctx, s.saver, pool.PoolID))
	stored, err = s.keeper.GetPool(s.ctx, pool.PoolID)
	s.Require().NoError(err)
	s.Require().False(stored.IsStopped)
	s.Require().True(s.hasEvent(types.EventTypeRestart))

	s.Require().ErrorIs(s.keeper.Restart(s.ctx, s.saver, pool.PoolID), types.ErrPoolNotStopped)
	s.Require().ErrorIs(s.keeper.Stop(s.ctx, s.other, pool.PoolID), types.ErrNotPoolOwner)

	_, err = s.keeper.Update(s.ctx, s.saver, pool.PoolID, 10)
	s.Require().NoError(err)
}

func (s *KeeperTestSuite) TestOpenTransferFailureRollsBack() {
	bank := &failingBank{inner: s.custody, failIn: true}
	k := NewKeeper(s.storeKey, bank, s.admin, log.NewNopLogger())

	_, err := k.Open(s.ctx, s.saver, testToken, 100, "", types.LockTypeFlexible, 0, testStart)
	s.Require().ErrorIs(err, types.ErrTransferFailed)

	s.Require().Equal(uint64(0), k.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(0), k.GetUserPoolCount(s.ctx, s.saver))
	s.Require().Equal(uint64(0), k.GetSaverSequence(s.ctx, s.saver))
	s.Require().Equal(uint64(startFunds), s.balance(s.saver))
}

func (s *KeeperTestSuite) TestOpenInsufficientFunds() {
	_, err := s.keeper.Open(s.ctx, s.saver, testToken, startFunds+1, "", types.LockTypeFlexible, 0, testStart)
	s.Require().ErrorIs(err, types.ErrTransferFailed)
	s.Require().Equal(uint64(0), s.keeper.GetPoolCount(s.ctx))
}

func (s *KeeperTestSuite) TestWithdrawFeeTransferFailureRollsBack() {
	s.setFeeRecipient()
	pool := s.open(types.LockTypeLock, 100, testPeriod)

	// the release to the saver succeeds, the fee payment fails
	bank := &failingBank{inner: s.custody, failOut: 2}
	k := NewKeeper(s.storeKey, bank, s.admin, log.NewNopLogger())

	_, err := k.Withdraw(s.ctx, s.saver, pool.PoolID, testStart+10)
	s.Require().ErrorIs(err, types.ErrTransferFailed)

	stored, err := s.keeper.GetPool(s.ctx, pool.PoolID)
	s.Require().NoError(err)
	s.Require().Equal(uint64(100), stored.AmountSaved)
	s.Require().False(stored.IsGoalAccomplished)
	s.Require().Equal(uint64(1), s.keeper.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(startFunds-100), s.balance(s.saver))
	s.Require().Equal(uint64(0), s.balance(s.fees))
	s.Require().Equal(uint64(100), s.moduleBalance())
}

// ============ Admin ============

func (s *KeeperTestSuite) TestTokenFiltering() {
	allowed, err := s.keeper.IsTokenAllowed(s.ctx, testToken)
	s.Require().NoError(err)
	s.Require().True(allowed)

	s.Require().NoError(s.keeper.SetTokenFilteringEnabled(s.ctx, s.admin, true))
	allowed, err = s.keeper.IsTokenAllowed(s.ctx, testToken)
	s.Require().NoError(err)
	s.Require().False(allowed)

	_, err = s.keeper.Open(s.ctx, s.saver, testToken, 100, "", types.LockTypeFlexible, 0, testStart)
	s.Require().ErrorIs(err, types.ErrTokenNotAllowed)
	s.Require().Equal(types.KindPermissionPolicy, types.ErrorKind(err))
	s.Require().Equal(uint64(0), s.keeper.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(startFunds), s.balance(s.saver))

	s.Require().NoError(s.keeper.SetAllowedToken(s.ctx, s.admin, testToken, true))
	s.Require().Equal([]string{testToken}, s.keeper.GetAllowedTokens(s.ctx))
	s.open(types.LockTypeFlexible, 100, 0)

	s.Require().NoError(s.keeper.SetAllowedToken(s.ctx, s.admin, testToken, false))
	allowed, err = s.keeper.IsTokenAllowed(s.ctx, testToken)
	s.Require().NoError(err)
	s.Require().False(allowed)
	s.Require().Empty(s.keeper.GetAllowedTokens(s.ctx))
}

func (s *KeeperTestSuite) TestAdminNotAuthorized() {
	s.Require().ErrorIs(s.keeper.SetAllowedToken(s.ctx, s.other, testToken, true), types.ErrNotAuthorized)
	s.Require().ErrorIs(s.keeper.SetTokenFilteringEnabled(s.ctx, s.other, true), types.ErrNotAuthorized)
	s.Require().ErrorIs(s.keeper.SetFeeRecipient(s.ctx, s.other, s.other), types.ErrNotAuthorized)
	s.Require().ErrorIs(s.keeper.TransferAdministration(s.ctx, s.other, s.other), types.ErrNotAuthorized)
	s.Require().ErrorIs(s.keeper.SetTokenFilteringEnabled(s.ctx, "", true), types.ErrNotAuthorized)

	cfg, err := s.keeper.GetAdminConfig(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(types.DefaultAdminConfig(s.admin), cfg)
	s.Require().Empty(s.keeper.GetAllowedTokens(s.ctx))
}

func (s *KeeperTestSuite) TestSetFeeRecipient() {
	s.Require().ErrorIs(s.keeper.SetFeeRecipient(s.ctx, s.admin, "nowhere"), types.ErrInvalidAddress)

	s.setFeeRecipient()
	cfg, err := s.keeper.GetAdminConfig(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(s.fees, cfg.FeeRecipient)
	s.Require().True(s.hasEvent(types.EventTypeAdminUpdate))
}

func (s *KeeperTestSuite) TestTransferAdministration() {
	s.Require().NoError(s.keeper.TransferAdministration(s.ctx, s.admin, s.other))

	s.Require().ErrorIs(s.keeper.SetTokenFilteringEnabled(s.ctx, s.admin, true), types.ErrNotAuthorized)
	s.Require().NoError(s.keeper.SetTokenFilteringEnabled(s.ctx, s.other, true))
}

// ============ Genesis & Invariants ============

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	s.setFeeRecipient()
	s.Require().NoError(s.keeper.SetAllowedToken(s.ctx, s.admin, testToken, true))
	a := s.open(types.LockTypeFlexible, 10, 0)
	s.open(types.LockTypeLock, 20, testPeriod)
	s.open(types.LockTypeStrictLock, 30, testPeriod)
	_, err := s.keeper.Withdraw(s.ctx, s.saver, a.PoolID, testStart)
	s.Require().NoError(err)
	_, err = s.keeper.Open(s.ctx, s.other, testToken, 40, "", types.LockTypeFlexible, 0, testStart)
	s.Require().NoError(err)

	exported, err := s.keeper.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(exported.Validate())
	s.Require().Len(exported.Pools, 3)

	s.SetupTest()
	s.Require().NoError(s.keeper.InitGenesis(s.ctx, *exported))

	reexported, err := s.keeper.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(exported, reexported)
	s.Require().Equal(uint64(3), s.keeper.GetPoolCount(s.ctx))
	s.Require().Equal(uint64(3), s.keeper.GetSaverSequence(s.ctx, s.saver))

	_, broken := AllInvariants(s.keeper)(s.ctx)
	s.Require().False(broken)

	// a restored ledger keeps deriving fresh ids
	pool := s.open(types.LockTypeFlexible, 5, 0)
	for _, p := range exported.Pools {
		s.Require().NotEqual(p.PoolID, pool.PoolID)
	}
}

func (s *KeeperTestSuite) TestWithdrawInvalidStoredTokenFails() {
	pool := s.open(types.LockTypeFlexible, 10, 0)
	pool.TokenID = "u$"
	s.keeper.setPool(s.ctx, pool)

	_, err := s.keeper.Withdraw(s.ctx, s.saver, pool.PoolID, testStart)
	s.Require().ErrorIs(err, types.ErrInvalidToken)
	s.Require().True(s.keeper.HasPool(s.ctx, pool.PoolID))
	s.Require().Equal(uint64(1), s.keeper.GetUserPoolCount(s.ctx, s.saver))
}

func (s *KeeperTestSuite) TestInitGenesisRejectsInvalid() {
	gs := types.DefaultGenesis("not-an-address")
	s.Require().ErrorIs(s.keeper.InitGenesis(s.ctx, *gs), types.ErrInvalidGenesis)

	gs = types.DefaultGenesis(s.admin)
	gs.Pools = []types.SavingPool{{
		Saver:       s.saver,
		TokenID:     "u$",
		PoolID:      "p1",
		AmountSaved: 10,
		LockType:    types.LockTypeFlexible,
	}}
	gs.Sequences = []types.SaverSequence{{Saver: s.saver, Sequence: 1}}
	s.Require().ErrorIs(s.keeper.InitGenesis(s.ctx, *gs), types.ErrInvalidGenesis)
	s.Require().False(s.keeper.HasPool(s.ctx, "p1"))
}

func (s *KeeperTestSuite) TestInvariants() {
	s.open(types.LockTypeFlexible, 10, 0)
	s.open(types.LockTypeFlexible, 20, 0)

	msg, broken := AllInvariants(s.keeper)(s.ctx)
	s.Require().False(broken, msg)

	// drop the saver count behind the registry's back
	s.keeper.setUint64(s.ctx, types.SaverCountKey(s.saver), 1)
	_, broken = TotalPoolsInvariant(s.keeper)(s.ctx)
	s.Require().True(broken)
}

func (s *KeeperTestSuite) TestIndexInvariantDetectsDanglingEntry() {
	pool := s.open(types.LockTypeFlexible, 10, 0)
	s.keeper.GetStore(s.ctx).Delete(types.PoolKey(pool.PoolID))

	_, broken := IndexConsistencyInvariant(s.keeper)(s.ctx)
	s.Require().True(broken)
}

// ============ Msg & Query servers ============

func (s *KeeperTestSuite) TestMsgServerLifecycle() {
	srv := NewMsgServerImpl(s.keeper)
	s.Require().NoError(s.keeper.SetFeeRecipient(s.ctx, s.admin, s.fees))

	openRes, err := srv.OpenPool(s.ctx, &types.MsgOpenPool{
		Saver:           s.saver,
		TokenID:         testToken,
		Amount:          "1000",
		Reason:          testReason,
		LockType:        "lock",
		DurationSeconds: testPeriod,
	})
	s.Require().NoError(err)
	s.Require().Equal(testStart+testPeriod, openRes.MaturityTime)

	updRes, err := srv.UpdatePool(s.ctx, &types.MsgUpdatePool{Saver: s.saver, PoolID: openRes.PoolID, Amount: "1000"})
	s.Require().NoError(err)
	s.Require().Equal(uint64(2000), updRes.AmountSaved)

	_, err = srv.StopPool(s.ctx, &types.MsgStopPool{Saver: s.saver, PoolID: openRes.PoolID})
	s.Require().NoError(err)
	_, err = srv.RestartPool(s.ctx, &types.MsgRestartPool{Saver: s.saver, PoolID: openRes.PoolID})
	s.Require().NoError(err)

	wdRes, err := srv.WithdrawPool(s.ctx, &types.MsgWithdrawPool{Saver: s.saver, PoolID: openRes.PoolID})
	s.Require().NoError(err)
	s.Require().Equal(uint64(1940), wdRes.Released)
	s.Require().Equal(uint64(60), wdRes.Fee)
	s.Require().False(wdRes.GoalAccomplished)

	_, err = srv.OpenPool(s.ctx, &types.MsgOpenPool{Saver: s.saver, TokenID: testToken, Amount: "0", LockType: "FLEXIBLE"})
	s.Require().ErrorIs(err, types.ErrInvalidAmount)
}

func (s *KeeperTestSuite) TestMsgServerAdmin() {
	srv := NewMsgServerImpl(s.keeper)

	_, err := srv.SetTokenFiltering(s.ctx, &types.MsgSetTokenFiltering{Authority: s.other, Enabled: true})
	s.Require().ErrorIs(err, types.ErrNotAuthorized)

	_, err = srv.SetTokenFiltering(s.ctx, &types.MsgSetTokenFiltering{Authority: s.admin, Enabled: true})
	s.Require().NoError(err)
	_, err = srv.SetAllowedToken(s.ctx, &types.MsgSetAllowedToken{Authority: s.admin, TokenID: "atom", Allowed: true})
	s.Require().NoError(err)
	_, err = srv.SetFeeRecipient(s.ctx, &types.MsgSetFeeRecipient{Authority: s.admin, Recipient: s.fees})
	s.Require().NoError(err)
	_, err = srv.TransferAdmin(s.ctx, &types.MsgTransferAdmin{Authority: s.admin, NewAdmin: s.other})
	s.Require().NoError(err)

	cfg, tokens, err := NewQueryServerImpl(s.keeper).Admin(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(types.AdminConfig{Administrator: s.other, FeeRecipient: s.fees, TokenFilteringEnabled: true}, cfg)
	s.Require().Equal([]string{"atom"}, tokens)
}

func (s *KeeperTestSuite) TestQuerySaverPools() {
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, s.open(types.LockTypeFlexible, uint64(10+i), 0).PoolID)
	}
	q := NewQueryServerImpl(s.keeper)

	pools, total, err := q.SaverPools(s.ctx, s.saver, 1, 2)
	s.Require().NoError(err)
	s.Require().Equal(uint64(5), total)
	s.Require().Len(pools, 2)
	s.Require().Equal(ids[1], pools[0].PoolID)
	s.Require().Equal(ids[2], pools[1].PoolID)

	pools, _, err = q.SaverPools(s.ctx, s.saver, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(pools, 5)

	pools, _, err = q.SaverPools(s.ctx, s.saver, 9, 2)
	s.Require().NoError(err)
	s.Require().Empty(pools)

	// offset + limit past uint64 is clamped to the list end
	pools, _, err = q.SaverPools(s.ctx, s.saver, 1, ^uint64(0))
	s.Require().NoError(err)
	s.Require().Len(pools, 4)
	s.Require().Equal(ids[1], pools[0].PoolID)

	s.Require().Equal(uint64(5), q.PoolCount(s.ctx))
	id, err := q.SaverPoolID(s.ctx, s.saver, 4)
	s.Require().NoError(err)
	s.Require().Equal(ids[4], id)

	allowed, err := q.TokenAllowed(s.ctx, "anything")
	s.Require().NoError(err)
	s.Require().True(allowed)
}

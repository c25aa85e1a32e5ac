package keeper

import (
	"cosmossdk.io/math"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

// EarlyWithdrawalFee returns floor(amount * 3 / 100) without overflowing uint64
func EarlyWithdrawalFee(amount uint64) uint64 {
	return math.NewUint(amount).
		MulUint64(types.EarlyWithdrawalFeePercent).
		QuoUint64(100).
		Uint64()
}

// EvaluateWithdrawal decides how a pool balance is split between the saver
// and the fee recipient. It reads no state; released + fee always equals amount.
func EvaluateWithdrawal(
	lockType types.LockType,
	amount uint64,
	startDate, duration, now int64,
	feeRecipientSet bool,
) (types.WithdrawalDecision, error) {
	pool := types.SavingPool{StartDate: startDate, Duration: duration}
	full := types.WithdrawalDecision{Released: amount, Fee: 0, GoalAccomplished: true}

	switch lockType {
	case types.LockTypeFlexible:
		return full, nil

	case types.LockTypeLock:
		if pool.IsMature(now) {
			return full, nil
		}
		if !feeRecipientSet {
			return types.WithdrawalDecision{}, types.ErrFeeRecipientNotSet
		}
		fee := EarlyWithdrawalFee(amount)
		return types.WithdrawalDecision{
			Released:         amount - fee,
			Fee:              fee,
			GoalAccomplished: false,
		}, nil

	case types.LockTypeStrictLock:
		if !pool.IsMature(now) {
			return types.WithdrawalDecision{}, types.ErrSavingPeriodActive.Wrapf("matures at %d, now %d", pool.MaturityTime(), now)
		}
		return full, nil

	default:
		return types.WithdrawalDecision{}, types.ErrInvalidLockType.Wrapf("%d", int32(lockType))
	}
}

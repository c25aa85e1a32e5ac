package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

func coinsOf(tokenID string, amount uint64) (sdk.Coins, error) {
	if err := sdk.ValidateDenom(tokenID); err != nil {
		return nil, types.ErrInvalidToken.Wrap(err.Error())
	}
	return sdk.NewCoins(sdk.NewCoin(tokenID, math.NewIntFromUint64(amount))), nil
}

func parseAddress(addr, field string) (sdk.AccAddress, error) {
	acc, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("%s: %v", field, err)
	}
	return acc, nil
}

// transferIn moves amount of tokenID from saver into module custody
func (k *Keeper) transferIn(ctx sdk.Context, saver sdk.AccAddress, tokenID string, amount uint64) error {
	coins, err := coinsOf(tokenID, amount)
	if err != nil {
		return err
	}
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, saver, types.ModuleAccountName, coins); err != nil {
		return types.ErrTransferFailed.Wrapf("transfer in of %d%s from %s: %v", amount, tokenID, saver, err)
	}
	return nil
}

// transferOut moves amount of tokenID from module custody to recipient
func (k *Keeper) transferOut(ctx sdk.Context, recipient sdk.AccAddress, tokenID string, amount uint64) error {
	coins, err := coinsOf(tokenID, amount)
	if err != nil {
		return err
	}
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleAccountName, recipient, coins); err != nil {
		return types.ErrTransferFailed.Wrapf("transfer out of %d%s to %s: %v", amount, tokenID, recipient, err)
	}
	return nil
}

// ownedPool loads poolID and checks that caller is its saver
func (k *Keeper) ownedPool(ctx sdk.Context, caller, poolID string) (*types.SavingPool, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool.Saver != caller {
		return nil, types.ErrNotPoolOwner.Wrapf("pool %s", poolID)
	}
	return pool, nil
}

// Open creates a pool for saver and takes amount into custody. Nothing is
// committed unless the custody transfer succeeds.
func (k *Keeper) Open(
	ctx context.Context,
	saver, tokenID string,
	amount uint64,
	reason string,
	lockType types.LockType,
	duration, now int64,
) (pool *types.SavingPool, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	defer func() {
		if err != nil {
			k.recordError(types.TypeMsgOpenPool, err)
		}
	}()

	if err := sdk.ValidateDenom(tokenID); err != nil {
		return nil, types.ErrInvalidToken.Wrap(err.Error())
	}
	allowed, err := k.IsTokenAllowed(sdkCtx, tokenID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, types.ErrTokenNotAllowed.Wrapf("token %s", tokenID)
	}
	saverAddr, err := parseAddress(saver, "saver")
	if err != nil {
		return nil, err
	}

	cacheCtx, write := sdkCtx.CacheContext()
	pool, err = k.CreatePool(cacheCtx, saver, tokenID, amount, reason, lockType, duration, now)
	if err != nil {
		return nil, err
	}
	if err := k.transferIn(cacheCtx, saverAddr, tokenID, amount); err != nil {
		return nil, err
	}
	write()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOpen,
			sdk.NewAttribute(types.AttributeKeyPoolID, pool.PoolID),
			sdk.NewAttribute(types.AttributeKeySaver, saver),
			sdk.NewAttribute(types.AttributeKeyTokenID, tokenID),
			sdk.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(amount, 10)),
			sdk.NewAttribute(types.AttributeKeyLockType, lockType.String()),
			sdk.NewAttribute(types.AttributeKeyDuration, strconv.FormatInt(pool.Duration, 10)),
		),
	)

	k.logger.Info("Pool opened",
		"pool_id", pool.PoolID,
		"saver", saver,
		"token_id", tokenID,
		"amount", amount,
		"lock_type", lockType.String(),
	)

	if k.metrics != nil {
		k.metrics.RecordPoolOpened(tokenID, lockType.String(), amount)
	}
	return pool, nil
}

// Update adds amount to an active pool owned by caller
func (k *Keeper) Update(ctx context.Context, caller, poolID string, amount uint64) (pool *types.SavingPool, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	defer func() {
		if err != nil {
			k.recordError(types.TypeMsgUpdatePool, err)
		}
	}()

	pool, err = k.ownedPool(sdkCtx, caller, poolID)
	if err != nil {
		return nil, err
	}
	if pool.IsStopped {
		return nil, types.ErrPoolStopped.Wrapf("pool %s", poolID)
	}
	if amount == 0 {
		return nil, types.ErrInvalidAmount
	}
	saverAddr, err := parseAddress(pool.Saver, "saver")
	if err != nil {
		return nil, err
	}

	cacheCtx, write := sdkCtx.CacheContext()
	pool, err = k.AppendFunds(cacheCtx, poolID, amount)
	if err != nil {
		return nil, err
	}
	if err := k.transferIn(cacheCtx, saverAddr, pool.TokenID, amount); err != nil {
		return nil, err
	}
	write()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeUpdate,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID),
			sdk.NewAttribute(types.AttributeKeySaver, caller),
			sdk.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(amount, 10)),
			sdk.NewAttribute(types.AttributeKeyAmountSaved, strconv.FormatUint(pool.AmountSaved, 10)),
		),
	)

	k.logger.Info("Pool updated",
		"pool_id", poolID,
		"saver", caller,
		"amount", amount,
		"amount_saved", pool.AmountSaved,
	)

	if k.metrics != nil {
		k.metrics.RecordPoolUpdated(pool.TokenID, amount)
	}
	return pool, nil
}

// Withdraw releases a pool to its saver, paying the early withdrawal fee to
// the fee recipient when a LOCK pool is broken before maturity. The pool is
// removed only if every custody transfer succeeds.
func (k *Keeper) Withdraw(ctx context.Context, caller, poolID string, now int64) (decision types.WithdrawalDecision, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	defer func() {
		if err != nil {
			k.recordError(types.TypeMsgWithdrawPool, err)
		}
	}()

	pool, err := k.ownedPool(sdkCtx, caller, poolID)
	if err != nil {
		return types.WithdrawalDecision{}, err
	}
	if pool.IsStopped {
		return types.WithdrawalDecision{}, types.ErrPoolStopped.Wrapf("pool %s", poolID)
	}
	if pool.AmountSaved == 0 {
		return types.WithdrawalDecision{}, types.ErrPoolEmpty.Wrapf("pool %s", poolID)
	}

	cfg, err := k.GetAdminConfig(sdkCtx)
	if err != nil {
		return types.WithdrawalDecision{}, err
	}
	decision, err = EvaluateWithdrawal(pool.LockType, pool.AmountSaved, pool.StartDate, pool.Duration, now, cfg.HasFeeRecipient())
	if err != nil {
		return types.WithdrawalDecision{}, err
	}

	saverAddr, err := parseAddress(pool.Saver, "saver")
	if err != nil {
		return types.WithdrawalDecision{}, err
	}
	var feeAddr sdk.AccAddress
	if decision.Fee > 0 {
		if feeAddr, err = parseAddress(cfg.FeeRecipient, "fee recipient"); err != nil {
			return types.WithdrawalDecision{}, err
		}
	}

	cacheCtx, write := sdkCtx.CacheContext()
	pool.IsGoalAccomplished = decision.GoalAccomplished
	pool.AmountSaved = 0
	k.setPool(cacheCtx, pool)

	if err := k.transferOut(cacheCtx, saverAddr, pool.TokenID, decision.Released); err != nil {
		return types.WithdrawalDecision{}, err
	}
	if decision.Fee > 0 {
		if err := k.transferOut(cacheCtx, feeAddr, pool.TokenID, decision.Fee); err != nil {
			return types.WithdrawalDecision{}, err
		}
	}
	if err := k.RemovePool(cacheCtx, pool.Saver, poolID); err != nil {
		k.logger.Error("Registry integrity violation on withdraw", "pool_id", poolID, "error", err)
		return types.WithdrawalDecision{}, err
	}
	write()

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeWithdraw,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolID),
			sdk.NewAttribute(types.AttributeKeySaver, caller),
			sdk.NewAttribute(types.AttributeKeyTokenID, pool.TokenID),
			sdk.NewAttribute(types.AttributeKeyReleased, strconv.FormatUint(decision.Released, 10)),
			sdk.NewAttribute(types.AttributeKeyFee, strconv.FormatUint(decision.Fee, 10)),
			sdk.NewAttribute(types.AttributeKeyFeeRecipient, cfg.FeeRecipient),
			sdk.NewAttribute(types.AttributeKeyGoalAccomplished, strconv.FormatBool(decision.GoalAccomplished)),
		),
	)

	k.logger.Info("Pool withdrawn",
		"pool_id", poolID,
		"saver", caller,
		"released", decision.Released,
		"fee", decision.Fee,
		"goal_accomplished", decision.GoalAccomplished,
	)

	if k.metrics != nil {
		k.metrics.RecordPoolWithdrawn(pool.TokenID, pool.LockType.String(), decision.Released, decision.Fee)
	}
	return decision, nil
}

// Stop pauses an active pool owned by caller
func (k *Keeper) Stop(ctx context.Context, caller, poolID string) (err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	defer func() {
		if err != nil {
			k.recordError(types.TypeMsgStopPool, err)
		}
	}()

	pool, err := k.ownedPool(sdkCtx, caller, poolID)
	if err != nil {
		return err
	}
	if pool.IsStopped {
		return types.ErrPoolStopped.Wrapf("pool %s already stopped", poolID)
	}

	pool.IsStopped = true
	k.setPool(sdkCtx, pool)
	k.emitToggle(sdkCtx, types.EventTypeStop, pool)
	return nil
}

// Restart resumes a stopped pool owned by caller
func (k *Keeper) Restart(ctx context.Context, caller, poolID string) (err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	defer func() {
		if err != nil {
			k.recordError(types.TypeMsgRestartPool, err)
		}
	}()

	pool, err := k.ownedPool(sdkCtx, caller, poolID)
	if err != nil {
		return err
	}
	if !pool.IsStopped {
		return types.ErrPoolNotStopped.Wrapf("pool %s", poolID)
	}

	pool.IsStopped = false
	k.setPool(sdkCtx, pool)
	k.emitToggle(sdkCtx, types.EventTypeRestart, pool)
	return nil
}

func (k *Keeper) emitToggle(ctx sdk.Context, eventType string, pool *types.SavingPool) {
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeyPoolID, pool.PoolID),
			sdk.NewAttribute(types.AttributeKeySaver, pool.Saver),
		),
	)
	k.logger.Info("Pool state changed",
		"pool_id", pool.PoolID,
		"saver", pool.Saver,
		"stopped", pool.IsStopped,
	)
}

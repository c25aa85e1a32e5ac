package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

// MsgServer defines the savings MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// OpenPool handles MsgOpenPool
func (m *MsgServer) OpenPool(ctx context.Context, msg *types.MsgOpenPool) (*types.MsgOpenPoolResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(msg.Amount)
	if err != nil {
		return nil, err
	}
	lockType, err := types.ParseLockType(msg.LockType)
	if err != nil {
		return nil, err
	}

	now := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	pool, err := m.keeper.Open(ctx, msg.Saver, msg.TokenID, amount, msg.Reason, lockType, msg.DurationSeconds, now)
	if err != nil {
		return nil, err
	}

	return &types.MsgOpenPoolResponse{
		PoolID:       pool.PoolID,
		MaturityTime: pool.MaturityTime(),
	}, nil
}

// UpdatePool handles MsgUpdatePool
func (m *MsgServer) UpdatePool(ctx context.Context, msg *types.MsgUpdatePool) (*types.MsgUpdatePoolResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(msg.Amount)
	if err != nil {
		return nil, err
	}

	pool, err := m.keeper.Update(ctx, msg.Saver, msg.PoolID, amount)
	if err != nil {
		return nil, err
	}
	return &types.MsgUpdatePoolResponse{AmountSaved: pool.AmountSaved}, nil
}

// WithdrawPool handles MsgWithdrawPool
func (m *MsgServer) WithdrawPool(ctx context.Context, msg *types.MsgWithdrawPool) (*types.MsgWithdrawPoolResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	now := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	decision, err := m.keeper.Withdraw(ctx, msg.Saver, msg.PoolID, now)
	if err != nil {
		return nil, err
	}

	return &types.MsgWithdrawPoolResponse{
		Released:         decision.Released,
		Fee:              decision.Fee,
		GoalAccomplished: decision.GoalAccomplished,
	}, nil
}

// StopPool handles MsgStopPool
func (m *MsgServer) StopPool(ctx context.Context, msg *types.MsgStopPool) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.keeper.Stop(ctx, msg.Saver, msg.PoolID); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// RestartPool handles MsgRestartPool
func (m *MsgServer) RestartPool(ctx context.Context, msg *types.MsgRestartPool) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.keeper.Restart(ctx, msg.Saver, msg.PoolID); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// SetAllowedToken handles MsgSetAllowedToken (admin only)
func (m *MsgServer) SetAllowedToken(ctx context.Context, msg *types.MsgSetAllowedToken) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.keeper.SetAllowedToken(ctx, msg.Authority, msg.TokenID, msg.Allowed); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// SetTokenFiltering handles MsgSetTokenFiltering (admin only)
func (m *MsgServer) SetTokenFiltering(ctx context.Context, msg *types.MsgSetTokenFiltering) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.keeper.SetTokenFilteringEnabled(ctx, msg.Authority, msg.Enabled); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// SetFeeRecipient handles MsgSetFeeRecipient (admin only)
func (m *MsgServer) SetFeeRecipient(ctx context.Context, msg *types.MsgSetFeeRecipient) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.keeper.SetFeeRecipient(ctx, msg.Authority, msg.Recipient); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

// TransferAdmin handles MsgTransferAdmin (admin only)
func (m *MsgServer) TransferAdmin(ctx context.Context, msg *types.MsgTransferAdmin) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.keeper.TransferAdministration(ctx, msg.Authority, msg.NewAdmin); err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}

package types

import (
	"fmt"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgOpenPool          = "open_pool"
	TypeMsgUpdatePool        = "update_pool"
	TypeMsgWithdrawPool      = "withdraw_pool"
	TypeMsgStopPool          = "stop_pool"
	TypeMsgRestartPool       = "restart_pool"
	TypeMsgSetAllowedToken   = "set_allowed_token"
	TypeMsgSetTokenFiltering = "set_token_filtering"
	TypeMsgSetFeeRecipient   = "set_fee_recipient"
	TypeMsgTransferAdmin     = "transfer_admin"
)

// ParseAmount parses a positive base-10 uint64 amount
func ParseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount.Wrapf("%q: %v", s, err)
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

func validateAddress(addr, field string) error {
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return ErrInvalidAddress.Wrapf("%s: %v", field, err)
	}
	return nil
}

func signers(addr string) []sdk.AccAddress {
	acc, _ := sdk.AccAddressFromBech32(addr)
	return []sdk.AccAddress{acc}
}

// MsgOpenPool opens a new saving pool
type MsgOpenPool struct {
	Saver           string `json:"saver"`
	TokenID         string `json:"token_id"`
	Amount          string `json:"amount"`
	Reason          string `json:"reason"`
	LockType        string `json:"lock_type"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// Route implements sdk.Msg
func (msg MsgOpenPool) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgOpenPool) Type() string { return TypeMsgOpenPool }

// ValidateBasic implements sdk.Msg
func (msg MsgOpenPool) ValidateBasic() error {
	if err := validateAddress(msg.Saver, "saver"); err != nil {
		return err
	}
	if err := sdk.ValidateDenom(msg.TokenID); err != nil {
		return ErrInvalidToken.Wrap(err.Error())
	}
	if _, err := ParseAmount(msg.Amount); err != nil {
		return err
	}
	lockType, err := ParseLockType(msg.LockType)
	if err != nil {
		return err
	}
	if lockType.RequiresDuration() && msg.DurationSeconds <= 0 {
		return ErrMissingDuration.Wrapf("lock type %s", lockType)
	}
	if msg.DurationSeconds < 0 {
		return ErrMissingDuration.Wrap("negative duration")
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgOpenPool) GetSigners() []sdk.AccAddress { return signers(msg.Saver) }

// ProtoMessage implements proto.Message
func (*MsgOpenPool) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgOpenPool) Reset() { *msg = MsgOpenPool{} }

// String implements proto.Message
func (msg MsgOpenPool) String() string {
	return fmt.Sprintf("MsgOpenPool{Saver: %s, TokenID: %s, Amount: %s, LockType: %s, Duration: %d}",
		msg.Saver, msg.TokenID, msg.Amount, msg.LockType, msg.DurationSeconds)
}

// MsgOpenPoolResponse defines the OpenPool response
type MsgOpenPoolResponse struct {
	PoolID       string `json:"pool_id"`
	MaturityTime int64  `json:"maturity_time"`
}

// MsgUpdatePool adds funds to an existing pool
type MsgUpdatePool struct {
	Saver  string `json:"saver"`
	PoolID string `json:"pool_id"`
	Amount string `json:"amount"`
}

// Route implements sdk.Msg
func (msg MsgUpdatePool) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgUpdatePool) Type() string { return TypeMsgUpdatePool }

// ValidateBasic implements sdk.Msg
func (msg MsgUpdatePool) ValidateBasic() error {
	if err := validateAddress(msg.Saver, "saver"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPoolID
	}
	_, err := ParseAmount(msg.Amount)
	return err
}

// GetSigners implements sdk.Msg
func (msg MsgUpdatePool) GetSigners() []sdk.AccAddress { return signers(msg.Saver) }

// ProtoMessage implements proto.Message
func (*MsgUpdatePool) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgUpdatePool) Reset() { *msg = MsgUpdatePool{} }

// String implements proto.Message
func (msg MsgUpdatePool) String() string {
	return fmt.Sprintf("MsgUpdatePool{Saver: %s, PoolID: %s, Amount: %s}", msg.Saver, msg.PoolID, msg.Amount)
}

// MsgUpdatePoolResponse defines the UpdatePool response
type MsgUpdatePoolResponse struct {
	AmountSaved uint64 `json:"amount_saved"`
}

// MsgWithdrawPool releases a pool back to its saver
type MsgWithdrawPool struct {
	Saver  string `json:"saver"`
	PoolID string `json:"pool_id"`
}

// Route implements sdk.Msg
func (msg MsgWithdrawPool) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgWithdrawPool) Type() string { return TypeMsgWithdrawPool }

// ValidateBasic implements sdk.Msg
func (msg MsgWithdrawPool) ValidateBasic() error {
	if err := validateAddress(msg.Saver, "saver"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPoolID
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgWithdrawPool) GetSigners() []sdk.AccAddress { return signers(msg.Saver) }

// ProtoMessage implements proto.Message
func (*MsgWithdrawPool) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgWithdrawPool) Reset() { *msg = MsgWithdrawPool{} }

// String implements proto.Message
func (msg MsgWithdrawPool) String() string {
	return fmt.Sprintf("MsgWithdrawPool{Saver: %s, PoolID: %s}", msg.Saver, msg.PoolID)
}

// MsgWithdrawPoolResponse defines the WithdrawPool response
type MsgWithdrawPoolResponse struct {
	Released         uint64 `json:"released"`
	Fee              uint64 `json:"fee"`
	GoalAccomplished bool   `json:"goal_accomplished"`
}

// MsgStopPool pauses a pool
type MsgStopPool struct {
	Saver  string `json:"saver"`
	PoolID string `json:"pool_id"`
}

// Route implements sdk.Msg
func (msg MsgStopPool) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgStopPool) Type() string { return TypeMsgStopPool }

// ValidateBasic implements sdk.Msg
func (msg MsgStopPool) ValidateBasic() error {
	if err := validateAddress(msg.Saver, "saver"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPoolID
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgStopPool) GetSigners() []sdk.AccAddress { return signers(msg.Saver) }

// ProtoMessage implements proto.Message
func (*MsgStopPool) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgStopPool) Reset() { *msg = MsgStopPool{} }

// String implements proto.Message
func (msg MsgStopPool) String() string {
	return fmt.Sprintf("MsgStopPool{Saver: %s, PoolID: %s}", msg.Saver, msg.PoolID)
}

// MsgRestartPool resumes a stopped pool
type MsgRestartPool struct {
	Saver  string `json:"saver"`
	PoolID string `json:"pool_id"`
}

// Route implements sdk.Msg
func (msg MsgRestartPool) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgRestartPool) Type() string { return TypeMsgRestartPool }

// ValidateBasic implements sdk.Msg
func (msg MsgRestartPool) ValidateBasic() error {
	if err := validateAddress(msg.Saver, "saver"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPoolID
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgRestartPool) GetSigners() []sdk.AccAddress { return signers(msg.Saver) }

// ProtoMessage implements proto.Message
func (*MsgRestartPool) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgRestartPool) Reset() { *msg = MsgRestartPool{} }

// String implements proto.Message
func (msg MsgRestartPool) String() string {
	return fmt.Sprintf("MsgRestartPool{Saver: %s, PoolID: %s}", msg.Saver, msg.PoolID)
}

// MsgSetAllowedToken adds or removes a token from the allowlist (admin only)
type MsgSetAllowedToken struct {
	Authority string `json:"authority"`
	TokenID   string `json:"token_id"`
	Allowed   bool   `json:"allowed"`
}

// Route implements sdk.Msg
func (msg MsgSetAllowedToken) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetAllowedToken) Type() string { return TypeMsgSetAllowedToken }

// ValidateBasic implements sdk.Msg
func (msg MsgSetAllowedToken) ValidateBasic() error {
	if err := validateAddress(msg.Authority, "authority"); err != nil {
		return err
	}
	if err := sdk.ValidateDenom(msg.TokenID); err != nil {
		return ErrInvalidToken.Wrap(err.Error())
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetAllowedToken) GetSigners() []sdk.AccAddress { return signers(msg.Authority) }

// ProtoMessage implements proto.Message
func (*MsgSetAllowedToken) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetAllowedToken) Reset() { *msg = MsgSetAllowedToken{} }

// String implements proto.Message
func (msg MsgSetAllowedToken) String() string {
	return fmt.Sprintf("MsgSetAllowedToken{Authority: %s, TokenID: %s, Allowed: %t}", msg.Authority, msg.TokenID, msg.Allowed)
}

// MsgSetTokenFiltering toggles allowlist enforcement (admin only)
type MsgSetTokenFiltering struct {
	Authority string `json:"authority"`
	Enabled   bool   `json:"enabled"`
}

// Route implements sdk.Msg
func (msg MsgSetTokenFiltering) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetTokenFiltering) Type() string { return TypeMsgSetTokenFiltering }

// ValidateBasic implements sdk.Msg
func (msg MsgSetTokenFiltering) ValidateBasic() error {
	return validateAddress(msg.Authority, "authority")
}

// GetSigners implements sdk.Msg
func (msg MsgSetTokenFiltering) GetSigners() []sdk.AccAddress { return signers(msg.Authority) }

// ProtoMessage implements proto.Message
func (*MsgSetTokenFiltering) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetTokenFiltering) Reset() { *msg = MsgSetTokenFiltering{} }

// String implements proto.Message
func (msg MsgSetTokenFiltering) String() string {
	return fmt.Sprintf("MsgSetTokenFiltering{Authority: %s, Enabled: %t}", msg.Authority, msg.Enabled)
}

// MsgSetFeeRecipient configures where early withdrawal fees go (admin only)
type MsgSetFeeRecipient struct {
	Authority string `json:"authority"`
	Recipient string `json:"recipient"`
}

// Route implements sdk.Msg
func (msg MsgSetFeeRecipient) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetFeeRecipient) Type() string { return TypeMsgSetFeeRecipient }

// ValidateBasic implements sdk.Msg
func (msg MsgSetFeeRecipient) ValidateBasic() error {
	if err := validateAddress(msg.Authority, "authority"); err != nil {
		return err
	}
	return validateAddress(msg.Recipient, "recipient")
}

// GetSigners implements sdk.Msg
func (msg MsgSetFeeRecipient) GetSigners() []sdk.AccAddress { return signers(msg.Authority) }

// ProtoMessage implements proto.Message
func (*MsgSetFeeRecipient) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetFeeRecipient) Reset() { *msg = MsgSetFeeRecipient{} }

// String implements proto.Message
func (msg MsgSetFeeRecipient) String() string {
	return fmt.Sprintf("MsgSetFeeRecipient{Authority: %s, Recipient: %s}", msg.Authority, msg.Recipient)
}

// MsgTransferAdmin hands the administrator role to another address (admin only)
type MsgTransferAdmin struct {
	Authority string `json:"authority"`
	NewAdmin  string `json:"new_admin"`
}

// Route implements sdk.Msg
func (msg MsgTransferAdmin) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgTransferAdmin) Type() string { return TypeMsgTransferAdmin }

// ValidateBasic implements sdk.Msg
func (msg MsgTransferAdmin) ValidateBasic() error {
	if err := validateAddress(msg.Authority, "authority"); err != nil {
		return err
	}
	return validateAddress(msg.NewAdmin, "new admin")
}

// GetSigners implements sdk.Msg
func (msg MsgTransferAdmin) GetSigners() []sdk.AccAddress { return signers(msg.Authority) }

// ProtoMessage implements proto.Message
func (*MsgTransferAdmin) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgTransferAdmin) Reset() { *msg = MsgTransferAdmin{} }

// String implements proto.Message
func (msg MsgTransferAdmin) String() string {
	return fmt.Sprintf("MsgTransferAdmin{Authority: %s, NewAdmin: %s}", msg.Authority, msg.NewAdmin)
}

// MsgEmptyResponse is returned by msgs without a payload
type MsgEmptyResponse struct{}

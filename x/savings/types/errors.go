package types

import (
	stderrors "errors"

	errorsmod "cosmossdk.io/errors"
)

// Module error codes
var (
	// Validation errors
	ErrInvalidAmount   = errorsmod.Register(ModuleName, 1, "amount must be positive")
	ErrMissingDuration = errorsmod.Register(ModuleName, 2, "duration required for LOCK and STRICTLOCK pools")
	ErrInvalidLockType = errorsmod.Register(ModuleName, 3, "invalid lock type")
	ErrInvalidAddress  = errorsmod.Register(ModuleName, 4, "invalid address")
	ErrInvalidPoolID   = errorsmod.Register(ModuleName, 5, "invalid pool id")
	ErrInvalidToken    = errorsmod.Register(ModuleName, 6, "invalid token id")
	ErrInvalidGenesis  = errorsmod.Register(ModuleName, 7, "invalid genesis state")
	ErrAmountOverflow  = errorsmod.Register(ModuleName, 8, "saved amount overflows uint64")

	// Not found errors
	ErrPoolNotFound = errorsmod.Register(ModuleName, 10, "pool not found")

	// Authorization errors
	ErrNotPoolOwner  = errorsmod.Register(ModuleName, 20, "caller is not the pool saver")
	ErrNotAuthorized = errorsmod.Register(ModuleName, 21, "caller is not the administrator")

	// State errors
	ErrPoolStopped    = errorsmod.Register(ModuleName, 30, "pool is stopped")
	ErrPoolNotStopped = errorsmod.Register(ModuleName, 31, "pool is not stopped")
	ErrPoolEmpty      = errorsmod.Register(ModuleName, 32, "pool has no saved amount")

	// Policy errors
	ErrSavingPeriodActive = errorsmod.Register(ModuleName, 40, "saving period still active")
	ErrFeeRecipientNotSet = errorsmod.Register(ModuleName, 41, "fee recipient not set")

	// Permission policy errors
	ErrTokenNotAllowed = errorsmod.Register(ModuleName, 50, "token not allowed")

	// Index errors
	ErrIndexOutOfBounds = errorsmod.Register(ModuleName, 60, "index out of bounds")

	// Integrity errors
	ErrPoolAlreadyExists = errorsmod.Register(ModuleName, 70, "pool already exists")
	ErrIndexCorrupted    = errorsmod.Register(ModuleName, 71, "saver index out of sync with pool registry")
	ErrCorruptedRecord   = errorsmod.Register(ModuleName, 72, "corrupted store record")

	// Custody errors
	ErrTransferFailed = errorsmod.Register(ModuleName, 80, "custody transfer failed")
)

// Kind classifies module errors into failure families
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindAuthorization    Kind = "authorization"
	KindState            Kind = "state"
	KindPolicy           Kind = "policy"
	KindPermissionPolicy Kind = "permission_policy"
	KindIndex            Kind = "index"
	KindIntegrity        Kind = "integrity"
	KindTransfer         Kind = "transfer"
)

// ErrorKind returns the failure family of err, or KindUnknown when err was
// not produced by this module
func ErrorKind(err error) Kind {
	var e *errorsmod.Error
	if err == nil || !stderrors.As(err, &e) || e.Codespace() != ModuleName {
		return KindUnknown
	}
	switch code := e.ABCICode(); {
	case code < 10:
		return KindValidation
	case code < 20:
		return KindNotFound
	case code < 30:
		return KindAuthorization
	case code < 40:
		return KindState
	case code < 50:
		return KindPolicy
	case code < 60:
		return KindPermissionPolicy
	case code < 70:
		return KindIndex
	case code < 80:
		return KindIntegrity
	default:
		return KindTransfer
	}
}

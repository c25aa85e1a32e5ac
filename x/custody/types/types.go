package types

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Module name and store key
const (
	ModuleName = "custody"
	StoreKey   = ModuleName
)

// Store key prefixes
var (
	BalanceKeyPrefix = []byte{0x01} // address | denom -> amount
)

// Errors
var (
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 1, "insufficient funds")
	ErrInvalidCoins      = errorsmod.Register(ModuleName, 2, "invalid coins")
	ErrInvalidAddress    = errorsmod.Register(ModuleName, 3, "invalid address")
)

// BalanceKey returns the key of addr's balance of denom
func BalanceKey(addr []byte, denom string) []byte {
	key := make([]byte, 0, len(BalanceKeyPrefix)+1+len(addr)+len(denom))
	key = append(key, BalanceKeyPrefix...)
	key = append(key, byte(len(addr)))
	key = append(key, addr...)
	return append(key, denom...)
}

// AddressBalancesPrefix returns the prefix of every balance held by addr
func AddressBalancesPrefix(addr []byte) []byte {
	key := make([]byte, 0, len(BalanceKeyPrefix)+1+len(addr))
	key = append(key, BalanceKeyPrefix...)
	key = append(key, byte(len(addr)))
	return append(key, addr...)
}

// SplitBalanceKey recovers the address and denom from a balance key
func SplitBalanceKey(key []byte) (sdk.AccAddress, string, bool) {
	key = key[len(BalanceKeyPrefix):]
	if len(key) == 0 {
		return nil, "", false
	}
	n := int(key[0])
	if len(key) < 1+n {
		return nil, "", false
	}
	return sdk.AccAddress(key[1 : 1+n]), string(key[1+n:]), true
}

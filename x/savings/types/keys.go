package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Module name and store key
const (
	ModuleName = "savings"
	StoreKey   = ModuleName

	// ModuleAccountName holds custody of every saved balance
	ModuleAccountName = ModuleName
)

// Store key prefixes
var (
	PoolKeyPrefix          = []byte{0x01}
	SaverIndexKeyPrefix    = []byte{0x02} // saver | position -> pool id
	SaverPositionKeyPrefix = []byte{0x03} // saver | pool id -> position
	SaverCountKeyPrefix    = []byte{0x04}
	SaverSequenceKeyPrefix = []byte{0x05}
	TotalPoolsKey          = []byte{0x06}
	AdminConfigKey         = []byte{0x07}
	AllowedTokenKeyPrefix  = []byte{0x08}
)

const keySeparator = ':'

func prefixed(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p) + 1
	}
	key := make([]byte, 0, size)
	key = append(key, prefix...)
	for i, p := range parts {
		if i > 0 {
			key = append(key, keySeparator)
		}
		key = append(key, p...)
	}
	return key
}

// PoolKey returns the store key of a pool record
func PoolKey(poolID string) []byte {
	return prefixed(PoolKeyPrefix, []byte(poolID))
}

// SaverIndexPrefix returns the prefix of all index slots owned by saver
func SaverIndexPrefix(saver string) []byte {
	return append(prefixed(SaverIndexKeyPrefix, []byte(saver)), keySeparator)
}

// SaverIndexKey returns the key of the index slot at position
func SaverIndexKey(saver string, position uint64) []byte {
	return prefixed(SaverIndexKeyPrefix, []byte(saver), sdk.Uint64ToBigEndian(position))
}

// SaverPositionKey returns the key holding the position of poolID in the saver's list
func SaverPositionKey(saver, poolID string) []byte {
	return prefixed(SaverPositionKeyPrefix, []byte(saver), []byte(poolID))
}

// SaverCountKey returns the key of the saver's live pool count
func SaverCountKey(saver string) []byte {
	return prefixed(SaverCountKeyPrefix, []byte(saver))
}

// SaverSequenceKey returns the key of the saver's open sequence
func SaverSequenceKey(saver string) []byte {
	return prefixed(SaverSequenceKeyPrefix, []byte(saver))
}

// AllowedTokenKey returns the allowlist key of a token
func AllowedTokenKey(tokenID string) []byte {
	return prefixed(AllowedTokenKeyPrefix, []byte(tokenID))
}

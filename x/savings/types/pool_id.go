package types

import (
	"encoding/hex"

	"github.com/cometbft/cometbft/crypto/tmhash"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// DerivePoolID hashes (saver, sequence, startDate) into a hex pool id
func DerivePoolID(saver string, sequence uint64, startDate int64) string {
	bz := make([]byte, 0, len(saver)+16)
	bz = append(bz, saver...)
	bz = append(bz, sdk.Uint64ToBigEndian(sequence)...)
	bz = append(bz, sdk.Uint64ToBigEndian(uint64(startDate))...)
	return hex.EncodeToString(tmhash.Sum(bz))
}

var _ IDDeriver = DerivePoolID

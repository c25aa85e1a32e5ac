package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// SaverSequence records how many pools a saver has ever opened
type SaverSequence struct {
	Saver    string `json:"saver"`
	Sequence uint64 `json:"sequence"`
}

// GenesisState is the exported state of the savings module
type GenesisState struct {
	Admin         AdminConfig     `json:"admin"`
	AllowedTokens []string        `json:"allowed_tokens"`
	Pools         []SavingPool    `json:"pools"`
	Sequences     []SaverSequence `json:"sequences"`
}

// DefaultGenesis returns an empty ledger administered by admin
func DefaultGenesis(admin string) *GenesisState {
	return &GenesisState{
		Admin:         DefaultAdminConfig(admin),
		AllowedTokens: []string{},
		Pools:         []SavingPool{},
		Sequences:     []SaverSequence{},
	}
}

// Validate performs stateless validation of the genesis state
func (gs GenesisState) Validate() error {
	if _, err := sdk.AccAddressFromBech32(gs.Admin.Administrator); err != nil {
		return ErrInvalidGenesis.Wrapf("administrator: %v", err)
	}
	if gs.Admin.HasFeeRecipient() {
		if _, err := sdk.AccAddressFromBech32(gs.Admin.FeeRecipient); err != nil {
			return ErrInvalidGenesis.Wrapf("fee recipient: %v", err)
		}
	}

	tokens := make(map[string]struct{}, len(gs.AllowedTokens))
	for _, token := range gs.AllowedTokens {
		if err := sdk.ValidateDenom(token); err != nil {
			return ErrInvalidGenesis.Wrapf("allowed token %q: %v", token, err)
		}
		if _, dup := tokens[token]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate allowed token %s", token)
		}
		tokens[token] = struct{}{}
	}

	perSaver := make(map[string]uint64)
	ids := make(map[string]struct{}, len(gs.Pools))
	for i := range gs.Pools {
		pool := &gs.Pools[i]
		if err := pool.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("pool %d: %v", i, err)
		}
		if pool.AmountSaved == 0 {
			return ErrInvalidGenesis.Wrapf("pool %s has zero balance", pool.PoolID)
		}
		if _, dup := ids[pool.PoolID]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate pool id %s", pool.PoolID)
		}
		ids[pool.PoolID] = struct{}{}
		perSaver[pool.Saver]++
	}

	seen := make(map[string]struct{}, len(gs.Sequences))
	for _, seq := range gs.Sequences {
		if _, err := sdk.AccAddressFromBech32(seq.Saver); err != nil {
			return ErrInvalidGenesis.Wrapf("sequence saver: %v", err)
		}
		if _, dup := seen[seq.Saver]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate sequence for %s", seq.Saver)
		}
		seen[seq.Saver] = struct{}{}
		if seq.Sequence < perSaver[seq.Saver] {
			return ErrInvalidGenesis.Wrapf("sequence %d of %s below live pool count %d", seq.Sequence, seq.Saver, perSaver[seq.Saver])
		}
	}
	for saver := range perSaver {
		if _, ok := seen[saver]; !ok {
			return ErrInvalidGenesis.Wrapf("missing sequence for saver %s", saver)
		}
	}
	return nil
}

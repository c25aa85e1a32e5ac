package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// LockType selects the withdrawal policy of a pool
type LockType int32

const (
	// LockTypeFlexible allows withdrawal at any time without fee
	LockTypeFlexible LockType = iota
	// LockTypeLock allows early withdrawal with a fee
	LockTypeLock
	// LockTypeStrictLock blocks withdrawal until maturity
	LockTypeStrictLock
)

// Early withdrawal fee for LOCK pools, in percent of the saved amount
const EarlyWithdrawalFeePercent = 3

var lockTypeNames = map[LockType]string{
	LockTypeFlexible:   "FLEXIBLE",
	LockTypeLock:       "LOCK",
	LockTypeStrictLock: "STRICTLOCK",
}

// String returns the canonical name of the lock type
func (l LockType) String() string {
	if name, ok := lockTypeNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LockType(%d)", int32(l))
}

// IsValid reports whether l is one of the known lock types
func (l LockType) IsValid() bool {
	_, ok := lockTypeNames[l]
	return ok
}

// RequiresDuration reports whether pools of this type must carry a positive duration
func (l LockType) RequiresDuration() bool {
	return l == LockTypeLock || l == LockTypeStrictLock
}

// ParseLockType parses a lock type name, case-insensitively
func ParseLockType(s string) (LockType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for l, name := range lockTypeNames {
		if name == upper {
			return l, nil
		}
	}
	return 0, ErrInvalidLockType.Wrapf("unknown lock type %q", s)
}

// MarshalJSON encodes the lock type by name
func (l LockType) MarshalJSON() ([]byte, error) {
	if !l.IsValid() {
		return nil, ErrInvalidLockType.Wrapf("cannot encode %d", int32(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a lock type name
func (l *LockType) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	parsed, err := ParseLockType(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// SavingPool is one open commitment of funds by a saver
type SavingPool struct {
	Saver              string   `json:"saver"`
	TokenID            string   `json:"token_id"`
	Reason             string   `json:"reason"`
	PoolID             string   `json:"pool_id"`
	StartDate          int64    `json:"start_date"` // unix seconds
	Duration           int64    `json:"duration"`   // seconds, 0 for FLEXIBLE
	AmountSaved        uint64   `json:"amount_saved"`
	LockType           LockType `json:"lock_type"`
	IsGoalAccomplished bool     `json:"is_goal_accomplished"`
	IsStopped          bool     `json:"is_stopped"`
}

// MaturityTime returns startDate + duration, saturating at MaxInt64
func (p *SavingPool) MaturityTime() int64 {
	return maturityTime(p.StartDate, p.Duration)
}

// IsMature reports whether the lock condition is met at now
func (p *SavingPool) IsMature(now int64) bool {
	return now >= p.MaturityTime()
}

func maturityTime(startDate, duration int64) int64 {
	if duration > 0 && startDate > math.MaxInt64-duration {
		return math.MaxInt64
	}
	return startDate + duration
}

// Validate checks the stateless invariants of a stored pool
func (p *SavingPool) Validate() error {
	if p.PoolID == "" {
		return ErrInvalidPoolID
	}
	if _, err := sdk.AccAddressFromBech32(p.Saver); err != nil {
		return ErrInvalidAddress.Wrapf("saver: %v", err)
	}
	if err := sdk.ValidateDenom(p.TokenID); err != nil {
		return ErrInvalidToken.Wrap(err.Error())
	}
	if !p.LockType.IsValid() {
		return ErrInvalidLockType
	}
	if p.LockType.RequiresDuration() && p.Duration <= 0 {
		return ErrMissingDuration.Wrapf("pool %s", p.PoolID)
	}
	return nil
}

// WithdrawalDecision is the amount split decided for a withdrawal
type WithdrawalDecision struct {
	Released         uint64 `json:"released"`
	Fee              uint64 `json:"fee"`
	GoalAccomplished bool   `json:"goal_accomplished"`
}

// AdminConfig holds the administrative configuration of the ledger
type AdminConfig struct {
	Administrator         string `json:"administrator"`
	FeeRecipient          string `json:"fee_recipient,omitempty"`
	TokenFilteringEnabled bool   `json:"token_filtering_enabled"`
}

// DefaultAdminConfig returns a configuration owned by admin with filtering disabled
func DefaultAdminConfig(admin string) AdminConfig {
	return AdminConfig{
		Administrator:         admin,
		TokenFilteringEnabled: false,
	}
}

// HasFeeRecipient reports whether a fee recipient is configured
func (c AdminConfig) HasFeeRecipient() bool {
	return c.FeeRecipient != ""
}

package types

// Event types
const (
	EventTypeOpen        = "savings_open"
	EventTypeUpdate      = "savings_update"
	EventTypeWithdraw    = "savings_withdraw"
	EventTypeStop        = "savings_stop"
	EventTypeRestart     = "savings_restart"
	EventTypeAdminUpdate = "savings_admin_update"
)

// Event attribute keys
const (
	AttributeKeyPoolID           = "pool_id"
	AttributeKeySaver            = "saver"
	AttributeKeyTokenID          = "token_id"
	AttributeKeyAmount           = "amount"
	AttributeKeyAmountSaved      = "amount_saved"
	AttributeKeyLockType         = "lock_type"
	AttributeKeyDuration         = "duration"
	AttributeKeyReleased         = "released"
	AttributeKeyFee              = "fee"
	AttributeKeyFeeRecipient     = "fee_recipient"
	AttributeKeyGoalAccomplished = "goal_accomplished"
	AttributeKeyAction           = "action"
	AttributeKeyValue            = "value"
)

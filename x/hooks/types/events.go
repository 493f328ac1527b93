package types

// Event types and attribute keys emitted by the hooks module.
const (
	EventTypeCreateHook            = "create_hook"
	EventTypeInsertedIntoTree      = "inserted_into_tree"
	EventTypeSetProtocolFee        = "set_protocol_fee"
	EventTypeSetBeneficiary        = "set_beneficiary"
	EventTypeClaimFees             = "claim_protocol_fees"
	EventTypeSetRateLimit          = "set_rate_limit"
	EventTypeRateLimitConsumed     = "rate_limit_consumed"
	EventTypeSetDomainHook         = "set_domain_hook"
	EventTypeSetRecipientHook      = "set_recipient_hook"
	EventTypeAggregationHookOk     = "aggregation_hook_succeeded"
	EventTypeAggregationHookFailed = "aggregation_hook_failed"
	EventTypeMessageIdSent         = "message_id_sent"

	AttributeKeyHookId      = "hook_id"
	AttributeKeyHookType    = "hook_type"
	AttributeKeyOwner       = "owner"
	AttributeKeyMessageId   = "message_id"
	AttributeKeyIndex       = "index"
	AttributeKeyRoot        = "root"
	AttributeKeyProtocolFee = "protocol_fee"
	AttributeKeyBeneficiary = "beneficiary"
	AttributeKeyAmount      = "amount"
	AttributeKeyCapacity    = "capacity"
	AttributeKeyDomain      = "domain"
	AttributeKeyRecipient   = "recipient"
	AttributeKeyChildHookId = "child_hook_id"
	AttributeKeyError       = "error"
)

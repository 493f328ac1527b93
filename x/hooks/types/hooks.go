package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
)

// MerkleTreeHook records every dispatched message id in an append-only
// incremental Merkle tree. It charges no fee.
type MerkleTreeHook struct {
	Id        util.HexAddress `json:"id"`
	Owner     string          `json:"owner"`
	MailboxId util.HexAddress `json:"mailbox_id"`
	Tree      util.MerkleTree `json:"tree"`
}

// ProtocolFeeHook charges a flat native fee per dispatch, capped by an
// immutable maximum fixed at creation, and accrues the charges until they are
// claimed for the beneficiary.
type ProtocolFeeHook struct {
	Id             util.HexAddress `json:"id"`
	Owner          string          `json:"owner"`
	MaxProtocolFee sdk.Coins       `json:"max_protocol_fee"`
	ProtocolFee    sdk.Coins       `json:"protocol_fee"`
	Beneficiary    string          `json:"beneficiary"`
	ClaimableFees  sdk.Coins       `json:"claimable_fees"`
}

// RateLimitedHook combines the flat fee charge with a token-bucket limit on
// the message value moved per refill window.
type RateLimitedHook struct {
	Id            util.HexAddress `json:"id"`
	Owner         string          `json:"owner"`
	Capacity      math.Int        `json:"capacity"`
	FilledLevel   math.Int        `json:"filled_level"`
	LastUpdated   int64           `json:"last_updated"`
	Fee           sdk.Coins       `json:"fee"`
	Beneficiary   string          `json:"beneficiary"`
	ClaimableFees sdk.Coins       `json:"claimable_fees"`
}

// RoutingHook selects exactly one child hook per message. The kind of routing
// (plain domain, fallback domain, destination+recipient) is carried by the
// hook type tag in Id; FallbackHookId is zero for the plain variant.
type RoutingHook struct {
	Id             util.HexAddress `json:"id"`
	Owner          string          `json:"owner"`
	FallbackHookId util.HexAddress `json:"fallback_hook_id"`
}

// AggregationHook fans a dispatch out to an ordered set of child hooks fixed
// at creation. The set is not mutable storage; no setter exists.
type AggregationHook struct {
	Id      util.HexAddress   `json:"id"`
	Owner   string            `json:"owner"`
	HookIds []util.HexAddress `json:"hook_ids"`
}

// MessageIdHook wraps a native bridge to deliver a single verify-message-id
// call to a destination ISM. The bridge wire format lives behind the
// BridgeAdapter registered for AdapterType.
type MessageIdHook struct {
	Id                util.HexAddress `json:"id"`
	Owner             string          `json:"owner"`
	DestinationDomain uint32          `json:"destination_domain"`
	AdapterType       uint32          `json:"adapter_type"`
}

// VerifyMessageIdSelector prefixes every bridge payload so the destination
// ISM can recognize the verify-message-id call.
var VerifyMessageIdSelector = [4]byte{0xed, 0xc1, 0x09, 0x9c}

// VerifyMessageIdPayload builds the payload a message-id hook hands to its
// bridge adapter: the fixed selector followed by the 32-byte message id.
func VerifyMessageIdPayload(messageId util.HexAddress) []byte {
	payload := make([]byte, 0, 4+util.HexAddressLength)
	payload = append(payload, VerifyMessageIdSelector[:]...)
	return append(payload, messageId.Bytes()...)
}

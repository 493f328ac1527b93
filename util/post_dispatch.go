package util

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Hook type tags. Each concrete hook kind has one globally agreed constant,
// embedded in the hook's HexAddress so off-chain tooling can introspect
// composition trees without decoding state.
const (
	HookTypeUnused uint32 = iota
	HookTypeMerkleTree
	HookTypeProtocolFee
	HookTypeRateLimitedFee
	HookTypeDomainRouting
	HookTypeFallbackDomainRouting
	HookTypeDestinationRecipientRouting
	HookTypeAggregation
	HookTypeMessageIdBridge
)

// PostDispatchModule is the two-phase fee-quote/effect contract every hook
// kind implements. QuoteDispatch must be side-effect-free and return the fee
// a subsequent PostDispatch with the same arguments requires; PostDispatch
// performs the effect and returns the coins actually charged.
//
// The pairing is best-effort: a hook consulting mutable state (a rate bucket,
// an oracle) may observe a different quote between the two calls. That
// non-atomicity is a documented property of the protocol, not a bug.
type PostDispatchModule interface {
	// HookType returns the module's stable hook type tag.
	HookType() uint32

	// Exists reports whether hookId refers to a live hook of this kind.
	Exists(ctx context.Context, hookId HexAddress) (bool, error)

	// SupportsMetadata is a capability probe; metadata-variant-sensitive
	// hooks use it to reject incompatible callers early.
	SupportsMetadata(metadata StandardHookMetadata) bool

	// QuoteDispatch returns the fee required for PostDispatch to succeed.
	QuoteDispatch(ctx context.Context, mailboxId, hookId HexAddress, metadata StandardHookMetadata, message HyperlaneMessage) (sdk.Coins, error)

	// PostDispatch performs the hook's side effect. maxFee caps what the
	// hook may charge; the returned coins are what was actually charged.
	PostDispatch(ctx context.Context, mailboxId, hookId HexAddress, metadata StandardHookMetadata, message HyperlaneMessage, maxFee sdk.Coins) (sdk.Coins, error)
}

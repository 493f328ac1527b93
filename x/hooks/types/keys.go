package types

import (
	"cosmossdk.io/collections"
)

const (
	// ModuleName defines the module name
	ModuleName = "hooks"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RateLimitDuration is the token-bucket refill window in seconds. A
	// fully drained bucket is fully refilled after one window.
	RateLimitDuration int64 = 24 * 60 * 60

	// MaxDispatchDepth bounds recursive hook composition so routing cycles
	// terminate with an error instead of recursing unboundedly.
	MaxDispatchDepth = 8
)

var (
	HooksSequenceKey               = collections.NewPrefix(0)
	MerkleTreeHooksKeyPrefix       = collections.NewPrefix(1)
	ProtocolFeeHooksKeyPrefix      = collections.NewPrefix(2)
	RateLimitedHooksKeyPrefix      = collections.NewPrefix(3)
	RoutingHooksKeyPrefix          = collections.NewPrefix(4)
	RoutingTableKeyPrefix          = collections.NewPrefix(5)
	RecipientRoutingTableKeyPrefix = collections.NewPrefix(6)
	AggregationHooksKeyPrefix      = collections.NewPrefix(7)
	MessageIdHooksKeyPrefix        = collections.NewPrefix(8)
	ConsumedMessagesKeyPrefix      = collections.NewPrefix(9)
)

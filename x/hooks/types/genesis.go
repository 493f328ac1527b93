package types

import (
	"fmt"

	"github.com/celestiaorg/hyperlane-hooks/util"
)

// RoutingTableEntry is one (routing hook, destination domain) -> child
// binding, with an optional recipient for destination-recipient routing.
type RoutingTableEntry struct {
	HookId    util.HexAddress `json:"hook_id"`
	Domain    uint32          `json:"domain"`
	Recipient []byte          `json:"recipient,omitempty"`
	ChildId   util.HexAddress `json:"child_id"`
}

// ConsumedMessageEntry marks one message id as having already drawn down a
// rate-limited hook's bucket.
type ConsumedMessageEntry struct {
	HookId    util.HexAddress `json:"hook_id"`
	MessageId util.HexAddress `json:"message_id"`
}

// GenesisState carries the full hook state of the module.
type GenesisState struct {
	HooksSequence    uint64                 `json:"hooks_sequence"`
	MerkleTreeHooks  []MerkleTreeHook       `json:"merkle_tree_hooks"`
	ProtocolFeeHooks []ProtocolFeeHook      `json:"protocol_fee_hooks"`
	RateLimitedHooks []RateLimitedHook      `json:"rate_limited_hooks"`
	ConsumedMessages []ConsumedMessageEntry `json:"consumed_messages"`
	RoutingHooks     []RoutingHook          `json:"routing_hooks"`
	RoutingTable     []RoutingTableEntry    `json:"routing_table"`
	AggregationHooks []AggregationHook      `json:"aggregation_hooks"`
	MessageIdHooks   []MessageIdHook        `json:"message_id_hooks"`
}

// DefaultGenesis returns the empty genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate performs basic structural checks on the genesis state.
func (gs *GenesisState) Validate() error {
	seen := map[uint64]struct{}{}

	checkId := func(id util.HexAddress) error {
		if id.IsZeroAddress() {
			return fmt.Errorf("hook id must not be zero")
		}
		internalId := id.GetInternalId()
		if _, ok := seen[internalId]; ok {
			return fmt.Errorf("duplicate hook internal id %d", internalId)
		}
		if internalId >= gs.HooksSequence {
			return fmt.Errorf("hook internal id %d exceeds sequence %d", internalId, gs.HooksSequence)
		}
		seen[internalId] = struct{}{}
		return nil
	}

	for _, hook := range gs.MerkleTreeHooks {
		if err := checkId(hook.Id); err != nil {
			return err
		}
	}
	for _, hook := range gs.ProtocolFeeHooks {
		if err := checkId(hook.Id); err != nil {
			return err
		}
		if hook.Beneficiary == "" {
			return fmt.Errorf("protocol fee hook %s has empty beneficiary", hook.Id)
		}
	}
	for _, hook := range gs.RateLimitedHooks {
		if err := checkId(hook.Id); err != nil {
			return err
		}
	}
	for _, hook := range gs.RoutingHooks {
		if err := checkId(hook.Id); err != nil {
			return err
		}
	}
	for _, hook := range gs.AggregationHooks {
		if err := checkId(hook.Id); err != nil {
			return err
		}
		if len(hook.HookIds) == 0 {
			return fmt.Errorf("aggregation hook %s has no children", hook.Id)
		}
	}
	for _, hook := range gs.MessageIdHooks {
		if err := checkId(hook.Id); err != nil {
			return err
		}
	}
	for _, entry := range gs.ConsumedMessages {
		if entry.HookId.IsZeroAddress() {
			return fmt.Errorf("consumed message entry has zero hook id")
		}
	}
	for _, entry := range gs.RoutingTable {
		if entry.Domain == 0 {
			return fmt.Errorf("routing table entry for hook %s has zero domain", entry.HookId)
		}
	}

	return nil
}

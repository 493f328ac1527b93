package keeper

import (
	"context"

	"cosmossdk.io/collections"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// InitGenesis restores the module state from a genesis state.
func (k *Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}

	if err := k.hooksSequence.Set(ctx, gs.HooksSequence); err != nil {
		return err
	}

	for _, hook := range gs.MerkleTreeHooks {
		if err := k.merkleTreeHooks.Set(ctx, hook.Id.GetInternalId(), hook); err != nil {
			return err
		}
	}
	for _, hook := range gs.ProtocolFeeHooks {
		if err := k.protocolFeeHooks.Set(ctx, hook.Id.GetInternalId(), hook); err != nil {
			return err
		}
	}
	for _, hook := range gs.RateLimitedHooks {
		if err := k.rateLimitedHooks.Set(ctx, hook.Id.GetInternalId(), hook); err != nil {
			return err
		}
	}
	for _, hook := range gs.RoutingHooks {
		if err := k.routingHooks.Set(ctx, hook.Id.GetInternalId(), hook); err != nil {
			return err
		}
	}
	for _, hook := range gs.AggregationHooks {
		if err := k.aggregationHooks.Set(ctx, hook.Id.GetInternalId(), hook); err != nil {
			return err
		}
	}
	for _, hook := range gs.MessageIdHooks {
		if err := k.messageIdHooks.Set(ctx, hook.Id.GetInternalId(), hook); err != nil {
			return err
		}
	}

	for _, entry := range gs.ConsumedMessages {
		key := collections.Join(entry.HookId.GetInternalId(), entry.MessageId.Bytes())
		if err := k.consumedMessages.Set(ctx, key); err != nil {
			return err
		}
	}

	for _, entry := range gs.RoutingTable {
		internalId := entry.HookId.GetInternalId()
		if len(entry.Recipient) > 0 {
			key := collections.Join3(internalId, entry.Domain, entry.Recipient)
			if err := k.recipientRoutingTable.Set(ctx, key, entry.ChildId.Bytes()); err != nil {
				return err
			}
			continue
		}
		if err := k.routingTable.Set(ctx, collections.Join(internalId, entry.Domain), entry.ChildId.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// ExportGenesis extracts the full module state.
func (k *Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()

	sequence, err := k.hooksSequence.Peek(ctx)
	if err != nil {
		return nil, err
	}
	gs.HooksSequence = sequence

	if err := k.merkleTreeHooks.Walk(ctx, nil, func(_ uint64, hook types.MerkleTreeHook) (bool, error) {
		gs.MerkleTreeHooks = append(gs.MerkleTreeHooks, hook)
		return false, nil
	}); err != nil {
		return nil, err
	}

	if err := k.protocolFeeHooks.Walk(ctx, nil, func(_ uint64, hook types.ProtocolFeeHook) (bool, error) {
		gs.ProtocolFeeHooks = append(gs.ProtocolFeeHooks, hook)
		return false, nil
	}); err != nil {
		return nil, err
	}

	rateLimitedHookIds := map[uint64]util.HexAddress{}
	if err := k.rateLimitedHooks.Walk(ctx, nil, func(internalId uint64, hook types.RateLimitedHook) (bool, error) {
		gs.RateLimitedHooks = append(gs.RateLimitedHooks, hook)
		rateLimitedHookIds[internalId] = hook.Id
		return false, nil
	}); err != nil {
		return nil, err
	}

	// the replay guard must survive export, or restored chains would let
	// already consumed message ids draw the bucket again
	if err := k.consumedMessages.Walk(ctx, nil, func(key collections.Pair[uint64, []byte]) (bool, error) {
		messageId, err := hexAddressFromBytes(key.K2())
		if err != nil {
			return true, err
		}
		gs.ConsumedMessages = append(gs.ConsumedMessages, types.ConsumedMessageEntry{
			HookId:    rateLimitedHookIds[key.K1()],
			MessageId: messageId,
		})
		return false, nil
	}); err != nil {
		return nil, err
	}

	routingHookIds := map[uint64]util.HexAddress{}
	if err := k.routingHooks.Walk(ctx, nil, func(internalId uint64, hook types.RoutingHook) (bool, error) {
		gs.RoutingHooks = append(gs.RoutingHooks, hook)
		routingHookIds[internalId] = hook.Id
		return false, nil
	}); err != nil {
		return nil, err
	}

	if err := k.aggregationHooks.Walk(ctx, nil, func(_ uint64, hook types.AggregationHook) (bool, error) {
		gs.AggregationHooks = append(gs.AggregationHooks, hook)
		return false, nil
	}); err != nil {
		return nil, err
	}

	if err := k.messageIdHooks.Walk(ctx, nil, func(_ uint64, hook types.MessageIdHook) (bool, error) {
		gs.MessageIdHooks = append(gs.MessageIdHooks, hook)
		return false, nil
	}); err != nil {
		return nil, err
	}

	if err := k.routingTable.Walk(ctx, nil, func(key collections.Pair[uint64, uint32], child []byte) (bool, error) {
		childId, err := hexAddressFromBytes(child)
		if err != nil {
			return true, err
		}
		gs.RoutingTable = append(gs.RoutingTable, types.RoutingTableEntry{
			HookId:  routingHookIds[key.K1()],
			Domain:  key.K2(),
			ChildId: childId,
		})
		return false, nil
	}); err != nil {
		return nil, err
	}

	if err := k.recipientRoutingTable.Walk(ctx, nil, func(key collections.Triple[uint64, uint32, []byte], child []byte) (bool, error) {
		childId, err := hexAddressFromBytes(child)
		if err != nil {
			return true, err
		}
		gs.RoutingTable = append(gs.RoutingTable, types.RoutingTableEntry{
			HookId:    routingHookIds[key.K1()],
			Domain:    key.K2(),
			Recipient: key.K3(),
			ChildId:   childId,
		})
		return false, nil
	}); err != nil {
		return nil, err
	}

	return gs, nil
}

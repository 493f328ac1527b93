package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// CreateAggregationHook creates a hook that fans every dispatch out to an
// ordered set of child hooks. The set is fixed at creation; no setter exists.
func (k *Keeper) CreateAggregationHook(ctx context.Context, owner string, hookIds []util.HexAddress) (util.HexAddress, error) {
	if owner == "" {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "owner must not be empty")
	}
	if len(hookIds) == 0 {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "aggregation hook requires at least one child")
	}

	for _, childId := range hookIds {
		exists, err := k.HookExists(ctx, childId)
		if err != nil {
			return util.HexAddress{}, err
		}
		if !exists {
			return util.HexAddress{}, errorsmod.Wrapf(types.ErrHookNotFound, "child hook %s", childId)
		}
	}

	hookId, err := k.nextHookId(ctx, util.HookTypeAggregation)
	if err != nil {
		return util.HexAddress{}, err
	}

	hook := types.AggregationHook{
		Id:      hookId,
		Owner:   owner,
		HookIds: hookIds,
	}

	if err := k.aggregationHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return util.HexAddress{}, err
	}

	emitCreateHookEvent(ctx, hookId, owner)
	return hookId, nil
}

// GetAggregationHook returns the hook state for the given id.
func (k *Keeper) GetAggregationHook(ctx context.Context, hookId util.HexAddress) (types.AggregationHook, error) {
	hook, err := k.aggregationHooks.Get(ctx, hookId.GetInternalId())
	if err != nil {
		return types.AggregationHook{}, errorsmod.Wrapf(types.ErrHookNotFound, "aggregation hook %s", hookId)
	}
	return hook, nil
}

type aggregationHookHandler struct {
	k *Keeper
}

var _ util.PostDispatchModule = aggregationHookHandler{}

func (h aggregationHookHandler) HookType() uint32 {
	return util.HookTypeAggregation
}

func (h aggregationHookHandler) Exists(ctx context.Context, hookId util.HexAddress) (bool, error) {
	return h.k.aggregationHooks.Has(ctx, hookId.GetInternalId())
}

func (h aggregationHookHandler) SupportsMetadata(util.StandardHookMetadata) bool {
	return true
}

// QuoteDispatch sums the children's quotes. A child whose quote fails
// contributes zero instead of aborting the aggregate.
func (h aggregationHookHandler) QuoteDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage) (sdk.Coins, error) {
	hook, err := h.k.GetAggregationHook(ctx, hookId)
	if err != nil {
		return nil, err
	}

	total := sdk.NewCoins()
	for _, childId := range hook.HookIds {
		quote, err := h.k.QuoteDispatch(ctx, mailboxId, childId, metadata, message)
		if err != nil {
			h.k.Logger(ctx).Debug("aggregation child quote failed", "hook", hookId.String(), "child", childId.String(), "error", err)
			continue
		}
		total = total.Add(quote...)
	}

	return total, nil
}

// PostDispatch invokes every child in construction order with the caller's
// full budget. A failing child is caught, signalled via event and skipped; it
// never blocks the remaining children.
func (h aggregationHookHandler) PostDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage, maxFee sdk.Coins) (sdk.Coins, error) {
	hook, err := h.k.GetAggregationHook(ctx, hookId)
	if err != nil {
		return nil, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)

	total := sdk.NewCoins()
	for _, childId := range hook.HookIds {
		// each child runs against a cached store committed only on success,
		// so a failing child leaves no partial writes behind
		cacheCtx, commit := sdkCtx.CacheContext()

		charged, err := h.k.PostDispatch(cacheCtx, mailboxId, childId, metadata, message, maxFee)
		if err != nil {
			emitAggregationChildEvent(ctx, types.EventTypeAggregationHookFailed, hookId, childId,
				sdk.NewAttribute(types.AttributeKeyError, err.Error()))
			h.k.Logger(ctx).Error("aggregation child post dispatch failed", "hook", hookId.String(), "child", childId.String(), "error", err)
			continue
		}

		commit()
		emitAggregationChildEvent(ctx, types.EventTypeAggregationHookOk, hookId, childId)
		total = total.Add(charged...)
	}

	return total, nil
}

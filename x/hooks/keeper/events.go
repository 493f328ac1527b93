package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

func emitCreateHookEvent(ctx context.Context, hookId util.HexAddress, owner string) {
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeCreateHook,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyHookType, fmt.Sprintf("%d", hookId.GetType())),
		sdk.NewAttribute(types.AttributeKeyOwner, owner),
	))
}

func emitDomainHookSetEvent(ctx context.Context, hookId util.HexAddress, domain uint32, childId util.HexAddress) {
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeSetDomainHook,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyDomain, fmt.Sprintf("%d", domain)),
		sdk.NewAttribute(types.AttributeKeyChildHookId, childId.String()),
	))
}

func emitAggregationChildEvent(ctx context.Context, eventType string, hookId, childId util.HexAddress, attrs ...sdk.Attribute) {
	event := sdk.NewEvent(eventType,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyChildHookId, childId.String()),
	)
	event = event.AppendAttributes(attrs...)
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(event)
}

package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// CreateDomainRoutingHook creates a routing hook that selects one child hook
// by message destination and errors on unconfigured domains.
func (k *Keeper) CreateDomainRoutingHook(ctx context.Context, owner string) (util.HexAddress, error) {
	return k.createRoutingHook(ctx, owner, util.HookTypeDomainRouting, util.NewZeroAddress())
}

// CreateFallbackDomainRoutingHook creates a routing hook that substitutes the
// given fallback hook for unconfigured domains instead of erroring.
func (k *Keeper) CreateFallbackDomainRoutingHook(ctx context.Context, owner string, fallbackHookId util.HexAddress) (util.HexAddress, error) {
	if fallbackHookId.IsZeroAddress() {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "fallback hook must not be zero")
	}
	return k.createRoutingHook(ctx, owner, util.HookTypeFallbackDomainRouting, fallbackHookId)
}

// CreateDestinationRecipientRoutingHook creates a routing hook that checks a
// recipient-specific override before the per-domain entry. A zero fallback is
// allowed; without one, unconfigured routes error.
func (k *Keeper) CreateDestinationRecipientRoutingHook(ctx context.Context, owner string, fallbackHookId util.HexAddress) (util.HexAddress, error) {
	return k.createRoutingHook(ctx, owner, util.HookTypeDestinationRecipientRouting, fallbackHookId)
}

func (k *Keeper) createRoutingHook(ctx context.Context, owner string, hookType uint32, fallbackHookId util.HexAddress) (util.HexAddress, error) {
	if owner == "" {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "owner must not be empty")
	}

	if !fallbackHookId.IsZeroAddress() {
		exists, err := k.HookExists(ctx, fallbackHookId)
		if err != nil {
			return util.HexAddress{}, err
		}
		if !exists {
			return util.HexAddress{}, errorsmod.Wrapf(types.ErrHookNotFound, "fallback hook %s", fallbackHookId)
		}
	}

	hookId, err := k.nextHookId(ctx, hookType)
	if err != nil {
		return util.HexAddress{}, err
	}

	hook := types.RoutingHook{
		Id:             hookId,
		Owner:          owner,
		FallbackHookId: fallbackHookId,
	}

	if err := k.routingHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return util.HexAddress{}, err
	}

	emitCreateHookEvent(ctx, hookId, owner)
	return hookId, nil
}

// GetRoutingHook returns the hook state for the given id.
func (k *Keeper) GetRoutingHook(ctx context.Context, hookId util.HexAddress) (types.RoutingHook, error) {
	hook, err := k.routingHooks.Get(ctx, hookId.GetInternalId())
	if err != nil {
		return types.RoutingHook{}, errorsmod.Wrapf(types.ErrHookNotFound, "routing hook %s", hookId)
	}
	return hook, nil
}

// SetDomainHook binds a destination domain to a child hook, owner gated.
func (k *Keeper) SetDomainHook(ctx context.Context, sender string, hookId util.HexAddress, domain uint32, childId util.HexAddress) error {
	hook, err := k.GetRoutingHook(ctx, hookId)
	if err != nil {
		return err
	}
	if err := ensureOwner(hook.Owner, sender); err != nil {
		return err
	}
	if err := k.validateChildHook(ctx, hookId, domain, childId); err != nil {
		return err
	}

	if err := k.routingTable.Set(ctx, collections.Join(hookId.GetInternalId(), domain), childId.Bytes()); err != nil {
		return err
	}

	emitDomainHookSetEvent(ctx, hookId, domain, childId)
	return nil
}

// DomainHookEntry is one domain -> child binding for batch configuration.
type DomainHookEntry struct {
	Domain  uint32
	ChildId util.HexAddress
}

// SetDomainHooks is the batch form of SetDomainHook.
func (k *Keeper) SetDomainHooks(ctx context.Context, sender string, hookId util.HexAddress, entries []DomainHookEntry) error {
	for _, entry := range entries {
		if err := k.SetDomainHook(ctx, sender, hookId, entry.Domain, entry.ChildId); err != nil {
			return err
		}
	}
	return nil
}

// SetRecipientHook binds a (domain, recipient) pair to a child hook on a
// destination-recipient routing hook. Recipient entries always take
// precedence over domain entries.
func (k *Keeper) SetRecipientHook(ctx context.Context, sender string, hookId util.HexAddress, domain uint32, recipient util.HexAddress, childId util.HexAddress) error {
	if hookId.GetType() != util.HookTypeDestinationRecipientRouting {
		return errorsmod.Wrapf(types.ErrInvalidConfiguration, "hook %s does not route by recipient", hookId)
	}

	hook, err := k.GetRoutingHook(ctx, hookId)
	if err != nil {
		return err
	}
	if err := ensureOwner(hook.Owner, sender); err != nil {
		return err
	}
	if err := k.validateChildHook(ctx, hookId, domain, childId); err != nil {
		return err
	}

	key := collections.Join3(hookId.GetInternalId(), domain, recipient.Bytes())
	if err := k.recipientRoutingTable.Set(ctx, key, childId.Bytes()); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(types.EventTypeSetRecipientHook,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyRecipient, recipient.String()),
		sdk.NewAttribute(types.AttributeKeyChildHookId, childId.String()),
	))
	return nil
}

func (k *Keeper) validateChildHook(ctx context.Context, hookId util.HexAddress, domain uint32, childId util.HexAddress) error {
	if domain == 0 {
		return errorsmod.Wrap(types.ErrInvalidConfiguration, "domain must not be zero")
	}
	if childId.Equal(hookId) {
		return errorsmod.Wrap(types.ErrInvalidConfiguration, "routing hook cannot route to itself")
	}

	exists, err := k.HookExists(ctx, childId)
	if err != nil {
		return err
	}
	if !exists {
		return errorsmod.Wrapf(types.ErrHookNotFound, "child hook %s", childId)
	}
	return nil
}

// resolveRoutedHook selects the child hook for a message. Precedence:
// recipient-specific entry, then domain entry, then the fallback if one was
// fixed at creation.
func (k *Keeper) resolveRoutedHook(ctx context.Context, hook types.RoutingHook, message util.HyperlaneMessage) (util.HexAddress, error) {
	internalId := hook.Id.GetInternalId()

	if hook.Id.GetType() == util.HookTypeDestinationRecipientRouting {
		child, err := k.recipientRoutingTable.Get(ctx, collections.Join3(internalId, message.Destination, message.Recipient.Bytes()))
		if err == nil {
			return hexAddressFromBytes(child)
		}
		if !errors.Is(err, collections.ErrNotFound) {
			return util.HexAddress{}, err
		}
	}

	child, err := k.routingTable.Get(ctx, collections.Join(internalId, message.Destination))
	if err == nil {
		return hexAddressFromBytes(child)
	}
	if !errors.Is(err, collections.ErrNotFound) {
		return util.HexAddress{}, err
	}

	if !hook.FallbackHookId.IsZeroAddress() {
		return hook.FallbackHookId, nil
	}

	return util.HexAddress{}, errorsmod.Wrapf(types.ErrNoHookConfigured, "domain %d", message.Destination)
}

type routingHookHandler struct {
	k *Keeper
}

var _ util.PostDispatchModule = routingHookHandler{}

// HookType returns the base routing tag; the concrete kind of a routing hook
// instance lives in its id.
func (h routingHookHandler) HookType() uint32 {
	return util.HookTypeDomainRouting
}

func (h routingHookHandler) Exists(ctx context.Context, hookId util.HexAddress) (bool, error) {
	return h.k.routingHooks.Has(ctx, hookId.GetInternalId())
}

func (h routingHookHandler) SupportsMetadata(util.StandardHookMetadata) bool {
	return true
}

// QuoteDispatch delegates to the resolved child. Child failures propagate:
// routing picks exactly one child and has nothing to isolate.
func (h routingHookHandler) QuoteDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage) (sdk.Coins, error) {
	hook, err := h.k.GetRoutingHook(ctx, hookId)
	if err != nil {
		return nil, err
	}

	child, err := h.k.resolveRoutedHook(ctx, hook, message)
	if err != nil {
		return nil, err
	}

	return h.k.QuoteDispatch(ctx, mailboxId, child, metadata, message)
}

// PostDispatch delegates to the resolved child with the budget unchanged.
func (h routingHookHandler) PostDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage, maxFee sdk.Coins) (sdk.Coins, error) {
	hook, err := h.k.GetRoutingHook(ctx, hookId)
	if err != nil {
		return nil, err
	}

	child, err := h.k.resolveRoutedHook(ctx, hook, message)
	if err != nil {
		return nil, err
	}

	return h.k.PostDispatch(ctx, mailboxId, child, metadata, message, maxFee)
}

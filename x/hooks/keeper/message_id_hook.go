package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// CreateMessageIdHook creates a bridge hook that forwards a verify-message-id
// call for a single destination domain through the adapter registered under
// adapterType.
func (k *Keeper) CreateMessageIdHook(ctx context.Context, owner string, destinationDomain, adapterType uint32) (util.HexAddress, error) {
	if owner == "" {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "owner must not be empty")
	}
	if destinationDomain == 0 {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "destination domain must not be zero")
	}
	if _, err := k.bridgeAdapters.GetModule(adapterType); err != nil {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, err.Error())
	}

	hookId, err := k.nextHookId(ctx, util.HookTypeMessageIdBridge)
	if err != nil {
		return util.HexAddress{}, err
	}

	hook := types.MessageIdHook{
		Id:                hookId,
		Owner:             owner,
		DestinationDomain: destinationDomain,
		AdapterType:       adapterType,
	}

	if err := k.messageIdHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return util.HexAddress{}, err
	}

	emitCreateHookEvent(ctx, hookId, owner)
	return hookId, nil
}

// GetMessageIdHook returns the hook state for the given id.
func (k *Keeper) GetMessageIdHook(ctx context.Context, hookId util.HexAddress) (types.MessageIdHook, error) {
	hook, err := k.messageIdHooks.Get(ctx, hookId.GetInternalId())
	if err != nil {
		return types.MessageIdHook{}, errorsmod.Wrapf(types.ErrHookNotFound, "message id hook %s", hookId)
	}
	return hook, nil
}

type messageIdHookHandler struct {
	k *Keeper
}

var _ util.PostDispatchModule = messageIdHookHandler{}

func (h messageIdHookHandler) HookType() uint32 {
	return util.HookTypeMessageIdBridge
}

func (h messageIdHookHandler) Exists(ctx context.Context, hookId util.HexAddress) (bool, error) {
	return h.k.messageIdHooks.Has(ctx, hookId.GetInternalId())
}

func (h messageIdHookHandler) SupportsMetadata(util.StandardHookMetadata) bool {
	return true
}

// QuoteDispatch delegates to the bridge adapter; some bridges subsidize
// delivery and quote zero, others derive a fee.
func (h messageIdHookHandler) QuoteDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage) (sdk.Coins, error) {
	hook, err := h.k.GetMessageIdHook(ctx, hookId)
	if err != nil {
		return nil, err
	}

	adapter, err := h.k.bridgeAdapters.GetModule(hook.AdapterType)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidConfiguration, err.Error())
	}

	return adapter.QuoteMessageId(ctx, metadata, hook.DestinationDomain)
}

// PostDispatch authenticates the message against the mailbox, checks that it
// originates locally and targets the hook's destination, and hands the
// verify-message-id payload to the bridge adapter.
func (h messageIdHookHandler) PostDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage, maxFee sdk.Coins) (sdk.Coins, error) {
	hook, err := h.k.GetMessageIdHook(ctx, hookId)
	if err != nil {
		return nil, err
	}

	messageId := message.Id()

	latest, err := h.k.mailboxKeeper.IsLatestDispatched(ctx, mailboxId, messageId)
	if err != nil {
		return nil, err
	}
	if !latest {
		return nil, errorsmod.Wrapf(types.ErrNotLatestDispatched, "message %s", messageId)
	}

	if message.Destination != hook.DestinationDomain {
		return nil, errorsmod.Wrapf(types.ErrDestinationMismatch, "message destination %d, hook destination %d", message.Destination, hook.DestinationDomain)
	}

	localDomain, err := h.k.mailboxKeeper.LocalDomain(ctx, mailboxId)
	if err != nil {
		return nil, err
	}
	if message.Origin != localDomain {
		return nil, errorsmod.Wrapf(types.ErrDestinationMismatch, "message origin %d, local domain %d", message.Origin, localDomain)
	}

	adapter, err := h.k.bridgeAdapters.GetModule(hook.AdapterType)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidConfiguration, err.Error())
	}

	// the quoted bridge fee is escrowed with the module before the adapter is
	// invoked, same as the fee hooks
	required, err := adapter.QuoteMessageId(ctx, metadata, hook.DestinationDomain)
	if err != nil {
		return nil, err
	}
	if err := h.k.chargeFee(ctx, metadata.Address, required, maxFee); err != nil {
		return nil, err
	}

	payload := types.VerifyMessageIdPayload(messageId)
	if err := adapter.SendMessageId(ctx, metadata, hook.DestinationDomain, payload); err != nil {
		return nil, err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeMessageIdSent,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyMessageId, messageId.String()),
	))

	return required, nil
}

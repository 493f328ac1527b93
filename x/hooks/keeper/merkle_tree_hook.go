package keeper

import (
	"context"
	"encoding/hex"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// CreateMerkleTreeHook creates a Merkle accumulator hook bound to a mailbox.
// Only messages the mailbox reports as latest dispatched can be inserted.
func (k *Keeper) CreateMerkleTreeHook(ctx context.Context, owner string, mailboxId util.HexAddress) (util.HexAddress, error) {
	if owner == "" {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "owner must not be empty")
	}
	if mailboxId.IsZeroAddress() {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "mailbox id must not be zero")
	}

	hookId, err := k.nextHookId(ctx, util.HookTypeMerkleTree)
	if err != nil {
		return util.HexAddress{}, err
	}

	hook := types.MerkleTreeHook{
		Id:        hookId,
		Owner:     owner,
		MailboxId: mailboxId,
	}

	if err := k.merkleTreeHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return util.HexAddress{}, err
	}

	emitCreateHookEvent(ctx, hookId, owner)
	return hookId, nil
}

// GetMerkleTreeHook returns the hook state for the given id.
func (k *Keeper) GetMerkleTreeHook(ctx context.Context, hookId util.HexAddress) (types.MerkleTreeHook, error) {
	hook, err := k.merkleTreeHooks.Get(ctx, hookId.GetInternalId())
	if err != nil {
		return types.MerkleTreeHook{}, errorsmod.Wrapf(types.ErrHookNotFound, "merkle tree hook %s", hookId)
	}
	return hook, nil
}

// MerkleTreeCount returns the number of leaves inserted so far.
func (k *Keeper) MerkleTreeCount(ctx context.Context, hookId util.HexAddress) (uint32, error) {
	hook, err := k.GetMerkleTreeHook(ctx, hookId)
	if err != nil {
		return 0, err
	}
	return hook.Tree.Count, nil
}

// MerkleTreeRoot recomputes the current root from the stored branch and count.
func (k *Keeper) MerkleTreeRoot(ctx context.Context, hookId util.HexAddress) ([32]byte, error) {
	hook, err := k.GetMerkleTreeHook(ctx, hookId)
	if err != nil {
		return [32]byte{}, err
	}
	return hook.Tree.Root(), nil
}

// MerkleTreeBranch returns the stored branch of intermediate hashes.
func (k *Keeper) MerkleTreeBranch(ctx context.Context, hookId util.HexAddress) ([util.TreeDepth][32]byte, error) {
	hook, err := k.GetMerkleTreeHook(ctx, hookId)
	if err != nil {
		return [util.TreeDepth][32]byte{}, err
	}
	return hook.Tree.Branch, nil
}

// LatestCheckpoint returns the current root and the index of the most
// recently inserted leaf. It errors when the tree is empty.
func (k *Keeper) LatestCheckpoint(ctx context.Context, hookId util.HexAddress) ([32]byte, uint32, error) {
	hook, err := k.GetMerkleTreeHook(ctx, hookId)
	if err != nil {
		return [32]byte{}, 0, err
	}
	if hook.Tree.Count == 0 {
		return [32]byte{}, 0, errorsmod.Wrap(types.ErrInvalidConfiguration, "no leaf inserted yet")
	}
	return hook.Tree.Root(), hook.Tree.Count - 1, nil
}

func (k *Keeper) postDispatchMerkleTree(ctx context.Context, mailboxId, hookId util.HexAddress, message util.HyperlaneMessage) error {
	hook, err := k.GetMerkleTreeHook(ctx, hookId)
	if err != nil {
		return err
	}

	messageId := message.Id()

	// The hook only accepts messages the authorizing mailbox just dispatched;
	// out-of-band calls with forged messages fail here.
	latest, err := k.mailboxKeeper.IsLatestDispatched(ctx, hook.MailboxId, messageId)
	if err != nil {
		return err
	}
	if !latest {
		return errorsmod.Wrapf(types.ErrNotLatestDispatched, "message %s", messageId)
	}

	index := hook.Tree.Count
	if err := hook.Tree.Insert([32]byte(messageId)); err != nil {
		return errorsmod.Wrap(types.ErrTreeFull, err.Error())
	}

	// state is written before the event is observable
	if err := k.merkleTreeHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return err
	}

	root := hook.Tree.Root()
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeInsertedIntoTree,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyMessageId, messageId.String()),
		sdk.NewAttribute(types.AttributeKeyIndex, fmt.Sprintf("%d", index)),
		sdk.NewAttribute(types.AttributeKeyRoot, hex.EncodeToString(root[:])),
	))

	k.Logger(ctx).Info("inserted message into merkle tree", "hook", hookId.String(), "message", messageId.String(), "index", index)
	return nil
}

type merkleTreeHookHandler struct {
	k *Keeper
}

var _ util.PostDispatchModule = merkleTreeHookHandler{}

func (h merkleTreeHookHandler) HookType() uint32 {
	return util.HookTypeMerkleTree
}

func (h merkleTreeHookHandler) Exists(ctx context.Context, hookId util.HexAddress) (bool, error) {
	return h.k.merkleTreeHooks.Has(ctx, hookId.GetInternalId())
}

func (h merkleTreeHookHandler) SupportsMetadata(util.StandardHookMetadata) bool {
	return true
}

// QuoteDispatch always quotes zero; accumulation costs no caller-facing fee.
func (h merkleTreeHookHandler) QuoteDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage) (sdk.Coins, error) {
	return sdk.NewCoins(), nil
}

func (h merkleTreeHookHandler) PostDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage, maxFee sdk.Coins) (sdk.Coins, error) {
	if err := h.k.postDispatchMerkleTree(ctx, mailboxId, hookId, message); err != nil {
		return nil, err
	}
	return sdk.NewCoins(), nil
}

package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// CreateProtocolFeeHook creates a static fee hook. maxProtocolFee is an
// immutable cap: SetProtocolFee can never raise the fee above it.
func (k *Keeper) CreateProtocolFeeHook(ctx context.Context, owner string, maxProtocolFee, protocolFee sdk.Coins, beneficiary string) (util.HexAddress, error) {
	if owner == "" {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "owner must not be empty")
	}
	if _, err := sdk.AccAddressFromBech32(beneficiary); err != nil {
		return util.HexAddress{}, errorsmod.Wrapf(types.ErrInvalidConfiguration, "invalid beneficiary: %s", err)
	}
	if !protocolFee.IsAllLTE(maxProtocolFee) {
		return util.HexAddress{}, errorsmod.Wrapf(types.ErrFeeExceedsMaximum, "fee %s, maximum %s", protocolFee, maxProtocolFee)
	}

	hookId, err := k.nextHookId(ctx, util.HookTypeProtocolFee)
	if err != nil {
		return util.HexAddress{}, err
	}

	hook := types.ProtocolFeeHook{
		Id:             hookId,
		Owner:          owner,
		MaxProtocolFee: maxProtocolFee,
		ProtocolFee:    protocolFee,
		Beneficiary:    beneficiary,
		ClaimableFees:  sdk.NewCoins(),
	}

	if err := k.protocolFeeHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return util.HexAddress{}, err
	}

	emitCreateHookEvent(ctx, hookId, owner)
	return hookId, nil
}

// GetProtocolFeeHook returns the hook state for the given id.
func (k *Keeper) GetProtocolFeeHook(ctx context.Context, hookId util.HexAddress) (types.ProtocolFeeHook, error) {
	hook, err := k.protocolFeeHooks.Get(ctx, hookId.GetInternalId())
	if err != nil {
		return types.ProtocolFeeHook{}, errorsmod.Wrapf(types.ErrHookNotFound, "protocol fee hook %s", hookId)
	}
	return hook, nil
}

// SetProtocolFee updates the fee, owner gated and bounded by the immutable
// cap fixed at creation.
func (k *Keeper) SetProtocolFee(ctx context.Context, sender string, hookId util.HexAddress, newFee sdk.Coins) error {
	hook, err := k.GetProtocolFeeHook(ctx, hookId)
	if err != nil {
		return err
	}
	if err := ensureOwner(hook.Owner, sender); err != nil {
		return err
	}
	if !newFee.IsAllLTE(hook.MaxProtocolFee) {
		return errorsmod.Wrapf(types.ErrFeeExceedsMaximum, "fee %s, maximum %s", newFee, hook.MaxProtocolFee)
	}

	hook.ProtocolFee = newFee
	if err := k.protocolFeeHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeSetProtocolFee,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyProtocolFee, newFee.String()),
	))
	return nil
}

// SetBeneficiary updates the claim target, owner gated.
func (k *Keeper) SetBeneficiary(ctx context.Context, sender string, hookId util.HexAddress, beneficiary string) error {
	hook, err := k.GetProtocolFeeHook(ctx, hookId)
	if err != nil {
		return err
	}
	if err := ensureOwner(hook.Owner, sender); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(beneficiary); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidConfiguration, "invalid beneficiary: %s", err)
	}

	hook.Beneficiary = beneficiary
	if err := k.protocolFeeHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeSetBeneficiary,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyBeneficiary, beneficiary),
	))
	return nil
}

// ClaimProtocolFees sweeps the accrued fees from the module escrow to the
// beneficiary. Callable by anyone: the payout target is fixed in state, so
// gating the caller adds nothing.
func (k *Keeper) ClaimProtocolFees(ctx context.Context, hookId util.HexAddress) error {
	hook, err := k.GetProtocolFeeHook(ctx, hookId)
	if err != nil {
		return err
	}

	claimable := hook.ClaimableFees
	if claimable.IsZero() {
		return errorsmod.Wrapf(types.ErrNothingToClaim, "hook %s", hookId)
	}

	beneficiary, err := sdk.AccAddressFromBech32(hook.Beneficiary)
	if err != nil {
		return errorsmod.Wrapf(types.ErrInvalidConfiguration, "invalid beneficiary: %s", err)
	}

	// zero the claim before the bank interaction
	hook.ClaimableFees = sdk.NewCoins()
	if err := k.protocolFeeHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return err
	}

	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, beneficiary, claimable); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeClaimFees,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyBeneficiary, hook.Beneficiary),
		sdk.NewAttribute(types.AttributeKeyAmount, claimable.String()),
	))

	k.Logger(ctx).Info("claimed protocol fees", "hook", hookId.String(), "amount", claimable.String())
	return nil
}

type protocolFeeHookHandler struct {
	k *Keeper
}

var _ util.PostDispatchModule = protocolFeeHookHandler{}

func (h protocolFeeHookHandler) HookType() uint32 {
	return util.HookTypeProtocolFee
}

func (h protocolFeeHookHandler) Exists(ctx context.Context, hookId util.HexAddress) (bool, error) {
	return h.k.protocolFeeHooks.Has(ctx, hookId.GetInternalId())
}

func (h protocolFeeHookHandler) SupportsMetadata(util.StandardHookMetadata) bool {
	return true
}

func (h protocolFeeHookHandler) QuoteDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage) (sdk.Coins, error) {
	hook, err := h.k.GetProtocolFeeHook(ctx, hookId)
	if err != nil {
		return nil, err
	}
	return hook.ProtocolFee, nil
}

func (h protocolFeeHookHandler) PostDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage, maxFee sdk.Coins) (sdk.Coins, error) {
	hook, err := h.k.GetProtocolFeeHook(ctx, hookId)
	if err != nil {
		return nil, err
	}

	required := hook.ProtocolFee
	if required.IsZero() {
		return sdk.NewCoins(), nil
	}

	if !maxFee.IsAllGTE(required) {
		return nil, errorsmod.Wrapf(types.ErrInsufficientPayment, "required %s, max fee %s", required, maxFee)
	}

	// accrual is committed before the bank interaction
	hook.ClaimableFees = hook.ClaimableFees.Add(required...)
	if err := h.k.protocolFeeHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return nil, err
	}

	if err := h.k.chargeFee(ctx, metadata.Address, required, maxFee); err != nil {
		return nil, err
	}

	return required, nil
}

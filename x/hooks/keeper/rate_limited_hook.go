package keeper

import (
	"context"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// CreateRateLimitedHook creates a fee hook guarded by a token bucket: at most
// capacity of message value may pass per refill window. The bucket starts
// full.
func (k *Keeper) CreateRateLimitedHook(ctx context.Context, owner string, capacity math.Int, fee sdk.Coins, beneficiary string) (util.HexAddress, error) {
	if owner == "" {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "owner must not be empty")
	}
	if _, err := sdk.AccAddressFromBech32(beneficiary); err != nil {
		return util.HexAddress{}, errorsmod.Wrapf(types.ErrInvalidConfiguration, "invalid beneficiary: %s", err)
	}
	if capacity.IsNil() || !capacity.IsPositive() {
		return util.HexAddress{}, errorsmod.Wrap(types.ErrInvalidConfiguration, "capacity must be positive")
	}

	hookId, err := k.nextHookId(ctx, util.HookTypeRateLimitedFee)
	if err != nil {
		return util.HexAddress{}, err
	}

	hook := types.RateLimitedHook{
		Id:            hookId,
		Owner:         owner,
		Capacity:      capacity,
		FilledLevel:   capacity,
		LastUpdated:   sdk.UnwrapSDKContext(ctx).BlockTime().Unix(),
		Fee:           fee,
		Beneficiary:   beneficiary,
		ClaimableFees: sdk.NewCoins(),
	}

	if err := k.rateLimitedHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return util.HexAddress{}, err
	}

	emitCreateHookEvent(ctx, hookId, owner)
	return hookId, nil
}

// GetRateLimitedHook returns the hook state for the given id.
func (k *Keeper) GetRateLimitedHook(ctx context.Context, hookId util.HexAddress) (types.RateLimitedHook, error) {
	hook, err := k.rateLimitedHooks.Get(ctx, hookId.GetInternalId())
	if err != nil {
		return types.RateLimitedHook{}, errorsmod.Wrapf(types.ErrHookNotFound, "rate limited hook %s", hookId)
	}
	return hook, nil
}

// SetRateLimit replaces the bucket capacity, owner gated. The filled level is
// clamped into the new capacity.
func (k *Keeper) SetRateLimit(ctx context.Context, sender string, hookId util.HexAddress, capacity math.Int) error {
	hook, err := k.GetRateLimitedHook(ctx, hookId)
	if err != nil {
		return err
	}
	if err := ensureOwner(hook.Owner, sender); err != nil {
		return err
	}
	if capacity.IsNil() || !capacity.IsPositive() {
		return errorsmod.Wrap(types.ErrInvalidConfiguration, "capacity must be positive")
	}

	hook.Capacity = capacity
	if hook.FilledLevel.GT(capacity) {
		hook.FilledLevel = capacity
	}
	if err := k.rateLimitedHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeSetRateLimit,
		sdk.NewAttribute(types.AttributeKeyHookId, hookId.String()),
		sdk.NewAttribute(types.AttributeKeyCapacity, capacity.String()),
	))
	return nil
}

// CalculateCurrentLevel returns the bucket level at the current block time: a
// pure function of the stored level, the elapsed time and the refill rate
// capacity/RateLimitDuration. Refill is linear and monotonic in time.
func (k *Keeper) CalculateCurrentLevel(ctx context.Context, hookId util.HexAddress) (math.Int, error) {
	hook, err := k.GetRateLimitedHook(ctx, hookId)
	if err != nil {
		return math.Int{}, err
	}
	return currentLevel(hook, sdk.UnwrapSDKContext(ctx).BlockTime().Unix()), nil
}

func currentLevel(hook types.RateLimitedHook, now int64) math.Int {
	elapsed := now - hook.LastUpdated
	if elapsed >= types.RateLimitDuration {
		return hook.Capacity
	}
	if elapsed <= 0 {
		return math.MinInt(hook.FilledLevel, hook.Capacity)
	}

	refill := hook.Capacity.Mul(math.NewInt(elapsed)).Quo(math.NewInt(types.RateLimitDuration))
	return math.MinInt(hook.Capacity, hook.FilledLevel.Add(refill))
}

// consumeRateLimit draws amount from the bucket, at most once per message id.
func (k *Keeper) consumeRateLimit(ctx context.Context, hook *types.RateLimitedHook, messageId util.HexAddress, amount math.Int) error {
	if amount.IsNil() || amount.IsZero() {
		return nil
	}
	if amount.IsNegative() {
		return errorsmod.Wrap(types.ErrInvalidMetadata, "message value must not be negative")
	}

	key := collections.Join(hook.Id.GetInternalId(), messageId.Bytes())
	consumed, err := k.consumedMessages.Has(ctx, key)
	if err != nil {
		return err
	}
	if consumed {
		// one delivery draws the bucket down exactly once
		return nil
	}

	now := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	level := currentLevel(*hook, now)
	if amount.GT(level) {
		return errorsmod.Wrapf(types.ErrRateLimitExceeded, "amount %s exceeds current level %s", amount, level)
	}

	hook.FilledLevel = level.Sub(amount)
	hook.LastUpdated = now

	if err := k.consumedMessages.Set(ctx, key); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(types.EventTypeRateLimitConsumed,
		sdk.NewAttribute(types.AttributeKeyHookId, hook.Id.String()),
		sdk.NewAttribute(types.AttributeKeyMessageId, messageId.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	))
	return nil
}

// ClaimRateLimitedFees sweeps the accrued fees to the beneficiary, callable
// by anyone like ClaimProtocolFees.
func (k *Keeper) ClaimRateLimitedFees(ctx context.Context, hookId util.HexAddress) error {
	hook, err := k.GetRateLimitedHook(ctx, hookId)
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

	hook.ClaimableFees = sdk.NewCoins()
	if err := k.rateLimitedHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
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
	return nil
}

type rateLimitedHookHandler struct {
	k *Keeper
}

var _ util.PostDispatchModule = rateLimitedHookHandler{}

func (h rateLimitedHookHandler) HookType() uint32 {
	return util.HookTypeRateLimitedFee
}

func (h rateLimitedHookHandler) Exists(ctx context.Context, hookId util.HexAddress) (bool, error) {
	return h.k.rateLimitedHooks.Has(ctx, hookId.GetInternalId())
}

// SupportsMetadata rejects foreign variants: the limiter reads MsgValue and
// must not misinterpret another layout's bytes.
func (h rateLimitedHookHandler) SupportsMetadata(metadata util.StandardHookMetadata) bool {
	return metadata.Variant == util.StandardHookMetadataVariant
}

func (h rateLimitedHookHandler) QuoteDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage) (sdk.Coins, error) {
	hook, err := h.k.GetRateLimitedHook(ctx, hookId)
	if err != nil {
		return nil, err
	}
	return hook.Fee, nil
}

// PostDispatch consumes the message value from the bucket, then charges the
// flat fee. Bucket state is committed before the bank interaction.
func (h rateLimitedHookHandler) PostDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage, maxFee sdk.Coins) (sdk.Coins, error) {
	hook, err := h.k.GetRateLimitedHook(ctx, hookId)
	if err != nil {
		return nil, err
	}

	required := hook.Fee
	if !required.IsZero() && !maxFee.IsAllGTE(required) {
		return nil, errorsmod.Wrapf(types.ErrInsufficientPayment, "required %s, max fee %s", required, maxFee)
	}

	if err := h.k.consumeRateLimit(ctx, &hook, message.Id(), metadata.MsgValue); err != nil {
		return nil, err
	}

	hook.ClaimableFees = hook.ClaimableFees.Add(required...)
	if err := h.k.rateLimitedHooks.Set(ctx, hookId.GetInternalId(), hook); err != nil {
		return nil, err
	}

	if err := h.k.chargeFee(ctx, metadata.Address, required, maxFee); err != nil {
		return nil, err
	}

	return required, nil
}

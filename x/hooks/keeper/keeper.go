// Package keeper implements the hooks module keeper, which manages the
// post-dispatch hook composition tree: Merkle accumulation, fee collection,
// rate limiting, routing, aggregation and message-id bridge forwarding.
package keeper

import (
	"context"

	"cosmossdk.io/collections"
	corestore "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// Keeper holds the state of every hook instance and dispatches
// quote/post-dispatch calls through the hook type router.
type Keeper struct {
	hooksSequence    collections.Sequence
	merkleTreeHooks  collections.Map[uint64, types.MerkleTreeHook]
	protocolFeeHooks collections.Map[uint64, types.ProtocolFeeHook]
	rateLimitedHooks collections.Map[uint64, types.RateLimitedHook]
	routingHooks     collections.Map[uint64, types.RoutingHook]
	aggregationHooks collections.Map[uint64, types.AggregationHook]
	messageIdHooks   collections.Map[uint64, types.MessageIdHook]

	// routingTable maps (routing hook internal id, destination domain) to a
	// child hook id; recipientRoutingTable adds the recipient dimension.
	routingTable          collections.Map[collections.Pair[uint64, uint32], []byte]
	recipientRoutingTable collections.Map[collections.Triple[uint64, uint32, []byte], []byte]

	// consumedMessages guards the rate limiter against drawing down the
	// bucket twice for one message id.
	consumedMessages collections.KeySet[collections.Pair[uint64, []byte]]

	schema collections.Schema

	router         *util.Router[util.PostDispatchModule]
	bridgeAdapters *util.Router[types.BridgeAdapter]

	bankKeeper    types.BankKeeper
	mailboxKeeper types.MailboxKeeper
	authority     string
}

// NewKeeper creates and returns a new hooks module Keeper with every hook
// kind registered in the dispatch router.
func NewKeeper(storeService corestore.KVStoreService, bankKeeper types.BankKeeper, mailboxKeeper types.MailboxKeeper, authority string) *Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	keeper := &Keeper{
		hooksSequence:    collections.NewSequence(sb, types.HooksSequenceKey, "hooks_sequence"),
		merkleTreeHooks:  collections.NewMap(sb, types.MerkleTreeHooksKeyPrefix, "merkle_tree_hooks", collections.Uint64Key, types.JSONValue[types.MerkleTreeHook]("merkle_tree_hook")),
		protocolFeeHooks: collections.NewMap(sb, types.ProtocolFeeHooksKeyPrefix, "protocol_fee_hooks", collections.Uint64Key, types.JSONValue[types.ProtocolFeeHook]("protocol_fee_hook")),
		rateLimitedHooks: collections.NewMap(sb, types.RateLimitedHooksKeyPrefix, "rate_limited_hooks", collections.Uint64Key, types.JSONValue[types.RateLimitedHook]("rate_limited_hook")),
		routingHooks:     collections.NewMap(sb, types.RoutingHooksKeyPrefix, "routing_hooks", collections.Uint64Key, types.JSONValue[types.RoutingHook]("routing_hook")),
		aggregationHooks: collections.NewMap(sb, types.AggregationHooksKeyPrefix, "aggregation_hooks", collections.Uint64Key, types.JSONValue[types.AggregationHook]("aggregation_hook")),
		messageIdHooks:   collections.NewMap(sb, types.MessageIdHooksKeyPrefix, "message_id_hooks", collections.Uint64Key, types.JSONValue[types.MessageIdHook]("message_id_hook")),

		routingTable:          collections.NewMap(sb, types.RoutingTableKeyPrefix, "routing_table", collections.PairKeyCodec(collections.Uint64Key, collections.Uint32Key), collections.BytesValue),
		recipientRoutingTable: collections.NewMap(sb, types.RecipientRoutingTableKeyPrefix, "recipient_routing_table", collections.TripleKeyCodec(collections.Uint64Key, collections.Uint32Key, collections.BytesKey), collections.BytesValue),

		consumedMessages: collections.NewKeySet(sb, types.ConsumedMessagesKeyPrefix, "consumed_messages", collections.PairKeyCodec(collections.Uint64Key, collections.BytesKey)),

		router:         util.NewRouter[util.PostDispatchModule](),
		bridgeAdapters: util.NewRouter[types.BridgeAdapter](),

		bankKeeper:    bankKeeper,
		mailboxKeeper: mailboxKeeper,
		authority:     authority,
	}

	schema, err := sb.Build()
	if err != nil {
		panic(err)
	}
	keeper.schema = schema

	keeper.router.RegisterModule(util.HookTypeMerkleTree, merkleTreeHookHandler{keeper})
	keeper.router.RegisterModule(util.HookTypeProtocolFee, protocolFeeHookHandler{keeper})
	keeper.router.RegisterModule(util.HookTypeRateLimitedFee, rateLimitedHookHandler{keeper})
	keeper.router.RegisterModule(util.HookTypeDomainRouting, routingHookHandler{keeper})
	keeper.router.RegisterModule(util.HookTypeFallbackDomainRouting, routingHookHandler{keeper})
	keeper.router.RegisterModule(util.HookTypeDestinationRecipientRouting, routingHookHandler{keeper})
	keeper.router.RegisterModule(util.HookTypeAggregation, aggregationHookHandler{keeper})
	keeper.router.RegisterModule(util.HookTypeMessageIdBridge, messageIdHookHandler{keeper})

	return keeper
}

// Logger returns the module logger extracted using the sdk context.
func (k *Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// Authority returns the module authority address.
func (k *Keeper) Authority() string {
	return k.authority
}

// RegisterBridgeAdapter binds a native-bridge adapter to its adapter type.
// Concrete bridge modules call this at wiring time.
func (k *Keeper) RegisterBridgeAdapter(adapterType uint32, adapter types.BridgeAdapter) {
	k.bridgeAdapters.RegisterModule(adapterType, adapter)
}

// dispatchDepthKey threads the hook recursion depth through the context so
// routing and aggregation fan-out cannot recurse unboundedly.
type dispatchDepthKey struct{}

func dispatchDepth(ctx context.Context) int {
	if depth, ok := ctx.Value(dispatchDepthKey{}).(int); ok {
		return depth
	}
	return 0
}

func enterDispatch(ctx context.Context) (context.Context, error) {
	depth := dispatchDepth(ctx) + 1
	if depth > types.MaxDispatchDepth {
		return nil, errorsmod.Wrapf(types.ErrMaxRecursionDepth, "depth %d", depth)
	}
	return sdk.UnwrapSDKContext(ctx).WithValue(dispatchDepthKey{}, depth), nil
}

func (k *Keeper) resolveHandler(ctx context.Context, hookId util.HexAddress) (util.PostDispatchModule, error) {
	handler, err := k.router.GetModuleForAddress(hookId)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrHookNotFound, err.Error())
	}

	exists, err := handler.Exists(ctx, hookId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errorsmod.Wrapf(types.ErrHookNotFound, "%s", hookId)
	}

	return handler, nil
}

// HookExists reports whether hookId refers to a live hook of any registered
// kind.
func (k *Keeper) HookExists(ctx context.Context, hookId util.HexAddress) (bool, error) {
	handler, err := k.router.GetModuleForAddress(hookId)
	if err != nil {
		return false, nil
	}
	return handler.Exists(ctx, hookId)
}

// QuoteDispatch returns the fee a subsequent PostDispatch with the same
// arguments requires. It performs no state mutation.
func (k *Keeper) QuoteDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage) (sdk.Coins, error) {
	ctx, err := enterDispatch(ctx)
	if err != nil {
		return nil, err
	}

	handler, err := k.resolveHandler(ctx, hookId)
	if err != nil {
		return nil, err
	}

	if !handler.SupportsMetadata(metadata) {
		return nil, errorsmod.Wrapf(types.ErrUnsupportedMetadataVariant, "variant %d", metadata.Variant)
	}

	return handler.QuoteDispatch(ctx, mailboxId, hookId, metadata, message)
}

// PostDispatch performs the hook's side effect for a dispatched message and
// returns the coins actually charged. maxFee caps what the hook may charge;
// offering more than the quote never costs more than the quote.
func (k *Keeper) PostDispatch(ctx context.Context, mailboxId, hookId util.HexAddress, metadata util.StandardHookMetadata, message util.HyperlaneMessage, maxFee sdk.Coins) (sdk.Coins, error) {
	ctx, err := enterDispatch(ctx)
	if err != nil {
		return nil, err
	}

	handler, err := k.resolveHandler(ctx, hookId)
	if err != nil {
		return nil, err
	}

	if !handler.SupportsMetadata(metadata) {
		return nil, errorsmod.Wrapf(types.ErrUnsupportedMetadataVariant, "variant %d", metadata.Variant)
	}

	return handler.PostDispatch(ctx, mailboxId, hookId, metadata, message, maxFee)
}

func (k *Keeper) nextHookId(ctx context.Context, hookType uint32) (util.HexAddress, error) {
	internalId, err := k.hooksSequence.Next(ctx)
	if err != nil {
		return util.HexAddress{}, err
	}
	return util.NewHexAddress(types.ModuleName, hookType, internalId), nil
}

func ensureOwner(owner, sender string) error {
	if sender != owner {
		return errorsmod.Wrapf(types.ErrUnauthorized, "expected %s, got %s", owner, sender)
	}
	return nil
}

func hexAddressFromBytes(bz []byte) (util.HexAddress, error) {
	if len(bz) != util.HexAddressLength {
		return util.HexAddress{}, errorsmod.Wrapf(types.ErrInvalidConfiguration, "stored hook id has invalid length %d", len(bz))
	}
	var addr util.HexAddress
	copy(addr[:], bz)
	return addr, nil
}

// chargeFee moves the required fee from the payer to the module escrow.
// Offering maxFee above the required amount never charges the excess.
func (k *Keeper) chargeFee(ctx context.Context, payer sdk.AccAddress, required, maxFee sdk.Coins) error {
	if required.IsZero() {
		return nil
	}

	if !maxFee.IsAllGTE(required) {
		return errorsmod.Wrapf(types.ErrInsufficientPayment, "required %s, max fee %s", required, maxFee)
	}

	if payer.Empty() {
		return errorsmod.Wrap(types.ErrInvalidMetadata, "metadata carries no payer for fee collection")
	}

	return k.bankKeeper.SendCoinsFromAccountToModule(ctx, payer, types.ModuleName, required)
}

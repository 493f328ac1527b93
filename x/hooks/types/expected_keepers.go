package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
)

// MailboxKeeper defines the expected mailbox interface. Hooks use it only to
// authenticate that a message was actually dispatched; it is a narrow
// authorization relation, not ownership.
type MailboxKeeper interface {
	// IsLatestDispatched reports whether id is the most recently dispatched
	// message id of the given mailbox.
	IsLatestDispatched(ctx context.Context, mailboxId util.HexAddress, id util.HexAddress) (bool, error)

	// LocalDomain returns the domain of the local chain.
	LocalDomain(ctx context.Context, mailboxId util.HexAddress) (uint32, error)
}

// BankKeeper defines the expected bank keeper interface used to move fee
// payments between the payer, the module escrow and the beneficiary.
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
}

// BridgeAdapter is the extension point concrete native-bridge hooks
// (Arbitrum, Optimism, Polygon, LayerZero, CCIP, ...) implement. Adapters
// register with the keeper's bridge router under their adapter type; the
// hooks module fixes the contract, not the wire formats.
type BridgeAdapter interface {
	// SendMessageId hands the verify-message-id payload to the underlying
	// bridge for delivery on the destination domain.
	SendMessageId(ctx context.Context, metadata util.StandardHookMetadata, destinationDomain uint32, payload []byte) error

	// QuoteMessageId returns the bridge-specific fee for delivering the
	// payload. Some bridges subsidize delivery and quote zero.
	QuoteMessageId(ctx context.Context, metadata util.StandardHookMetadata, destinationDomain uint32) (sdk.Coins, error)
}

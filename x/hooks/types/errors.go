package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Module error codes scoped by ModuleName.
// NOTE: Error code 1 is reserved by cosmos-sdk as internal error / unknown failure

var (
	ErrHookNotFound               = errorsmod.Register(ModuleName, 2, "hook not found")
	ErrInvalidConfiguration       = errorsmod.Register(ModuleName, 3, "invalid hook configuration")
	ErrUnauthorized               = errorsmod.Register(ModuleName, 4, "sender is not the hook owner")
	ErrNotLatestDispatched        = errorsmod.Register(ModuleName, 5, "message is not the latest dispatched")
	ErrDestinationMismatch        = errorsmod.Register(ModuleName, 6, "message destination does not match hook destination")
	ErrInsufficientPayment        = errorsmod.Register(ModuleName, 7, "insufficient payment for dispatch")
	ErrFeeExceedsMaximum          = errorsmod.Register(ModuleName, 8, "protocol fee exceeds maximum")
	ErrRateLimitExceeded          = errorsmod.Register(ModuleName, 9, "rate limit exceeded")
	ErrNoHookConfigured           = errorsmod.Register(ModuleName, 10, "no hook configured for destination")
	ErrInvalidMetadata            = errorsmod.Register(ModuleName, 11, "invalid hook metadata")
	ErrUnsupportedMetadataVariant = errorsmod.Register(ModuleName, 12, "unsupported hook metadata variant")
	ErrMaxRecursionDepth          = errorsmod.Register(ModuleName, 13, "max hook recursion depth exceeded")
	ErrTreeFull                   = errorsmod.Register(ModuleName, 14, "merkle tree is full")
	ErrNothingToClaim             = errorsmod.Register(ModuleName, 15, "no claimable protocol fees")
)

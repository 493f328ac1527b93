// Package hooks implements the Hyperlane post-dispatch hook composition
// system: a set of independently addressable hook instances sharing the
// quoteDispatch/postDispatch two-phase contract.
//
// A dispatch fans out through a tree of hooks. Routing hooks select exactly
// one child by destination (optionally recipient) with an optional fallback;
// an aggregation hook invokes an ordered, creation-fixed set of children and
// isolates individual failures; leaf hooks accumulate message ids into an
// incremental Merkle tree, charge capped protocol fees, enforce token-bucket
// rate limits, or forward a verify-message-id call through a native bridge
// adapter. QuoteDispatch mirrors the same tree without side effects so a
// caller can pre-compute the total payment a PostDispatch will require.
package hooks

package keeper_test

import (
	"cosmossdk.io/math"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

func (suite *KeeperTestSuite) TestDispatchUnknownHook() {
	missing := util.NewHexAddress(types.ModuleName, util.HookTypeProtocolFee, 9999)

	_, err := suite.keeper.QuoteDispatch(suite.ctx, suite.mailboxId, missing, util.NewStandardHookMetadata(), testMessage(137, nil))
	suite.Require().ErrorIs(err, types.ErrHookNotFound)

	_, err = suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, missing, util.NewStandardHookMetadata(), testMessage(137, nil), coins(0))
	suite.Require().ErrorIs(err, types.ErrHookNotFound)

	// an address carrying a hook type no handler is registered for
	unregistered := util.NewHexAddress(types.ModuleName, 99, 0)
	_, err = suite.keeper.QuoteDispatch(suite.ctx, suite.mailboxId, unregistered, util.NewStandardHookMetadata(), testMessage(137, nil))
	suite.Require().ErrorIs(err, types.ErrHookNotFound)
}

// chainRoutingHooks builds a chain of fallback routing hooks of the given
// length ending in a merkle tree hook, and returns the outermost hook.
func (suite *KeeperTestSuite) chainRoutingHooks(length int) util.HexAddress {
	hookId := suite.createMerkleTreeHook()
	for i := 0; i < length; i++ {
		next, err := suite.keeper.CreateFallbackDomainRoutingHook(suite.ctx, suite.owner, hookId)
		suite.Require().NoError(err)
		hookId = next
	}
	return hookId
}

func (suite *KeeperTestSuite) TestDispatchRecursionDepthLimit() {
	// seven routers plus the leaf stay within the depth limit
	okChain := suite.chainRoutingHooks(types.MaxDispatchDepth - 1)
	message := testMessage(137, []byte("deep"))
	suite.Require().NoError(suite.dispatchThrough(okChain, message))

	// one more level of nesting trips the guard
	deepChain := suite.chainRoutingHooks(types.MaxDispatchDepth)
	_, err := suite.keeper.QuoteDispatch(suite.ctx, suite.mailboxId, deepChain, util.NewStandardHookMetadata(), message)
	suite.Require().ErrorIs(err, types.ErrMaxRecursionDepth)

	_, err = suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, deepChain, util.NewStandardHookMetadata(), message, coins(0))
	suite.Require().ErrorIs(err, types.ErrMaxRecursionDepth)
}

// The composition the module is built for: a fallback router whose table knows
// some domains, an aggregation of fee collection and merkle accumulation
// behind it, and metadata that arrived over the wire.
func (suite *KeeperTestSuite) TestDispatchComposedTree() {
	beneficiary := testAddress("beneficiary")
	payer := testAddress("payer")
	suite.bankKeeper.Fund(payer, coins(1_000))

	merkleHook := suite.createMerkleTreeHook()
	feeHook := suite.createProtocolFeeHook(500, 100, beneficiary.String())

	aggId, err := suite.keeper.CreateAggregationHook(suite.ctx, suite.owner, []util.HexAddress{feeHook, merkleHook})
	suite.Require().NoError(err)

	routerId, err := suite.keeper.CreateFallbackDomainRoutingHook(suite.ctx, suite.owner, merkleHook)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.keeper.SetDomainHook(suite.ctx, suite.owner, routerId, 42161, aggId))

	metadata := suite.feeMetadata(payer)
	metadata.GasLimit = math.NewInt(200_000)
	encoded, err := metadata.Bytes()
	suite.Require().NoError(err)
	decoded, err := util.ParseStandardHookMetadata(encoded)
	suite.Require().NoError(err)
	suite.Require().True(decoded.GasLimit.Equal(metadata.GasLimit))
	suite.Require().Equal(metadata.Address, decoded.Address)

	// configured domain: router -> aggregation -> fee + merkle
	message := testMessage(42161, []byte("configured"))
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, message.Id())

	quote, err := suite.keeper.QuoteDispatch(suite.ctx, suite.mailboxId, routerId, decoded, message)
	suite.Require().NoError(err)
	suite.Require().Equal(coins(100), quote)

	charged, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, routerId, decoded, message, quote)
	suite.Require().NoError(err)
	suite.Require().Equal(quote, charged)

	count, err := suite.keeper.MerkleTreeCount(suite.ctx, merkleHook)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(1), count)

	// unconfigured domain 137: the fallback merkle hook runs alone, free
	fallbackMessage := testMessage(137, []byte("fallback"))
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, fallbackMessage.Id())

	quote, err = suite.keeper.QuoteDispatch(suite.ctx, suite.mailboxId, routerId, decoded, fallbackMessage)
	suite.Require().NoError(err)
	suite.Require().True(quote.IsZero())

	charged, err = suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, routerId, decoded, fallbackMessage, quote)
	suite.Require().NoError(err)
	suite.Require().True(charged.IsZero())

	count, err = suite.keeper.MerkleTreeCount(suite.ctx, merkleHook)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(2), count)
	suite.Require().Equal(coins(900), suite.bankKeeper.Balance(payer))
}

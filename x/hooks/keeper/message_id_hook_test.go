package keeper_test

import (
	"errors"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

func (suite *KeeperTestSuite) createMessageIdHook(destinationDomain uint32) util.HexAddress {
	hookId, err := suite.keeper.CreateMessageIdHook(suite.ctx, suite.owner, destinationDomain, testBridgeAdapterType)
	suite.Require().NoError(err)
	return hookId
}

func (suite *KeeperTestSuite) TestMessageIdHookSendsPayload() {
	hookId := suite.createMessageIdHook(137)

	message := testMessage(137, []byte("bridge me"))
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, message.Id())

	charged, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), message, coins(0))
	suite.Require().NoError(err)
	suite.Require().True(charged.IsZero())

	// the adapter receives the 4-byte selector followed by the message id
	suite.Require().Len(suite.bridgeAdapter.Sent, 1)
	suite.Require().Equal(types.VerifyMessageIdPayload(message.Id()), suite.bridgeAdapter.Sent[0])
	suite.Require().Len(suite.eventsOfType(types.EventTypeMessageIdSent), 1)
}

func (suite *KeeperTestSuite) TestMessageIdHookDestinationMismatch() {
	hookId := suite.createMessageIdHook(137)

	message := testMessage(42161, nil)
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, message.Id())

	_, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), message, coins(0))
	suite.Require().ErrorIs(err, types.ErrDestinationMismatch)
	suite.Require().Empty(suite.bridgeAdapter.Sent)
}

func (suite *KeeperTestSuite) TestMessageIdHookRejectsNotLatestDispatched() {
	hookId := suite.createMessageIdHook(137)

	_, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), testMessage(137, nil), coins(0))
	suite.Require().ErrorIs(err, types.ErrNotLatestDispatched)
	suite.Require().Empty(suite.bridgeAdapter.Sent)
}

func (suite *KeeperTestSuite) TestMessageIdHookRejectsForeignOrigin() {
	hookId := suite.createMessageIdHook(137)

	message := testMessage(137, nil)
	message.Origin = 1
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, message.Id())

	_, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), message, coins(0))
	suite.Require().ErrorIs(err, types.ErrDestinationMismatch)
	suite.Require().Empty(suite.bridgeAdapter.Sent)
}

func (suite *KeeperTestSuite) TestMessageIdHookQuotesThroughAdapter() {
	hookId := suite.createMessageIdHook(137)
	suite.bridgeAdapter.Quote = coins(77)

	quote, err := suite.keeper.QuoteDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), testMessage(137, nil))
	suite.Require().NoError(err)
	suite.Require().Equal(coins(77), quote)

	// the adapter quote caps against the offered budget
	message := testMessage(137, nil)
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, message.Id())
	_, err = suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), message, coins(76))
	suite.Require().ErrorIs(err, types.ErrInsufficientPayment)
	suite.Require().Empty(suite.bridgeAdapter.Sent)
}

func (suite *KeeperTestSuite) TestMessageIdHookEscrowsBridgeFee() {
	hookId := suite.createMessageIdHook(137)
	suite.bridgeAdapter.Quote = coins(77)

	payer := testAddress("payer")
	suite.bankKeeper.Fund(payer, coins(100))

	message := testMessage(137, nil)
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, message.Id())

	charged, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, suite.valueMetadata(payer, 0), message, coins(77))
	suite.Require().NoError(err)
	suite.Require().Equal(coins(77), charged)

	// the quoted fee actually moves from the payer into the module escrow
	suite.Require().Equal(coins(23), suite.bankKeeper.Balance(payer))
	suite.Require().Equal(coins(77), suite.bankKeeper.ModuleBalance(types.ModuleName))
	suite.Require().Len(suite.bridgeAdapter.Sent, 1)

	// a nonzero quote with no payer in the metadata cannot be charged
	second := testMessage(137, []byte("second"))
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, second.Id())
	_, err = suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), second, coins(77))
	suite.Require().ErrorIs(err, types.ErrInvalidMetadata)
}

func (suite *KeeperTestSuite) TestMessageIdHookAdapterSendFailure() {
	hookId := suite.createMessageIdHook(137)
	suite.bridgeAdapter.SendErr = errors.New("bridge unavailable")

	message := testMessage(137, nil)
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, message.Id())

	_, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), message, coins(0))
	suite.Require().ErrorContains(err, "bridge unavailable")
}

func (suite *KeeperTestSuite) TestCreateMessageIdHookValidation() {
	_, err := suite.keeper.CreateMessageIdHook(suite.ctx, suite.owner, 0, testBridgeAdapterType)
	suite.Require().ErrorIs(err, types.ErrInvalidConfiguration)

	_, err = suite.keeper.CreateMessageIdHook(suite.ctx, suite.owner, 137, 12345)
	suite.Require().ErrorIs(err, types.ErrInvalidConfiguration)
}

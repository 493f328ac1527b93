package keeper_test

import (
	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

func (suite *KeeperTestSuite) createMerkleTreeHook() util.HexAddress {
	hookId, err := suite.keeper.CreateMerkleTreeHook(suite.ctx, suite.owner, suite.mailboxId)
	suite.Require().NoError(err)
	suite.Require().Equal(util.HookTypeMerkleTree, hookId.GetType())
	return hookId
}

// dispatch marks the message as latest dispatched and runs it through the hook.
func (suite *KeeperTestSuite) dispatchThrough(hookId util.HexAddress, message util.HyperlaneMessage) error {
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, message.Id())
	_, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), message, coins(0))
	return err
}

func (suite *KeeperTestSuite) TestMerkleTreeHookAccumulates() {
	hookId := suite.createMerkleTreeHook()

	var reference util.MerkleTree
	for i := 0; i < 5; i++ {
		message := testMessage(137, []byte{byte(i)})
		suite.Require().NoError(suite.dispatchThrough(hookId, message))
		suite.Require().NoError(reference.Insert([32]byte(message.Id())))

		count, err := suite.keeper.MerkleTreeCount(suite.ctx, hookId)
		suite.Require().NoError(err)
		suite.Require().Equal(uint32(i+1), count)

		root, err := suite.keeper.MerkleTreeRoot(suite.ctx, hookId)
		suite.Require().NoError(err)
		suite.Require().Equal(reference.Root(), root)
	}

	// leaf insertion order equals dispatch call order
	root, index, err := suite.keeper.LatestCheckpoint(suite.ctx, hookId)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(4), index)
	suite.Require().Equal(reference.Root(), root)

	suite.Require().Len(suite.eventsOfType(types.EventTypeInsertedIntoTree), 5)
}

func (suite *KeeperTestSuite) TestMerkleTreeHookQuotesZero() {
	hookId := suite.createMerkleTreeHook()

	quote, err := suite.keeper.QuoteDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), testMessage(137, nil))
	suite.Require().NoError(err)
	suite.Require().True(quote.IsZero())
}

func (suite *KeeperTestSuite) TestMerkleTreeHookRejectsNotLatestDispatched() {
	hookId := suite.createMerkleTreeHook()

	dispatched := testMessage(137, []byte("dispatched"))
	forged := testMessage(137, []byte("forged"))
	suite.mailboxKeeper.SetLatestDispatched(suite.mailboxId, dispatched.Id())

	_, err := suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, hookId, util.NewStandardHookMetadata(), forged, coins(0))
	suite.Require().ErrorIs(err, types.ErrNotLatestDispatched)

	count, err := suite.keeper.MerkleTreeCount(suite.ctx, hookId)
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(0), count)
}

func (suite *KeeperTestSuite) TestMerkleTreeHookEmptyCheckpoint() {
	hookId := suite.createMerkleTreeHook()

	_, _, err := suite.keeper.LatestCheckpoint(suite.ctx, hookId)
	suite.Require().Error(err)
}

func (suite *KeeperTestSuite) TestCreateMerkleTreeHookValidation() {
	_, err := suite.keeper.CreateMerkleTreeHook(suite.ctx, "", suite.mailboxId)
	suite.Require().ErrorIs(err, types.ErrInvalidConfiguration)

	_, err = suite.keeper.CreateMerkleTreeHook(suite.ctx, suite.owner, util.NewZeroAddress())
	suite.Require().ErrorIs(err, types.ErrInvalidConfiguration)
}

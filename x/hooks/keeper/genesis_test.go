package keeper_test

import (
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/testutil"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/hyperlane-hooks/util"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/keeper"
	"github.com/celestiaorg/hyperlane-hooks/x/hooks/types"
)

// freshKeeper builds a second keeper over an empty store for restore tests.
func (suite *KeeperTestSuite) freshKeeper() (sdk.Context, *keeper.Keeper) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	testCtx := testutil.DefaultContextWithDB(suite.T(), storeKey, storetypes.NewTransientStoreKey("transient_test"))
	ctx := testCtx.Ctx.WithBlockTime(testStartTime)

	k := keeper.NewKeeper(runtime.NewKVStoreService(storeKey), suite.bankKeeper, suite.mailboxKeeper, testAddress("authority").String())
	k.RegisterBridgeAdapter(testBridgeAdapterType, suite.bridgeAdapter)
	return ctx, k
}

func (suite *KeeperTestSuite) TestGenesisRoundTrip() {
	beneficiary := testAddress("beneficiary").String()

	merkleHook := suite.createMerkleTreeHook()
	feeHook := suite.createProtocolFeeHook(500, 100, beneficiary)
	rateHook := suite.createRateLimitedHook(1_000, coins(10), beneficiary)
	bridgeHook := suite.createMessageIdHook(137)

	aggId, err := suite.keeper.CreateAggregationHook(suite.ctx, suite.owner, []util.HexAddress{feeHook, merkleHook})
	suite.Require().NoError(err)

	routerId, err := suite.keeper.CreateDestinationRecipientRoutingHook(suite.ctx, suite.owner, merkleHook)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.keeper.SetDomainHook(suite.ctx, suite.owner, routerId, 137, aggId))
	suite.Require().NoError(suite.keeper.SetRecipientHook(suite.ctx, suite.owner, routerId, 137, testMessage(137, nil).Recipient, feeHook))

	// grow the tree so restoration has a non-trivial root to preserve
	for i := 0; i < 3; i++ {
		suite.Require().NoError(suite.dispatchThrough(merkleHook, testMessage(137, []byte{byte(i)})))
	}
	rootBefore, err := suite.keeper.MerkleTreeRoot(suite.ctx, merkleHook)
	suite.Require().NoError(err)

	// draw down the bucket so the replay guard has an entry to carry over
	payer := testAddress("payer")
	suite.bankKeeper.Fund(payer, coins(100))
	consumedMessage := testMessage(137, []byte("consumed"))
	_, err = suite.keeper.PostDispatch(suite.ctx, suite.mailboxId, rateHook, suite.valueMetadata(payer, 400), consumedMessage, coins(10))
	suite.Require().NoError(err)

	exported, err := suite.keeper.ExportGenesis(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(exported.MerkleTreeHooks, 1)
	suite.Require().Len(exported.ConsumedMessages, 1)
	suite.Require().Equal(rateHook, exported.ConsumedMessages[0].HookId)
	suite.Require().Len(exported.RoutingTable, 2)

	restoredCtx, restored := suite.freshKeeper()
	suite.Require().NoError(restored.InitGenesis(restoredCtx, exported))

	reExported, err := restored.ExportGenesis(restoredCtx)
	suite.Require().NoError(err)
	suite.Require().Equal(exported, reExported)

	rootAfter, err := restored.MerkleTreeRoot(restoredCtx, merkleHook)
	suite.Require().NoError(err)
	suite.Require().Equal(rootBefore, rootAfter)

	// replaying the consumed message on the restored keeper must not draw
	// the bucket a second time
	_, err = restored.PostDispatch(restoredCtx, suite.mailboxId, rateHook, suite.valueMetadata(payer, 400), consumedMessage, coins(10))
	suite.Require().NoError(err)
	level, err := restored.CalculateCurrentLevel(restoredCtx, rateHook)
	suite.Require().NoError(err)
	suite.Require().True(level.Equal(math.NewInt(600)))

	// the sequence survives: the next hook continues the id space
	nextId, err := restored.CreateMerkleTreeHook(restoredCtx, suite.owner, suite.mailboxId)
	suite.Require().NoError(err)
	suite.Require().Equal(routerId.GetInternalId()+1, nextId.GetInternalId())
	suite.Require().Equal(util.HookTypeRateLimitedFee, rateHook.GetType())

	// restored routing still resolves the recipient override
	quote, err := restored.QuoteDispatch(restoredCtx, suite.mailboxId, routerId, util.NewStandardHookMetadata(), testMessage(137, nil))
	suite.Require().NoError(err)
	suite.Require().Equal(coins(100), quote)
	suite.Require().Equal(bridgeHook.GetType(), uint32(util.HookTypeMessageIdBridge))
}

func (suite *KeeperTestSuite) TestGenesisValidate() {
	valid := &types.GenesisState{
		HooksSequence: 1,
		ProtocolFeeHooks: []types.ProtocolFeeHook{{
			Id:             util.NewHexAddress(types.ModuleName, util.HookTypeProtocolFee, 0),
			Owner:          suite.owner,
			MaxProtocolFee: coins(500),
			ProtocolFee:    coins(100),
			Beneficiary:    testAddress("beneficiary").String(),
			ClaimableFees:  sdk.NewCoins(),
		}},
	}
	suite.Require().NoError(valid.Validate())

	duplicate := *valid
	duplicate.MerkleTreeHooks = []types.MerkleTreeHook{{
		Id:        util.NewHexAddress(types.ModuleName, util.HookTypeMerkleTree, 0),
		Owner:     suite.owner,
		MailboxId: suite.mailboxId,
	}}
	suite.Require().Error(duplicate.Validate())

	overflow := *valid
	overflow.HooksSequence = 0
	suite.Require().Error(overflow.Validate())

	zeroConsumed := *valid
	zeroConsumed.ConsumedMessages = []types.ConsumedMessageEntry{{}}
	suite.Require().Error(zeroConsumed.Validate())

	zeroDomain := *valid
	zeroDomain.RoutingTable = []types.RoutingTableEntry{{Domain: 0}}
	suite.Require().Error(zeroDomain.Validate())

	noChildren := *valid
	noChildren.HooksSequence = 2
	noChildren.AggregationHooks = []types.AggregationHook{{
		Id:    util.NewHexAddress(types.ModuleName, util.HookTypeAggregation, 1),
		Owner: suite.owner,
	}}
	suite.Require().Error(noChildren.Validate())
}

func (suite *KeeperTestSuite) TestInitGenesisRejectsInvalidState() {
	ctx, k := suite.freshKeeper()
	err := k.InitGenesis(ctx, &types.GenesisState{
		HooksSequence:    0,
		RateLimitedHooks: []types.RateLimitedHook{{Id: util.NewHexAddress(types.ModuleName, util.HookTypeRateLimitedFee, 0), Capacity: math.NewInt(1)}},
	})
	suite.Require().Error(err)
}

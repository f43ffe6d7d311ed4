package eventbus

import (
	"context"
	"testing"
	"time"

	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// 需要本機kafka cluster
type KafkaBusTestSuite struct {
	suite.Suite
	bus *KafkaBus
}

func TestKafkaBusTestSuite(t *testing.T) {
	suite.Run(t, new(KafkaBusTestSuite))
}

func (suite *KafkaBusTestSuite) SetupTest() {
	suite.bus = NewKafkaBus(KafkaBusConfig{
		Brokers:       []string{"localhost:9092", "localhost:9093", "localhost:9094"},
		TopicPrefix:   "furnimart-test",
		ConsumerGroup: "furnimart-test-group",
		NumPartitions: 3,
	})
}

func (suite *KafkaBusTestSuite) TearDownTest() {
	suite.bus.Close()
}

// publish後能從同一kind的訂閱收到解碼完成的事件
func (suite *KafkaBusTestSuite) TestPublishSubscribeRoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events, unsubscribe, err := suite.bus.Subscribe(ctx, evt_model.KindLiquidation)
	require.NoError(suite.T(), err)
	defer unsubscribe()

	sent := &evt_model.LiquidationCompletedEvent{
		BaseEvent:       evt_model.NewBaseEvent("rec-kafka-1", evt_model.LiquidationCompletedEventName),
		RecordID:        "rec-kafka-1",
		PaymentID:       "pay-kafka-1",
		SellerID:        "seller-kafka-1",
		Amount:          decimal.RequireFromString("2000"),
		AdminCommission: decimal.RequireFromString("200"),
		SellerEarnings:  decimal.RequireFromString("1800"),
	}
	require.NoError(suite.T(), suite.bus.Publish(ctx, sent))

	select {
	case evt := <-events:
		got, ok := evt.(*evt_model.LiquidationCompletedEvent)
		require.True(suite.T(), ok)
		require.Equal(suite.T(), "pay-kafka-1", got.PaymentID)
		require.True(suite.T(), decimal.RequireFromString("1800").Equal(got.SellerEarnings))
	case <-ctx.Done():
		suite.T().Fatal("timed out waiting for event")
	}
}

func (suite *KafkaBusTestSuite) TestUnsubscribeIsIdempotent() {
	ctx := context.Background()
	_, unsubscribe, err := suite.bus.Subscribe(ctx, evt_model.KindPayment)
	require.NoError(suite.T(), err)
	unsubscribe()
	unsubscribe()
}

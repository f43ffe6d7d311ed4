package eventdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type AuditFormatError error

var ErrAuditFormat AuditFormatError = errors.New("audit event format error")

const (
	paymentStreamPrefix = "payment-"

	TransitionEventName    = "PaymentTransition"
	LiquidationEventName   = "PaymentLiquidated"
	liquidationAuditStream = "liquidation-updates"
)

// PaymentTransition 付款狀態轉移的稽核紀錄
// 每筆狀態變更append一筆 不可修改
type PaymentTransition struct {
	PaymentID string              `json:"payment_id"`
	From      model.PaymentStatus `json:"from"`
	To        model.PaymentStatus `json:"to"`
	Amount    decimal.Decimal     `json:"amount"`
	ActorID   string              `json:"actor_id"`
	At        time.Time           `json:"at"`
}

// LiquidationAudit 清算完成的稽核紀錄 寫入共用stream供背景同步訂閱
type LiquidationAudit struct {
	RecordID        string          `json:"record_id"`
	PaymentID       string          `json:"payment_id"`
	SellerID        string          `json:"seller_id"`
	Amount          decimal.Decimal `json:"amount"`
	AdminCommission decimal.Decimal `json:"admin_commission"`
	SellerEarnings  decimal.Decimal `json:"seller_earnings"`
	At              time.Time       `json:"at"`
}

// PaymentAuditDao 以EventStore保存付款稽核軌跡
// 每個payment一條stream
type PaymentAuditDao struct {
	client *esdb.Client
}

func NewPaymentAuditDao(client *esdb.Client) *PaymentAuditDao {
	return &PaymentAuditDao{client: client}
}

// 寫入一筆狀態轉移（append only）
func (dao *PaymentAuditDao) AppendTransition(ctx context.Context, transition PaymentTransition) error {
	payload, err := json.Marshal(transition)
	if err != nil {
		return err
	}
	eventData := esdb.EventData{
		ContentType: esdb.ContentTypeJson,
		EventType:   TransitionEventName,
		Data:        payload,
	}
	streamID := paymentStreamPrefix + transition.PaymentID
	_, err = dao.client.AppendToStream(ctx, streamID, esdb.AppendToStreamOptions{}, eventData)
	return err
}

// 寫入清算稽核 同時append到payment stream與共用的liquidation stream
func (dao *PaymentAuditDao) AppendLiquidation(ctx context.Context, audit LiquidationAudit) error {
	payload, err := json.Marshal(audit)
	if err != nil {
		return err
	}
	eventData := esdb.EventData{
		ContentType: esdb.ContentTypeJson,
		EventType:   LiquidationEventName,
		Data:        payload,
	}
	streamID := paymentStreamPrefix + audit.PaymentID
	if _, err = dao.client.AppendToStream(ctx, streamID, esdb.AppendToStreamOptions{}, eventData); err != nil {
		return err
	}
	_, err = dao.client.AppendToStream(ctx, liquidationAuditStream, esdb.AppendToStreamOptions{}, eventData)
	return err
}

// 讀取單一payment的完整轉移歷史
func (dao *PaymentAuditDao) ReadTransitions(ctx context.Context, paymentID string) ([]PaymentTransition, error) {
	opts := esdb.ReadStreamOptions{}
	stream, err := dao.client.ReadStream(ctx, paymentStreamPrefix+paymentID, opts, 100)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var transitions []PaymentTransition
	for {
		event, err := stream.Recv()
		if err != nil {
			break
		}
		if event.Event == nil || event.Event.EventType != TransitionEventName {
			continue
		}
		var transition PaymentTransition
		if err := json.Unmarshal(event.Event.Data, &transition); err != nil {
			return nil, ErrAuditFormat
		}
		transitions = append(transitions, transition)
	}
	return transitions, nil
}

// block 訂閱
// description:
//
//	固定監聽liquidation-updates stream資料
//
// param:
//
//	ctx: context
//	handler func(audit LiquidationAudit): 處理事件的函數，只有fatal錯誤才回傳，然後中斷SubscribeLiquidations
//
// return:
//
//	error: 只有發生fatal error 才回傳，並且中斷SubscribeLiquidations process
func (dao *PaymentAuditDao) SubscribeLiquidations(ctx context.Context, handler func(audit LiquidationAudit) error) error {
	subscription, err := dao.client.SubscribeToStream(ctx, liquidationAuditStream, esdb.SubscribeToStreamOptions{})
	if err != nil {
		return err
	}
	defer subscription.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			event := subscription.Recv()
			if event.SubscriptionDropped != nil {
				return fmt.Errorf("subscription dropped: %w", event.SubscriptionDropped.Error)
			}
			if event.EventAppeared != nil {
				var audit LiquidationAudit
				if err := json.Unmarshal(event.EventAppeared.Event.Data, &audit); err != nil {
					log.Error().Err(err).Msg("failed to unmarshal liquidation audit")
					continue
				}
				if err := handler(audit); err != nil {
					return err
				}
			}
		}
	}
}

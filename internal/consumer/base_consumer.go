package consumer

import (
	"context"
	"errors"
	"sync"

	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	event_handler "github.com/RoyceAzure/lab/furnimart/internal/handler/event"
	"github.com/rs/zerolog/log"
)

type ConsumerError error

var (
	ErrConsumerClosed ConsumerError = errors.New("consumer closed")
)

type IBaseConsumer interface {
	Start(ctx context.Context) error
	Stop()
}

// baseConsumer 訂閱單一EntityKind的事件流 逐筆交給handler
// handler錯誤記錄log後繼續消費 不中斷迴圈
type baseConsumer struct {
	bus       eventbus.Bus
	kind      evt_model.EntityKind
	handler   event_handler.Handler
	closeOnce sync.Once
	closeChan chan struct{}
}

func newBaseConsumer(bus eventbus.Bus, kind evt_model.EntityKind, handler event_handler.Handler) *baseConsumer {
	return &baseConsumer{
		bus:       bus,
		kind:      kind,
		handler:   handler,
		closeChan: make(chan struct{}),
	}
}

func (c *baseConsumer) checkIsClosed() bool {
	select {
	case <-c.closeChan:
		return true
	default:
		return false
	}
}

func (c *baseConsumer) Start(ctx context.Context) error {
	if c.checkIsClosed() {
		return ErrConsumerClosed
	}

	events, unsubscribe, err := c.bus.Subscribe(ctx, c.kind)
	if err != nil {
		return err
	}

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.closeChan:
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := c.handler.HandleEvent(ctx, evt); err != nil {
					log.Error().Err(err).
						Str("event_type", string(evt.Type())).
						Str("event_id", evt.GetID()).
						Msg("event handler error")
				}
			}
		}
	}()

	return nil
}

func (c *baseConsumer) Stop() {
	if c.checkIsClosed() {
		return
	}

	c.closeOnce.Do(func() {
		close(c.closeChan)
	})
}

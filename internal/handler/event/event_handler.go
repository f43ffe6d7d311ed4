package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/rj_redis/pkg/cache"
)

type HandlerError error

var (
	errHandlerNotFound HandlerError = errors.New("handler not found")
)

const processedEventTTL = 24 * time.Hour

type HandlerFunc func(ctx context.Context, evt evt_model.Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt evt_model.Event) error {
	return f(ctx, evt)
}

type Handler interface {
	HandleEvent(ctx context.Context, evt evt_model.Event) error
}

// HandlerDispatcher 依EventType分派事件
// eventCache記錄處理過的事件id 重送的事件直接略過
type HandlerDispatcher struct {
	handlers   map[evt_model.EventType]Handler
	eventCache cache.Cache
}

func NewHandlerDispatcher(handlers map[evt_model.EventType]Handler, eventCache cache.Cache) *HandlerDispatcher {
	return &HandlerDispatcher{handlers: handlers, eventCache: eventCache}
}

func (d *HandlerDispatcher) HandleEvent(ctx context.Context, evt evt_model.Event) error {
	// 檢查事件是否已經處理過
	eventKey := fmt.Sprintf("%s:%s", evt.Type(), evt.GetID())
	if d.eventCache != nil {
		processed, err := d.eventCache.Exists(ctx, eventKey)
		if err != nil {
			return err
		}
		if processed {
			return nil
		}
	}

	handler, ok := d.handlers[evt.Type()]
	if !ok {
		return errHandlerNotFound
	}
	if err := handler.HandleEvent(ctx, evt); err != nil {
		return err
	}

	if d.eventCache != nil {
		return d.eventCache.Set(ctx, eventKey, "1", processedEventTTL)
	}
	return nil
}

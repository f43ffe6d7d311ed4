package eventbus

import (
	"context"
	"errors"

	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
)

type BusError error

var (
	ErrBusClosed       = errors.New("event bus closed")
	ErrUnknownEventFmt = errors.New("unknown event format")
)

// Bus 每種實體一條typed事件流
// 買家app 賣家儀表板 admin儀表板各自訂閱 與store原生change-feed解耦
type Bus interface {
	Publish(ctx context.Context, evt evt_model.Event) error
	// Subscribe 回傳事件channel與取消函數
	Subscribe(ctx context.Context, kind evt_model.EntityKind) (<-chan evt_model.Event, func(), error)
	Close() error
}

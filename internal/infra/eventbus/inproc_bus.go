package eventbus

import (
	"context"
	"sync"

	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
)

// InprocBus 行程內實作 與kafka實作共用同一組Bus契約
// 單一行程的部署與測試用
type InprocBus struct {
	mu          sync.RWMutex
	subscribers map[evt_model.EntityKind][]chan evt_model.Event
	closed      bool
}

func NewInprocBus() *InprocBus {
	return &InprocBus{
		subscribers: make(map[evt_model.EntityKind][]chan evt_model.Event),
	}
}

func (b *InprocBus) Publish(ctx context.Context, evt evt_model.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	for _, ch := range b.subscribers[evt.Kind()] {
		// 滿了就丟 訂閱者跟不上不能卡住發布方
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

func (b *InprocBus) Subscribe(ctx context.Context, kind evt_model.EntityKind) (<-chan evt_model.Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, ErrBusClosed
	}
	ch := make(chan evt_model.Event, 64)
	b.subscribers[kind] = append(b.subscribers[kind], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.subscribers[kind]
			for i, sub := range subs {
				if sub == ch {
					b.subscribers[kind] = append(subs[:i], subs[i+1:]...)
					close(ch)
					return
				}
			}
		})
	}
	return ch, cancel, nil
}

func (b *InprocBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = make(map[evt_model.EntityKind][]chan evt_model.Event)
	return nil
}

var _ Bus = (*InprocBus)(nil)

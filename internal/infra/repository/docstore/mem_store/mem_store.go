package mem_store

import (
	"context"
	"sync"

	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
	"github.com/google/uuid"
)

// MemStore 行程內docstore實作
// 與redis_store共用同一組契約 測試與本地開發用
type MemStore struct {
	mu       sync.RWMutex
	colls    map[docstore.Collection]map[string][]byte
	watchers map[docstore.Collection][]chan docstore.Change
	closed   bool
}

func New() *MemStore {
	return &MemStore{
		colls:    make(map[docstore.Collection]map[string][]byte),
		watchers: make(map[docstore.Collection][]chan docstore.Change),
	}
}

func (s *MemStore) coll(coll docstore.Collection) map[string][]byte {
	c, ok := s.colls[coll]
	if !ok {
		c = make(map[string][]byte)
		s.colls[coll] = c
	}
	return c
}

func (s *MemStore) Get(ctx context.Context, coll docstore.Collection, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, docstore.ErrStoreClosed
	}
	doc, ok := s.colls[coll][id]
	if !ok {
		return nil, docstore.ErrDocNotFound
	}
	return clone(doc), nil
}

func (s *MemStore) Set(ctx context.Context, coll docstore.Collection, id string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return docstore.ErrStoreClosed
	}
	_, existed := s.coll(coll)[id]
	s.coll(coll)[id] = clone(doc)
	s.notify(coll, id, doc, existed)
	return nil
}

func (s *MemStore) Create(ctx context.Context, coll docstore.Collection, doc []byte) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, coll, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// Update 在單一鎖下執行mutate 保證單文件原子性
func (s *MemStore) Update(ctx context.Context, coll docstore.Collection, id string, mutate docstore.UpdateFunc) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, docstore.ErrStoreClosed
	}
	cur, existed := s.coll(coll)[id]
	var curCopy []byte
	if existed {
		curCopy = clone(cur)
	}
	next, err := mutate(curCopy)
	if err != nil {
		return nil, err
	}
	s.coll(coll)[id] = clone(next)
	s.notify(coll, id, next, existed)
	return next, nil
}

func (s *MemStore) Delete(ctx context.Context, coll docstore.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return docstore.ErrStoreClosed
	}
	if _, ok := s.coll(coll)[id]; !ok {
		return docstore.ErrDocNotFound
	}
	delete(s.coll(coll), id)
	for _, ch := range s.watchers[coll] {
		send(ch, docstore.Change{Type: docstore.ChangeRemoved, Collection: coll, DocID: id})
	}
	return nil
}

func (s *MemStore) Query(ctx context.Context, coll docstore.Collection, filters ...docstore.Filter) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, docstore.ErrStoreClosed
	}
	result := make(map[string][]byte)
	for id, doc := range s.colls[coll] {
		if docstore.Matches(doc, filters) {
			result[id] = clone(doc)
		}
	}
	return result, nil
}

func (s *MemStore) Watch(ctx context.Context, coll docstore.Collection) (<-chan docstore.Change, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, docstore.ErrStoreClosed
	}
	ch := make(chan docstore.Change, 64)
	s.watchers[coll] = append(s.watchers[coll], ch)

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		watchers := s.watchers[coll]
		for i, w := range watchers {
			if w == ch {
				s.watchers[coll] = append(watchers[:i], watchers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel, nil
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, watchers := range s.watchers {
		for _, ch := range watchers {
			close(ch)
		}
	}
	s.watchers = make(map[docstore.Collection][]chan docstore.Change)
	return nil
}

// caller持有寫鎖
func (s *MemStore) notify(coll docstore.Collection, id string, doc []byte, existed bool) {
	typ := docstore.ChangeAdded
	if existed {
		typ = docstore.ChangeModified
	}
	for _, ch := range s.watchers[coll] {
		send(ch, docstore.Change{Type: typ, Collection: coll, DocID: id, Doc: clone(doc)})
	}
}

// 滿了就丟 訂閱者跟不上不會卡住寫入方
func send(ch chan docstore.Change, change docstore.Change) {
	select {
	case ch <- change:
	default:
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ docstore.Store = (*MemStore)(nil)

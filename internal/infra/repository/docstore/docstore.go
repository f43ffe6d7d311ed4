package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

type DocStoreError error

var (
	ErrDocNotFound     = errors.New("document not found")
	ErrUpdateConflict  = errors.New("document update conflict")
	ErrStoreClosed     = errors.New("doc store closed")
	ErrInvalidDocument = errors.New("invalid document")
)

type Collection string

const (
	CollectionProducts      Collection = "products"
	CollectionLivingRoom    Collection = "livingroom_products"
	CollectionBedroom       Collection = "bedroom_products"
	CollectionDining        Collection = "dining_products"
	CollectionOffice        Collection = "office_products"
	CollectionCarts         Collection = "carts"
	CollectionPayments      Collection = "payments"
	CollectionOrders        Collection = "orders"
	CollectionNotifications Collection = "notifications"
	CollectionLiquidations  Collection = "liquidations"
	CollectionUsers         Collection = "users"
)

// Filter 等值過濾條件 field為json欄位名
type Filter struct {
	Field string
	Value any
}

func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change 文件異動通知
type Change struct {
	Type       ChangeType      `json:"type"`
	Collection Collection      `json:"collection"`
	DocID      string          `json:"doc_id"`
	Doc        json.RawMessage `json:"doc,omitempty"`
}

// UpdateFunc 原子RMW的mutate函數
// cur為nil表示文件不存在 caller自行決定視為空白基底或回傳ErrDocNotFound
type UpdateFunc func(cur []byte) ([]byte, error)

// Store 文件庫抽象
// 只保證單一文件的原子性 跨文件一致性由上層saga處理
type Store interface {
	Get(ctx context.Context, coll Collection, id string) ([]byte, error)
	Set(ctx context.Context, coll Collection, id string, doc []byte) error
	// Create 由store產生id
	Create(ctx context.Context, coll Collection, doc []byte) (string, error)
	// Update 對單一文件做原子read-modify-write
	Update(ctx context.Context, coll Collection, id string, mutate UpdateFunc) ([]byte, error)
	Delete(ctx context.Context, coll Collection, id string) error
	// Query 等值條件查詢 回傳 docID -> doc
	Query(ctx context.Context, coll Collection, filters ...Filter) (map[string][]byte, error)
	// Watch 訂閱collection的異動 回傳channel與取消函數
	Watch(ctx context.Context, coll Collection) (<-chan Change, func(), error)
	Close() error
}

// Matches 檢查json文件是否符合所有等值條件
// 數值統一轉成json number比較
func Matches(doc []byte, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}
	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false
	}
	for _, f := range filters {
		got, ok := fields[f.Field]
		if !ok {
			return false
		}
		want := normalize(f.Value)
		if normalize(got) != want {
			return false
		}
	}
	return true
}

func normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	return string(b)
}

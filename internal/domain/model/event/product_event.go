package event

import (
	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
)

type ProductSubmittedEvent struct {
	BaseEvent
	ProductID  string         `json:"product_id"`
	UploaderID string         `json:"uploader_id"`
	Category   model.Category `json:"category"`
}

func (e *ProductSubmittedEvent) Type() EventType  { return ProductSubmittedEventName }
func (e *ProductSubmittedEvent) Kind() EntityKind { return KindProduct }

// ProductModeratedEvent 審核結果 approved時帶上目標分類collection
type ProductModeratedEvent struct {
	BaseEvent
	ProductID         string              `json:"product_id"`
	UploaderID        string              `json:"uploader_id"`
	Status            model.ProductStatus `json:"status"`
	ListingCollection string              `json:"listing_collection,omitempty"`
}

func (e *ProductModeratedEvent) Type() EventType  { return ProductModeratedEventName }
func (e *ProductModeratedEvent) Kind() EntityKind { return KindProduct }

type ProductDeletedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
}

func (e *ProductDeletedEvent) Type() EventType  { return ProductDeletedEventName }
func (e *ProductDeletedEvent) Kind() EntityKind { return KindProduct }

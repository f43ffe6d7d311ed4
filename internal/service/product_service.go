package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
	"github.com/RoyceAzure/lab/furnimart/internal/pkg/util"
	"github.com/rs/zerolog/log"
)

// categoryCollections 分類到view collection的對照表
// 沒有對照的分類無法上架 審核時直接回報錯誤
var categoryCollections = map[model.Category]docstore.Collection{
	model.CategorySofa:        docstore.CollectionLivingRoom,
	model.CategoryChair:       docstore.CollectionLivingRoom,
	model.CategoryTVStand:     docstore.CollectionLivingRoom,
	model.CategoryBed:         docstore.CollectionBedroom,
	model.CategoryWardrobe:    docstore.CollectionBedroom,
	model.CategoryDesks:       docstore.CollectionBedroom,
	model.CategoryDiningChair: docstore.CollectionDining,
	model.CategoryCabinet:     docstore.CollectionDining,
	model.CategoryDiningTable: docstore.CollectionDining,
}

// ListingCollectionFor 分類對應的view collection
func ListingCollectionFor(category model.Category) (docstore.Collection, bool) {
	coll, ok := categoryCollections[category]
	return coll, ok
}

// ProductService 商品送審與審核流程
// 送審後商品由審核流程接管 賣家不能再修改
type ProductService struct {
	authz
	productRepo *store_repo.ProductRepo
	listingRepo *store_repo.ListingRepo
	notifier    *NotificationService
	bus         eventbus.Bus
}

func NewProductService(
	productRepo *store_repo.ProductRepo,
	listingRepo *store_repo.ListingRepo,
	userRepo *store_repo.UserRepo,
	notifier *NotificationService,
	bus eventbus.Bus,
) *ProductService {
	if productRepo == nil || listingRepo == nil || userRepo == nil || notifier == nil {
		panic("product service dependency is nil")
	}
	return &ProductService{
		authz:       authz{userRepo: userRepo},
		productRepo: productRepo,
		listingRepo: listingRepo,
		notifier:    notifier,
		bus:         bus,
	}
}

// Submit 賣家送審商品 一律進pending等待審核
// 錯誤:
//   - ErrForbidden: caller不是seller或admin
//   - ErrInvalidProduct: 缺少必要欄位
func (s *ProductService) Submit(ctx context.Context, callerID string, product *model.Product) (*model.Product, error) {
	if err := s.requireRole(ctx, callerID, model.RoleSeller, model.RoleAdmin); err != nil {
		return nil, err
	}
	if product == nil || product.Name == "" || product.Category == "" || !product.Price.IsPositive() {
		return nil, ErrInvalidProduct
	}
	if product.ProductID == "" {
		product.ProductID = util.NewID()
	}
	product.UploaderID = callerID
	product.Status = model.ProductStatusPending
	product.CreatedAt = time.Now().UTC()
	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, &evt_model.ProductSubmittedEvent{
		BaseEvent:  evt_model.NewBaseEvent(product.ProductID, evt_model.ProductSubmittedEventName),
		ProductID:  product.ProductID,
		UploaderID: product.UploaderID,
		Category:   product.Category,
	})
	return product, nil
}

// Moderate 審核商品 pending -> approved/rejected 結果不可逆
// approved會把商品寫入分類view並通知賣家 任一步失敗整個轉移回滾
// 錯誤:
//   - ErrForbidden: caller不是admin
//   - ErrAlreadyModerated: 商品已審核過
//   - ErrUnmappedCategory: 分類沒有對應的view collection
func (s *ProductService) Moderate(ctx context.Context, callerID, productID string, approve bool) (*model.Product, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != model.ProductStatusPending {
		return nil, ErrAlreadyModerated
	}

	if !approve {
		return s.reject(ctx, productID)
	}

	// 寫入view之前先確認分類有對照 避免商品approved卻沒出現在任何分類
	coll, ok := ListingCollectionFor(product.Category)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnmappedCategory, product.Category)
	}

	var updated *model.Product
	steps := []SagaStep{
		{
			Name: "approve-product",
			Run: func(ctx context.Context) error {
				updated, err = s.productRepo.UpdateProduct(ctx, productID, func(product *model.Product) error {
					if product.Status != model.ProductStatusPending {
						return ErrAlreadyModerated
					}
					product.Status = model.ProductStatusApproved
					return nil
				})
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, cerr := s.productRepo.UpdateProduct(ctx, productID, func(product *model.Product) error {
					product.Status = model.ProductStatusPending
					return nil
				})
				return cerr
			},
		},
		{
			Name: "create-listing",
			Run: func(ctx context.Context) error {
				return s.listingRepo.CreateListing(ctx, coll, &model.CategoryListing{
					ProductID:   updated.ProductID,
					Name:        updated.Name,
					Description: updated.Description,
					Price:       updated.Price,
					Category:    updated.Category,
					Image:       updated.Image,
					GlbURI:      updated.GlbURI,
					PrefabKey:   updated.PrefabKey,
					Status:      updated.Status,
				})
			},
			Compensate: func(ctx context.Context) error {
				return s.listingRepo.DeleteListing(ctx, coll, productID)
			},
		},
		{
			Name: "notify-uploader",
			Run: func(ctx context.Context) error {
				message := fmt.Sprintf("Your product %q has been approved!", updated.Name)
				_, nerr := s.notifier.Emit(ctx, updated.UploaderID, model.NotificationTypeProduct, message)
				return nerr
			},
		},
	}
	if err := runSaga(ctx, "moderate-approve", steps); err != nil {
		return nil, err
	}

	s.publish(ctx, &evt_model.ProductModeratedEvent{
		BaseEvent:         evt_model.NewBaseEvent(productID, evt_model.ProductModeratedEventName),
		ProductID:         productID,
		UploaderID:        updated.UploaderID,
		Status:            updated.Status,
		ListingCollection: string(coll),
	})
	return updated, nil
}

func (s *ProductService) reject(ctx context.Context, productID string) (*model.Product, error) {
	updated, err := s.productRepo.UpdateProduct(ctx, productID, func(product *model.Product) error {
		if product.Status != model.ProductStatusPending {
			return ErrAlreadyModerated
		}
		product.Status = model.ProductStatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your product %q has been rejected.", updated.Name)
	if _, err := s.notifier.Emit(ctx, updated.UploaderID, model.NotificationTypeProduct, message); err != nil {
		return nil, err
	}

	s.publish(ctx, &evt_model.ProductModeratedEvent{
		BaseEvent:  evt_model.NewBaseEvent(productID, evt_model.ProductModeratedEventName),
		ProductID:  productID,
		UploaderID: updated.UploaderID,
		Status:     updated.Status,
	})
	return updated, nil
}

// Delete 刪除商品 同時移除分類view的listing
// 只有admin或上架者本人可以刪
func (s *ProductService) Delete(ctx context.Context, callerID, productID string) error {
	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if callerID != product.UploaderID {
		if err := s.requireAdmin(ctx, callerID); err != nil {
			return err
		}
	}

	if coll, ok := ListingCollectionFor(product.Category); ok {
		if err := s.listingRepo.DeleteListing(ctx, coll, productID); err != nil &&
			!errors.Is(err, store_repo.ErrListingNotFound) {
			return err
		}
	}
	if err := s.productRepo.DeleteProduct(ctx, productID); err != nil {
		return err
	}

	s.publish(ctx, &evt_model.ProductDeletedEvent{
		BaseEvent: evt_model.NewBaseEvent(productID, evt_model.ProductDeletedEventName),
		ProductID: productID,
	})
	return nil
}

func (s *ProductService) Get(ctx context.Context, productID string) (*model.Product, error) {
	return s.productRepo.GetProduct(ctx, productID)
}

// ListByStatus 審核後台用 依狀態列出商品
func (s *ProductService) ListByStatus(ctx context.Context, status model.ProductStatus) ([]model.Product, error) {
	return s.productRepo.GetProductsByStatus(ctx, status)
}

// ListCategory 分類view查詢
func (s *ProductService) ListCategory(ctx context.Context, category model.Category) ([]model.CategoryListing, error) {
	coll, ok := ListingCollectionFor(category)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnmappedCategory, category)
	}
	return s.listingRepo.ListByCategory(ctx, coll, category)
}

func (s *ProductService) publish(ctx context.Context, evt evt_model.Event) {
	if util.IsNil(s.bus) {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("event_type", string(evt.Type())).Msg("failed to publish product event")
	}
}

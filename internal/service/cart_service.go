package service

import (
	"context"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
	"github.com/RoyceAzure/lab/furnimart/internal/pkg/util"
	"github.com/rs/zerolog/log"
)

// CartService 購物車異動都是單文件原子操作
// 同商品重複加入只會累加數量 不會出現重複行項
type CartService struct {
	cartRepo *store_repo.CartRepo
	bus      eventbus.Bus
}

func NewCartService(cartRepo *store_repo.CartRepo, bus eventbus.Bus) *CartService {
	if cartRepo == nil {
		panic("cart service dependency cartRepo is nil")
	}
	return &CartService{cartRepo: cartRepo, bus: bus}
}

func (s *CartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	return s.cartRepo.GetCart(ctx, userID)
}

// AddOrIncrement 加入商品 已存在則數量+1
// 單價與名稱以加入當下的商品資料為準
func (s *CartService) AddOrIncrement(ctx context.Context, userID string, product *model.Product) (*model.Cart, error) {
	if product == nil || product.ProductID == "" {
		return nil, ErrInvalidProduct
	}
	cart, err := s.cartRepo.UpdateCart(ctx, userID, func(cart *model.Cart) error {
		idx := cart.FindLine(product.ProductID)
		if idx < 0 {
			cart.Lines = append(cart.Lines, model.CartLine{
				ProductID: product.ProductID,
				Name:      product.Name,
				Quantity:  1,
				UnitPrice: product.Price,
			})
			return nil
		}
		cart.Lines[idx].Quantity++
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, cart)
	return cart, nil
}

// Increment 數量+1 行項不存在則不動作
func (s *CartService) Increment(ctx context.Context, userID, productID string) (*model.Cart, error) {
	return s.adjust(ctx, userID, productID, 1)
}

// Decrement 數量-1 減到0就移除行項
func (s *CartService) Decrement(ctx context.Context, userID, productID string) (*model.Cart, error) {
	return s.adjust(ctx, userID, productID, -1)
}

func (s *CartService) adjust(ctx context.Context, userID, productID string, delta int) (*model.Cart, error) {
	cart, err := s.cartRepo.UpdateCart(ctx, userID, func(cart *model.Cart) error {
		idx := cart.FindLine(productID)
		if idx < 0 {
			// 行項不存在視為no-op
			return nil
		}
		cart.Lines[idx].Quantity += delta
		if cart.Lines[idx].Quantity <= 0 {
			cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, cart)
	return cart, nil
}

// Remove 移除整個行項 不存在視為no-op
func (s *CartService) Remove(ctx context.Context, userID, productID string) (*model.Cart, error) {
	return s.RemoveLines(ctx, userID, productID)
}

// RemoveLines 一次移除多個行項 付款核准後清掉已購買的商品
func (s *CartService) RemoveLines(ctx context.Context, userID string, productIDs ...string) (*model.Cart, error) {
	removeSet := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		removeSet[id] = struct{}{}
	}
	cart, err := s.cartRepo.UpdateCart(ctx, userID, func(cart *model.Cart) error {
		kept := cart.Lines[:0]
		for _, line := range cart.Lines {
			if _, ok := removeSet[line.ProductID]; !ok {
				kept = append(kept, line)
			}
		}
		cart.Lines = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, cart)
	return cart, nil
}

// RestoreLines 把行項加回購物車 補償付款核准失敗用
func (s *CartService) RestoreLines(ctx context.Context, userID string, lines []model.CartLine) (*model.Cart, error) {
	if len(lines) == 0 {
		return s.cartRepo.GetCart(ctx, userID)
	}
	cart, err := s.cartRepo.UpdateCart(ctx, userID, func(cart *model.Cart) error {
		for _, line := range lines {
			if cart.FindLine(line.ProductID) < 0 {
				cart.Lines = append(cart.Lines, line)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, cart)
	return cart, nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	_, err := s.cartRepo.UpdateCart(ctx, userID, func(cart *model.Cart) error {
		cart.Lines = nil
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, &evt_model.CartClearedEvent{
		BaseEvent: evt_model.NewBaseEvent(userID, evt_model.CartClearedEventName),
		UserID:    userID,
	})
	return nil
}

func (s *CartService) publishUpdated(ctx context.Context, cart *model.Cart) {
	s.publish(ctx, &evt_model.CartUpdatedEvent{
		BaseEvent: evt_model.NewBaseEvent(cart.UserID, evt_model.CartUpdatedEventName),
		UserID:    cart.UserID,
		Lines:     cart.Lines,
	})
}

// 事件發佈失敗不影響已完成的寫入 只記錄log
func (s *CartService) publish(ctx context.Context, evt evt_model.Event) {
	if util.IsNil(s.bus) {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("event_type", string(evt.Type())).Msg("failed to publish cart event")
	}
}

package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/furnimart/internal/domain/model/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore/mem_store"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/eventdb"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testAdminID  = "admin-1"
	testSellerID = "seller-1"
	testBuyerID  = "buyer-1"
)

// memAudit 記在記憶體的稽核軌跡
type memAudit struct {
	mu           sync.Mutex
	transitions  map[string][]eventdb.PaymentTransition
	liquidations []eventdb.LiquidationAudit
}

func newMemAudit() *memAudit {
	return &memAudit{transitions: make(map[string][]eventdb.PaymentTransition)}
}

func (a *memAudit) AppendTransition(ctx context.Context, transition eventdb.PaymentTransition) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transitions[transition.PaymentID] = append(a.transitions[transition.PaymentID], transition)
	return nil
}

func (a *memAudit) AppendLiquidation(ctx context.Context, audit eventdb.LiquidationAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.liquidations = append(a.liquidations, audit)
	return nil
}

func (a *memAudit) ReadTransitions(ctx context.Context, paymentID string) ([]eventdb.PaymentTransition, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]eventdb.PaymentTransition(nil), a.transitions[paymentID]...), nil
}

// 所有service測試共用的環境 mem store + inproc bus
type testEnv struct {
	store          *mem_store.MemStore
	bus            *eventbus.InprocBus
	audit          *memAudit
	cartSvc        *CartService
	notifier       *NotificationService
	productSvc     *ProductService
	paymentSvc     *PaymentService
	orderSvc       *OrderService
	liquidationSvc *LiquidationService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWrapped(t, nil)
}

// wrap讓個別測試替換store行為 注入失敗等情境 nil則直接用mem store
func newTestEnvWrapped(t *testing.T, wrap func(docstore.Store) docstore.Store) *testEnv {
	t.Helper()

	store := mem_store.New()
	bus := eventbus.NewInprocBus()
	t.Cleanup(func() {
		_ = bus.Close()
		_ = store.Close()
	})

	var svcStore docstore.Store = store
	if wrap != nil {
		svcStore = wrap(store)
	}

	userRepo := store_repo.NewUserRepo(svcStore)
	cartRepo := store_repo.NewCartRepo(svcStore)
	productRepo := store_repo.NewProductRepo(svcStore)
	listingRepo := store_repo.NewListingRepo(svcStore)
	paymentRepo := store_repo.NewPaymentRepo(svcStore)
	orderRepo := store_repo.NewOrderRepo(svcStore)
	notificationRepo := store_repo.NewNotificationRepo(svcStore)
	liquidationRepo := store_repo.NewLiquidationRepo(svcStore)

	audit := newMemAudit()
	notifier := NewNotificationService(notificationRepo)
	cartSvc := NewCartService(cartRepo, bus)
	productSvc := NewProductService(productRepo, listingRepo, userRepo, notifier, bus)
	paymentSvc := NewPaymentService(paymentRepo, productRepo, userRepo, cartSvc, notifier, audit, bus)
	orderSvc := NewOrderService(orderRepo, userRepo, paymentSvc, notifier, bus)
	liquidationSvc := NewLiquidationService(paymentRepo, liquidationRepo, userRepo, notifier, audit, bus, decimal.RequireFromString("0.10"))

	env := &testEnv{
		store:          store,
		bus:            bus,
		audit:          audit,
		cartSvc:        cartSvc,
		notifier:       notifier,
		productSvc:     productSvc,
		paymentSvc:     paymentSvc,
		orderSvc:       orderSvc,
		liquidationSvc: liquidationSvc,
	}
	env.seedUser(t, testAdminID, model.RoleAdmin)
	env.seedUser(t, testSellerID, model.RoleSeller)
	env.seedUser(t, testBuyerID, model.RoleBuyer)
	return env
}

func (env *testEnv) seedUser(t *testing.T, userID string, role model.Role) {
	t.Helper()
	doc, err := json.Marshal(model.User{UserID: userID, Username: userID, Role: role})
	require.NoError(t, err)
	require.NoError(t, env.store.Set(context.Background(), docstore.CollectionUsers, userID, doc))
}

// 送審並核准一個商品 回傳approved狀態的商品
func (env *testEnv) approvedProduct(t *testing.T, name string, price string, category model.Category) *model.Product {
	t.Helper()
	ctx := context.Background()
	product, err := env.productSvc.Submit(ctx, testSellerID, &model.Product{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  category,
		PrefabKey: "prefab_" + name,
	})
	require.NoError(t, err)
	approved, err := env.productSvc.Moderate(ctx, testAdminID, product.ProductID, true)
	require.NoError(t, err)
	return approved
}

func (env *testEnv) notificationsFor(t *testing.T, userID string) []model.Notification {
	t.Helper()
	notifications, err := env.notifier.List(context.Background(), userID)
	require.NoError(t, err)
	return notifications
}

// 訂閱某個kind的事件 回傳收集函式
func (env *testEnv) collectEvents(t *testing.T, kind evt_model.EntityKind) func() []evt_model.Event {
	t.Helper()
	events, unsubscribe, err := env.bus.Subscribe(context.Background(), kind)
	require.NoError(t, err)
	t.Cleanup(unsubscribe)

	return func() []evt_model.Event {
		var collected []evt_model.Event
		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return collected
				}
				collected = append(collected, evt)
			case <-time.After(50 * time.Millisecond):
				return collected
			}
		}
	}
}

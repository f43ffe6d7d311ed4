// Package app 組裝整個核心
// doc store、事件流、台帳、稽核與各服務都在這裡接線
package app

import (
	"context"
	"time"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/RoyceAzure/lab/furnimart/internal/consumer"
	event_handler "github.com/RoyceAzure/lab/furnimart/internal/handler/event"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/eventbus"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/docstore/redis_store"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/eventdb"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/store_repo"
	"github.com/RoyceAzure/lab/furnimart/internal/pkg/config"
	"github.com/RoyceAzure/lab/furnimart/internal/service"
	cache_redis "github.com/RoyceAzure/lab/rj_redis/pkg/cache/redis"
	"github.com/redis/go-redis/v9"
)

// App 核心服務的組合根
type App struct {
	Carts         *service.CartService
	Products      *service.ProductService
	Payments      *service.PaymentService
	Orders        *service.OrderService
	Liquidations  *service.LiquidationService
	Notifications *service.NotificationService

	store           *redis_store.RedisStore
	esClient        *esdb.Client
	bus             *eventbus.KafkaBus
	ledgerSync      *service.LedgerSyncService
	paymentConsumer consumer.IBaseConsumer
}

func New(cfg *config.Config) (*App, error) {
	commission, err := cfg.Commission()
	if err != nil {
		return nil, err
	}

	// doc store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := redis_store.New(redisClient)

	// 結算台帳
	conn, err := db.GetDbConnWithDSN(cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	dbDao := db.NewDbDao(conn)
	if err := dbDao.InitMigrate(); err != nil {
		return nil, err
	}
	settlementRepo := db.NewSettlementRepo(dbDao)

	// 付款稽核
	settings, err := esdb.ParseConnectionString(cfg.EventStore.DSN)
	if err != nil {
		return nil, err
	}
	esClient, err := esdb.NewClient(settings)
	if err != nil {
		return nil, err
	}
	auditDao := eventdb.NewPaymentAuditDao(esClient)

	// 事件流
	bus := eventbus.NewKafkaBus(eventbus.KafkaBusConfig{
		Brokers:       cfg.Kafka.Brokers,
		TopicPrefix:   cfg.Kafka.TopicPrefix,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		NumPartitions: cfg.Kafka.NumPartitions,
	})

	userRepo := store_repo.NewUserRepo(store)
	productRepo := store_repo.NewProductRepo(store)
	paymentRepo := store_repo.NewPaymentRepo(store)

	notifier := service.NewNotificationService(store_repo.NewNotificationRepo(store))
	cartSvc := service.NewCartService(store_repo.NewCartRepo(store), bus)
	productSvc := service.NewProductService(productRepo, store_repo.NewListingRepo(store), userRepo, notifier, bus)
	paymentSvc := service.NewPaymentService(paymentRepo, productRepo, userRepo, cartSvc, notifier, auditDao, bus)
	orderSvc := service.NewOrderService(store_repo.NewOrderRepo(store), userRepo, paymentSvc, notifier, bus)
	liquidationSvc := service.NewLiquidationService(paymentRepo, store_repo.NewLiquidationRepo(store), userRepo, notifier, auditDao, bus, commission)

	// 買家ack迴圈 處理過的事件記在redis避免重複
	eventCache := cache_redis.NewRedisCache(redisClient, "furnimart:processed")
	paymentConsumer := consumer.NewPaymentEventConsumer(bus, event_handler.NewPaymentEventHandler(paymentSvc, eventCache))

	return &App{
		Carts:           cartSvc,
		Products:        productSvc,
		Payments:        paymentSvc,
		Orders:          orderSvc,
		Liquidations:    liquidationSvc,
		Notifications:   notifier,
		store:           store,
		esClient:        esClient,
		bus:             bus,
		ledgerSync:      service.NewLedgerSyncService(auditDao, settlementRepo),
		paymentConsumer: paymentConsumer,
	}, nil
}

// Start 啟動背景流程 台帳同步與買家ack迴圈
func (a *App) Start(ctx context.Context) error {
	if err := a.ledgerSync.Start(); err != nil {
		return err
	}
	if err := a.paymentConsumer.Start(ctx); err != nil {
		_ = a.ledgerSync.Stop(5 * time.Second)
		return err
	}
	return nil
}

func (a *App) Shutdown() {
	a.paymentConsumer.Stop()
	_ = a.ledgerSync.Stop(5 * time.Second)
	_ = a.bus.Close()
	_ = a.esClient.Close()
	// store擁有redis client 關store即關client
	_ = a.store.Close()
}

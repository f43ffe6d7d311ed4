package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/furnimart/internal/infra/repository/eventdb"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type BackGroundService interface {
	Start() error
	Stop(timeout time.Duration) error
}

// LiquidationStream 清算稽核串流來源
type LiquidationStream interface {
	SubscribeLiquidations(ctx context.Context, handler func(audit eventdb.LiquidationAudit) error) error
}

// LedgerSyncService 把清算稽核串流同步到結算台帳
// doc store是事實來源 台帳只是查詢端鏡像 重放稽核事件不會產生重複資料
type LedgerSyncService struct {
	stream          LiquidationStream
	settlementRepo  *db.SettlementRepo
	recordList      []*model.LiquidationRecord
	isThreadRunning atomic.Bool
	stopCtxCancel   context.CancelFunc
}

func NewLedgerSyncService(stream LiquidationStream, settlementRepo *db.SettlementRepo) *LedgerSyncService {
	if stream == nil {
		panic("ledger sync service dependency stream is nil")
	}
	if settlementRepo == nil {
		panic("ledger sync service dependency settlementRepo is nil")
	}
	return &LedgerSyncService{
		stream:         stream,
		settlementRepo: settlementRepo,
		recordList:     make([]*model.LiquidationRecord, 0, 100),
	}
}

func (e *LedgerSyncService) Start() error {
	if !e.isThreadRunning.CompareAndSwap(false, true) {
		return fmt.Errorf("ledger sync thread is already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.stopCtxCancel = cancel

	go func() {
		defer e.isThreadRunning.CompareAndSwap(true, false)
		defer e.stopCtxCancel()
		err := e.stream.SubscribeLiquidations(ctx, func(audit eventdb.LiquidationAudit) error {
			return e.handleAudit(ctx, audit)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("ledger sync stopped on subscription error")
		}
	}()
	return nil
}

func (e *LedgerSyncService) Stop(timeout time.Duration) error {
	if e.stopCtxCancel == nil {
		return nil
	}
	e.stopCtxCancel()

	time.AfterFunc(timeout, func() {
		if e.isThreadRunning.Load() {
			log.Error().Msg("time out for stop ledger sync service")
		}
		e.isThreadRunning.Store(false)
	})

	return nil
}

// 每筆清算稽核寫一次台帳
// 只有遇到gorm的事務錯誤才中斷流程 其他錯誤記錄log後繼續
func (e *LedgerSyncService) handleAudit(ctx context.Context, audit eventdb.LiquidationAudit) error {
	e.recordList = append(e.recordList, &model.LiquidationRecord{
		RecordID:        audit.RecordID,
		PaymentID:       audit.PaymentID,
		SellerID:        audit.SellerID,
		Amount:          audit.Amount,
		AdminCommission: audit.AdminCommission,
		SellerEarnings:  audit.SellerEarnings,
		Status:          model.LiquidationStatusCompleted,
		CreatedAt:       audit.At,
	})

	result, err := e.flush(ctx, 1)
	if err != nil {
		return err
	}
	if result.FailCount > 0 {
		for key, failed := range result.FailedRecords {
			log.Error().Err(failed).Str("record_id", key).Msg("failed to sync liquidation record")
		}
	}
	return nil
}

// 錯誤:
//
//	只有當錯誤是gorm的事務錯誤才回傳
//	其他錯誤不會中斷同步流程
func (e *LedgerSyncService) flush(ctx context.Context, flushCount int) (*db.BatchUpsertResult, error) {
	if len(e.recordList) < flushCount {
		return &db.BatchUpsertResult{FailedRecords: make(map[string]error)}, nil
	}

	result, err := e.settlementRepo.UpsertRecordsBatch(ctx, e.recordList[:flushCount])
	if err != nil {
		if checkGormTransactionError(err) {
			return nil, err
		}
		log.Error().Err(err).Msg("failed to flush liquidation records")
		result = &db.BatchUpsertResult{FailedRecords: make(map[string]error)}
	}

	e.recordList = e.recordList[flushCount:]

	return result, nil
}

func checkGormTransactionError(err error) bool {
	if errors.Is(err, gorm.ErrInvalidTransaction) || errors.Is(err, gorm.ErrNotImplemented) || errors.Is(err, gorm.ErrMissingWhereClause) {
		return true
	}
	return false
}

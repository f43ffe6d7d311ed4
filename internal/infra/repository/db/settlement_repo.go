package db

import (
	"context"

	"github.com/RoyceAzure/lab/furnimart/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementRepo 結算台帳 清算紀錄的查詢端鏡像
type SettlementRepo struct {
	db *DbDao
}

func NewSettlementRepo(db *DbDao) *SettlementRepo {
	return &SettlementRepo{db: db}
}

// BatchUpsertResult 批次寫入結果
type BatchUpsertResult struct {
	SuccessRecords []string         // 成功寫入的清算紀錄ID
	FailedRecords  map[string]error // 失敗的清算紀錄ID及其錯誤原因
	TotalCount     int              // 總處理數量
	SuccessCount   int              // 成功數量
	FailCount      int              // 失敗數量
}

// 批量寫入清算紀錄
// payment_id有唯一索引 重複寫入直接略過 同步重放不會產生第二筆
func (s *SettlementRepo) UpsertRecordsBatch(ctx context.Context, records []*model.LiquidationRecord) (*BatchUpsertResult, error) {
	result := &BatchUpsertResult{
		SuccessRecords: make([]string, 0, len(records)),
		FailedRecords:  make(map[string]error),
		TotalCount:     len(records),
	}
	if len(records) == 0 {
		return result, nil
	}

	// 使用事務來確保資料一致性
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "payment_id"}},
				DoNothing: true,
			}).Create(record).Error; err != nil {
				// 記錄失敗的清算紀錄 繼續處理其他紀錄
				result.FailedRecords[record.RecordID] = err
				result.FailCount++
				continue
			}
			result.SuccessRecords = append(result.SuccessRecords, record.RecordID)
			result.SuccessCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// 查詢單一賣家的所有結算紀錄
func (s *SettlementRepo) GetSellerSettlements(ctx context.Context, sellerID string) ([]model.LiquidationRecord, error) {
	var records []model.LiquidationRecord
	err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// 查詢單一賣家的累計收益
func (s *SettlementRepo) GetSellerEarningsTotal(ctx context.Context, sellerID string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.WithContext(ctx).
		Model(&model.LiquidationRecord{}).
		Select("SUM(seller_earnings)").
		Where("seller_id = ?", sellerID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// 以payment id查詢結算紀錄
func (s *SettlementRepo) GetByPaymentID(ctx context.Context, paymentID string) (*model.LiquidationRecord, error) {
	var record model.LiquidationRecord
	err := s.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

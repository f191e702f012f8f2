package txrecord

import (
	"context"
	"time"

	"ocean-df/internal/walkthrough/model"
	"ocean-df/internal/walkthrough/writer"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	RETRY_COUNT = 3
)

type DbTxRecordWriter struct {
	db *gorm.DB
	tl *zap.Logger
}

func NewDbTxRecordWriter(db *gorm.DB, tl *zap.Logger) writer.BatchWriter[model.TxRecord] {
	return &DbTxRecordWriter{db: db, tl: tl}
}

// AutoMigrate 建表（唯一索引 chain_id + tx_hash）
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&model.TxRecord{})
}

func (w *DbTxRecordWriter) BWrite(ctx context.Context, records []model.TxRecord) error {
	if len(records) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	// 重试机制
	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		// 同一笔交易重复上报时只更新状态
		err = w.db.WithContext(newCtx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "chain_id"},
				{Name: "tx_hash"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"block_number": gorm.Expr("EXCLUDED.block_number"),
				"gas_used":     gorm.Expr("EXCLUDED.gas_used"),
				"success":      gorm.Expr("EXCLUDED.success"),
				"mined_at":     gorm.Expr("EXCLUDED.mined_at"),
			}),
		}).CreateInBatches(records, 500).Error

		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("❌ DB write failed, exceeded the maximum number of retries", zap.Error(err), zap.Int("records", len(records)))
		return err
	}
	return nil
}

func (w *DbTxRecordWriter) Close() error {
	return nil
}

package model

import (
	"time"

	"ocean-df/pkg/evm_client"
)

// TxRecord 演练过程中上链的每一笔交易
type TxRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	RunID       string    `gorm:"column:run_id;type:varchar(64);index" json:"run_id"`
	Step        string    `gorm:"column:step;type:varchar(32)" json:"step"`
	Label       string    `gorm:"column:label;type:varchar(64)" json:"label"`
	ChainID     uint64    `gorm:"column:chain_id;uniqueIndex:unique_tx" json:"chain_id"`
	TxHash      string    `gorm:"column:tx_hash;type:varchar(66);uniqueIndex:unique_tx" json:"tx_hash"`
	FromAddress string    `gorm:"column:from_address;type:varchar(42)" json:"from_address"`
	ToAddress   string    `gorm:"column:to_address;type:varchar(42)" json:"to_address"`
	BlockNumber uint64    `gorm:"column:block_number" json:"block_number"`
	GasUsed     uint64    `gorm:"column:gas_used" json:"gas_used"`
	Success     bool      `gorm:"column:success" json:"success"`
	MinedAt     time.Time `gorm:"column:mined_at" json:"mined_at"`
}

func (TxRecord) TableName() string {
	return "walkthrough_transactions"
}

func NewTxRecord(runID, step string, res evm_client.TxResult) TxRecord {
	return TxRecord{
		RunID:       runID,
		Step:        step,
		Label:       res.Label,
		ChainID:     res.ChainID,
		TxHash:      res.Hash.Hex(),
		FromAddress: res.From.Hex(),
		ToAddress:   res.To.Hex(),
		BlockNumber: res.BlockNumber,
		GasUsed:     res.GasUsed,
		Success:     res.Success,
		MinedAt:     res.MinedAt,
	}
}

package model

import "time"

// PublishedAsset publish_asset 步骤的产出，供 consume 子命令复用
type PublishedAsset struct {
	ChainID      uint64    `json:"chain_id"`
	Publisher    string    `json:"publisher"`
	DID          string    `json:"did"`
	NFT          string    `json:"nft"`
	Datatoken    string    `json:"datatoken"`
	ExchangeID   string    `json:"exchange_id"`
	ServiceID    string    `json:"service_id"`
	ServiceIndex int64     `json:"service_index"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClaimRecord 最近一次领取奖励
type ClaimRecord struct {
	ChainID   uint64    `json:"chain_id"`
	Wallet    string    `json:"wallet"`
	Amount    string    `json:"amount"` // OCEAN，十进制字符串
	TxHash    string    `json:"tx_hash"`
	ClaimedAt time.Time `json:"claimed_at"`
}

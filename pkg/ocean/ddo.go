package ocean

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DDOVersion        = "4.1.0"
	ServiceTypeAccess = "access"
	defaultTimeout    = 3600
)

// ComputeDID did:op: + sha256(checksum(nft) + chainId)
func ComputeDID(nft common.Address, chainID uint64) string {
	sum := sha256.Sum256([]byte(nft.Hex() + strconv.FormatUint(chainID, 10)))
	return "did:op:" + hex.EncodeToString(sum[:])
}

// DDO 数据资产描述（v4）
type DDO struct {
	Context     []string    `json:"@context"`
	ID          string      `json:"id"`
	Version     string      `json:"version"`
	ChainID     uint64      `json:"chainId"`
	NftAddress  string      `json:"nftAddress"`
	Metadata    Metadata    `json:"metadata"`
	Services    []Service   `json:"services"`
	Credentials Credentials `json:"credentials"`
}

type Metadata struct {
	Created     string `json:"created"`
	Updated     string `json:"updated"`
	Description string `json:"description"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Author      string `json:"author"`
	License     string `json:"license"`
}

type Service struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	Name             string `json:"name,omitempty"`
	Files            string `json:"files"`
	DatatokenAddress string `json:"datatokenAddress"`
	ServiceEndpoint  string `json:"serviceEndpoint"`
	Timeout          int    `json:"timeout"`
}

type Credentials struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
}

// URLFiles 交给 provider 加密的文件描述
type URLFiles struct {
	NftAddress       string    `json:"nftAddress"`
	DatatokenAddress string    `json:"datatokenAddress"`
	Files            []URLFile `json:"files"`
}

type URLFile struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Method string `json:"method"`
}

// DDOParams 构建 URL 数据集 DDO 所需信息
type DDOParams struct {
	Name            string
	Author          string
	ChainID         uint64
	NFT             common.Address
	Datatoken       common.Address
	EncryptedFiles  string
	ServiceEndpoint string
	CreatedAt       time.Time
}

// NewURLDDO 单个 access 服务的数据集 DDO
func NewURLDDO(p DDOParams) *DDO {
	created := p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
	return &DDO{
		Context:    []string{"https://w3id.org/did/v1"},
		ID:         ComputeDID(p.NFT, p.ChainID),
		Version:    DDOVersion,
		ChainID:    p.ChainID,
		NftAddress: p.NFT.Hex(),
		Metadata: Metadata{
			Created:     created,
			Updated:     created,
			Description: p.Name,
			Name:        p.Name,
			Type:        "dataset",
			Author:      p.Author,
			License:     "CC0: PublicDomain",
		},
		Services: []Service{{
			ID:               "0",
			Type:             ServiceTypeAccess,
			Name:             "Download service",
			Files:            p.EncryptedFiles,
			DatatokenAddress: p.Datatoken.Hex(),
			ServiceEndpoint:  p.ServiceEndpoint,
			Timeout:          defaultTimeout,
		}},
		Credentials: Credentials{Allow: []string{}, Deny: []string{}},
	}
}

package ocean

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const (
	nftTokenURI       = "https://oceanprotocol.com/nft/"
	datatokenName     = "Datatoken 1"
	datatokenSymbol   = "DT1"
	templateIndexBase = 1
)

// Asset 已发布数据资产的描述
type Asset struct {
	DID          string
	NFT          common.Address
	Datatoken    common.Address
	ServiceID    string
	ServiceIndex int64
	DDO          *DDO
}

// Assets 发布与消费数据资产
type Assets struct {
	o   *Ocean
	now func() time.Time
}

func (a *Assets) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// CreateURLAsset 发布一个指向 url 的数据集：创建 data NFT + datatoken，加密 DDO 并写入 NFT
func (a *Assets) CreateURLAsset(ctx context.Context, name, url string) (*DataNFT, *Datatoken, *Asset, error) {
	o := a.o
	publisher := o.tx.From()
	chainID := o.tx.ChainID().Uint64()

	nftAddr, dtAddr, err := o.NFTFactory.CreateNftWithErc20(ctx,
		NftCreateData{
			Name:          name,
			Symbol:        name,
			TemplateIndex: big.NewInt(templateIndexBase),
			TokenURI:      nftTokenURI,
			Transferable:  true,
			Owner:         publisher,
		},
		ErcCreateData{
			TemplateIndex: big.NewInt(templateIndexBase),
			Strings:       []string{datatokenName, datatokenSymbol},
			Addresses:     []common.Address{publisher, publisher, {}, {}},
			Uints:         []*big.Int{new(big.Int).Set(math.MaxBig256), new(big.Int)},
			Bytess:        [][]byte{},
		})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create data NFT: %w", err)
	}

	files, err := sonic.Marshal(URLFiles{
		NftAddress:       nftAddr.Hex(),
		DatatokenAddress: dtAddr.Hex(),
		Files:            []URLFile{{Type: "url", URL: url, Method: "GET"}},
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode files: %w", err)
	}
	encryptedFiles, err := o.provider.Encrypt(ctx, chainID, files)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encrypt files: %w", err)
	}

	author := publisher.Hex()
	if len(author) > 7 {
		author = author[:7]
	}
	ddo := NewURLDDO(DDOParams{
		Name:            name,
		Author:          author,
		ChainID:         chainID,
		NFT:             nftAddr,
		Datatoken:       dtAddr,
		EncryptedFiles:  hexutil.Encode(encryptedFiles),
		ServiceEndpoint: o.provider.URL(),
		CreatedAt:       a.clock(),
	})

	ddoBytes, err := sonic.Marshal(ddo)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode ddo: %w", err)
	}
	encryptedDDO, err := o.provider.Encrypt(ctx, chainID, ddoBytes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encrypt ddo: %w", err)
	}
	decryptor, err := o.provider.Root(ctx, chainID)
	if err != nil {
		return nil, nil, nil, err
	}

	dataNFT := NewDataNFT(nftAddr, o.tx)
	if _, err := dataNFT.SetMetaData(ctx, MetadataArgs{
		State:            MetadataStateActive,
		DecryptorURL:     o.provider.URL(),
		DecryptorAddress: decryptor.Hex(),
		Flags:            []byte{MetadataFlagEncrypted},
		Data:             encryptedDDO,
		Hash:             sha256.Sum256(ddoBytes),
	}); err != nil {
		return nil, nil, nil, fmt.Errorf("publish ddo: %w", err)
	}

	asset := &Asset{
		DID:          ddo.ID,
		NFT:          nftAddr,
		Datatoken:    dtAddr,
		ServiceID:    ddo.Services[0].ID,
		ServiceIndex: 0,
		DDO:          ddo,
	}
	o.tl.Info("Published asset",
		zap.String("did", asset.DID),
		zap.String("data_nft", nftAddr.Hex()),
		zap.String("datatoken", dtAddr.Hex()))
	return dataNFT, NewDatatoken(dtAddr, o.tx), asset, nil
}

// PayForAccessService 向 provider 获取手续费报价，并支付 1 个 datatoken 下单
func (a *Assets) PayForAccessService(ctx context.Context, asset *Asset) (*types.Receipt, error) {
	o := a.o
	consumer := o.tx.From()

	quote, err := o.provider.Initialize(ctx, asset.DID, asset.ServiceID, consumer)
	if err != nil {
		return nil, fmt.Errorf("initialize %s: %w", asset.DID, err)
	}

	pf := quote.ProviderFee
	fees := ProviderFees{
		ProviderFeeAddress: common.HexToAddress(pf.ProviderFeeAddress),
		ProviderFeeToken:   common.HexToAddress(pf.ProviderFeeToken),
		ProviderFeeAmount:  pf.ProviderFeeAmount.Value(),
		V:                  pf.V,
		R:                  common.HexToHash(pf.R),
		S:                  common.HexToHash(pf.S),
		ValidUntil:         pf.ValidUntil.Value(),
		ProviderData:       common.FromHex(pf.ProviderData),
	}

	// provider 收费时，datatoken 合约代为转账
	if fees.ProviderFeeAmount.Sign() > 0 && fees.ProviderFeeToken != (common.Address{}) {
		feeToken := NewToken("ProviderFeeToken", fees.ProviderFeeToken, o.tx)
		if _, err := feeToken.Approve(ctx, asset.Datatoken, fees.ProviderFeeAmount); err != nil {
			return nil, fmt.Errorf("approve provider fee: %w", err)
		}
	}

	return o.Datatoken(asset.Datatoken).StartOrder(ctx, consumer, asset.ServiceIndex, fees, ConsumeMarketFees{})
}

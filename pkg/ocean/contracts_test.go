package ocean

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVeAllocateBound(t *testing.T) {
	f := newFakeChain(t)
	nft := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	f.view(veAllocAddr, "getTotalAllocation", func(args []any) []any { return []any{big.NewInt(6000)} })
	f.view(veAllocAddr, "getveAllocation", func(args []any) []any {
		assert.Equal(t, nft, args[1])
		return []any{big.NewInt(1000)}
	})
	alloc := NewVeAllocate(veAllocAddr, f.tx)
	ctx := context.Background()

	_, err := alloc.SetAllocation(ctx, MaxAllocation+1, nft, big.NewInt(8996))
	assert.ErrorIs(t, err, ErrAllocationExceeded)

	_, err = alloc.SetAllocation(ctx, 5001, nft, big.NewInt(8996))
	assert.ErrorIs(t, err, ErrAllocationExceeded)
	assert.Empty(t, f.backend.Sent)

	_, err = alloc.SetAllocation(ctx, 5000, nft, big.NewInt(8996))
	require.NoError(t, err)

	calls := f.sent(veAllocAddr)
	require.Len(t, calls, 1)
	assert.Equal(t, "setAllocation", calls[0].name)
	assert.Equal(t, big.NewInt(5000), calls[0].args[0])
	assert.Equal(t, nft, calls[0].args[1])
	assert.Equal(t, big.NewInt(8996), calls[0].args[2])
}

func TestVeOceanLocked(t *testing.T) {
	f := newFakeChain(t)
	f.view(veOceanAddr, "locked", func(args []any) []any {
		return []any{big.NewInt(10), big.NewInt(2_000_000)}
	})
	ve := NewVeOcean(veOceanAddr, f.tx)

	lock, err := ve.Locked(context.Background(), f.tx.From())
	require.NoError(t, err)
	assert.Equal(t, int64(10), lock.Amount.Int64())
	assert.Equal(t, uint64(2_000_000), lock.End)
	assert.True(t, lock.Active(1_999_999))
	assert.False(t, lock.Active(2_000_000))
	assert.False(t, LockedBalance{Amount: new(big.Int), End: 5}.Active(1))
}

func TestVeOceanCreateLock(t *testing.T) {
	f := newFakeChain(t)
	ve := NewVeOcean(veOceanAddr, f.tx)

	_, err := ve.CreateLock(context.Background(), big.NewInt(7), 1_800_000_000)
	require.NoError(t, err)

	calls := f.sent(veOceanAddr)
	require.Len(t, calls, 1)
	assert.Equal(t, "create_lock", calls[0].name)
	assert.Equal(t, big.NewInt(7), calls[0].args[0])
	assert.Equal(t, big.NewInt(1_800_000_000), calls[0].args[1])
}

func TestGetFeesInfo(t *testing.T) {
	f := newFakeChain(t)
	id := HexToExchangeID("0x0102")
	collector := common.HexToAddress("0x00000000000000000000000000000000000000c1")
	f.view(freAddr, "getFeesInfo", func(args []any) []any {
		assert.Equal(t, [32]byte(id), args[0])
		return []any{big.NewInt(1), collector, big.NewInt(2), big.NewInt(3), big.NewInt(4)}
	})
	fre := NewFixedRateExchange(freAddr, f.tx)

	info, err := fre.GetFeesInfo(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.MarketFee.Int64())
	assert.Equal(t, collector, info.MarketFeeCollector)
	assert.Equal(t, int64(4), info.OceanFeeAvailable.Int64())
}

func TestBuyDT(t *testing.T) {
	f := newFakeChain(t)
	fre := NewFixedRateExchange(freAddr, f.tx)
	id := HexToExchangeID("0xabcd")

	_, err := fre.BuyDT(context.Background(), id, big.NewInt(3), big.NewInt(300), common.Address{9}, big.NewInt(0))
	require.NoError(t, err)

	calls := f.sent(freAddr)
	require.Len(t, calls, 1)
	assert.Equal(t, "buyDT", calls[0].name)
	assert.Equal(t, [32]byte(id), calls[0].args[0])
	assert.Equal(t, big.NewInt(300), calls[0].args[2])
	assert.Equal(t, common.Address{9}, calls[0].args[3])
}

func TestCreateFixedRate(t *testing.T) {
	f := newFakeChain(t)
	dtAddr := common.HexToAddress("0x00000000000000000000000000000000000000d1")
	f.register(dtAddr, parsedERC20, parsedDatatoken)
	id := HexToExchangeID("0xfeed")
	f.view(dtAddr, "createFixedRate", func(args []any) []any { return []any{[32]byte(id)} })

	emit := true
	f.backend.ReceiptHook = func(tx *types.Transaction, r *types.Receipt) {
		if emit && methodIs(tx, parsedDatatoken, "createFixedRate") {
			r.Logs = []*types.Log{{Address: dtAddr, Data: append(make([]byte, 0, 64), id[:]...)}}
		}
	}
	dt := NewDatatoken(dtAddr, f.tx)
	args := FixedRateArgs{
		BaseToken:         oceanAddr,
		Owner:             f.tx.From(),
		BaseTokenDecimals: 18,
		DatatokenDecimals: 18,
		FixedRate:         big.NewInt(100),
		WithMint:          true,
	}

	got, err := dt.CreateFixedRate(context.Background(), freAddr, args)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	calls := f.sent(dtAddr)
	require.Len(t, calls, 1)
	assert.Equal(t, freAddr, calls[0].args[0])
	assert.Equal(t, []common.Address{oceanAddr, f.tx.From(), {}, {}}, calls[0].args[1])
	uints := calls[0].args[2].([]*big.Int)
	require.Len(t, uints, 5)
	assert.Equal(t, int64(100), uints[2].Int64())
	assert.Equal(t, int64(1), uints[4].Int64())

	emit = false
	_, err = dt.CreateFixedRate(context.Background(), freAddr, args)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCreateNftWithErc20(t *testing.T) {
	f := newFakeChain(t)
	nftAddr := common.HexToAddress("0x00000000000000000000000000000000000000e1")
	dtAddr := common.HexToAddress("0x00000000000000000000000000000000000000e2")
	f.view(factoryAddr, "createNftWithErc20", func(args []any) []any { return []any{nftAddr, dtAddr} })
	f.backend.ReceiptHook = func(tx *types.Transaction, r *types.Receipt) {
		if *tx.To() == factoryAddr {
			r.Logs = []*types.Log{{Address: nftAddr}, {Address: dtAddr}, {Address: factoryAddr}}
		}
	}

	factory := NewNFTFactory(factoryAddr, f.tx)
	nft, dt, err := factory.CreateNftWithErc20(context.Background(),
		NftCreateData{Name: "n", Symbol: "n", TemplateIndex: big.NewInt(1), Owner: f.tx.From()},
		ErcCreateData{
			TemplateIndex: big.NewInt(1),
			Strings:       []string{"DT", "DT"},
			Addresses:     []common.Address{f.tx.From(), f.tx.From(), {}, {}},
			Uints:         []*big.Int{big.NewInt(1), big.NewInt(0)},
			Bytess:        [][]byte{},
		})
	require.NoError(t, err)
	assert.Equal(t, nftAddr, nft)
	assert.Equal(t, dtAddr, dt)
}

func TestClaim(t *testing.T) {
	f := newFakeChain(t)
	dist := NewFeeDistributor(distAddr, f.tx)

	_, err := dist.Claim(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.sent(distAddr), 1)
}

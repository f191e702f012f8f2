package walkthrough

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ocean-df/internal/walkthrough/cache"
	"ocean-df/internal/walkthrough/config"
	"ocean-df/pkg/evm_client"
	"ocean-df/pkg/evm_client/evmtest"
	"ocean-df/pkg/ocean"
	"ocean-df/pkg/provider"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testChainID = 8996
	aliceKey    = "0x4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d"
	deployerKey = "0x6cbed15c793ce57650b9877cf6fa156fbef513c4e6134f022a85b1ffdd59b2a1"
)

var (
	oceanAddr   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	veOceanAddr = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	veAllocAddr = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	distAddr    = common.HexToAddress("0x00000000000000000000000000000000000000a4")
	freAddr     = common.HexToAddress("0x00000000000000000000000000000000000000a5")
	factoryAddr = common.HexToAddress("0x00000000000000000000000000000000000000a6")
	nftAddr     = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	dtAddr      = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	exchangeID  = ocean.HexToExchangeID("0x0000000000000000000000000000000000000000000000000000000000000e11")

	testAddresses = ocean.Addresses{
		ChainID:          testChainID,
		Ocean:            oceanAddr,
		VeOcean:          veOceanAddr,
		VeAllocate:       veAllocAddr,
		VeFeeDistributor: distAddr,
		FixedPrice:       freAddr,
		ERC721Factory:    factoryAddr,
	}
)

func lookup(t *testing.T, kind string) abi.ABI {
	t.Helper()
	parsed, ok := ocean.LookupABI(kind)
	require.True(t, ok, kind)
	return parsed
}

// barge 内存版 Ocean 合约：应答 eth_call，并按交易内容更新余额
type barge struct {
	t       *testing.T
	backend *evmtest.Backend
	abis    map[common.Address][]abi.ABI

	mu         sync.Mutex
	ocean      map[common.Address]*big.Int
	dt         map[common.Address]*big.Int
	lockAmount *big.Int
	lockEnd    *big.Int
	reward     *big.Int
	price      *big.Int
	marketFee  *big.Int
	purchases  []purchase
	dropBuys   bool     // buyDT 成功但不转出 datatoken
	calls      []string // "合约类型.方法"
	names      map[common.Address]string
}

func newBarge(t *testing.T) *barge {
	t.Helper()
	b := &barge{
		t:          t,
		backend:    evmtest.NewBackend(testChainID),
		abis:       make(map[common.Address][]abi.ABI),
		ocean:      make(map[common.Address]*big.Int),
		dt:         make(map[common.Address]*big.Int),
		lockAmount: new(big.Int),
		lockEnd:    new(big.Int),
		reward:     ether(5),
		price:      ether(100),
		marketFee:  big.NewInt(1e15),
		names: map[common.Address]string{
			oceanAddr: "OCEAN", veOceanAddr: "veOCEAN", veAllocAddr: "veAllocate", distAddr: "veFeeDistributor",
			freAddr: "FRE", factoryAddr: "factory", nftAddr: "nft", dtAddr: "datatoken",
		},
	}
	b.abis[oceanAddr] = []abi.ABI{lookup(t, ocean.KindERC20)}
	b.abis[veOceanAddr] = []abi.ABI{lookup(t, ocean.KindVeOcean)}
	b.abis[veAllocAddr] = []abi.ABI{lookup(t, ocean.KindVeAllocate)}
	b.abis[distAddr] = []abi.ABI{lookup(t, ocean.KindFeeDistributor)}
	b.abis[freAddr] = []abi.ABI{lookup(t, ocean.KindFixedRate)}
	b.abis[factoryAddr] = []abi.ABI{lookup(t, ocean.KindNFTFactory)}
	b.abis[nftAddr] = []abi.ABI{lookup(t, ocean.KindDataNFT)}
	b.abis[dtAddr] = []abi.ABI{lookup(t, ocean.KindERC20), lookup(t, ocean.KindDatatoken)}

	b.backend.CallHandler = b.call
	b.backend.ReceiptHook = b.apply
	return b
}

// purchase 一次 buyDT 的参数
type purchase struct {
	amount  *big.Int
	swapFee *big.Int
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func balance(m map[common.Address]*big.Int, a common.Address) *big.Int {
	if v, ok := m[a]; ok {
		return v
	}
	return new(big.Int)
}

func add(m map[common.Address]*big.Int, a common.Address, v *big.Int) {
	m[a] = new(big.Int).Add(balance(m, a), v)
}

func (b *barge) decode(to common.Address, data []byte) (*abi.Method, []any, error) {
	for _, p := range b.abis[to] {
		m, err := p.MethodById(data[:4])
		if err != nil {
			continue
		}
		args, err := m.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, nil, err
		}
		return m, args, nil
	}
	return nil, nil, fmt.Errorf("no method %x on %s", data[:4], to.Hex())
}

func (b *barge) call(msg ethereum.CallMsg) ([]byte, error) {
	m, args, err := b.decode(*msg.To, msg.Data)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var out []any
	switch {
	case m.Name == "decimals":
		out = []any{uint8(18)}
	case m.Name == "balanceOf" && *msg.To == oceanAddr:
		out = []any{new(big.Int).Set(balance(b.ocean, args[0].(common.Address)))}
	case m.Name == "balanceOf" && *msg.To == dtAddr:
		out = []any{new(big.Int).Set(balance(b.dt, args[0].(common.Address)))}
	case m.Name == "balanceOf" && *msg.To == veOceanAddr:
		out = []any{new(big.Int).Set(b.lockAmount)}
	case m.Name == "locked":
		out = []any{new(big.Int).Set(b.lockAmount), new(big.Int).Set(b.lockEnd)}
	case m.Name == "getTotalAllocation", m.Name == "getveAllocation":
		out = []any{new(big.Int)}
	case m.Name == "getFeesInfo":
		out = []any{new(big.Int).Set(b.marketFee), common.HexToAddress("0x00000000000000000000000000000000000000c1"), new(big.Int), new(big.Int), new(big.Int)}
	case m.Name == "createNftWithErc20":
		out = []any{nftAddr, dtAddr}
	case m.Name == "createFixedRate":
		out = []any{[32]byte(exchangeID)}
	case m.Name == "claim":
		out = []any{new(big.Int).Set(b.reward)}
	default:
		return nil, fmt.Errorf("unexpected call %s on %s", m.Name, msg.To.Hex())
	}
	return m.Outputs.Pack(out...)
}

// apply 在回执生成时执行交易效果（持有 backend 锁）
func (b *barge) apply(tx *types.Transaction, r *types.Receipt) {
	to := *tx.To()
	if len(tx.Data()) < 4 {
		return
	}
	m, args, err := b.decode(to, tx.Data())
	if err != nil {
		r.Status = types.ReceiptStatusFailed
		return
	}
	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(testChainID)), tx)
	if err != nil {
		r.Status = types.ReceiptStatusFailed
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, b.names[to]+"."+m.Name)

	switch {
	case to == oceanAddr && m.Name == "mint":
		add(b.ocean, args[0].(common.Address), args[1].(*big.Int))
	case to == oceanAddr && m.Name == "transfer":
		add(b.ocean, from, new(big.Int).Neg(args[1].(*big.Int)))
		add(b.ocean, args[0].(common.Address), args[1].(*big.Int))
	case to == dtAddr && m.Name == "mint":
		add(b.dt, args[0].(common.Address), args[1].(*big.Int))
	case m.Name == "create_lock":
		b.lockAmount = args[0].(*big.Int)
		b.lockEnd = args[1].(*big.Int)
		add(b.ocean, from, new(big.Int).Neg(args[0].(*big.Int)))
	case m.Name == "increase_amount":
		b.lockAmount = new(big.Int).Add(b.lockAmount, args[0].(*big.Int))
		add(b.ocean, from, new(big.Int).Neg(args[0].(*big.Int)))
	case m.Name == "withdraw":
		add(b.ocean, from, b.lockAmount)
		b.lockAmount, b.lockEnd = new(big.Int), new(big.Int)
	case m.Name == "buyDT":
		amount := args[1].(*big.Int)
		b.purchases = append(b.purchases, purchase{amount: amount, swapFee: args[4].(*big.Int)})
		if b.dropBuys {
			break
		}
		cost := new(big.Int).Mul(b.price, amount)
		add(b.ocean, from, cost.Neg(cost.Div(cost, ether(1))))
		add(b.dt, from, amount)
	case m.Name == "startOrder":
		add(b.dt, from, new(big.Int).Neg(ether(1)))
	case m.Name == "claim":
		add(b.ocean, from, b.reward)
	case m.Name == "createNftWithErc20":
		r.Logs = []*types.Log{{Address: nftAddr}, {Address: dtAddr}}
	case m.Name == "createFixedRate":
		r.Logs = []*types.Log{{Address: freAddr, Topics: []common.Hash{{}, common.Hash(exchangeID)}}}
	}
}

func (b *barge) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *barge) dtOf(a common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(balance(b.dt, a))
}

func (b *barge) oceanOf(a common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(balance(b.ocean, a))
}

func newTestProvider(t *testing.T) *provider.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"providerAddress":"0x00bd138abd70e2f00903268f3db08f2d25677c9e"}`)
	})
	mux.HandleFunc("/api/services/encrypt", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = io.WriteString(w, "0x"+hex.EncodeToString(body))
	})
	mux.HandleFunc("/api/services/initialize", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"datatoken":"`+dtAddr.Hex()+`","nonce":1,"providerFee":{
			"providerFeeAddress":"0x00000000000000000000000000000000000000bb",
			"providerFeeToken":"`+oceanAddr.Hex()+`",
			"providerFeeAmount":"0","providerData":"0x7b7d","v":27,
			"r":"0x01","s":"0x02","validUntil":0}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return provider.NewClient(provider.Config{URL: srv.URL, RateLimit: 60000}, zap.NewNop())
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("TEST_PRIVATE_KEY1", aliceKey)
	t.Setenv("FACTORY_DEPLOYER_PRIVATE_KEY", deployerKey)
	return config.Config{
		Network: config.NetworkConfig{Name: "development", RPCURL: "http://localhost:8545", TxTimeout: 5},
		Wallet: config.WalletConfig{
			PrivateKeyEnv:  "TEST_PRIVATE_KEY1",
			DeployerKeyEnv: "FACTORY_DEPLOYER_PRIVATE_KEY",
			FaucetKeyEnvs:  []string{"TEST_PRIVATE_KEY1", "TEST_PRIVATE_KEY_UNSET"},
		},
		Faucet: config.FaucetConfig{MintAmount: 20000, WalletAmount: 2000, MinETH: 2, ETHAmount: 4},
		Farming: config.FarmingConfig{
			LockAmount:     10,
			LockWeeks:      config.MaxLockWeeks,
			DatasetName:    "Branin dataset",
			DatasetURL:     "https://raw.githubusercontent.com/trentmc/branin/main/branin.arff",
			DatatokenPrice: 100,
			NumConsumes:    3,
			Allocation:     config.MaxAllocation,
		},
	}
}

func newTestSession(t *testing.T, b *barge, cfg config.Config, state *cache.StateCache, tl *zap.Logger) *Session {
	t.Helper()
	return NewSession(cfg, Deps{
		Backend:  b.backend,
		RPC:      b.backend,
		Provider: newTestProvider(t),
		State:    state,
		LoadAddresses: func(string) (ocean.Addresses, error) {
			return testAddresses, nil
		},
	}, tl)
}

func aliceAddress(t *testing.T) common.Address {
	t.Helper()
	w, err := evm_client.NewWallet(aliceKey)
	require.NoError(t, err)
	return w.Address
}

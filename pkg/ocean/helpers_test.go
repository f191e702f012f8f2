package ocean

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"ocean-df/pkg/evm_client"
	"ocean-df/pkg/evm_client/evmtest"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const aliceKey = "0x4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d"

var (
	oceanAddr     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	veOceanAddr   = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	veAllocAddr   = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	distAddr      = common.HexToAddress("0x00000000000000000000000000000000000000a4")
	freAddr       = common.HexToAddress("0x00000000000000000000000000000000000000a5")
	factoryAddr   = common.HexToAddress("0x00000000000000000000000000000000000000a6")
	testAddresses = Addresses{
		ChainID:          8996,
		Ocean:            oceanAddr,
		VeOcean:          veOceanAddr,
		VeAllocate:       veAllocAddr,
		VeFeeDistributor: distAddr,
		FixedPrice:       freAddr,
		ERC721Factory:    factoryAddr,
	}
)

type viewFunc func(args []any) []any

// fakeChain 按地址与方法名应答 eth_call，并解码已发送交易
type fakeChain struct {
	t       *testing.T
	backend *evmtest.Backend
	tx      *evm_client.Transactor

	mu    sync.Mutex
	abis  map[common.Address][]abi.ABI
	views map[common.Address]map[string]viewFunc
}

func newFakeChain(t *testing.T) *fakeChain {
	t.Helper()
	b := evmtest.NewBackend(8996)
	w, err := evm_client.NewWallet(aliceKey)
	require.NoError(t, err)

	f := &fakeChain{
		t:       t,
		backend: b,
		tx:      evm_client.NewTransactor(b, w, b.ChainIDValue, zap.NewNop(), evm_client.WithPollInterval(time.Millisecond)),
		abis:    make(map[common.Address][]abi.ABI),
		views:   make(map[common.Address]map[string]viewFunc),
	}
	b.CallHandler = f.handle

	f.register(oceanAddr, parsedERC20)
	f.register(veOceanAddr, parsedVeOcean)
	f.register(veAllocAddr, parsedVeAllocate)
	f.register(distAddr, parsedFeeDistributor)
	f.register(freAddr, parsedFRE)
	f.register(factoryAddr, parsedNFTFactory)
	return f
}

func (f *fakeChain) register(addr common.Address, parsed ...abi.ABI) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abis[addr] = append(f.abis[addr], parsed...)
}

func (f *fakeChain) view(addr common.Address, method string, fn viewFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.views[addr] == nil {
		f.views[addr] = make(map[string]viewFunc)
	}
	f.views[addr][method] = fn
}

func (f *fakeChain) method(addr common.Address, data []byte) (*abi.Method, []any, error) {
	f.mu.Lock()
	parsed := f.abis[addr]
	f.mu.Unlock()

	for _, p := range parsed {
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
	return nil, nil, fmt.Errorf("no method %x on %s", data[:4], addr.Hex())
}

func (f *fakeChain) handle(msg ethereum.CallMsg) ([]byte, error) {
	m, args, err := f.method(*msg.To, msg.Data)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	fn := f.views[*msg.To][m.Name]
	f.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no view %s on %s", m.Name, msg.To.Hex())
	}
	return m.Outputs.Pack(fn(args)...)
}

// sent 解码发往 addr 的所有交易，返回方法名与参数
func (f *fakeChain) sent(addr common.Address) []call {
	var out []call
	for _, tx := range f.backend.SentTo(addr) {
		m, args, err := f.method(addr, tx.Data())
		require.NoError(f.t, err)
		out = append(out, call{name: m.Name, args: args, tx: tx})
	}
	return out
}

type call struct {
	name string
	args []any
	tx   *types.Transaction
}

func methodIs(tx *types.Transaction, parsed abi.ABI, name string) bool {
	data := tx.Data()
	return len(data) >= 4 && string(data[:4]) == string(parsed.Methods[name].ID)
}

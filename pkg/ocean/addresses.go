package ocean

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
)

var ErrNetworkNotFound = errors.New("network not found in address file")

// Addresses 某个网络上 Ocean 合约的部署地址（barge 的 address.json）
type Addresses struct {
	ChainID          uint64         `json:"chainId"`
	Ocean            common.Address `json:"Ocean"`
	VeOcean          common.Address `json:"veOCEAN"`
	VeAllocate       common.Address `json:"veAllocate"`
	VeFeeDistributor common.Address `json:"veFeeDistributor"`
	FixedPrice       common.Address `json:"FixedPrice"`
	ERC721Factory    common.Address `json:"ERC721Factory"`
}

type rawAddresses struct {
	ChainID          uint64 `json:"chainId"`
	Ocean            string `json:"Ocean"`
	VeOcean          string `json:"veOCEAN"`
	VeAllocate       string `json:"veAllocate"`
	VeFeeDistributor string `json:"veFeeDistributor"`
	FixedPrice       string `json:"FixedPrice"`
	ERC721Factory    string `json:"ERC721Factory"`
}

// LoadAddresses 读取地址文件并返回 network 对应的合约地址
func LoadAddresses(path, network string) (Addresses, error) {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return Addresses{}, fmt.Errorf("read address file: %w", err)
	}
	return ParseAddresses(data, network)
}

func ParseAddresses(data []byte, network string) (Addresses, error) {
	var all map[string]rawAddresses
	if err := sonic.Unmarshal(data, &all); err != nil {
		return Addresses{}, fmt.Errorf("decode address file: %w", err)
	}
	raw, ok := all[network]
	if !ok {
		return Addresses{}, fmt.Errorf("%q: %w", network, ErrNetworkNotFound)
	}

	out := Addresses{ChainID: raw.ChainID}
	fields := []struct {
		name string
		hex  string
		dst  *common.Address
	}{
		{"Ocean", raw.Ocean, &out.Ocean},
		{"veOCEAN", raw.VeOcean, &out.VeOcean},
		{"veAllocate", raw.VeAllocate, &out.VeAllocate},
		{"veFeeDistributor", raw.VeFeeDistributor, &out.VeFeeDistributor},
		{"FixedPrice", raw.FixedPrice, &out.FixedPrice},
		{"ERC721Factory", raw.ERC721Factory, &out.ERC721Factory},
	}
	for _, f := range fields {
		if !common.IsHexAddress(f.hex) {
			return Addresses{}, fmt.Errorf("network %q: missing or invalid %s address %q", network, f.name, f.hex)
		}
		*f.dst = common.HexToAddress(f.hex)
	}
	return out, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

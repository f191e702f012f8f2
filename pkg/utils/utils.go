package utils

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// EtherDecimals OCEAN、datatoken 与 ETH 的精度
const EtherDecimals = 18

// ToWei 将带精度金额转换为最小单位，超出精度的部分截断
func ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(EtherDecimals).Truncate(0).BigInt()
}

// ToWeiFloat 与 ToWei 相同，入参为 float64（配置文件中的金额）
func ToWeiFloat(amount float64) *big.Int {
	return ToWei(decimal.NewFromFloat(amount))
}

// FromWei 将最小单位转换为带精度金额
func FromWei(value *big.Int) decimal.Decimal {
	return AdjustDecimals(value, EtherDecimals)
}

// AdjustDecimals 调整精度显示
func AdjustDecimals(value *big.Int, decimals uint8) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -int32(decimals))
}

// FormatUnits 格式化单位转换
func FormatUnits(amount *big.Int, decimals uint8) string {
	return AdjustDecimals(amount, decimals).StringFixed(int32(decimals))
}

// ChecksumAddress 将 EVM 地址转换为 EIP-55 Checksum 格式
func ChecksumAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	addr = strings.TrimPrefix(strings.ToLower(addr), "0x")
	return common.HexToAddress("0x" + addr).Hex()
}

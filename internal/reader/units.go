package reader

import (
	"fmt"
	"math/big"
	"strings"
)

// weiPerEther 10^18，最小单位与展示单位的换算基数
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FormatUnits 最小单位整数转展示单位十进制字符串。
// 定点运算，不经过浮点，末尾零被裁剪。
func FormatUnits(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}

	quo, rem := new(big.Int).QuoRem(new(big.Int).Abs(wei), weiPerEther, new(big.Int))

	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}

	if rem.Sign() == 0 {
		return sign + quo.String()
	}

	frac := strings.TrimRight(fmt.Sprintf("%018s", rem.String()), "0")
	return sign + quo.String() + "." + frac
}

// FormatUnitsFixed 展示单位字符串，固定小数位（用于统计汇总）
func FormatUnitsFixed(wei *big.Int, places int) string {
	if wei == nil {
		wei = big.NewInt(0)
	}
	if places <= 0 {
		return new(big.Int).Quo(wei, weiPerEther).String()
	}

	quo, rem := new(big.Int).QuoRem(new(big.Int).Abs(wei), weiPerEther, new(big.Int))

	frac := fmt.Sprintf("%018s", rem.String())
	if places < 18 {
		frac = frac[:places]
	}

	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}

	return sign + quo.String() + "." + frac
}

// ParseUnits 展示单位十进制字符串转最小单位整数。
// 定点运算，超过18位小数视为无效输入。
func ParseUnits(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(value, "-") {
		negative = true
		value = value[1:]
	}

	parts := strings.SplitN(value, ".", 2)
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 18 {
		return nil, fmt.Errorf("amount %q has more than 18 decimal places", value)
	}

	// 小数部分右补零到18位
	frac = frac + strings.Repeat("0", 18-len(frac))

	wholeInt, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}

	fracInt := big.NewInt(0)
	if frac != strings.Repeat("0", 18) {
		fracInt, ok = new(big.Int).SetString(frac, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q", value)
		}
	}

	wei := new(big.Int).Mul(wholeInt, weiPerEther)
	wei.Add(wei, fracInt)
	if negative {
		wei.Neg(wei)
	}

	return wei, nil
}

// WholeTokens 余额向下取整为整数代币数（1代币=1票）
func WholeTokens(wei *big.Int) int64 {
	if wei == nil || wei.Sign() <= 0 {
		return 0
	}
	return new(big.Int).Quo(wei, weiPerEther).Int64()
}

// TokensToWei 整数代币数转最小单位
func TokensToWei(tokens int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(tokens), weiPerEther)
}

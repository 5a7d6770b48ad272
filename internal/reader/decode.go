package reader

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// 原始账本元组的防御性解码。单条记录格式异常时
// 枚举读取跳过该条并继续，列表视图宁可部分结果也不整体失败。

// fieldString 读取字符串字段
func fieldString(out []interface{}, index int) (string, error) {
	if index >= len(out) {
		return "", fmt.Errorf("missing field %d", index)
	}
	v, ok := out[index].(string)
	if !ok {
		return "", fmt.Errorf("field %d is not a string", index)
	}
	return v, nil
}

// fieldAddress 读取地址字段
func fieldAddress(out []interface{}, index int) (common.Address, error) {
	if index >= len(out) {
		return common.Address{}, fmt.Errorf("missing field %d", index)
	}
	v, ok := out[index].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("field %d is not an address", index)
	}
	return v, nil
}

// fieldBig 读取大整数字段
func fieldBig(out []interface{}, index int) (*big.Int, error) {
	if index >= len(out) {
		return nil, fmt.Errorf("missing field %d", index)
	}
	v, ok := out[index].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("field %d is not a uint256", index)
	}
	return v, nil
}

// fieldUint8 读取uint8字段
func fieldUint8(out []interface{}, index int) (uint8, error) {
	if index >= len(out) {
		return 0, fmt.Errorf("missing field %d", index)
	}
	v, ok := out[index].(uint8)
	if !ok {
		return 0, fmt.Errorf("field %d is not a uint8", index)
	}
	return v, nil
}

// fieldUint64 读取uint64字段
func fieldUint64(out []interface{}, index int) (uint64, error) {
	if index >= len(out) {
		return 0, fmt.Errorf("missing field %d", index)
	}
	v, ok := out[index].(uint64)
	if !ok {
		return 0, fmt.Errorf("field %d is not a uint64", index)
	}
	return v, nil
}

// fieldBool 读取bool字段
func fieldBool(out []interface{}, index int) (bool, error) {
	if index >= len(out) {
		return false, fmt.Errorf("missing field %d", index)
	}
	v, ok := out[index].(bool)
	if !ok {
		return false, fmt.Errorf("field %d is not a bool", index)
	}
	return v, nil
}

// isZeroAddress 全零地址哨兵，表示"未注册/不存在"
func isZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}

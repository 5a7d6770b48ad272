package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/natar10/uva-ong-block/internal/logger"
)

// Contract 合约工具类
type Contract struct {
	address common.Address // 合约地址
	abi     abi.ABI        // 合约ABI
	name    string         // 合约名称
}

// NewContract 创建合约实例
func NewContract(name, address, abiJSON string) (*Contract, error) {
	parsedABI, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI for contract %s: %w", name, err)
	}

	return &Contract{
		address: common.HexToAddress(address),
		abi:     parsedABI,
		name:    name,
	}, nil
}

// GetAddress 获取合约地址
func (c *Contract) GetAddress() common.Address {
	return c.address
}

// GetABI 获取合约ABI
func (c *Contract) GetABI() abi.ABI {
	return c.abi
}

// GetName 获取合约名称
func (c *Contract) GetName() string {
	return c.name
}

// ParseEvent 解析事件日志
func (c *Contract) ParseEvent(log types.Log) (Event, bool) {
	if len(log.Topics) == 0 {
		return Event{}, false
	}

	eventSignature := log.Topics[0].Hex()

	// 遍历ABI中的事件
	for eventName, event := range c.abi.Events {
		if event.ID.Hex() == eventSignature {
			return c.parseEvent(eventName, log, event), true
		}
	}

	return Event{}, false
}

// EventsFromReceipt 从回执中解析本合约的全部事件
func (c *Contract) EventsFromReceipt(receipt *types.Receipt) []Event {
	var events []Event
	for _, log := range receipt.Logs {
		if log == nil || log.Address != c.address {
			continue
		}
		if event, ok := c.ParseEvent(*log); ok {
			events = append(events, event)
		}
	}
	return events
}

// parseEvent 解析事件参数
func (c *Contract) parseEvent(eventName string, log types.Log, event abi.Event) Event {
	result := Event{
		Name:        eventName,
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
		LogIndex:    log.Index,
		Args:        make(map[string]interface{}),
	}

	// 解析索引参数
	topicIndex := 1
	for _, input := range event.Inputs {
		if !input.Indexed {
			continue
		}
		if topicIndex >= len(log.Topics) {
			break
		}
		value, err := c.parseTopicValue(log.Topics[topicIndex], input.Type)
		if err != nil {
			logger.Warn("Failed to parse indexed parameter %s of event %s: %v", input.Name, eventName, err)
		} else {
			result.Args[input.Name] = value
		}
		topicIndex++
	}

	// 解析非索引参数
	nonIndexed := make(abi.Arguments, 0, len(event.Inputs))
	for _, input := range event.Inputs {
		if !input.Indexed {
			nonIndexed = append(nonIndexed, input)
		}
	}

	if len(nonIndexed) > 0 && len(log.Data) > 0 {
		values, err := nonIndexed.Unpack(log.Data)
		if err != nil {
			logger.Warn("Failed to unpack non-indexed parameters of event %s: %v", eventName, err)
		} else {
			for i, input := range nonIndexed {
				if i < len(values) {
					result.Args[input.Name] = values[i]
				}
			}
		}
	}

	return result
}

// parseTopicValue 解析主题值
func (c *Contract) parseTopicValue(topic common.Hash, t abi.Type) (interface{}, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return new(big.Int).SetBytes(topic.Bytes()), nil
	case abi.AddressTy:
		return common.BytesToAddress(topic.Bytes()), nil
	case abi.BoolTy:
		return new(big.Int).SetBytes(topic.Bytes()).Cmp(big.NewInt(0)) > 0, nil
	case abi.BytesTy, abi.FixedBytesTy:
		return topic.Bytes(), nil
	default:
		// 索引的 string/动态类型只保留哈希
		return topic.Hex(), nil
	}
}

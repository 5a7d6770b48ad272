package errs

import (
	"context"
	"errors"
	"strings"
)

// 合约守卫条件的回滚原因与前置检查类别的映射。
// 原因字符串必须与合约 require 消息逐字一致。
var revertGuards = map[string]PreconditionKind{
	"donor already registered":   PreconditionDuplicateId,
	"donor not registered":       PreconditionNotFound,
	"project already exists":     PreconditionDuplicateId,
	"project does not exist":     PreconditionNotFound,
	"project not active":         PreconditionState,
	"project not proposed":       PreconditionState,
	"project cancelled":          PreconditionState,
	"only responsible":           PreconditionRole,
	"only owner":                 PreconditionRole,
	"purchase already exists":    PreconditionDuplicateId,
	"purchase does not exist":    PreconditionNotFound,
	"purchase already validated": PreconditionDuplicateId,
	"provider not registered":    PreconditionNotFound,
	"material does not exist":    PreconditionNotFound,
	"insufficient funds":         PreconditionBalance,
	"insufficient tokens":        PreconditionBalance,
	"insufficient allowance":     PreconditionAllowance,
	"quantity must be positive":  PreconditionInvalidInput,
}

// 自由文本匹配的兜底守卫短语，按优先级排列。
// 字符串匹配回滚消息并不可靠，仅当没有逐字命中时使用。
var guardPhrases = []struct {
	phrase string
	kind   PreconditionKind
}{
	{"only the responsible", PreconditionRole},
	{"only the owner", PreconditionRole},
	{"not authorized", PreconditionRole},
	{"not active", PreconditionState},
	{"not proposed", PreconditionState},
	{"cancelled", PreconditionState},
	{"already validated", PreconditionDuplicateId},
	{"already exists", PreconditionDuplicateId},
	{"already registered", PreconditionDuplicateId},
	{"insufficient allowance", PreconditionAllowance},
	{"allowance", PreconditionAllowance},
	{"insufficient", PreconditionBalance},
	{"does not exist", PreconditionNotFound},
	{"not registered", PreconditionNotFound},
	{"not found", PreconditionNotFound},
}

// 用户在钱包中取消的信号
var rejectionSignals = []string{
	"user rejected",
	"user denied",
	"request rejected",
	"could not decrypt key",
	"passphrase",
}

// 合约未部署或网络配置错误的信号
var unreachableSignals = []string{
	"no contract code",
	"could not decode result data",
	"abi: attempting to unmarshall",
	"abi: improperly formatted output",
	"unexpected chain id",
	"connection refused",
	"no such host",
	"missing trie node",
}

// Classify 将原始失败映射到封闭的错误分类。
// 纯函数，不做任何 I/O。已分类的错误原样返回。
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TransactionTimeout(err)
	}

	msg := strings.ToLower(err.Error())

	// 1. 显式的用户取消信号
	for _, signal := range rejectionSignals {
		if strings.Contains(msg, signal) {
			return UserRejected(err)
		}
	}

	// 2. 合约不可达
	for _, signal := range unreachableSignals {
		if strings.Contains(msg, signal) {
			return LedgerUnreachable(err)
		}
	}

	// 3. 结构化的回滚原因
	if reason, ok := extractRevertReason(msg); ok {
		if kind, exact := revertGuards[reason]; exact {
			return revertedGuard(kind, reason, err)
		}

		// 4. 自由文本守卫短语
		for _, guard := range guardPhrases {
			if strings.Contains(reason, guard.phrase) {
				return revertedGuard(guard.kind, reason, err)
			}
		}

		return TransactionReverted(reason, err)
	}

	if strings.Contains(msg, "execution reverted") {
		return TransactionReverted("", err)
	}

	// 5. 兜底
	return Unknown(err)
}

// revertedGuard 命中已知守卫条件的回滚
func revertedGuard(kind PreconditionKind, reason string, cause error) *Error {
	return &Error{
		Kind:         KindTransactionReverted,
		Precondition: kind,
		Message:      "the ledger rejected the transaction",
		Reason:       reason,
		Cause:        cause,
	}
}

// extractRevertReason 从错误消息中提取回滚原因字符串
func extractRevertReason(msg string) (string, bool) {
	const marker = "execution reverted"
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return "", false
	}

	reason := msg[idx+len(marker):]
	reason = strings.TrimLeft(reason, ": ")
	reason = strings.TrimSpace(reason)
	reason = strings.Trim(reason, "\"")
	if reason == "" {
		return "", false
	}

	return reason, true
}

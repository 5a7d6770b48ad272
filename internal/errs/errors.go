package errs

import (
	"errors"
	"fmt"
)

// Kind 失败类别
type Kind string

const (
	KindWalletUnavailable   Kind = "wallet_unavailable"   // 没有可用的签名钱包
	KindUserRejected        Kind = "user_rejected"        // 用户在钱包中拒绝
	KindPreconditionFailed  Kind = "precondition_failed"  // 本地前置检查失败
	KindTransactionReverted Kind = "transaction_reverted" // 链上回滚
	KindTransactionTimeout  Kind = "transaction_timeout"  // 确认等待超时
	KindLedgerUnreachable   Kind = "ledger_unreachable"   // 网络错误或合约未部署
	KindAlreadyInProgress   Kind = "already_in_progress"  // 同一目标的流程正在执行
	KindUnknown             Kind = "unknown"
)

// PreconditionKind 前置检查失败的具体原因
type PreconditionKind string

const (
	PreconditionRole         PreconditionKind = "role"
	PreconditionState        PreconditionKind = "state"
	PreconditionBalance      PreconditionKind = "balance"
	PreconditionAllowance    PreconditionKind = "allowance"
	PreconditionDuplicateId  PreconditionKind = "duplicate-id"
	PreconditionNotFound     PreconditionKind = "not-found"
	PreconditionInvalidInput PreconditionKind = "invalid-input"
)

// Error 带类别的错误
type Error struct {
	Kind         Kind
	Precondition PreconditionKind // 仅 KindPreconditionFailed 时有值
	Message      string           // 面向用户的消息
	Reason       string           // 原始回滚原因（若有）
	Cause        error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 按类别比较，支持 errors.Is(err, &Error{Kind: ...})
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	if t.Precondition != "" && t.Precondition != e.Precondition {
		return false
	}
	return true
}

// WalletUnavailable 钱包不可用
func WalletUnavailable(cause error) *Error {
	return &Error{
		Kind:    KindWalletUnavailable,
		Message: "no signing wallet is available",
		Cause:   cause,
	}
}

// UserRejected 用户拒绝
func UserRejected(cause error) *Error {
	return &Error{
		Kind:    KindUserRejected,
		Message: "the request was rejected in the wallet",
		Cause:   cause,
	}
}

// PreconditionFailed 前置检查失败
func PreconditionFailed(kind PreconditionKind, message string) *Error {
	return &Error{
		Kind:         KindPreconditionFailed,
		Precondition: kind,
		Message:      message,
	}
}

// TransactionReverted 链上回滚
func TransactionReverted(reason string, cause error) *Error {
	return &Error{
		Kind:    KindTransactionReverted,
		Message: "the ledger rejected the transaction",
		Reason:  reason,
		Cause:   cause,
	}
}

// TransactionTimeout 确认超时
func TransactionTimeout(cause error) *Error {
	return &Error{
		Kind:    KindTransactionTimeout,
		Message: "no confirmation arrived within the configured wait",
		Cause:   cause,
	}
}

// LedgerUnreachable 合约未部署或网络错误
func LedgerUnreachable(cause error) *Error {
	return &Error{
		Kind:    KindLedgerUnreachable,
		Message: "the contract is unreachable on the configured network",
		Cause:   cause,
	}
}

// AlreadyInProgress 流程冲突
func AlreadyInProgress(target string) *Error {
	return &Error{
		Kind:    KindAlreadyInProgress,
		Message: fmt.Sprintf("another operation on %s is still in progress", target),
	}
}

// Unknown 未分类错误
func Unknown(cause error) *Error {
	return &Error{
		Kind:    KindUnknown,
		Message: "operation failed",
		Cause:   cause,
	}
}

// KindOf 提取错误类别，非本包错误返回 KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// PreconditionOf 提取前置检查失败原因
func PreconditionOf(err error) PreconditionKind {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindPreconditionFailed {
		return e.Precondition
	}
	return ""
}

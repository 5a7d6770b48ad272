package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := PreconditionFailed(PreconditionRole, "not responsible")
	wrapped := fmt.Errorf("check failed: %w", original)

	classified := Classify(wrapped)
	assert.Same(t, original, classified)
}

func TestClassifyDeadline(t *testing.T) {
	err := fmt.Errorf("waiting for receipt: %w", context.DeadlineExceeded)
	assert.Equal(t, KindTransactionTimeout, Classify(err).Kind)
}

func TestClassifyUserRejected(t *testing.T) {
	for _, msg := range []string{
		"could not decrypt key with given password",
		"user rejected the request",
	} {
		classified := Classify(errors.New(msg))
		assert.Equal(t, KindUserRejected, classified.Kind, msg)
	}
}

func TestClassifyUnreachable(t *testing.T) {
	for _, msg := range []string{
		"no contract code at given address",
		"could not decode result data",
		"dial tcp 127.0.0.1:8545: connection refused",
		"unexpected chain id 5 (want 1337)",
	} {
		classified := Classify(errors.New(msg))
		assert.Equal(t, KindLedgerUnreachable, classified.Kind, msg)
	}
}

func TestClassifyExactGuard(t *testing.T) {
	err := errors.New(`execution reverted: donor already registered`)

	classified := Classify(err)
	require.Equal(t, KindTransactionReverted, classified.Kind)
	assert.Equal(t, PreconditionDuplicateId, classified.Precondition)
	assert.Equal(t, "donor already registered", classified.Reason)
}

func TestClassifyGuardPhrase(t *testing.T) {
	err := errors.New("execution reverted: sender is not the responsible party")

	classified := Classify(err)
	require.Equal(t, KindTransactionReverted, classified.Kind)
	assert.Equal(t, PreconditionRole, classified.Precondition)
}

func TestClassifyAllowanceBeforeBalance(t *testing.T) {
	// "insufficient allowance" 必须命中授权类别而不是余额类别
	classified := Classify(errors.New("execution reverted: ERC20: insufficient allowance"))
	assert.Equal(t, PreconditionAllowance, classified.Precondition)
}

func TestClassifyBareRevert(t *testing.T) {
	classified := Classify(errors.New("execution reverted"))
	assert.Equal(t, KindTransactionReverted, classified.Kind)
	assert.Empty(t, classified.Reason)
	assert.Empty(t, classified.Precondition)
}

func TestClassifyUnknown(t *testing.T) {
	classified := Classify(errors.New("something odd happened"))
	assert.Equal(t, KindUnknown, classified.Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindLedgerUnreachable, KindOf(LedgerUnreachable(errors.New("down"))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := LedgerUnreachable(cause)
	assert.True(t, errors.Is(err, cause))
}

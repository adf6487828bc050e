package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesCategory(t *testing.T) {
	err := New(ErrCodeChunkNotFound, "no such chunk", nil)
	assert.Equal(t, CategoryNotFound, err.Category)
	assert.Equal(t, ErrCodeChunkNotFound, err.Code)
	assert.False(t, err.Retryable)
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeFileRead, nil))
}

func TestErrorIsMatchesByCode(t *testing.T) {
	a := New(ErrCodeEmptyQuery, "empty", nil)
	b := New(ErrCodeEmptyQuery, "different message", nil)
	assert.True(t, stderrors.Is(a, b))

	c := New(ErrCodeBadPath, "bad path", nil)
	assert.False(t, stderrors.Is(a, c))
}

func TestUnwrapChain(t *testing.T) {
	cause := stderrors.New("disk full")
	wrapped := Wrap(ErrCodeFileRead, cause)
	require.NotNil(t, wrapped)
	assert.Equal(t, cause, stderrors.Unwrap(wrapped))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCodeBadPath, "bad path", nil).WithDetail("path", "/tmp/x")
	assert.Equal(t, "/tmp/x", err.Details["path"])
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, ExitCode(CategoryNotFound))
	assert.Equal(t, 2, ExitCode(CategoryBadInput))
	assert.Equal(t, 1, ExitCode(CategoryInternal))
}

func TestCodeAndCategoryOfNonAgentError(t *testing.T) {
	plain := stderrors.New("plain")
	assert.Equal(t, "", Code(plain))
	assert.Equal(t, Category(""), CategoryOf(plain))
}

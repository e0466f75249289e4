package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Fetchf("manifest returned status %d", 404)

	assert.True(t, Is(err, ErrFetch))
	assert.False(t, Is(err, ErrDownload))
	assert.Equal(t, "manifest returned status 404", err.Error())
}

func TestError_WrappedThroughFmt(t *testing.T) {
	inner := Downloadf("status 503")
	err := fmt.Errorf("page 001.webp: %w", inner)

	assert.True(t, Is(err, ErrDownload))

	var coded *Error
	assert.True(t, As(err, &coded))
	assert.Equal(t, CodeDownload, coded.Code)
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := New("connection reset")
	err := Wrap(cause, CodeFetch, "fetch gallery page")

	assert.Equal(t, "fetch gallery page: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestJoin_ReportsEveryFailure(t *testing.T) {
	err := Join(Downloadf("001.webp: status 404"), Downloadf("002.webp: status 500"))

	assert.True(t, Is(err, ErrDownload))
	assert.Contains(t, err.Error(), "001.webp")
	assert.Contains(t, err.Error(), "002.webp")
}

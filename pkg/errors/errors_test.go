package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_StatusFromCode(t *testing.T) {
	cases := []struct {
		code   int
		status int
	}{
		{ErrCodeInvalidAmount, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeBookNotFound, http.StatusNotFound},
		{ErrCodeVersionConflict, http.StatusConflict},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, New(c.code, "x").Status, "错误码%d对应的HTTP状态不正确", c.code)
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := New(ErrCodeBookNotFound, "图书不存在")
	wrapped := fmt.Errorf("rent: %w", sentinel.WithCause(errors.New("record not found")))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, ErrUserNotFound))
	assert.True(t, HasCode(wrapped, ErrCodeBookNotFound))
}

func TestGetAppError_WrapsPlainError(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))

	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.EqualError(t, appErr.Unwrap(), "boom")
}

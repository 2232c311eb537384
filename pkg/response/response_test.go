package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.GET("/x", handler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestError_UsesStatusOfAppError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在"), http.StatusNotFound, apperrors.ErrCodeBookNotFound},
		{apperrors.New(apperrors.ErrCodeBookNotAvailable, "无副本"), http.StatusConflict, apperrors.ErrCodeBookNotAvailable},
		{apperrors.New(apperrors.ErrCodeInvalidAmount, "数量"), http.StatusBadRequest, apperrors.ErrCodeInvalidAmount},
		{apperrors.ErrForbidden, http.StatusForbidden, apperrors.ErrCodeForbidden},
		{errors.New("connection refused"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}

	for _, c := range cases {
		w, body := serve(t, func(ctx *gin.Context) { Error(ctx, c.err) })
		assert.Equal(t, c.status, w.Code)
		assert.Equal(t, c.code, body.Code)
	}
}

func TestError_HidesInternalCause(t *testing.T) {
	w, body := serve(t, func(ctx *gin.Context) {
		Error(ctx, apperrors.Wrap(errors.New("dial tcp 10.0.0.1:3306"), "查询失败"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "查询失败", body.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestSuccessAndCreated(t *testing.T) {
	w, body := serve(t, func(ctx *gin.Context) { Success(ctx, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Code)

	w, _ = serve(t, func(ctx *gin.Context) { Created(ctx, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusCreated, w.Code)
}

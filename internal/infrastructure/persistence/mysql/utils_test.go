package mysql

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestWrapDBError(t *testing.T) {
	t.Run("死锁与锁等待超时转为并发修改", func(t *testing.T) {
		for _, number := range []uint16{1213, 1205} {
			err := wrapDBError(&mysqldriver.MySQLError{Number: number, Message: "lock"}, "更新库存失败")
			assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
		}
		err := wrapDBError(errors.New("database is locked (5) (SQLITE_BUSY)"), "更新库存失败")
		assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
	})

	t.Run("其它错误为数据库错误,原因保留在错误链上", func(t *testing.T) {
		cause := errors.New("dial tcp 10.0.0.1:3306: connection refused")
		err := wrapDBError(cause, "查询借阅记录失败")

		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.ErrCodeDatabaseError, appErr.Code)
		assert.Equal(t, http.StatusInternalServerError, appErr.Status)
		assert.Equal(t, "数据库错误", appErr.Message, "对外不暴露内部信息")
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, appErr.Err.Error(), "查询借阅记录失败")
	})
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateError(fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1062})))
	assert.True(t, isDuplicateError(errors.New("UNIQUE constraint failed: bookings.user_id")))
	assert.False(t, isDuplicateError(errors.New("no such table")))
	assert.False(t, isDuplicateError(nil))
}

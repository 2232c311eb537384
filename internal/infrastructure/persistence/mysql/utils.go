package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// txKey 事务DB在context中的key
type txKey struct{}

// dbFrom 从context获取事务DB,如果没有则使用默认DB
// 所有仓储方法都必须经过这里,否则事务内的语句会在另一条连接上执行
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// isDuplicateError 判断是否为唯一索引冲突错误
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - SQLite: UNIQUE constraint failed
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// isLockError 判断是否为存储层的锁冲突
// - MySQL 1213: 死锁; 1205: 锁等待超时
// - SQLite: database is locked / SQLITE_BUSY
func isLockError(err error) bool {
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// wrapDBError 把存储错误转换为业务错误
// 锁冲突转换为ErrConcurrentModification,由调用方整体重试;其余为ErrDatabaseError,
// message只进日志
func wrapDBError(err error, message string) error {
	if isLockError(err) {
		return apperrors.ErrConcurrentModification.WithCause(err)
	}
	return apperrors.ErrDatabaseError.WithCause(fmt.Errorf("%s: %w", message, err))
}

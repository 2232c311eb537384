// Package testutil 测试辅助:内存SQLite数据库与基础数据
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
)

// NewDB 创建独立的内存数据库并迁移表结构
// 连接池限制为1,所有语句逐条执行;并发相关的测试使用NewConcurrentDB
// 仓储必须使用事务连接,否则事务内的语句会一直等待连接
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db := open(t, dsn, 1)
	require.NoError(t, mysql.AutoMigrate(db), "迁移表结构失败")
	return db
}

// ConcurrentConns NewConcurrentDB的连接池大小
const ConcurrentConns = 8

// NewConcurrentDB 创建多连接的文件数据库(WAL)
// 语句在不同连接上真正并发执行,写锁冲突靠busy_timeout等待;
// 事务以BEGIN IMMEDIATE开始,同一时刻只有一个写事务,行为接近MySQL的行锁排队。
// 每次读取后停顿readDelay,拉大"先读后写"实现的竞态窗口
func NewConcurrentDB(t testing.TB, readDelay time.Duration) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate", path)
	db := open(t, dsn, ConcurrentConns)
	require.NoError(t, mysql.AutoMigrate(db), "迁移表结构失败")

	if readDelay > 0 {
		delay := func(*gorm.DB) { time.Sleep(readDelay) }
		require.NoError(t, db.Callback().Query().After("gorm:query").Register("testutil:read_delay", delay))
		require.NoError(t, db.Callback().Row().After("gorm:row").Register("testutil:row_delay", delay))
	}
	return db
}

func open(t testing.TB, dsn string, conns int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err, "打开测试数据库失败")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedUser 创建一个读者,返回ID
func SeedUser(t testing.TB, db *gorm.DB, email string) uint {
	t.Helper()
	u := user.NewUser(email, "$2a$04$hash", "测试读者", user.RoleReader)
	require.NoError(t, mysql.NewUserRepository(db).Create(context.Background(), u))
	return u.ID
}

// SeedBook 创建一本有available个副本的图书,返回ID
func SeedBook(t testing.TB, db *gorm.DB, title string, available int) uint {
	t.Helper()
	b := &book.Book{
		Title:     title,
		Year:      2001,
		AuthorID:  1,
		GenreIDs:  []uint{1},
		Available: available,
	}
	require.NoError(t, mysql.NewBookRepository(db).Create(context.Background(), b))
	return b.ID
}

// Available 直接读取图书的可借副本数
func Available(t testing.TB, db *gorm.DB, bookID uint) int {
	t.Helper()
	var available []int
	require.NoError(t, db.Model(&mysql.BookModel{}).Where("id = ?", bookID).Pluck("available", &available).Error)
	require.Len(t, available, 1, "图书不存在")
	return available[0]
}

// CountOpenBookings 统计图书的借阅中记录数
func CountOpenBookings(t testing.TB, db *gorm.DB, bookID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&mysql.BookingModel{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Count(&n).Error)
	return n
}

// RunConcurrently 启动n个goroutine,全部就绪后同时放行,等待全部结束
func RunConcurrently(n int, fn func(i int)) {
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
}

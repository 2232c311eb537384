package book

import (
	"context"
)

// StockCounter 可借副本计数器
// 每个方法都是一条针对存储的条件写,返回applied表示是否生效:
//   - applied=false且err=nil表示前置条件不满足(图书不存在或副本不足),由调用方用Exists区分
//   - 并发调用在存储层按行串行化,N个副本面对M>=N个并发扣减时恰好N个生效
//
// 实现必须从ctx中取事务连接,使其参与调用方的事务。
type StockCounter interface {
	// DecrementIfPositive available>0时减1
	DecrementIfPositive(ctx context.Context, id uint) (bool, error)

	// Increment available加1,仅当图书不存在时不生效
	Increment(ctx context.Context, id uint) (bool, error)

	// DecrementBy available>=n时减n,n必须>0
	DecrementBy(ctx context.Context, id uint, n int) (bool, error)

	// IncrementBy available加n,n必须>0
	IncrementBy(ctx context.Context, id uint, n int) (bool, error)
}

// Repository 图书仓储接口(依赖倒置原则)
type Repository interface {
	StockCounter

	// Create 创建图书,回填ID与Version
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书,不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// Exists 图书是否存在
	Exists(ctx context.Context, id uint) (bool, error)

	// UpdateMetadata 乐观锁更新元数据
	// 仅当存储中的version仍等于expectedVersion时写入并version+1;
	// 否则返回ErrVersionConflict(图书存在)或ErrBookNotFound。不做内部重试。
	UpdateMetadata(ctx context.Context, id uint, expectedVersion int, patch MetadataPatch) (*Book, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE),必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	// Delete 删除图书
	Delete(ctx context.Context, id uint) error
}

// Package rental 借阅/归还/缴费用例
//
// 库存与借阅台账是唯一的共享可变状态,二者都只通过存储层的条件写入修改,
// 用例本身不持有任何锁。一次借阅或归还在同一个数据库事务内完成。
package rental

import (
	"context"
	"time"

	"github.com/xiebiao/library/pkg/metrics"
)

// Transactor 事务边界,由mysql.TxManager实现
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BookingView 借阅记录视图
type BookingView struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"user_id"`
	BookID     uint       `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Fine       int64      `json:"fine"` // 分;借阅中为按今天计算的预估值
	FinePaid   bool       `json:"fine_paid"`
	Overdue    bool       `json:"overdue"`
}

func observe(workflow string, start time.Time) {
	metrics.ObserveWorkflow(workflow, time.Since(start).Seconds())
}

package booking

import (
	"context"
	"time"
)

// Ledger 借阅台账
// Booking只由拥有当前状态迁移的流程修改:借阅创建、归还关闭、缴费标记,
// 重复的关闭/缴费不会破坏状态。实现必须从ctx中取事务连接。
type Ledger interface {
	// FindActive 查询(用户,图书)的借阅中记录,没有时返回nil, nil
	FindActive(ctx context.Context, userID, bookID uint) (*Booking, error)

	// ListOpenByUser 用户所有借阅中的记录
	ListOpenByUser(ctx context.Context, userID uint) ([]*Booking, error)

	// HasOverdue 用户是否存在逾期的借阅中记录
	HasOverdue(ctx context.Context, userID uint, today time.Time) (bool, error)

	// HasUnpaidFine 用户是否存在fine>0且未缴的记录
	HasUnpaidFine(ctx context.Context, userID uint) (bool, error)

	// Create 新增借阅中记录
	// 必须在库存扣减生效之后调用;同一(用户,图书)已有借阅中记录时返回ErrBookAlreadyBorrowed
	Create(ctx context.Context, b *Booking) error

	// Close 条件关闭:仅当记录仍在借阅中时写入归还日期与罚款
	// 不存在返回ErrBookingNotFound,已关闭返回ErrBookingClosed
	Close(ctx context.Context, id uint, returnedAt time.Time, fine int64) (*Booking, error)

	// MarkFinePaid 标记罚款已缴,幂等:罚款为0或已缴时不做任何修改并返回false
	MarkFinePaid(ctx context.Context, id uint) (bool, error)

	// FindByID 根据ID查询,不存在返回ErrBookingNotFound
	FindByID(ctx context.Context, id uint) (*Booking, error)

	// ListByUser 用户全部借阅记录:借阅中在前,其余按借阅日期倒序
	ListByUser(ctx context.Context, userID uint) ([]*Booking, error)

	// ExistsByBook 是否有记录引用该图书
	ExistsByBook(ctx context.Context, bookID uint) (bool, error)
}

// Policy 借阅策略
type Policy struct {
	LoanDays   int   // 借期(天)
	FinePerDay int64 // 每逾期一天的罚款(分)
}

// DefaultPolicy 默认策略:借期14天,每天0.5元
func DefaultPolicy() Policy {
	return Policy{LoanDays: DefaultLoanDays, FinePerDay: 50}
}

package booking

import (
	"time"

	"github.com/xiebiao/library/pkg/clock"
)

// DefaultLoanDays 默认借期(天)
const DefaultLoanDays = 14

// Booking 借阅记录
// 设计说明:
// 1. ReturnedAt为nil表示借阅中(open),同一(用户,图书)同时最多一条open记录
// 2. Fine以"分"为单位,归还时一次性写入;借阅中的罚款只做展示计算,不落库
// 3. FinePaid只在Fine>0时有意义,由缴费操作设置一次
// 4. 日期字段都是UTC零点
type Booking struct {
	ID         uint
	UserID     uint
	BookID     uint
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	Fine       int64
	FinePaid   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBooking 创建借阅记录(工厂方法)
func NewBooking(userID, bookID uint, borrowedAt time.Time, loanDays int) *Booking {
	day := clock.TruncateDay(borrowedAt)
	return &Booking{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: day,
		DueAt:      day.AddDate(0, 0, loanDays),
	}
}

// IsOpen 是否借阅中
func (b *Booking) IsOpen() bool {
	return b.ReturnedAt == nil
}

// IsExpired 借阅中且today已超过应还日期
func (b *Booking) IsExpired(today time.Time) bool {
	return b.IsOpen() && clock.TruncateDay(today).After(b.DueAt)
}

// HasUnpaidFine 有罚款且未缴
func (b *Booking) HasUnpaidFine() bool {
	return b.Fine > 0 && !b.FinePaid
}

// DisplayFine 展示用罚款
// 借阅中按today实时计算,已归还返回落库的值
func (b *Booking) DisplayFine(today time.Time, ratePerDay int64) int64 {
	if b.IsOpen() {
		return ComputeFine(b.DueAt, today, ratePerDay)
	}
	return b.Fine
}

// ComputeFine 罚款 = max(0, 逾期天数) × 每日费率
// 展示与归还共用同一公式
func ComputeFine(dueAt, asOf time.Time, ratePerDay int64) int64 {
	days := DaysLate(dueAt, asOf)
	if days <= 0 || ratePerDay <= 0 {
		return 0
	}
	return int64(days) * ratePerDay
}

// DaysLate 逾期天数,按UTC日历日计算,未逾期为0
func DaysLate(dueAt, asOf time.Time) int {
	d := clock.TruncateDay(asOf).Sub(clock.TruncateDay(dueAt))
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// AnyExpired 是否存在逾期的借阅
func AnyExpired(bookings []*Booking, today time.Time) bool {
	for _, b := range bookings {
		if b.IsExpired(today) {
			return true
		}
	}
	return false
}

// FindOpenFor 在列表中查找指定图书的借阅中记录
func FindOpenFor(bookings []*Booking, bookID uint) *Booking {
	for _, b := range bookings {
		if b.BookID == bookID && b.IsOpen() {
			return b
		}
	}
	return nil
}

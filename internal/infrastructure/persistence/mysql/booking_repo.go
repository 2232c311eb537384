package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/booking"
	"github.com/xiebiao/library/pkg/clock"
)

// bookingRepository 借阅台账实现
// 状态迁移都是条件UPDATE:
//   - 关闭: WHERE id = ? AND returned_at IS NULL
//   - 缴费: WHERE id = ? AND fine > 0 AND fine_paid = false
//
// 重复的关闭/缴费因条件不满足而不生效,不会覆盖已有数据
type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建借阅台账
func NewBookingRepository(db *gorm.DB) booking.Ledger {
	return &bookingRepository{db: db}
}

// activeMarker 借阅中标记值
var activeMarker = 1

// FindActive 查询(用户,图书)的借阅中记录
func (r *bookingRepository) FindActive(ctx context.Context, userID, bookID uint) (*booking.Booking, error) {
	var model BookingModel
	err := dbFrom(ctx, r.db).
		Where("user_id = ? AND book_id = ? AND returned_at IS NULL", userID, bookID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapDBError(err, "查询借阅记录失败")
	}
	return toBookingEntity(&model), nil
}

// ListOpenByUser 用户所有借阅中记录
func (r *bookingRepository) ListOpenByUser(ctx context.Context, userID uint) ([]*booking.Booking, error) {
	var models []BookingModel
	err := dbFrom(ctx, r.db).
		Where("user_id = ? AND returned_at IS NULL", userID).
		Order("due_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "查询借阅记录失败")
	}
	return toBookingEntities(models), nil
}

// HasOverdue 用户是否存在逾期的借阅中记录
// 逾期按UTC日历日在应用层判断,与罚款计算使用同一套日期规则
func (r *bookingRepository) HasOverdue(ctx context.Context, userID uint, today time.Time) (bool, error) {
	open, err := r.ListOpenByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return booking.AnyExpired(open, today), nil
}

// HasUnpaidFine 用户是否存在未缴罚款
func (r *bookingRepository) HasUnpaidFine(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&BookingModel{}).
		Where("user_id = ? AND fine > 0 AND fine_paid = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "查询罚款失败")
	}
	return count > 0, nil
}

// Create 新增借阅中记录
// 唯一索引冲突说明同一用户已借阅该书(并发的两次借阅只有一条能写入)
func (r *bookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	marker := activeMarker
	model := &BookingModel{
		UserID:       b.UserID,
		BookID:       b.BookID,
		ActiveMarker: &marker,
		BorrowedAt:   b.BorrowedAt,
		DueAt:        b.DueAt,
	}

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return booking.ErrBookAlreadyBorrowed
		}
		return wrapDBError(err, "创建借阅记录失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Close 条件关闭借阅记录
func (r *bookingRepository) Close(ctx context.Context, id uint, returnedAt time.Time, fine int64) (*booking.Booking, error) {
	db := dbFrom(ctx, r.db)
	day := clock.TruncateDay(returnedAt)

	result := db.Model(&BookingModel{}).
		Where("id = ? AND returned_at IS NULL", id).
		Updates(map[string]interface{}{
			"returned_at":   day,
			"fine":          fine,
			"active_marker": gorm.Expr("NULL"),
		})
	if result.Error != nil {
		return nil, wrapDBError(result.Error, "关闭借阅记录失败")
	}

	closed, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err // 不存在时为ErrBookingNotFound
	}
	if result.RowsAffected == 0 {
		return nil, booking.ErrBookingClosed
	}
	return closed, nil
}

// MarkFinePaid 标记罚款已缴,幂等
func (r *bookingRepository) MarkFinePaid(ctx context.Context, id uint) (bool, error) {
	result := dbFrom(ctx, r.db).Model(&BookingModel{}).
		Where("id = ? AND fine > 0 AND fine_paid = ?", id, false).
		Update("fine_paid", true)
	if result.Error != nil {
		return false, wrapDBError(result.Error, "更新罚款状态失败")
	}
	return result.RowsAffected == 1, nil
}

// FindByID 根据ID查询
func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*booking.Booking, error) {
	var model BookingModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, wrapDBError(err, "查询借阅记录失败")
	}
	return toBookingEntity(&model), nil
}

// ListByUser 借阅中在前,其余按借阅日期倒序
func (r *bookingRepository) ListByUser(ctx context.Context, userID uint) ([]*booking.Booking, error) {
	var models []BookingModel
	err := dbFrom(ctx, r.db).
		Where("user_id = ?", userID).
		Order("CASE WHEN returned_at IS NULL THEN 0 ELSE 1 END").
		Order("borrowed_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "查询借阅记录失败")
	}
	return toBookingEntities(models), nil
}

// ExistsByBook 是否有借阅记录引用该图书
func (r *bookingRepository) ExistsByBook(ctx context.Context, bookID uint) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&BookingModel{}).
		Where("book_id = ?", bookID).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "查询借阅记录失败")
	}
	return count > 0, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookingEntity(model *BookingModel) *booking.Booking {
	b := &booking.Booking{
		ID:         model.ID,
		UserID:     model.UserID,
		BookID:     model.BookID,
		BorrowedAt: clock.TruncateDay(model.BorrowedAt),
		DueAt:      clock.TruncateDay(model.DueAt),
		Fine:       model.Fine,
		FinePaid:   model.FinePaid,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
	if model.ReturnedAt != nil {
		day := clock.TruncateDay(*model.ReturnedAt)
		b.ReturnedAt = &day
	}
	return b
}

func toBookingEntities(models []BookingModel) []*booking.Booking {
	out := make([]*booking.Booking, len(models))
	for i := range models {
		out[i] = toBookingEntity(&models[i])
	}
	return out
}

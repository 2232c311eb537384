package rental

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/booking"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// ReturnBookUseCase 还书用例
// 关闭借阅记录(写入归还日期和罚款)与库存加1必须同时完成,
// 库存未能加回时整个事务回滚,避免可借数量少算
type ReturnBookUseCase struct {
	users  user.Repository
	books  book.Repository
	ledger booking.Ledger
	tx     Transactor
	clock  clock.Clock
	policy booking.Policy
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	users user.Repository,
	books book.Repository,
	ledger booking.Ledger,
	tx Transactor,
	c clock.Clock,
	policy booking.Policy,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		users:  users,
		books:  books,
		ledger: ledger,
		tx:     tx,
		clock:  c,
		policy: policy,
	}
}

// ReturnBookRequest 还书请求
type ReturnBookRequest struct {
	UserID uint
	BookID uint
}

// ReturnBookResponse 还书结果
type ReturnBookResponse struct {
	BookingID  uint      `json:"booking_id"`
	BookID     uint      `json:"book_id"`
	ReturnedAt time.Time `json:"returned_at"`
	DaysLate   int       `json:"days_late"`
	Fine       int64     `json:"fine"` // 分
}

// Execute 执行还书
func (uc *ReturnBookUseCase) Execute(ctx context.Context, req ReturnBookRequest) (resp *ReturnBookResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "ReturnBook")
	start := time.Now()
	defer func() {
		tracing.End(span, err)
		metrics.RecordReturn(err)
		observe("return", start)
		logger.Result(ctx, "归还", err, zap.Uint("user_id", req.UserID), zap.Uint("book_id", req.BookID))
	}()

	today := clock.Today(uc.clock)
	var closed *booking.Booking

	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := uc.verify(ctx, req.UserID, req.BookID); err != nil {
			return err
		}

		active, err := uc.ledger.FindActive(ctx, req.UserID, req.BookID)
		if err != nil {
			return err
		}
		if active == nil {
			return booking.ErrBookNotBorrowed
		}

		fine := booking.ComputeFine(active.DueAt, today, uc.policy.FinePerDay)
		closed, err = uc.ledger.Close(ctx, active.ID, today, fine)
		if errors.Is(err, booking.ErrBookingClosed) {
			// 并发的另一次归还先关闭了这条记录
			return booking.ErrBookNotBorrowed
		}
		if err != nil {
			return err
		}

		applied, err := uc.books.Increment(ctx, req.BookID)
		if err != nil {
			return err
		}
		if !applied {
			// 图书在事务中途消失,回滚关闭操作
			return book.ErrBookNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ReturnBookResponse{
		BookingID:  closed.ID,
		BookID:     closed.BookID,
		ReturnedAt: *closed.ReturnedAt,
		DaysLate:   booking.DaysLate(closed.DueAt, *closed.ReturnedAt),
		Fine:       closed.Fine,
	}, nil
}

func (uc *ReturnBookUseCase) verify(ctx context.Context, userID, bookID uint) error {
	exists, err := uc.users.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrUserNotFound
	}

	exists, err = uc.books.Exists(ctx, bookID)
	if err != nil {
		return err
	}
	if !exists {
		return book.ErrBookNotFound
	}
	return nil
}

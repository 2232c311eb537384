package rental

import (
	"context"
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

// RentBookUseCase 借书用例
//
// 状态: checking → reserving → committed,任一步失败即rejected
//  1. checking: 读取用户借阅中的记录,依次检查逾期、未缴罚款、重复借阅
//  2. reserving: DecrementIfPositive,这是唯一需要在并发调用之间保持原子的一步
//  3. committed: 写入借阅记录,应还日期 = 借阅日期 + 借期
//
// 三步在同一事务内,写入借阅记录失败时扣减一并回滚。
// 已知缺口:步骤1读取借阅列表时没有加锁,同一用户对不同图书的并发借阅
// 不会看到对方事务中途产生的逾期状态。这里保留该行为,不做额外串行化。
type RentBookUseCase struct {
	users  user.Repository
	books  book.Repository
	ledger booking.Ledger
	tx     Transactor
	clock  clock.Clock
	policy booking.Policy
}

// NewRentBookUseCase 创建借书用例
func NewRentBookUseCase(
	users user.Repository,
	books book.Repository,
	ledger booking.Ledger,
	tx Transactor,
	c clock.Clock,
	policy booking.Policy,
) *RentBookUseCase {
	return &RentBookUseCase{
		users:  users,
		books:  books,
		ledger: ledger,
		tx:     tx,
		clock:  c,
		policy: policy,
	}
}

// RentBookRequest 借书请求
type RentBookRequest struct {
	UserID uint
	BookID uint
}

// Execute 执行借书
func (uc *RentBookUseCase) Execute(ctx context.Context, req RentBookRequest) (resp *BookingView, err error) {
	ctx, span := tracing.StartSpan(ctx, "RentBook")
	start := time.Now()
	defer func() {
		tracing.End(span, err)
		metrics.RecordRental(err)
		observe("rent", start)
		logger.Result(ctx, "借阅", err, zap.Uint("user_id", req.UserID), zap.Uint("book_id", req.BookID))
	}()

	today := clock.Today(uc.clock)
	var created *booking.Booking

	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := uc.checkEligibility(ctx, req.UserID, req.BookID, today); err != nil {
			return err
		}

		if err := uc.reserve(ctx, req.BookID); err != nil {
			return err
		}

		created = booking.NewBooking(req.UserID, req.BookID, today, uc.policy.LoanDays)
		return uc.ledger.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	return toView(created, today, uc.policy.FinePerDay), nil
}

// checkEligibility 借阅资格检查,顺序决定返回哪个错误
func (uc *RentBookUseCase) checkEligibility(ctx context.Context, userID, bookID uint, today time.Time) error {
	exists, err := uc.users.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrUserNotFound
	}

	open, err := uc.ledger.ListOpenByUser(ctx, userID)
	if err != nil {
		return err
	}
	if booking.AnyExpired(open, today) {
		return booking.ErrUserHasOverdueBooks
	}

	unpaid, err := uc.ledger.HasUnpaidFine(ctx, userID)
	if err != nil {
		return err
	}
	if unpaid {
		return booking.ErrUserHasUnpaidFines
	}

	if booking.FindOpenFor(open, bookID) != nil {
		return booking.ErrBookAlreadyBorrowed
	}
	return nil
}

// reserve 条件扣减一个副本;未生效时再区分图书不存在与无可借副本
func (uc *RentBookUseCase) reserve(ctx context.Context, bookID uint) error {
	applied, err := uc.books.DecrementIfPositive(ctx, bookID)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	exists, err := uc.books.Exists(ctx, bookID)
	if err != nil {
		return err
	}
	if !exists {
		return book.ErrBookNotFound
	}
	return book.ErrBookNotAvailable
}

func toView(b *booking.Booking, today time.Time, rate int64) *BookingView {
	return &BookingView{
		ID:         b.ID,
		UserID:     b.UserID,
		BookID:     b.BookID,
		BorrowedAt: b.BorrowedAt,
		DueAt:      b.DueAt,
		ReturnedAt: b.ReturnedAt,
		Fine:       b.DisplayFine(today, rate),
		FinePaid:   b.FinePaid,
		Overdue:    b.IsExpired(today),
	}
}

package rental_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/application/rental"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/booking"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/testutil"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var day0 = clock.Date(2024, time.March, 1)

// fixture 基于内存数据库的借阅环境,clk可在用例之间推进日期
type fixture struct {
	db     *gorm.DB
	clk    *clock.Fixed
	users  user.Repository
	books  book.Repository
	ledger booking.Ledger

	rent *rental.RentBookUseCase
	ret  *rental.ReturnBookUseCase
	pay  *rental.PayFineUseCase
	list *rental.ListBookingsUseCase
	ctx  context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(testutil.NewDB(t))
}

// newConcurrentFixture 多连接数据库,借阅事务真正并发执行
func newConcurrentFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(testutil.NewConcurrentDB(t, 2*time.Millisecond))
}

func newFixtureOn(db *gorm.DB) *fixture {
	f := &fixture{
		db:     db,
		clk:    &clock.Fixed{At: day0.Add(10 * time.Hour)},
		users:  mysql.NewUserRepository(db),
		books:  mysql.NewBookRepository(db),
		ledger: mysql.NewBookingRepository(db),
		ctx:    context.Background(),
	}
	return f.wire(f.ledger)
}

// wire 组装用例;ledger可替换为包装实现
func (f *fixture) wire(ledger booking.Ledger) *fixture {
	tx := mysql.NewTxManager(f.db)
	policy := booking.DefaultPolicy()
	f.rent = rental.NewRentBookUseCase(f.users, f.books, ledger, tx, f.clk, policy)
	f.ret = rental.NewReturnBookUseCase(f.users, f.books, ledger, tx, f.clk, policy)
	f.pay = rental.NewPayFineUseCase(ledger)
	f.list = rental.NewListBookingsUseCase(f.users, ledger, f.clk, policy)
	return f
}

func (f *fixture) advanceDays(n int) {
	f.clk.At = f.clk.At.AddDate(0, 0, n)
}

func (f *fixture) rentOK(t *testing.T, userID, bookID uint) *rental.BookingView {
	t.Helper()
	v, err := f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: userID, BookID: bookID})
	require.NoError(t, err)
	return v
}

func TestRent_CreatesBookingAndTakesCopy(t *testing.T) {
	f := newFixture(t)
	userID := testutil.SeedUser(t, f.db, "reader@example.com")
	bookID := testutil.SeedBook(t, f.db, "Dune", 2)

	v := f.rentOK(t, userID, bookID)

	assert.True(t, v.BorrowedAt.Equal(day0))
	assert.True(t, v.DueAt.Equal(day0.AddDate(0, 0, 14)))
	assert.Nil(t, v.ReturnedAt)
	assert.Zero(t, v.Fine)
	assert.Equal(t, 1, testutil.Available(t, f.db, bookID))
	assert.Equal(t, int64(1), testutil.CountOpenBookings(t, f.db, bookID))
}

func TestRent_BoundedConcurrentRents(t *testing.T) {
	f := newConcurrentFixture(t)
	const copies, renters = 3, 12
	bookID := testutil.SeedBook(t, f.db, "热门书", copies)

	userIDs := make([]uint, renters)
	for i := range userIDs {
		userIDs[i] = testutil.SeedUser(t, f.db, fmt.Sprintf("reader%d@example.com", i))
	}

	errs := make([]error, renters)
	testutil.RunConcurrently(renters, func(i int) {
		_, errs[i] = f.rent.Execute(context.Background(), rental.RentBookRequest{UserID: userIDs[i], BookID: bookID})
	})

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, book.ErrBookNotAvailable)
	}
	assert.Equal(t, copies, succeeded)
	assert.Equal(t, 0, testutil.Available(t, f.db, bookID))
	assert.Equal(t, int64(copies), testutil.CountOpenBookings(t, f.db, bookID))
}

func TestRent_LastCopyTwoReaders(t *testing.T) {
	f := newConcurrentFixture(t)
	bookID := testutil.SeedBook(t, f.db, "X", 1)
	readers := []uint{
		testutil.SeedUser(t, f.db, "a@example.com"),
		testutil.SeedUser(t, f.db, "b@example.com"),
	}

	errs := make(chan error, len(readers))
	testutil.RunConcurrently(len(readers), func(i int) {
		_, err := f.rent.Execute(context.Background(), rental.RentBookRequest{UserID: readers[i], BookID: bookID})
		errs <- err
	})
	close(errs)

	var ok, rejected int
	for err := range errs {
		if err == nil {
			ok++
		} else if assert.ErrorIs(t, err, book.ErrBookNotAvailable) {
			rejected++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, testutil.Available(t, f.db, bookID))
	assert.Equal(t, int64(1), testutil.CountOpenBookings(t, f.db, bookID))
}

func TestRent_Eligibility(t *testing.T) {
	t.Run("用户不存在", func(t *testing.T) {
		f := newFixture(t)
		bookID := testutil.SeedBook(t, f.db, "Dune", 1)

		_, err := f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: 9999, BookID: bookID})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.Equal(t, 1, testutil.Available(t, f.db, bookID))
	})

	t.Run("图书不存在与无副本区分", func(t *testing.T) {
		f := newFixture(t)
		userID := testutil.SeedUser(t, f.db, "r@example.com")
		empty := testutil.SeedBook(t, f.db, "借完了", 0)

		_, err := f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: userID, BookID: 9999})
		assert.ErrorIs(t, err, book.ErrBookNotFound)

		_, err = f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: userID, BookID: empty})
		assert.ErrorIs(t, err, book.ErrBookNotAvailable)
		assert.Equal(t, 0, testutil.Available(t, f.db, empty))
	})

	t.Run("重复借阅同一本书", func(t *testing.T) {
		f := newFixture(t)
		userID := testutil.SeedUser(t, f.db, "r@example.com")
		bookID := testutil.SeedBook(t, f.db, "Dune", 3)
		f.rentOK(t, userID, bookID)

		_, err := f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: userID, BookID: bookID})
		assert.ErrorIs(t, err, booking.ErrBookAlreadyBorrowed)
		assert.Equal(t, 2, testutil.Available(t, f.db, bookID), "被拒绝的借阅不扣减库存")
	})

	t.Run("存在逾期借阅", func(t *testing.T) {
		f := newFixture(t)
		userID := testutil.SeedUser(t, f.db, "r@example.com")
		first := testutil.SeedBook(t, f.db, "一", 1)
		second := testutil.SeedBook(t, f.db, "二", 1)
		f.rentOK(t, userID, first)

		f.advanceDays(14)
		f.rentOK(t, userID, second) // 到期当天仍可借

		other := testutil.SeedBook(t, f.db, "三", 1)
		f.advanceDays(1)
		_, err := f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: userID, BookID: other})
		assert.ErrorIs(t, err, booking.ErrUserHasOverdueBooks)
		assert.Equal(t, 1, testutil.Available(t, f.db, other))
	})

	t.Run("逾期优先于重复借阅", func(t *testing.T) {
		f := newFixture(t)
		userID := testutil.SeedUser(t, f.db, "r@example.com")
		bookID := testutil.SeedBook(t, f.db, "Dune", 2)
		f.rentOK(t, userID, bookID)
		f.advanceDays(20)

		_, err := f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: userID, BookID: bookID})
		assert.ErrorIs(t, err, booking.ErrUserHasOverdueBooks)
	})

	t.Run("存在未缴罚款", func(t *testing.T) {
		f := newFixture(t)
		userID := testutil.SeedUser(t, f.db, "r@example.com")
		bookID := testutil.SeedBook(t, f.db, "Dune", 1)
		f.rentOK(t, userID, bookID)
		f.advanceDays(16)
		_, err := f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: bookID})
		require.NoError(t, err)

		_, err = f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: userID, BookID: bookID})
		assert.ErrorIs(t, err, booking.ErrUserHasUnpaidFines)
	})
}

func TestReturn_RestoresCopyAndClosesBooking(t *testing.T) {
	f := newFixture(t)
	userID := testutil.SeedUser(t, f.db, "r@example.com")
	bookID := testutil.SeedBook(t, f.db, "Dune", 1)
	rented := f.rentOK(t, userID, bookID)

	f.advanceDays(3)
	resp, err := f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: bookID})
	require.NoError(t, err)

	assert.Equal(t, rented.ID, resp.BookingID)
	assert.True(t, resp.ReturnedAt.Equal(day0.AddDate(0, 0, 3)))
	assert.Zero(t, resp.Fine)
	assert.Zero(t, resp.DaysLate)
	assert.Equal(t, 1, testutil.Available(t, f.db, bookID), "借还对称")
	assert.Equal(t, int64(0), testutil.CountOpenBookings(t, f.db, bookID))

	closed, err := f.ledger.FindByID(f.ctx, rented.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())
}

func TestReturn_LateReturnPersistsFine(t *testing.T) {
	f := newFixture(t)
	userID := testutil.SeedUser(t, f.db, "r@example.com")
	bookID := testutil.SeedBook(t, f.db, "Dune", 1)
	f.rentOK(t, userID, bookID)

	f.advanceDays(17)
	resp, err := f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: bookID})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.DaysLate)
	assert.Equal(t, int64(150), resp.Fine)

	// 归还后罚款固定,不再随日期增长
	f.advanceDays(10)
	views, err := f.list.Execute(f.ctx, userID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(150), views[0].Fine)
	assert.False(t, views[0].Overdue)
}

func TestReturn_Rejections(t *testing.T) {
	f := newFixture(t)
	userID := testutil.SeedUser(t, f.db, "r@example.com")
	bookID := testutil.SeedBook(t, f.db, "Dune", 1)

	_, err := f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: bookID})
	assert.ErrorIs(t, err, booking.ErrBookNotBorrowed)

	_, err = f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: 9999, BookID: bookID})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: 9999})
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	f.rentOK(t, userID, bookID)
	_, err = f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: bookID})
	require.NoError(t, err)

	_, err = f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: bookID})
	assert.ErrorIs(t, err, booking.ErrBookNotBorrowed, "重复归还被拒绝")
	assert.Equal(t, 1, testutil.Available(t, f.db, bookID), "重复归还不会多加库存")
}

func TestPayFine(t *testing.T) {
	f := newFixture(t)
	userID := testutil.SeedUser(t, f.db, "r@example.com")
	otherID := testutil.SeedUser(t, f.db, "o@example.com")
	bookID := testutil.SeedBook(t, f.db, "Dune", 1)
	rented := f.rentOK(t, userID, bookID)
	f.advanceDays(15)
	_, err := f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: bookID})
	require.NoError(t, err)

	t.Run("不属于该用户", func(t *testing.T) {
		_, err := f.pay.Execute(f.ctx, rental.PayFineRequest{UserID: otherID, BookingID: rented.ID})
		assert.ErrorIs(t, err, booking.ErrUserMismatch)
	})

	t.Run("记录不存在", func(t *testing.T) {
		_, err := f.pay.Execute(f.ctx, rental.PayFineRequest{UserID: userID, BookingID: 9999})
		assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	})

	t.Run("缴费后可以再次借阅", func(t *testing.T) {
		resp, err := f.pay.Execute(f.ctx, rental.PayFineRequest{UserID: userID, BookingID: rented.ID})
		require.NoError(t, err)
		assert.True(t, resp.Applied)
		assert.True(t, resp.FinePaid)
		assert.Equal(t, int64(50), resp.Fine)

		again, err := f.pay.Execute(f.ctx, rental.PayFineRequest{UserID: userID, BookingID: rented.ID})
		require.NoError(t, err)
		assert.False(t, again.Applied, "重复缴费是空操作")
		assert.True(t, again.FinePaid)

		f.rentOK(t, userID, bookID)
	})
}

func TestListBookings_LazyFineForOpenLoans(t *testing.T) {
	f := newFixture(t)
	userID := testutil.SeedUser(t, f.db, "r@example.com")
	returned := testutil.SeedBook(t, f.db, "已还", 1)
	open := testutil.SeedBook(t, f.db, "在借", 1)

	f.rentOK(t, userID, returned)
	f.advanceDays(1)
	_, err := f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: returned})
	require.NoError(t, err)
	f.rentOK(t, userID, open)

	f.advanceDays(18) // 在借的书逾期4天
	views, err := f.list.Execute(f.ctx, userID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, open, views[0].BookID, "借阅中在前")
	assert.True(t, views[0].Overdue)
	assert.Equal(t, int64(200), views[0].Fine)
	assert.Equal(t, returned, views[1].BookID)
	assert.Zero(t, views[1].Fine)

	// 展示用罚款不落库
	b, err := f.ledger.FindActive(f.ctx, userID, open)
	require.NoError(t, err)
	assert.Zero(t, b.Fine)

	_, err = f.list.Execute(f.ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

// agingLedger 在借阅资格检查读取借阅列表之后推进日期,
// 模拟另一条借阅在检查完成后才变为逾期
type agingLedger struct {
	booking.Ledger
	once   sync.Once
	onRead func()
}

func (l *agingLedger) ListOpenByUser(ctx context.Context, userID uint) ([]*booking.Booking, error) {
	open, err := l.Ledger.ListOpenByUser(ctx, userID)
	l.once.Do(l.onRead)
	return open, err
}

// 资格检查基于读取时的借阅快照,提交前不再复核。
// 检查之后才出现的逾期不会阻止本次借阅,这是已知的非原子窗口。
func TestRent_OverdueAppearingAfterCheckIsNotFenced(t *testing.T) {
	f := newFixture(t)
	userID := testutil.SeedUser(t, f.db, "r@example.com")
	first := testutil.SeedBook(t, f.db, "一", 1)
	second := testutil.SeedBook(t, f.db, "二", 1)
	f.rentOK(t, userID, first)
	f.advanceDays(14) // 第一本书今天到期

	aging := &agingLedger{Ledger: f.ledger}
	aging.onRead = func() { f.advanceDays(1) }
	f.wire(aging)

	_, err := f.rent.Execute(f.ctx, rental.RentBookRequest{UserID: userID, BookID: second})
	require.NoError(t, err, "检查时尚未逾期,借阅成功")

	overdue, err := f.ledger.HasOverdue(f.ctx, userID, clock.Today(f.clk))
	require.NoError(t, err)
	assert.True(t, overdue, "提交后用户已有逾期借阅")
	assert.Equal(t, 0, testutil.Available(t, f.db, second))
}

// 模拟另一次归还在读取之后、关闭之前先完成
type racingReturnLedger struct {
	booking.Ledger
	once sync.Once
}

func (l *racingReturnLedger) FindActive(ctx context.Context, userID, bookID uint) (*booking.Booking, error) {
	active, err := l.Ledger.FindActive(ctx, userID, bookID)
	if active != nil {
		l.once.Do(func() {
			_, _ = l.Ledger.Close(ctx, active.ID, active.BorrowedAt, 0)
		})
	}
	return active, err
}

func TestReturn_LosingConcurrentCloseReportsNotBorrowed(t *testing.T) {
	f := newFixture(t)
	userID := testutil.SeedUser(t, f.db, "r@example.com")
	bookID := testutil.SeedBook(t, f.db, "Dune", 1)
	f.rentOK(t, userID, bookID)

	f.wire(&racingReturnLedger{Ledger: f.ledger})
	_, err := f.ret.Execute(f.ctx, rental.ReturnBookRequest{UserID: userID, BookID: bookID})

	assert.ErrorIs(t, err, booking.ErrBookNotBorrowed)
	assert.False(t, apperrors.HasCode(err, apperrors.ErrCodeBookingClosed))
	assert.Equal(t, 0, testutil.Available(t, f.db, bookID), "失败的归还不加库存")
}

func TestReturn_ConcurrentReturnsRestoreOneCopy(t *testing.T) {
	f := newConcurrentFixture(t)
	userID := testutil.SeedUser(t, f.db, "r@example.com")
	bookID := testutil.SeedBook(t, f.db, "Dune", 1)
	f.rentOK(t, userID, bookID)

	errs := make([]error, 4)
	testutil.RunConcurrently(len(errs), func(i int) {
		_, errs[i] = f.ret.Execute(context.Background(), rental.ReturnBookRequest{UserID: userID, BookID: bookID})
	})

	returned := 0
	for _, err := range errs {
		if err == nil {
			returned++
			continue
		}
		assert.ErrorIs(t, err, booking.ErrBookNotBorrowed)
	}
	assert.Equal(t, 1, returned)
	assert.Equal(t, 1, testutil.Available(t, f.db, bookID))
	assert.Zero(t, testutil.CountOpenBookings(t, f.db, bookID))
}

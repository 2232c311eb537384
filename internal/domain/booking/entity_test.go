package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/library/pkg/clock"
)

func TestNewBooking_DueAfterLoanDays(t *testing.T) {
	b := NewBooking(1, 2, time.Date(2024, 1, 31, 15, 4, 5, 0, time.UTC), DefaultLoanDays)

	assert.Equal(t, clock.Date(2024, 1, 31), b.BorrowedAt)
	assert.Equal(t, clock.Date(2024, 2, 14), b.DueAt)
	assert.True(t, b.IsOpen())
}

func TestComputeFine(t *testing.T) {
	due := clock.Date(2024, 3, 1)
	cases := []struct {
		name string
		asOf time.Time
		want int64
	}{
		{"提前归还", clock.Date(2024, 2, 20), 0},
		{"到期当天", due, 0},
		{"到期当天晚上", due.Add(23 * time.Hour), 0},
		{"逾期1天", clock.Date(2024, 3, 2), 50},
		{"跨闰日逾期", clock.Date(2024, 3, 31), 30 * 50},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ComputeFine(due, c.asOf, 50))
		})
	}
	assert.Zero(t, ComputeFine(due, clock.Date(2024, 4, 1), 0), "费率为0时不产生罚款")
}

func TestBooking_ExpiryAndDisplayFine(t *testing.T) {
	b := NewBooking(1, 2, clock.Date(2024, 1, 1), 14) // due 01-15

	assert.False(t, b.IsExpired(clock.Date(2024, 1, 15)))
	assert.True(t, b.IsExpired(clock.Date(2024, 1, 16)))
	assert.Equal(t, int64(5*50), b.DisplayFine(clock.Date(2024, 1, 20), 50))

	returned := clock.Date(2024, 1, 18)
	b.ReturnedAt = &returned
	b.Fine = 150
	assert.False(t, b.IsExpired(clock.Date(2024, 2, 1)), "已归还的记录不算逾期")
	assert.Equal(t, int64(150), b.DisplayFine(clock.Date(2024, 2, 1), 50), "已归还展示落库罚款")
	assert.True(t, b.HasUnpaidFine())

	b.FinePaid = true
	assert.False(t, b.HasUnpaidFine())
}

func TestListHelpers(t *testing.T) {
	today := clock.Date(2024, 2, 1)
	open := NewBooking(1, 10, clock.Date(2024, 1, 25), 14)
	overdue := NewBooking(1, 11, clock.Date(2024, 1, 1), 14)
	ret := clock.Date(2024, 1, 20)
	closed := &Booking{UserID: 1, BookID: 12, ReturnedAt: &ret, Fine: 100}

	assert.False(t, AnyExpired([]*Booking{open}, today))
	assert.True(t, AnyExpired([]*Booking{open, overdue}, today))
	assert.Same(t, open, FindOpenFor([]*Booking{closed, open}, 10))
	assert.Nil(t, FindOpenFor([]*Booking{closed}, 12))
}

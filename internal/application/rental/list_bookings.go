package rental

import (
	"context"

	"github.com/xiebiao/library/internal/domain/booking"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ListBookingsUseCase 查询用户的借阅记录
// 借阅中的记录按今天计算预估罚款,只用于展示,不落库
type ListBookingsUseCase struct {
	users  user.Repository
	ledger booking.Ledger
	clock  clock.Clock
	policy booking.Policy
}

// NewListBookingsUseCase 创建查询用例
func NewListBookingsUseCase(users user.Repository, ledger booking.Ledger, c clock.Clock, policy booking.Policy) *ListBookingsUseCase {
	return &ListBookingsUseCase{users: users, ledger: ledger, clock: c, policy: policy}
}

// Execute 借阅中在前,其余按借阅日期倒序
func (uc *ListBookingsUseCase) Execute(ctx context.Context, userID uint) ([]*BookingView, error) {
	exists, err := uc.users.ExistsByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}

	list, err := uc.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := clock.Today(uc.clock)
	views := make([]*BookingView, len(list))
	for i, b := range list {
		views[i] = toView(b, today, uc.policy.FinePerDay)
	}
	return views, nil
}

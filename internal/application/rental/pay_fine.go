package rental

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/booking"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// PayFineUseCase 缴纳罚款
// 幂等:没有罚款或已缴时不做修改,仍返回成功
type PayFineUseCase struct {
	ledger booking.Ledger
}

// NewPayFineUseCase 创建缴费用例
func NewPayFineUseCase(ledger booking.Ledger) *PayFineUseCase {
	return &PayFineUseCase{ledger: ledger}
}

// PayFineRequest 缴费请求
type PayFineRequest struct {
	UserID    uint
	BookingID uint
}

// PayFineResponse 缴费结果
type PayFineResponse struct {
	BookingID uint  `json:"booking_id"`
	Fine      int64 `json:"fine"`
	FinePaid  bool  `json:"fine_paid"`
	Applied   bool  `json:"applied"` // 本次调用是否完成了缴费
}

// Execute 执行缴费
func (uc *PayFineUseCase) Execute(ctx context.Context, req PayFineRequest) (resp *PayFineResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "PayFine")
	defer func() {
		tracing.End(span, err)
		logger.Result(ctx, "缴纳罚款", err, zap.Uint("user_id", req.UserID), zap.Uint("booking_id", req.BookingID))
	}()

	b, err := uc.ledger.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != req.UserID {
		return nil, booking.ErrUserMismatch
	}

	applied, err := uc.ledger.MarkFinePaid(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if applied {
		metrics.RecordFinePaid(b.Fine)
	}

	return &PayFineResponse{
		BookingID: b.ID,
		Fine:      b.Fine,
		FinePaid:  b.FinePaid || applied,
		Applied:   applied,
	}, nil
}

// Package inventory 管理员库存调整:补货与核销
package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

const (
	opReplenish = "replenish"
	opWriteOff  = "write_off"
)

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	BookID uint
	Amount int
}

// AdjustStockResponse 调整后的库存
// Available是调整生效后读取的值,并发调整时可能已被其他请求改变
type AdjustStockResponse struct {
	BookID    uint `json:"book_id"`
	Amount    int  `json:"amount"`
	Available int  `json:"available"`
}

// ReplenishUseCase 补货:无条件增加N个副本
type ReplenishUseCase struct {
	books book.Repository
}

// NewReplenishUseCase 创建补货用例
func NewReplenishUseCase(books book.Repository) *ReplenishUseCase {
	return &ReplenishUseCase{books: books}
}

// Execute 执行补货
func (uc *ReplenishUseCase) Execute(ctx context.Context, req AdjustStockRequest) (resp *AdjustStockResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "Replenish")
	defer finish(ctx, opReplenish, req, time.Now(), &err)()
	defer func() { tracing.End(span, err) }()

	if req.Amount <= 0 {
		return nil, book.ErrInvalidAmount
	}

	applied, err := uc.books.IncrementBy(ctx, req.BookID, req.Amount)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, book.ErrBookNotFound
	}
	return currentStock(ctx, uc.books, req)
}

// WriteOffUseCase 核销:仅当可借副本不少于N时减少N个
// 条件写入保证并发核销不会使库存为负
type WriteOffUseCase struct {
	books book.Repository
}

// NewWriteOffUseCase 创建核销用例
func NewWriteOffUseCase(books book.Repository) *WriteOffUseCase {
	return &WriteOffUseCase{books: books}
}

// Execute 执行核销
func (uc *WriteOffUseCase) Execute(ctx context.Context, req AdjustStockRequest) (resp *AdjustStockResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "WriteOff")
	defer finish(ctx, opWriteOff, req, time.Now(), &err)()
	defer func() { tracing.End(span, err) }()

	if req.Amount <= 0 {
		return nil, book.ErrInvalidAmount
	}

	applied, err := uc.books.DecrementBy(ctx, req.BookID, req.Amount)
	if err != nil {
		return nil, err
	}
	if !applied {
		exists, err := uc.books.Exists(ctx, req.BookID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, book.ErrBookNotFound
		}
		return nil, book.ErrInsufficientStock
	}
	return currentStock(ctx, uc.books, req)
}

func currentStock(ctx context.Context, books book.Repository, req AdjustStockRequest) (*AdjustStockResponse, error) {
	b, err := books.FindByID(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	return &AdjustStockResponse{BookID: b.ID, Amount: req.Amount, Available: b.Available}, nil
}

// finish 返回在用例结束时记录指标和日志的函数
func finish(ctx context.Context, op string, req AdjustStockRequest, start time.Time, errp *error) func() {
	return func() {
		metrics.RecordStockAdjustment(op, *errp)
		metrics.ObserveWorkflow(op, time.Since(start).Seconds())
		logger.Result(ctx, "库存调整", *errp,
			zap.String("op", op),
			zap.Uint("book_id", req.BookID),
			zap.Int("amount", req.Amount),
		)
	}
}

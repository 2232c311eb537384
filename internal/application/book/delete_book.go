package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/booking"
	"github.com/xiebiao/library/pkg/logger"
)

// DeleteBookUseCase 删除图书
// 有借阅记录(含已归还)的图书不能删除。先锁定图书行再检查借阅记录,
// 借书流程的条件扣减会在行锁上等待,检查与删除之间不会插入新的借阅
type DeleteBookUseCase struct {
	books  book.Repository
	ledger booking.Ledger
	tx     Transactor
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(books book.Repository, ledger booking.Ledger, tx Transactor) *DeleteBookUseCase {
	return &DeleteBookUseCase{books: books, ledger: ledger, tx: tx}
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.books.LockByID(ctx, id); err != nil {
			return err
		}

		referenced, err := uc.ledger.ExistsByBook(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return book.ErrBookHasBookings
		}
		return uc.books.Delete(ctx, id)
	})

	logger.Result(ctx, "删除图书", err, zap.Uint("book_id", id))
	return err
}

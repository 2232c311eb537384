package book

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// UpdateBookUseCase 修改图书元数据(乐观锁)
// 版本冲突直接返回给调用方,不在内部重试:重试前调用方需要重新读取并确认修改内容
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建修改用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 修改请求,nil字段保持不变
type UpdateBookRequest struct {
	BookID          uint
	ExpectedVersion int
	Title           *string
	Year            *int
	AuthorID        *uint
	GenreIDs        []uint
}

// Execute 成功时返回新版本
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (resp *BookResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "UpdateBook")
	defer func() {
		tracing.End(span, err)
		if errors.Is(err, book.ErrVersionConflict) {
			metrics.RecordVersionConflict()
		}
		logger.Result(ctx, "修改图书", err,
			zap.Uint("book_id", req.BookID),
			zap.Int("expected_version", req.ExpectedVersion),
		)
	}()

	patch := book.MetadataPatch{
		Title:    req.Title,
		Year:     req.Year,
		AuthorID: req.AuthorID,
		GenreIDs: req.GenreIDs,
	}
	b, err := uc.bookService.UpdateMetadata(ctx, req.BookID, req.ExpectedVersion, patch)
	if err != nil {
		return nil, err
	}
	return toResponse(b), nil
}

package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/logger"
)

// CreateBookUseCase 新增图书
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建新增图书用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 新增图书请求
type CreateBookRequest struct {
	Title     string
	Year      int
	AuthorID  uint
	GenreIDs  []uint
	Available int
}

// Execute 校验由领域服务完成,非法输入不会写库
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	b, err := uc.bookService.CreateBook(ctx, req.Title, req.Year, req.AuthorID, req.GenreIDs, req.Available)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("新增图书",
		zap.Uint("book_id", b.ID),
		zap.String("title", b.Title),
		zap.Int("available", b.Available),
	)
	return toResponse(b), nil
}

// GetBookUseCase 查询图书
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建查询用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 执行查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(b), nil
}

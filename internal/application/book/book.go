// Package book 图书目录用例:新增、查询、修改元数据、删除
package book

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
)

// Transactor 事务边界
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BookResponse 图书详情
// Version用于修改元数据时的乐观锁校验,客户端修改前必须先读取
type BookResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	AuthorID  uint      `json:"author_id"`
	GenreIDs  []uint    `json:"genre_ids"`
	Available int       `json:"available"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Year:      b.Year,
		AuthorID:  b.AuthorID,
		GenreIDs:  b.GenreIDs,
		Available: b.Available,
		Version:   b.Version,
		UpdatedAt: b.UpdatedAt,
	}
}

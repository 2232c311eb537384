package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/book"
)

// bookRepository 图书仓储实现
// 设计说明:
// 1. 实现domain/book/repository.go定义的Repository和StockCounter
// 2. 库存的每次调整都是一条带前置条件的UPDATE,依赖存储的行锁串行化并发写
// 3. 元数据用version做乐观锁,冲突直接返回,不在这里重试
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书及其类别
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		Title:     b.Title,
		Year:      b.Year,
		AuthorID:  b.AuthorID,
		Available: b.Available,
	}

	err := dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return replaceGenres(tx, model.ID, b.GenreIDs)
	})
	if err != nil {
		return wrapDBError(err, "创建图书失败")
	}

	b.ID = model.ID
	b.Version = model.Version
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	return loadBook(dbFrom(ctx, r.db), id)
}

// Exists 图书是否存在
func (r *bookRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return bookExists(dbFrom(ctx, r.db), id)
}

// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE)
// 必须在事务中调用,删除图书前锁住行,使并发的库存扣减在其后排队
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, wrapDBError(err, "锁定图书失败")
	}
	return toBookEntity(&model, nil), nil
}

// DecrementIfPositive UPDATE books SET available = available - 1 WHERE id = ? AND available > 0
func (r *bookRepository) DecrementIfPositive(ctx context.Context, id uint) (bool, error) {
	return r.adjustStock(ctx, id, gorm.Expr("available - 1"), "available > 0")
}

// Increment UPDATE books SET available = available + 1 WHERE id = ?
func (r *bookRepository) Increment(ctx context.Context, id uint) (bool, error) {
	return r.adjustStock(ctx, id, gorm.Expr("available + 1"), "")
}

// DecrementBy UPDATE books SET available = available - n WHERE id = ? AND available >= n
func (r *bookRepository) DecrementBy(ctx context.Context, id uint, n int) (bool, error) {
	if n <= 0 {
		return false, book.ErrInvalidAmount
	}
	return r.adjustStock(ctx, id, gorm.Expr("available - ?", n), "available >= ?", n)
}

// IncrementBy UPDATE books SET available = available + n WHERE id = ?
func (r *bookRepository) IncrementBy(ctx context.Context, id uint, n int) (bool, error) {
	if n <= 0 {
		return false, book.ErrInvalidAmount
	}
	return r.adjustStock(ctx, id, gorm.Expr("available + ?", n), "")
}

// adjustStock 单条条件UPDATE,RowsAffected==1表示生效
// 不存在与条件不满足都返回false,由调用方用Exists区分
func (r *bookRepository) adjustStock(ctx context.Context, id uint, expr clause.Expr, cond string, args ...interface{}) (bool, error) {
	q := dbFrom(ctx, r.db).Model(&BookModel{}).Where("id = ?", id)
	if cond != "" {
		q = q.Where(cond, args...)
	}

	result := q.Update("available", expr)
	if result.Error != nil {
		return false, wrapDBError(result.Error, "更新库存失败")
	}
	return result.RowsAffected == 1, nil
}

// UpdateMetadata 乐观锁更新元数据
// UPDATE books SET ..., version = version + 1 WHERE id = ? AND version = ?
// 标量字段与类别在同一事务内写入,不会出现两次修改各写一半
func (r *bookRepository) UpdateMetadata(ctx context.Context, id uint, expectedVersion int, patch book.MetadataPatch) (*book.Book, error) {
	updates := map[string]interface{}{
		"version": gorm.Expr("version + 1"),
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Year != nil {
		updates["year"] = *patch.Year
	}
	if patch.AuthorID != nil {
		updates["author_id"] = *patch.AuthorID
	}

	var updated *book.Book
	err := dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BookModel{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			exists, err := bookExists(tx, id)
			if err != nil {
				return err
			}
			if !exists {
				return book.ErrBookNotFound
			}
			return book.ErrVersionConflict
		}

		if patch.GenreIDs != nil {
			if err := tx.Where("book_id = ?", id).Delete(&BookGenreModel{}).Error; err != nil {
				return err
			}
			if err := replaceGenres(tx, id, patch.GenreIDs); err != nil {
				return err
			}
		}

		b, err := loadBook(tx, id)
		if err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		if errors.Is(err, book.ErrBookNotFound) || errors.Is(err, book.ErrVersionConflict) {
			return nil, err
		}
		return nil, wrapDBError(err, "更新图书失败")
	}

	return updated, nil
}

// Delete 删除图书及其类别关联
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	err := dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&BookGenreModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&BookModel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return book.ErrBookNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, book.ErrBookNotFound) {
			return err
		}
		return wrapDBError(err, "删除图书失败")
	}
	return nil
}

// =========================================
// 辅助函数
// =========================================

func bookExists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrapDBError(err, "查询图书失败")
	}
	return count > 0, nil
}

func loadBook(db *gorm.DB, id uint) (*book.Book, error) {
	var model BookModel
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, wrapDBError(err, "查询图书失败")
	}

	var genreIDs []uint
	err := db.Model(&BookGenreModel{}).
		Where("book_id = ?", id).
		Order("genre_id").
		Pluck("genre_id", &genreIDs).Error
	if err != nil {
		return nil, wrapDBError(err, "查询图书类别失败")
	}

	return toBookEntity(&model, genreIDs), nil
}

func replaceGenres(tx *gorm.DB, bookID uint, genreIDs []uint) error {
	if len(genreIDs) == 0 {
		return nil
	}
	rows := make([]BookGenreModel, 0, len(genreIDs))
	seen := make(map[uint]struct{}, len(genreIDs))
	for _, g := range genreIDs {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		rows = append(rows, BookGenreModel{BookID: bookID, GenreID: g})
	}
	return tx.Create(&rows).Error
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel, genreIDs []uint) *book.Book {
	return &book.Book{
		ID:        model.ID,
		Title:     model.Title,
		Year:      model.Year,
		AuthorID:  model.AuthorID,
		GenreIDs:  genreIDs,
		Available: model.Available,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

package book

import (
	"time"
)

// Book 图书实体(聚合根)
// 设计说明:
// 1. Available是可借副本计数(StockCounter的值),只通过条件更新修改,不受Version约束
// 2. Version只保护描述性元数据(书名、年份、作者、类别),每次元数据写入+1
// 3. AuthorID/GenreIDs只是引用,作者与类别的维护不在本服务内
type Book struct {
	ID        uint
	Title     string
	Year      int
	AuthorID  uint
	GenreIDs  []uint
	Available int
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBook 创建新图书(工厂方法)
// currentYear用于校验出版年份不晚于今年
func NewBook(title string, year int, authorID uint, genreIDs []uint, available int, currentYear int) (*Book, error) {
	if err := validateMetadata(title, year, authorID, genreIDs, currentYear); err != nil {
		return nil, err
	}
	if available < 0 {
		return nil, ErrInvalidStock
	}
	return &Book{
		Title:     title,
		Year:      year,
		AuthorID:  authorID,
		GenreIDs:  dedupe(genreIDs),
		Available: available,
	}, nil
}

// MetadataPatch 元数据修改
// nil字段表示保持原值;GenreIDs为nil表示不修改类别
type MetadataPatch struct {
	Title    *string
	Year     *int
	AuthorID *uint
	GenreIDs []uint
}

// IsEmpty 是否没有任何修改
func (p MetadataPatch) IsEmpty() bool {
	return p.Title == nil && p.Year == nil && p.AuthorID == nil && p.GenreIDs == nil
}

// Validate 校验修改内容
func (p MetadataPatch) Validate(currentYear int) error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Year != nil {
		if err := validateYear(*p.Year, currentYear); err != nil {
			return err
		}
	}
	if p.AuthorID != nil && *p.AuthorID == 0 {
		return ErrInvalidAuthor
	}
	if p.GenreIDs != nil && len(p.GenreIDs) == 0 {
		return ErrGenresRequired
	}
	return nil
}

func validateMetadata(title string, year int, authorID uint, genreIDs []uint, currentYear int) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validateYear(year, currentYear); err != nil {
		return err
	}
	if authorID == 0 {
		return ErrInvalidAuthor
	}
	if len(genreIDs) == 0 {
		return ErrGenresRequired
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" || len([]rune(title)) > 200 {
		return ErrInvalidTitle
	}
	return nil
}

func validateYear(year, currentYear int) error {
	if year <= 0 || year > currentYear {
		return ErrInvalidYear
	}
	return nil
}

// dedupe 去重并保持原顺序
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

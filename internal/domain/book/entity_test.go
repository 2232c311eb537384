package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook(t *testing.T) {
	t.Run("合法输入", func(t *testing.T) {
		b, err := NewBook("The Great Gatsby", 1925, 1, []uint{2, 1, 2}, 3, 2024)
		require.NoError(t, err)
		assert.Equal(t, []uint{2, 1}, b.GenreIDs, "类别应去重")
		assert.Equal(t, 3, b.Available)
	})

	cases := []struct {
		name      string
		title     string
		year      int
		authorID  uint
		genres    []uint
		available int
		want      error
	}{
		{"书名为空", "", 1925, 1, []uint{1}, 1, ErrInvalidTitle},
		{"年份为0", "X", 0, 1, []uint{1}, 1, ErrInvalidYear},
		{"年份晚于今年", "X", 2025, 1, []uint{1}, 1, ErrInvalidYear},
		{"作者为0", "X", 1925, 0, []uint{1}, 1, ErrInvalidAuthor},
		{"没有类别", "X", 1925, 1, nil, 1, ErrGenresRequired},
		{"负库存", "X", 1925, 1, []uint{1}, -1, ErrInvalidStock},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewBook(c.title, c.year, c.authorID, c.genres, c.available, 2024)
			assert.ErrorIs(t, err, c.want)
			for _, other := range validationErrors {
				if other != c.want {
					assert.NotErrorIs(t, err, other, "校验错误之间不能互相匹配")
				}
			}
		})
	}
}

var validationErrors = []error{
	ErrInvalidTitle, ErrInvalidYear, ErrInvalidAuthor, ErrGenresRequired, ErrInvalidStock, ErrEmptyPatch, ErrInvalidAmount,
}

func TestMetadataPatch(t *testing.T) {
	title := "新书名"
	year := 2001
	var zero uint

	assert.ErrorIs(t, MetadataPatch{}.Validate(2024), ErrEmptyPatch)
	assert.ErrorIs(t, MetadataPatch{AuthorID: &zero}.Validate(2024), ErrInvalidAuthor)
	assert.ErrorIs(t, MetadataPatch{GenreIDs: []uint{}}.Validate(2024), ErrGenresRequired)

	p := MetadataPatch{Title: &title, Year: &year}
	require.NoError(t, p.Validate(2024))
}

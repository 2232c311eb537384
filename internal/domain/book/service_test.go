package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/pkg/clock"
)

// stubRepository 只记录调用,用于验证校验失败时不触达存储
type stubRepository struct {
	Repository
	created []*Book
	updated int
}

func (r *stubRepository) Create(_ context.Context, b *Book) error {
	b.ID = uint(len(r.created) + 1)
	r.created = append(r.created, b)
	return nil
}

func (r *stubRepository) UpdateMetadata(_ context.Context, id uint, expectedVersion int, patch MetadataPatch) (*Book, error) {
	r.updated++
	b := &Book{ID: id, Version: expectedVersion + 1}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	return b, nil
}

func TestService_CreateBook(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo, clock.Fixed{At: clock.Date(2024, 5, 1)})

	b, err := svc.CreateBook(context.Background(), "Dune", 1965, 3, []uint{1}, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.ID)

	_, err = svc.CreateBook(context.Background(), "Future", 2030, 3, []uint{1}, 2)
	assert.ErrorIs(t, err, ErrInvalidYear)
	assert.Len(t, repo.created, 1)
}

func TestService_UpdateMetadata_RejectsInvalidPatchBeforeStore(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo, clock.Fixed{At: clock.Date(2024, 5, 1)})

	empty := ""
	_, err := svc.UpdateMetadata(context.Background(), 1, 0, MetadataPatch{Title: &empty})
	assert.ErrorIs(t, err, ErrInvalidTitle)
	assert.Equal(t, 0, repo.updated)

	title := "Dune Messiah"
	b, err := svc.UpdateMetadata(context.Background(), 1, 0, MetadataPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Version)
	assert.Equal(t, 1, repo.updated)
}

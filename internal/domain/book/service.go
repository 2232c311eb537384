package book

import (
	"context"

	"github.com/xiebiao/library/pkg/clock"
)

// Service 图书领域服务接口
// 负责元数据的业务规则校验,库存计数由StockCounter直接完成
type Service interface {
	// CreateBook 新增图书
	CreateBook(ctx context.Context, title string, year int, authorID uint, genreIDs []uint, available int) (*Book, error)

	// GetBook 查询图书详情
	GetBook(ctx context.Context, id uint) (*Book, error)

	// UpdateMetadata 版本校验后修改元数据
	UpdateMetadata(ctx context.Context, id uint, expectedVersion int, patch MetadataPatch) (*Book, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
}

// NewService 创建图书领域服务
func NewService(repo Repository, c clock.Clock) Service {
	return &service{repo: repo, clock: c}
}

func (s *service) CreateBook(ctx context.Context, title string, year int, authorID uint, genreIDs []uint, available int) (*Book, error) {
	b, err := NewBook(title, year, authorID, genreIDs, available, s.clock.Now().Year())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateMetadata 修改元数据
// 业务规则:
// 1. 修改内容先校验,非法输入不触达存储
// 2. 版本不一致直接返回ErrVersionConflict,由调用方重新读取后决定是否重试
func (s *service) UpdateMetadata(ctx context.Context, id uint, expectedVersion int, patch MetadataPatch) (*Book, error) {
	if err := patch.Validate(s.clock.Now().Year()); err != nil {
		return nil, err
	}
	return s.repo.UpdateMetadata(ctx, id, expectedVersion, patch)
}

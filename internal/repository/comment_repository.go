package repository

import (
	"context"
	"errors"
	"fmt"

	newsdomain "newsportal/internal/domain/news"

	"gorm.io/gorm"
)

// CommentRepository 负责评论的持久化操作。
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 构造评论仓储。
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 写入新的评论记录。
func (r *CommentRepository) Create(ctx context.Context, entity *newsdomain.Comment) error {
	if entity == nil {
		return errors.New("comment entity is nil")
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// FindByID 查询未删除的评论，连带作者。
func (r *CommentRepository) FindByID(ctx context.Context, id uint64) (*newsdomain.Comment, error) {
	var entity newsdomain.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// ListByNews 返回一篇文章下的全部评论，按 updated_at DESC, id DESC 排序，
// 客户端沿 parent_id 链自行还原楼层结构。
func (r *CommentRepository) ListByNews(ctx context.Context, newsID uint64) ([]newsdomain.Comment, error) {
	if newsID == 0 {
		return nil, errors.New("news id required")
	}
	var items []newsdomain.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("news_id = ? AND is_deleted = ?", newsID, false).
		Order("updated_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return items, nil
}

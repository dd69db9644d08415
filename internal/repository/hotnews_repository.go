package repository

import (
	"context"
	"fmt"

	newsdomain "newsportal/internal/domain/news"

	"gorm.io/gorm"
)

// HotNewsRepository 负责热门文章的持久化操作。
type HotNewsRepository struct {
	db *gorm.DB
}

// NewHotNewsRepository 构造热门文章仓储。
func NewHotNewsRepository(db *gorm.DB) *HotNewsRepository {
	return &HotNewsRepository{db: db}
}

// Create 写入热门文章记录。
func (r *HotNewsRepository) Create(ctx context.Context, entity *newsdomain.HotNews) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create hotnews: %w", err)
	}
	return nil
}

// FindByID 查找未删除的热门文章记录。
func (r *HotNewsRepository) FindByID(ctx context.Context, id uint64) (*newsdomain.HotNews, error) {
	var entity newsdomain.HotNews
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// ExistsByNewsID 判断某篇文章是否已被标记为热门。
func (r *HotNewsRepository) ExistsByNewsID(ctx context.Context, newsID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&newsdomain.HotNews{}).
		Where("news_id = ? AND is_deleted = ?", newsID, false).
		Count(&count).Error
	return count > 0, err
}

// UpdatePriority 修改优先级。
func (r *HotNewsRepository) UpdatePriority(ctx context.Context, id uint64, priority int) error {
	result := r.db.WithContext(ctx).
		Model(&newsdomain.HotNews{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("priority", priority)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete 逻辑删除热门文章记录。
func (r *HotNewsRepository) SoftDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&newsdomain.HotNews{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 返回全部热门文章，按 priority ASC, updated_at DESC 排序，连带文章与标签。
func (r *HotNewsRepository) List(ctx context.Context, limit int) ([]newsdomain.HotNews, error) {
	query := r.db.WithContext(ctx).
		Preload("News").
		Preload("News.Tag").
		Where("is_deleted = ?", false).
		Order("priority ASC, updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []newsdomain.HotNews
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list hotnews: %w", err)
	}
	return items, nil
}

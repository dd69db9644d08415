package repository

import (
	"context"
	"fmt"

	newsdomain "newsportal/internal/domain/news"

	"gorm.io/gorm"
)

// BannerRepository 负责轮播图的持久化操作。
type BannerRepository struct {
	db *gorm.DB
}

// NewBannerRepository 构造轮播图仓储。
func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

// Create 写入轮播图记录。
func (r *BannerRepository) Create(ctx context.Context, entity *newsdomain.Banner) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create banner: %w", err)
	}
	return nil
}

// FindByID 查找未删除的轮播图。
func (r *BannerRepository) FindByID(ctx context.Context, id uint64) (*newsdomain.Banner, error) {
	var entity newsdomain.Banner
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// ExistsByNewsID 判断某篇文章是否已有轮播图。
func (r *BannerRepository) ExistsByNewsID(ctx context.Context, newsID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&newsdomain.Banner{}).
		Where("news_id = ? AND is_deleted = ?", newsID, false).
		Count(&count).Error
	return count > 0, err
}

// Update 更新轮播图的大图地址与优先级。
func (r *BannerRepository) Update(ctx context.Context, id uint64, imageURL string, priority int) error {
	result := r.db.WithContext(ctx).
		Model(&newsdomain.Banner{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"image_url": imageURL,
			"priority":  priority,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete 逻辑删除轮播图。
func (r *BannerRepository) SoftDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&newsdomain.Banner{}).
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

// List 返回轮播图，按 priority ASC, updated_at DESC 排序，连带文章。
func (r *BannerRepository) List(ctx context.Context, limit int) ([]newsdomain.Banner, error) {
	query := r.db.WithContext(ctx).
		Preload("News").
		Where("is_deleted = ?", false).
		Order("priority ASC, updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []newsdomain.Banner
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	return items, nil
}

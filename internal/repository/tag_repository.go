package repository

import (
	"context"
	"errors"
	"fmt"

	newsdomain "newsportal/internal/domain/news"

	"gorm.io/gorm"
)

// TagWithCount 是带文章数的标签视图，供后台标签管理页使用。
type TagWithCount struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Nums int64  `json:"nums"`
}

// TagRepository 负责标签的持久化操作。
type TagRepository struct {
	db *gorm.DB
}

// NewTagRepository 构造标签仓储。
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindByID 查找未删除的标签。
func (r *TagRepository) FindByID(ctx context.Context, id uint64) (*newsdomain.Tag, error) {
	var tag newsdomain.Tag
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// ExistsByName 判断同名标签是否已存在。
func (r *TagRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&newsdomain.Tag{}).
		Where("name = ? AND is_deleted = ?", name, false).
		Count(&count).Error
	return count > 0, err
}

// GetOrCreate 按名称取回或创建标签，第二个返回值表示是否新建。
func (r *TagRepository) GetOrCreate(ctx context.Context, name string) (*newsdomain.Tag, bool, error) {
	var tag newsdomain.Tag
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_deleted = ?", name, false).
		First(&tag).Error
	if err == nil {
		return &tag, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find tag by name: %w", err)
	}

	tag = newsdomain.Tag{Name: name}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, false, fmt.Errorf("create tag: %w", err)
	}
	return &tag, true, nil
}

// Rename 更新标签名。
func (r *TagRepository) Rename(ctx context.Context, id uint64, name string) error {
	result := r.db.WithContext(ctx).
		Model(&newsdomain.Tag{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete 逻辑删除标签。
func (r *TagRepository) SoftDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&newsdomain.Tag{}).
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

// ListWithNewsCount 返回全部标签及其下文章数，按文章数降序、更新时间升序。
func (r *TagRepository) ListWithNewsCount(ctx context.Context) ([]TagWithCount, error) {
	var rows []TagWithCount
	err := r.db.WithContext(ctx).
		Model(&newsdomain.Tag{}).
		Select("tb_tag.id, tb_tag.name, COUNT(tb_news.id) AS nums").
		Joins("LEFT JOIN tb_news ON tb_news.tag_id = tb_tag.id AND tb_news.is_deleted = ?", false).
		Where("tb_tag.is_deleted = ?", false).
		Group("tb_tag.id, tb_tag.name").
		Order("nums DESC, tb_tag.updated_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list tags with count: %w", err)
	}
	return rows, nil
}

// List 返回全部未删除标签。
func (r *TagRepository) List(ctx context.Context) ([]newsdomain.Tag, error) {
	var tags []newsdomain.Tag
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("updated_at DESC, id DESC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

package repository

import (
	"context"
	"fmt"

	docdomain "newsportal/internal/domain/doc"

	"gorm.io/gorm"
)

// DocRepository 负责文档资料的持久化操作。
type DocRepository struct {
	db *gorm.DB
}

// NewDocRepository 构造文档仓储。
func NewDocRepository(db *gorm.DB) *DocRepository {
	return &DocRepository{db: db}
}

// Create 写入文档记录。
func (r *DocRepository) Create(ctx context.Context, entity *docdomain.Doc) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create doc: %w", err)
	}
	return nil
}

// Save 按主键整体更新文档。
func (r *DocRepository) Save(ctx context.Context, entity *docdomain.Doc) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("save doc: %w", err)
	}
	return nil
}

// FindByID 查找未删除的文档。
func (r *DocRepository) FindByID(ctx context.Context, id uint64) (*docdomain.Doc, error) {
	var entity docdomain.Doc
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// SoftDelete 逻辑删除文档。
func (r *DocRepository) SoftDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&docdomain.Doc{}).
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

// List 返回全部未删除文档，最新更新在前。
func (r *DocRepository) List(ctx context.Context) ([]docdomain.Doc, error) {
	var items []docdomain.Doc
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("updated_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list docs: %w", err)
	}
	return items, nil
}

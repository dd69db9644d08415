package repository

import (
	"context"
	"fmt"

	coursedomain "newsportal/internal/domain/course"

	"gorm.io/gorm"
)

// CourseRepository 负责课程及其关联实体的持久化操作。
type CourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository 构造课程仓储。
func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create 写入课程记录。
func (r *CourseRepository) Create(ctx context.Context, entity *coursedomain.Course) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Save 按主键整体更新课程。
func (r *CourseRepository) Save(ctx context.Context, entity *coursedomain.Course) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("save course: %w", err)
	}
	return nil
}

// FindByID 查找未删除的课程，连带教师与分类。
func (r *CourseRepository) FindByID(ctx context.Context, id uint64) (*coursedomain.Course, error) {
	var entity coursedomain.Course
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Category").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// SoftDelete 逻辑删除课程。
func (r *CourseRepository) SoftDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&coursedomain.Course{}).
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

// List 返回全部未删除课程，连带教师信息。
func (r *CourseRepository) List(ctx context.Context) ([]coursedomain.Course, error) {
	var items []coursedomain.Course
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("is_deleted = ?", false).
		Order("updated_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return items, nil
}

// ListTeachers 返回全部教师，供后台课程表单选择。
func (r *CourseRepository) ListTeachers(ctx context.Context) ([]coursedomain.Teacher, error) {
	var items []coursedomain.Teacher
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return items, nil
}

// ListCategories 返回全部课程分类。
func (r *CourseRepository) ListCategories(ctx context.Context) ([]coursedomain.Category, error) {
	var items []coursedomain.Category
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list course categories: %w", err)
	}
	return items, nil
}

package repository

import (
	"context"

	"newsportal/internal/domain/user"

	"gorm.io/gorm"
)

// UserRepository 封装用户相关的数据访问方法，基于 GORM 实现。
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储实例，接收共享的 *gorm.DB。
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 写入用户记录。
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// FindByID 根据主键查找未删除的用户。
func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByAccount 通过用户名或手机号查找用户，登录时两者皆可。
func (r *UserRepository) FindByAccount(ctx context.Context, account string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where(r.db.Where("username = ?", account).Or("mobile = ?", account)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountByUsername 统计用户名出现次数，用于唯一性探测。
func (r *UserRepository) CountByUsername(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("username = ? AND is_deleted = ?", username, false).
		Count(&count).Error
	return count, err
}

// CountByMobile 统计手机号出现次数，用于唯一性探测。
func (r *UserRepository) CountByMobile(ctx context.Context, mobile string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("mobile = ? AND is_deleted = ?", mobile, false).
		Count(&count).Error
	return count, err
}

// ExistsByUsername 判断用户名是否已被占用。
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	count, err := r.CountByUsername(ctx, username)
	return count > 0, err
}

// ExistsByMobile 判断手机号是否已被占用。
func (r *UserRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	count, err := r.CountByMobile(ctx, mobile)
	return count > 0, err
}

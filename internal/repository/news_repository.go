package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	newsdomain "newsportal/internal/domain/news"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsListFilter 描述后台文章列表的可选过滤条件，零值字段不参与过滤。
type NewsListFilter struct {
	StartTime  *time.Time // 按 updated_at 过滤的起点
	EndTime    *time.Time // 按 updated_at 过滤的终点
	AuthorName string     // 作者用户名子串，大小写不敏感
	Title      string     // 标题子串，大小写不敏感
	TagID      uint64     // 精确标签，0 表示不过滤
	Page       int
	PageSize   int
}

// NewsRepository 负责文章的持久化操作。
type NewsRepository struct {
	db *gorm.DB
}

// NewNewsRepository 构造文章仓储。
func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// Create 写入文章记录。
func (r *NewsRepository) Create(ctx context.Context, entity *newsdomain.News) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create news: %w", err)
	}
	return nil
}

// Save 按主键整体更新文章。
func (r *NewsRepository) Save(ctx context.Context, entity *newsdomain.News) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("save news: %w", err)
	}
	return nil
}

// FindByID 查找未删除的文章，连带作者与标签。
func (r *NewsRepository) FindByID(ctx context.Context, id uint64) (*newsdomain.News, error) {
	var entity newsdomain.News
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Preload("Author").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// SoftDelete 逻辑删除文章。
func (r *NewsRepository) SoftDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&newsdomain.News{}).
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

// IncrementClicks 点击量加一，阅读页每次访问调用。
func (r *NewsRepository) IncrementClicks(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&newsdomain.News{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumn("clicks", gorm.Expr("clicks + 1")).Error
}

// List 执行后台文章列表查询：在 is_deleted=false 的基底上逐个 AND 过滤条件，
// 统计总数后把页码钳位到 [1, last]，返回当前页数据、总数和生效页码。
func (r *NewsRepository) List(ctx context.Context, filter NewsListFilter) ([]newsdomain.News, int64, int, error) {
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	query := r.db.WithContext(ctx).
		Model(&newsdomain.News{}).
		Joins("LEFT JOIN db_users ON db_users.id = tb_news.author_id").
		Where("tb_news.is_deleted = ?", false)

	if filter.StartTime != nil {
		query = query.Where("tb_news.updated_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("tb_news.updated_at < ?", *filter.EndTime)
	}
	if filter.AuthorName != "" {
		query = query.Where("LOWER(db_users.username) LIKE ?", "%"+strings.ToLower(filter.AuthorName)+"%")
	}
	if filter.Title != "" {
		query = query.Where("LOWER(tb_news.title) LIKE ?", "%"+strings.ToLower(filter.Title)+"%")
	}
	if filter.TagID > 0 {
		query = query.Where("tb_news.tag_id = ?", filter.TagID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("count news: %w", err)
	}

	page := clampPage(filter.Page, total, pageSize)

	var items []newsdomain.News
	err := query.
		Preload("Tag").
		Preload("Author").
		Order("tb_news.updated_at DESC, tb_news.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, 0, fmt.Errorf("list news: %w", err)
	}

	return items, total, page, nil
}

// ListPublished 返回前台某标签下的文章分页，tagID=0 表示不过滤标签。
// 标签下没有内容时返回空页，而不是回落到全部文章。
func (r *NewsRepository) ListPublished(ctx context.Context, tagID uint64, page, pageSize int) ([]newsdomain.News, int64, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}

	query := r.db.WithContext(ctx).
		Model(&newsdomain.News{}).
		Where("is_deleted = ?", false)
	if tagID > 0 {
		query = query.Where("tag_id = ?", tagID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count published news: %w", err)
	}

	var items []newsdomain.News
	err := query.
		Preload("Tag").
		Preload("Author").
		Order("updated_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list published news: %w", err)
	}

	return items, total, nil
}

// Search 走 MySQL 全文索引查询标题、摘要、正文，按相关度返回。
func (r *NewsRepository) Search(ctx context.Context, keyword string, page, pageSize int) ([]newsdomain.News, int64, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}

	match := "MATCH(title, digest, content) AGAINST (? IN NATURAL LANGUAGE MODE)"
	base := r.db.WithContext(ctx).
		Model(&newsdomain.News{}).
		Where("is_deleted = ?", false).
		Where(match, keyword)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count search hits: %w", err)
	}

	var items []newsdomain.News
	err := base.
		Preload("Tag").
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                match + " DESC",
			Vars:               []interface{}{keyword},
			WithoutParentheses: true,
		}}).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("search news: %w", err)
	}

	return items, total, nil
}

// clampPage 把页码限制在 [1, last]，总数为零时固定为 1。
func clampPage(page int, total int64, pageSize int) int {
	if page < 1 {
		return 1
	}
	last := int((total + int64(pageSize) - 1) / int64(pageSize))
	if last < 1 {
		last = 1
	}
	if page > last {
		return last
	}
	return page
}

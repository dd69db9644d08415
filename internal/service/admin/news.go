package admin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	newsdomain "newsportal/internal/domain/news"
	"newsportal/internal/repository"

	"gorm.io/gorm"
)

// dateLayout 是后台文章列表日期过滤框使用的格式。
const dateLayout = "2006/01/02"

const timeLayout = "2006-01-02 15:04:05"

// NewsQuery 是后台文章列表的原始查询串，字段都按原样来自 URL。
type NewsQuery struct {
	StartDate  string
	EndDate    string
	Title      string
	AuthorName string
	TagID      string
	Page       string
}

// NewsRow 是后台列表里的一行。
type NewsRow struct {
	NewsID     uint64 `json:"news_id"`
	Title      string `json:"title"`
	TagName    string `json:"tag_name"`
	Author     string `json:"author"`
	Clicks     uint   `json:"clicks"`
	UpdateTime string `json:"update_time"`
}

// NewsList 是后台文章列表页的完整数据：当前页、分页信息、
// 回显用的过滤值以及翻页链接要带上的查询串。
type NewsList struct {
	Items      []NewsRow `json:"news_list"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`

	StartDate  string `json:"start_time"`
	EndDate    string `json:"end_time"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	TagID      uint64 `json:"tag_id"`

	// OtherParam 是除 page 外全部生效过滤条件的查询串，翻页时原样携带。
	OtherParam string `json:"other_param"`
}

// ListNews 组装后台文章列表：解析日期与标签过滤，执行分页查询，
// 并把生效的过滤条件编码成翻页查询串。无法解析的日期记日志后忽略。
func (s *Service) ListNews(ctx context.Context, query NewsQuery) (*NewsList, error) {
	filter := repository.NewsListFilter{
		Title:      strings.TrimSpace(query.Title),
		AuthorName: strings.TrimSpace(query.AuthorName),
		PageSize:   s.opts.PageSize,
	}

	out := &NewsList{
		Title:      filter.Title,
		AuthorName: filter.AuthorName,
	}

	if raw := strings.TrimSpace(query.StartDate); raw != "" {
		if t, err := time.ParseInLocation(dateLayout, raw, time.Local); err == nil {
			filter.StartTime = &t
			out.StartDate = t.Format(dateLayout)
		} else {
			s.logger.Warnw("ignore bad start date", "value", raw)
		}
	}
	if raw := strings.TrimSpace(query.EndDate); raw != "" {
		if t, err := time.ParseInLocation(dateLayout, raw, time.Local); err == nil {
			// 终点按整天含端点处理。
			end := t.Add(24 * time.Hour)
			filter.EndTime = &end
			out.EndDate = t.Format(dateLayout)
		} else {
			s.logger.Warnw("ignore bad end date", "value", raw)
		}
	}
	if raw := strings.TrimSpace(query.TagID); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.TagID = id
			out.TagID = id
		} else {
			s.logger.Warnw("ignore bad tag id", "value", raw)
		}
	}
	if raw := strings.TrimSpace(query.Page); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			filter.Page = p
		}
	}

	items, total, page, err := s.news.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}

	out.Items = make([]NewsRow, 0, len(items))
	for i := range items {
		n := &items[i]
		row := NewsRow{
			NewsID:     n.ID,
			Title:      n.Title,
			Clicks:     n.Clicks,
			UpdateTime: n.UpdatedAt.Format(timeLayout),
		}
		if n.Tag != nil {
			row.TagName = n.Tag.Name
		}
		if n.Author != nil {
			row.Author = n.Author.Username
		}
		out.Items = append(out.Items, row)
	}
	out.Total = total
	out.Page = page
	out.TotalPages = totalPages(total, s.opts.PageSize)
	out.OtherParam = encodeOtherParam(out)
	return out, nil
}

// encodeOtherParam 把生效的过滤条件编码回查询串，日期沿用表单格式。
func encodeOtherParam(list *NewsList) string {
	values := url.Values{}
	if list.StartDate != "" {
		values.Set("start_time", list.StartDate)
	}
	if list.EndDate != "" {
		values.Set("end_time", list.EndDate)
	}
	if list.Title != "" {
		values.Set("title", list.Title)
	}
	if list.AuthorName != "" {
		values.Set("author_name", list.AuthorName)
	}
	if list.TagID != 0 {
		values.Set("tag_id", strconv.FormatUint(list.TagID, 10))
	}
	return values.Encode()
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// NewsParams 是发布或编辑文章的表单。
type NewsParams struct {
	Title    string `json:"title"`
	Digest   string `json:"digest"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	TagName  string `json:"tag_name"`
	AuthorID uint64 `json:"-"`
}

// PublishNews 发布文章，标签按名称取回或创建。
func (s *Service) PublishNews(ctx context.Context, params NewsParams) (*newsdomain.News, error) {
	if strings.TrimSpace(params.Title) == "" || strings.TrimSpace(params.Content) == "" {
		return nil, ErrEmptyField
	}

	n := &newsdomain.News{
		Title:    params.Title,
		Digest:   params.Digest,
		Content:  params.Content,
		ImageURL: params.ImageURL,
		AuthorID: &params.AuthorID,
	}
	if name := strings.TrimSpace(params.TagName); name != "" {
		tag, _, err := s.tags.GetOrCreate(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve tag: %w", err)
		}
		n.TagID = &tag.ID
	}

	if err := s.news.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}
	s.logger.Infow("news published", "news_id", n.ID, "title", n.Title)
	return n, nil
}

// EditNews 更新文章内容，标签同样按名称解析。
func (s *Service) EditNews(ctx context.Context, newsID uint64, params NewsParams) (*newsdomain.News, error) {
	if strings.TrimSpace(params.Title) == "" || strings.TrimSpace(params.Content) == "" {
		return nil, ErrEmptyField
	}

	n, err := s.news.FindByID(ctx, newsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find news: %w", err)
	}

	n.Title = params.Title
	n.Digest = params.Digest
	n.Content = params.Content
	if params.ImageURL != "" {
		n.ImageURL = params.ImageURL
	}
	if name := strings.TrimSpace(params.TagName); name != "" {
		tag, _, err := s.tags.GetOrCreate(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve tag: %w", err)
		}
		n.TagID = &tag.ID
	}

	if err := s.news.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("save news: %w", err)
	}
	s.logger.Infow("news edited", "news_id", n.ID)
	return n, nil
}

// DeleteNews 逻辑删除文章。
func (s *Service) DeleteNews(ctx context.Context, newsID uint64) error {
	if err := s.news.SoftDelete(ctx, newsID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete news: %w", err)
	}
	s.logger.Infow("news deleted", "news_id", newsID)
	return nil
}

// GetNews 取回一篇文章供编辑页回显。
func (s *Service) GetNews(ctx context.Context, newsID uint64) (*newsdomain.News, error) {
	n, err := s.news.FindByID(ctx, newsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find news: %w", err)
	}
	return n, nil
}

// PickNews 按标签分页列出文章，供热门/轮播图表单选择目标文章。
func (s *Service) PickNews(ctx context.Context, tagID uint64, page int) ([]NewsRow, int64, error) {
	if page < 1 {
		page = 1
	}
	items, total, err := s.news.ListPublished(ctx, tagID, page, s.opts.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("pick news: %w", err)
	}
	rows := make([]NewsRow, 0, len(items))
	for i := range items {
		n := &items[i]
		row := NewsRow{NewsID: n.ID, Title: n.Title, Clicks: n.Clicks, UpdateTime: n.UpdatedAt.Format(timeLayout)}
		if n.Tag != nil {
			row.TagName = n.Tag.Name
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	newsdomain "newsportal/internal/domain/news"

	"gorm.io/gorm"
)

// HotRow 是后台热门文章列表的一行。
type HotRow struct {
	HotID    uint64 `json:"hotnews_id"`
	NewsID   uint64 `json:"news_id"`
	Title    string `json:"title"`
	TagName  string `json:"tag_name"`
	Priority int    `json:"priority"`
}

// ListHotNews 返回全部热门文章，优先级小的在前。
func (s *Service) ListHotNews(ctx context.Context) ([]HotRow, error) {
	items, err := s.hot.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	rows := make([]HotRow, 0, len(items))
	for _, h := range items {
		row := HotRow{HotID: h.ID, NewsID: h.NewsID, Priority: h.Priority}
		if h.News != nil {
			row.Title = h.News.Title
			if h.News.Tag != nil {
				row.TagName = h.News.Tag.Name
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AddHotNews 把一篇文章标记为热门，重复标记报 DATAEXIST。
func (s *Service) AddHotNews(ctx context.Context, newsID uint64, priority int) (*newsdomain.HotNews, error) {
	if !newsdomain.ValidHotNewsPriority(priority) {
		return nil, ErrBadPriority
	}
	if _, err := s.news.FindByID(ctx, newsID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find news: %w", err)
	}

	exists, err := s.hot.ExistsByNewsID(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("check hotnews: %w", err)
	}
	if exists {
		return nil, ErrHotExists
	}

	h := &newsdomain.HotNews{NewsID: newsID, Priority: priority}
	if err := s.hot.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("create hotnews: %w", err)
	}
	s.logger.Infow("hotnews added", "news_id", newsID, "priority", priority)
	return h, nil
}

// UpdateHotNewsPriority 调整热门文章优先级，值不变时报未修改。
func (s *Service) UpdateHotNewsPriority(ctx context.Context, hotID uint64, priority int) error {
	if !newsdomain.ValidHotNewsPriority(priority) {
		return ErrBadPriority
	}

	h, err := s.hot.FindByID(ctx, hotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find hotnews: %w", err)
	}
	if h.Priority == priority {
		return ErrUnchanged
	}

	if err := s.hot.UpdatePriority(ctx, hotID, priority); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update hotnews priority: %w", err)
	}
	s.logger.Infow("hotnews priority updated", "hotnews_id", hotID, "priority", priority)
	return nil
}

// DeleteHotNews 把文章移出热门列表。
func (s *Service) DeleteHotNews(ctx context.Context, hotID uint64) error {
	if err := s.hot.SoftDelete(ctx, hotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete hotnews: %w", err)
	}
	s.logger.Infow("hotnews removed", "hotnews_id", hotID)
	return nil
}

// BannerRow 是后台轮播图列表的一行。
type BannerRow struct {
	BannerID uint64 `json:"banner_id"`
	NewsID   uint64 `json:"news_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Priority int    `json:"priority"`
}

// ListBanners 返回全部轮播图，优先级小的在前。
func (s *Service) ListBanners(ctx context.Context) ([]BannerRow, error) {
	items, err := s.banners.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	rows := make([]BannerRow, 0, len(items))
	for _, b := range items {
		row := BannerRow{BannerID: b.ID, NewsID: b.NewsID, ImageURL: b.ImageURL, Priority: b.Priority}
		if b.News != nil {
			row.Title = b.News.Title
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AddBanner 为一篇文章配置轮播图，重复配置报 DATAEXIST。
func (s *Service) AddBanner(ctx context.Context, newsID uint64, imageURL string, priority int) (*newsdomain.Banner, error) {
	if !newsdomain.ValidBannerPriority(priority) {
		return nil, ErrBadPriority
	}
	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrEmptyField
	}
	if _, err := s.news.FindByID(ctx, newsID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find news: %w", err)
	}

	exists, err := s.banners.ExistsByNewsID(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("check banner: %w", err)
	}
	if exists {
		return nil, ErrBannerExists
	}

	b := &newsdomain.Banner{NewsID: newsID, ImageURL: imageURL, Priority: priority}
	if err := s.banners.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}
	s.logger.Infow("banner added", "news_id", newsID, "priority", priority)
	return b, nil
}

// UpdateBanner 更新轮播图的大图与优先级。图片地址为空表示沿用旧图；
// 两个字段都没变化时报未修改。
func (s *Service) UpdateBanner(ctx context.Context, bannerID uint64, imageURL string, priority int) error {
	if !newsdomain.ValidBannerPriority(priority) {
		return ErrBadPriority
	}

	b, err := s.banners.FindByID(ctx, bannerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find banner: %w", err)
	}

	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		imageURL = b.ImageURL
	}
	if b.ImageURL == imageURL && b.Priority == priority {
		return ErrUnchanged
	}

	if err := s.banners.Update(ctx, bannerID, imageURL, priority); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update banner: %w", err)
	}
	s.logger.Infow("banner updated", "banner_id", bannerID, "priority", priority)
	return nil
}

// DeleteBanner 下线一张轮播图。
func (s *Service) DeleteBanner(ctx context.Context, bannerID uint64) error {
	if err := s.banners.SoftDelete(ctx, bannerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete banner: %w", err)
	}
	s.logger.Infow("banner removed", "banner_id", bannerID)
	return nil
}

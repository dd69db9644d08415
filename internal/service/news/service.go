package news

import (
	"context"
	"errors"
	"fmt"
	"strings"

	newsdomain "newsportal/internal/domain/news"
	"newsportal/internal/infra/logger"
	"newsportal/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNewsNotFound 表示文章不存在或已删除，对应 NODATA。
	ErrNewsNotFound = errors.New("文章不存在")
	// ErrParentNotFound 表示父评论不存在，对应 NODATA。
	ErrParentNotFound = errors.New("父评论不存在")
	// ErrParentMismatch 表示父评论挂在别的文章下，对应 PARAMERR。
	ErrParentMismatch = errors.New("父评论与文章不匹配")
	// ErrEmptyContent 表示评论内容为空，对应 PARAMERR。
	ErrEmptyContent = errors.New("评论内容不能为空")
	// ErrCommentDepth 表示评论链超出序列化深度上限。
	ErrCommentDepth = errors.New("EXCEEDED_DEPTH")
)

const timeLayout = "2006-01-02 15:04:05"

// Options 描述门户首页与评论序列化的展示参数。
type Options struct {
	HotNewsCount    int
	BannerCount     int
	PageSize        int
	SearchPageSize  int
	MaxCommentDepth int
}

// Service 提供门户侧的文章浏览、评论与搜索。
type Service struct {
	news     *repository.NewsRepository
	comments *repository.CommentRepository
	hot      *repository.HotNewsRepository
	banners  *repository.BannerRepository
	tags     *repository.TagRepository
	opts     Options
	logger   *zap.SugaredLogger
}

// NewService 构造门户服务。
func NewService(
	news *repository.NewsRepository,
	comments *repository.CommentRepository,
	hot *repository.HotNewsRepository,
	banners *repository.BannerRepository,
	tags *repository.TagRepository,
	opts Options,
) *Service {
	if opts.HotNewsCount <= 0 {
		opts.HotNewsCount = 3
	}
	if opts.BannerCount <= 0 {
		opts.BannerCount = 6
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.SearchPageSize <= 0 {
		opts.SearchPageSize = opts.PageSize
	}
	if opts.MaxCommentDepth <= 0 {
		opts.MaxCommentDepth = 32
	}
	return &Service{
		news:     news,
		comments: comments,
		hot:      hot,
		banners:  banners,
		tags:     tags,
		opts:     opts,
		logger:   logger.S().With("component", "news.service"),
	}
}

// NewsCard 是列表页的文章摘要视图。
type NewsCard struct {
	NewsID     uint64 `json:"news_id"`
	Title      string `json:"title"`
	Digest     string `json:"digest"`
	ImageURL   string `json:"image_url"`
	Clicks     uint   `json:"clicks"`
	TagName    string `json:"tag_name"`
	Author     string `json:"author"`
	UpdateTime string `json:"update_time"`
}

// BannerCard 是首页轮播图视图。
type BannerCard struct {
	BannerID uint64 `json:"banner_id"`
	ImageURL string `json:"image_url"`
	NewsID   uint64 `json:"news_id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

// TagItem 是首页的标签导航项。
type TagItem struct {
	TagID uint64 `json:"tag_id"`
	Name  string `json:"name"`
}

// IndexData 是门户首页聚合数据。
type IndexData struct {
	HotNews []NewsCard   `json:"hot_news"`
	Banners []BannerCard `json:"banners"`
	Tags    []TagItem    `json:"tags"`
}

// Index 聚合首页需要的热门文章、轮播图与标签导航。
func (s *Service) Index(ctx context.Context) (*IndexData, error) {
	hot, err := s.hot.List(ctx, s.opts.HotNewsCount)
	if err != nil {
		return nil, fmt.Errorf("list hot news: %w", err)
	}
	banners, err := s.banners.List(ctx, s.opts.BannerCount)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	data := &IndexData{
		HotNews: make([]NewsCard, 0, len(hot)),
		Banners: make([]BannerCard, 0, len(banners)),
		Tags:    make([]TagItem, 0, len(tags)),
	}
	for _, h := range hot {
		if h.News == nil {
			continue
		}
		data.HotNews = append(data.HotNews, newsCard(h.News))
	}
	for _, b := range banners {
		card := BannerCard{BannerID: b.ID, ImageURL: b.ImageURL, NewsID: b.NewsID, Priority: b.Priority}
		if b.News != nil {
			card.Title = b.News.Title
		}
		data.Banners = append(data.Banners, card)
	}
	for _, t := range tags {
		data.Tags = append(data.Tags, TagItem{TagID: t.ID, Name: t.Name})
	}
	return data, nil
}

// Banners 单独返回轮播图列表，供前端轮播组件异步加载。
func (s *Service) Banners(ctx context.Context) ([]BannerCard, error) {
	banners, err := s.banners.List(ctx, s.opts.BannerCount)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	cards := make([]BannerCard, 0, len(banners))
	for _, b := range banners {
		card := BannerCard{BannerID: b.ID, ImageURL: b.ImageURL, NewsID: b.NewsID, Priority: b.Priority}
		if b.News != nil {
			card.Title = b.News.Title
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// NewsPage 是按标签分页的文章列表。
type NewsPage struct {
	Items      []NewsCard `json:"news_list"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// ListByTag 返回某个标签下已发布文章的一页。
// 标签下没有文章时返回空页，不回退到全量列表。
func (s *Service) ListByTag(ctx context.Context, tagID uint64, page int) (*NewsPage, error) {
	if page < 1 {
		page = 1
	}
	items, total, err := s.news.ListPublished(ctx, tagID, page, s.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return s.newsPage(items, total, page, s.opts.PageSize), nil
}

func (s *Service) newsPage(items []newsdomain.News, total int64, page, pageSize int) *NewsPage {
	out := &NewsPage{
		Items:      make([]NewsCard, 0, len(items)),
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, pageSize),
	}
	for i := range items {
		out.Items = append(out.Items, newsCard(&items[i]))
	}
	return out
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func newsCard(n *newsdomain.News) NewsCard {
	card := NewsCard{
		NewsID:     n.ID,
		Title:      n.Title,
		Digest:     n.Digest,
		ImageURL:   n.ImageURL,
		Clicks:     n.Clicks,
		UpdateTime: n.UpdatedAt.Format(timeLayout),
	}
	if n.Tag != nil {
		card.TagName = n.Tag.Name
	}
	if n.Author != nil {
		card.Author = n.Author.Username
	}
	return card
}

// NewsDetail 是文章详情视图，附带完整评论区。
type NewsDetail struct {
	NewsCard
	Content      string         `json:"content"`
	Comments     []*CommentView `json:"comments"`
	CommentCount int            `json:"comment_count"`
}

// Detail 返回文章详情并自增点击量。点击量自增失败只记日志，不影响阅读。
func (s *Service) Detail(ctx context.Context, newsID uint64) (*NewsDetail, error) {
	n, err := s.news.FindByID(ctx, newsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("find news: %w", err)
	}

	if err := s.news.IncrementClicks(ctx, newsID); err != nil {
		s.logger.Warnw("increment clicks failed", "news_id", newsID, "error", err)
	} else {
		n.Clicks++
	}

	views, err := s.commentViews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	return &NewsDetail{
		NewsCard:     newsCard(n),
		Content:      n.Content,
		Comments:     views,
		CommentCount: len(views),
	}, nil
}

// CommentParams 是发表评论的输入。
type CommentParams struct {
	NewsID   uint64  `json:"news_id"`
	AuthorID uint64  `json:"-"`
	Content  string  `json:"content"`
	ParentID *uint64 `json:"parent_id"`
}

// AddComment 发表评论或楼中楼回复，父评论必须挂在同一篇文章下。
func (s *Service) AddComment(ctx context.Context, params CommentParams) (*CommentView, error) {
	if strings.TrimSpace(params.Content) == "" {
		return nil, ErrEmptyContent
	}

	if _, err := s.news.FindByID(ctx, params.NewsID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("find news: %w", err)
	}

	if params.ParentID != nil {
		parent, err := s.comments.FindByID(ctx, *params.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("find parent comment: %w", err)
		}
		if parent.NewsID != params.NewsID {
			return nil, ErrParentMismatch
		}
	}

	c := &newsdomain.Comment{
		Content:  params.Content,
		AuthorID: &params.AuthorID,
		NewsID:   params.NewsID,
		ParentID: params.ParentID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	// 重新加载整条评论链以便序列化嵌套的父级。
	all, err := s.comments.ListByNews(ctx, params.NewsID)
	if err != nil {
		return nil, fmt.Errorf("reload comments: %w", err)
	}
	arena := commentArena(all)
	view, err := s.buildView(arena, c.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("comment created", "news_id", params.NewsID, "comment_id", c.ID)
	return view, nil
}

// CommentView 是嵌套序列化后的评论视图，parent 仅在存在父评论时出现。
type CommentView struct {
	CommentID  uint64       `json:"comment_id"`
	NewsID     uint64       `json:"news_id"`
	Content    string       `json:"content"`
	Author     string       `json:"author"`
	UpdateTime string       `json:"update_time"`
	Parent     *CommentView `json:"parent"`
}

// commentViews 加载一篇文章的全部评论并序列化成倒序列表。
func (s *Service) commentViews(ctx context.Context, newsID uint64) ([]*CommentView, error) {
	all, err := s.comments.ListByNews(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	arena := commentArena(all)

	views := make([]*CommentView, 0, len(all))
	for i := range all {
		v, err := s.buildView(arena, all[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func commentArena(all []newsdomain.Comment) map[uint64]*newsdomain.Comment {
	arena := make(map[uint64]*newsdomain.Comment, len(all))
	for i := range all {
		arena[all[i].ID] = &all[i]
	}
	return arena
}

// buildView 沿父链迭代展开评论，深度超限时返回 ErrCommentDepth
// 而不是栈溢出。恶意构造的超深评论链由此被挡在序列化层。
func (s *Service) buildView(arena map[uint64]*newsdomain.Comment, id uint64) (*CommentView, error) {
	chain := make([]*newsdomain.Comment, 0, 4)
	cur, ok := arena[id]
	for ok {
		if len(chain) >= s.opts.MaxCommentDepth {
			return nil, ErrCommentDepth
		}
		chain = append(chain, cur)
		if cur.ParentID == nil {
			break
		}
		cur, ok = arena[*cur.ParentID]
	}
	if len(chain) == 0 {
		return nil, ErrParentNotFound
	}

	// 自顶向下组装，链尾是最老的祖先。
	var parent *CommentView
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		v := &CommentView{
			CommentID:  c.ID,
			NewsID:     c.NewsID,
			Content:    c.Content,
			UpdateTime: c.UpdatedAt.Format(timeLayout),
			Parent:     parent,
		}
		if c.Author != nil {
			v.Author = c.Author.Username
		}
		parent = v
	}
	return parent, nil
}

// Search 全文检索文章，关键词为空时回退到热门文章列表。
func (s *Service) Search(ctx context.Context, keyword string, page int) (*NewsPage, error) {
	if page < 1 {
		page = 1
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		hot, err := s.hot.List(ctx, s.opts.HotNewsCount)
		if err != nil {
			return nil, fmt.Errorf("fallback hot news: %w", err)
		}
		out := &NewsPage{Items: make([]NewsCard, 0, len(hot)), Page: 1, Total: int64(len(hot))}
		out.TotalPages = totalPages(out.Total, s.opts.SearchPageSize)
		for _, h := range hot {
			if h.News == nil {
				continue
			}
			out.Items = append(out.Items, newsCard(h.News))
		}
		return out, nil
	}

	items, total, err := s.news.Search(ctx, keyword, page, s.opts.SearchPageSize)
	if err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	return s.newsPage(items, total, page, s.opts.SearchPageSize), nil
}

package news

import (
	"context"
	"errors"
	"testing"

	newsdomain "newsportal/internal/domain/news"
	"newsportal/internal/domain/user"
	"newsportal/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&user.User{}, &newsdomain.Tag{}, &newsdomain.News{},
		&newsdomain.Comment{}, &newsdomain.HotNews{}, &newsdomain.Banner{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := NewService(
		repository.NewNewsRepository(db),
		repository.NewCommentRepository(db),
		repository.NewHotNewsRepository(db),
		repository.NewBannerRepository(db),
		repository.NewTagRepository(db),
		Options{HotNewsCount: 3, BannerCount: 6, PageSize: 5, MaxCommentDepth: 4},
	)
	return svc, db
}

func seedNews(t *testing.T, db *gorm.DB, title string, tagID *uint64) *newsdomain.News {
	t.Helper()
	n := &newsdomain.News{Title: title, Digest: title + " digest", Content: title + " content", TagID: tagID}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("seed news: %v", err)
	}
	return n
}

func seedUser(t *testing.T, db *gorm.DB, username string) *user.User {
	t.Helper()
	u := &user.User{Username: username, Mobile: "138" + username[:1] + "0000000", PasswordHash: "x"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestIndexOrdering(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	n1 := seedNews(t, db, "first", nil)
	n2 := seedNews(t, db, "second", nil)
	n3 := seedNews(t, db, "third", nil)

	for _, h := range []newsdomain.HotNews{
		{NewsID: n1.ID, Priority: 3},
		{NewsID: n2.ID, Priority: 1},
		{NewsID: n3.ID, Priority: 2},
	} {
		h := h
		if err := db.Create(&h).Error; err != nil {
			t.Fatalf("seed hotnews: %v", err)
		}
	}
	if err := db.Create(&newsdomain.Banner{NewsID: n1.ID, ImageURL: "http://img/1.png", Priority: 2}).Error; err != nil {
		t.Fatalf("seed banner: %v", err)
	}

	data, err := svc.Index(ctx)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(data.HotNews) != 3 {
		t.Fatalf("hot news count = %d", len(data.HotNews))
	}
	// priority 小的在前。
	if data.HotNews[0].Title != "second" || data.HotNews[1].Title != "third" {
		t.Fatalf("hot news order wrong: %v", data.HotNews)
	}
	if len(data.Banners) != 1 || data.Banners[0].Title != "first" {
		t.Fatalf("banner view wrong: %+v", data.Banners)
	}
}

func TestListByTagEmptyTagIsEmptyPage(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	tag := &newsdomain.Tag{Name: "科技"}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	empty := &newsdomain.Tag{Name: "体育"}
	if err := db.Create(empty).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	seedNews(t, db, "tech news", &tag.ID)

	page, err := svc.ListByTag(ctx, tag.ID, 1)
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("tagged page wrong: %+v", page)
	}

	// 空标签返回空页，不回退到全量列表。
	page, err = svc.ListByTag(ctx, empty.ID, 1)
	if err != nil {
		t.Fatalf("list empty tag: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("empty tag should yield empty page: %+v", page)
	}
}

func TestDetailIncrementsClicks(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNews(t, db, "clicky", nil)

	d, err := svc.Detail(ctx, n.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Clicks != 1 {
		t.Fatalf("clicks = %d, want 1", d.Clicks)
	}

	var stored newsdomain.News
	if err := db.First(&stored, n.ID).Error; err != nil {
		t.Fatalf("load news: %v", err)
	}
	if stored.Clicks != 1 {
		t.Fatalf("stored clicks = %d, want 1", stored.Clicks)
	}

	if _, err := svc.Detail(ctx, 9999); !errors.Is(err, ErrNewsNotFound) {
		t.Fatalf("expected ErrNewsNotFound, got %v", err)
	}
}

func TestCommentChainSerialization(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNews(t, db, "threaded", nil)
	u := seedUser(t, db, "lisi")

	c1, err := svc.AddComment(ctx, CommentParams{NewsID: n.ID, AuthorID: u.ID, Content: "楼主沙发"})
	if err != nil {
		t.Fatalf("add root comment: %v", err)
	}
	if c1.Parent != nil {
		t.Fatalf("root comment parent should be nil")
	}
	if c1.Author != "lisi" {
		t.Fatalf("author = %q", c1.Author)
	}

	c2, err := svc.AddComment(ctx, CommentParams{NewsID: n.ID, AuthorID: u.ID, Content: "回复楼主", ParentID: &c1.CommentID})
	if err != nil {
		t.Fatalf("add reply: %v", err)
	}
	if c2.Parent == nil || c2.Parent.CommentID != c1.CommentID {
		t.Fatalf("reply parent wrong: %+v", c2.Parent)
	}
	if c2.Parent.Parent != nil {
		t.Fatalf("grandparent should be nil")
	}

	d, err := svc.Detail(ctx, n.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.CommentCount != 2 {
		t.Fatalf("comment count = %d", d.CommentCount)
	}
}

func TestCommentParentChecks(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n1 := seedNews(t, db, "one", nil)
	n2 := seedNews(t, db, "two", nil)
	u := seedUser(t, db, "wangwu")

	c1, err := svc.AddComment(ctx, CommentParams{NewsID: n1.ID, AuthorID: u.ID, Content: "first"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	// 父评论属于另一篇文章。
	_, err = svc.AddComment(ctx, CommentParams{NewsID: n2.ID, AuthorID: u.ID, Content: "cross", ParentID: &c1.CommentID})
	if !errors.Is(err, ErrParentMismatch) {
		t.Fatalf("expected ErrParentMismatch, got %v", err)
	}

	missing := uint64(9999)
	_, err = svc.AddComment(ctx, CommentParams{NewsID: n1.ID, AuthorID: u.ID, Content: "orphan", ParentID: &missing})
	if !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}

	_, err = svc.AddComment(ctx, CommentParams{NewsID: n1.ID, AuthorID: u.ID, Content: "   "})
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestCommentDepthBound(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNews(t, db, "deep", nil)
	u := seedUser(t, db, "zhaoliu")

	// MaxCommentDepth 配成 4，堆一条 5 层的链。
	var parentID *uint64
	var lastErr error
	for i := 0; i < 5; i++ {
		v, err := svc.AddComment(ctx, CommentParams{NewsID: n.ID, AuthorID: u.ID, Content: "层", ParentID: parentID})
		if err != nil {
			lastErr = err
			break
		}
		id := v.CommentID
		parentID = &id
	}
	if !errors.Is(lastErr, ErrCommentDepth) {
		t.Fatalf("expected ErrCommentDepth, got %v", lastErr)
	}
}

func TestSearchEmptyKeywordFallsBackToHot(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	n := seedNews(t, db, "hot story", nil)
	if err := db.Create(&newsdomain.HotNews{NewsID: n.ID, Priority: 1}).Error; err != nil {
		t.Fatalf("seed hotnews: %v", err)
	}

	page, err := svc.Search(ctx, "   ", 1)
	if err != nil {
		t.Fatalf("search fallback: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "hot story" {
		t.Fatalf("fallback page wrong: %+v", page)
	}
}

func TestSearchUsesOwnPageSize(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	// 搜索页容量独立于标签列表页。
	svc.opts.SearchPageSize = 2
	for i, title := range []string{"s1", "s2", "s3"} {
		n := seedNews(t, db, title, nil)
		if err := db.Create(&newsdomain.HotNews{NewsID: n.ID, Priority: i + 1}).Error; err != nil {
			t.Fatalf("seed hotnews: %v", err)
		}
	}

	page, err := svc.Search(ctx, "", 1)
	if err != nil {
		t.Fatalf("search fallback: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 {
		t.Fatalf("total = %d, total_pages = %d", page.Total, page.TotalPages)
	}
}

func TestSearchPageSizeDefaultsToPageSize(t *testing.T) {
	svc, _ := newTestService(t)
	if svc.opts.SearchPageSize != svc.opts.PageSize {
		t.Fatalf("search page size = %d, page size = %d", svc.opts.SearchPageSize, svc.opts.PageSize)
	}
}

package admin

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	coursedomain "newsportal/internal/domain/course"
	docdomain "newsportal/internal/domain/doc"
	newsdomain "newsportal/internal/domain/news"
	"newsportal/internal/domain/user"
	"newsportal/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeUploader struct {
	fileID string
	err    error
	lastEx string
}

func (f *fakeUploader) UploadByBuffer(ctx context.Context, data []byte, ext string) (string, error) {
	f.lastEx = ext
	return f.fileID, f.err
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakeUploader) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&user.User{}, &newsdomain.Tag{}, &newsdomain.News{},
		&newsdomain.HotNews{}, &newsdomain.Banner{},
		&docdomain.Doc{}, &coursedomain.Teacher{}, &coursedomain.Category{}, &coursedomain.Course{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	up := &fakeUploader{fileID: "group1/M00/00/00/abc.png"}
	svc := NewService(
		repository.NewNewsRepository(db),
		repository.NewTagRepository(db),
		repository.NewHotNewsRepository(db),
		repository.NewBannerRepository(db),
		repository.NewDocRepository(db),
		repository.NewCourseRepository(db),
		up,
		nil,
		Options{PageSize: 5, FDFSDomain: "http://img.example.com/"},
	)
	return svc, db, up
}

func seedAuthoredNews(t *testing.T, db *gorm.DB, title string, author *user.User, tag *newsdomain.Tag) *newsdomain.News {
	t.Helper()
	n := &newsdomain.News{Title: title, Content: title + " content"}
	if author != nil {
		n.AuthorID = &author.ID
	}
	if tag != nil {
		n.TagID = &tag.ID
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("seed news: %v", err)
	}
	return n
}

func TestListNewsFilterRoundTrip(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	author := &user.User{Username: "editor", Mobile: "13800000001", PasswordHash: "x"}
	if err := db.Create(author).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	tag := &newsdomain.Tag{Name: "财经"}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	seedAuthoredNews(t, db, "季度财报解读", author, tag)
	seedAuthoredNews(t, db, "不相关文章", nil, nil)

	list, err := svc.ListNews(ctx, NewsQuery{
		StartDate:  time.Now().Add(-24 * time.Hour).Format(dateLayout),
		EndDate:    time.Now().Format(dateLayout),
		Title:      "财报",
		AuthorName: "edit",
		TagID:      "1",
	})
	if err != nil {
		t.Fatalf("list news: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("filtered total = %d, items = %d", list.Total, len(list.Items))
	}
	if list.Items[0].Title != "季度财报解读" {
		t.Fatalf("wrong row: %+v", list.Items[0])
	}

	// 翻页查询串只携带生效的过滤条件，且能被原样解析回来。
	parsed, err := url.ParseQuery(list.OtherParam)
	if err != nil {
		t.Fatalf("parse other_param: %v", err)
	}
	if parsed.Get("title") != "财报" || parsed.Get("author_name") != "edit" || parsed.Get("tag_id") != "1" {
		t.Fatalf("other_param lost filters: %q", list.OtherParam)
	}
	if parsed.Get("start_time") != list.StartDate || parsed.Get("end_time") != list.EndDate {
		t.Fatalf("other_param dates mismatch: %q", list.OtherParam)
	}
	if parsed.Has("page") {
		t.Fatalf("page must not leak into other_param: %q", list.OtherParam)
	}
}

func TestListNewsIgnoresBadDates(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedAuthoredNews(t, db, "whatever", nil, nil)

	list, err := svc.ListNews(context.Background(), NewsQuery{StartDate: "昨天", EndDate: "2026-13-45"})
	if err != nil {
		t.Fatalf("list news: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("bad dates must be ignored, total = %d", list.Total)
	}
	if list.OtherParam != "" {
		t.Fatalf("no filters applied, other_param = %q", list.OtherParam)
	}
}

func TestListNewsClampsPage(t *testing.T) {
	svc, db, _ := newTestService(t)
	for i := 0; i < 7; i++ {
		seedAuthoredNews(t, db, "story", nil, nil)
	}

	list, err := svc.ListNews(context.Background(), NewsQuery{Page: "99"})
	if err != nil {
		t.Fatalf("list news: %v", err)
	}
	if list.Page != 2 || list.TotalPages != 2 {
		t.Fatalf("page = %d, total_pages = %d", list.Page, list.TotalPages)
	}
	if len(list.Items) != 2 {
		t.Fatalf("last page items = %d", len(list.Items))
	}
}

func TestTagLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, "科技")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if _, err := svc.CreateTag(ctx, "科技"); !errors.Is(err, ErrTagExists) {
		t.Fatalf("expected ErrTagExists, got %v", err)
	}

	if err := svc.RenameTag(ctx, tag.ID, "科技"); !errors.Is(err, ErrTagUnchanged) {
		t.Fatalf("expected ErrTagUnchanged, got %v", err)
	}
	other, err := svc.CreateTag(ctx, "体育")
	if err != nil {
		t.Fatalf("create second tag: %v", err)
	}
	if err := svc.RenameTag(ctx, other.ID, "科技"); !errors.Is(err, ErrTagExists) {
		t.Fatalf("expected ErrTagExists on rename clash, got %v", err)
	}
	if err := svc.RenameTag(ctx, tag.ID, "数码"); err != nil {
		t.Fatalf("rename tag: %v", err)
	}

	if err := svc.DeleteTag(ctx, other.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	if err := svc.DeleteTag(ctx, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
	}

	rows, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "数码" {
		t.Fatalf("tag list wrong: %+v", rows)
	}
}

func TestHotNewsOps(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	n := seedAuthoredNews(t, db, "hot", nil, nil)

	if _, err := svc.AddHotNews(ctx, n.ID, 9); !errors.Is(err, ErrBadPriority) {
		t.Fatalf("expected ErrBadPriority, got %v", err)
	}
	h, err := svc.AddHotNews(ctx, n.ID, 2)
	if err != nil {
		t.Fatalf("add hotnews: %v", err)
	}
	if _, err := svc.AddHotNews(ctx, n.ID, 1); !errors.Is(err, ErrHotExists) {
		t.Fatalf("expected ErrHotExists, got %v", err)
	}

	if err := svc.UpdateHotNewsPriority(ctx, h.ID, 2); !errors.Is(err, ErrUnchanged) {
		t.Fatalf("expected ErrUnchanged, got %v", err)
	}
	if err := svc.UpdateHotNewsPriority(ctx, h.ID, 1); err != nil {
		t.Fatalf("update priority: %v", err)
	}
	if err := svc.DeleteHotNews(ctx, h.ID); err != nil {
		t.Fatalf("delete hotnews: %v", err)
	}
}

func TestBannerOps(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	n := seedAuthoredNews(t, db, "promoted", nil, nil)

	b, err := svc.AddBanner(ctx, n.ID, "http://img/a.png", 3)
	if err != nil {
		t.Fatalf("add banner: %v", err)
	}
	if _, err := svc.AddBanner(ctx, n.ID, "http://img/b.png", 1); !errors.Is(err, ErrBannerExists) {
		t.Fatalf("expected ErrBannerExists, got %v", err)
	}

	// 图与优先级都没变：未修改。空图片串沿用旧图。
	if err := svc.UpdateBanner(ctx, b.ID, "", 3); !errors.Is(err, ErrUnchanged) {
		t.Fatalf("expected ErrUnchanged, got %v", err)
	}
	if err := svc.UpdateBanner(ctx, b.ID, "http://img/a.png", 3); !errors.Is(err, ErrUnchanged) {
		t.Fatalf("expected ErrUnchanged for same pair, got %v", err)
	}
	if err := svc.UpdateBanner(ctx, b.ID, "", 1); err != nil {
		t.Fatalf("update priority only: %v", err)
	}

	var stored newsdomain.Banner
	if err := db.First(&stored, b.ID).Error; err != nil {
		t.Fatalf("load banner: %v", err)
	}
	if stored.Priority != 1 || stored.ImageURL != "http://img/a.png" {
		t.Fatalf("banner update wrong: %+v", stored)
	}
}

func TestUploadImage(t *testing.T) {
	svc, _, up := newTestService(t)
	ctx := context.Background()

	// 1x1 PNG 头，足够 DetectContentType 识别。
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	got, err := svc.UploadImage(ctx, "cover.png", png)
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}
	want := "http://img.example.com/group1/M00/00/00/abc.png"
	if got != want {
		t.Fatalf("url = %q, want %q", got, want)
	}
	if up.lastEx != "png" {
		t.Fatalf("ext = %q", up.lastEx)
	}

	if _, err := svc.UploadImage(ctx, "evil.png", []byte("#!/bin/sh\nrm")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestDocAndCourseLifecycle(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.PublishDoc(ctx, DocParams{Title: "年度报告", FileURL: "docs/annual.pdf", AuthorID: 1})
	if err != nil {
		t.Fatalf("publish doc: %v", err)
	}
	if _, err := svc.EditDoc(ctx, d.ID, DocParams{Title: "年度报告(修订)"}); err != nil {
		t.Fatalf("edit doc: %v", err)
	}
	if err := svc.DeleteDoc(ctx, d.ID); err != nil {
		t.Fatalf("delete doc: %v", err)
	}
	if _, err := svc.EditDoc(ctx, d.ID, DocParams{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	teacher := &coursedomain.Teacher{Name: "王老师"}
	if err := db.Create(teacher).Error; err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	c, err := svc.PublishCourse(ctx, CourseParams{
		Title:     "Go 入门",
		Outline:   []string{"第一章", "第二章"},
		TeacherID: &teacher.ID,
	})
	if err != nil {
		t.Fatalf("publish course: %v", err)
	}
	got, err := svc.GetCourse(ctx, c.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got.Teacher == nil || got.Teacher.Name != "王老师" {
		t.Fatalf("course teacher not loaded: %+v", got.Teacher)
	}
	if string(got.Outline) != `["第一章","第二章"]` {
		t.Fatalf("outline json = %s", got.Outline)
	}
}

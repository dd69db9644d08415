package course

import (
	"context"
	"errors"
	"testing"

	coursedomain "newsportal/internal/domain/course"
	"newsportal/internal/repository"

	"gorm.io/datatypes"
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
		&coursedomain.Teacher{}, &coursedomain.Category{}, &coursedomain.Course{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(repository.NewCourseRepository(db)), db
}

func TestCourseListShowsTeacherName(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	teacher := &coursedomain.Teacher{Name: "王老师"}
	if err := db.Create(teacher).Error; err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	c1 := &coursedomain.Course{Title: "Python 入门", CoverURL: "/cover1.png", TeacherID: &teacher.ID}
	c2 := &coursedomain.Course{Title: "Go 进阶"}
	for _, c := range []*coursedomain.Course{c1, c2} {
		if err := db.Create(c).Error; err != nil {
			t.Fatalf("seed course: %v", err)
		}
	}

	cards, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d", len(cards))
	}
	byID := map[uint64]CourseCard{}
	for _, card := range cards {
		byID[card.CourseID] = card
	}
	if got := byID[c1.ID]; got.Teacher != "王老师" || got.CoverURL != "/cover1.png" {
		t.Fatalf("card = %+v", got)
	}
	if got := byID[c2.ID]; got.Teacher != "" {
		t.Fatalf("teacherless card = %+v", got)
	}
}

func TestCourseDetail(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	teacher := &coursedomain.Teacher{Name: "王老师", PositionalTitle: "高级讲师", Profile: "十年一线经验"}
	if err := db.Create(teacher).Error; err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	c := &coursedomain.Course{
		Title:     "Python 入门",
		VideoURL:  "http://video.example.com/1.mp4",
		Outline:   datatypes.JSON(`["第一章","第二章"]`),
		TeacherID: &teacher.ID,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	got, err := svc.Detail(ctx, c.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if got.VideoURL != c.VideoURL {
		t.Fatalf("video_url = %q", got.VideoURL)
	}
	if len(got.Outline) != 2 || got.Outline[0] != "第一章" {
		t.Fatalf("outline = %v", got.Outline)
	}
	if got.Teacher == nil || got.Teacher.PositionalTitle != "高级讲师" {
		t.Fatalf("teacher = %+v", got.Teacher)
	}
}

func TestCourseDetailMissing(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Detail(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}

	// 逻辑删除后同样不可见。
	c := &coursedomain.Course{Title: "下架课程"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	if err := db.Model(c).Update("is_deleted", true).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := svc.Detail(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}

	cards, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("len(cards) = %d", len(cards))
	}
}

func TestCourseDetailBadOutline(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	c := &coursedomain.Course{Title: "坏大纲", Outline: datatypes.JSON(`{not json`)}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	got, err := svc.Detail(ctx, c.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if got.Outline == nil || len(got.Outline) != 0 {
		t.Fatalf("outline = %v", got.Outline)
	}
}

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	coursedomain "newsportal/internal/domain/course"
	docdomain "newsportal/internal/domain/doc"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListDocs 返回全部文档资料。
func (s *Service) ListDocs(ctx context.Context) ([]docdomain.Doc, error) {
	return s.docs.List(ctx)
}

// DocParams 是发布或编辑文档的表单。
type DocParams struct {
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	FileURL  string `json:"file_url"`
	ImageURL string `json:"image_url"`
	AuthorID uint64 `json:"-"`
}

// PublishDoc 发布文档资料。
func (s *Service) PublishDoc(ctx context.Context, params DocParams) (*docdomain.Doc, error) {
	if strings.TrimSpace(params.Title) == "" || strings.TrimSpace(params.FileURL) == "" {
		return nil, ErrEmptyField
	}
	d := &docdomain.Doc{
		Title:    params.Title,
		Desc:     params.Desc,
		FileURL:  params.FileURL,
		ImageURL: params.ImageURL,
		AuthorID: &params.AuthorID,
	}
	if err := s.docs.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create doc: %w", err)
	}
	s.logger.Infow("doc published", "doc_id", d.ID, "title", d.Title)
	return d, nil
}

// EditDoc 更新文档资料。
func (s *Service) EditDoc(ctx context.Context, docID uint64, params DocParams) (*docdomain.Doc, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrEmptyField
	}

	d, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find doc: %w", err)
	}

	d.Title = params.Title
	d.Desc = params.Desc
	if params.FileURL != "" {
		d.FileURL = params.FileURL
	}
	if params.ImageURL != "" {
		d.ImageURL = params.ImageURL
	}
	if err := s.docs.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save doc: %w", err)
	}
	s.logger.Infow("doc edited", "doc_id", d.ID)
	return d, nil
}

// DeleteDoc 逻辑删除文档。
func (s *Service) DeleteDoc(ctx context.Context, docID uint64) error {
	if err := s.docs.SoftDelete(ctx, docID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete doc: %w", err)
	}
	s.logger.Infow("doc deleted", "doc_id", docID)
	return nil
}

// ListCourses 返回全部课程。
func (s *Service) ListCourses(ctx context.Context) ([]coursedomain.Course, error) {
	return s.courses.List(ctx)
}

// GetCourse 取回课程详情。
func (s *Service) GetCourse(ctx context.Context, courseID uint64) (*coursedomain.Course, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return c, nil
}

// ListCourseTeachers 返回教师列表，供课程表单选择。
func (s *Service) ListCourseTeachers(ctx context.Context) ([]coursedomain.Teacher, error) {
	return s.courses.ListTeachers(ctx)
}

// ListCourseCategories 返回课程分类列表。
func (s *Service) ListCourseCategories(ctx context.Context) ([]coursedomain.Category, error) {
	return s.courses.ListCategories(ctx)
}

// CourseParams 是发布或编辑课程的表单，Outline 是章节标题数组。
type CourseParams struct {
	Title      string   `json:"title"`
	CoverURL   string   `json:"cover_url"`
	VideoURL   string   `json:"video_url"`
	Profile    string   `json:"profile"`
	Outline    []string `json:"outline"`
	TeacherID  *uint64  `json:"teacher_id"`
	CategoryID *uint64  `json:"category_id"`
}

func outlineJSON(outline []string) (datatypes.JSON, error) {
	if outline == nil {
		outline = []string{}
	}
	raw, err := json.Marshal(outline)
	if err != nil {
		return nil, fmt.Errorf("encode outline: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// PublishCourse 发布课程，大纲以 JSON 数组落库。
func (s *Service) PublishCourse(ctx context.Context, params CourseParams) (*coursedomain.Course, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrEmptyField
	}
	outline, err := outlineJSON(params.Outline)
	if err != nil {
		return nil, err
	}

	c := &coursedomain.Course{
		Title:      params.Title,
		CoverURL:   params.CoverURL,
		VideoURL:   params.VideoURL,
		Profile:    params.Profile,
		Outline:    outline,
		TeacherID:  params.TeacherID,
		CategoryID: params.CategoryID,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.logger.Infow("course published", "course_id", c.ID, "title", c.Title)
	return c, nil
}

// EditCourse 更新课程信息。
func (s *Service) EditCourse(ctx context.Context, courseID uint64, params CourseParams) (*coursedomain.Course, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrEmptyField
	}

	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	c.Title = params.Title
	c.Profile = params.Profile
	if params.CoverURL != "" {
		c.CoverURL = params.CoverURL
	}
	if params.VideoURL != "" {
		c.VideoURL = params.VideoURL
	}
	if params.Outline != nil {
		outline, err := outlineJSON(params.Outline)
		if err != nil {
			return nil, err
		}
		c.Outline = outline
	}
	if params.TeacherID != nil {
		c.TeacherID = params.TeacherID
	}
	if params.CategoryID != nil {
		c.CategoryID = params.CategoryID
	}

	if err := s.courses.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save course: %w", err)
	}
	s.logger.Infow("course edited", "course_id", c.ID)
	return c, nil
}

// DeleteCourse 逻辑删除课程。
func (s *Service) DeleteCourse(ctx context.Context, courseID uint64) error {
	if err := s.courses.SoftDelete(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete course: %w", err)
	}
	s.logger.Infow("course deleted", "course_id", courseID)
	return nil
}

package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"newsportal/internal/infra/logger"
	"newsportal/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound 表示课程不存在或已删除，对应 NODATA。
var ErrNotFound = errors.New("课程不存在")

// Service 是门户侧的课程浏览服务：课程列表与播放页详情。
type Service struct {
	courses *repository.CourseRepository
	logger  *zap.SugaredLogger
}

// NewService 构造课程浏览服务。
func NewService(courses *repository.CourseRepository) *Service {
	return &Service{
		courses: courses,
		logger:  logger.S().With("component", "course.service"),
	}
}

// TeacherView 是课程页展示的教师档案。
type TeacherView struct {
	Name            string `json:"name"`
	AvatarURL       string `json:"avatar_url"`
	PositionalTitle string `json:"positional_title"`
	Profile         string `json:"profile"`
}

// CourseCard 是课程列表页的一项。
type CourseCard struct {
	CourseID uint64 `json:"course_id"`
	Title    string `json:"title"`
	CoverURL string `json:"cover_url"`
	Teacher  string `json:"teacher"`
}

// CourseDetail 是课程播放页数据，含视频地址、章节大纲与教师档案。
type CourseDetail struct {
	CourseID uint64       `json:"course_id"`
	Title    string       `json:"title"`
	CoverURL string       `json:"cover_url"`
	VideoURL string       `json:"video_url"`
	Profile  string       `json:"profile"`
	Outline  []string     `json:"outline"`
	Teacher  *TeacherView `json:"teacher"`
}

// List 返回全部上架课程。
func (s *Service) List(ctx context.Context) ([]CourseCard, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]CourseCard, 0, len(courses))
	for _, c := range courses {
		card := CourseCard{CourseID: c.ID, Title: c.Title, CoverURL: c.CoverURL}
		if c.Teacher != nil {
			card.Teacher = c.Teacher.Name
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Detail 返回课程播放页，大纲从 JSON 列解码。
func (s *Service) Detail(ctx context.Context, courseID uint64) (*CourseDetail, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	detail := &CourseDetail{
		CourseID: c.ID,
		Title:    c.Title,
		CoverURL: c.CoverURL,
		VideoURL: c.VideoURL,
		Profile:  c.Profile,
		Outline:  []string{},
	}
	if len(c.Outline) > 0 {
		if err := json.Unmarshal(c.Outline, &detail.Outline); err != nil {
			// 大纲列损坏不应拖垮播放页，记日志后以空大纲返回。
			s.logger.Warnw("decode course outline failed", "course_id", c.ID, "err", err)
			detail.Outline = []string{}
		}
	}
	if c.Teacher != nil {
		detail.Teacher = &TeacherView{
			Name:            c.Teacher.Name,
			AvatarURL:       c.Teacher.AvatarURL,
			PositionalTitle: c.Teacher.PositionalTitle,
			Profile:         c.Teacher.Profile,
		}
	}
	return detail, nil
}

package admin

import (
	"errors"

	"newsportal/internal/infra/fdfs"
	"newsportal/internal/infra/logger"
	"newsportal/internal/infra/storagetoken"
	"newsportal/internal/repository"

	"go.uber.org/zap"
)

var (
	// ErrNotFound 表示目标记录不存在或已删除，对应 NODATA。
	ErrNotFound = errors.New("数据不存在")
	// ErrTagExists 表示同名标签已存在，对应 DATAEXIST。
	ErrTagExists = errors.New("标签重复")
	// ErrTagUnchanged 表示改名前后名称一致，对应 DATAERR。
	ErrTagUnchanged = errors.New("标签未修改")
	// ErrHotExists 表示文章已在热门列表中，对应 DATAEXIST。
	ErrHotExists = errors.New("该文章已经是热门文章")
	// ErrBannerExists 表示文章已有轮播图，对应 DATAEXIST。
	ErrBannerExists = errors.New("该文章已有轮播图")
	// ErrUnchanged 表示更新前后没有任何字段变化，对应 DATAERR。
	ErrUnchanged = errors.New("数据未修改")
	// ErrBadPriority 表示优先级不在允许集合内，对应 PARAMERR。
	ErrBadPriority = errors.New("优先级参数错误")
	// ErrEmptyField 表示必填字段缺失，对应 PARAMERR。
	ErrEmptyField = errors.New("缺少必要参数")
	// ErrNotImage 表示上传内容不是图片，对应 DATAERR。
	ErrNotImage = errors.New("仅支持图片上传")
	// ErrTokenDisabled 表示对象存储直传未配置。
	ErrTokenDisabled = errors.New("对象存储未配置")
)

// Options 描述后台服务的展示与存储参数。
type Options struct {
	PageSize   int
	FDFSDomain string
}

// Service 聚合后台管理的全部操作：文章、标签、热门、轮播图、文档与课程。
type Service struct {
	news     *repository.NewsRepository
	tags     *repository.TagRepository
	hot      *repository.HotNewsRepository
	banners  *repository.BannerRepository
	docs     *repository.DocRepository
	courses  *repository.CourseRepository
	uploader fdfs.Uploader
	tokens   *storagetoken.Issuer
	opts     Options
	logger   *zap.SugaredLogger
}

// NewService 构造后台服务。tokens 允许为 nil，此时对象存储直传关闭。
func NewService(
	news *repository.NewsRepository,
	tags *repository.TagRepository,
	hot *repository.HotNewsRepository,
	banners *repository.BannerRepository,
	docs *repository.DocRepository,
	courses *repository.CourseRepository,
	uploader fdfs.Uploader,
	tokens *storagetoken.Issuer,
	opts Options,
) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Service{
		news:     news,
		tags:     tags,
		hot:      hot,
		banners:  banners,
		docs:     docs,
		courses:  courses,
		uploader: uploader,
		tokens:   tokens,
		opts:     opts,
		logger:   logger.S().With("component", "admin.service"),
	}
}

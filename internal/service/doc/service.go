package doc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"newsportal/internal/infra/logger"
	"newsportal/internal/infra/metrics"
	"newsportal/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 表示文档不存在、文件名非法或类型不受支持，下载口一律 404。
	ErrNotFound = errors.New("文档不存在")
	// ErrUpstream 表示回源对象存储失败。
	ErrUpstream = errors.New("文件拉取失败")
)

// contentTypes 是支持下载的扩展名到 MIME 类型的映射，表外类型不提供下载。
var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"zip":  "application/zip",
	"doc":  "application/msword",
	"xls":  "application/vnd.ms-excel",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Options 描述回源地址与超时。
type Options struct {
	UpstreamBase string
	Timeout      time.Duration
}

// Service 是文档下载代理：按 id 找到存储侧路径，从内网对象存储拉流
// 并透传给客户端，应用侧不落盘。
type Service struct {
	docs   *repository.DocRepository
	base   string
	client *http.Client
	logger *zap.SugaredLogger
}

// NewService 构造下载代理。
func NewService(docs *repository.DocRepository, opts Options) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		docs: docs,
		base: strings.TrimRight(opts.UpstreamBase, "/"),
		// 不设全局 Timeout，下载大文件靠 ctx 控制生命周期。
		client: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: timeout},
		},
		logger: logger.S().With("component", "doc.service"),
	}
}

// DocItem 是文档列表页的一项。
type DocItem struct {
	DocID    uint64 `json:"doc_id"`
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	ImageURL string `json:"image_url"`
}

// List 返回可下载的文档列表。
func (s *Service) List(ctx context.Context) ([]DocItem, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]DocItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, DocItem{DocID: d.ID, Title: d.Title, Desc: d.Desc, ImageURL: d.ImageURL})
	}
	return items, nil
}

// Download 是一次可流式读取的下载响应,调用方负责 Close。
type Download struct {
	Body        io.ReadCloser
	ContentType string
	// Disposition 是带 RFC 5987 编码文件名的 Content-Disposition 值。
	Disposition string
	Length      int64
}

// Open 解析文档并向上游发起拉取。文档缺失、无扩展名或类型不支持
// 都归入 ErrNotFound，避免暴露存储侧结构。
func (s *Service) Open(ctx context.Context, docID uint64) (*Download, error) {
	d, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.DocDownload("nodata")
			return nil, ErrNotFound
		}
		metrics.DocDownload("dberr")
		return nil, fmt.Errorf("find doc: %w", err)
	}

	filename := path.Base(d.FileURL)
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if filename == "." || filename == "/" || ext == "" {
		metrics.DocDownload("nodata")
		return nil, ErrNotFound
	}
	contentType, ok := contentTypes[strings.ToLower(ext)]
	if !ok {
		metrics.DocDownload("nodata")
		return nil, ErrNotFound
	}

	upstream := s.base + "/" + strings.TrimLeft(d.FileURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstream, nil)
	if err != nil {
		metrics.DocDownload("upstream")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.DocDownload("upstream")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		metrics.DocDownload("upstream")
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	metrics.DocDownload("ok")
	s.logger.Infow("doc download started", "doc_id", docID, "file", filename)
	return &Download{
		Body:        resp.Body,
		ContentType: contentType,
		Disposition: fmt.Sprintf("attachment; filename*=UTF-8''%s", rfc5987Encode(filename)),
		Length:      resp.ContentLength,
	}, nil
}

// rfc5987Encode 按 RFC 5987 的 attr-char 集合对文件名做百分号编码，
// 中文标题的附件名由此安全地进入响应头。
func rfc5987Encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case strings.ContainsRune("!#$&+-.^_`|~", rune(c)):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

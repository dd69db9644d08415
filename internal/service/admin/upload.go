package admin

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"newsportal/internal/infra/storagetoken"

	"github.com/google/uuid"
)

// UploadImage 把图片上传到分布式文件存储，返回拼好域名的外链。
// 内容嗅探不是图片时报 DATAERR。
func (s *Service) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyField
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotImage
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "png"
	}

	fileID, err := s.uploader.UploadByBuffer(ctx, data, ext)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	url := strings.TrimRight(s.opts.FDFSDomain, "/") + "/" + strings.TrimLeft(fileID, "/")
	s.logger.Infow("image uploaded", "file_id", fileID)
	return url, nil
}

// IssueStorageToken 为富文本编辑器签发一个对象存储直传凭证，
// key 按日期和随机串生成，避免覆盖。
func (s *Service) IssueStorageToken(ctx context.Context, filename string) (storagetoken.Credential, error) {
	if s.tokens == nil {
		return storagetoken.Credential{}, ErrTokenDisabled
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	key := fmt.Sprintf("editor/%s/%s.%s", time.Now().Format("20060102"), uuid.NewString(), ext)
	return s.tokens.Issue(ctx, key)
}

package fdfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Uploader 是分布式文件存储的抽象，上传成功返回 file_id
// （形如 group1/M00/00/00/xxx.png），拼上 FDFS_SERVER_DOMAIN 即为外链。
type Uploader interface {
	UploadByBuffer(ctx context.Context, data []byte, ext string) (string, error)
}

// 网关约定的成功状态串，沿用 fastdfs 客户端的原始文案。
const statusUploadOK = "Upload successed."

const defaultTimeout = 30 * time.Second

// GatewayClient 通过 HTTP 网关代理 fastdfs 的 upload_by_buffer 操作。
type GatewayClient struct {
	endpoint string
	client   *http.Client
}

// NewGatewayClient 构造上传客户端，endpoint 指向内网上传网关。
func NewGatewayClient(endpoint string, timeout time.Duration) *GatewayClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GatewayClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	Status string `json:"Status"`
	FileID string `json:"Remote file_id"`
}

// UploadByBuffer 以 multipart 形式上传字节流，返回存储侧的 file_id。
func (c *GatewayClient) UploadByBuffer(ctx context.Context, data []byte, ext string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("fdfs gateway endpoint not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "upload."+strings.TrimPrefix(ext, "."))
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call fdfs gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fdfs gateway status %d", resp.StatusCode)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	if result.Status != statusUploadOK || result.FileID == "" {
		return "", fmt.Errorf("fdfs upload failed: %s", result.Status)
	}

	return result.FileID, nil
}

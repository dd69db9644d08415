package storagetoken

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"
)

const (
	envBucketURL = "COS_BUCKET_URL"
	envSecretID  = "COS_SECRET_ID"
	envSecretKey = "COS_SECRET_KEY"

	defaultTokenTTL = 10 * time.Minute
)

// Credential 是下发给前端的一次性上传凭证。
type Credential struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer 基于对象存储的预签名能力签发短时上传凭证，
// 富文本编辑器的图片直传走这里，不经过应用服务器中转。
type Issuer struct {
	client    *cos.Client
	secretID  string
	secretKey string
	ttl       time.Duration
}

// NewIssuerFromEnv 从环境变量构造凭证签发器，配置不全时返回 nil 表示功能关闭。
func NewIssuerFromEnv() (*Issuer, error) {
	bucketURL := strings.TrimSpace(os.Getenv(envBucketURL))
	secretID := strings.TrimSpace(os.Getenv(envSecretID))
	secretKey := strings.TrimSpace(os.Getenv(envSecretKey))

	if bucketURL == "" || secretID == "" || secretKey == "" {
		return nil, nil
	}

	parsed, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse bucket url: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: parsed}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  secretID,
			SecretKey: secretKey,
		},
	})

	return &Issuer{
		client:    client,
		secretID:  secretID,
		secretKey: secretKey,
		ttl:       defaultTokenTTL,
	}, nil
}

// Issue 为指定对象 key 签发一个限时 PUT 上传地址。
func (i *Issuer) Issue(ctx context.Context, key string) (Credential, error) {
	if key == "" {
		return Credential{}, fmt.Errorf("object key is required")
	}

	presigned, err := i.client.Object.GetPresignedURL(ctx, http.MethodPut, key, i.secretID, i.secretKey, i.ttl, nil)
	if err != nil {
		return Credential{}, fmt.Errorf("presign upload url: %w", err)
	}

	return Credential{
		UploadURL: presigned.String(),
		Key:       key,
		ExpiresAt: time.Now().Add(i.ttl),
	}, nil
}

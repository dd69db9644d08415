package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPPort   = "8000"
	defaultSessionTTL = 24 * time.Hour
	// defaultRememberTTL 对应登录表单勾选"记住我"后的会话时长。
	defaultRememberTTL = 5 * 24 * time.Hour

	defaultImageCodeTTL    = 300 * time.Second
	defaultSMSCodeTTL      = 300 * time.Second
	defaultSMSRateLimitTTL = 60 * time.Second
	defaultSMSCodeNums     = 6

	defaultPageSize        = 5
	defaultHotNewsCount    = 3
	defaultBannerCount     = 6
	defaultCommentDepth    = 32
	defaultSearchPageSize  = 5
	defaultUpstreamTimeout = 30 * time.Second
)

// Runtime 汇总门户运行期的全部可调参数，启动时从环境变量读取一次。
type Runtime struct {
	HTTPPort    string
	JWTSecret   string
	SessionTTL  time.Duration
	RememberTTL time.Duration

	// 验证码与短信相关的有效期，对应 redis 中 img_/sms_/sms_flag_ 三类 key。
	ImageCodeTTL    time.Duration
	SMSCodeTTL      time.Duration
	SMSRateLimitTTL time.Duration
	SMSCodeNums     int

	PageSize       int
	HotNewsCount   int
	BannerCount    int
	CommentDepth   int
	SearchPageSize int

	// DocUpstreamBase 是文档下载代理回源的内部对象存储地址。
	DocUpstreamBase string
	UpstreamTimeout time.Duration

	// FDFSDomain 拼在 fastdfs 返回的 file_id 前面，构成外网可访问的 URL。
	FDFSDomain   string
	FDFSEndpoint string
}

// LoadRuntime 读取环境变量并填充默认值，所有字段都有安全的兜底。
func LoadRuntime() Runtime {
	LoadEnvFiles()

	rt := Runtime{
		HTTPPort:        envString("HTTP_PORT", defaultHTTPPort),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SessionTTL:      envSeconds("SESSION_TTL_SECONDS", defaultSessionTTL),
		RememberTTL:     envSeconds("SESSION_REMEMBER_TTL_SECONDS", defaultRememberTTL),
		ImageCodeTTL:    envSeconds("IMAGE_CODE_TTL", defaultImageCodeTTL),
		SMSCodeTTL:      envSeconds("SMS_CODE_TTL", defaultSMSCodeTTL),
		SMSRateLimitTTL: envSeconds("SMS_RATE_LIMIT_TTL", defaultSMSRateLimitTTL),
		SMSCodeNums:     envInt("SMS_CODE_NUMS", defaultSMSCodeNums),
		PageSize:        envInt("PAGE_SIZE", defaultPageSize),
		HotNewsCount:    envInt("SHOW_HOTNEWS_COUNT", defaultHotNewsCount),
		BannerCount:     envInt("SHOW_BANNER_COUNT", defaultBannerCount),
		CommentDepth:    envInt("MAX_COMMENT_DEPTH", defaultCommentDepth),
		SearchPageSize:  envInt("SEARCH_RESULTS_PER_PAGE", defaultSearchPageSize),
		DocUpstreamBase: strings.TrimRight(envString("DOC_UPSTREAM_BASE", ""), "/"),
		UpstreamTimeout: envSeconds("DOC_UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
		FDFSDomain:      strings.TrimRight(envString("FDFS_SERVER_DOMAIN", ""), "/"),
		FDFSEndpoint:    strings.TrimRight(envString("FDFS_GATEWAY_ENDPOINT", ""), "/"),
	}

	return rt
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return time.Duration(parsed) * time.Second
}

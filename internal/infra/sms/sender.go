package sms

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	appLogger "newsportal/internal/infra/logger"

	"go.uber.org/zap"
)

// Sender 是短信网关的抽象：按模板给手机号下发一组参数。
// 注册流程只关心验证码与有效期两个参数。
type Sender interface {
	SendTemplate(ctx context.Context, mobile string, params []string, templateID string) error
}

const (
	envEndpoint   = "SMS_GATEWAY_ENDPOINT"
	envAccountSid = "SMS_ACCOUNT_SID"
	envAuthToken  = "SMS_ACCOUNT_TOKEN"
	envAppID      = "SMS_APP_ID"

	successStatus  = "000000"
	defaultTimeout = 10 * time.Second
)

// NewFromEnv 依据环境变量决定使用真实网关还是开发模式发送器。
// 凭据不全时回退到 DevSender，短信内容只打日志。
func NewFromEnv() Sender {
	endpoint := strings.TrimSpace(os.Getenv(envEndpoint))
	sid := strings.TrimSpace(os.Getenv(envAccountSid))
	token := strings.TrimSpace(os.Getenv(envAuthToken))
	appID := strings.TrimSpace(os.Getenv(envAppID))

	if endpoint == "" || sid == "" || token == "" || appID == "" {
		appLogger.S().Infow("sms gateway credentials missing, using dev sender")
		return NewDevSender()
	}

	return NewGatewaySender(GatewayOptions{
		Endpoint:   endpoint,
		AccountSid: sid,
		AuthToken:  token,
		AppID:      appID,
	})
}

// DevSender 在开发环境里代替真实网关，只把验证码写进日志。
type DevSender struct {
	logger *zap.SugaredLogger
}

// NewDevSender 构造开发模式发送器。
func NewDevSender() *DevSender {
	return &DevSender{logger: appLogger.S().With("component", "sms.dev")}
}

// SendTemplate 记录将要下发的内容并直接返回成功。
func (s *DevSender) SendTemplate(_ context.Context, mobile string, params []string, templateID string) error {
	s.logger.Infow("sms send skipped in dev mode",
		"mobile", mobile,
		"params", params,
		"template", templateID,
	)
	return nil
}

// GatewayOptions 描述容联云通讯风格网关的接入参数。
type GatewayOptions struct {
	Endpoint   string
	AccountSid string
	AuthToken  string
	AppID      string
	Timeout    time.Duration
}

// GatewaySender 对接模板短信 REST 网关。
type GatewaySender struct {
	opts   GatewayOptions
	client *http.Client
	logger *zap.SugaredLogger
}

// NewGatewaySender 构造真实网关发送器。
func NewGatewaySender(opts GatewayOptions) *GatewaySender {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GatewaySender{
		opts:   opts,
		client: &http.Client{Timeout: timeout},
		logger: appLogger.S().With("component", "sms.gateway"),
	}
}

type templateRequest struct {
	To         string   `json:"to"`
	AppID      string   `json:"appId"`
	TemplateID string   `json:"templateId"`
	Datas      []string `json:"datas"`
}

type templateResponse struct {
	StatusCode string `json:"statusCode"`
	StatusMsg  string `json:"statusMsg"`
}

// SendTemplate 组装签名并调用模板短信接口，网关返回非成功码时报错。
func (s *GatewaySender) SendTemplate(ctx context.Context, mobile string, params []string, templateID string) error {
	timestamp := time.Now().Format("20060102150405")
	sig := s.signature(timestamp)

	reqURL := fmt.Sprintf("%s/2013-12-26/Accounts/%s/SMS/TemplateSMS?sig=%s",
		strings.TrimRight(s.opts.Endpoint, "/"), s.opts.AccountSid, sig)

	payload, err := json.Marshal(templateRequest{
		To:         mobile,
		AppID:      s.opts.AppID,
		TemplateID: templateID,
		Datas:      params,
	})
	if err != nil {
		return fmt.Errorf("encode sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("Accept", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(s.opts.AccountSid + ":" + timestamp))
	req.Header.Set("Authorization", auth)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call sms gateway: %w", err)
	}
	defer resp.Body.Close()

	var result templateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode sms response: %w", err)
	}

	if result.StatusCode != successStatus {
		s.logger.Warnw("sms gateway rejected request",
			"mobile", mobile,
			"status", result.StatusCode,
			"msg", result.StatusMsg,
		)
		return fmt.Errorf("sms gateway status %s: %s", result.StatusCode, result.StatusMsg)
	}

	return nil
}

// signature 计算网关要求的请求签名 MD5(sid+token+timestamp)。
func (s *GatewaySender) signature(timestamp string) string {
	sum := md5.Sum([]byte(s.opts.AccountSid + s.opts.AuthToken + timestamp))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

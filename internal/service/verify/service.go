package verify

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"newsportal/internal/domain/user"
	"newsportal/internal/infra/captcha"
	"newsportal/internal/infra/codestore"
	"newsportal/internal/infra/logger"
	"newsportal/internal/infra/metrics"
	"newsportal/internal/infra/sms"
	"newsportal/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrMobileTaken 表示手机号已注册，对应 DATAEXIST。
	ErrMobileTaken = errors.New("手机号码已经存在")
	// ErrCaptchaMismatch 表示图片验证码缺失或不匹配。
	ErrCaptchaMismatch = errors.New("图片验证失败")
	// ErrRateLimited 表示 60 秒窗口内的重复请求。
	ErrRateLimited = errors.New("操作过于频繁，请60秒后发送")
	// ErrStore 表示验证码存储写入失败。
	ErrStore = errors.New("验证码保存失败")
	// ErrDispatch 表示短信网关下发失败。
	ErrDispatch = errors.New("短信发送失败")
)

// ValidationError 携带按声明顺序拼接的字段错误信息，对应 PARAMERR。
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "/")
}

var mobileRe = regexp.MustCompile(user.MobilePattern)

// Options 描述短信验证码签发所需的时效参数。
type Options struct {
	SMSCodeTTL      time.Duration
	SMSRateLimitTTL time.Duration
	SMSCodeNums     int
	SMSTemplateID   string
}

// Service 负责图片验证码下发与短信验证码请求的完整校验链。
type Service struct {
	store  *codestore.Store
	issuer *captcha.Issuer
	users  *repository.UserRepository
	sender sms.Sender
	opts   Options
	logger *zap.SugaredLogger
}

// NewService 构造验证服务。
func NewService(store *codestore.Store, issuer *captcha.Issuer, users *repository.UserRepository, sender sms.Sender, opts Options) *Service {
	if opts.SMSCodeNums <= 0 {
		opts.SMSCodeNums = 6
	}
	if opts.SMSCodeTTL <= 0 {
		opts.SMSCodeTTL = 5 * time.Minute
	}
	if opts.SMSRateLimitTTL <= 0 {
		opts.SMSRateLimitTTL = time.Minute
	}
	if opts.SMSTemplateID == "" {
		opts.SMSTemplateID = "1"
	}
	return &Service{
		store:  store,
		issuer: issuer,
		users:  users,
		sender: sender,
		opts:   opts,
		logger: logger.S().With("component", "verify.service"),
	}
}

// IssueImageCode 为客户端提供的 uuid 生成一张验证码图片并缓存答案。
func (s *Service) IssueImageCode(ctx context.Context, imageCodeID string) ([]byte, error) {
	if _, err := uuid.Parse(imageCodeID); err != nil {
		return nil, &ValidationError{Messages: []string{"图片id不能为空"}}
	}

	png, text, err := s.issuer.Issue(ctx, imageCodeID)
	if err != nil {
		return nil, err
	}

	metrics.CaptchaIssued()
	s.logger.Infow("image code issued", "image_code_id", imageCodeID, "text", text)
	return png, nil
}

// SMSCodeParams 是请求短信验证码的输入。
type SMSCodeParams struct {
	Mobile      string `json:"mobile"`
	ImageCodeID string `json:"image_code_id"`
	Text        string `json:"text"`
}

// RequestSMSCode 按序校验参数、手机号占用、图片验证码与限流标记，
// 然后以管道原子写入验证码和限流标记，最后调度短信网关。
func (s *Service) RequestSMSCode(ctx context.Context, params SMSCodeParams) error {
	if err := validateSMSForm(params); err != nil {
		metrics.SMSRequest("paramerr")
		return err
	}

	taken, err := s.users.ExistsByMobile(ctx, params.Mobile)
	if err != nil {
		metrics.SMSRequest("dberr")
		return fmt.Errorf("check mobile: %w", err)
	}
	if taken {
		metrics.SMSRequest("dataexist")
		return ErrMobileTaken
	}

	// 图片验证码对比大小写不敏感；比中后条目保留到 TTL 结束，允许复用。
	stored, err := s.store.Get(ctx, codestore.ImageKey(params.ImageCodeID))
	if err != nil {
		if errors.Is(err, codestore.ErrNotFound) {
			metrics.SMSRequest("captchafail")
			return ErrCaptchaMismatch
		}
		metrics.SMSRequest("ioerror")
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !strings.EqualFold(stored, params.Text) {
		metrics.SMSRequest("captchafail")
		return ErrCaptchaMismatch
	}

	// 先用 SETNX 抢占限流标记，并发请求只有一个能通过。
	flagKey := codestore.SMSFlagKey(params.Mobile)
	won, err := s.store.AcquireFlag(ctx, flagKey, s.opts.SMSRateLimitTTL)
	if err != nil {
		metrics.SMSRequest("ioerror")
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !won {
		metrics.SMSRequest("ratelimited")
		return ErrRateLimited
	}

	code, err := s.generateCode()
	if err != nil {
		metrics.SMSRequest("ioerror")
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	entries := []codestore.Entry{
		{Key: flagKey, Value: "1", TTL: s.opts.SMSRateLimitTTL},
		{Key: codestore.SMSKey(params.Mobile), Value: code, TTL: s.opts.SMSCodeTTL},
	}
	if err := s.store.Pipeline(ctx, entries); err != nil {
		// 写入失败时释放标记，避免用户被一个落空的窗口卡住。
		if delErr := s.store.Delete(ctx, flagKey); delErr != nil {
			s.logger.Warnw("release sms flag failed", "mobile", params.Mobile, "error", delErr)
		}
		metrics.SMSRequest("ioerror")
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	ttlMinutes := fmt.Sprintf("%d", int(s.opts.SMSCodeTTL.Minutes()))
	if err := s.sender.SendTemplate(ctx, params.Mobile, []string{code, ttlMinutes}, s.opts.SMSTemplateID); err != nil {
		s.logger.Errorw("sms dispatch failed", "mobile", params.Mobile, "error", err)
		metrics.SMSRequest("smserror")
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	metrics.SMSRequest("ok")
	s.logger.Infow("sms code issued", "mobile", params.Mobile, "code", code)
	return nil
}

// validateSMSForm 按字段声明顺序收集第一条错误信息。
func validateSMSForm(params SMSCodeParams) error {
	var msgs []string

	switch {
	case strings.TrimSpace(params.Mobile) == "":
		msgs = append(msgs, "手机号不能为空")
	case !mobileRe.MatchString(params.Mobile):
		msgs = append(msgs, "手机号码格式不正确")
	}

	if strings.TrimSpace(params.ImageCodeID) == "" {
		msgs = append(msgs, "图片id不能为空")
	} else if _, err := uuid.Parse(params.ImageCodeID); err != nil {
		msgs = append(msgs, "图片id不能为空")
	}

	switch textLen := len([]rune(params.Text)); {
	case textLen == 0:
		msgs = append(msgs, "验证码不能为空")
	case textLen < 4:
		msgs = append(msgs, "验证码小于最小长度")
	case textLen > 4:
		msgs = append(msgs, "验证码超过最大长度")
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// generateCode 生成定长的数字验证码。
func (s *Service) generateCode() (string, error) {
	var b strings.Builder
	for i := 0; i < s.opts.SMSCodeNums; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("random digit: %w", err)
		}
		b.WriteString(n.String())
	}
	return b.String(), nil
}

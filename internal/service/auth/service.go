package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"newsportal/internal/domain/user"
	"newsportal/internal/infra/codestore"
	"newsportal/internal/infra/logger"
	"newsportal/internal/infra/metrics"
	"newsportal/internal/infra/token"
	"newsportal/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 表示账号不存在，对应 USERERR。
	ErrUserNotFound = errors.New("用户名不存在")
	// ErrWrongPassword 表示密码校验失败，对应 PWDERR。
	ErrWrongPassword = errors.New("密码错误")
	// ErrStore 表示短信验证码读取失败，对应 UNKOWNERR。
	ErrStore = errors.New("验证码读取失败")
)

// ValidationError 携带按字段声明顺序拼接的注册表单错误，对应 PARAMERR。
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "/")
}

var mobileRe = regexp.MustCompile(user.MobilePattern)

// Options 描述会话时效与短信验证码长度。
type Options struct {
	SessionTTL  time.Duration
	RememberTTL time.Duration
	SMSCodeNums int
}

// Service 处理注册、登录与登出。
type Service struct {
	users    *repository.UserRepository
	store    *codestore.Store
	sessions *token.SessionManager
	opts     Options
	logger   *zap.SugaredLogger
}

// NewService 构造认证服务。
func NewService(users *repository.UserRepository, store *codestore.Store, sessions *token.SessionManager, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = 5 * 24 * time.Hour
	}
	if opts.SMSCodeNums <= 0 {
		opts.SMSCodeNums = 6
	}
	return &Service{
		users:    users,
		store:    store,
		sessions: sessions,
		opts:     opts,
		logger:   logger.S().With("component", "auth.service"),
	}
}

// RegisterParams 是注册表单的输入。
type RegisterParams struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	PasswordRepeat string `json:"password_repeat"`
	Mobile         string `json:"mobile"`
	SMSCode        string `json:"sms_code"`
}

// SessionResult 是注册或登录成功后的会话信息。
type SessionResult struct {
	User      *user.User
	Token     string
	ExpiresAt time.Time
}

// Register 校验注册表单并创建用户，成功后直接签发会话令牌。
// 字段按声明顺序校验，全部字段过关后再做跨字段检查。
func (s *Service) Register(ctx context.Context, params RegisterParams) (*SessionResult, error) {
	if err := s.validateRegisterForm(ctx, params); err != nil {
		if errors.Is(err, ErrStore) {
			metrics.RegisterRequest("ioerror")
		} else {
			metrics.RegisterRequest("paramerr")
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		metrics.RegisterRequest("unknown")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		Username:     params.Username,
		Mobile:       params.Mobile,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		metrics.RegisterRequest("dberr")
		return nil, fmt.Errorf("create user: %w", err)
	}

	// 注册用过的短信验证码立即作废。
	if err := s.store.Delete(ctx, codestore.SMSKey(params.Mobile)); err != nil {
		s.logger.Warnw("drop used sms code failed", "mobile", params.Mobile, "error", err)
	}

	signed, expiresAt, err := s.sessions.Issue(u.ID, u.Username, s.opts.SessionTTL)
	if err != nil {
		metrics.RegisterRequest("unknown")
		return nil, fmt.Errorf("issue session: %w", err)
	}

	metrics.RegisterRequest("ok")
	s.logger.Infow("user registered", "user_id", u.ID, "username", u.Username)
	return &SessionResult{User: u, Token: signed, ExpiresAt: expiresAt}, nil
}

// validateRegisterForm 对每个字段收集第一条错误，再做跨字段校验。
func (s *Service) validateRegisterForm(ctx context.Context, params RegisterParams) error {
	var msgs []string

	if msg := s.usernameMessage(ctx, params.Username); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := passwordMessage(params.Password); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := passwordMessage(params.PasswordRepeat); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := s.mobileMessage(ctx, params.Mobile); msg != "" {
		msgs = append(msgs, msg)
	}
	if msg := s.smsCodeMessage(params.SMSCode); msg != "" {
		msgs = append(msgs, msg)
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}

	if params.Password != params.PasswordRepeat {
		return &ValidationError{Messages: []string{"两次输入密码不一致"}}
	}

	stored, err := s.store.Get(ctx, codestore.SMSKey(params.Mobile))
	if err != nil {
		if errors.Is(err, codestore.ErrNotFound) {
			return &ValidationError{Messages: []string{"短信验证码错误"}}
		}
		s.logger.Errorw("read sms code failed", "mobile", params.Mobile, "error", err)
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if stored != params.SMSCode {
		return &ValidationError{Messages: []string{"短信验证码错误"}}
	}
	return nil
}

func (s *Service) usernameMessage(ctx context.Context, username string) string {
	n := len([]rune(username))
	switch {
	case n == 0:
		return "用户名不能为空"
	case n < 5:
		return "用户名长度要大于5"
	case n > 20:
		return "用户名长度要小于20"
	}
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		s.logger.Errorw("check username failed", "username", username, "error", err)
		return "用户名校验失败"
	}
	if taken {
		return "用户名已存在"
	}
	return ""
}

func passwordMessage(password string) string {
	switch n := len([]rune(password)); {
	case n == 0:
		return "密码不能为空"
	case n < 6:
		return "密码长度要大于6"
	case n > 20:
		return "密码长度要小于20"
	}
	return ""
}

func (s *Service) mobileMessage(ctx context.Context, mobile string) string {
	switch {
	case mobile == "":
		return "手机号不能为空"
	case len(mobile) != 11:
		return "手机号长度有误"
	case !mobileRe.MatchString(mobile):
		return "手机号码格式错误"
	}
	taken, err := s.users.ExistsByMobile(ctx, mobile)
	if err != nil {
		s.logger.Errorw("check mobile failed", "mobile", mobile, "error", err)
		return "手机号校验失败"
	}
	if taken {
		return "手机号码已存在"
	}
	return ""
}

func (s *Service) smsCodeMessage(code string) string {
	switch n := len([]rune(code)); {
	case n == 0:
		return "短信验证码不能为空"
	case n != s.opts.SMSCodeNums:
		return "短信验证码长度有误"
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "短信验证码格式有误"
		}
	}
	return ""
}

// LoginParams 是登录表单的输入，账号可以是用户名或手机号。
type LoginParams struct {
	UserAccount string `json:"user_account"`
	Password    string `json:"password"`
	RememberMe  bool   `json:"remember_me"`
}

// Login 用用户名或手机号定位账号并校验密码，记住登录时延长会话时效。
func (s *Service) Login(ctx context.Context, params LoginParams) (*SessionResult, error) {
	if strings.TrimSpace(params.UserAccount) == "" || params.Password == "" {
		return nil, &ValidationError{Messages: []string{"用户名和密码不能为空"}}
	}

	u, err := s.users.FindByAccount(ctx, params.UserAccount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(params.Password)); err != nil {
		return nil, ErrWrongPassword
	}

	ttl := s.opts.SessionTTL
	if params.RememberMe {
		ttl = s.opts.RememberTTL
	}
	signed, expiresAt, err := s.sessions.Issue(u.ID, u.Username, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	s.logger.Infow("user logged in", "user_id", u.ID, "remember_me", params.RememberMe)
	return &SessionResult{User: u, Token: signed, ExpiresAt: expiresAt}, nil
}

// UsernameTaken 是注册页用户名可用性探测。
func (s *Service) UsernameTaken(ctx context.Context, username string) (int64, error) {
	return s.users.CountByUsername(ctx, username)
}

// MobileTaken 是注册页手机号可用性探测。
func (s *Service) MobileTaken(ctx context.Context, mobile string) (int64, error) {
	return s.users.CountByMobile(ctx, mobile)
}

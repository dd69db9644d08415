package verify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"newsportal/internal/domain/user"
	"newsportal/internal/infra/captcha"
	"newsportal/internal/infra/codestore"
	"newsportal/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordingSender struct {
	mobiles []string
	params  [][]string
	fail    bool
}

func (r *recordingSender) SendTemplate(ctx context.Context, mobile string, params []string, templateID string) error {
	if r.fail {
		return errors.New("gateway unreachable")
	}
	r.mobiles = append(r.mobiles, mobile)
	r.params = append(r.params, params)
	return nil
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis, *gorm.DB, *recordingSender) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&user.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := codestore.New(rdb)
	issuer := captcha.NewIssuer(store, captcha.Options{TTL: 5 * time.Minute})
	sender := &recordingSender{}
	svc := NewService(store, issuer, repository.NewUserRepository(db), sender, Options{
		SMSCodeTTL:      5 * time.Minute,
		SMSRateLimitTTL: time.Minute,
		SMSCodeNums:     6,
	})
	return svc, mr, db, sender
}

func seedCaptcha(t *testing.T, svc *Service, ctx context.Context) (string, string) {
	t.Helper()
	id := uuid.NewString()
	if _, err := svc.IssueImageCode(ctx, id); err != nil {
		t.Fatalf("issue image code: %v", err)
	}
	text, err := svc.store.Get(ctx, codestore.ImageKey(id))
	if err != nil {
		t.Fatalf("read stored text: %v", err)
	}
	return id, text
}

func TestIssueImageCodeRejectsBadID(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.IssueImageCode(context.Background(), "not-a-uuid")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequestSMSCodeHappyPath(t *testing.T) {
	svc, mr, _, sender := newTestService(t)
	ctx := context.Background()

	id, text := seedCaptcha(t, svc, ctx)
	err := svc.RequestSMSCode(ctx, SMSCodeParams{
		Mobile:      "13812345678",
		ImageCodeID: id,
		Text:        strings.ToLower(text), // 大小写不敏感
	})
	if err != nil {
		t.Fatalf("request sms code: %v", err)
	}

	code, err := svc.store.Get(ctx, codestore.SMSKey("13812345678"))
	if err != nil {
		t.Fatalf("stored sms code: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digit code, got %q", code)
	}
	if len(sender.mobiles) != 1 || sender.mobiles[0] != "13812345678" {
		t.Fatalf("sender not invoked: %v", sender.mobiles)
	}
	if sender.params[0][0] != code {
		t.Fatalf("dispatched code %q != stored %q", sender.params[0][0], code)
	}
	if !mr.Exists(codestore.SMSFlagKey("13812345678")) {
		t.Fatalf("rate limit flag missing")
	}
}

func TestRequestSMSCodeValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.RequestSMSCode(context.Background(), SMSCodeParams{
		Mobile:      "12345",
		ImageCodeID: "bogus",
		Text:        "abcde",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// 错误信息按字段声明顺序以 '/' 拼接。
	want := "手机号码格式不正确/图片id不能为空/验证码超过最大长度"
	if verr.Error() != want {
		t.Fatalf("got %q, want %q", verr.Error(), want)
	}
}

func TestRequestSMSCodeMobileTaken(t *testing.T) {
	svc, _, db, _ := newTestService(t)
	ctx := context.Background()

	if err := db.Create(&user.User{Username: "zhangsan", Mobile: "13812345678", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id, text := seedCaptcha(t, svc, ctx)

	err := svc.RequestSMSCode(ctx, SMSCodeParams{Mobile: "13812345678", ImageCodeID: id, Text: text})
	if !errors.Is(err, ErrMobileTaken) {
		t.Fatalf("expected ErrMobileTaken, got %v", err)
	}
}

func TestRequestSMSCodeCaptchaMismatch(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	id, _ := seedCaptcha(t, svc, ctx)
	err := svc.RequestSMSCode(ctx, SMSCodeParams{Mobile: "13812345678", ImageCodeID: id, Text: "XXXX"})
	if !errors.Is(err, ErrCaptchaMismatch) {
		t.Fatalf("expected ErrCaptchaMismatch, got %v", err)
	}

	// 过期的验证码同样按不匹配处理。
	id2, text2 := seedCaptcha(t, svc, ctx)
	svc.store.Delete(ctx, codestore.ImageKey(id2))
	err = svc.RequestSMSCode(ctx, SMSCodeParams{Mobile: "13812345678", ImageCodeID: id2, Text: text2})
	if !errors.Is(err, ErrCaptchaMismatch) {
		t.Fatalf("expected ErrCaptchaMismatch for expired entry, got %v", err)
	}
}

func TestRequestSMSCodeRateLimited(t *testing.T) {
	svc, mr, _, sender := newTestService(t)
	ctx := context.Background()

	id, text := seedCaptcha(t, svc, ctx)
	if err := svc.RequestSMSCode(ctx, SMSCodeParams{Mobile: "13812345678", ImageCodeID: id, Text: text}); err != nil {
		t.Fatalf("first request: %v", err)
	}

	// 验证码条目在 TTL 内可复用，第二次请求应被限流拦截。
	err := svc.RequestSMSCode(ctx, SMSCodeParams{Mobile: "13812345678", ImageCodeID: id, Text: text})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(sender.mobiles) != 1 {
		t.Fatalf("sender invoked %d times, want 1", len(sender.mobiles))
	}

	// 窗口过期后放行。
	mr.FastForward(61 * time.Second)
	if err := svc.RequestSMSCode(ctx, SMSCodeParams{Mobile: "13812345678", ImageCodeID: id, Text: text}); err != nil {
		t.Fatalf("request after window: %v", err)
	}
}

func TestRequestSMSCodeDispatchFailure(t *testing.T) {
	svc, _, _, sender := newTestService(t)
	ctx := context.Background()
	sender.fail = true

	id, text := seedCaptcha(t, svc, ctx)
	err := svc.RequestSMSCode(ctx, SMSCodeParams{Mobile: "13812345678", ImageCodeID: id, Text: text})
	if !errors.Is(err, ErrDispatch) {
		t.Fatalf("expected ErrDispatch, got %v", err)
	}
}

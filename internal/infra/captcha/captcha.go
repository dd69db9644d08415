package captcha

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"newsportal/internal/infra/codestore"

	"github.com/mojocn/base64Captcha"
)

// ContentType 是图片验证码响应的 MIME 类型，与前端 <img> 标签的约定一致。
const ContentType = "image/jpg"

const (
	defaultWidth   = 90
	defaultHeight  = 34
	defaultLength  = 4
	defaultNoise   = 6
	defaultSource  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultShowOpt = base64Captcha.OptionShowHollowLine
)

// Options 描述验证码图像参数。
type Options struct {
	Width  int
	Height int
	Length int
	TTL    time.Duration
}

// Issuer 负责生成图形验证码并把答案绑定到调用方提供的 id 上。
// id 由浏览器生成 uuid 携带过来，服务端从不自造，因此同一个 id
// 在 TTL 内始终对应最后一次下发的文本。
type Issuer struct {
	store  *codestore.Store
	driver *base64Captcha.DriverString
	ttl    time.Duration
}

// NewIssuer 构造验证码签发器。
func NewIssuer(store *codestore.Store, opts Options) *Issuer {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	height := opts.Height
	if height <= 0 {
		height = defaultHeight
	}
	length := opts.Length
	if length <= 0 {
		length = defaultLength
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	driver := base64Captcha.NewDriverString(
		height,
		width,
		defaultNoise,
		defaultShowOpt,
		length,
		defaultSource,
		nil,
		nil,
		nil,
	)

	return &Issuer{
		store:  store,
		driver: driver,
		ttl:    ttl,
	}
}

// Issue 生成一张验证码图片，把大写答案写入 img_{id}，返回图片字节。
func (i *Issuer) Issue(ctx context.Context, imageCodeID string) ([]byte, string, error) {
	_, content, answer := i.driver.GenerateIdQuestionAnswer()

	item, err := i.driver.DrawCaptcha(content)
	if err != nil {
		return nil, "", fmt.Errorf("draw captcha: %w", err)
	}

	var buf bytes.Buffer
	if _, err := item.WriteTo(&buf); err != nil {
		return nil, "", fmt.Errorf("encode captcha: %w", err)
	}

	text := strings.ToUpper(answer)
	if err := i.store.SetWithTTL(ctx, codestore.ImageKey(imageCodeID), text, i.ttl); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), text, nil
}

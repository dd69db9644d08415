package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionManager 基于对称密钥签发登录会话令牌。
// 门户只区分"已登录/未登录"，因此一个会话令牌即可。
type SessionManager struct {
	secret string
}

// NewSessionManager 创建会话管理器，注入 JWT 签名密钥。
func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{secret: secret}
}

// Session 是解析后的会话信息。
type Session struct {
	UserID   uint64
	Username string
}

// Issue 为指定用户签发会话令牌，ttl 由登录表单的"记住我"决定。
func (m *SessionManager) Issue(userID uint64, username string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}

	expiresAt := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(userID, 10),
		"username": username,
		"exp":      expiresAt.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse 校验令牌并还原会话信息。
func (m *SessionManager) Parse(raw string) (Session, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || userID == 0 {
		return Session{}, ErrInvalidToken
	}

	username, _ := claims["username"].(string)

	return Session{
		UserID:   userID,
		Username: username,
	}, nil
}

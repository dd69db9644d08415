package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	response "newsportal/internal/infra/common"
	"newsportal/internal/infra/token"
)

// 会话信息写入 gin 上下文使用的键。
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
)

// AuthMiddleware 校验会话令牌的合法性，保护登录后才能访问的路由。
type AuthMiddleware struct {
	sessions *token.SessionManager
}

// NewAuthMiddleware 创建鉴权中间件实例。
func NewAuthMiddleware(sessions *token.SessionManager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Handle 返回 Gin 中间件：验证 Bearer Token 并把用户信息注入上下文，
// 校验失败以统一信封返回 SESSIONERR。
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			response.Abort(c, response.CodeSessionErr, "")
			return
		}

		session, err := m.sessions.Parse(strings.TrimSpace(authHeader[7:]))
		if err != nil {
			response.Abort(c, response.CodeSessionErr, "")
			return
		}

		c.Set(CtxUserID, session.UserID)
		c.Set(CtxUsername, session.Username)
		c.Next()
	}
}

// CurrentUserID 从上下文取出登录用户 id，未登录时返回 0。
func CurrentUserID(c *gin.Context) uint64 {
	if v, ok := c.Get(CtxUserID); ok {
		if id, ok := v.(uint64); ok {
			return id
		}
	}
	return 0
}

package handler

import (
	"errors"

	response "newsportal/internal/infra/common"
	"newsportal/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责注册、登录、登出与可用性探测。
type UserHandler struct {
	service *auth.Service
}

// NewUserHandler 构造用户 handler。
func NewUserHandler(service *auth.Service) *UserHandler {
	return &UserHandler{service: service}
}

// sessionData 是注册或登录成功后返回给前端的数据。
type sessionData struct {
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Register 处理注册请求：表单校验失败返回 PARAMERR 与拼接后的提示。
func (h *UserHandler) Register(c *gin.Context) {
	var req auth.RegisterParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Fail(c, response.CodeParamErr, verr.Error())
		case errors.Is(err, auth.ErrStore):
			response.Fail(c, response.CodeUnknownErr, "")
		default:
			response.Fail(c, response.CodeDBErr, "")
		}
		return
	}

	response.OK(c, "注册成功", sessionData{
		UserID:    res.User.ID,
		Username:  res.User.Username,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.Unix(),
	})
}

// Login 处理登录请求，账号可以是用户名或手机号。
func (h *UserHandler) Login(c *gin.Context) {
	var req auth.LoginParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Fail(c, response.CodeParamErr, verr.Error())
		case errors.Is(err, auth.ErrUserNotFound):
			response.Fail(c, response.CodeUserErr, err.Error())
		case errors.Is(err, auth.ErrWrongPassword):
			response.Fail(c, response.CodePwdErr, err.Error())
		default:
			response.Fail(c, response.CodeDBErr, "")
		}
		return
	}

	response.OK(c, "登录成功", sessionData{
		UserID:    res.User.ID,
		Username:  res.User.Username,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.Unix(),
	})
}

// Logout 登出。会话是无状态令牌，服务端只需应答成功，客户端丢弃令牌。
func (h *UserHandler) Logout(c *gin.Context) {
	response.OK(c, "登出成功", nil)
}

// UsernameCount 是注册页用户名可用性探测，返回同名数量。
func (h *UserHandler) UsernameCount(c *gin.Context) {
	username := c.Param("username")
	count, err := h.service.UsernameTaken(c.Request.Context(), username)
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"username": username, "count": count})
}

// MobileCount 是注册页手机号可用性探测。
func (h *UserHandler) MobileCount(c *gin.Context) {
	mobile := c.Param("mobile")
	count, err := h.service.MobileTaken(c.Request.Context(), mobile)
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"mobile": mobile, "count": count})
}

package handler

import (
	"errors"

	"newsportal/internal/infra/captcha"
	response "newsportal/internal/infra/common"
	"newsportal/internal/service/verify"

	"github.com/gin-gonic/gin"
)

// VerifyHandler 负责图片验证码与短信验证码相关的 HTTP 请求。
type VerifyHandler struct {
	service *verify.Service
}

// NewVerifyHandler 构造验证 handler，注入业务层服务做实际处理。
func NewVerifyHandler(service *verify.Service) *VerifyHandler {
	return &VerifyHandler{service: service}
}

// ImageCode 生成图片验证码。与其它接口不同，这里直接回图片字节流，
// 前端 <img src="/image_codes/{uuid}"> 即可展示。
func (h *VerifyHandler) ImageCode(c *gin.Context) {
	png, err := h.service.IssueImageCode(c.Request.Context(), c.Param("image_code_id"))
	if err != nil {
		var verr *verify.ValidationError
		if errors.As(err, &verr) {
			response.Fail(c, response.CodeParamErr, verr.Error())
			return
		}
		response.Fail(c, response.CodeUnknownErr, "")
		return
	}
	c.Data(200, captcha.ContentType, png)
}

// SMSCode 请求下发短信验证码。
func (h *VerifyHandler) SMSCode(c *gin.Context) {
	var req verify.SMSCodeParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}

	if err := h.service.RequestSMSCode(c.Request.Context(), req); err != nil {
		var verr *verify.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Fail(c, response.CodeParamErr, verr.Error())
		case errors.Is(err, verify.ErrMobileTaken):
			response.Fail(c, response.CodeDataExist, err.Error())
		case errors.Is(err, verify.ErrCaptchaMismatch):
			response.Fail(c, response.CodeParamErr, err.Error())
		case errors.Is(err, verify.ErrRateLimited):
			response.Fail(c, response.CodeDataErr, err.Error())
		case errors.Is(err, verify.ErrDispatch):
			response.Fail(c, response.CodeSMSError, "")
		case errors.Is(err, verify.ErrStore):
			response.Fail(c, response.CodeUnknownErr, "")
		default:
			response.Fail(c, response.CodeDBErr, "")
		}
		return
	}
	response.OK(c, "发送成功", nil)
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Code 是统一的数字错误码，errno=0 代表成功。
type Code int

const (
	CodeOK         Code = 0
	CodeDBErr      Code = 4001
	CodeNoData     Code = 4002
	CodeDataExist  Code = 4003
	CodeDataErr    Code = 4004
	CodeSessionErr Code = 4101
	CodeLoginErr   Code = 4102
	CodeParamErr   Code = 4103
	CodeUserErr    Code = 4104
	CodePwdErr     Code = 4106
	CodeSMSError   Code = 4301
	CodeSMSFail    Code = 4302
	CodeUnknownErr Code = 4501
)

// errMap 是各错误码对应的默认提示语，与前端约定保持一致。
var errMap = map[Code]string{
	CodeOK:         "成功",
	CodeDBErr:      "数据库查询错误",
	CodeNoData:     "无数据",
	CodeDataExist:  "数据已存在",
	CodeDataErr:    "数据错误",
	CodeSessionErr: "用户未登录",
	CodeLoginErr:   "用户登录失败",
	CodeParamErr:   "参数错误",
	CodeUserErr:    "用户不存在或未激活",
	CodePwdErr:     "密码错误",
	CodeSMSError:   "短信验证码下发异常",
	CodeSMSFail:    "短信验证码下发失败",
	CodeUnknownErr: "未知错误",
}

// Envelope 是所有 JSON 接口的公共返回结构。
type Envelope struct {
	Errno  Code   `json:"errno"`
	Errmsg string `json:"errmsg"`
	Data   any    `json:"data"`
}

// Message 返回错误码的默认文案。
func Message(code Code) string {
	if msg, ok := errMap[code]; ok {
		return msg
	}
	return errMap[CodeUnknownErr]
}

// JSON 以统一信封输出响应，HTTP 状态码始终为 200，业务状态看 errno。
func JSON(c *gin.Context, code Code, errmsg string, data any) {
	if errmsg == "" {
		errmsg = Message(code)
	}
	c.JSON(http.StatusOK, Envelope{
		Errno:  code,
		Errmsg: errmsg,
		Data:   data,
	})
}

// OK 返回成功信封，data 可以为 nil。
func OK(c *gin.Context, errmsg string, data any) {
	JSON(c, CodeOK, errmsg, data)
}

// Fail 返回失败信封，errmsg 为空时取错误码默认文案。
func Fail(c *gin.Context, code Code, errmsg string) {
	JSON(c, code, errmsg, nil)
}

// Abort 在中间件里终止请求并输出统一信封。
func Abort(c *gin.Context, code Code, errmsg string) {
	if errmsg == "" {
		errmsg = Message(code)
	}
	c.AbortWithStatusJSON(http.StatusOK, Envelope{
		Errno:  code,
		Errmsg: errmsg,
	})
}

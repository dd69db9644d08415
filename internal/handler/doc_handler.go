package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	response "newsportal/internal/infra/common"
	"newsportal/internal/infra/logger"
	"newsportal/internal/service/doc"

	"github.com/gin-gonic/gin"
)

// DocHandler 负责文档列表与下载代理。
type DocHandler struct {
	service *doc.Service
}

// NewDocHandler 构造文档 handler。
func NewDocHandler(service *doc.Service) *DocHandler {
	return &DocHandler{service: service}
}

// List 返回文档列表页数据。
func (h *DocHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"doc_list": items})
}

// Download 把对象存储上的文件流式转发给客户端。
// 这是少数不走 JSON 信封的接口：找不到就是裸 404。
func (h *DocHandler) Download(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("doc_id"), 10, 64)
	if err != nil || docID == 0 {
		c.Status(http.StatusNotFound)
		return
	}

	dl, err := h.service.Open(c.Request.Context(), docID)
	if err != nil {
		if errors.Is(err, doc.ErrNotFound) || errors.Is(err, doc.ErrUpstream) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	defer dl.Body.Close()

	c.Header("Content-Type", dl.ContentType)
	c.Header("Content-Disposition", dl.Disposition)
	if dl.Length > 0 {
		c.Header("Content-Length", strconv.FormatInt(dl.Length, 10))
	}

	// 直接对拷，慢客户端的背压传导到上游连接。
	if _, err := io.Copy(c.Writer, dl.Body); err != nil {
		logger.S().Warnw("doc stream interrupted", "doc_id", docID, "error", err)
	}
}

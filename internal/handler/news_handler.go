package handler

import (
	"errors"
	"strconv"

	response "newsportal/internal/infra/common"
	"newsportal/internal/middleware"
	"newsportal/internal/service/news"

	"github.com/gin-gonic/gin"
)

// NewsHandler 负责门户侧的文章浏览、评论与搜索接口。
type NewsHandler struct {
	service *news.Service
}

// NewNewsHandler 构造门户 handler。
func NewNewsHandler(service *news.Service) *NewsHandler {
	return &NewsHandler{service: service}
}

// Index 返回首页聚合数据：热门文章、轮播图与标签导航。
func (h *NewsHandler) Index(c *gin.Context) {
	data, err := h.service.Index(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", data)
}

// List 返回某标签下的文章分页。
func (h *NewsHandler) List(c *gin.Context) {
	tagID, _ := strconv.ParseUint(c.Query("tag_id"), 10, 64)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	data, err := h.service.ListByTag(c.Request.Context(), tagID, page)
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", data)
}

// Detail 返回文章详情与评论区，并计一次点击。
func (h *NewsHandler) Detail(c *gin.Context) {
	newsID, err := strconv.ParseUint(c.Param("news_id"), 10, 64)
	if err != nil || newsID == 0 {
		response.Fail(c, response.CodeParamErr, "")
		return
	}

	data, err := h.service.Detail(c.Request.Context(), newsID)
	if err != nil {
		switch {
		case errors.Is(err, news.ErrNewsNotFound):
			response.Fail(c, response.CodeNoData, err.Error())
		case errors.Is(err, news.ErrCommentDepth):
			response.Fail(c, response.CodeDataErr, err.Error())
		default:
			response.Fail(c, response.CodeDBErr, "")
		}
		return
	}
	response.OK(c, "", data)
}

// Banners 返回首页轮播图，供前端异步加载。
func (h *NewsHandler) Banners(c *gin.Context) {
	cards, err := h.service.Banners(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"banners": cards})
}

type commentRequest struct {
	Content  string  `json:"content"`
	ParentID *uint64 `json:"parent_id"`
}

// AddComment 发表评论或楼中楼回复，需要登录。
func (h *NewsHandler) AddComment(c *gin.Context) {
	newsID, err := strconv.ParseUint(c.Param("news_id"), 10, 64)
	if err != nil || newsID == 0 {
		response.Fail(c, response.CodeParamErr, "")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}

	view, err := h.service.AddComment(c.Request.Context(), news.CommentParams{
		NewsID:   newsID,
		AuthorID: middleware.CurrentUserID(c),
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, news.ErrEmptyContent), errors.Is(err, news.ErrParentMismatch):
			response.Fail(c, response.CodeParamErr, err.Error())
		case errors.Is(err, news.ErrNewsNotFound), errors.Is(err, news.ErrParentNotFound):
			response.Fail(c, response.CodeNoData, err.Error())
		case errors.Is(err, news.ErrCommentDepth):
			response.Fail(c, response.CodeDataErr, err.Error())
		default:
			response.Fail(c, response.CodeDBErr, "")
		}
		return
	}
	response.OK(c, "评论成功", view)
}

// Search 全文检索文章，空关键词时回退到热门列表。
func (h *NewsHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	data, err := h.service.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", data)
}

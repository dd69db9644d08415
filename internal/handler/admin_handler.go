package handler

import (
	"errors"
	"io"
	"strconv"

	response "newsportal/internal/infra/common"
	"newsportal/internal/middleware"
	"newsportal/internal/service/admin"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责后台管理的全部 HTTP 接口。
type AdminHandler struct {
	service *admin.Service
}

// NewAdminHandler 构造后台 handler。
func NewAdminHandler(service *admin.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// failAdmin 把后台服务的业务错误映射到统一错误码。
func failAdmin(c *gin.Context, err error) {
	switch {
	case errors.Is(err, admin.ErrNotFound):
		response.Fail(c, response.CodeNoData, err.Error())
	case errors.Is(err, admin.ErrTagExists), errors.Is(err, admin.ErrHotExists), errors.Is(err, admin.ErrBannerExists):
		response.Fail(c, response.CodeDataExist, err.Error())
	case errors.Is(err, admin.ErrTagUnchanged), errors.Is(err, admin.ErrUnchanged), errors.Is(err, admin.ErrNotImage):
		response.Fail(c, response.CodeDataErr, err.Error())
	case errors.Is(err, admin.ErrBadPriority), errors.Is(err, admin.ErrEmptyField):
		response.Fail(c, response.CodeParamErr, err.Error())
	case errors.Is(err, admin.ErrTokenDisabled):
		response.Fail(c, response.CodeUnknownErr, err.Error())
	default:
		response.Fail(c, response.CodeDBErr, "")
	}
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.CodeParamErr, "")
		return 0, false
	}
	return id, true
}

// ---- 文章 ----

// ListNews 返回后台文章列表，支持日期、标题、作者与标签过滤。
func (h *AdminHandler) ListNews(c *gin.Context) {
	list, err := h.service.ListNews(c.Request.Context(), admin.NewsQuery{
		StartDate:  c.Query("start_time"),
		EndDate:    c.Query("end_time"),
		Title:      c.Query("title"),
		AuthorName: c.Query("author_name"),
		TagID:      c.Query("tag_id"),
		Page:       c.Query("page"),
	})
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", list)
}

type newsRequest struct {
	Title    string `json:"title"`
	Digest   string `json:"digest"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	TagName  string `json:"tag_name"`
}

// PublishNews 发布文章。
func (h *AdminHandler) PublishNews(c *gin.Context) {
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	n, err := h.service.PublishNews(c.Request.Context(), admin.NewsParams{
		Title:    req.Title,
		Digest:   req.Digest,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		TagName:  req.TagName,
		AuthorID: middleware.CurrentUserID(c),
	})
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "发布成功", gin.H{"news_id": n.ID})
}

// GetNews 返回一篇文章供编辑页回显。
func (h *AdminHandler) GetNews(c *gin.Context) {
	newsID, ok := pathID(c, "news_id")
	if !ok {
		return
	}
	n, err := h.service.GetNews(c.Request.Context(), newsID)
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "", n)
}

// EditNews 更新文章。
func (h *AdminHandler) EditNews(c *gin.Context) {
	newsID, ok := pathID(c, "news_id")
	if !ok {
		return
	}
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	if _, err := h.service.EditNews(c.Request.Context(), newsID, admin.NewsParams{
		Title:    req.Title,
		Digest:   req.Digest,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		TagName:  req.TagName,
		AuthorID: middleware.CurrentUserID(c),
	}); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "修改成功", nil)
}

// DeleteNews 删除文章。
func (h *AdminHandler) DeleteNews(c *gin.Context) {
	newsID, ok := pathID(c, "news_id")
	if !ok {
		return
	}
	if err := h.service.DeleteNews(c.Request.Context(), newsID); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// PickNews 按标签分页列文章，供热门/轮播图表单挑选。
func (h *AdminHandler) PickNews(c *gin.Context) {
	tagID, _ := strconv.ParseUint(c.Query("tag_id"), 10, 64)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	rows, total, err := h.service.PickNews(c.Request.Context(), tagID, page)
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"news_list": rows, "total": total})
}

// ---- 标签 ----

// ListTags 返回标签及其下文章数。
func (h *AdminHandler) ListTags(c *gin.Context) {
	rows, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"tag_list": rows})
}

type tagRequest struct {
	Name string `json:"name"`
}

// CreateTag 新建标签。
func (h *AdminHandler) CreateTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	tag, err := h.service.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "添加成功", gin.H{"tag_id": tag.ID, "name": tag.Name})
}

// RenameTag 修改标签名。
func (h *AdminHandler) RenameTag(c *gin.Context) {
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	if err := h.service.RenameTag(c.Request.Context(), tagID, req.Name); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "修改成功", nil)
}

// DeleteTag 删除标签。
func (h *AdminHandler) DeleteTag(c *gin.Context) {
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}
	if err := h.service.DeleteTag(c.Request.Context(), tagID); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// ---- 热门文章 ----

// ListHotNews 返回热门文章列表。
func (h *AdminHandler) ListHotNews(c *gin.Context) {
	rows, err := h.service.ListHotNews(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"hotnews_list": rows})
}

type hotNewsRequest struct {
	NewsID   uint64 `json:"news_id"`
	Priority int    `json:"priority"`
}

// AddHotNews 把文章加入热门。
func (h *AdminHandler) AddHotNews(c *gin.Context) {
	var req hotNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	hn, err := h.service.AddHotNews(c.Request.Context(), req.NewsID, req.Priority)
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "添加成功", gin.H{"hotnews_id": hn.ID})
}

// UpdateHotNews 调整热门文章优先级。
func (h *AdminHandler) UpdateHotNews(c *gin.Context) {
	hotID, ok := pathID(c, "hotnews_id")
	if !ok {
		return
	}
	var req struct {
		Priority int `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	if err := h.service.UpdateHotNewsPriority(c.Request.Context(), hotID, req.Priority); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "修改成功", nil)
}

// DeleteHotNews 把文章移出热门。
func (h *AdminHandler) DeleteHotNews(c *gin.Context) {
	hotID, ok := pathID(c, "hotnews_id")
	if !ok {
		return
	}
	if err := h.service.DeleteHotNews(c.Request.Context(), hotID); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// ---- 轮播图 ----

// ListBanners 返回轮播图列表。
func (h *AdminHandler) ListBanners(c *gin.Context) {
	rows, err := h.service.ListBanners(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"banner_list": rows})
}

type bannerRequest struct {
	NewsID   uint64 `json:"news_id"`
	ImageURL string `json:"image_url"`
	Priority int    `json:"priority"`
}

// AddBanner 为文章配置轮播图。
func (h *AdminHandler) AddBanner(c *gin.Context) {
	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	b, err := h.service.AddBanner(c.Request.Context(), req.NewsID, req.ImageURL, req.Priority)
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "添加成功", gin.H{"banner_id": b.ID})
}

// UpdateBanner 更新轮播图。
func (h *AdminHandler) UpdateBanner(c *gin.Context) {
	bannerID, ok := pathID(c, "banner_id")
	if !ok {
		return
	}
	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	if err := h.service.UpdateBanner(c.Request.Context(), bannerID, req.ImageURL, req.Priority); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "修改成功", nil)
}

// DeleteBanner 下线轮播图。
func (h *AdminHandler) DeleteBanner(c *gin.Context) {
	bannerID, ok := pathID(c, "banner_id")
	if !ok {
		return
	}
	if err := h.service.DeleteBanner(c.Request.Context(), bannerID); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// ---- 文档 ----

// ListDocs 返回文档列表。
func (h *AdminHandler) ListDocs(c *gin.Context) {
	docs, err := h.service.ListDocs(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"doc_list": docs})
}

type docRequest struct {
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	FileURL  string `json:"file_url"`
	ImageURL string `json:"image_url"`
}

// PublishDoc 发布文档。
func (h *AdminHandler) PublishDoc(c *gin.Context) {
	var req docRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	d, err := h.service.PublishDoc(c.Request.Context(), admin.DocParams{
		Title:    req.Title,
		Desc:     req.Desc,
		FileURL:  req.FileURL,
		ImageURL: req.ImageURL,
		AuthorID: middleware.CurrentUserID(c),
	})
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "发布成功", gin.H{"doc_id": d.ID})
}

// EditDoc 更新文档。
func (h *AdminHandler) EditDoc(c *gin.Context) {
	docID, ok := pathID(c, "doc_id")
	if !ok {
		return
	}
	var req docRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	if _, err := h.service.EditDoc(c.Request.Context(), docID, admin.DocParams{
		Title:    req.Title,
		Desc:     req.Desc,
		FileURL:  req.FileURL,
		ImageURL: req.ImageURL,
	}); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "修改成功", nil)
}

// DeleteDoc 删除文档。
func (h *AdminHandler) DeleteDoc(c *gin.Context) {
	docID, ok := pathID(c, "doc_id")
	if !ok {
		return
	}
	if err := h.service.DeleteDoc(c.Request.Context(), docID); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// ---- 课程 ----

// ListCourses 返回课程列表。
func (h *AdminHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"course_list": courses})
}

// CourseMeta 返回课程表单需要的教师与分类列表。
func (h *AdminHandler) CourseMeta(c *gin.Context) {
	teachers, err := h.service.ListCourseTeachers(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	categories, err := h.service.ListCourseCategories(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"teachers": teachers, "categories": categories})
}

// GetCourse 返回一门课程供编辑页回显。
func (h *AdminHandler) GetCourse(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "", course)
}

// PublishCourse 发布课程。
func (h *AdminHandler) PublishCourse(c *gin.Context) {
	var req admin.CourseParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	course, err := h.service.PublishCourse(c.Request.Context(), req)
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "发布成功", gin.H{"course_id": course.ID})
}

// EditCourse 更新课程。
func (h *AdminHandler) EditCourse(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var req admin.CourseParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	if _, err := h.service.EditCourse(c.Request.Context(), courseID, req); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "修改成功", nil)
}

// DeleteCourse 删除课程。
func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), courseID); err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// ---- 上传 ----

// UploadImage 接收 multipart 图片并转存到分布式文件存储。
func (h *AdminHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image_file")
	if err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Fail(c, response.CodeParamErr, "")
		return
	}

	url, err := h.service.UploadImage(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "上传成功", gin.H{"image_url": url})
}

// StorageToken 签发对象存储直传凭证。
func (h *AdminHandler) StorageToken(c *gin.Context) {
	cred, err := h.service.IssueStorageToken(c.Request.Context(), c.Query("filename"))
	if err != nil {
		failAdmin(c, err)
		return
	}
	response.OK(c, "", cred)
}

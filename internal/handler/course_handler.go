package handler

import (
	"errors"
	"strconv"

	response "newsportal/internal/infra/common"
	"newsportal/internal/service/course"

	"github.com/gin-gonic/gin"
)

// CourseHandler 负责门户侧的课程列表与播放页接口。
type CourseHandler struct {
	service *course.Service
}

// NewCourseHandler 构造课程 handler。
func NewCourseHandler(service *course.Service) *CourseHandler {
	return &CourseHandler{service: service}
}

// List 返回课程列表页数据。
func (h *CourseHandler) List(c *gin.Context) {
	cards, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", gin.H{"course_list": cards})
}

// Detail 返回课程播放页数据。
func (h *CourseHandler) Detail(c *gin.Context) {
	courseID, err := strconv.ParseUint(c.Param("course_id"), 10, 64)
	if err != nil || courseID == 0 {
		response.Fail(c, response.CodeParamErr, "")
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			response.Fail(c, response.CodeNoData, err.Error())
			return
		}
		response.Fail(c, response.CodeDBErr, "")
		return
	}
	response.OK(c, "", detail)
}

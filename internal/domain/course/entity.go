package course

import (
	"newsportal/internal/domain/model"

	"gorm.io/datatypes"
)

// Teacher 是授课教师档案。
type Teacher struct {
	model.Base

	Name            string `gorm:"size:64" json:"name"`             // 姓名
	AvatarURL       string `gorm:"size:512" json:"avatar_url"`      // 头像 url
	PositionalTitle string `gorm:"size:128" json:"positional_title"`// 职称
	Profile         string `gorm:"type:text" json:"profile"`        // 简介
}

// TableName 指定教师表名。
func (Teacher) TableName() string {
	return "tb_course_teacher"
}

// Category 是课程分类。
type Category struct {
	model.Base

	Name string `gorm:"size:64;uniqueIndex" json:"name"` // 分类名
}

// TableName 指定课程分类表名。
func (Category) TableName() string {
	return "tb_course_category"
}

// Course 是在线课程，outline 以 JSON 存储章节列表。
type Course struct {
	model.Base

	Title      string         `gorm:"size:150" json:"title"`      // 课程标题
	CoverURL   string         `gorm:"size:512" json:"cover_url"`  // 封面 url
	VideoURL   string         `gorm:"size:512" json:"video_url"`  // 视频 url
	Profile    string         `gorm:"type:text" json:"profile"`   // 课程简介
	Outline    datatypes.JSON `gorm:"type:json" json:"outline"`   // 章节大纲（JSON 数组）
	TeacherID  *uint64        `gorm:"index" json:"teacher_id"`    // 授课教师
	CategoryID *uint64        `gorm:"index" json:"category_id"`   // 所属分类

	Teacher  *Teacher  `gorm:"constraint:OnDelete:SET NULL" json:"teacher,omitempty"`
	Category *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// TableName 指定课程表名。
func (Course) TableName() string {
	return "tb_course"
}

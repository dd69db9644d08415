package doc

import (
	"newsportal/internal/domain/model"
	"newsportal/internal/domain/user"
)

// Doc 是可下载的文档资料，file_url 指向内部对象存储上的路径。
type Doc struct {
	model.Base

	Title    string  `gorm:"size:150" json:"title"`     // 文档标题
	Desc     string  `gorm:"size:200" json:"desc"`      // 文档简介
	FileURL  string  `gorm:"size:512" json:"file_url"`  // 存储侧文件路径
	ImageURL string  `gorm:"size:512" json:"image_url"` // 封面图 url
	AuthorID *uint64 `gorm:"index" json:"author_id"`    // 上传人

	Author *user.User `gorm:"constraint:OnDelete:SET NULL" json:"author,omitempty"`
}

// TableName 指定文档表名。
func (Doc) TableName() string {
	return "tb_docs"
}

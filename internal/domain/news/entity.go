package news

import (
	"newsportal/internal/domain/model"
	"newsportal/internal/domain/user"
)

// HotNews / Banner 的优先级取值集合，数字越小越靠前。
const (
	HotNewsPriorityMin = 1
	HotNewsPriorityMax = 3
	HotNewsDefaultPri  = 3

	BannerPriorityMin = 1
	BannerPriorityMax = 6
	BannerDefaultPri  = 6
)

// Tag 是文章标签。
type Tag struct {
	model.Base

	Name string `gorm:"size:64;uniqueIndex" json:"name"` // 标签名
}

// TableName 指定标签表名。
func (Tag) TableName() string {
	return "tb_tag"
}

// News 是文章实体。
type News struct {
	model.Base

	Title    string  `gorm:"size:150" json:"title"`       // 标题
	Digest   string  `gorm:"size:200" json:"digest"`      // 摘要
	Content  string  `gorm:"type:longtext" json:"content"`// 正文
	Clicks   uint    `gorm:"default:0" json:"clicks"`     // 点击量
	ImageURL string  `gorm:"size:512" json:"image_url"`   // 题图 url
	TagID    *uint64 `gorm:"index" json:"tag_id"`         // 所属标签，标签删除时置空
	AuthorID *uint64 `gorm:"index" json:"author_id"`      // 作者，用户删除时置空

	Tag    *Tag       `gorm:"constraint:OnDelete:SET NULL" json:"tag,omitempty"`
	Author *user.User `gorm:"constraint:OnDelete:SET NULL" json:"author,omitempty"`
}

// TableName 指定文章表名。
func (News) TableName() string {
	return "tb_news"
}

// Comment 是文章评论，parent_id 指向同一篇文章下的父评论，构成楼中楼。
type Comment struct {
	model.Base

	Content  string  `gorm:"type:longtext" json:"content"` // 评论内容
	AuthorID *uint64 `gorm:"index" json:"author_id"`       // 评论人，用户删除时置空
	NewsID   uint64  `gorm:"index;not null" json:"news_id"`// 被评论的文章，文章删除时级联删除
	ParentID *uint64 `gorm:"index" json:"parent_id"`       // 父评论，父评论删除时级联删除

	Author *user.User `gorm:"constraint:OnDelete:SET NULL" json:"author,omitempty"`
	News   *News      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Parent *Comment   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定评论表名。
func (Comment) TableName() string {
	return "tb_comments"
}

// HotNews 把一篇文章标记为热门，priority ∈ {1,2,3}。
type HotNews struct {
	model.Base

	NewsID   uint64 `gorm:"uniqueIndex;not null" json:"news_id"` // 一对一关联的文章
	Priority int    `gorm:"default:3" json:"priority"`           // 优先级

	News *News `gorm:"constraint:OnDelete:CASCADE" json:"news,omitempty"`
}

// TableName 指定热门文章表名。
func (HotNews) TableName() string {
	return "tb_hotnews"
}

// Banner 是首页轮播图，priority ∈ {1..6}。
type Banner struct {
	model.Base

	ImageURL string `gorm:"size:512" json:"image_url"`           // 轮播大图 url
	Priority int    `gorm:"default:6" json:"priority"`           // 优先级
	NewsID   uint64 `gorm:"uniqueIndex;not null" json:"news_id"` // 一对一关联的文章

	News *News `gorm:"constraint:OnDelete:CASCADE" json:"news,omitempty"`
}

// TableName 指定轮播图表名。
func (Banner) TableName() string {
	return "tb_banner"
}

// ValidHotNewsPriority 判断热门文章优先级是否在允许集合内。
func ValidHotNewsPriority(priority int) bool {
	return priority >= HotNewsPriorityMin && priority <= HotNewsPriorityMax
}

// ValidBannerPriority 判断轮播图优先级是否在允许集合内。
func ValidBannerPriority(priority int) bool {
	return priority >= BannerPriorityMin && priority <= BannerPriorityMax
}

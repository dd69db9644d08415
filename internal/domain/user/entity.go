package user

import (
	"newsportal/internal/domain/model"
)

// MobilePattern 是大陆手机号的校验正则，注册与登录共用。
const MobilePattern = `^1[3-9]\d{9}$`

// User 是门户的注册用户，注册时只写入用户名、手机号和密码哈希。
type User struct {
	model.Base

	Username     string `gorm:"size:20;uniqueIndex" json:"username"` // 登录/展示用的唯一用户名
	Mobile       string `gorm:"size:11;uniqueIndex" json:"mobile"`   // 注册手机号（唯一）
	PasswordHash string `gorm:"size:255" json:"-"`                   // bcrypt 生成的密码哈希
	EmailActive  bool   `gorm:"default:false" json:"email_active"`   // 邮箱激活状态，预留
}

// TableName 指定用户表名。
func (User) TableName() string {
	return "db_users"
}

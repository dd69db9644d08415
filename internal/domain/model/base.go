package model

import "time"

// Base 是所有持久化实体共享的公共字段。
// 删除一律是逻辑删除：行永远保留，查询方必须过滤 is_deleted=false。
type Base struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`                      // 自增主键
	CreatedAt time.Time `json:"created_at"`                                // 创建时间戳（gorm 自动维护）
	UpdatedAt time.Time `json:"updated_at"`                                // 更新时间戳（gorm 自动维护）
	IsDeleted bool      `gorm:"default:false;index" json:"-"`              // 软删除标记
}

package models

import (
	"strings"
	"time"
)

// Customer 顾客身份，以归一化联系方式为键，只增不删
type Customer struct {
	ID           uint       `gorm:"primarykey" json:"id"`                  // 主键
	Name         string     `gorm:"not null" json:"name"`                  // 最近一次提交的姓名
	Contact      string     `gorm:"uniqueIndex;not null" json:"contact"`   // 归一化联系方式（手机号或邮箱）
	Phone        string     `gorm:"index" json:"phone"`                    // 手机号（联系方式非邮箱时）
	Email        string     `gorm:"index" json:"email"`                    // 邮箱（联系方式含 @ 时）
	Visits       int        `gorm:"not null;default:0" json:"visits"`      // 累计有效评价次数
	LastReviewAt *time.Time `gorm:"index" json:"lastReviewAt"`             // 最近一次有效评价时间
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`                // 创建时间
	UpdatedAt    time.Time  `json:"updatedAt"`                             // 更新时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}

// NormalizeContact 联系方式归一化：去除全部空白并转小写
func NormalizeContact(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), ""))
}

// ApplyContact 写入归一化联系方式并拆分手机号/邮箱
func (c *Customer) ApplyContact(raw string) {
	contact := NormalizeContact(raw)
	c.Contact = contact
	if strings.Contains(contact, "@") {
		c.Email = contact
		c.Phone = ""
		return
	}
	c.Phone = contact
	c.Email = ""
}

package models

import "time"

// Coupon 奖励优惠券
// (customer_id, multiple_index) 唯一约束保证每满一个阈值倍数只发一张；
// 手动券的 multiple_index 为 NULL，不受该约束限制。
type Coupon struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                                  // 主键
	Code          string     `gorm:"uniqueIndex;size:32;not null" json:"code"`                              // 券码
	CustomerID    uint       `gorm:"not null;uniqueIndex:idx_coupon_customer_multiple,priority:1" json:"customerId"` // 顾客 ID
	MultipleIndex *int       `gorm:"uniqueIndex:idx_coupon_customer_multiple,priority:2" json:"multipleIndex,omitempty"` // 第几个阈值倍数
	StationID     uint       `gorm:"index;not null" json:"stationId"`                                       // 发券站点
	ReviewID      *uint      `gorm:"index" json:"reviewId,omitempty"`                                       // 关联评价
	Origin        string     `gorm:"size:16;not null;index" json:"origin"`                                  // 来源（review/manual）
	IssuedBy      *uint      `json:"issuedBy,omitempty"`                                                    // 手动发券的管理员
	Used          bool       `gorm:"not null;default:false;index" json:"used"`                              // 是否已使用
	UsedAt        *time.Time `json:"usedAt"`                                                                // 使用时间
	ClaimedBy     string     `json:"claimedBy,omitempty"`                                                   // 核销方描述
	NotifiedAt    *time.Time `json:"-"`                                                                     // 发券通知时间
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`                                                // 创建时间
	UpdatedAt     time.Time  `json:"updatedAt"`                                                             // 更新时间
	Customer      *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`                       // 关联顾客
	Station       *Station   `gorm:"foreignKey:StationID" json:"station,omitempty"`                         // 关联站点
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

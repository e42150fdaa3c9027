package models

import "time"

// Review 顾客评价，创建后仅 flagged 字段可变
type Review struct {
	ID                uint      `gorm:"primarykey" json:"id"`                                // 主键
	CustomerID        uint      `gorm:"index;not null" json:"customerId"`                    // 顾客 ID
	StationID         uint      `gorm:"index;not null" json:"stationId"`                     // 站点 ID
	Rating            int       `gorm:"not null" json:"rating"`                              // 总体评分 1-5
	Cleanliness       *int      `json:"cleanliness,omitempty"`                               // 清洁度评分
	ServiceSpeed      *int      `json:"serviceSpeed,omitempty"`                              // 服务速度评分
	StaffFriendliness *int      `json:"staffFriendliness,omitempty"`                         // 员工友好度评分
	Comment           string    `gorm:"type:text" json:"comment"`                            // 评价内容
	Latitude          *float64  `json:"latitude,omitempty"`                                  // 提交时纬度
	Longitude         *float64  `json:"longitude,omitempty"`                                 // 提交时经度
	Flagged           bool      `gorm:"not null;default:false;index" json:"flagged"`         // 审核标记
	CreatedAt         time.Time `gorm:"index" json:"createdAt"`                              // 创建时间
	UpdatedAt         time.Time `json:"updatedAt"`                                           // 更新时间
	Customer          *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`     // 关联顾客
	Station           *Station  `gorm:"foreignKey:StationID" json:"station,omitempty"`       // 关联站点
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}

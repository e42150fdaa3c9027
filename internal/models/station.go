package models

import (
	"time"

	"gorm.io/gorm"
)

// Station 加油站点
type Station struct {
	ID        uint           `gorm:"primarykey" json:"id"`                      // 主键
	Code      string         `gorm:"uniqueIndex;not null" json:"stationId"`     // 对外站点编号（二维码中的 stationId）
	Name      string         `gorm:"not null" json:"name"`                      // 展示名称
	Address   string         `json:"address"`                                   // 地址
	Latitude  float64        `json:"latitude"`                                  // 纬度
	Longitude float64        `json:"longitude"`                                 // 经度
	IsActive  bool           `gorm:"not null;default:true;index" json:"isActive"` // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`                    // 创建时间
	UpdatedAt time.Time      `json:"updatedAt"`                                 // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (Station) TableName() string {
	return "stations"
}

// StationSummary 嵌入券与评价响应的站点摘要
type StationSummary struct {
	ID        uint   `json:"id"`
	StationID string `json:"stationId"`
	Name      string `json:"name"`
}

// Summary 生成站点摘要
func (s *Station) Summary() *StationSummary {
	if s == nil || s.ID == 0 {
		return nil
	}
	return &StationSummary{ID: s.ID, StationID: s.Code, Name: s.Name}
}

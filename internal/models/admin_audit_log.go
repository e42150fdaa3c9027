package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSON 任意键值明细，以 JSON 文本落库
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// AdminAuditLog 后台操作审计日志
// 记录手动发券、评价标记、站点变更与角色分配等管理员操作。
type AdminAuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorAdminID  uint      `gorm:"index;not null" json:"operatorAdminId"`
	OperatorUsername string    `gorm:"type:varchar(100);index;not null;default:''" json:"operatorUsername"`
	Action           string    `gorm:"type:varchar(64);index;not null" json:"action"`
	TargetType       string    `gorm:"type:varchar(32);index;not null;default:''" json:"targetType"`
	TargetID         string    `gorm:"type:varchar(64);index;not null;default:''" json:"targetId"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"requestId"`
	DetailJSON       JSON      `gorm:"type:json" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`
}

// TableName 指定表名
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}

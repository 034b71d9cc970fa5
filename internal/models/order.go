package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`                         // 主键
	OrderNo     string         `gorm:"uniqueIndex;not null" json:"order_no"`         // 订单编号（下单侧生成，不可预测）
	Status      string         `gorm:"index;not null" json:"status"`                 // 订单支付状态
	Amount      Money          `gorm:"not null" json:"amount"`                       // 实付金额（分）
	Channel     string         `gorm:"not null" json:"channel"`                      // 支付渠道
	Subject     string         `gorm:"type:varchar(64)" json:"subject"`              // 订单摘要
	ProviderRef string         `gorm:"index" json:"provider_ref,omitempty"`          // 网关侧订单号（回调后写入）
	ClientIP    string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`  // 下单客户端IP
	PaidAt      *time.Time     `gorm:"index" json:"paid_at"`                         // 支付时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

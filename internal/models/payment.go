package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 支付记录（每次向网关发起下单都会留痕一条）
type Payment struct {
	ID              uint           `gorm:"primarykey" json:"id"`               // 主键
	OrderID         uint           `gorm:"index;not null" json:"order_id"`     // 订单ID
	OrderNo         string         `gorm:"index;not null" json:"order_no"`     // 订单编号
	Channel         string         `gorm:"not null" json:"channel"`            // 支付渠道
	Service         string         `gorm:"not null" json:"service"`            // 网关 service
	InteractionMode string         `gorm:"not null" json:"interaction_mode"`   // 交互方式（qr/redirect/form）
	Amount          Money          `gorm:"not null" json:"amount"`             // 支付金额（分）
	Status          string         `gorm:"index;not null" json:"status"`       // 支付状态
	ProviderRef     string         `gorm:"index" json:"provider_ref"`          // 网关侧订单号
	ProviderPayload JSON           `gorm:"type:json" json:"provider_payload"`  // 网关回调数据
	PayURL          string         `gorm:"type:text" json:"pay_url"`           // 跳转链接
	QRCode          string         `gorm:"type:text" json:"qr_code"`           // 二维码内容
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`            // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`            // 更新时间
	PaidAt          *time.Time     `gorm:"index" json:"paid_at"`               // 支付时间
	CallbackAt      *time.Time     `gorm:"index" json:"callback_at"`           // 回调时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                     // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                         // 主键
	Name        string         `gorm:"not null" json:"name"`                         // 商品名称
	Description string         `gorm:"type:text" json:"description"`                 // 商品描述
	PriceAmount Money          `gorm:"not null;default:0" json:"price_amount"`       // 价格（分）
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url,omitempty"` // 商品图片
	Category    string         `gorm:"index" json:"category,omitempty"`              // 分类标识
	SoldCount   int64          `gorm:"not null;default:0" json:"sold_count"`         // 已售数量（支付成功后累加）
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`          // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`            // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                   // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

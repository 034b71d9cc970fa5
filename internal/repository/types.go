package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	Status      string
	Channel     string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PaymentListFilter 查询支付记录列表的过滤条件
type PaymentListFilter struct {
	Page        int
	PageSize    int
	OrderID     uint
	OrderNo     string
	Channel     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

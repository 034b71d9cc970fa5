package models

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型：以最小货币单位（分）存储的整数，
// 避免浮点参与任何金额计算与签名
type Money int64

// NewMoneyFromMinorUnits 从分创建金额
func NewMoneyFromMinorUnits(amount int64) Money {
	return Money(amount)
}

// MinorUnits 返回分
func (m Money) MinorUnits() int64 {
	return int64(m)
}

// Decimal 返回元（两位小数）
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String 返回网关字段使用的字符串表示（分，无分隔符）
func (m Money) String() string {
	return strconv.FormatInt(int64(m), 10)
}

// Display 返回带货币符号的展示字符串
func (m Money) Display() string {
	return fmt.Sprintf("HK$%s", m.Decimal().StringFixed(2))
}

package model

import "time"

// ==================== 支付状态常量 ====================

// PaymentStatus 支付状态
const (
	PaymentStatusPending  = "pending"  // 待支付
	PaymentStatusPaid     = "paid"     // 已支付
	PaymentStatusFailed   = "failed"   // 支付失败
	PaymentStatusRefunded = "refunded" // 已退款
	PaymentStatusExpired  = "expired"  // 已过期
)

// ValidPaymentStatus 校验支付状态取值
func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusExpired:
		return true
	}
	return false
}

// DeriveOrderStatus 由支付状态推导订单状态
// 返回空串表示该支付状态不驱动订单状态变化
func DeriveOrderStatus(paymentStatus string) string {
	switch paymentStatus {
	case PaymentStatusPaid:
		return OrderStatusPaid
	case PaymentStatusFailed, PaymentStatusExpired:
		return OrderStatusPending
	case PaymentStatusRefunded:
		return OrderStatusCancelled
	}
	return ""
}

// ==================== Payment 支付单 ====================

// Payment 支付单，与订单一对一（order_id 唯一索引兜底）
type Payment struct {
	BaseModel
	OrderID int64  `gorm:"uniqueIndex;not null"`
	Order   *Order `gorm:"foreignKey:OrderID"`

	// --- 渠道信息 ---
	Method     string `gorm:"size:64;not null"` // bank_transfer / ewallet / card ...
	Provider   string `gorm:"size:64"`
	ExternalID string `gorm:"size:128;index"` // 渠道侧流水号
	PaymentURL string `gorm:"size:500"`

	// --- 金额与状态 ---
	Amount int64  `gorm:"not null"` // 分为单位
	Status string `gorm:"size:32;index;default:pending"`

	// --- 时间 ---
	PaidAt    *time.Time
	ExpiredAt *time.Time
}

func (*Payment) TableName() string {
	return "payments"
}

// GetAmount 获取金额（元）
func (p *Payment) GetAmount() float64 {
	return float64(p.Amount) / 100
}

// CanRefund 仅已支付的支付单可退款
func (p *Payment) CanRefund() bool {
	return p.Status == PaymentStatusPaid
}

package dto

import "time"

// ==================== 发起支付 ====================

// CreatePaymentRequest 发起支付请求
type CreatePaymentRequest struct {
	OrderID int64  `json:"order_id" binding:"required"`
	Method  string `json:"method" binding:"required"` // bank_transfer, ewallet, card
}

// ==================== 支付状态回写 ====================

// UpdatePaymentStatusRequest 更新支付状态请求
type UpdatePaymentStatusRequest struct {
	Status     string `json:"status" binding:"required"` // pending, paid, failed, refunded, expired
	ExternalID string `json:"external_id"`
}

// UpdatePaymentStatusResponse 更新支付状态响应
type UpdatePaymentStatusResponse struct {
	Payment            *PaymentVO `json:"payment"`
	OrderStatusUpdated bool       `json:"order_status_updated"`
	NewOrderStatus     string     `json:"new_order_status,omitempty"`
}

// ==================== 退款 ====================

// RefundPaymentRequest 退款请求
type RefundPaymentRequest struct {
	Amount float64 `json:"amount"` // 为空时全额退款
	Reason string  `json:"reason"`
}

// RefundPaymentResponse 退款响应
type RefundPaymentResponse struct {
	Payment      *PaymentVO `json:"payment"`
	RefundAmount float64    `json:"refund_amount"`
	Reason       string     `json:"reason"`
	OrderStatus  string     `json:"order_status"`
}

// ==================== 支付列表 ====================

// ListPaymentsRequest 支付列表请求
type ListPaymentsRequest struct {
	OrderID   int64  `form:"order_id"`
	Status    string `form:"status"`
	Method    string `form:"method"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}

// ListPaymentsResponse 支付列表响应
type ListPaymentsResponse struct {
	Total int64       `json:"total"`
	List  []PaymentVO `json:"list"`
}

// PaymentVO 支付视图对象
type PaymentVO struct {
	ID         int64      `json:"id"`
	OrderID    int64      `json:"order_id"`
	Method     string     `json:"method"`
	Provider   string     `json:"provider,omitempty"`
	ExternalID string     `json:"external_id,omitempty"`
	PaymentURL string     `json:"payment_url,omitempty"`
	Amount     float64    `json:"amount"`
	Status     string     `json:"status"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	ExpiredAt  *time.Time `json:"expired_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ==================== 支付统计 ====================

// PaymentStatsResponse 支付统计响应
type PaymentStatsResponse struct {
	TotalCount    int64   `json:"total_count"`
	PaidCount     int64   `json:"paid_count"`
	PendingCount  int64   `json:"pending_count"`
	FailedCount   int64   `json:"failed_count"`
	RefundedCount int64   `json:"refunded_count"`
	TotalAmount   float64 `json:"total_amount"`
	PaidAmount    float64 `json:"paid_amount"`
	SuccessRate   float64 `json:"success_rate"`
}

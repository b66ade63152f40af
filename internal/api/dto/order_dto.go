package dto

import "time"

// ==================== 下单 ====================

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items          []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShipName       string                   `json:"ship_name" binding:"required"`
	ShipPhone      string                   `json:"ship_phone" binding:"required"`
	ShipAddress    string                   `json:"ship_address" binding:"required"`
	ShipCity       string                   `json:"ship_city" binding:"required"`
	ShipProvince   string                   `json:"ship_province"`
	ShipPostalCode string                   `json:"ship_postal_code"`
	ShipCountry    string                   `json:"ship_country"`
	ShippingAmount float64                  `json:"shipping_amount" binding:"gte=0"`
	Notes          string                   `json:"notes"`
}

// CreateOrderItemRequest 下单商品项
type CreateOrderItemRequest struct {
	VariantID int64 `json:"variant_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// ==================== 订单列表 ====================

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	Status    string `form:"status"` // pending, paid, shipped, delivered, cancelled
	SellerID  int64  `form:"seller_id"`
	StartDate string `form:"start_date"` // 2024-01-01
	EndDate   string `form:"end_date"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}

// ListOrdersResponse 订单列表响应
type ListOrdersResponse struct {
	Total int64         `json:"total"`
	List  []OrderListVO `json:"list"`
}

// OrderListVO 订单列表项
type OrderListVO struct {
	ID          int64      `json:"id"`
	BuyerID     int64      `json:"buyer_id"`
	SellerID    int64      `json:"seller_id"`
	Status      string     `json:"status"`
	Currency    string     `json:"currency"`
	Total       float64    `json:"total"`
	ItemCount   int        `json:"item_count"`
	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// ==================== 订单详情 ====================

// OrderDetailResponse 订单详情响应
type OrderDetailResponse struct {
	Order   *OrderVO      `json:"order"`
	Items   []OrderItemVO `json:"items"`
	Payment *PaymentVO    `json:"payment,omitempty"`
}

// OrderVO 订单视图对象
type OrderVO struct {
	ID             int64      `json:"id"`
	BuyerID        int64      `json:"buyer_id"`
	SellerID       int64      `json:"seller_id"`
	Status         string     `json:"status"`
	Currency       string     `json:"currency"`
	Subtotal       float64    `json:"subtotal"`
	Shipping       float64    `json:"shipping"`
	Total          float64    `json:"total"`
	ShipName       string     `json:"ship_name"`
	ShipPhone      string     `json:"ship_phone"`
	ShipAddress    string     `json:"ship_address"`
	ShipCity       string     `json:"ship_city"`
	ShipProvince   string     `json:"ship_province,omitempty"`
	ShipPostalCode string     `json:"ship_postal_code,omitempty"`
	ShipCountry    string     `json:"ship_country,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// OrderItemVO 订单商品项
type OrderItemVO struct {
	ID          int64   `json:"id"`
	VariantID   int64   `json:"variant_id"`
	ProductName string  `json:"product_name"`
	VariantName string  `json:"variant_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// ==================== 订单状态流转 ====================

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"` // paid, shipped, delivered, cancelled
}

// ==================== 订单跟踪 ====================

// OrderTrackingResponse 订单跟踪响应
type OrderTrackingResponse struct {
	OrderID  int64             `json:"order_id"`
	Status   string            `json:"status"`
	Timeline []TrackingEventVO `json:"timeline"`
}

// TrackingEventVO 跟踪事件
type TrackingEventVO struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

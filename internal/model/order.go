package model

import "time"

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态
const (
	OrderStatusPending   = "pending"   // 待支付
	OrderStatusPaid      = "paid"      // 已支付
	OrderStatusShipped   = "shipped"   // 已发货
	OrderStatusDelivered = "delivered" // 已签收
	OrderStatusCancelled = "cancelled" // 已取消
)

// ValidOrderStatus 校验订单状态取值
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// orderTransitions 订单状态机转移表
// 不在表内的 (当前, 目标) 组合一律拒绝，终态无出边
var orderTransitions = map[string][]string{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// CanTransitionOrder 检查订单状态转移是否合法
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ==================== Order 订单主表 ====================

// Order 订单
type Order struct {
	BaseModel
	BuyerID  int64   `gorm:"index;not null"`
	Buyer    *User   `gorm:"foreignKey:BuyerID"`
	SellerID int64   `gorm:"index;not null"`
	Seller   *Seller `gorm:"foreignKey:SellerID"`

	// --- 状态 ---
	Status string `gorm:"size:32;index;default:pending"`

	// --- 金额（分为单位存储） ---
	Currency       string `gorm:"size:10;default:IDR"`
	SubtotalAmount int64
	ShippingAmount int64
	TotalAmount    int64

	// --- 收货地址快照 ---
	ShipRecipient   string `gorm:"size:255"`
	ShipPhone       string `gorm:"size:32"`
	ShipAddress1    string `gorm:"size:255"`
	ShipAddress2    string `gorm:"size:255"`
	ShipCity        string `gorm:"size:100"`
	ShipRegion      string `gorm:"size:100"`
	ShipPostalCode  string `gorm:"size:20"`
	ShipCountryCode string `gorm:"size:5;default:ID"`

	// --- 买家备注 ---
	Notes string `gorm:"size:500"`

	// --- 时间 ---
	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time

	// --- 关联 ---
	Items   []OrderItem `gorm:"foreignKey:OrderID"`
	Payment *Payment    `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// GetSubtotal 获取小计金额（元）
func (o *Order) GetSubtotal() float64 {
	return float64(o.SubtotalAmount) / 100
}

// GetShipping 获取运费（元）
func (o *Order) GetShipping() float64 {
	return float64(o.ShippingAmount) / 100
}

// GetTotal 获取总金额（元）
func (o *Order) GetTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// CanCancel 检查是否可以主动取消（仅待支付状态）
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项，下单时对商品/变体做不可变快照
type OrderItem struct {
	BaseModel
	OrderID   int64           `gorm:"index;not null"`
	VariantID int64           `gorm:"index;not null"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID"`

	// --- 快照字段，创建后不随商品编辑变化 ---
	ProductNameSnapshot string `gorm:"size:255"`
	VariantNameSnapshot string `gorm:"size:255"`
	Quantity            int    `gorm:"default:1"`
	UnitPriceAmount     int64
	SubtotalAmount      int64
}

func (*OrderItem) TableName() string {
	return "order_items"
}

// GetUnitPrice 获取单价（元）
func (i *OrderItem) GetUnitPrice() float64 {
	return float64(i.UnitPriceAmount) / 100
}

// GetSubtotal 获取小计（元）
func (i *OrderItem) GetSubtotal() float64 {
	return float64(i.SubtotalAmount) / 100
}

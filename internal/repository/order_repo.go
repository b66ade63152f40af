package repository

import (
	"context"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	BuyerID   int64
	SellerID  int64
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDWithRelations(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 评价资格相关查询
	HasDeliveredOrderWithProduct(ctx context.Context, userID, productID int64) (bool, error)
	OrderContainsProduct(ctx context.Context, orderID, userID, productID int64) (bool, error)

	// DecrementStock 扣减规格库存，库存不足时不更新并返回 false
	DecrementStock(ctx context.Context, variantID int64, qty int) (bool, error)
	// RestockOrder 把订单项占用的库存加回对应规格
	RestockOrder(ctx context.Context, orderID int64) error

	// Transaction 在单个数据库事务内执行 fn
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ==================== 实现 ====================

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	// GORM 关联写入自带事务，订单与订单项要么全部落库要么全部回滚
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDWithRelations(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Seller.User").
		Preload("Items").
		Preload("Items.Variant").
		Preload("Payment").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.BuyerID > 0 {
		db = db.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.SellerID > 0 {
		db = db.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		db = db.Where("created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("created_at <= ?", filter.EndDate)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Preload("Buyer").
		Preload("Seller").
		Preload("Items").
		Preload("Payment").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Order{}, id).Error
}

// HasDeliveredOrderWithProduct 用户是否存在包含该商品变体的已签收订单
func (r *orderRepository) HasDeliveredOrderWithProduct(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN product_variants ON product_variants.id = order_items.variant_id").
		Where("orders.buyer_id = ?", userID).
		Where("orders.status = ?", model.OrderStatusDelivered).
		Where("product_variants.product_id = ?", productID).
		Count(&count).Error
	return count > 0, err
}

// DecrementStock 条件更新保证库存不会被扣成负数
func (r *orderRepository) DecrementStock(ctx context.Context, variantID int64, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected > 0, res.Error
}

// RestockOrder 取消订单时逐项回补库存
func (r *orderRepository) RestockOrder(ctx context.Context, orderID int64) error {
	var items []model.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return err
	}
	for i := range items {
		if items[i].VariantID == 0 || items[i].Quantity <= 0 {
			continue
		}
		err := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
			Where("id = ?", items[i].VariantID).
			UpdateColumn("stock", gorm.Expr("stock + ?", items[i].Quantity)).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// OrderContainsProduct 指定订单是否属于该用户、已签收且包含该商品变体
func (r *orderRepository) OrderContainsProduct(ctx context.Context, orderID, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN product_variants ON product_variants.id = order_items.variant_id").
		Where("orders.id = ?", orderID).
		Where("orders.buyer_id = ?", userID).
		Where("orders.status = ?", model.OrderStatusDelivered).
		Where("product_variants.product_id = ?", productID).
		Count(&count).Error
	return count > 0, err
}

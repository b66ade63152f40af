package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
)

// ==================== 测试模型定义 ====================

// orderTestProduct 与 products 表同名的精简测试模型
// 生产模型使用 Postgres 数组列，sqlite 下无法迁移，text[]/jsonb 列以 TEXT 存储
type orderTestProduct struct {
	ID                int64 `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt
	CreatedBy         int64
	UpdatedBy         int64
	SellerID          int64
	SKU               string
	Slug              string
	Name              string
	Description       string
	CultureStory      string
	CareGuide         string
	OriginRegion      string
	Attributes        datatypes.JSONMap
	Motifs            pq.StringArray `gorm:"type:text"`
	Materials         pq.StringArray `gorm:"type:text"`
	PrimaryImageURL   string
	Images            datatypes.JSON
	HSCode            string
	MadeInCountryCode string
	Active            bool
}

func (orderTestProduct) TableName() string { return "products" }

// orderTestSeller 与 sellers 表同名的精简测试模型，供列表预加载使用
type orderTestSeller struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
	UserID    int64
	StoreName string
}

func (orderTestSeller) TableName() string { return "sellers" }

// ==================== 测试环境 ====================

func newOrderTestEnv(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &orderTestSeller{},
		&orderTestProduct{}, &model.ProductVariant{},
		&model.Order{}, &model.OrderItem{}, &model.Payment{},
	); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
	)
	return svc, db
}

func seedVariant(t *testing.T, db *gorm.DB, sellerID int64, productName string, active bool, priceAmount int64, stock int) *model.ProductVariant {
	t.Helper()
	product := &orderTestProduct{SellerID: sellerID, Name: productName, Active: active}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("创建测试商品失败: %v", err)
	}
	variant := &model.ProductVariant{
		ProductID:   product.ID,
		Name:        productName + " - M",
		PriceAmount: priceAmount,
		Stock:       stock,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("创建测试规格失败: %v", err)
	}
	return variant
}

// ==================== 下单 ====================

func TestOrderService_CreateOrder(t *testing.T) {
	svc, db := newOrderTestEnv(t)
	ctx := context.Background()

	v1 := seedVariant(t, db, 1, "Batik Parang", true, 25000, 5)
	v2 := seedVariant(t, db, 1, "Batik Mega Mendung", true, 40000, 3)

	resp, err := svc.CreateOrder(ctx, 10, &dto.CreateOrderRequest{
		Items: []dto.CreateOrderItemRequest{
			{VariantID: v1.ID, Quantity: 2},
			{VariantID: v2.ID, Quantity: 1},
		},
		ShipName:       "Budi",
		ShipPhone:      "0812000111",
		ShipAddress:    "Jl. Malioboro 1",
		ShipCity:       "Yogyakarta",
		ShippingAmount: 20.00,
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	if resp.Order.Status != model.OrderStatusPending {
		t.Errorf("新订单状态应为 pending，实际 %s", resp.Order.Status)
	}
	if resp.Order.Subtotal != 900.00 {
		t.Errorf("小计应为 900.00，实际 %v", resp.Order.Subtotal)
	}
	if resp.Order.Total != 920.00 {
		t.Errorf("总额应为 920.00，实际 %v", resp.Order.Total)
	}
	if resp.Order.ShipCountry != "ID" {
		t.Errorf("默认收货国家应为 ID，实际 %s", resp.Order.ShipCountry)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("订单项数量应为 2，实际 %d", len(resp.Items))
	}
	if resp.Items[0].ProductName != "Batik Parang" {
		t.Errorf("订单项应保存商品名快照，实际 %s", resp.Items[0].ProductName)
	}

	// 库存应在同一事务内扣减
	var reloaded model.ProductVariant
	db.First(&reloaded, v1.ID)
	if reloaded.Stock != 3 {
		t.Errorf("规格库存应扣减为 3，实际 %d", reloaded.Stock)
	}
}

func TestOrderService_CreateOrderRejections(t *testing.T) {
	svc, db := newOrderTestEnv(t)
	ctx := context.Background()

	v1 := seedVariant(t, db, 1, "Batik Parang", true, 25000, 5)
	v2 := seedVariant(t, db, 2, "Batik Lasem", true, 30000, 5)
	inactive := seedVariant(t, db, 1, "Batik Lawas", false, 20000, 5)

	ship := dto.CreateOrderRequest{ShipName: "Budi", ShipPhone: "0812", ShipAddress: "Jl. A", ShipCity: "Solo"}

	// 跨卖家
	req := ship
	req.Items = []dto.CreateOrderItemRequest{{VariantID: v1.ID, Quantity: 1}, {VariantID: v2.ID, Quantity: 1}}
	if _, err := svc.CreateOrder(ctx, 10, &req); !errors.Is(err, ErrValidation) {
		t.Errorf("跨卖家下单应返回校验错误，实际 %v", err)
	}

	// 商品项重复
	req = ship
	req.Items = []dto.CreateOrderItemRequest{{VariantID: v1.ID, Quantity: 1}, {VariantID: v1.ID, Quantity: 2}}
	if _, err := svc.CreateOrder(ctx, 10, &req); !errors.Is(err, ErrValidation) {
		t.Errorf("重复商品项应返回校验错误，实际 %v", err)
	}

	// 规格不存在
	req = ship
	req.Items = []dto.CreateOrderItemRequest{{VariantID: 9999, Quantity: 1}}
	if _, err := svc.CreateOrder(ctx, 10, &req); !errors.Is(err, ErrNotFound) {
		t.Errorf("不存在的规格应返回未找到，实际 %v", err)
	}

	// 已下架商品
	req = ship
	req.Items = []dto.CreateOrderItemRequest{{VariantID: inactive.ID, Quantity: 1}}
	if _, err := svc.CreateOrder(ctx, 10, &req); !errors.Is(err, ErrValidation) {
		t.Errorf("已下架商品应返回校验错误，实际 %v", err)
	}

	// 库存不足
	req = ship
	req.Items = []dto.CreateOrderItemRequest{{VariantID: v1.ID, Quantity: 100}}
	if _, err := svc.CreateOrder(ctx, 10, &req); !errors.Is(err, ErrConflict) {
		t.Errorf("库存不足应返回冲突错误，实际 %v", err)
	}

	// 以上失败路径都不应扣减库存
	var reloaded model.ProductVariant
	db.First(&reloaded, v1.ID)
	if reloaded.Stock != 5 {
		t.Errorf("失败下单不应扣库存，实际 %d", reloaded.Stock)
	}
}

// ==================== 状态流转 ====================

func TestOrderService_UpdateStatusTransitions(t *testing.T) {
	svc, db := newOrderTestEnv(t)
	ctx := context.Background()
	order := seedOrder(t, db, 10, model.OrderStatusPending, 50000)

	// 跳级流转应被拒绝
	if _, err := svc.UpdateStatus(ctx, order.ID, &dto.UpdateOrderStatusRequest{Status: model.OrderStatusDelivered}); !errors.Is(err, ErrValidation) {
		t.Errorf("pending 不能直接流转到 delivered，实际 %v", err)
	}

	// 合法链路 pending -> paid -> shipped -> delivered
	for _, status := range []string{model.OrderStatusPaid, model.OrderStatusShipped, model.OrderStatusDelivered} {
		vo, err := svc.UpdateStatus(ctx, order.ID, &dto.UpdateOrderStatusRequest{Status: status})
		if err != nil {
			t.Fatalf("流转到 %s 失败: %v", status, err)
		}
		if vo.Status != status {
			t.Errorf("订单状态应为 %s，实际 %s", status, vo.Status)
		}
	}

	var reloaded model.Order
	db.First(&reloaded, order.ID)
	if reloaded.PaidAt == nil || reloaded.ShippedAt == nil || reloaded.DeliveredAt == nil {
		t.Error("各状态时间戳应全部写入")
	}

	// 终态无出边
	if _, err := svc.UpdateStatus(ctx, order.ID, &dto.UpdateOrderStatusRequest{Status: model.OrderStatusCancelled}); !errors.Is(err, ErrValidation) {
		t.Errorf("delivered 为终态不应再流转，实际 %v", err)
	}
}

func TestOrderService_CancelOrder(t *testing.T) {
	svc, db := newOrderTestEnv(t)
	ctx := context.Background()

	// 他人订单不可取消
	order := seedOrder(t, db, 10, model.OrderStatusPending, 50000)
	if _, err := svc.CancelOrder(ctx, 11, order.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("他人订单取消应返回禁止访问，实际 %v", err)
	}

	// 已支付订单不可主动取消
	paid := seedOrder(t, db, 10, model.OrderStatusPaid, 50000)
	if _, err := svc.CancelOrder(ctx, 10, paid.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("已支付订单取消应返回校验错误，实际 %v", err)
	}

	vo, err := svc.CancelOrder(ctx, 10, order.ID)
	if err != nil {
		t.Fatalf("取消订单失败: %v", err)
	}
	if vo.Status != model.OrderStatusCancelled {
		t.Errorf("订单应为 cancelled，实际 %s", vo.Status)
	}
}

func TestOrderService_CancelRestocksInventory(t *testing.T) {
	svc, db := newOrderTestEnv(t)
	ctx := context.Background()

	variant := seedVariant(t, db, 1, "Batik Parang", true, 25000, 5)

	resp, err := svc.CreateOrder(ctx, 10, &dto.CreateOrderRequest{
		Items:       []dto.CreateOrderItemRequest{{VariantID: variant.ID, Quantity: 2}},
		ShipName:    "Budi",
		ShipPhone:   "0812000111",
		ShipAddress: "Jl. Malioboro 1",
		ShipCity:    "Yogyakarta",
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	var reloaded model.ProductVariant
	db.First(&reloaded, variant.ID)
	if reloaded.Stock != 3 {
		t.Fatalf("下单后库存应为 3，实际 %d", reloaded.Stock)
	}

	// 买家取消回补库存
	if _, err := svc.CancelOrder(ctx, 10, resp.Order.ID); err != nil {
		t.Fatalf("取消订单失败: %v", err)
	}
	db.First(&reloaded, variant.ID)
	if reloaded.Stock != 5 {
		t.Errorf("取消后库存应回到 5，实际 %d", reloaded.Stock)
	}

	// 状态流转到 cancelled 同样回补
	second, err := svc.CreateOrder(ctx, 10, &dto.CreateOrderRequest{
		Items:       []dto.CreateOrderItemRequest{{VariantID: variant.ID, Quantity: 3}},
		ShipName:    "Budi",
		ShipPhone:   "0812000111",
		ShipAddress: "Jl. Malioboro 1",
		ShipCity:    "Yogyakarta",
	})
	if err != nil {
		t.Fatalf("二次下单失败: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, second.Order.ID, &dto.UpdateOrderStatusRequest{
		Status: model.OrderStatusCancelled,
	}); err != nil {
		t.Fatalf("流转到 cancelled 失败: %v", err)
	}
	db.First(&reloaded, variant.ID)
	if reloaded.Stock != 5 {
		t.Errorf("状态取消后库存应回到 5，实际 %d", reloaded.Stock)
	}
}

// ==================== 订单跟踪 ====================

func TestOrderService_Tracking(t *testing.T) {
	svc, db := newOrderTestEnv(t)
	ctx := context.Background()
	order := seedOrder(t, db, 10, model.OrderStatusPending, 50000)

	for _, status := range []string{model.OrderStatusPaid, model.OrderStatusShipped} {
		if _, err := svc.UpdateStatus(ctx, order.ID, &dto.UpdateOrderStatusRequest{Status: status}); err != nil {
			t.Fatalf("流转到 %s 失败: %v", status, err)
		}
	}

	tracking, err := svc.Tracking(ctx, order.ID)
	if err != nil {
		t.Fatalf("查询订单跟踪失败: %v", err)
	}
	if tracking.Status != model.OrderStatusShipped {
		t.Errorf("当前状态应为 shipped，实际 %s", tracking.Status)
	}
	if len(tracking.Timeline) != 3 {
		t.Errorf("时间线应有 3 个节点，实际 %d", len(tracking.Timeline))
	}
	if tracking.Timeline[0].Status != model.OrderStatusPending {
		t.Errorf("时间线首节点应为 pending，实际 %s", tracking.Timeline[0].Status)
	}
}

// ==================== 列表 ====================

func TestOrderService_ListOrders(t *testing.T) {
	svc, db := newOrderTestEnv(t)
	ctx := context.Background()

	seedOrder(t, db, 10, model.OrderStatusPending, 10000)
	seedOrder(t, db, 10, model.OrderStatusPaid, 20000)
	seedOrder(t, db, 11, model.OrderStatusPending, 30000)

	resp, err := svc.ListOrders(ctx, 10, &dto.ListOrdersRequest{})
	if err != nil {
		t.Fatalf("查询订单列表失败: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("买家 10 应有 2 笔订单，实际 %d", resp.Total)
	}

	resp, err = svc.ListOrders(ctx, 10, &dto.ListOrdersRequest{Status: model.OrderStatusPaid})
	if err != nil {
		t.Fatalf("按状态查询失败: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("paid 订单应为 1 笔，实际 %d", resp.Total)
	}

	if _, err := svc.ListOrders(ctx, 10, &dto.ListOrdersRequest{Status: "bogus"}); !errors.Is(err, ErrValidation) {
		t.Errorf("无效状态过滤应返回校验错误，实际 %v", err)
	}
}

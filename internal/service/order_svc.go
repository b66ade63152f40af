package service

import (
	"context"
	"math"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"

	"gorm.io/gorm"
)

// ==================== OrderService ====================

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// ==================== 下单 ====================

// CreateOrder 创建订单。商品信息在订单项内做不可变快照，
// 库存扣减与订单写入在同一事务内完成。
func (s *OrderService) CreateOrder(ctx context.Context, buyerID int64, req *dto.CreateOrderRequest) (*dto.OrderDetailResponse, error) {
	variantIDs := make([]int64, 0, len(req.Items))
	qtyByVariant := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		if qtyByVariant[item.VariantID] > 0 {
			return nil, validationf("商品项重复：variant %d", item.VariantID)
		}
		variantIDs = append(variantIDs, item.VariantID)
		qtyByVariant[item.VariantID] = item.Quantity
	}

	variants, err := s.productRepo.GetVariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	if len(variants) != len(variantIDs) {
		return nil, notFoundf("部分商品规格不存在")
	}

	var sellerID int64
	var subtotal int64
	items := make([]model.OrderItem, 0, len(variants))
	for i := range variants {
		v := &variants[i]
		if v.Product == nil {
			return nil, notFoundf("规格 %d 对应的商品不存在", v.ID)
		}
		if !v.Product.Active {
			return nil, validationf("商品 %s 已下架", v.Product.Name)
		}
		if sellerID == 0 {
			sellerID = v.Product.SellerID
		} else if sellerID != v.Product.SellerID {
			return nil, validationf("一笔订单只能包含同一卖家的商品")
		}

		qty := qtyByVariant[v.ID]
		if v.Stock < qty {
			return nil, conflictf("商品 %s 库存不足", v.Product.Name)
		}
		lineSubtotal := v.PriceAmount * int64(qty)
		subtotal += lineSubtotal
		items = append(items, model.OrderItem{
			VariantID:           v.ID,
			ProductNameSnapshot: v.Product.Name,
			VariantNameSnapshot: v.Name,
			Quantity:            qty,
			UnitPriceAmount:     v.PriceAmount,
			SubtotalAmount:      lineSubtotal,
		})
	}

	shipping := int64(math.Round(req.ShippingAmount * 100))
	order := &model.Order{
		BuyerID:         buyerID,
		SellerID:        sellerID,
		Status:          model.OrderStatusPending,
		Currency:        "IDR",
		SubtotalAmount:  subtotal,
		ShippingAmount:  shipping,
		TotalAmount:     subtotal + shipping,
		ShipRecipient:   req.ShipName,
		ShipPhone:       req.ShipPhone,
		ShipAddress1:    req.ShipAddress,
		ShipCity:        req.ShipCity,
		ShipRegion:      req.ShipProvince,
		ShipPostalCode:  req.ShipPostalCode,
		ShipCountryCode: req.ShipCountry,
		Notes:           req.Notes,
		Items:           items,
	}
	if order.ShipCountryCode == "" {
		order.ShipCountryCode = "ID"
	}

	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		txOrders := repository.NewOrderRepository(tx)
		for variantID, qty := range qtyByVariant {
			ok, err := txOrders.DecrementStock(ctx, variantID, qty)
			if err != nil {
				return err
			}
			if !ok {
				return conflictf("规格 %d 库存不足", variantID)
			}
		}
		return txOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	return toOrderDetail(order), nil
}

// ==================== 查询 ====================

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*dto.OrderDetailResponse, error) {
	order, err := s.orderRepo.GetByIDWithRelations(ctx, id)
	if err != nil {
		return nil, notFoundf("订单 %d 不存在", id)
	}
	return toOrderDetail(order), nil
}

// ListOrders 获取订单列表，buyerID 为 0 时不限制买家
func (s *OrderService) ListOrders(ctx context.Context, buyerID int64, req *dto.ListOrdersRequest) (*dto.ListOrdersResponse, error) {
	if req.Status != "" && !model.ValidOrderStatus(req.Status) {
		return nil, validationf("无效的订单状态 %s", req.Status)
	}
	filter := repository.OrderFilter{
		BuyerID:  buyerID,
		SellerID: req.SellerID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if t, ok := parseDate(req.StartDate); ok {
		filter.StartDate = &t
	}
	if t, ok := parseDate(req.EndDate); ok {
		end := t.Add(24*time.Hour - time.Second)
		filter.EndDate = &end
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.OrderListVO, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		list = append(list, dto.OrderListVO{
			ID:          o.ID,
			BuyerID:     o.BuyerID,
			SellerID:    o.SellerID,
			Status:      o.Status,
			Currency:    o.Currency,
			Total:       o.GetTotal(),
			ItemCount:   len(o.Items),
			CreatedAt:   o.CreatedAt,
			PaidAt:      o.PaidAt,
			DeliveredAt: o.DeliveredAt,
		})
	}
	return &dto.ListOrdersResponse{Total: total, List: list}, nil
}

// ==================== 状态流转 ====================

// UpdateStatus 更新订单状态，只允许状态机内的合法流转
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, req *dto.UpdateOrderStatusRequest) (*dto.OrderVO, error) {
	if !model.ValidOrderStatus(req.Status) {
		return nil, validationf("无效的订单状态 %s", req.Status)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundf("订单 %d 不存在", orderID)
	}
	if !model.CanTransitionOrder(order.Status, req.Status) {
		return nil, validationf("订单状态不能从 %s 流转到 %s", order.Status, req.Status)
	}

	now := time.Now()
	fields := map[string]interface{}{"status": req.Status}
	switch req.Status {
	case model.OrderStatusPaid:
		fields["paid_at"] = now
		order.PaidAt = &now
	case model.OrderStatusShipped:
		fields["shipped_at"] = now
		order.ShippedAt = &now
	case model.OrderStatusDelivered:
		fields["delivered_at"] = now
		order.DeliveredAt = &now
	}
	// 取消时库存随状态变更一起回补
	if req.Status == model.OrderStatusCancelled {
		err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
			txOrders := repository.NewOrderRepository(tx)
			if err := txOrders.UpdateFields(ctx, orderID, fields); err != nil {
				return err
			}
			return txOrders.RestockOrder(ctx, orderID)
		})
	} else {
		err = s.orderRepo.UpdateFields(ctx, orderID, fields)
	}
	if err != nil {
		return nil, err
	}
	order.Status = req.Status
	return toOrderVO(order), nil
}

// CancelOrder 买家取消订单，仅待支付状态允许
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID int64) (*dto.OrderVO, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundf("订单 %d 不存在", orderID)
	}
	if order.BuyerID != userID {
		return nil, forbiddenf("订单 %d 不属于当前用户", orderID)
	}
	if !order.CanCancel() {
		return nil, validationf("订单状态 %s 不允许取消", order.Status)
	}

	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		txOrders := repository.NewOrderRepository(tx)
		if err := txOrders.UpdateFields(ctx, orderID, map[string]interface{}{
			"status": model.OrderStatusCancelled,
		}); err != nil {
			return err
		}
		return txOrders.RestockOrder(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	order.Status = model.OrderStatusCancelled
	return toOrderVO(order), nil
}

// ==================== 订单跟踪 ====================

// Tracking 按时间戳拼装订单跟踪时间线
func (s *OrderService) Tracking(ctx context.Context, orderID int64) (*dto.OrderTrackingResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundf("订单 %d 不存在", orderID)
	}

	timeline := []dto.TrackingEventVO{
		{Status: model.OrderStatusPending, Timestamp: order.CreatedAt},
	}
	if order.PaidAt != nil {
		timeline = append(timeline, dto.TrackingEventVO{Status: model.OrderStatusPaid, Timestamp: *order.PaidAt})
	}
	if order.ShippedAt != nil {
		timeline = append(timeline, dto.TrackingEventVO{Status: model.OrderStatusShipped, Timestamp: *order.ShippedAt})
	}
	if order.DeliveredAt != nil {
		timeline = append(timeline, dto.TrackingEventVO{Status: model.OrderStatusDelivered, Timestamp: *order.DeliveredAt})
	}
	return &dto.OrderTrackingResponse{
		OrderID:  order.ID,
		Status:   order.Status,
		Timeline: timeline,
	}, nil
}

// ==================== 辅助 ====================

// toOrderVO 转换为视图对象
func toOrderVO(o *model.Order) *dto.OrderVO {
	return &dto.OrderVO{
		ID:             o.ID,
		BuyerID:        o.BuyerID,
		SellerID:       o.SellerID,
		Status:         o.Status,
		Currency:       o.Currency,
		Subtotal:       o.GetSubtotal(),
		Shipping:       o.GetShipping(),
		Total:          o.GetTotal(),
		ShipName:       o.ShipRecipient,
		ShipPhone:      o.ShipPhone,
		ShipAddress:    o.ShipAddress1,
		ShipCity:       o.ShipCity,
		ShipProvince:   o.ShipRegion,
		ShipPostalCode: o.ShipPostalCode,
		ShipCountry:    o.ShipCountryCode,
		Notes:          o.Notes,
		PaidAt:         o.PaidAt,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
		CreatedAt:      o.CreatedAt,
	}
}

// toOrderDetail 转换为详情响应
func toOrderDetail(o *model.Order) *dto.OrderDetailResponse {
	resp := &dto.OrderDetailResponse{Order: toOrderVO(o)}
	resp.Items = make([]dto.OrderItemVO, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		resp.Items = append(resp.Items, dto.OrderItemVO{
			ID:          item.ID,
			VariantID:   item.VariantID,
			ProductName: item.ProductNameSnapshot,
			VariantName: item.VariantNameSnapshot,
			Quantity:    item.Quantity,
			UnitPrice:   item.GetUnitPrice(),
			Subtotal:    item.GetSubtotal(),
		})
	}
	if o.Payment != nil {
		resp.Payment = toPaymentVO(o.Payment)
	}
	return resp
}

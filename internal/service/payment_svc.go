package service

import (
	"context"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 支付单默认有效期，超时未支付由定时任务置为 expired
const defaultPaymentTTL = 24 * time.Hour

// ==================== PaymentService ====================

// PaymentService 支付服务，负责支付单生命周期及订单状态联动
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	provider    string
	ttl         time.Duration
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	provider string,
) *PaymentService {
	if provider == "" {
		provider = "manual"
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		provider:    provider,
		ttl:         defaultPaymentTTL,
	}
}

// ==================== 发起支付 ====================

// CreatePayment 为订单发起支付，一个订单只允许一笔支付单
func (s *PaymentService) CreatePayment(ctx context.Context, buyerID int64, req *dto.CreatePaymentRequest) (*dto.PaymentVO, error) {
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, notFoundf("订单 %d 不存在", req.OrderID)
	}
	if order.BuyerID != buyerID {
		return nil, forbiddenf("订单 %d 不属于当前用户", req.OrderID)
	}
	if order.Status != model.OrderStatusPending {
		return nil, validationf("订单状态 %s 不允许发起支付", order.Status)
	}

	expiredAt := time.Now().Add(s.ttl)
	payment := &model.Payment{
		OrderID:    order.ID,
		Method:     req.Method,
		Provider:   s.provider,
		ExternalID: uuid.NewString(),
		Amount:     order.TotalAmount,
		Status:     model.PaymentStatusPending,
		ExpiredAt:  &expiredAt,
	}

	// 唯一性检查与写入放在同一事务内，唯一索引兜底并发
	err = s.paymentRepo.Transaction(ctx, func(tx *gorm.DB) error {
		txRepo := repository.NewPaymentRepository(tx)
		exists, err := txRepo.ExistsForOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if exists {
			return conflictf("订单 %d 已存在支付单", order.ID)
		}
		return txRepo.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	return toPaymentVO(payment), nil
}

// ==================== 支付状态回写 ====================

// UpdateStatus 更新支付状态并联动订单状态。
// 订单状态仅在推导结果与当前不同且流转合法时才写入。
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID int64, req *dto.UpdatePaymentStatusRequest) (*dto.UpdatePaymentStatusResponse, error) {
	if !model.ValidPaymentStatus(req.Status) {
		return nil, validationf("无效的支付状态 %s", req.Status)
	}

	var payment *model.Payment
	resp := &dto.UpdatePaymentStatusResponse{}

	err := s.paymentRepo.Transaction(ctx, func(tx *gorm.DB) error {
		txPayments := repository.NewPaymentRepository(tx)
		txOrders := repository.NewOrderRepository(tx)

		var err error
		payment, err = txPayments.GetByID(ctx, paymentID)
		if err != nil {
			return notFoundf("支付单 %d 不存在", paymentID)
		}

		now := time.Now()
		fields := map[string]interface{}{"status": req.Status}
		if req.Status == model.PaymentStatusPaid {
			fields["paid_at"] = now
		}
		if req.ExternalID != "" {
			fields["external_id"] = req.ExternalID
		}
		if err := txPayments.UpdateFields(ctx, payment.ID, fields); err != nil {
			return err
		}
		payment.Status = req.Status
		if req.Status == model.PaymentStatusPaid {
			payment.PaidAt = &now
		}
		if req.ExternalID != "" {
			payment.ExternalID = req.ExternalID
		}

		derived := model.DeriveOrderStatus(req.Status)
		if derived == "" {
			return nil
		}
		order, err := txOrders.GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		if derived == order.Status || !model.CanTransitionOrder(order.Status, derived) {
			return nil
		}

		orderFields := map[string]interface{}{"status": derived}
		if derived == model.OrderStatusPaid {
			orderFields["paid_at"] = now
		}
		if err := txOrders.UpdateFields(ctx, order.ID, orderFields); err != nil {
			return err
		}
		if derived == model.OrderStatusCancelled {
			if err := txOrders.RestockOrder(ctx, order.ID); err != nil {
				return err
			}
		}
		resp.OrderStatusUpdated = true
		resp.NewOrderStatus = derived
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.Payment = toPaymentVO(payment)
	return resp, nil
}

// ==================== 退款 ====================

// Refund 对已支付的支付单退款，订单同步取消
func (s *PaymentService) Refund(ctx context.Context, paymentID int64, req *dto.RefundPaymentRequest) (*dto.RefundPaymentResponse, error) {
	var payment *model.Payment
	resp := &dto.RefundPaymentResponse{}

	err := s.paymentRepo.Transaction(ctx, func(tx *gorm.DB) error {
		txPayments := repository.NewPaymentRepository(tx)
		txOrders := repository.NewOrderRepository(tx)

		var err error
		payment, err = txPayments.GetByID(ctx, paymentID)
		if err != nil {
			return notFoundf("支付单 %d 不存在", paymentID)
		}
		if !payment.CanRefund() {
			return validationf("支付状态 %s 不允许退款", payment.Status)
		}

		if err := txPayments.UpdateFields(ctx, payment.ID, map[string]interface{}{
			"status": model.PaymentStatusRefunded,
		}); err != nil {
			return err
		}
		payment.Status = model.PaymentStatusRefunded

		order, err := txOrders.GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		resp.OrderStatus = order.Status
		if model.CanTransitionOrder(order.Status, model.OrderStatusCancelled) {
			if err := txOrders.UpdateFields(ctx, order.ID, map[string]interface{}{
				"status": model.OrderStatusCancelled,
			}); err != nil {
				return err
			}
			if err := txOrders.RestockOrder(ctx, order.ID); err != nil {
				return err
			}
			resp.OrderStatus = model.OrderStatusCancelled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.Payment = toPaymentVO(payment)
	resp.RefundAmount = req.Amount
	if resp.RefundAmount <= 0 {
		resp.RefundAmount = payment.GetAmount()
	}
	resp.Reason = req.Reason
	if resp.Reason == "" {
		resp.Reason = "Refund processed"
	}
	return resp, nil
}

// ==================== 查询 ====================

// GetPayment 获取支付单详情
func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*dto.PaymentVO, error) {
	payment, err := s.paymentRepo.GetByIDWithOrder(ctx, id)
	if err != nil {
		return nil, notFoundf("支付单 %d 不存在", id)
	}
	return toPaymentVO(payment), nil
}

// GetPaymentByOrder 按订单获取支付单
func (s *PaymentService) GetPaymentByOrder(ctx context.Context, orderID int64) (*dto.PaymentVO, error) {
	payment, err := s.paymentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, notFoundf("订单 %d 无支付单", orderID)
	}
	return toPaymentVO(payment), nil
}

// ListPayments 获取支付列表
func (s *PaymentService) ListPayments(ctx context.Context, req *dto.ListPaymentsRequest) (*dto.ListPaymentsResponse, error) {
	filter := repository.PaymentFilter{
		OrderID:  req.OrderID,
		Status:   req.Status,
		Method:   req.Method,
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

	payments, total, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.PaymentVO, 0, len(payments))
	for i := range payments {
		list = append(list, *toPaymentVO(&payments[i]))
	}
	return &dto.ListPaymentsResponse{Total: total, List: list}, nil
}

// Statistics 支付统计
func (s *PaymentService) Statistics(ctx context.Context, startDate, endDate string) (*dto.PaymentStatsResponse, error) {
	var start, end *time.Time
	if t, ok := parseDate(startDate); ok {
		start = &t
	}
	if t, ok := parseDate(endDate); ok {
		e := t.Add(24*time.Hour - time.Second)
		end = &e
	}

	stats, err := s.paymentRepo.Stats(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentStatsResponse{
		TotalCount:    stats.TotalPayments,
		PaidCount:     stats.PaidPayments,
		PendingCount:  stats.PendingPayments,
		FailedCount:   stats.FailedPayments,
		RefundedCount: stats.RefundedPayments,
		TotalAmount:   float64(stats.TotalAmount) / 100,
		PaidAmount:    float64(stats.PaidAmount) / 100,
		SuccessRate:   stats.SuccessRate,
	}, nil
}

// ==================== 超时关单 ====================

// ExpireOverdue 将超时未支付的支付单置为 expired，返回处理数量
func (s *PaymentService) ExpireOverdue(ctx context.Context, limit int) (int, error) {
	payments, err := s.paymentRepo.ListExpirable(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range payments {
		_, err := s.UpdateStatus(ctx, payments[i].ID, &dto.UpdatePaymentStatusRequest{
			Status: model.PaymentStatusExpired,
		})
		if err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// ==================== 辅助 ====================

// parseDate 解析 2024-01-01 格式日期
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// toPaymentVO 转换为视图对象
func toPaymentVO(p *model.Payment) *dto.PaymentVO {
	return &dto.PaymentVO{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Method:     p.Method,
		Provider:   p.Provider,
		ExternalID: p.ExternalID,
		PaymentURL: p.PaymentURL,
		Amount:     p.GetAmount(),
		Status:     p.Status,
		PaidAt:     p.PaidAt,
		ExpiredAt:  p.ExpiredAt,
		CreatedAt:  p.CreatedAt,
	}
}

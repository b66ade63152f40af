package repository

import (
	"context"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// PaymentFilter 支付单过滤条件
type PaymentFilter struct {
	OrderID   int64
	Status    string
	Method    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// PaymentStats 支付统计
type PaymentStats struct {
	TotalPayments    int64   `json:"total_payments"`
	PaidPayments     int64   `json:"paid_payments"`
	FailedPayments   int64   `json:"failed_payments"`
	PendingPayments  int64   `json:"pending_payments"`
	RefundedPayments int64   `json:"refunded_payments"`
	TotalAmount      int64   `json:"total_amount"`
	PaidAmount       int64   `json:"paid_amount"`
	SuccessRate      float64 `json:"success_rate"`
}

// ==================== PaymentRepository 支付仓库 ====================

// PaymentRepository 支付仓库接口
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByIDWithOrder(ctx context.Context, id int64) (*model.Payment, error)
	GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error)
	Update(ctx context.Context, payment *model.Payment) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	ExistsForOrder(ctx context.Context, orderID int64) (bool, error)
	Stats(ctx context.Context, startDate, endDate *time.Time) (*PaymentStats, error)
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]model.Payment, error)

	// Transaction 在单个数据库事务内执行 fn，tx 可用于构造事务级仓库
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ==================== 实现 ====================

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByIDWithOrder(ctx context.Context, id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Buyer").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Buyer").
		Where("order_id = ?", orderID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Payment{})

	if filter.OrderID > 0 {
		db = db.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		db = db.Where("method = ?", filter.Method)
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
		Preload("Order").
		Preload("Order.Buyer").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&payments).Error

	return payments, total, err
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Payment{}).Where("id = ?", id).Updates(fields).Error
}

func (r *paymentRepository) ExistsForOrder(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

func (r *paymentRepository) Stats(ctx context.Context, startDate, endDate *time.Time) (*PaymentStats, error) {
	base := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.Payment{})
		if startDate != nil {
			db = db.Where("created_at >= ?", startDate)
		}
		if endDate != nil {
			db = db.Where("created_at <= ?", endDate)
		}
		return db
	}

	stats := &PaymentStats{}

	if err := base().Count(&stats.TotalPayments).Error; err != nil {
		return nil, err
	}

	countByStatus := []struct {
		status string
		dest   *int64
	}{
		{model.PaymentStatusPaid, &stats.PaidPayments},
		{model.PaymentStatusFailed, &stats.FailedPayments},
		{model.PaymentStatusPending, &stats.PendingPayments},
		{model.PaymentStatusRefunded, &stats.RefundedPayments},
	}
	for _, c := range countByStatus {
		if err := base().Where("status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := base().Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalAmount).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", model.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.PaidAmount).Error; err != nil {
		return nil, err
	}

	if stats.TotalPayments > 0 {
		stats.SuccessRate = float64(stats.PaidPayments) / float64(stats.TotalPayments) * 100
	}

	return stats, nil
}

// ListExpirable 待支付且已过有效期的支付单
func (r *paymentRepository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PaymentStatusPending).
		Where("expired_at IS NOT NULL AND expired_at < ?", now).
		Order("expired_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

package task

import (
	"context"
	"sync"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ==================== PaymentExpiryTask 支付超时关单任务 ====================

// PaymentExpiryTask 定时将超时未支付的支付单置为 expired，
// 订单状态经同一状态联动规则回写
type PaymentExpiryTask struct {
	paymentSvc *service.PaymentService
	cron       *cron.Cron

	spec      string // cron 表达式（带秒）
	batchSize int
	running   sync.Mutex // 防止任务自身重入
}

// NewPaymentExpiryTask 创建支付超时关单任务
func NewPaymentExpiryTask(paymentSvc *service.PaymentService) *PaymentExpiryTask {
	return &PaymentExpiryTask{
		paymentSvc: paymentSvc,
		cron:       cron.New(cron.WithSeconds()),
		spec:       "0 */5 * * * *", // 每 5 分钟
		batchSize:  200,
	}
}

// SetSchedule 覆盖默认调度参数
func (t *PaymentExpiryTask) SetSchedule(spec string, batchSize int) {
	if spec != "" {
		t.spec = spec
	}
	if batchSize > 0 {
		t.batchSize = batchSize
	}
}

// Start 启动定时任务
func (t *PaymentExpiryTask) Start() error {
	_, err := t.cron.AddFunc(t.spec, func() {
		t.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}
	t.cron.Start()
	logger.L.Info("支付超时关单任务已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止定时任务，等待在途执行结束
func (t *PaymentExpiryTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	logger.L.Info("支付超时关单任务已停止")
}

// RunOnce 执行一轮超时扫描
func (t *PaymentExpiryTask) RunOnce(ctx context.Context) {
	if !t.running.TryLock() {
		logger.L.Warn("上一轮超时扫描尚未结束，跳过本轮")
		return
	}
	defer t.running.Unlock()

	start := time.Now()
	expired, err := t.paymentSvc.ExpireOverdue(ctx, t.batchSize)
	if err != nil {
		logger.L.Error("支付超时扫描失败", zap.Int("expired", expired), zap.Error(err))
		return
	}
	if expired > 0 {
		logger.L.Info("支付超时关单完成",
			zap.Int("expired", expired),
			zap.Duration("elapsed", time.Since(start)))
	}
}

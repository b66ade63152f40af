package database

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AnggaPuspa/RestApiBatika/pkg/logger"
)

// PartitionTask 分区维护任务
// 周期性创建未来分区并清理过期分区
type PartitionTask struct {
	manager      *PartitionManager
	futureMonths int
	interval     time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
	running      bool
	mu           sync.Mutex
}

// NewPartitionTask 创建分区维护任务
func NewPartitionTask(manager *PartitionManager, opts ...PartitionTaskOption) *PartitionTask {
	t := &PartitionTask{
		manager:      manager,
		futureMonths: 3,
		interval:     24 * time.Hour,
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PartitionTaskOption 任务选项
type PartitionTaskOption func(*PartitionTask)

// WithFutureMonths 设置未来分区月数
func WithFutureMonths(months int) PartitionTaskOption {
	return func(t *PartitionTask) {
		t.futureMonths = months
	}
}

// WithInterval 设置执行间隔
func WithInterval(d time.Duration) PartitionTaskOption {
	return func(t *PartitionTask) {
		t.interval = d
	}
}

// Start 启动任务
func (t *PartitionTask) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()

	logger.L.Info("分区维护任务已启动",
		zap.Duration("interval", t.interval),
		zap.Int("future_months", t.futureMonths))
}

// Stop 停止任务
func (t *PartitionTask) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	close(t.stopCh)
	t.wg.Wait()
	logger.L.Info("分区维护任务已停止")
}

func (t *PartitionTask) run() {
	defer t.wg.Done()

	// 启动时立即执行
	t.execute()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.execute()
		case <-t.stopCh:
			return
		}
	}
}

func (t *PartitionTask) execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()

	if err := t.manager.HealthCheck(ctx); err != nil {
		logger.L.Warn("分区健康检查", zap.Error(err))
	}

	if err := t.manager.EnsureFuturePartitions(ctx, t.futureMonths); err != nil {
		logger.L.Error("创建未来分区失败", zap.Error(err))
	}

	dropped, err := t.manager.CleanupExpiredPartitions(ctx)
	if err != nil {
		logger.L.Error("清理过期分区失败", zap.Error(err))
	} else if dropped > 0 {
		logger.L.Info("已删除过期分区", zap.Int("dropped", dropped))
	}

	logger.L.Info("分区维护执行完成", zap.Duration("elapsed", time.Since(start)))
}

// RunOnce 手动执行一次
func (t *PartitionTask) RunOnce() {
	t.execute()
}

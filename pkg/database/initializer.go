package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AnggaPuspa/RestApiBatika/pkg/logger"
)

// Initializer 数据库初始化器
// 分区表走嵌入的 SQL 建表，其余表走 AutoMigrate
type Initializer struct {
	db             *gorm.DB
	config         *PartitionConfig
	manager        *PartitionManager
	nonPartitioned []interface{}
	futureMonths   int
}

// InitOptions 初始化选项
type InitOptions struct {
	// 嵌入文件系统（推荐）
	EmbedFS   *embed.FS
	EmbedRoot string

	// 外部目录（可选，用于开发调试）
	SQLDir string

	// 非分区表 Model
	NonPartitionedModels []interface{}

	// 创建未来几个月的分区（默认 3）
	FutureMonths int
}

// NewInitializer 创建初始化器
func NewInitializer(db *gorm.DB, opts InitOptions) (*Initializer, error) {
	var config *PartitionConfig
	var err error

	if opts.EmbedFS != nil {
		config, err = LoadPartitionConfig(*opts.EmbedFS, opts.EmbedRoot)
	} else if opts.SQLDir != "" {
		config, err = LoadPartitionConfigFromDir(opts.SQLDir)
	} else {
		return nil, fmt.Errorf("必须指定 EmbedFS 或 SQLDir")
	}
	if err != nil {
		return nil, fmt.Errorf("加载分区配置失败: %w", err)
	}

	if opts.FutureMonths == 0 {
		opts.FutureMonths = 3
	}

	return &Initializer{
		db:             db,
		config:         config,
		manager:        NewPartitionManager(db, config),
		nonPartitioned: opts.NonPartitionedModels,
		futureMonths:   opts.FutureMonths,
	}, nil
}

// Initialize 执行初始化
func (i *Initializer) Initialize(ctx context.Context) error {
	start := time.Now()

	if err := i.manager.InitPartitionTables(ctx); err != nil {
		return fmt.Errorf("创建分区表失败: %w", err)
	}

	if err := i.manager.EnsureFuturePartitions(ctx, i.futureMonths); err != nil {
		return fmt.Errorf("创建分区失败: %w", err)
	}

	if len(i.nonPartitioned) > 0 {
		if err := i.db.WithContext(ctx).AutoMigrate(i.nonPartitioned...); err != nil {
			return fmt.Errorf("AutoMigrate 失败: %w", err)
		}
	}

	i.logStats(ctx)

	logger.L.Info("数据库初始化完成", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (i *Initializer) logStats(ctx context.Context) {
	stats, err := i.manager.GetAllStats(ctx)
	if err != nil {
		return
	}
	for _, s := range stats {
		logger.L.Info("分区表统计",
			zap.String("table", s.TableName),
			zap.Int("partitions", s.PartitionCount),
			zap.Float64("size_mb", float64(s.TotalSizeBytes)/1024/1024))
	}
}

// GetManager 获取分区管理器
func (i *Initializer) GetManager() *PartitionManager {
	return i.manager
}

// IsPartitionedTable 检查是否为分区表
func (i *Initializer) IsPartitionedTable(name string) bool {
	return i.config.IsPartitionedTable(name)
}

// QuickInit 按默认选项初始化：嵌入 SQL + 未来 3 个月分区
func QuickInit(db *gorm.DB, nonPartitioned []interface{}) (*Initializer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	init, err := NewInitializer(db, InitOptions{
		EmbedFS:              &PartitionSQL,
		EmbedRoot:            "partitions",
		NonPartitionedModels: nonPartitioned,
		FutureMonths:         3,
	})
	if err != nil {
		return nil, err
	}

	if err := init.Initialize(ctx); err != nil {
		return nil, err
	}
	return init, nil
}

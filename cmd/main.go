package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AnggaPuspa/RestApiBatika/internal/config"
	"github.com/AnggaPuspa/RestApiBatika/internal/controller"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
	"github.com/AnggaPuspa/RestApiBatika/internal/router"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/internal/task"
	"github.com/AnggaPuspa/RestApiBatika/pkg/database"
	"github.com/AnggaPuspa/RestApiBatika/pkg/identity"
	"github.com/AnggaPuspa/RestApiBatika/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Server.Mode); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 初始化数据库
	db := initDatabase(cfg)

	// 4. 初始化依赖
	deps := initDependencies(db, cfg)

	// 5. 启动定时任务
	tasks := initTasks(deps, cfg)
	defer tasks.stop()

	// 6. 初始化路由
	r := gin.New()
	r.Use(gin.Recovery())
	router.InitRoutes(r, deps.Controllers, deps.Services.Auth)

	// 7. 启动服务
	startServer(r, cfg.Server.Port)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	DBInit      *database.Initializer
}

// Repositories 仓库集合
type Repositories struct {
	User    repository.UserRepository
	Seller  repository.SellerRepository
	Product repository.ProductRepository
	Order   repository.OrderRepository
	Payment repository.PaymentRepository
	Review  repository.ReviewRepository
	Chat    repository.ChatRepository
}

// Services 服务集合
type Services struct {
	Auth    *service.AuthService
	User    *service.UserService
	Seller  *service.SellerService
	Product *service.ProductService
	Order   *service.OrderService
	Payment *service.PaymentService
	Review  *service.ReviewService
	Chat    *service.ChatService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
// messages 表按月分区走嵌入 SQL 建表，其余表 AutoMigrate
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := database.Connect(cfg.Database.DSN(), database.Options{
		LogSQL: cfg.Server.Mode == "debug",
	})
	if err != nil {
		logger.L.Fatal("数据库连接失败", zap.Error(err))
	}

	middleware.RegisterAuditCallbacks(db)

	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config) *Dependencies {
	dbInit, err := database.QuickInit(db, []interface{}{
		// 账号
		&model.User{}, &model.Seller{},
		// 商品
		&model.Product{}, &model.ProductVariant{}, &model.Category{},
		// 交易
		&model.Order{}, &model.OrderItem{}, &model.Payment{},
		// 评价 & 会话
		&model.Review{}, &model.Conversation{},
	})
	if err != nil {
		logger.L.Fatal("数据库初始化失败", zap.Error(err))
	}

	// -------- Repo 层 --------
	repos := &Repositories{
		User:    repository.NewUserRepository(db),
		Seller:  repository.NewSellerRepository(db),
		Product: repository.NewProductRepository(db),
		Order:   repository.NewOrderRepository(db),
		Payment: repository.NewPaymentRepository(db),
		Review:  repository.NewReviewRepository(db),
		Chat:    repository.NewChatRepository(db),
	}

	// -------- 身份提供商 --------
	provider := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.APIKey, 10*time.Second)

	// -------- 业务服务 --------
	services := &Services{
		User:    service.NewUserService(repos.User),
		Seller:  service.NewSellerService(repos.Seller, repos.User),
		Product: service.NewProductService(repos.Product, repos.Seller),
		Order:   service.NewOrderService(repos.Order, repos.Product),
		Payment: service.NewPaymentService(repos.Payment, repos.Order, cfg.Payment.Provider),
		Review:  service.NewReviewService(repos.Review, repos.Order, repos.Product, repos.User),
		Chat:    service.NewChatService(repos.Chat, repos.User),
	}
	services.Auth = service.NewAuthService(repos.User, repos.Seller, provider)
	if cfg.Identity.JWTSecret != "" {
		services.Auth.SetJWTSecret(cfg.Identity.JWTSecret)
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:    controller.NewAuthController(services.Auth),
		User:    controller.NewUserController(services.User),
		Seller:  controller.NewSellerController(services.Seller),
		Product: controller.NewProductController(services.Product, services.Review),
		Order:   controller.NewOrderController(services.Order),
		Payment: controller.NewPaymentController(services.Payment),
		Review:  controller.NewReviewController(services.Review),
		Chat:    controller.NewChatController(services.Chat),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		DBInit:      dbInit,
	}
}

// ==================== 定时任务 ====================

type runningTasks struct {
	paymentExpiry *task.PaymentExpiryTask
	partition     *database.PartitionTask
}

func (t *runningTasks) stop() {
	if t.paymentExpiry != nil {
		t.paymentExpiry.Stop()
	}
	if t.partition != nil {
		t.partition.Stop()
	}
}

// initTasks 初始化定时任务
func initTasks(deps *Dependencies, cfg *config.Config) *runningTasks {
	tasks := &runningTasks{}

	// 超时支付关单
	expiry := task.NewPaymentExpiryTask(deps.Services.Payment)
	expiry.SetSchedule(cfg.Payment.ExpirySpec, cfg.Payment.BatchSize)
	if err := expiry.Start(); err != nil {
		logger.L.Fatal("启动支付超时任务失败", zap.Error(err))
	}
	tasks.paymentExpiry = expiry

	// 消息表分区维护
	partition := database.NewPartitionTask(deps.DBInit.GetManager())
	partition.Start()
	tasks.partition = partition

	return tasks
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, port int) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	// 异步启动服务
	go func() {
		logger.L.Info("服务启动", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.L.Fatal("服务强制关闭", zap.Error(err))
	}

	logger.L.Info("服务已退出")
}

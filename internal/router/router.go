package router

import (
	"net/http"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/controller"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/AnggaPuspa/RestApiBatika/docs"
)

// Controllers 路由依赖的全部控制器
type Controllers struct {
	Auth    *controller.AuthController
	User    *controller.UserController
	Seller  *controller.SellerController
	Product *controller.ProductController
	Order   *controller.OrderController
	Payment *controller.PaymentController
	Review  *controller.ReviewController
	Chat    *controller.ChatController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers, resolver middleware.TokenResolver) {
	r.Use(middleware.RequestLogger())

	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authed := middleware.RequireAuth(resolver)
	audited := middleware.AuditContext()

	api := r.Group("/api")
	{
		// auth 认证组
		auth := api.Group("/auth")
		{
			auth.POST("/register", ctls.Auth.Register)
			auth.POST("/login", ctls.Auth.Login)
			auth.POST("/refresh", ctls.Auth.Refresh)
			auth.POST("/logout", authed, ctls.Auth.Logout)
			auth.GET("/me", authed, ctls.Auth.Me)
		}

		// users 用户组
		users := api.Group("/users", authed, audited)
		{
			users.GET("", ctls.User.List)
			users.GET("/:id", ctls.User.GetByID)
			users.PUT("/:id", ctls.User.Update)
			users.DELETE("/:id", ctls.User.Delete)
		}

		// sellers 店铺组，浏览公开
		sellers := api.Group("/sellers")
		{
			sellers.GET("", ctls.Seller.List)
			sellers.GET("/me", authed, ctls.Seller.Me)
			sellers.GET("/:id", ctls.Seller.GetByID)
			sellers.GET("/:id/verification-status", ctls.Seller.VerificationStatus)
			sellers.POST("", authed, audited, ctls.Seller.Create)
			sellers.PUT("/:id", authed, audited, ctls.Seller.Update)
			sellers.DELETE("/:id", authed, audited, ctls.Seller.Delete)
			sellers.POST("/:id/verify", authed, audited, ctls.Seller.Verify)
		}

		// products 商品组，浏览公开，写操作仅卖家
		products := api.Group("/products")
		{
			products.GET("", ctls.Product.List)
			products.GET("/featured", ctls.Product.Featured)
			products.GET("/categories", ctls.Product.Categories)
			products.GET("/:id", ctls.Product.GetByID)
			products.GET("/:id/rating", ctls.Product.Rating)
			products.GET("/:id/can-review", authed, ctls.Product.CanReview)
			products.POST("", authed, audited, middleware.RequireSeller(), ctls.Product.Create)
			products.PUT("/:id", authed, audited, middleware.RequireSeller(), ctls.Product.Update)
			products.DELETE("/:id", authed, audited, middleware.RequireSeller(), ctls.Product.Delete)
		}

		// orders 订单组
		orders := api.Group("/orders", authed, audited)
		{
			orders.POST("", middleware.Cooldown("create_order", 3*time.Second), ctls.Order.Create)
			orders.GET("", ctls.Order.List)
			orders.GET("/:id", ctls.Order.GetByID)
			orders.PATCH("/:id/status", ctls.Order.UpdateStatus)
			orders.POST("/:id/cancel", ctls.Order.Cancel)
			orders.GET("/:id/tracking", ctls.Order.Tracking)
		}

		// payments 支付组
		payments := api.Group("/payments", authed, audited)
		{
			payments.POST("", middleware.Cooldown("create_payment", 3*time.Second), ctls.Payment.Create)
			payments.GET("", ctls.Payment.List)
			payments.GET("/statistics", ctls.Payment.Statistics)
			payments.GET("/order/:order_id", ctls.Payment.GetByOrder)
			payments.GET("/:id", ctls.Payment.GetByID)
			payments.PATCH("/:id/status", ctls.Payment.UpdateStatus)
			payments.POST("/:id/refund", ctls.Payment.Refund)
		}

		// reviews 评价组，浏览公开
		reviews := api.Group("/reviews")
		{
			reviews.GET("", ctls.Review.List)
			reviews.GET("/:id", ctls.Review.GetByID)
			reviews.GET("/product/:product_id/rating", ctls.Review.ProductRating)
			reviews.GET("/can-review/:product_id", authed, ctls.Review.CanReview)
			reviews.POST("", authed, audited, ctls.Review.Create)
			reviews.PUT("/:id", authed, audited, ctls.Review.Update)
			reviews.DELETE("/:id", authed, audited, ctls.Review.Delete)
		}

		// chat 会话组
		chat := api.Group("/chat", authed)
		{
			chat.POST("/conversations", ctls.Chat.CreateConversation)
			chat.GET("/conversations", ctls.Chat.ListConversations)
			chat.GET("/conversations/:id", ctls.Chat.GetConversation)
			chat.POST("/conversations/:id/messages", ctls.Chat.SendMessage)
			chat.GET("/conversations/:id/messages", ctls.Chat.ListMessages)
			chat.POST("/messages/:id/read", ctls.Chat.MarkMessageRead)
			chat.GET("/unread-count", ctls.Chat.UnreadCount)
		}
	}
}

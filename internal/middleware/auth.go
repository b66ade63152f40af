package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnggaPuspa/RestApiBatika/internal/model"

	"github.com/gin-gonic/gin"
)

// ==================== 上下文键 ====================

const (
	ctxKeyUser     = "auth_user"
	ctxKeyUserID   = "auth_user_id"
	ctxKeyEmail    = "auth_user_email"
	ctxKeyIsSeller = "auth_is_seller"
)

// TokenResolver 把访问令牌解析为本地用户
type TokenResolver interface {
	Resolve(ctx context.Context, accessToken string) (*model.User, error)
}

// ==================== 中间件 ====================

// RequireAuth 认证中间件，解析 Bearer 令牌并注入当前用户
func RequireAuth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "missing bearer token",
			})
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or expired token",
			})
			return
		}

		c.Set(ctxKeyUser, user)
		c.Set(ctxKeyUserID, user.ID)
		c.Set(ctxKeyEmail, user.Email)
		c.Set(ctxKeyIsSeller, user.IsSeller)
		c.Next()
	}
}

// RequireSeller 卖家专用接口守卫，必须在 RequireAuth 之后挂载
func RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsSeller(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "seller account required",
			})
			return
		}
		c.Next()
	}
}

// extractBearer 从 Authorization 头提取令牌
func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ==================== 读取辅助 ====================

// GetUser 获取当前登录用户，未认证时返回 nil
func GetUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ctxKeyUser); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

// GetUserID 获取当前登录用户 ID，未认证时返回 0
func GetUserID(c *gin.Context) int64 {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// GetUserEmail 获取当前登录用户邮箱
func GetUserEmail(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyEmail); ok {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return ""
}

// IsSeller 当前用户是否为卖家
func IsSeller(c *gin.Context) bool {
	if v, ok := c.Get(ctxKeyIsSeller); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
	"github.com/AnggaPuspa/RestApiBatika/pkg/identity"
)

const testJWTSecret = "unit-test-secret"

// newFakeProvider 模拟身份提供商的最小实现
func newFakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body struct {
			Email    string                 `json:"email"`
			Password string                 `json:"password"`
			Data     map[string]interface{} `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "signup-token-" + body.Email,
			"refresh_token": "refresh-" + body.Email,
			"token_type":    "bearer",
			"expires_in":    3600,
			"user": map[string]interface{}{
				"id":            "ext-" + body.Email,
				"email":         body.Email,
				"user_metadata": body.Data,
			},
		})
	})

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("grant_type") {
		case "password":
			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Password != "rahasia123" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "login-token-" + body.Email,
				"refresh_token": "refresh-" + body.Email,
				"token_type":    "bearer",
				"expires_in":    3600,
				"user":          map[string]interface{}{"id": "ext-" + body.Email, "email": body.Email},
			})
		case "refresh_token":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "refreshed-token", "token_type": "bearer", "expires_in": 3600,
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "invalid token"})
	})

	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newAuthTestEnv(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &sellerTestTable{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	ts := newFakeProvider(t)
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSellerRepository(db),
		identity.NewClient(ts.URL, "test-key", 5*time.Second),
	)
	svc.SetJWTSecret(testJWTSecret)
	return svc, db
}

// signTestToken 用测试密钥签发一个提供商风格的 HS256 令牌
func signTestToken(t *testing.T, subject, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{
			"full_name": "Siti Rahma",
		},
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("签发测试令牌失败: %v", err)
	}
	return signed
}

func TestAuthService_Register(t *testing.T) {
	svc, db := newAuthTestEnv(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:    "siti@example.com",
		Password: "rahasia123",
		FullName: "Siti Rahma",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Errorf("令牌响应不完整: %+v", resp)
	}
	if resp.User == nil || resp.User.Email != "siti@example.com" {
		t.Fatalf("应带出本地用户信息: %+v", resp.User)
	}

	var user model.User
	if err := db.Where("email = ?", "siti@example.com").First(&user).Error; err != nil {
		t.Fatalf("本地用户应已落库: %v", err)
	}
	if user.ExternalID != "ext-siti@example.com" {
		t.Errorf("外部身份 ID 不符，实际 %s", user.ExternalID)
	}

	// 重复注册
	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "siti@example.com", Password: "rahasia123",
	}); !errors.Is(err, ErrConflict) {
		t.Errorf("重复注册应返回冲突错误，实际 %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, db := newAuthTestEnv(t)
	ctx := context.Background()

	// 密码错误
	if _, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "siti@example.com", Password: "salah",
	}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("密码错误应返回未认证，实际 %v", err)
	}

	// 首次登录自动落本地用户
	resp, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "siti@example.com", Password: "rahasia123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.User == nil {
		t.Fatal("登录应带出本地用户")
	}

	var user model.User
	if err := db.Where("external_id = ?", "ext-siti@example.com").First(&user).Error; err != nil {
		t.Fatalf("首次登录应自动创建本地用户: %v", err)
	}
	if user.LastLoginAt == nil {
		t.Error("登录应刷新最近登录时间")
	}
}

func TestAuthService_ResolveLocalJWT(t *testing.T) {
	svc, db := newAuthTestEnv(t)
	ctx := context.Background()

	token := signTestToken(t, "ext-resolve-1", "resolve@example.com")

	// 本地校验通过，首次解析自动建用户（fake 的 /user 始终 401，能解析说明没走提供商）
	user, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("解析令牌失败: %v", err)
	}
	if user.Email != "resolve@example.com" || user.FullName != "Siti Rahma" {
		t.Errorf("应从令牌声明还原用户资料: %+v", user)
	}

	// 第二次解析命中缓存并返回同一用户
	again, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("二次解析失败: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("应解析到同一本地用户 %d，实际 %d", user.ID, again.ID)
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 1 {
		t.Errorf("重复解析不应重复建用户，实际 %d", count)
	}

	// 伪造签名的令牌走提供商校验，同样被拒
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ext-x"})
	forgedStr, _ := forged.SignedString([]byte("wrong-secret"))
	if _, err := svc.Resolve(ctx, forgedStr); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("伪造令牌应返回未认证，实际 %v", err)
	}

	// 空令牌
	if _, err := svc.Resolve(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("空令牌应返回未认证，实际 %v", err)
	}
}

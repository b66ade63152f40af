package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
)

// ==================== 测试辅助 ====================

// stubResolver 按令牌查表的认证桩
type stubResolver struct {
	users map[string]*model.User
}

func (r *stubResolver) Resolve(_ context.Context, token string) (*model.User, error) {
	if u, ok := r.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

func newCtlTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func seedCtlUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{ExternalID: "ext-" + email, Email: email, FullName: "Test User"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	return env
}

func setupUserCtlRouter(db *gorm.DB, resolver *stubResolver) *gin.Engine {
	ctl := NewUserController(service.NewUserService(repository.NewUserRepository(db)))

	r := gin.New()
	r.Use(gin.Recovery())
	users := r.Group("/api/users", middleware.RequireAuth(resolver))
	{
		users.GET("", ctl.List)
		users.GET("/:id", ctl.GetByID)
		users.PUT("/:id", ctl.Update)
		users.DELETE("/:id", ctl.Delete)
	}
	return r
}

// ==================== 测试用例 ====================

func TestUserController_Auth(t *testing.T) {
	db := newCtlTestDB(t, &model.User{}, &TestSellerCtl{})
	router := setupUserCtlRouter(db, &stubResolver{users: map[string]*model.User{}})

	// 缺少令牌
	w := doJSON(router, http.MethodGet, "/api/users", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// 无效令牌
	w = doJSON(router, http.MethodGet, "/api/users", "bad-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUserController_GetByID(t *testing.T) {
	db := newCtlTestDB(t, &model.User{}, &TestSellerCtl{})
	user := seedCtlUser(t, db, "siti@example.com")
	resolver := &stubResolver{users: map[string]*model.User{"tok-siti": user}}
	router := setupUserCtlRouter(db, resolver)

	w := doJSON(router, http.MethodGet, "/api/users/1", "tok-siti", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Errorf("success = false, want true")
	}
	var got struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(env.Data, &got)
	if got.Email != "siti@example.com" {
		t.Errorf("email = %s, want siti@example.com", got.Email)
	}

	// 不存在的用户映射为 404
	w = doJSON(router, http.MethodGet, "/api/users/9999", "tok-siti", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if env := decodeEnvelope(t, w); env.Success || env.Error == "" {
		t.Errorf("失败响应应带错误信息: %+v", env)
	}

	// 非数字 ID 映射为 400
	w = doJSON(router, http.MethodGet, "/api/users/abc", "tok-siti", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserController_Update(t *testing.T) {
	db := newCtlTestDB(t, &model.User{}, &TestSellerCtl{})
	owner := seedCtlUser(t, db, "owner@example.com")
	other := seedCtlUser(t, db, "other@example.com")
	resolver := &stubResolver{users: map[string]*model.User{
		"tok-owner": owner,
		"tok-other": other,
	}}
	router := setupUserCtlRouter(db, resolver)

	// JSON 残缺映射为 400
	w := doJSON(router, http.MethodPut, "/api/users/1", "tok-owner", `{"full_name":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	// 改别人的资料映射为 403
	w = doJSON(router, http.MethodPut, "/api/users/1", "tok-other", map[string]string{"full_name": "Hacked"})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}

	// 本人更新成功
	w = doJSON(router, http.MethodPut, "/api/users/1", "tok-owner", map[string]string{"full_name": "Siti Rahma"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	var reloaded model.User
	if err := db.First(&reloaded, owner.ID).Error; err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if reloaded.FullName != "Siti Rahma" {
		t.Errorf("full_name = %s, want Siti Rahma", reloaded.FullName)
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
)

func newUserTestEnv(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &orderTestSeller{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return NewUserService(repository.NewUserRepository(db)), db
}

func TestUserService_UpdateUser(t *testing.T) {
	svc, db := newUserTestEnv(t)
	ctx := context.Background()
	user := seedReviewUser(t, db, "budi@example.com")

	// 仅允许本人修改
	name := "Budi Santoso"
	if _, err := svc.UpdateUser(ctx, user.ID+1, user.ID, &dto.UpdateUserRequest{FullName: &name}); !errors.Is(err, ErrForbidden) {
		t.Errorf("他人修改资料应返回禁止访问，实际 %v", err)
	}

	phone := "0812999888"
	vo, err := svc.UpdateUser(ctx, user.ID, user.ID, &dto.UpdateUserRequest{FullName: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("更新用户失败: %v", err)
	}
	if vo.FullName != name || vo.Phone != phone {
		t.Errorf("资料未按请求更新: %+v", vo)
	}

	// 未指定的字段保持原值
	reloaded, err := svc.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if reloaded.Email != "budi@example.com" {
		t.Errorf("邮箱不应被修改，实际 %s", reloaded.Email)
	}
}

func TestUserService_ListUsers(t *testing.T) {
	svc, db := newUserTestEnv(t)
	ctx := context.Background()

	buyer := seedReviewUser(t, db, "buyer@example.com")
	seller := seedReviewUser(t, db, "seller@example.com")
	db.Model(&model.User{}).Where("id = ?", seller.ID).Update("is_seller", true)
	_ = buyer

	isSeller := true
	resp, err := svc.ListUsers(ctx, &dto.ListUsersRequest{IsSeller: &isSeller})
	if err != nil {
		t.Fatalf("查询用户列表失败: %v", err)
	}
	if resp.Total != 1 || resp.List[0].Email != "seller@example.com" {
		t.Errorf("卖家过滤结果不符: total=%d", resp.Total)
	}

	resp, err = svc.ListUsers(ctx, &dto.ListUsersRequest{Keyword: "buyer"})
	if err != nil {
		t.Fatalf("按关键字查询失败: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("关键字过滤应命中 1 人，实际 %d", resp.Total)
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	svc, db := newUserTestEnv(t)
	ctx := context.Background()
	user := seedReviewUser(t, db, "budi@example.com")

	if err := svc.DeleteUser(ctx, user.ID+1, user.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("他人注销应返回禁止访问，实际 %v", err)
	}
	if err := svc.DeleteUser(ctx, user.ID, user.ID); err != nil {
		t.Fatalf("注销失败: %v", err)
	}
	if _, err := svc.GetUser(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("已注销用户应返回未找到，实际 %v", err)
	}
}

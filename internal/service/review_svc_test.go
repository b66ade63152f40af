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

// ==================== 测试环境 ====================

func newReviewTestEnv(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &orderTestProduct{}, &model.ProductVariant{},
		&model.Order{}, &model.OrderItem{}, &model.Review{},
	); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	svc := NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, db
}

func seedReviewUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{ExternalID: "ext-" + email, Email: email, FullName: "Test User"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

// seedDeliveredOrder 为用户造一笔包含该规格的已签收订单
func seedDeliveredOrder(t *testing.T, db *gorm.DB, userID, variantID int64) *model.Order {
	t.Helper()
	order := &model.Order{
		BuyerID:  userID,
		SellerID: 1,
		Status:   model.OrderStatusDelivered,
		Items: []model.OrderItem{
			{VariantID: variantID, Quantity: 1, UnitPriceAmount: 10000, SubtotalAmount: 10000},
		},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}
	return order
}

// ==================== 评价资格 ====================

func TestReviewService_CanReview(t *testing.T) {
	svc, db := newReviewTestEnv(t)
	ctx := context.Background()

	user := seedReviewUser(t, db, "buyer@example.com")
	variant := seedVariant(t, db, 1, "Batik Parang", true, 25000, 10)

	// 商品不存在
	if _, err := svc.CanReview(ctx, user.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("不存在的商品应返回未找到，实际 %v", err)
	}

	// 无已签收订单
	resp, err := svc.CanReview(ctx, user.ID, variant.ProductID)
	if err != nil {
		t.Fatalf("查询评价资格失败: %v", err)
	}
	if resp.CanReview {
		t.Error("无已签收订单时不应允许评价")
	}
	if resp.Reason != "You can only review products from delivered orders" {
		t.Errorf("拒绝原因不符，实际 %q", resp.Reason)
	}

	// 有已签收订单
	seedDeliveredOrder(t, db, user.ID, variant.ID)
	resp, err = svc.CanReview(ctx, user.ID, variant.ProductID)
	if err != nil {
		t.Fatalf("查询评价资格失败: %v", err)
	}
	if !resp.CanReview {
		t.Error("存在已签收订单时应允许评价")
	}

	// 已评价过
	if _, err := svc.CreateReview(ctx, user.ID, &dto.CreateReviewRequest{
		ProductID: variant.ProductID, Rating: 5, Comment: "Bagus sekali",
	}); err != nil {
		t.Fatalf("创建评价失败: %v", err)
	}
	resp, err = svc.CanReview(ctx, user.ID, variant.ProductID)
	if err != nil {
		t.Fatalf("查询评价资格失败: %v", err)
	}
	if resp.CanReview {
		t.Error("已评价过不应再允许评价")
	}
	if resp.ExistingReview == nil {
		t.Error("应带出已有评价")
	}
}

// ==================== 创建评价 ====================

func TestReviewService_CreateReview(t *testing.T) {
	svc, db := newReviewTestEnv(t)
	ctx := context.Background()

	user := seedReviewUser(t, db, "buyer@example.com")
	variant := seedVariant(t, db, 1, "Batik Parang", true, 25000, 10)

	// 评分越界
	for _, rating := range []int{0, 6} {
		if _, err := svc.CreateReview(ctx, user.ID, &dto.CreateReviewRequest{
			ProductID: variant.ProductID, Rating: rating,
		}); !errors.Is(err, ErrValidation) {
			t.Errorf("评分 %d 应返回校验错误，实际 %v", rating, err)
		}
	}

	// 无已签收订单也可评价，但不带已购标记
	vo, err := svc.CreateReview(ctx, user.ID, &dto.CreateReviewRequest{
		ProductID: variant.ProductID, Rating: 4, Title: "Warna bagus",
	})
	if err != nil {
		t.Fatalf("创建评价失败: %v", err)
	}
	if vo.IsVerified {
		t.Error("无已签收订单的评价不应标记已购认证")
	}
	if vo.Status != model.ReviewStatusApproved {
		t.Errorf("评价状态应为 approved，实际 %s", vo.Status)
	}

	// 重复评价
	if _, err := svc.CreateReview(ctx, user.ID, &dto.CreateReviewRequest{
		ProductID: variant.ProductID, Rating: 5,
	}); !errors.Is(err, ErrConflict) {
		t.Errorf("重复评价应返回冲突错误，实际 %v", err)
	}
}

func TestReviewService_CreateVerifiedReview(t *testing.T) {
	svc, db := newReviewTestEnv(t)
	ctx := context.Background()

	user := seedReviewUser(t, db, "buyer@example.com")
	variant := seedVariant(t, db, 1, "Batik Parang", true, 25000, 10)
	order := seedDeliveredOrder(t, db, user.ID, variant.ID)

	vo, err := svc.CreateReview(ctx, user.ID, &dto.CreateReviewRequest{
		ProductID: variant.ProductID,
		OrderID:   &order.ID,
		Rating:    5,
		Comment:   "Kain halus, motif rapi",
	})
	if err != nil {
		t.Fatalf("创建评价失败: %v", err)
	}
	if !vo.IsVerified {
		t.Error("基于已签收订单的评价应标记已购认证")
	}
}

// ==================== 更新与删除 ====================

func TestReviewService_UpdateAndDelete(t *testing.T) {
	svc, db := newReviewTestEnv(t)
	ctx := context.Background()

	user := seedReviewUser(t, db, "buyer@example.com")
	other := seedReviewUser(t, db, "other@example.com")
	variant := seedVariant(t, db, 1, "Batik Parang", true, 25000, 10)

	vo, err := svc.CreateReview(ctx, user.ID, &dto.CreateReviewRequest{
		ProductID: variant.ProductID, Rating: 3,
	})
	if err != nil {
		t.Fatalf("创建评价失败: %v", err)
	}

	// 非作者不可修改
	newRating := 5
	if _, err := svc.UpdateReview(ctx, other.ID, vo.ID, &dto.UpdateReviewRequest{Rating: &newRating}); !errors.Is(err, ErrForbidden) {
		t.Errorf("非作者修改应返回禁止访问，实际 %v", err)
	}

	updated, err := svc.UpdateReview(ctx, user.ID, vo.ID, &dto.UpdateReviewRequest{Rating: &newRating})
	if err != nil {
		t.Fatalf("更新评价失败: %v", err)
	}
	if updated.Rating != 5 {
		t.Errorf("评分应更新为 5，实际 %d", updated.Rating)
	}

	// 非作者不可删除
	if err := svc.DeleteReview(ctx, other.ID, vo.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("非作者删除应返回禁止访问，实际 %v", err)
	}
	if err := svc.DeleteReview(ctx, user.ID, vo.ID); err != nil {
		t.Fatalf("删除评价失败: %v", err)
	}
	if _, err := svc.GetReview(ctx, vo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("已删除评价应返回未找到，实际 %v", err)
	}
}

// ==================== 评分汇总 ====================

func TestReviewService_ProductRating(t *testing.T) {
	svc, db := newReviewTestEnv(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 1, "Batik Parang", true, 25000, 10)

	// 无评价时分布全为 0
	resp, err := svc.ProductRating(ctx, variant.ProductID)
	if err != nil {
		t.Fatalf("查询评分汇总失败: %v", err)
	}
	if resp.Count != 0 || resp.Average != 0 {
		t.Errorf("无评价时应为零值: count=%d avg=%v", resp.Count, resp.Average)
	}
	if len(resp.Distribution) != 5 {
		t.Errorf("分布应固定五档，实际 %d", len(resp.Distribution))
	}

	for i, rating := range []int{5, 5, 4, 3} {
		user := seedReviewUser(t, db, "buyer"+string(rune('a'+i))+"@example.com")
		if _, err := svc.CreateReview(ctx, user.ID, &dto.CreateReviewRequest{
			ProductID: variant.ProductID, Rating: rating,
		}); err != nil {
			t.Fatalf("创建评价失败: %v", err)
		}
	}

	resp, err = svc.ProductRating(ctx, variant.ProductID)
	if err != nil {
		t.Fatalf("查询评分汇总失败: %v", err)
	}
	if resp.Count != 4 {
		t.Errorf("评价数应为 4，实际 %d", resp.Count)
	}
	if resp.Average != 4.25 {
		t.Errorf("均分应为 4.25，实际 %v", resp.Average)
	}
	if resp.Distribution[5] != 2 || resp.Distribution[4] != 1 || resp.Distribution[3] != 1 || resp.Distribution[2] != 0 {
		t.Errorf("评分分布不符: %v", resp.Distribution)
	}
}

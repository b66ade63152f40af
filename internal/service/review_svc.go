package service

import (
	"context"
	"errors"
	"math"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"

	"gorm.io/gorm"
)

// ==================== ReviewService ====================

// ReviewService 评价服务
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

// NewReviewService 创建评价服务
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// ==================== 评价资格 ====================

// CanReview 判断用户是否可以评价商品。
// 已有评价直接返回 false 并带出已有评价；否则要求存在包含该商品的已签收订单。
func (s *ReviewService) CanReview(ctx context.Context, userID, productID int64) (*dto.CanReviewResponse, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, notFoundf("商品 %d 不存在", productID)
	}

	existing, err := s.reviewRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return &dto.CanReviewResponse{
			CanReview:      false,
			Reason:         "You have already reviewed this product",
			ExistingReview: toReviewVO(existing),
		}, nil
	}

	delivered, err := s.orderRepo.HasDeliveredOrderWithProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		return &dto.CanReviewResponse{
			CanReview: false,
			Reason:    "You can only review products from delivered orders",
		}, nil
	}
	return &dto.CanReviewResponse{CanReview: true}, nil
}

// ==================== 创建评价 ====================

// CreateReview 创建评价。唯一性检查、已购认证标记与写入同一事务完成
func (s *ReviewService) CreateReview(ctx context.Context, userID int64, req *dto.CreateReviewRequest) (*dto.ReviewVO, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, validationf("评分必须在 1 到 5 之间")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, notFoundf("用户 %d 不存在", userID)
	}
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, notFoundf("商品 %d 不存在", req.ProductID)
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Status:    model.ReviewStatusApproved,
	}

	err := s.reviewRepo.Transaction(ctx, func(tx *gorm.DB) error {
		txReviews := repository.NewReviewRepository(tx)
		txOrders := repository.NewOrderRepository(tx)

		existing, err := txReviews.GetByUserAndProduct(ctx, userID, req.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			return conflictf("用户 %d 已评价过商品 %d", userID, req.ProductID)
		}

		// 已购认证：指定了订单时校验该订单，否则匹配任一已签收订单
		if req.OrderID != nil {
			verified, err := txOrders.OrderContainsProduct(ctx, *req.OrderID, userID, req.ProductID)
			if err != nil {
				return err
			}
			review.IsVerified = verified
		} else {
			verified, err := txOrders.HasDeliveredOrderWithProduct(ctx, userID, req.ProductID)
			if err != nil {
				return err
			}
			review.IsVerified = verified
		}

		return txReviews.Create(ctx, review)
	})
	if err != nil {
		return nil, err
	}

	return toReviewVO(review), nil
}

// ==================== 更新评价 ====================

// UpdateReview 更新评价，仅评价作者可更新
func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID int64, req *dto.UpdateReviewRequest) (*dto.ReviewVO, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, notFoundf("评价 %d 不存在", reviewID)
	}
	if review.UserID != userID {
		return nil, forbiddenf("无权修改他人评价")
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, validationf("评分必须在 1 到 5 之间")
		}
		review.Rating = *req.Rating
	}
	if req.Title != nil {
		review.Title = *req.Title
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return toReviewVO(review), nil
}

// ==================== 删除评价 ====================

// DeleteReview 删除评价，仅评价作者可删除
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return notFoundf("评价 %d 不存在", reviewID)
	}
	if review.UserID != userID {
		return forbiddenf("无权删除他人评价")
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

// ==================== 查询 ====================

// GetReview 获取评价详情
func (s *ReviewService) GetReview(ctx context.Context, id int64) (*dto.ReviewVO, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundf("评价 %d 不存在", id)
	}
	return toReviewVO(review), nil
}

// ListReviews 获取评价列表，默认仅展示已通过的评价
func (s *ReviewService) ListReviews(ctx context.Context, req *dto.ListReviewsRequest) (*dto.ListReviewsResponse, error) {
	status := req.Status
	if status == "" {
		status = model.ReviewStatusApproved
	}
	filter := repository.ReviewFilter{
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Rating:    req.Rating,
		Status:    status,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	reviews, total, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.ReviewVO, 0, len(reviews))
	for i := range reviews {
		list = append(list, *toReviewVO(&reviews[i]))
	}
	return &dto.ListReviewsResponse{Total: total, List: list}, nil
}

// ==================== 评分汇总 ====================

// ProductRating 计算商品评分汇总：均值保留两位小数，附五档分布
func (s *ReviewService) ProductRating(ctx context.Context, productID int64) (*dto.ProductRatingResponse, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, notFoundf("商品 %d 不存在", productID)
	}

	ratings, err := s.reviewRepo.RatingsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductRatingResponse{
		ProductID:    productID,
		Count:        int64(len(ratings)),
		Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(ratings) == 0 {
		return resp, nil
	}

	sum := 0
	for _, r := range ratings {
		sum += r
		resp.Distribution[r]++
	}
	avg := float64(sum) / float64(len(ratings))
	resp.Average = math.Round(avg*100) / 100
	return resp, nil
}

// toReviewVO 转换为视图对象
func toReviewVO(r *model.Review) *dto.ReviewVO {
	return &dto.ReviewVO{
		ID:         r.ID,
		UserID:     r.UserID,
		ProductID:  r.ProductID,
		OrderID:    r.OrderID,
		Rating:     r.Rating,
		Title:      r.Title,
		Comment:    r.Comment,
		IsVerified: r.IsVerified,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

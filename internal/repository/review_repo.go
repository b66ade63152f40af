package repository

import (
	"context"

	"github.com/AnggaPuspa/RestApiBatika/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// ReviewFilter 评价过滤条件
type ReviewFilter struct {
	ProductID int64
	UserID    int64
	Rating    int
	Status    string
	Page      int
	PageSize  int
}

// ==================== ReviewRepository 评价仓库 ====================

// ReviewRepository 评价仓库接口
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]model.Review, int64, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id int64) error
	RatingsForProduct(ctx context.Context, productID int64) ([]int, error)

	// Transaction 在单个数据库事务内执行 fn
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ==================== 实现 ====================

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Product").
		First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Review{})

	if filter.ProductID > 0 {
		db = db.Where("product_id = ?", filter.ProductID)
	}
	if filter.UserID > 0 {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Rating > 0 {
		db = db.Where("rating = ?", filter.Rating)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Preload("User").
		Preload("Product").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&reviews).Error

	return reviews, total, err
}

func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Review{}, id).Error
}

// RatingsForProduct 商品所有已通过评价的评分列表
func (r *reviewRepository) RatingsForProduct(ctx context.Context, productID int64) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("product_id = ? AND status = ?", productID, model.ReviewStatusApproved).
		Pluck("rating", &ratings).Error
	return ratings, err
}

func (r *reviewRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

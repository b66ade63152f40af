package dto

import "time"

// ==================== 评价资格 ====================

// CanReviewResponse 评价资格响应
type CanReviewResponse struct {
	CanReview      bool      `json:"can_review"`
	Reason         string    `json:"reason,omitempty"`
	ExistingReview *ReviewVO `json:"existing_review,omitempty"`
}

// ==================== 创建评价 ====================

// CreateReviewRequest 创建评价请求
type CreateReviewRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	OrderID   *int64 `json:"order_id"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

// ==================== 更新评价 ====================

// UpdateReviewRequest 更新评价请求
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

// ==================== 评价列表 ====================

// ListReviewsRequest 评价列表请求
type ListReviewsRequest struct {
	ProductID int64  `form:"product_id"`
	UserID    int64  `form:"user_id"`
	Rating    int    `form:"rating"`
	Status    string `form:"status"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}

// ListReviewsResponse 评价列表响应
type ListReviewsResponse struct {
	Total int64      `json:"total"`
	List  []ReviewVO `json:"list"`
}

// ReviewVO 评价视图对象
type ReviewVO struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ProductID  int64     `json:"product_id"`
	OrderID    *int64    `json:"order_id,omitempty"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	IsVerified bool      `json:"is_verified"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ==================== 评分汇总 ====================

// ProductRatingResponse 商品评分汇总响应
type ProductRatingResponse struct {
	ProductID    int64         `json:"product_id"`
	Average      float64       `json:"average"`
	Count        int64         `json:"count"`
	Distribution map[int]int64 `json:"distribution"`
}

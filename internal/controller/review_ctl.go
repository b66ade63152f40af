package controller

import (
	"strconv"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReviewController 评价控制器
type ReviewController struct {
	svc *service.ReviewService
}

// NewReviewController 创建评价控制器
func NewReviewController(svc *service.ReviewService) *ReviewController {
	return &ReviewController{svc: svc}
}

// Create 创建评价
// POST /api/reviews
func (r *ReviewController) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := r.svc.CreateReview(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Review created", result)
}

// List 评价列表
// GET /api/reviews
func (r *ReviewController) List(c *gin.Context) {
	var req dto.ListReviewsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := r.svc.ListReviews(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// GetByID 评价详情
// GET /api/reviews/:id
func (r *ReviewController) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	result, err := r.svc.GetReview(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// Update 更新评价
// PUT /api/reviews/:id
func (r *ReviewController) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := r.svc.UpdateReview(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Review updated", result)
}

// Delete 删除评价
// DELETE /api/reviews/:id
func (r *ReviewController) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	if err := r.svc.DeleteReview(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Review deleted", nil)
}

// CanReview 评价资格检查
// GET /api/reviews/can-review/:product_id
func (r *ReviewController) CanReview(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	result, err := r.svc.CanReview(c.Request.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// ProductRating 商品评分汇总
// GET /api/reviews/product/:product_id/rating
func (r *ReviewController) ProductRating(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	result, err := r.svc.ProductRating(c.Request.Context(), productID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

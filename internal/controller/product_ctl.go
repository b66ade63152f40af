package controller

import (
	"strconv"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProductController 商品控制器
type ProductController struct {
	svc       *service.ProductService
	reviewSvc *service.ReviewService
}

// NewProductController 创建商品控制器
func NewProductController(svc *service.ProductService, reviewSvc *service.ReviewService) *ProductController {
	return &ProductController{svc: svc, reviewSvc: reviewSvc}
}

// List 商品列表
// GET /api/products
func (p *ProductController) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := p.svc.ListProducts(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// GetByID 商品详情
// GET /api/products/:id
func (p *ProductController) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	result, err := p.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// Create 发布商品
// POST /api/products
func (p *ProductController) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := p.svc.CreateProduct(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Product created", result)
}

// Update 更新商品
// PUT /api/products/:id
func (p *ProductController) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := p.svc.UpdateProduct(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Product updated", result)
}

// Delete 删除商品
// DELETE /api/products/:id
func (p *ProductController) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	if err := p.svc.DeleteProduct(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Product deleted", nil)
}

// Featured 推荐商品
// GET /api/products/featured
func (p *ProductController) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	result, err := p.svc.FeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// Categories 分类列表
// GET /api/products/categories
func (p *ProductController) Categories(c *gin.Context) {
	result, err := p.svc.ListCategories(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// CanReview 当前用户能否评价该商品
// GET /api/products/:id/can-review
func (p *ProductController) CanReview(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	result, err := p.reviewSvc.CanReview(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// Rating 商品评分汇总
// GET /api/products/:id/rating
func (p *ProductController) Rating(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	result, err := p.reviewSvc.ProductRating(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

package controller

import (
	"strconv"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/pkg/response"

	"github.com/gin-gonic/gin"
)

// SellerController 店铺控制器
type SellerController struct {
	svc *service.SellerService
}

// NewSellerController 创建店铺控制器
func NewSellerController(svc *service.SellerService) *SellerController {
	return &SellerController{svc: svc}
}

// Create 开店
// POST /api/sellers
func (s *SellerController) Create(c *gin.Context) {
	var req dto.CreateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.svc.CreateSeller(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Store created", result)
}

// List 店铺列表
// GET /api/sellers
func (s *SellerController) List(c *gin.Context) {
	var req dto.ListSellersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.svc.ListSellers(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// GetByID 店铺详情
// GET /api/sellers/:id
func (s *SellerController) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid seller id")
		return
	}

	result, err := s.svc.GetSeller(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// Me 当前用户的店铺
// GET /api/sellers/me
func (s *SellerController) Me(c *gin.Context) {
	result, err := s.svc.GetSellerByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// Update 更新店铺
// PUT /api/sellers/:id
func (s *SellerController) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid seller id")
		return
	}

	var req dto.UpdateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.svc.UpdateSeller(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Store updated", result)
}

// Delete 关店
// DELETE /api/sellers/:id
func (s *SellerController) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid seller id")
		return
	}

	if err := s.svc.DeleteSeller(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Store closed", nil)
}

// Verify 店铺认证
// POST /api/sellers/:id/verify
func (s *SellerController) Verify(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid seller id")
		return
	}

	var req dto.VerifySellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.svc.VerifySeller(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Store verified", result)
}

// VerificationStatus 店铺认证状态
// GET /api/sellers/:id/verification-status
func (s *SellerController) VerificationStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid seller id")
		return
	}

	result, err := s.svc.VerificationStatus(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

package controller

import (
	"strconv"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderController 订单控制器
type OrderController struct {
	svc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(svc *service.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

// Create 下单
// POST /api/orders
func (o *OrderController) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := o.svc.CreateOrder(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Order created", result)
}

// List 当前用户的订单列表
// GET /api/orders
func (o *OrderController) List(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := o.svc.ListOrders(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// GetByID 订单详情
// GET /api/orders/:id
func (o *OrderController) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	result, err := o.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// UpdateStatus 更新订单状态
// PATCH /api/orders/:id/status
func (o *OrderController) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := o.svc.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Order status updated", result)
}

// Cancel 取消订单
// POST /api/orders/:id/cancel
func (o *OrderController) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	result, err := o.svc.CancelOrder(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Order cancelled", result)
}

// Tracking 订单跟踪
// GET /api/orders/:id/tracking
func (o *OrderController) Tracking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	result, err := o.svc.Tracking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

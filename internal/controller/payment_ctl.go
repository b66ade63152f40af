package controller

import (
	"strconv"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/middleware"
	"github.com/AnggaPuspa/RestApiBatika/internal/service"
	"github.com/AnggaPuspa/RestApiBatika/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentController 支付控制器
type PaymentController struct {
	svc *service.PaymentService
}

// NewPaymentController 创建支付控制器
func NewPaymentController(svc *service.PaymentService) *PaymentController {
	return &PaymentController{svc: svc}
}

// Create 发起支付
// @Summary 为订单发起支付
// @Description 一个订单只允许一笔支付单，重复发起返回 409
// @Tags Payment (支付)
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentRequest true "支付参数"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "订单状态不允许支付"
// @Failure 409 {object} response.Envelope "支付单已存在"
// @Router /api/payments [post]
func (p *PaymentController) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := p.svc.CreatePayment(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Payment created", result)
}

// UpdateStatus 支付状态回写
// @Summary 更新支付状态
// @Description 支付状态变化时按推导规则联动订单状态
// @Tags Payment (支付)
// @Accept json
// @Produce json
// @Param id path int true "支付单 ID"
// @Param request body dto.UpdatePaymentStatusRequest true "状态参数"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "无效的支付状态"
// @Router /api/payments/{id}/status [patch]
func (p *PaymentController) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := p.svc.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Payment status updated", result)
}

// Refund 退款
// POST /api/payments/:id/refund
func (p *PaymentController) Refund(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}

	var req dto.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := p.svc.Refund(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Refund processed", result)
}

// List 支付列表
// GET /api/payments
func (p *PaymentController) List(c *gin.Context) {
	var req dto.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := p.svc.ListPayments(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// GetByID 支付单详情
// GET /api/payments/:id
func (p *PaymentController) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}

	result, err := p.svc.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// GetByOrder 按订单查支付单
// GET /api/payments/order/:order_id
func (p *PaymentController) GetByOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	result, err := p.svc.GetPaymentByOrder(c.Request.Context(), orderID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

// Statistics 支付统计
// GET /api/payments/statistics
func (p *PaymentController) Statistics(c *gin.Context) {
	result, err := p.svc.Statistics(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "", result)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/rental"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// RentalHandler 借书/还书/罚款
type RentalHandler struct {
	rentUseCase   *rental.RentBookUseCase
	returnUseCase *rental.ReturnBookUseCase
	payUseCase    *rental.PayFineUseCase
	listUseCase   *rental.ListBookingsUseCase
}

// NewRentalHandler 创建借阅处理器
func NewRentalHandler(
	rentUseCase *rental.RentBookUseCase,
	returnUseCase *rental.ReturnBookUseCase,
	payUseCase *rental.PayFineUseCase,
	listUseCase *rental.ListBookingsUseCase,
) *RentalHandler {
	return &RentalHandler{
		rentUseCase:   rentUseCase,
		returnUseCase: returnUseCase,
		payUseCase:    payUseCase,
		listUseCase:   listUseCase,
	}
}

// Rent 借书
// @Summary      借书
// @Description  存在逾期借阅或未缴罚款时不能借书;没有可借副本时返回409,可稍后重试
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.RentRequest true "图书ID"
// @Success      201 {object} response.Response{data=rental.BookingView}
// @Failure      404 {object} response.Response "用户或图书不存在"
// @Failure      409 {object} response.Response "无可借副本/重复借阅/逾期/未缴罚款"
// @Router       /api/v1/rentals [post]
func (h *RentalHandler) Rent(c *gin.Context) {
	var req dto.RentRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := actingUserID(c, req.UserID)
	if !ok {
		return
	}

	resp, err := h.rentUseCase.Execute(c.Request.Context(), rental.RentBookRequest{UserID: userID, BookID: req.BookID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Return 还书
// @Summary      还书
// @Description  逾期归还时按天计算罚款并记录在借阅记录上
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.RentRequest true "图书ID"
// @Success      200 {object} response.Response{data=rental.ReturnBookResponse}
// @Failure      404 {object} response.Response "用户或图书不存在"
// @Failure      409 {object} response.Response "未借阅该书"
// @Router       /api/v1/rentals/return [post]
func (h *RentalHandler) Return(c *gin.Context) {
	var req dto.RentRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := actingUserID(c, req.UserID)
	if !ok {
		return
	}

	resp, err := h.returnUseCase.Execute(c.Request.Context(), rental.ReturnBookRequest{UserID: userID, BookID: req.BookID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// PayFine 缴纳罚款
// @Summary      缴纳罚款
// @Description  重复缴纳不会报错,applied=false表示本次没有修改
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id      path int                true  "借阅记录ID"
// @Param        request body dto.PayFineRequest false "代缴用户(仅管理员)"
// @Success      200 {object} response.Response{data=rental.PayFineResponse}
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Failure      409 {object} response.Response "借阅记录不属于该用户"
// @Router       /api/v1/bookings/{id}/pay [post]
func (h *RentalHandler) PayFine(c *gin.Context) {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PayFineRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	userID, ok := actingUserID(c, req.UserID)
	if !ok {
		return
	}

	resp, err := h.payUseCase.Execute(c.Request.Context(), rental.PayFineRequest{UserID: userID, BookingID: bookingID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// MyBookings 当前用户的借阅记录
// @Summary      我的借阅
// @Description  借阅中在前;借阅中的罚款为按今天计算的预估值
// @Tags         借阅
// @Produce      json
// @Security     Bearer
// @Success      200 {object} response.Response{data=[]rental.BookingView}
// @Router       /api/v1/users/me/bookings [get]
func (h *RentalHandler) MyBookings(c *gin.Context) {
	h.listBookings(c, 0)
}

// UserBookings 指定用户的借阅记录(管理员或本人)
// @Summary      用户借阅记录
// @Tags         借阅
// @Produce      json
// @Security     Bearer
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=[]rental.BookingView}
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id}/bookings [get]
func (h *RentalHandler) UserBookings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.listBookings(c, id)
}

func (h *RentalHandler) listBookings(c *gin.Context, requested uint) {
	userID, ok := actingUserID(c, requested)
	if !ok {
		return
	}

	views, err := h.listUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, views)
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	bookapp "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/application/inventory"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书与库存
type BookHandler struct {
	createUseCase    *bookapp.CreateBookUseCase
	getUseCase       *bookapp.GetBookUseCase
	updateUseCase    *bookapp.UpdateBookUseCase
	deleteUseCase    *bookapp.DeleteBookUseCase
	replenishUseCase *inventory.ReplenishUseCase
	writeOffUseCase  *inventory.WriteOffUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createUseCase *bookapp.CreateBookUseCase,
	getUseCase *bookapp.GetBookUseCase,
	updateUseCase *bookapp.UpdateBookUseCase,
	deleteUseCase *bookapp.DeleteBookUseCase,
	replenishUseCase *inventory.ReplenishUseCase,
	writeOffUseCase *inventory.WriteOffUseCase,
) *BookHandler {
	return &BookHandler{
		createUseCase:    createUseCase,
		getUseCase:       getUseCase,
		updateUseCase:    updateUseCase,
		deleteUseCase:    deleteUseCase,
		replenishUseCase: replenishUseCase,
		writeOffUseCase:  writeOffUseCase,
	}
}

// CreateBook 新增图书
// @Summary      新增图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=bookapp.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.createUseCase.Execute(c.Request.Context(), bookapp.CreateBookRequest{
		Title:     req.Title,
		Year:      req.Year,
		AuthorID:  req.AuthorID,
		GenreIDs:  req.GenreIDs,
		Available: req.Available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  返回可借副本数与元数据版本号,修改元数据时需提交该版本号
// @Tags         图书
// @Produce      json
// @Security     Bearer
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=bookapp.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// UpdateBook 修改元数据
// @Summary      修改图书元数据
// @Description  乐观锁:expected_version与当前版本不一致时返回409,需重新读取后再提交
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id      path int                   true "图书ID"
// @Param        request body dto.UpdateBookRequest true "修改内容"
// @Success      200 {object} response.Response{data=bookapp.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "版本冲突"
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.updateUseCase.Execute(c.Request.Context(), bookapp.UpdateBookRequest{
		BookID:          id,
		ExpectedVersion: *req.ExpectedVersion,
		Title:           req.Title,
		Year:            req.Year,
		AuthorID:        req.AuthorID,
		GenreIDs:        req.GenreIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     Bearer
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "存在借阅记录"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Replenish 补货
// @Summary      补货
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id      path int                    true "图书ID"
// @Param        request body dto.AdjustStockRequest true "数量"
// @Success      200 {object} response.Response{data=inventory.AdjustStockResponse}
// @Failure      400 {object} response.Response "数量必须大于0"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/replenish [post]
func (h *BookHandler) Replenish(c *gin.Context) {
	h.adjust(c, h.replenishUseCase.Execute)
}

// WriteOff 核销
// @Summary      核销
// @Description  可借副本少于核销数量时返回409,库存不会变为负数
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id      path int                    true "图书ID"
// @Param        request body dto.AdjustStockRequest true "数量"
// @Success      200 {object} response.Response{data=inventory.AdjustStockResponse}
// @Failure      400 {object} response.Response "数量必须大于0"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "可用库存不足"
// @Router       /api/v1/books/{id}/write-off [post]
func (h *BookHandler) WriteOff(c *gin.Context) {
	h.adjust(c, h.writeOffUseCase.Execute)
}

type adjustFunc = func(ctx context.Context, req inventory.AdjustStockRequest) (*inventory.AdjustStockResponse, error)

func (h *BookHandler) adjust(c *gin.Context, execute adjustFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := execute(c.Request.Context(), inventory.AdjustStockRequest{BookID: id, Amount: req.Amount})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

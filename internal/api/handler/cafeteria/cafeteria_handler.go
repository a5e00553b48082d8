package cafeteria

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	cafeteriaService "github.com/fisker/officehub-backend/internal/service/cafeteria"
)

type CafeteriaHandler struct {
	service *cafeteriaService.CafeteriaService
	users   *repository.UserRepository
}

func NewCafeteriaHandler(service *cafeteriaService.CafeteriaService, users *repository.UserRepository) *CafeteriaHandler {
	return &CafeteriaHandler{service: service, users: users}
}

func (h *CafeteriaHandler) currentUser(c *gin.Context) (*model.User, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, model.Error(401, "未登录"))
		return nil, false
	}
	actor, err := h.users.FindByID(userID.(string))
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.Error(401, "用户不存在或已停用"))
		return nil, false
	}
	return actor, true
}

func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cafeteriaService.ErrForbidden):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "记录不存在"))
	case errors.Is(err, cafeteriaService.ErrInvalidStatusChange),
		errors.Is(err, cafeteriaService.ErrOverCapacity):
		c.JSON(http.StatusConflict, model.Error(409, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// CreateItem 新增菜品（餐厅管理功能）
func (h *CafeteriaHandler) CreateItem(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var item model.FoodItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	created, err := h.service.CreateItem(actor, &item)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(created))
}

// UpdateItem 更新菜品（餐厅管理功能）
func (h *CafeteriaHandler) UpdateItem(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var item model.FoodItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}
	item.ID = c.Param("id")

	if err := h.service.UpdateItem(actor, &item); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(item))
}

// ListMenu 查询菜单，管理员可见下架菜品
func (h *CafeteriaHandler) ListMenu(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	menu, err := h.service.ListMenu(actor, c.Query("category"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(menu))
}

// PlaceOrder 下单订餐
func (h *CafeteriaHandler) PlaceOrder(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateFoodOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	order, err := h.service.PlaceOrder(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(order))
}

// GetOrder 查询订单详情
func (h *CafeteriaHandler) GetOrder(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(order))
}

// UpdateOrderStatus 推进订单状态（餐厅管理推进制作链，本人可在送达前取消）
func (h *CafeteriaHandler) UpdateOrderStatus(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	order, err := h.service.UpdateOrderStatus(actor, c.Param("id"), req.Status)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(order))
}

// ListMyOrders 查询自己的订单
func (h *CafeteriaHandler) ListMyOrders(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.service.ListMyOrders(actor, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(orders, total, page, pageSize)))
}

// ListAllOrders 查询全部订单（餐厅管理功能）
func (h *CafeteriaHandler) ListAllOrders(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := model.FoodOrderStatus(c.Query("status"))

	orders, total, err := h.service.ListAllOrders(actor, status, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(orders, total, page, pageSize)))
}

// CreateTable 新增餐桌（餐厅管理功能）
func (h *CafeteriaHandler) CreateTable(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	table, err := h.service.CreateTable(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(table))
}

// UpdateTable 更新餐桌（餐厅管理功能）
func (h *CafeteriaHandler) UpdateTable(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var table model.CafeteriaTable
	if err := c.ShouldBindJSON(&table); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}
	table.ID = c.Param("id")

	if err := h.service.UpdateTable(actor, &table); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(table))
}

// DeleteTable 下线餐桌（餐厅管理功能）
func (h *CafeteriaHandler) DeleteTable(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTable(actor, c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessWithMessage("餐桌已下线", nil))
}

// ListTables 查询餐桌列表，可按最小容量过滤
func (h *CafeteriaHandler) ListTables(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	minCapacity, _ := strconv.Atoi(c.Query("min_capacity"))
	tables, err := h.service.ListTables(minCapacity)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(tables))
}

// BookTable 预订餐桌
func (h *CafeteriaHandler) BookTable(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateTableBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	booking, err := h.service.BookTable(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(booking))
}

// CancelTableBooking 取消餐桌预订
func (h *CafeteriaHandler) CancelTableBooking(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	booking, err := h.service.CancelTableBooking(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(booking))
}

// ListMyTableBookings 查询自己的餐桌预订
func (h *CafeteriaHandler) ListMyTableBookings(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	bookings, total, err := h.service.ListMyTableBookings(actor, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(bookings, total, page, pageSize)))
}

// ListAllTableBookings 查询全部餐桌预订（餐厅管理功能）
func (h *CafeteriaHandler) ListAllTableBookings(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	bookings, total, err := h.service.ListAllTableBookings(actor, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(bookings, total, page, pageSize)))
}

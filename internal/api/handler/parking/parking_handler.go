package parking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	parkingService "github.com/fisker/officehub-backend/internal/service/parking"
)

type ParkingHandler struct {
	service *parkingService.ParkingService
	users   *repository.UserRepository
}

func NewParkingHandler(service *parkingService.ParkingService, users *repository.UserRepository) *ParkingHandler {
	return &ParkingHandler{service: service, users: users}
}

func (h *ParkingHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
	case errors.Is(err, parkingService.ErrForbidden):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "记录不存在"))
	case errors.Is(err, parkingService.ErrNoFreeSlot),
		errors.Is(err, parkingService.ErrAlreadyParked),
		errors.Is(err, parkingService.ErrSlotOccupied):
		c.JSON(http.StatusConflict, model.Error(409, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// CreateSlot 新增车位（车管功能）
func (h *ParkingHandler) CreateSlot(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		SlotCode    string `json:"slot_code"`
		SlotLabel   string `json:"slot_label"`
		ParkingType string `json:"parking_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	slot, err := h.service.CreateSlot(actor, req.SlotCode, req.SlotLabel, model.ParkingType(req.ParkingType))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(slot))
}

// SetSlotStatus 设置车位状态（维护/恢复）
func (h *ParkingHandler) SetSlotStatus(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	slot, err := h.service.SetSlotStatus(actor, c.Param("id"), model.ParkingSlotStatus(req.Status))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(slot))
}

// DeleteSlot 下线车位（车管功能）
func (h *ParkingHandler) DeleteSlot(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSlot(actor, c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessWithMessage("车位已下线", nil))
}

// ListSlots 查询车位列表
func (h *ParkingHandler) ListSlots(c *gin.Context) {
	slots, err := h.service.ListSlots(
		model.ParkingType(c.Query("parking_type")),
		model.ParkingSlotStatus(c.Query("status")),
	)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(slots))
}

// Summary 车位占用概览
func (h *ParkingHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(model.ParkingType(c.Query("parking_type")))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(summary))
}

// RequestSlot 员工申请车位，先到先得
func (h *ParkingHandler) RequestSlot(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	allocation, err := h.service.RequestSlot(actor)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(allocation))
}

// RegisterVisitor 登记访客车辆（车管功能）
func (h *ParkingHandler) RegisterVisitor(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.VisitorParkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	allocation, err := h.service.RegisterVisitor(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(allocation))
}

// Release 释放车位（本人或车管）
func (h *ParkingHandler) Release(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	allocation, err := h.service.Release(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(allocation))
}

// MyAllocation 查询自己当前占用的车位
func (h *ParkingHandler) MyAllocation(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	allocation, err := h.service.MyAllocation(actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, model.Success(nil))
			return
		}
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(allocation))
}

// ListAllocations 查询分配记录（车管功能）
func (h *ParkingHandler) ListAllocations(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	activeOnly := c.Query("active") == "true"

	allocations, total, err := h.service.ListAllocations(actor, activeOnly, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(allocations, total, page, pageSize)))
}

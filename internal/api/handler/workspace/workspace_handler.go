package workspace

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	workspaceService "github.com/fisker/officehub-backend/internal/service/workspace"
	"github.com/fisker/officehub-backend/internal/workflow"
)

// WorkspaceHandler 工位与会议室接口
type WorkspaceHandler struct {
	service *workspaceService.WorkspaceService
	users   *repository.UserRepository
}

func NewWorkspaceHandler(service *workspaceService.WorkspaceService, users *repository.UserRepository) *WorkspaceHandler {
	return &WorkspaceHandler{service: service, users: users}
}

func (h *WorkspaceHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
	case errors.Is(err, workspaceService.ErrForbidden):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "记录不存在"))
	case errors.Is(err, workspaceService.ErrBookingConflict),
		errors.Is(err, workflow.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, model.Error(409, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// CreateDesk 新增工位（工位管理员功能）
func (h *WorkspaceHandler) CreateDesk(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var desk model.Desk
	if err := c.ShouldBindJSON(&desk); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	created, err := h.service.CreateDesk(actor, &desk)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(created))
}

// UpdateDesk 更新工位信息（工位管理员功能）
func (h *WorkspaceHandler) UpdateDesk(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var desk model.Desk
	if err := c.ShouldBindJSON(&desk); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}
	desk.ID = c.Param("id")

	if err := h.service.UpdateDesk(actor, &desk); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(desk))
}

// DeleteDesk 下线工位
func (h *WorkspaceHandler) DeleteDesk(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDesk(actor, c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessWithMessage("工位已下线", nil))
}

// GetDesk 查询工位详情
func (h *WorkspaceHandler) GetDesk(c *gin.Context) {
	desk, err := h.service.GetDesk(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(desk))
}

// ListDesks 查询工位列表，可按区域过滤
func (h *WorkspaceHandler) ListDesks(c *gin.Context) {
	desks, err := h.service.ListDesks(c.Query("zone"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(desks))
}

// BookDesk 预订工位
func (h *WorkspaceHandler) BookDesk(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	booking, err := h.service.BookDesk(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(booking))
}

// CancelDeskBooking 取消工位预订
func (h *WorkspaceHandler) CancelDeskBooking(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	booking, err := h.service.CancelDeskBooking(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(booking))
}

// ListMyDeskBookings 查询自己的工位预订
func (h *WorkspaceHandler) ListMyDeskBookings(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	bookings, total, err := h.service.ListMyDeskBookings(actor, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(bookings, total, page, pageSize)))
}

// CreateRoom 新增会议室（管理功能）
func (h *WorkspaceHandler) CreateRoom(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var room model.ConferenceRoom
	if err := c.ShouldBindJSON(&room); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	created, err := h.service.CreateRoom(actor, &room)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(created))
}

// UpdateRoom 更新会议室信息（管理功能）
func (h *WorkspaceHandler) UpdateRoom(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var room model.ConferenceRoom
	if err := c.ShouldBindJSON(&room); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}
	room.ID = c.Param("id")

	if err := h.service.UpdateRoom(actor, &room); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(room))
}

// DeleteRoom 下线会议室
func (h *WorkspaceHandler) DeleteRoom(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRoom(actor, c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessWithMessage("会议室已下线", nil))
}

// ListRooms 查询会议室列表
func (h *WorkspaceHandler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Query("zone"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(rooms))
}

// BookRoom 预订会议室，进入待审批状态
func (h *WorkspaceHandler) BookRoom(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	booking, err := h.service.BookRoom(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(booking))
}

// DecideRoomBooking 审批会议室预订（管理功能）
func (h *WorkspaceHandler) DecideRoomBooking(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	booking, err := h.service.DecideRoomBooking(actor, c.Param("id"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(booking))
}

// CancelRoomBooking 取消会议室预订
func (h *WorkspaceHandler) CancelRoomBooking(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	booking, err := h.service.CancelRoomBooking(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(booking))
}

// ListRoomBookings 查询会议室预订（管理员看全部，普通用户看自己）
func (h *WorkspaceHandler) ListRoomBookings(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := model.BookingStatus(c.Query("status"))

	bookings, total, err := h.service.ListRoomBookings(actor, status, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(bookings, total, page, pageSize)))
}

package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	attendanceService "github.com/fisker/officehub-backend/internal/service/attendance"
	"github.com/fisker/officehub-backend/internal/workflow"
)

type AttendanceHandler struct {
	service *attendanceService.AttendanceService
	users   *repository.UserRepository
}

func NewAttendanceHandler(service *attendanceService.AttendanceService, users *repository.UserRepository) *AttendanceHandler {
	return &AttendanceHandler{service: service, users: users}
}

func (h *AttendanceHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
	case errors.Is(err, attendanceService.ErrForbidden):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "考勤记录不存在"))
	case errors.Is(err, workflow.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, model.Error(409, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// CheckIn 上班打卡
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	// 请求体可为空
	_ = c.ShouldBindJSON(&req)

	record, err := h.service.CheckIn(actor, req.Notes)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(record))
}

// CheckOut 下班打卡
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	record, err := h.service.CheckOut(actor)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(record))
}

// Today 查询今日打卡状态
func (h *AttendanceHandler) Today(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	status, err := h.service.TodayStatus(actor)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(status))
}

// Submit 提交考勤记录进入审批流
func (h *AttendanceHandler) Submit(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	record, err := h.service.Submit(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(record))
}

// Decide 审批考勤记录（通过/驳回）
func (h *AttendanceHandler) Decide(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	record, err := h.service.Decide(actor, c.Param("id"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(record))
}

// ListMine 查询自己的考勤记录
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	month := c.Query("month")

	records, total, err := h.service.ListMine(actor, month, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(records, total, page, pageSize)))
}

// ListSubordinates 查询下属的考勤记录（审批视角）
func (h *AttendanceHandler) ListSubordinates(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := model.AttendanceStatus(c.Query("status"))

	records, total, err := h.service.ListSubordinates(actor, status, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(records, total, page, pageSize)))
}

// History 查询考勤记录的审批环节
func (h *AttendanceHandler) History(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	stages, err := h.service.History(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(stages))
}

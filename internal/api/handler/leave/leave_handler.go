package leave

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	leaveService "github.com/fisker/officehub-backend/internal/service/leave"
	"github.com/fisker/officehub-backend/internal/workflow"
)

type LeaveHandler struct {
	service *leaveService.LeaveService
	users   *repository.UserRepository
}

func NewLeaveHandler(service *leaveService.LeaveService, users *repository.UserRepository) *LeaveHandler {
	return &LeaveHandler{service: service, users: users}
}

func (h *LeaveHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
	case errors.Is(err, leaveService.ErrForbidden):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "请假申请不存在"))
	case errors.Is(err, leaveService.ErrOverlappingLeave),
		errors.Is(err, leaveService.ErrInsufficientBalance),
		errors.Is(err, workflow.ErrInvalidStateTransition),
		errors.Is(err, workflow.ErrDuplicateApprover):
		c.JSON(http.StatusConflict, model.Error(409, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// Apply 提交请假申请
func (h *LeaveHandler) Apply(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	request, err := h.service.Apply(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(request))
}

// Decide 审批请假申请（一级/二级通过或驳回）
func (h *LeaveHandler) Decide(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	request, err := h.service.Decide(actor, c.Param("id"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(request))
}

// Cancel 撤销自己的请假申请
func (h *LeaveHandler) Cancel(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	request, err := h.service.Cancel(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(request))
}

// Get 查询请假申请详情
func (h *LeaveHandler) Get(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	request, err := h.service.Get(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(request))
}

// History 查询请假申请的审批环节
func (h *LeaveHandler) History(c *gin.Context) {
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

// ListMine 查询自己的请假申请
func (h *LeaveHandler) ListMine(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := model.LeaveStatus(c.Query("status"))

	requests, total, err := h.service.ListMine(actor, status, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(requests, total, page, pageSize)))
}

// ListSubordinates 查询下属的请假申请（审批视角）
func (h *LeaveHandler) ListSubordinates(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := model.LeaveStatus(c.Query("status"))

	requests, total, err := h.service.ListSubordinates(actor, status, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(requests, total, page, pageSize)))
}

// Balances 查询假期余额，默认查自己、当年
func (h *LeaveHandler) Balances(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	userCode := c.DefaultQuery("user_code", actor.EmployeeCode)
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))

	balances, err := h.service.Balances(actor, userCode, year)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(balances))
}

// AdjustBalance 手工调整假期余额（管理员功能）
func (h *LeaveHandler) AdjustBalance(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		UserCode  string `json:"user_code" binding:"required"`
		LeaveType string `json:"leave_type" binding:"required"`
		Year      int    `json:"year" binding:"required"`
		Delta     int    `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	if err := h.service.AdjustBalance(actor, req.UserCode, model.LeaveType(req.LeaveType), req.Year, req.Delta); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessWithMessage("余额调整成功", nil))
}

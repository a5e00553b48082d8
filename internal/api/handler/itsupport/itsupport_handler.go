package itsupport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	itsupportService "github.com/fisker/officehub-backend/internal/service/itsupport"
	"github.com/fisker/officehub-backend/internal/workflow"
)

// ITSupportHandler IT资产与IT工单接口
type ITSupportHandler struct {
	service *itsupportService.ITSupportService
	users   *repository.UserRepository
}

func NewITSupportHandler(service *itsupportService.ITSupportService, users *repository.UserRepository) *ITSupportHandler {
	return &ITSupportHandler{service: service, users: users}
}

func (h *ITSupportHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
	case errors.Is(err, itsupportService.ErrForbidden):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "记录不存在"))
	case errors.Is(err, itsupportService.ErrAssetNotAvailable),
		errors.Is(err, itsupportService.ErrAssetNotAssigned),
		errors.Is(err, workflow.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, model.Error(409, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// CreateAsset 入库资产（IT管理功能）
func (h *ITSupportHandler) CreateAsset(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var asset model.ITAsset
	if err := c.ShouldBindJSON(&asset); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	created, err := h.service.CreateAsset(actor, &asset)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(created))
}

// UpdateAsset 更新资产信息（IT管理功能）
func (h *ITSupportHandler) UpdateAsset(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var asset model.ITAsset
	if err := c.ShouldBindJSON(&asset); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}
	asset.ID = c.Param("id")

	if err := h.service.UpdateAsset(actor, &asset); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(asset))
}

// GetAsset 查询资产详情（持有人或IT管理）
func (h *ITSupportHandler) GetAsset(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	asset, err := h.service.GetAsset(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(asset))
}

// ListAssets 查询资产列表（IT管理看全部，普通用户看自己名下）
func (h *ITSupportHandler) ListAssets(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	assetType := c.Query("asset_type")
	status := model.AssetStatus(c.Query("status"))

	assets, total, err := h.service.ListAssets(actor, assetType, status, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(assets, total, page, pageSize)))
}

// AssignAsset 分配资产给员工（IT管理功能）
func (h *ITSupportHandler) AssignAsset(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.AssignAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	asset, err := h.service.AssignAsset(actor, c.Param("id"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(asset))
}

// UnassignAsset 回收资产（IT管理功能）
func (h *ITSupportHandler) UnassignAsset(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	asset, err := h.service.UnassignAsset(actor, c.Param("id"), req.Notes)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(asset))
}

// AssetHistory 查询资产流转记录（IT管理功能）
func (h *ITSupportHandler) AssetHistory(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	history, err := h.service.AssetHistory(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(history))
}

// CreateRequest 提交IT工单
func (h *ITSupportHandler) CreateRequest(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateITRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	request, err := h.service.CreateRequest(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(request))
}

// DecideRequest 处理IT工单（通过/驳回），不走上级审批链
func (h *ITSupportHandler) DecideRequest(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	request, err := h.service.DecideRequest(actor, c.Param("id"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(request))
}

// AssignRequest 指派工单处理人（IT管理功能）
func (h *ITSupportHandler) AssignRequest(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Assignee string `json:"assignee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	request, err := h.service.AssignRequest(actor, c.Param("id"), req.Assignee)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(request))
}

// GetRequest 查询工单详情
func (h *ITSupportHandler) GetRequest(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	request, err := h.service.GetRequest(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(request))
}

// RequestHistory 查询工单的处理环节
func (h *ITSupportHandler) RequestHistory(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	stages, err := h.service.RequestHistory(actor, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(stages))
}

// ListRequests 查询工单列表（IT管理看全部，普通用户看自己）
func (h *ITSupportHandler) ListRequests(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := model.ITRequestStatus(c.Query("status"))

	requests, total, err := h.service.ListRequests(actor, status, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(model.NewPaginatedResponse(requests, total, page, pageSize)))
}

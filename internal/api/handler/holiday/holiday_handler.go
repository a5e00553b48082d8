package holiday

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	holidayService "github.com/fisker/officehub-backend/internal/service/holiday"
)

type HolidayHandler struct {
	service *holidayService.HolidayService
	users   *repository.UserRepository
}

func NewHolidayHandler(service *holidayService.HolidayService, users *repository.UserRepository) *HolidayHandler {
	return &HolidayHandler{service: service, users: users}
}

func (h *HolidayHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
	case errors.Is(err, holidayService.ErrForbidden):
		c.JSON(http.StatusForbidden, model.Error(403, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "节假日不存在"))
	default:
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	}
}

// Create 创建节假日（管理员功能）
func (h *HolidayHandler) Create(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	holiday, err := h.service.Create(actor, &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(holiday))
}

// Update 更新节假日（管理员功能）
func (h *HolidayHandler) Update(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req model.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
		return
	}

	holiday, err := h.service.Update(actor, c.Param("id"), &req)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(holiday))
}

// Delete 删除节假日（管理员功能）
func (h *HolidayHandler) Delete(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Delete(actor, c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessWithMessage("删除成功", nil))
}

// List 按年份查询节假日
func (h *HolidayHandler) List(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	holidays, err := h.service.ListByYear(year)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(holidays))
}

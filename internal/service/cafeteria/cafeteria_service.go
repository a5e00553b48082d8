package cafeteria

import (
	"errors"
	"fmt"
	"time"

	"github.com/fisker/officehub-backend/internal/authz"
	"github.com/fisker/officehub-backend/internal/hierarchy"
	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	"github.com/fisker/officehub-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrForbidden 权限不足
	ErrForbidden = errors.New("permission denied")
	// ErrItemUnavailable 菜品不存在或已下架
	ErrItemUnavailable = errors.New("food item unavailable")
	// ErrInvalidStatusChange 订单状态不允许该变更
	ErrInvalidStatusChange = errors.New("invalid order status change")
	// ErrOverCapacity 就餐人数超过餐桌容量
	ErrOverCapacity = errors.New("guest count exceeds table capacity")
	// ErrInvalidTimeSlot 预订时段不合法
	ErrInvalidTimeSlot = errors.New("invalid booking time slot")
)

// 餐桌容量上限
const maxTableCapacity = 20

// orderTransitions 订单状态机：pending -> preparing -> ready -> delivered，
// 送达前可取消。
var orderTransitions = map[model.FoodOrderStatus][]model.FoodOrderStatus{
	model.FoodOrderPending:   {model.FoodOrderPreparing, model.FoodOrderCancelled},
	model.FoodOrderPreparing: {model.FoodOrderReady, model.FoodOrderCancelled},
	model.FoodOrderReady:     {model.FoodOrderDelivered, model.FoodOrderCancelled},
}

// CanChangeOrderStatus 校验订单状态变更是否合法
func CanChangeOrderStatus(from, to model.FoodOrderStatus) error {
	for _, allowed := range orderTransitions[from] {
		if to == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, from, to)
}

// BuildOrderLines 根据菜单快照生成订单明细并汇总金额。
// 单价在此固化进明细行，之后菜单调价不影响已生成的订单。
func BuildOrderLines(req *model.CreateFoodOrderRequest, menu []model.FoodItem) ([]model.FoodOrderItem, decimal.Decimal, error) {
	byID := make(map[string]*model.FoodItem, len(menu))
	for i := range menu {
		byID[menu[i].ID] = &menu[i]
	}

	lines := make([]model.FoodOrderItem, 0, len(req.OrderItems))
	total := decimal.Zero
	for _, oi := range req.OrderItems {
		item, ok := byID[oi.ItemID]
		if !ok || !item.IsAvailable {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrItemUnavailable, oi.ItemID)
		}
		if oi.Quantity < 1 {
			return nil, decimal.Zero, fmt.Errorf("数量必须大于0: %s", item.Name)
		}

		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
		lines = append(lines, model.FoodOrderItem{
			ItemID:              item.ID,
			ItemName:            item.Name,
			Quantity:            oi.Quantity,
			UnitPrice:           item.Price,
			LineTotal:           lineTotal,
			SpecialInstructions: oi.SpecialInstructions,
		})
		total = total.Add(lineTotal)
	}
	return lines, total, nil
}

// ValidateTableBooking 校验餐桌预订：时段格式与先后、人数不超容量。
func ValidateTableBooking(req *model.CreateTableBookingRequest, table *model.CafeteriaTable) error {
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start_time %q", ErrInvalidTimeSlot, req.StartTime)
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end_time %q", ErrInvalidTimeSlot, req.EndTime)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeSlot, req.StartTime, req.EndTime)
	}
	if req.GuestCount > table.Capacity {
		return fmt.Errorf("%w: %d > %d", ErrOverCapacity, req.GuestCount, table.Capacity)
	}
	return nil
}

// CafeteriaService 餐厅菜单与订单
type CafeteriaService struct {
	repo *repository.CafeteriaRepository
	dir  hierarchy.Directory
}

func NewCafeteriaService(repo *repository.CafeteriaRepository, dir hierarchy.Directory) *CafeteriaService {
	return &CafeteriaService{repo: repo, dir: dir}
}

// canManage 餐厅领域管理权（admin 或 cafeteria 经理）
func (s *CafeteriaService) canManage(actor *model.User) bool {
	decision, _ := authz.CanAct(s.dir, actor,
		authz.Action{Kind: authz.ActionManage},
		authz.ResourceRef{Domain: model.DomainCafeteria})
	return decision.Allowed
}

// ===== Menu =====

// CreateItem 新增菜品（admin 或餐厅经理）
func (s *CafeteriaService) CreateItem(actor *model.User, item *model.FoodItem) (*model.FoodItem, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}
	if item.Price.IsNegative() {
		return nil, errors.New("价格不能为负")
	}

	item.ID = uuid.New().String()
	if err := s.repo.CreateItem(item); err != nil {
		return nil, fmt.Errorf("创建菜品失败: %w", err)
	}
	return item, nil
}

// UpdateItem 更新菜品（调价、上下架）
func (s *CafeteriaService) UpdateItem(actor *model.User, item *model.FoodItem) error {
	if !s.canManage(actor) {
		return ErrForbidden
	}
	if item.Price.IsNegative() {
		return errors.New("价格不能为负")
	}
	return s.repo.UpdateItem(item)
}

// GetItem 查菜品
func (s *CafeteriaService) GetItem(id string) (*model.FoodItem, error) {
	return s.repo.FindItemByID(id)
}

// ListMenu 查菜单。管理人员可以看到已下架的菜品。
func (s *CafeteriaService) ListMenu(actor *model.User, category string) ([]model.FoodItem, error) {
	return s.repo.ListItems(category, s.canManage(actor))
}

// ===== Orders =====

// PlaceOrder 下单。明细行固化菜单快照的单价，订单与明细同事务写入。
func (s *CafeteriaService) PlaceOrder(actor *model.User, req *model.CreateFoodOrderRequest) (*model.FoodOrder, error) {
	ids := make([]string, 0, len(req.OrderItems))
	for _, oi := range req.OrderItems {
		ids = append(ids, oi.ItemID)
	}
	menu, err := s.repo.FindItemsByIDs(ids)
	if err != nil {
		return nil, err
	}

	lines, total, err := BuildOrderLines(req, menu)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountOrders()
	if err != nil {
		return nil, err
	}

	order := &model.FoodOrder{
		ID:           uuid.New().String(),
		OrderNumber:  fmt.Sprintf("ORD-%04d", count+1),
		UserCode:     actor.EmployeeCode,
		TotalAmount:  total,
		Status:       model.FoodOrderPending,
		DeliveryTime: req.DeliveryTime,
		Notes:        req.Notes,
	}

	err = s.repo.DB().Transaction(func(tx *gorm.DB) error {
		return s.repo.CreateOrder(tx, order, lines)
	})
	if err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}

	order.Items = lines
	metrics.FoodOrdersTotal.WithLabelValues(string(model.FoodOrderPending)).Inc()
	return order, nil
}

// GetOrder 查订单（本人或餐厅管理）
func (s *CafeteriaService) GetOrder(actor *model.User, orderID string) (*model.FoodOrder, error) {
	order, err := s.repo.FindOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserCode != actor.EmployeeCode && !s.canManage(actor) {
		return nil, ErrForbidden
	}
	return order, nil
}

// UpdateOrderStatus 推进订单状态。
// 取消：送达前本人可取消；其余状态推进仅限餐厅管理。
func (s *CafeteriaService) UpdateOrderStatus(actor *model.User, orderID string, status model.FoodOrderStatus) (*model.FoodOrder, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("无效的订单状态: %s", status)
	}

	order, err := s.repo.FindOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	isOwnerCancel := status == model.FoodOrderCancelled && order.UserCode == actor.EmployeeCode
	if !isOwnerCancel && !s.canManage(actor) {
		return nil, ErrForbidden
	}

	if err := CanChangeOrderStatus(order.Status, status); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateOrderStatus(orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	metrics.FoodOrdersTotal.WithLabelValues(string(status)).Inc()
	return order, nil
}

// ListMyOrders 查自己的订单
func (s *CafeteriaService) ListMyOrders(actor *model.User, page, pageSize int) ([]model.FoodOrder, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListOrdersByUser(actor.EmployeeCode, page, pageSize)
}

// ListAllOrders 全部订单（餐厅管理视图）
func (s *CafeteriaService) ListAllOrders(actor *model.User, status model.FoodOrderStatus, page, pageSize int) ([]model.FoodOrder, int64, error) {
	if !s.canManage(actor) {
		return nil, 0, ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListAllOrders(status, page, pageSize)
}

// ===== Tables =====

// CreateTable 新增餐桌（admin 或餐厅经理），桌号缺省时自动分配 TBL-XXXX
func (s *CafeteriaService) CreateTable(actor *model.User, req *model.CreateTableRequest) (*model.CafeteriaTable, error) {
	if !s.canManage(actor) {
		return nil, ErrForbidden
	}
	if req.Capacity < 1 || req.Capacity > maxTableCapacity {
		return nil, fmt.Errorf("容量必须在 1-%d 之间: %d", maxTableCapacity, req.Capacity)
	}
	tableType := req.TableType
	if tableType == "" {
		tableType = model.TableTypeRegular
	}
	if tableType != model.TableTypeRegular && tableType != model.TableTypeBooth {
		return nil, fmt.Errorf("无效的餐桌类型: %s", tableType)
	}

	code := req.TableCode
	if code == "" {
		count, err := s.repo.CountTables()
		if err != nil {
			return nil, err
		}
		code = fmt.Sprintf("TBL-%04d", count+1)
	}

	table := &model.CafeteriaTable{
		ID:         uuid.New().String(),
		TableCode:  code,
		TableLabel: req.TableLabel,
		Capacity:   req.Capacity,
		TableType:  tableType,
		Notes:      req.Notes,
		IsActive:   true,
	}
	if err := s.repo.CreateTable(table); err != nil {
		return nil, fmt.Errorf("创建餐桌失败: %w", err)
	}
	return table, nil
}

// UpdateTable 更新餐桌（容量调整等）
func (s *CafeteriaService) UpdateTable(actor *model.User, table *model.CafeteriaTable) error {
	if !s.canManage(actor) {
		return ErrForbidden
	}
	if table.Capacity < 1 || table.Capacity > maxTableCapacity {
		return fmt.Errorf("容量必须在 1-%d 之间: %d", maxTableCapacity, table.Capacity)
	}
	return s.repo.UpdateTable(table)
}

// DeleteTable 下线餐桌（软删除）
func (s *CafeteriaService) DeleteTable(actor *model.User, id string) error {
	if !s.canManage(actor) {
		return ErrForbidden
	}
	table, err := s.repo.FindTableByID(id)
	if err != nil {
		return err
	}
	table.IsActive = false
	return s.repo.UpdateTable(table)
}

// ListTables 餐桌列表（登录用户均可查看）
func (s *CafeteriaService) ListTables(minCapacity int) ([]model.CafeteriaTable, error) {
	return s.repo.ListTables(minCapacity)
}

// ===== Table Bookings =====

// BookTable 预订餐桌。人数不得超过桌位容量，预订即确认。
func (s *CafeteriaService) BookTable(actor *model.User, req *model.CreateTableBookingRequest) (*model.TableBooking, error) {
	table, err := s.repo.FindTableByID(req.TableID)
	if err != nil {
		return nil, err
	}
	if !table.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	if err := ValidateTableBooking(req, table); err != nil {
		return nil, err
	}
	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("无效的预订日期: %q", req.BookingDate)
	}

	booking := &model.TableBooking{
		ID:          uuid.New().String(),
		TableID:     table.ID,
		UserCode:    actor.EmployeeCode,
		BookingDate: bookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		GuestCount:  req.GuestCount,
		Notes:       req.Notes,
		Status:      model.BookingStatusConfirmed,
	}
	if err := s.repo.CreateTableBooking(booking); err != nil {
		return nil, fmt.Errorf("创建餐桌预订失败: %w", err)
	}
	booking.Table = table
	return booking, nil
}

// CancelTableBooking 取消餐桌预订（本人或餐厅管理）
func (s *CafeteriaService) CancelTableBooking(actor *model.User, bookingID string) (*model.TableBooking, error) {
	booking, err := s.repo.FindTableBookingByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserCode != actor.EmployeeCode && !s.canManage(actor) {
		return nil, ErrForbidden
	}
	if booking.Status != model.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatusChange, booking.Status)
	}
	if err := s.repo.UpdateTableBookingStatus(bookingID, model.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = model.BookingStatusCancelled
	return booking, nil
}

// ListMyTableBookings 查自己的餐桌预订
func (s *CafeteriaService) ListMyTableBookings(actor *model.User, page, pageSize int) ([]model.TableBooking, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListTableBookings(actor.EmployeeCode, page, pageSize)
}

// ListAllTableBookings 全部餐桌预订（餐厅管理视图）
func (s *CafeteriaService) ListAllTableBookings(actor *model.User, page, pageSize int) ([]model.TableBooking, int64, error) {
	if !s.canManage(actor) {
		return nil, 0, ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListTableBookings("", page, pageSize)
}

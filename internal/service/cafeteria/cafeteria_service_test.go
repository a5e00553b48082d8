package cafeteria

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fisker/officehub-backend/internal/model"
)

func TestCanChangeOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    model.FoodOrderStatus
		to      model.FoodOrderStatus
		allowed bool
	}{
		{"待处理到制作中", model.FoodOrderPending, model.FoodOrderPreparing, true},
		{"待处理可取消", model.FoodOrderPending, model.FoodOrderCancelled, true},
		{"制作中到待取餐", model.FoodOrderPreparing, model.FoodOrderReady, true},
		{"待取餐到已送达", model.FoodOrderReady, model.FoodOrderDelivered, true},
		{"待取餐可取消", model.FoodOrderReady, model.FoodOrderCancelled, true},
		{"不能跳过制作环节", model.FoodOrderPending, model.FoodOrderReady, false},
		{"不能回退", model.FoodOrderReady, model.FoodOrderPreparing, false},
		{"送达后不能取消", model.FoodOrderDelivered, model.FoodOrderCancelled, false},
		{"取消是终态", model.FoodOrderCancelled, model.FoodOrderPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanChangeOrderStatus(tt.from, tt.to)
			if tt.allowed && err != nil {
				t.Errorf("expected %s -> %s to be allowed, got %v", tt.from, tt.to, err)
			}
			if !tt.allowed && !errors.Is(err, ErrInvalidStatusChange) {
				t.Errorf("expected ErrInvalidStatusChange for %s -> %s, got %v", tt.from, tt.to, err)
			}
		})
	}
}

func menuFixture() []model.FoodItem {
	return []model.FoodItem{
		{ID: "item-1", Name: "番茄炒蛋", Price: decimal.NewFromFloat(12.50), IsAvailable: true},
		{ID: "item-2", Name: "红烧牛肉面", Price: decimal.NewFromFloat(22.00), IsAvailable: true},
		{ID: "item-3", Name: "已下架套餐", Price: decimal.NewFromFloat(30.00), IsAvailable: false},
	}
}

func TestBuildOrderLines(t *testing.T) {
	req := &model.CreateFoodOrderRequest{
		OrderItems: []model.OrderItemInput{
			{ItemID: "item-1", Quantity: 2, SpecialInstructions: "少油"},
			{ItemID: "item-2", Quantity: 1},
		},
	}

	lines, total, err := BuildOrderLines(req, menuFixture())
	if err != nil {
		t.Fatalf("BuildOrderLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	if !lines[0].UnitPrice.Equal(decimal.NewFromFloat(12.50)) {
		t.Errorf("unexpected unit price: %s", lines[0].UnitPrice)
	}
	if !lines[0].LineTotal.Equal(decimal.NewFromFloat(25.00)) {
		t.Errorf("unexpected line total: %s", lines[0].LineTotal)
	}
	if lines[0].SpecialInstructions != "少油" {
		t.Errorf("special instructions lost: %q", lines[0].SpecialInstructions)
	}
	if want := decimal.NewFromFloat(47.00); !total.Equal(want) {
		t.Errorf("total = %s, want %s", total, want)
	}
}

func TestBuildOrderLinesUnavailableItem(t *testing.T) {
	req := &model.CreateFoodOrderRequest{
		OrderItems: []model.OrderItemInput{{ItemID: "item-3", Quantity: 1}},
	}
	if _, _, err := BuildOrderLines(req, menuFixture()); !errors.Is(err, ErrItemUnavailable) {
		t.Errorf("expected ErrItemUnavailable, got %v", err)
	}
}

func TestBuildOrderLinesUnknownItem(t *testing.T) {
	req := &model.CreateFoodOrderRequest{
		OrderItems: []model.OrderItemInput{{ItemID: "no-such-item", Quantity: 1}},
	}
	if _, _, err := BuildOrderLines(req, menuFixture()); !errors.Is(err, ErrItemUnavailable) {
		t.Errorf("expected ErrItemUnavailable, got %v", err)
	}
}

func TestBuildOrderLinesZeroQuantity(t *testing.T) {
	req := &model.CreateFoodOrderRequest{
		OrderItems: []model.OrderItemInput{{ItemID: "item-1", Quantity: 0}},
	}
	if _, _, err := BuildOrderLines(req, menuFixture()); err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestValidateTableBooking(t *testing.T) {
	table := &model.CafeteriaTable{
		ID:        "tbl-1",
		TableCode: "TBL-0001",
		Capacity:  6,
		TableType: model.TableTypeRegular,
	}

	tests := []struct {
		name    string
		req     model.CreateTableBookingRequest
		wantErr error
	}{
		{
			"容量内正常预订",
			model.CreateTableBookingRequest{TableID: "tbl-1", StartTime: "12:00", EndTime: "13:00", GuestCount: 4},
			nil,
		},
		{
			"人数等于容量",
			model.CreateTableBookingRequest{TableID: "tbl-1", StartTime: "12:00", EndTime: "13:00", GuestCount: 6},
			nil,
		},
		{
			"人数超容量",
			model.CreateTableBookingRequest{TableID: "tbl-1", StartTime: "12:00", EndTime: "13:00", GuestCount: 50},
			ErrOverCapacity,
		},
		{
			"结束不晚于开始",
			model.CreateTableBookingRequest{TableID: "tbl-1", StartTime: "13:00", EndTime: "12:00", GuestCount: 2},
			ErrInvalidTimeSlot,
		},
		{
			"时间格式非法",
			model.CreateTableBookingRequest{TableID: "tbl-1", StartTime: "noon", EndTime: "13:00", GuestCount: 2},
			ErrInvalidTimeSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTableBooking(&tt.req, table)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("error = %v, 期望通过", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, 期望 %v", err, tt.wantErr)
			}
		})
	}
}

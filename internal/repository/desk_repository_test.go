package repository

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.DeskBooking{}, &model.RoomBooking{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func d(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func TestCountOverlappingRoomBookings(t *testing.T) {
	db := openTestDB(t)
	repo := NewDeskRepository(db)

	// 基准预订：3月10日至3月12日，已确认
	confirmed := &model.RoomBooking{
		ID:        "bk-confirmed",
		RoomID:    "room-1",
		UserCode:  "EMP-1001",
		StartDate: d(10),
		EndDate:   d(12),
		Status:    model.BookingStatusConfirmed,
	}
	// 同一会议室的待审批预订不参与冲突统计
	pending := &model.RoomBooking{
		ID:        "bk-pending",
		RoomID:    "room-1",
		UserCode:  "EMP-1002",
		StartDate: d(10),
		EndDate:   d(12),
		Status:    model.BookingStatusPending,
	}
	if err := db.Create(confirmed).Error; err != nil {
		t.Fatalf("插入失败: %v", err)
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("插入失败: %v", err)
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		room  string
		want  int64
	}{
		{"完全包含", d(9), d(13), "room-1", 1},
		{"被包含", d(11), d(11), "room-1", 1},
		{"左边界相接", d(8), d(10), "room-1", 1},
		{"右边界相接", d(12), d(14), "room-1", 1},
		{"完全在前", d(5), d(9), "room-1", 0},
		{"完全在后", d(13), d(15), "room-1", 0},
		{"不同会议室", d(10), d(12), "room-2", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.CountOverlappingRoomBookings(db, tt.room, tt.start, tt.end, "")
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("count = %d, 期望 %d", got, tt.want)
			}
		})
	}

	t.Run("排除自身", func(t *testing.T) {
		got, err := repo.CountOverlappingRoomBookings(db, "room-1", d(10), d(12), "bk-confirmed")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got != 0 {
			t.Errorf("count = %d, 期望 0", got)
		}
	})
}

// 随机区间对照纯谓词验证闭区间重叠语义：
// [s1,e1] 与 [s2,e2] 重叠当且仅当 s1 <= e2 且 s2 <= e1。
func TestOverlapPredicateRandomized(t *testing.T) {
	db := openTestDB(t)
	repo := NewDeskRepository(db)
	rng := rand.New(rand.NewSource(20260830))

	for i := 0; i < 50; i++ {
		s1, e1 := randRange(rng)
		s2, e2 := randRange(rng)

		booking := &model.RoomBooking{
			ID:        fmt.Sprintf("bk-%d", i),
			RoomID:    fmt.Sprintf("room-%d", i),
			UserCode:  "EMP-1001",
			StartDate: s1,
			EndDate:   e1,
			Status:    model.BookingStatusConfirmed,
		}
		if err := db.Create(booking).Error; err != nil {
			t.Fatalf("插入失败: %v", err)
		}

		want := int64(0)
		if !s1.After(e2) && !s2.After(e1) {
			want = 1
		}
		got, err := repo.CountOverlappingRoomBookings(db, booking.RoomID, s2, e2, "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got != want {
			t.Errorf("[%s,%s] vs [%s,%s]: count = %d, 期望 %d",
				s1.Format("01-02"), e1.Format("01-02"),
				s2.Format("01-02"), e2.Format("01-02"), got, want)
		}
	}
}

func randRange(rng *rand.Rand) (time.Time, time.Time) {
	start := rng.Intn(25) + 1
	length := rng.Intn(5)
	return d(start), d(start + length)
}

func TestCountOverlappingDeskBookings(t *testing.T) {
	db := openTestDB(t)
	repo := NewDeskRepository(db)

	booking := &model.DeskBooking{
		ID:        "db-1",
		DeskID:    "desk-1",
		UserCode:  "EMP-1001",
		StartDate: d(20),
		EndDate:   d(21),
		Status:    model.BookingStatusConfirmed,
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("插入失败: %v", err)
	}

	t.Run("单日边界重叠", func(t *testing.T) {
		got, err := repo.CountOverlappingDeskBookings(db, "desk-1", d(21), d(21), "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got != 1 {
			t.Errorf("count = %d, 期望 1", got)
		}
	})

	t.Run("已取消不计入", func(t *testing.T) {
		cancelled := &model.DeskBooking{
			ID:        "db-2",
			DeskID:    "desk-2",
			UserCode:  "EMP-1001",
			StartDate: d(20),
			EndDate:   d(21),
			Status:    model.BookingStatusCancelled,
		}
		if err := db.Create(cancelled).Error; err != nil {
			t.Fatalf("插入失败: %v", err)
		}
		got, err := repo.CountOverlappingDeskBookings(db, "desk-2", d(20), d(21), "")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got != 0 {
			t.Errorf("count = %d, 期望 0", got)
		}
	})
}

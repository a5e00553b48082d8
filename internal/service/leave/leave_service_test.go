package leave

import (
	"testing"
	"time"

	"github.com/fisker/officehub-backend/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCountWorkingDays(t *testing.T) {
	holidays := []model.Holiday{
		{HolidayName: "元旦", HolidayDate: day("2026-01-01")},
		{HolidayName: "周六节日", HolidayDate: day("2026-01-03")}, // 落在周六，不应重复扣减
	}

	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"单个工作日", "2026-01-05", "2026-01-05", 1},
		{"整周一到周五", "2026-01-05", "2026-01-09", 5},
		{"跨周末", "2026-01-09", "2026-01-12", 2},
		{"纯周末为零", "2026-01-10", "2026-01-11", 0},
		{"扣除节假日", "2025-12-31", "2026-01-02", 2},
		{"节假日落在周末不影响计数", "2026-01-02", "2026-01-05", 2},
		{"结束早于开始为零", "2026-01-09", "2026-01-05", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWorkingDays(day(tt.start), day(tt.end), holidays); got != tt.want {
				t.Errorf("CountWorkingDays(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestCountWorkingDaysNoHolidays(t *testing.T) {
	// 2026-01-05 是周一
	if got := CountWorkingDays(day("2026-01-05"), day("2026-01-16"), nil); got != 10 {
		t.Errorf("两个整周应为10个工作日, got %d", got)
	}
}

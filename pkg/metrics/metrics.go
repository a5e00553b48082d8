package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Server Metrics

	// APIRequestsTotal API请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration API请求处理时长
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Authorization Metrics

	// PermissionDenials 权限拒绝计数（按领域和理由码）
	PermissionDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_denials_total",
			Help: "Total number of permission denials by domain and reason",
		},
		[]string{"domain", "reason"},
	)

	// HierarchyIntegrityErrors 审批链数据完整性错误计数
	HierarchyIntegrityErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hierarchy_integrity_errors_total",
			Help: "Total number of hierarchy integrity errors detected during chain resolution",
		},
	)

	// Workflow Metrics

	// ApprovalStagesTotal 审批环节推进计数（按领域和动作）
	ApprovalStagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_stages_total",
			Help: "Total number of approval stage transitions by domain and action",
		},
		[]string{"domain", "action"},
	)

	// InvalidTransitions 非法状态转移尝试计数
	InvalidTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalid_state_transitions_total",
			Help: "Total number of rejected state transition attempts by domain",
		},
		[]string{"domain"},
	)

	// Resource Metrics

	// ParkingSlotsOccupied 当前占用的停车位数（按类型）
	ParkingSlotsOccupied = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parking_slots_occupied",
			Help: "Number of currently occupied parking slots by type",
		},
		[]string{"type"},
	)

	// ParkingAllocationConflicts 停车位分配冲突计数（并发抢占失败）
	ParkingAllocationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_allocation_conflicts_total",
			Help: "Total number of parking allocation attempts that lost a slot race",
		},
	)

	// BookingConflicts 工位/会议室预订时间冲突计数
	BookingConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Total number of booking attempts rejected due to overlap",
		},
		[]string{"resource"}, // desk, room
	)

	// FoodOrdersTotal 餐厅订单计数（按状态）
	FoodOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "food_orders_total",
			Help: "Total number of food orders by status",
		},
		[]string{"status"},
	)

	// LeaveBalanceDeductions 假期扣减次数（按假种）
	LeaveBalanceDeductions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leave_balance_deductions_total",
			Help: "Total number of leave balance deductions by leave type",
		},
		[]string{"leave_type"},
	)
)

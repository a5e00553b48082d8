package casbin

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v3"
	casbinmodel "github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	rediswatcher "github.com/casbin/redis-watcher/v2"
	"github.com/fisker/officehub-backend/pkg/database"
	"github.com/fisker/officehub-backend/pkg/logger"
	pkgredis "github.com/fisker/officehub-backend/pkg/redis"
)

var (
	enforcer     *casbin.SyncedCachedEnforcer
	enforcerOnce sync.Once
	enforcerMu   sync.RWMutex
)

// rbacModel 路径级RBAC模型。
// sub 是用户角色，obj 是API路径，act 是HTTP方法。
// casbin 只做粗粒度的路由门禁，资源归属和审批链资格
// 由 internal/authz 在服务层判定。
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// Init 初始化Casbin权限管理器
func Init() error {
	var initErr error
	enforcerOnce.Do(func() {
		initErr = initEnforcer()
	})
	return initErr
}

func initEnforcer() error {
	// 使用GORM适配器，将策略存储到数据库
	adapter, err := gormadapter.NewAdapterByDB(database.DB)
	if err != nil {
		logger.Errorf("初始化Casbin适配器失败: %v", err)
		return err
	}

	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		logger.Errorf("解析Casbin模型失败: %v", err)
		return err
	}

	// SyncedCachedEnforcer 中的 "Synced" 指线程同步（thread-safe），不是多机器同步。
	// 多机器同步通过下方的 Watcher 机制实现。
	enforcer, err = casbin.NewSyncedCachedEnforcer(m, adapter)
	if err != nil {
		logger.Errorf("创建Casbin执行器失败: %v", err)
		return err
	}

	// 缓存过期时间1小时
	enforcer.SetExpireTime(60 * 60)

	// 配置Watcher实现多机器同步：
	// 机器A更新权限 -> Watcher发布消息到Redis -> 其他机器收到通知自动重新加载
	// Redis未启用时降级为单机模式，权限变更后需手动调用 ReloadPolicy
	if pkgredis.IsEnabled() {
		redisClient := pkgredis.GetClient()
		if redisClient != nil {
			redisAddr := redisClient.Options().Addr
			if redisAddr == "" {
				redisAddr = "localhost:6379"
			}

			watcher, err := rediswatcher.NewWatcher(redisAddr, rediswatcher.WatcherOptions{})
			if err != nil {
				logger.Warnf("创建Redis Watcher失败: %v，将使用数据库同步模式（降级）", err)
			} else if err := enforcer.SetWatcher(watcher); err != nil {
				logger.Warnf("设置Watcher失败: %v，将使用数据库同步模式（降级）", err)
			} else {
				watcher.SetUpdateCallback(func(msg string) {
					logger.Infof("收到策略更新通知: %s，重新加载策略", msg)
					if err := enforcer.LoadPolicy(); err != nil {
						logger.Errorf("重新加载策略失败: %v", err)
					} else {
						enforcer.InvalidateCache()
					}
				})
				logger.Infof("Redis Watcher已配置（地址: %s），支持多机器权限同步", redisAddr)
			}
		}
	} else {
		logger.Info("Redis未启用，使用数据库同步模式（单机部署或权限变更后需要手动调用ReloadPolicy）")
	}

	if err := enforcer.LoadPolicy(); err != nil {
		logger.Errorf("加载Casbin策略失败: %v", err)
		return err
	}

	if err := seedDefaultPolicies(); err != nil {
		logger.Warnf("写入默认策略失败: %v", err)
	}

	logger.Info("Casbin权限管理器初始化成功")
	return nil
}

// seedDefaultPolicies 写入默认的角色路由策略（仅当策略表为空时）。
// 细粒度的归属与审批链判定在服务层，这里只挡住明显越权的路由访问。
func seedDefaultPolicies() error {
	policies, err := enforcer.GetPolicy()
	if err != nil {
		return err
	}
	if len(policies) > 0 {
		return nil
	}

	defaults := [][]string{
		// 超管和管理员全路由放行
		{"super_admin", "/api/v1/*", ".*"},
		{"admin", "/api/v1/*", ".*"},
		// 经理：业务域全方法（专管域由服务层按 manager_type 判定），用户管理只读
		{"manager", "/api/v1/auth/*", ".*"},
		{"manager", "/api/v1/users", "GET"},
		{"manager", "/api/v1/users/*", "GET"},
		{"manager", "/api/v1/attendance/*", ".*"},
		{"manager", "/api/v1/leave/*", ".*"},
		{"manager", "/api/v1/parking/*", ".*"},
		{"manager", "/api/v1/workspace/*", ".*"},
		{"manager", "/api/v1/cafeteria/*", ".*"},
		{"manager", "/api/v1/it/*", ".*"},
		{"manager", "/api/v1/projects", "GET|POST"},
		{"manager", "/api/v1/projects/*", ".*"},
		{"manager", "/api/v1/holidays", "GET"},
		// 组长：自助路由 + 审批动作
		{"team_lead", "/api/v1/auth/*", ".*"},
		{"team_lead", "/api/v1/users/*", "GET"},
		{"team_lead", "/api/v1/attendance/*", "GET|POST"},
		{"team_lead", "/api/v1/leave/*", "GET|POST"},
		{"team_lead", "/api/v1/parking/*", "GET|POST"},
		{"team_lead", "/api/v1/workspace/*", "GET|POST"},
		{"team_lead", "/api/v1/cafeteria/*", "GET|POST|PUT"},
		{"team_lead", "/api/v1/it/*", "GET|POST"},
		{"team_lead", "/api/v1/projects", "GET|POST"},
		{"team_lead", "/api/v1/projects/*", "GET|POST|PUT"},
		{"team_lead", "/api/v1/holidays", "GET"},
		// 员工：自助路由
		{"employee", "/api/v1/auth/*", ".*"},
		{"employee", "/api/v1/users/*", "GET"},
		{"employee", "/api/v1/attendance/*", "GET|POST"},
		{"employee", "/api/v1/leave/*", "GET|POST"},
		{"employee", "/api/v1/parking/*", "GET|POST"},
		{"employee", "/api/v1/workspace/*", "GET|POST"},
		{"employee", "/api/v1/cafeteria/*", "GET|POST|PUT"},
		{"employee", "/api/v1/it/*", "GET|POST"},
		{"employee", "/api/v1/projects", "GET|POST"},
		{"employee", "/api/v1/projects/*", "GET|POST|PUT"},
		{"employee", "/api/v1/holidays", "GET"},
	}

	if _, err := enforcer.AddPolicies(defaults); err != nil {
		return err
	}
	logger.Infof("已写入 %d 条默认路由策略", len(defaults))
	return nil
}

// GetEnforcer 获取Casbin执行器（线程安全）
func GetEnforcer() *casbin.SyncedCachedEnforcer {
	enforcerMu.RLock()
	if enforcer != nil {
		defer enforcerMu.RUnlock()
		return enforcer
	}
	enforcerMu.RUnlock()

	enforcerMu.Lock()
	defer enforcerMu.Unlock()

	// 双重检查
	if enforcer == nil {
		logger.Warn("Casbin执行器未初始化，尝试初始化...")
		if err := Init(); err != nil {
			logger.Errorf("Casbin执行器初始化失败: %v", err)
			return nil
		}
	}
	return enforcer
}

// ReloadPolicy 重新加载策略（权限更新后调用）
// 如果配置了Watcher，会自动通知其他机器；否则需要手动调用
func ReloadPolicy() error {
	e := GetEnforcer()
	if e == nil {
		return nil
	}

	if err := e.LoadPolicy(); err != nil {
		return err
	}
	e.InvalidateCache()
	return nil
}

// Enforce 检查路由权限
// sub: 用户角色, obj: API路径, act: HTTP方法
func Enforce(sub string, obj string, act string) (bool, error) {
	e := GetEnforcer()
	if e == nil {
		return false, fmt.Errorf("casbin enforcer not initialized")
	}
	return e.Enforce(sub, obj, act)
}

// AddPolicy 添加策略
func AddPolicy(sub string, obj string, act string) (bool, error) {
	e := GetEnforcer()
	if e == nil {
		return false, nil
	}
	return e.AddPolicy(sub, obj, act)
}

// RemovePolicy 删除策略
func RemovePolicy(sub string, obj string, act string) (bool, error) {
	e := GetEnforcer()
	if e == nil {
		return false, nil
	}
	return e.RemovePolicy(sub, obj, act)
}

// GetFilteredPolicy 获取过滤的策略
// fieldIndex: 字段索引（0=sub, 1=obj, 2=act）
func GetFilteredPolicy(fieldIndex int, fieldValues ...string) ([][]string, error) {
	e := GetEnforcer()
	if e == nil {
		return nil, nil
	}
	return e.GetFilteredPolicy(fieldIndex, fieldValues...)
}

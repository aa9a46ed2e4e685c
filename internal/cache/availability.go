package cache

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	apperrors "go-flight-reservation/pkg/app_errors"
	"go-flight-reservation/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ScheduleAvailability Redis 中一個時段的可用性視圖
type ScheduleAvailability struct {
	Available int
	Capacity  int
	Assigned  []int
}

// RedisAvailabilityCache 航班可用性的快速查詢路徑。
// Capacity Ledger 才是權威狀態，這裡只是讀取端的加速，
// 寫入為盡力而為，查不到時呼叫端應回退到 Ledger 快照。
type RedisAvailabilityCache interface {
	// 預熱：啟動時載入時段的容量、剩餘座位與已分配座位號
	WarmUp(ctx context.Context, scheduleID int, capacity int, available int, assigned []int) error
	// 獲取：查不到回傳 ErrScheduleNotFound
	Get(ctx context.Context, scheduleID int) (ScheduleAvailability, error)
	// 更新：Ledger 每次座位異動後呼叫 (使用Lua腳本確保原子性)
	PublishAvailability(ctx context.Context, scheduleID int, available int, assigned []int)
}

type RedisAvailabilityCacheImpl struct {
	client *redis.Client
}

func NewRedisAvailabilityCache(client *redis.Client) RedisAvailabilityCache {
	return &RedisAvailabilityCacheImpl{
		client: client,
	}
}

// 可用性 key
func (c *RedisAvailabilityCacheImpl) getInfoKey(scheduleID int) string {
	return fmt.Sprintf("schedule:%d:info", scheduleID)
}

// 已分配座位集合的 key
func (c *RedisAvailabilityCacheImpl) getSeatsKey(scheduleID int) string {
	return fmt.Sprintf("schedule:%d:seats", scheduleID)
}

// refreshScript 以單一腳本覆寫 info 與座位集合，避免讀取端看到撕裂狀態
const refreshScript = `
	-- 1. 取得參數
	local info_key = KEYS[1]
	local seats_key = KEYS[2]
	local available = ARGV[1]
	local capacity = ARGV[2]

	-- 2. 覆寫可用性
	redis.call('HSET', info_key, 'available', available, 'capacity', capacity)

	-- 3. 重建座位集合
	redis.call('DEL', seats_key)
	for i = 3, #ARGV do
		redis.call('SADD', seats_key, ARGV[i])
	end

	return "OK"
`

func (c *RedisAvailabilityCacheImpl) refresh(ctx context.Context, scheduleID int, capacity int, available int, assigned []int) error {
	args := make([]interface{}, 0, len(assigned)+2)
	args = append(args, available, capacity)
	for _, seat := range assigned {
		args = append(args, seat)
	}

	keys := []string{c.getInfoKey(scheduleID), c.getSeatsKey(scheduleID)}
	return c.client.Eval(ctx, refreshScript, keys, args...).Err()
}

func (c *RedisAvailabilityCacheImpl) WarmUp(ctx context.Context, scheduleID int, capacity int, available int, assigned []int) error {
	return c.refresh(ctx, scheduleID, capacity, available, assigned)
}

func (c *RedisAvailabilityCacheImpl) PublishAvailability(ctx context.Context, scheduleID int, available int, assigned []int) {
	capacity := available + len(assigned)
	if err := c.refresh(ctx, scheduleID, capacity, available, assigned); err != nil {
		// 快取寫入失敗不影響訂位主流程，下次 WarmUp 或 Publish 會補上
		logger.WithComponent("availability_cache").Warn("failed to refresh availability",
			zap.Int("schedule_id", scheduleID), zap.Error(err))
	}
}

func (c *RedisAvailabilityCacheImpl) Get(ctx context.Context, scheduleID int) (ScheduleAvailability, error) {
	info, err := c.client.HGetAll(ctx, c.getInfoKey(scheduleID)).Result()
	if err != nil {
		return ScheduleAvailability{}, err
	}

	// 檢查 key 是否存在
	if len(info) == 0 {
		return ScheduleAvailability{}, apperrors.ErrScheduleNotFound
	}

	available, err := strconv.Atoi(info["available"])
	if err != nil {
		return ScheduleAvailability{}, fmt.Errorf("invalid available: %v", err)
	}
	capacity, err := strconv.Atoi(info["capacity"])
	if err != nil {
		return ScheduleAvailability{}, fmt.Errorf("invalid capacity: %v", err)
	}

	members, err := c.client.SMembers(ctx, c.getSeatsKey(scheduleID)).Result()
	if err != nil {
		return ScheduleAvailability{}, err
	}

	assigned := make([]int, 0, len(members))
	for _, m := range members {
		seat, err := strconv.Atoi(m)
		if err != nil {
			return ScheduleAvailability{}, fmt.Errorf("invalid seat number: %v", err)
		}
		assigned = append(assigned, seat)
	}
	sort.Ints(assigned)

	return ScheduleAvailability{
		Available: available,
		Capacity:  capacity,
		Assigned:  assigned,
	}, nil
}

package health

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"veloce-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for the health check. If nil, the database is
// reported as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the /health/json payload.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	Platform     string `json:"platform"`
}

type TrafficInfo struct {
	TotalRequests   int    `json:"totalRequests"`
	SuccessCount    int    `json:"successCount"`
	FailedCount     int    `json:"failedCount"`
	SuccessRate     string `json:"successRate"`
	AvgResponseTime string `json:"avgResponseTime"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// CollectHealth gathers dependency pings and the request counters the
// health-marker middleware keeps in Redis.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger) CollectResult {
	result := CollectResult{
		Runtime: RuntimeInfo{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			Platform:     runtime.GOOS,
		},
		Traffic:      TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"},
		Dependencies: make(map[string]DepStatus),
	}

	dbStatus := "disconnected"
	var dbPingMs *int64
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := "disconnected"
	var redisPingMs *int64
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = "connected"

			totalReq, _ := rdb.Get(ctx, middleware.KeyReqTotal).Result()
			totalErr, _ := rdb.Get(ctx, middleware.KeyReqErrors).Result()
			totalTime, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
			resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Result()

			result.Traffic.TotalRequests, _ = strconv.Atoi(totalReq)
			result.Traffic.FailedCount, _ = strconv.Atoi(totalErr)
			result.Traffic.SuccessCount = result.Traffic.TotalRequests - result.Traffic.FailedCount
			if result.Traffic.TotalRequests > 0 {
				rate := float64(result.Traffic.SuccessCount) / float64(result.Traffic.TotalRequests) * 100
				result.Traffic.SuccessRate = strconv.FormatFloat(rate, 'f', 1, 64)
			}
			timeSum, _ := strconv.ParseFloat(totalTime, 64)
			countSum, _ := strconv.Atoi(resCount)
			if countSum > 0 {
				result.Traffic.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
			}
		} else {
			redisStatus = "error"
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}

	result.Status = "ok"
	if dbStatus == "error" || redisStatus == "error" {
		result.Status = "degraded"
	}
	return result
}

// ResetCounters clears the traffic counters (admin-keyed).
func ResetCounters(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyLastReq,
	).Err()
}

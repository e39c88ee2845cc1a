package services

import (
	"context"
	"time"

	"classbooking_go/config"
	"classbooking_go/database"
)

// DependencyStatus describes one backing dependency in the health report.
type DependencyStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthReport is the detailed health payload.
type HealthReport struct {
	Status       string             `json:"status"`
	Environment  string             `json:"environment"`
	CheckedAt    time.Time          `json:"checked_at"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// HealthService probes the database and Redis.
type HealthService struct{}

// NewHealthService creates a health service.
func NewHealthService() *HealthService {
	return &HealthService{}
}

// Check probes every dependency and combines their statuses.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:      "ok",
		Environment: config.AppConfig.AppEnv,
		CheckedAt:   time.Now(),
	}

	report.Dependencies = append(report.Dependencies, s.checkDatabase(ctx))
	report.Dependencies = append(report.Dependencies, s.checkRedis(ctx))

	for _, dep := range report.Dependencies {
		report.Status = combineStatus(report.Status, dep.Status)
	}
	return report
}

func (s *HealthService) checkDatabase(ctx context.Context) DependencyStatus {
	dep := DependencyStatus{Name: "mysql", Status: "ok"}
	start := time.Now()

	sqlDB, err := database.DB.DB()
	if err != nil {
		dep.Status = "down"
		dep.Error = err.Error()
		return dep
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		dep.Status = "down"
		dep.Error = err.Error()
		return dep
	}
	dep.Latency = time.Since(start).String()
	return dep
}

func (s *HealthService) checkRedis(ctx context.Context) DependencyStatus {
	dep := DependencyStatus{Name: "redis", Status: "ok"}

	client := database.GetRedisClient()
	if client == nil {
		// Locks fall back to in-process mutexes; degraded, not down.
		dep.Status = "degraded"
		dep.Error = "redis client not initialised"
		return dep
	}

	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		dep.Status = "degraded"
		dep.Error = err.Error()
		return dep
	}
	dep.Latency = time.Since(start).String()
	return dep
}

func combineStatus(a, b string) string {
	rank := map[string]int{"ok": 0, "degraded": 1, "down": 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

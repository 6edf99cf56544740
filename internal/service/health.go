package service

import (
	"context"
	"fmt"
	"storefront/internal/config"
	"storefront/internal/dto"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	checkUp   = "up"
	checkDown = "down"
)

type HealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
	Ping(ctx context.Context) error
}

type healthServiceImpl struct {
	db        *gorm.DB
	cfg       *config.Config
	startedAt time.Time
	now       func() time.Time
}

func NewHealthService(db *gorm.DB, cfg *config.Config) HealthService {
	return &healthServiceImpl{
		db:        db,
		cfg:       cfg,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

func (s *healthServiceImpl) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Check reports the database and configuration state. The response is
// "healthy" only when every check is up.
func (s *healthServiceImpl) Check(ctx context.Context) *dto.HealthResponse {
	start := s.now()
	checks := make(map[string]dto.HealthCheck, 2)

	dbStart := s.now()
	if err := s.Ping(ctx); err != nil {
		checks["database"] = dto.HealthCheck{Status: checkDown, Error: err.Error()}
	} else {
		latency := s.now().Sub(dbStart).Milliseconds()
		checks["database"] = dto.HealthCheck{Status: checkUp, Latency: &latency}
	}

	if missing := s.cfg.MissingRequired(); len(missing) > 0 {
		checks["environment"] = dto.HealthCheck{
			Status: checkDown,
			Error:  "Missing environment variables: " + strings.Join(missing, ", "),
		}
	} else {
		checks["environment"] = dto.HealthCheck{Status: checkUp}
	}

	status := "healthy"
	for _, c := range checks {
		if c.Status != checkUp {
			status = "degraded"
			break
		}
	}

	now := s.now()
	return &dto.HealthResponse{
		Status:       status,
		Timestamp:    now.UTC().Format(time.RFC3339Nano),
		Uptime:       now.Sub(s.startedAt).Seconds(),
		ResponseTime: now.Sub(start).Milliseconds(),
		Checks:       checks,
		Version:      s.cfg.AppVersion,
		Environment:  s.cfg.Environment.Name,
	}
}

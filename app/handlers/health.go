package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"` // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
	Uptime    string                 `json:"uptime,omitempty"`
}

// CheckResult represents the result of a dependency health check
type CheckResult struct {
	Status       string `json:"status"` // "up", "down" or "disabled"
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

var startTime = time.Now()

// healthCheckHandler reports the service and its dependencies. Redis and
// RabbitMQ are optional at startup, so a missing client is reported as
// "disabled" without degrading the overall status.
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckResult)
	overallStatus := "healthy"

	dbCheck := app.checkDatabase(ctx)
	checks["database"] = dbCheck
	if dbCheck.Status == "down" {
		overallStatus = "unhealthy"
	}

	checks["redis"] = app.checkRedis(ctx)
	checks["rabbitmq"] = app.checkRabbitMQ()

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Uptime:    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func (app *application) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()

	if app.db == nil {
		return CheckResult{
			Status: "down",
			Error:  "database connection not initialized",
		}
	}

	if err := app.db.PingContext(ctx); err != nil {
		return CheckResult{
			Status:       "down",
			ResponseTime: time.Since(start).String(),
			Error:        err.Error(),
		}
	}

	var result int
	if err := app.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return CheckResult{
			Status:       "down",
			ResponseTime: time.Since(start).String(),
			Error:        err.Error(),
		}
	}

	return CheckResult{
		Status:       "up",
		ResponseTime: time.Since(start).String(),
	}
}

func (app *application) checkRedis(ctx context.Context) CheckResult {
	start := time.Now()

	if app.redisClient == nil {
		return CheckResult{Status: "disabled"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := app.redisClient.Ping(pingCtx).Err(); err != nil {
		return CheckResult{
			Status:       "down",
			ResponseTime: time.Since(start).String(),
			Error:        err.Error(),
		}
	}

	return CheckResult{
		Status:       "up",
		ResponseTime: time.Since(start).String(),
	}
}

func (app *application) checkRabbitMQ() CheckResult {
	start := time.Now()

	if app.rabbitConn == nil {
		return CheckResult{Status: "disabled"}
	}

	if app.rabbitConn.IsClosed() {
		return CheckResult{
			Status:       "down",
			ResponseTime: time.Since(start).String(),
			Error:        "rabbitmq connection is closed",
		}
	}

	return CheckResult{
		Status:       "up",
		ResponseTime: time.Since(start).String(),
	}
}

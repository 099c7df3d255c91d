package server

import (
	"net/http"
	"runtime"
	"time"
)

var processStart = time.Now()

type metricsResponse struct {
	Service       string `json:"service"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Goroutines    int    `json:"goroutines"`
	Timestamp     string `json:"timestamp"`
}

func metricsHandler(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, metricsResponse{
		Service:       serviceName,
		UptimeSeconds: int64(time.Since(processStart).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

package handler

import "github.com/zarnegar/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response wrapper with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// SchedulerStatusData describes the background job schedule exposed by the
// system endpoints
type SchedulerStatusData struct {
	Enabled bool     `json:"enabled"`
	Jobs    []string `json:"jobs"`
}

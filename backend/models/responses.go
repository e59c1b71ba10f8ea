package models

import (
	"time"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError carries the error kind as Code. Message is always safe to show.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// PageResponse wraps a page of results with the window that produced it.
type PageResponse struct {
	APIResponse
	Page *PageInfo `json:"page,omitempty"`
}

type PageInfo struct {
	Limit  int  `json:"limit"`
	Offset int  `json:"offset"`
	Count  int  `json:"count"`
	More   bool `json:"more"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func NewErrorResponse(code, message string, details map[string]string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	}
}

// NewPageResponse reports More when the page came back full.
func NewPageResponse(data interface{}, limit, offset, count int) *PageResponse {
	return &PageResponse{
		APIResponse: APIResponse{
			Success:   true,
			Data:      data,
			Timestamp: time.Now(),
		},
		Page: &PageInfo{
			Limit:  limit,
			Offset: offset,
			Count:  count,
			More:   limit > 0 && count == limit,
		},
	}
}

// HealthCheck represents a health check response
type HealthCheck struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Components map[string]ComponentHealth `json:"components"`
}

type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func NewHealthCheck(version string) *HealthCheck {
	return &HealthCheck{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Version:    version,
		Components: make(map[string]ComponentHealth),
	}
}

// AddComponent records a component; one unhealthy component makes the whole check unhealthy.
func (h *HealthCheck) AddComponent(name string, err error) {
	component := ComponentHealth{Status: "healthy"}
	if err != nil {
		component = ComponentHealth{Status: "unhealthy", Message: err.Error()}
		h.Status = "unhealthy"
	}
	h.Components[name] = component
}

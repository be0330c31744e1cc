// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package models

// APIResponse is the envelope shared by every endpoint.
//
// Example successful response:
//
//	{
//	  "Success": true,
//	  "Message": "Article retrieved",
//	  "Object": {"id": "...", "title": "..."},
//	  "Errors": null
//	}
//
// Example validation failure:
//
//	{
//	  "Success": false,
//	  "Message": "Validation failed",
//	  "Object": null,
//	  "Errors": ["title : must be at most 150 characters"]
//	}
type APIResponse struct {
	Success bool        `json:"Success"`
	Message string      `json:"Message"`
	Object  interface{} `json:"Object"`
	Errors  []string    `json:"Errors"`
}

// PaginatedResponse is the envelope of list endpoints.
type PaginatedResponse struct {
	Success    bool        `json:"Success"`
	Message    string      `json:"Message"`
	Object     interface{} `json:"Object"`
	PageNumber int         `json:"PageNumber"`
	PageSize   int         `json:"PageSize"`
	TotalSize  int64       `json:"TotalSize"`
	Errors     []string    `json:"Errors"`
}

// SuccessResponse builds a successful envelope.
func SuccessResponse(message string, object interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Object: object}
}

// ErrorResponse builds a failed envelope.
func ErrorResponse(message string, errs []string) APIResponse {
	return APIResponse{Success: false, Message: message, Errors: errs}
}

// NewPaginatedResponse builds a list envelope.
func NewPaginatedResponse(message string, items interface{}, page, size int, total int64) PaginatedResponse {
	return PaginatedResponse{
		Success:    true,
		Message:    message,
		Object:     items,
		PageNumber: page,
		PageSize:   size,
		TotalSize:  total,
	}
}

// HealthStatus is the Object of GET /health.
type HealthStatus struct {
	Status          string  `json:"status"`
	Database        string  `json:"database"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	LastAggregation *string `json:"last_aggregation"`
}

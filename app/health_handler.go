package app

import (
	"context"
)

type HealthHandler struct {
	message string
}

type HealthRequest struct{}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewHealthHandler(serviceName string) *HealthHandler {
	return &HealthHandler{
		message: serviceName,
	}
}

func (h HealthHandler) Handle(_ context.Context, _ *HealthRequest) (*HealthResponse, error) {
	return &HealthResponse{
		Status:  "ok",
		Message: h.message,
	}, nil
}

package dto

import (
	"encoding/json"
	"time"

	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// SaveStateRequest is the POST /state body. Data carries the whole
// document; the server never inspects it beyond JSON validity.
type SaveStateRequest struct {
	Key  string          `json:"key" binding:"omitempty,max=64"`
	Data json.RawMessage `json:"data" binding:"required"`
}

// StateResponse is the GET /state answer. Data is null when the key has
// never been written.
type StateResponse struct {
	Data          json.RawMessage `json:"data"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
	SchemaVersion int             `json:"schemaVersion,omitempty"`
}

// SaveStateResponse acknowledges a successful overwrite.
type SaveStateResponse struct {
	OK        bool      `json:"ok"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrorResponse is the error body shape shared by all endpoints.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ToStateResponse maps a stored row to the wire shape.
func ToStateResponse(state *ports.AppState) StateResponse {
	if state == nil {
		return StateResponse{Data: json.RawMessage("null")}
	}
	t := state.UpdatedAt
	return StateResponse{
		Data:          state.Data,
		UpdatedAt:     &t,
		SchemaVersion: state.SchemaVersion,
	}
}

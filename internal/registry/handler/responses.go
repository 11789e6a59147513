package handler

import (
	"time"

	"meridian/internal/registry"
)

// ModelResponse is the wire shape of a sovereign model registration.
type ModelResponse struct {
	ID           string    `json:"id"`
	ModelRef     string    `json:"model_ref"`
	Jurisdiction string    `json:"jurisdiction"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FromModel converts a domain registration to its wire shape.
func FromModel(m *registry.SovereignModel) ModelResponse {
	return ModelResponse{
		ID:           m.ID.String(),
		ModelRef:     m.ModelRef.String(),
		Jurisdiction: m.Jurisdiction.String(),
		Status:       string(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromModels converts a registration list to its wire shape.
func FromModels(models []*registry.SovereignModel) []ModelResponse {
	out := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		out = append(out, FromModel(m))
	}
	return out
}

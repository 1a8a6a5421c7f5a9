package api

import (
	"time"
)

// ResultEnvelope is the wire shape of every endpoint: exactly one of
// Data and Error is set.
type ResultEnvelope struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

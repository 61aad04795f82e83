package api

import (
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/core/snapshot"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TeamDTO is the team on duty for a unit and date
type TeamDTO struct {
	Date       string `json:"date"`
	Unit       string `json:"unit"`
	Team       string `json:"team"`
	Overridden bool   `json:"overridden"`
	Reason     string `json:"reason,omitempty"`
}

// StatusDTO is the availability of a person on a date
type StatusDTO struct {
	PersonID string `json:"personId"`
	Date     string `json:"date"`
	model.Status
}

// RotationStartRequest sets the January 1 team of a unit
type RotationStartRequest struct {
	Year int    `json:"year" validate:"required,min=1"`
	Team string `json:"team" validate:"required"`
}

// AdminOverrideRequest assigns an administrative team to a date. An empty team clears the override.
type AdminOverrideRequest struct {
	Team string `json:"team"`
}

// SnapshotDTO describes the loaded snapshots. Clients poll Version to know when to refetch.
type SnapshotDTO struct {
	Version   uint64          `json:"version"`
	Snapshots []snapshot.Info `json:"snapshots"`
}

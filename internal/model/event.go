package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	Id              uuid.UUID
	HostId          uuid.UUID
	Title           string
	Sport           string
	Description     *string
	Location        string
	StartDatetime   time.Time
	MaxParticipants *int
	CreateDatetime  time.Time
	UpdateDatetime  time.Time
}

type EventCreateRequest struct {
	Title           string    `json:"title"`
	Sport           string    `json:"sport"`
	Description     *string   `json:"description"`
	Location        string    `json:"location"`
	StartDatetime   time.Time `json:"startDatetime"`
	MaxParticipants *int      `json:"maxParticipants"`
}

// EventPatchRequest is a full patch struct: one optional field per mutable
// attribute. A nil field means "leave unchanged". MaxParticipants cannot be
// cleared back to unbounded through a patch; hosts recreate the event instead.
type EventPatchRequest struct {
	Title           *string    `json:"title"`
	Sport           *string    `json:"sport"`
	Description     *string    `json:"description"`
	Location        *string    `json:"location"`
	StartDatetime   *time.Time `json:"startDatetime"`
	MaxParticipants *int       `json:"maxParticipants"`
}

type EventResponse struct {
	Id               string    `json:"id"`
	HostId           string    `json:"hostId"`
	Title            string    `json:"title"`
	Sport            string    `json:"sport"`
	Description      *string   `json:"description"`
	Location         string    `json:"location"`
	StartDatetime    time.Time `json:"startDatetime"`
	MaxParticipants  *int      `json:"maxParticipants"`
	ParticipantCount int       `json:"participantCount"`
	CreateDatetime   time.Time `json:"createDatetime"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AgeBandUnder18 = "under-18"
	AgeBand18To24  = "18-24"
	AgeBand25To34  = "25-34"
	AgeBand35To44  = "35-44"
	AgeBand45Plus  = "45+"
)

type Participation struct {
	EventId      uuid.UUID
	UserId       uuid.UUID
	ShareConsent bool
	JoinedAt     time.Time
}

type JoinEventRequest struct {
	ShareConsent bool `json:"shareConsent"`
}

// HostParticipantRow is what the store-side lookup returns for a host.
// Gender and AgeBand arrive already redacted for participants who withheld
// consent; the application layer never sees the raw values.
type HostParticipantRow struct {
	UserId   uuid.UUID
	JoinedAt time.Time
	Gender   *string
	AgeBand  *string
}

type ParticipantProfile struct {
	UserId      uuid.UUID
	FullName    string
	Username    string
	AvatarImage *string
}

type HostParticipantResponse struct {
	UserId      string    `json:"userId"`
	JoinedAt    time.Time `json:"joinedAt"`
	Gender      *string   `json:"gender"`
	AgeBand     *string   `json:"ageBand"`
	FullName    string    `json:"fullName"`
	Username    string    `json:"username"`
	AvatarImage *string   `json:"avatarImage"`
}

package models

import (
	"encoding/json"
	"time"
)

// Request types

type SendOTPRequest struct {
	VoterID string `json:"voterId" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

type VerifyOTPRequest struct {
	VoterID string `json:"voterId" validate:"required"`
	Code    string `json:"code" validate:"required"`
}

type CastVoteRequest struct {
	ElectionID    string `json:"electionId" validate:"required"`
	ParticipantID string `json:"participantId" validate:"required"`
	VoterID       string `json:"voterId" validate:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// participants: one name per candidate
type CreateElectionRequest struct {
	Name         string   `json:"name" validate:"required"`
	Participants []string `json:"participants" validate:"required,min=1,dive,required"`
}

// ContentVariables may arrive as a JSON string or a JSON object
type SendTemplateRequest struct {
	To               string          `json:"to" validate:"required"`
	ContentSID       string          `json:"contentSid" validate:"required"`
	ContentVariables json.RawMessage `json:"contentVariables,omitempty"`
}

// Response types

type OKResponse struct {
	OK bool `json:"ok"`
}

type SendOTPResponse struct {
	OK  bool   `json:"ok"`
	TTL int    `json:"ttl"`
	Via string `json:"via"`
}

type VoteStatusResponse struct {
	HasVoted bool `json:"hasVoted"`
}

type CreateElectionResponse struct {
	OK         bool   `json:"ok"`
	ElectionID string `json:"electionId"`
}

type SessionResponse struct {
	OK       bool   `json:"ok"`
	Username string `json:"username,omitempty"`
}

type SendTemplateResponse struct {
	OK  bool   `json:"ok"`
	SID string `json:"sid"`
}

type ElectionWithParticipants struct {
	Election     Election      `json:"election"`
	Participants []Participant `json:"participants"`
}

type ElectionSummary struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
}

type ElectionDetails struct {
	Election Election     `json:"election"`
	Votes    []VoteDetail `json:"votes"`
}

// Domain types

type Election struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Participant struct {
	ID         string `json:"id,omitempty"`
	ElectionID string `json:"-"`
	Name       string `json:"name"`
	Votes      int    `json:"votes"`
}

// Voter is created on the first successful OTP verification for a voter id
type Voter struct {
	ID        string    `json:"id"`
	VoterID   string    `json:"voter_id"`
	Phone     string    `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
}

type Vote struct {
	ID            string    `json:"id"`
	ElectionID    string    `json:"election_id"`
	ParticipantID string    `json:"participant_id"`
	VoterID       string    `json:"voter_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type VoteDetail struct {
	VoterID         string    `json:"voter_id"`
	CreatedAt       time.Time `json:"created_at"`
	ParticipantName string    `json:"participantName"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

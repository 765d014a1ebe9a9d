// Package catalog defines core types shared across subsystems.
package catalog

import (
	"time"
)

// Entity is a catalog record (category or product summary) as exchanged
// with the storefront API and the local cache.
type Entity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Seed        bool   `json:"-"`
}

// CacheRecord is the durable wrapper persisted by the cache store.
type CacheRecord struct {
	Entity
	UpdatedAt time.Time `json:"updatedAt"`
}

// Origin tells where an upload candidate's bytes live.
type Origin string

// Candidate origins.
const (
	// OriginNew means the bytes were selected locally and are not yet
	// persisted anywhere.
	OriginNew Origin = "new"
	// OriginExisting means the candidate is a reference to an asset the
	// backend already holds; no raw bytes are available locally.
	OriginExisting Origin = "existing"
)

// UploadCandidate is a user-selected file tracked from selection through
// upload. Candidates with OriginNew own exactly one live preview handle
// until they are released.
type UploadCandidate struct {
	ID            string
	Name          string
	SizeBytes     int64
	MIMEType      string
	Origin        Origin
	SequenceIndex int

	// Data holds the raw bytes for OriginNew candidates.
	Data []byte
	// Ref holds the persisted server reference for OriginExisting candidates.
	Ref string
	// PreviewHandle is the revocable local display reference. Empty once
	// revoked, and always empty for OriginExisting.
	PreviewHandle string
}

// AttemptOutcome classifies the result of one request attempt.
type AttemptOutcome string

// Attempt outcomes recorded per executor attempt.
const (
	OutcomeSuccess      AttemptOutcome = "success"
	OutcomeNetworkError AttemptOutcome = "network_error"
	OutcomeAuthError    AttemptOutcome = "auth_error"
	OutcomeServerError  AttemptOutcome = "server_error"
)

// RequestAttempt records one attempt against one candidate endpoint. It is
// ephemeral: attempts only survive an executor invocation when aggregated
// into a composite failure for diagnostics.
type RequestAttempt struct {
	Endpoint   string
	StartedAt  time.Time
	Outcome    AttemptOutcome
	StatusCode int
	Err        string
}

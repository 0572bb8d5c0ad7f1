package model

import "time"

// TierTransition is emitted once per applied decision. The note-writing and
// reference-library collaborators consume these; the engine never calls
// them directly.
type TierTransition struct {
	Identity Identity  `json:"identity"`
	Tier     Tier      `json:"tier"`
	Record   Record    `json:"record"`
	At       time.Time `json:"at"`
}

// DigestReady is emitted when a new snapshot has been built and rendered,
// for the email-sending collaborator.
type DigestReady struct {
	SnapshotID string    `json:"snapshot_id"`
	CreatedAt  time.Time `json:"created_at"`
	OutboxFile string    `json:"outbox_file,omitempty"`
	Ranked     []Record  `json:"ranked"`
}

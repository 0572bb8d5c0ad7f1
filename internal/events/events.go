// Package events publishes engine outcomes to downstream collaborators.
// The engine never calls the note writer or reference library directly; it
// appends events to a log they consume on their own schedule.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"journalclub/internal/model"
)

// Kind discriminates event envelopes in the log.
type Kind string

const (
	KindTierTransition Kind = "tier_transition"
	KindDigestReady    Kind = "digest_ready"
)

// Envelope is the on-disk event shape, one JSON object per line.
type Envelope struct {
	Kind           Kind                  `json:"kind"`
	At             time.Time             `json:"at"`
	TierTransition *model.TierTransition `json:"tier_transition,omitempty"`
	DigestReady    *model.DigestReady    `json:"digest_ready,omitempty"`
}

// Sink receives engine events.
type Sink interface {
	TierTransition(model.TierTransition) error
	DigestReady(model.DigestReady) error
}

// Discard drops all events. Used by dry-run commands.
type Discard struct{}

func (Discard) TierTransition(model.TierTransition) error { return nil }
func (Discard) DigestReady(model.DigestReady) error       { return nil }

// JSONLSink appends envelopes to a log file, one per line, synced per
// append so consumers never read a torn event after a crash.
type JSONLSink struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: path, now: time.Now}
}

func (s *JSONLSink) TierTransition(ev model.TierTransition) error {
	return s.append(Envelope{Kind: KindTierTransition, TierTransition: &ev})
}

func (s *JSONLSink) DigestReady(ev model.DigestReady) error {
	return s.append(Envelope{Kind: KindDigestReady, DigestReady: &ev})
}

func (s *JSONLSink) append(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env.At = s.now().UTC()
	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open events log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return f.Sync()
}

// MultiSink fans an event out to several sinks, stopping at the first
// failure.
type MultiSink []Sink

func (m MultiSink) TierTransition(ev model.TierTransition) error {
	for _, s := range m {
		if err := s.TierTransition(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) DigestReady(ev model.DigestReady) error {
	for _, s := range m {
		if err := s.DigestReady(ev); err != nil {
			return err
		}
	}
	return nil
}

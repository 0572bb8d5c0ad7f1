// Package reply parses the user's digest reply and applies the selected
// tier decisions. Parsing is a pure validation stage; nothing touches the
// store until Apply. Invalid tokens are rejected individually with a
// reason, never silently dropped, and one bad token never poisons the rest
// of the reply.
package reply

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"journalclub/internal/apperr"
	"journalclub/internal/events"
	"journalclub/internal/model"
	"journalclub/internal/store"
)

// Reason classifies why a token (or the whole reply) was rejected.
type Reason string

const (
	ReasonOutOfRange     Reason = "out_of_range"
	ReasonDuplicate      Reason = "duplicate_ordinal"
	ReasonUnknownTier    Reason = "unknown_tier"
	ReasonStaleSnapshot  Reason = "stale_snapshot"
	ReasonMalformed      Reason = "malformed"
	ReasonAlreadyDecided Reason = "already_decided"
)

// Selection is one accepted token: an ordinal in the snapshot plus the
// tier its letter names.
type Selection struct {
	Token   string     `json:"token"`
	Ordinal int        `json:"ordinal"`
	Tier    model.Tier `json:"tier"`
}

// Rejection is one refused token with its reason.
type Rejection struct {
	Token  string `json:"token"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of the validation stage.
type Result struct {
	ShowAll  bool        `json:"show_all"`
	Accepted []Selection `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

var tokenShape = regexp.MustCompile(`^([0-9]+)([A-Za-z])$`)

// Parse validates a reply against the snapshot it answers. A reply to a
// superseded snapshot is rejected whole: its ordinals named a different
// digest, so applying any of them would hit the wrong articles. Within a
// live snapshot, tokens are judged independently; the first occurrence of
// an ordinal wins and repeats are rejected rather than overwriting it.
func Parse(text string, snap *store.Snapshot) Result {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	if len(tokens) == 2 && strings.EqualFold(tokens[0], "show") && strings.EqualFold(tokens[1], "all") {
		return Result{ShowAll: true}
	}
	if len(tokens) == 0 {
		return Result{Rejected: []Rejection{{Reason: ReasonMalformed, Detail: "empty reply"}}}
	}
	if snap == nil {
		return Result{Rejected: []Rejection{{Token: strings.TrimSpace(text), Reason: ReasonStaleSnapshot, Detail: "no snapshot to answer"}}}
	}
	if snap.Superseded {
		return Result{Rejected: []Rejection{{
			Token:  strings.TrimSpace(text),
			Reason: ReasonStaleSnapshot,
			Detail: fmt.Sprintf("snapshot %s has been superseded", snap.ID),
		}}}
	}

	var res Result
	taken := make(map[int]string)
	for _, tok := range tokens {
		m := tokenShape.FindStringSubmatch(tok)
		if m == nil {
			res.Rejected = append(res.Rejected, Rejection{Token: tok, Reason: ReasonMalformed, Detail: "want digits followed by one tier letter"})
			continue
		}
		tier, ok := model.TierFromLetter(rune(m[2][0]))
		if !ok {
			res.Rejected = append(res.Rejected, Rejection{Token: tok, Reason: ReasonUnknownTier, Detail: fmt.Sprintf("%q is not one of F, A, M, S", m[2])})
			continue
		}
		ordinal, err := strconv.Atoi(m[1])
		if err != nil || ordinal < 1 || ordinal > snap.Size() {
			res.Rejected = append(res.Rejected, Rejection{Token: tok, Reason: ReasonOutOfRange, Detail: fmt.Sprintf("digest has items 1..%d", snap.Size())})
			continue
		}
		if first, dup := taken[ordinal]; dup {
			res.Rejected = append(res.Rejected, Rejection{Token: tok, Reason: ReasonDuplicate, Detail: fmt.Sprintf("ordinal %d already taken by %q", ordinal, first)})
			continue
		}
		taken[ordinal] = tok
		res.Accepted = append(res.Accepted, Selection{Token: tok, Ordinal: ordinal, Tier: tier})
	}
	return res
}

// Applied is one durably recorded decision.
type Applied struct {
	Selection
	Record model.Record `json:"record"`
}

// Outcome reports what Apply did with each token.
type Outcome struct {
	ShowAll  bool        `json:"show_all"`
	Applied  []Applied   `json:"applied"`
	Rejected []Rejection `json:"rejected"`
}

// Apply runs the accepted selections through the store. A selection whose
// article was already decided (a re-delivered reply, or a decision that
// landed between send and receive) is rejected as already_decided and the
// rest continue, which is what makes reply processing idempotent under
// at-least-once delivery. Each applied transition is emitted to sink.
func Apply(st *store.Store, snap *store.Snapshot, res Result, sink events.Sink) (Outcome, error) {
	out := Outcome{ShowAll: res.ShowAll, Rejected: res.Rejected}
	if res.ShowAll {
		return out, nil
	}
	for _, sel := range res.Accepted {
		entry, ok := snap.Resolve(sel.Ordinal)
		if !ok {
			out.Rejected = append(out.Rejected, Rejection{Token: sel.Token, Reason: ReasonOutOfRange, Detail: fmt.Sprintf("digest has items 1..%d", snap.Size())})
			continue
		}
		rec, err := st.ApplyTransition(entry.Candidate, sel.Tier)
		if err != nil {
			var illegal *apperr.IllegalTransitionError
			if errors.As(err, &illegal) {
				out.Rejected = append(out.Rejected, Rejection{Token: sel.Token, Reason: ReasonAlreadyDecided, Detail: illegal.Reason})
				continue
			}
			return out, fmt.Errorf("apply %s: %w", sel.Token, err)
		}
		out.Applied = append(out.Applied, Applied{Selection: sel, Record: rec})
		if err := sink.TierTransition(model.TierTransition{
			Identity: rec.Identity,
			Tier:     rec.Tier,
			Record:   rec,
			At:       time.Now().UTC(),
		}); err != nil {
			return out, fmt.Errorf("emit transition for %s: %w", sel.Token, err)
		}
	}
	return out, nil
}

// Package store persists per-article decisions in a single JSON file. Every
// mutating operation rewrites the file atomically before returning, so a
// crash between operations never leaves a half-written store. Undecided
// articles are deliberately absent: a record exists only once its tier has
// been decided, and absence is what lets an article surface again in later
// digests.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"journalclub/internal/apperr"
	"journalclub/internal/fsutil"
	"journalclub/internal/model"
)

const storeVersion = 1

// ErrNotFound reports a lookup miss on an operation that requires an
// existing record.
var ErrNotFound = errors.New("record not found")

type storeEntry struct {
	AliasOf string        `json:"alias_of,omitempty"`
	Record  *model.Record `json:"record,omitempty"`
}

type storeFile struct {
	Version   int                   `json:"version"`
	UpdatedAt time.Time             `json:"updated_at"`
	Entries   map[string]storeEntry `json:"entries"`
}

// Store is the seen store: one record per decided article, reachable by any
// of its identity forms. Not safe for concurrent use; passes serialize
// through the advisory lock instead.
type Store struct {
	path    string
	records map[string]model.Record
	aliases map[string]string
	now     func() time.Time
}

// Open loads the store at path, creating an empty one in memory if the file
// does not exist yet. A file that exists but fails validation yields a
// CorruptStoreError and is never overwritten.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[string]model.Record),
		aliases: make(map[string]string),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, apperr.NewCorruptStore(path, "invalid JSON", err)
	}
	if file.Version != storeVersion {
		return nil, apperr.NewCorruptStore(path, fmt.Sprintf("unsupported version %d", file.Version), nil)
	}
	for key, e := range file.Entries {
		if _, err := model.ParseKey(key); err != nil {
			return nil, apperr.NewCorruptStore(path, fmt.Sprintf("bad key %q", key), err)
		}
		switch {
		case e.Record != nil && e.AliasOf == "":
			if err := validateRecord(key, *e.Record); err != nil {
				return nil, apperr.NewCorruptStore(path, err.Error(), nil)
			}
			s.records[key] = *e.Record
		case e.AliasOf != "" && e.Record == nil:
			s.aliases[key] = e.AliasOf
		default:
			return nil, apperr.NewCorruptStore(path, fmt.Sprintf("entry %q is neither record nor alias", key), nil)
		}
	}
	for alias, target := range s.aliases {
		if _, ok := s.records[target]; !ok {
			return nil, apperr.NewCorruptStore(path, fmt.Sprintf("alias %q points to missing record %q", alias, target), nil)
		}
	}
	return s, nil
}

func validateRecord(key string, r model.Record) error {
	if r.Identity.Key() != key {
		return fmt.Errorf("record under %q carries identity %q", key, r.Identity.Key())
	}
	if !r.Tier.Valid() {
		return fmt.Errorf("record %q has invalid tier %q", key, r.Tier)
	}
	if !model.ValidState(r.Tier, r.State) {
		return fmt.Errorf("record %q has state %q invalid for tier %q", key, r.State, r.Tier)
	}
	if r.FirstSeen == "" {
		return fmt.Errorf("record %q has no first-seen date", key)
	}
	return nil
}

// Len reports the number of logical records.
func (s *Store) Len() int { return len(s.records) }

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Lookup resolves an identity to its record, following the secondary-identity
// alias index, so a record upgraded from URL to DOI identity stays reachable
// under both forms.
func (s *Store) Lookup(id model.Identity) (model.Record, bool) {
	key := id.Key()
	if r, ok := s.records[key]; ok {
		return r, true
	}
	if target, ok := s.aliases[key]; ok {
		if r, ok := s.records[target]; ok {
			return r, true
		}
	}
	return model.Record{}, false
}

// LookupAny resolves the first identity that is present in the store.
func (s *Store) LookupAny(ids ...model.Identity) (model.Record, bool) {
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if r, ok := s.Lookup(id); ok {
			return r, true
		}
	}
	return model.Record{}, false
}

// UpsertNew inserts a record whose identities are not yet present in any
// form. A collision on either the primary or secondary identity is a
// ConflictError and leaves the store untouched.
func (s *Store) UpsertNew(rec model.Record) error {
	if rec.Identity.IsZero() {
		return fmt.Errorf("record has no identity")
	}
	if rec.Tier == model.TierNone {
		return fmt.Errorf("undecided record %s is never persisted", rec.Identity.Key())
	}
	for _, id := range rec.Identities() {
		if _, ok := s.Lookup(id); ok {
			return apperr.NewConflict(id.Key())
		}
	}
	if rec.FirstSeen == "" {
		rec.FirstSeen = model.DateOf(s.now())
	}
	rec.LastUpdated = model.DateOf(s.now())
	s.records[rec.Identity.Key()] = rec
	if !rec.Secondary.IsZero() {
		s.aliases[rec.Secondary.Key()] = rec.Identity.Key()
	}
	return s.save()
}

// RecordSeenWithUpgrade merges a newly learned identity form into an
// existing record. When a record previously known only by URL gains a DOI,
// the DOI becomes its primary identity and the URL is kept as a secondary
// alias; tier state and first-seen date are preserved. Returns the merged
// record. ConflictError if the learned identity already belongs to a
// different record; ErrNotFound if no record exists for known.
func (s *Store) RecordSeenWithUpgrade(known, learned model.Identity) (model.Record, error) {
	rec, ok := s.Lookup(known)
	if !ok {
		return model.Record{}, fmt.Errorf("%w: %s", ErrNotFound, known.Key())
	}
	if learned.IsZero() || learned == rec.Identity || learned == rec.Secondary {
		return rec, nil
	}
	if other, ok := s.Lookup(learned); ok {
		if other.Identity != rec.Identity {
			return model.Record{}, apperr.NewConflict(learned.Key())
		}
		return rec, nil
	}

	if learned.Kind == model.KindDOI && rec.Identity.Kind == model.KindURL {
		oldKey := rec.Identity.Key()
		delete(s.records, oldKey)
		rec.Secondary = rec.Identity
		rec.Identity = learned
		s.aliases[oldKey] = rec.Identity.Key()
	} else {
		rec.Secondary = learned
		s.aliases[learned.Key()] = rec.Identity.Key()
	}
	rec.LastUpdated = model.DateOf(s.now())
	s.records[rec.Identity.Key()] = rec
	if err := s.save(); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

// ApplyTransition materializes a candidate with its decided tier. Tiers are
// write-once: if a record already exists under any of the candidate's
// identity forms the call fails with IllegalTransitionError and nothing
// changes, which makes re-delivered replies harmless.
func (s *Store) ApplyTransition(candidate model.Record, tier model.Tier) (model.Record, error) {
	if tier == model.TierNone || !tier.Valid() {
		return model.Record{}, apperr.NewIllegalTransition(candidate.Identity.Key(), fmt.Sprintf("unknown tier %q", tier))
	}
	for _, id := range candidate.Identities() {
		if existing, ok := s.Lookup(id); ok {
			return model.Record{}, apperr.NewIllegalTransition(id.Key(), fmt.Sprintf("already decided as %s", existing.Tier))
		}
	}
	rec := candidate
	rec.Tier = tier
	rec.State = model.InitialState(tier)
	if rec.FirstSeen == "" {
		rec.FirstSeen = model.DateOf(s.now())
	}
	if err := s.UpsertNew(rec); err != nil {
		return model.Record{}, err
	}
	out, _ := s.Lookup(rec.Identity)
	return out, nil
}

// AdvanceSubstate moves a record to the single legal successor of its
// current state (queued-full to read, queued-abstract to reviewed). Any
// other request is an IllegalTransitionError. The tier never changes.
func (s *Store) AdvanceSubstate(id model.Identity, next model.State) (model.Record, error) {
	rec, ok := s.Lookup(id)
	if !ok {
		return model.Record{}, apperr.NewIllegalTransition(id.Key(), "no record to advance")
	}
	legal, ok := model.NextState(rec.State)
	if !ok {
		return model.Record{}, apperr.NewIllegalTransition(id.Key(), fmt.Sprintf("state %q is terminal", rec.State))
	}
	if next != legal {
		return model.Record{}, apperr.NewIllegalTransition(id.Key(), fmt.Sprintf("cannot move %q to %q", rec.State, next))
	}
	rec.State = next
	rec.LastUpdated = model.DateOf(s.now())
	s.records[rec.Identity.Key()] = rec
	if err := s.save(); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

// All returns every record ordered by identity key.
func (s *Store) All() []model.Record {
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.records[k])
	}
	return out
}

// Stats summarizes the store for the stats command and pass logs.
type Stats struct {
	Total   int                 `json:"total"`
	ByTier  map[model.Tier]int  `json:"by_tier"`
	ByState map[model.State]int `json:"by_state"`
}

func (s *Store) Stats() Stats {
	st := Stats{
		Total:   len(s.records),
		ByTier:  make(map[model.Tier]int),
		ByState: make(map[model.State]int),
	}
	for _, r := range s.records {
		st.ByTier[r.Tier]++
		st.ByState[r.State]++
	}
	return st
}

func (s *Store) save() error {
	file := storeFile{
		Version:   storeVersion,
		UpdatedAt: s.now().UTC(),
		Entries:   make(map[string]storeEntry, len(s.records)+len(s.aliases)),
	}
	for key := range s.records {
		r := s.records[key]
		file.Entries[key] = storeEntry{Record: &r}
	}
	for alias, target := range s.aliases {
		file.Entries[alias] = storeEntry{AliasOf: target}
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	return fsutil.WriteFileAtomic(s.path, data, 0o644)
}

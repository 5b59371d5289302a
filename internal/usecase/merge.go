package usecase

import (
	"sort"
	"time"

	"NewsMirror/internal/domain"
)

// Outcome is the per-candidate classification of a run.
type Outcome string

const (
	OutcomeNew       Outcome = "new"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// Classify compares a candidate with the entry already indexed under its id.
func Classify(existing map[string]domain.IndexEntry, ref domain.ArticleReference) Outcome {
	entry, ok := existing[ref.ID]
	if !ok {
		return OutcomeNew
	}
	if domain.SameInstant(entry.Timestamp, ref.Timestamp) {
		return OutcomeUnchanged
	}
	return OutcomeUpdated
}

// EntriesByID maps index entries by article id.
func EntriesByID(index domain.Index) map[string]domain.IndexEntry {
	byID := make(map[string]domain.IndexEntry, len(index.Entries))
	for _, entry := range index.Entries {
		byID[entry.ID] = entry
	}
	return byID
}

// MergeIndex overlays changed entries on the index by id and re-sorts the whole set.
func MergeIndex(index domain.Index, changed []domain.IndexEntry, now time.Time) domain.Index {
	byID := EntriesByID(index)
	for _, entry := range changed {
		byID[entry.ID] = entry
	}

	entries := make([]domain.IndexEntry, 0, len(byID))
	for _, entry := range byID {
		entries = append(entries, entry)
	}
	SortEntries(entries)

	generated := now.UTC()
	return domain.Index{
		GeneratedAt: &generated,
		Count:       len(entries),
		Entries:     entries,
	}
}

// SortEntries orders entries newest first with id as a descending tie-break.
// Entries without a timestamp sort last.
func SortEntries(entries []domain.IndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Timestamp == nil && b.Timestamp != nil:
			return false
		case a.Timestamp != nil && b.Timestamp == nil:
			return true
		case a.Timestamp != nil && !a.Timestamp.Equal(*b.Timestamp):
			return a.Timestamp.After(*b.Timestamp)
		}
		return a.ID > b.ID
	})
}

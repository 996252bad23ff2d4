// Package docs tracks the set of documents indexed by the remote service.
package docs

import (
	"sort"

	"github.com/docdash/docdash/pkg/models"
)

// Merge folds incoming documents into the existing set. A document re-indexed
// under an already-known name replaces the earlier entry in place; unknown
// names are appended. The result is sorted newest-first by IndexedAt, with
// documents missing a timestamp last. Merging the same documents twice yields
// the same result.
func Merge(existing, incoming []models.Document) []models.Document {
	merged := make([]models.Document, len(existing))
	copy(merged, existing)

	for _, doc := range incoming {
		replaced := false
		for i := range merged {
			if merged[i].Name == doc.Name {
				merged[i] = doc
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, doc)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].IndexedAt, merged[j].IndexedAt
		if a == "" || b == "" {
			// empty timestamps sort last
			return a != ""
		}
		return a > b
	})

	return merged
}

// LatestIndexedAt returns the maximum IndexedAt across docs, or "" for an
// empty list. RFC 3339 strings compare lexicographically in chronological
// order, so a plain string comparison suffices.
func LatestIndexedAt(documents []models.Document) string {
	latest := ""
	for _, doc := range documents {
		if doc.IndexedAt > latest {
			latest = doc.IndexedAt
		}
	}
	return latest
}

// TotalSize returns the combined size in bytes of all documents.
func TotalSize(documents []models.Document) int64 {
	var total int64
	for _, doc := range documents {
		total += doc.Size
	}
	return total
}

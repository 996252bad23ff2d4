package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docdash/docdash/pkg/models"
)

func doc(id, name string, size int64, indexedAt string) models.Document {
	return models.Document{ID: id, Name: name, Size: size, IndexedAt: indexedAt}
}

func TestMergeAppendsNewDocuments(t *testing.T) {
	existing := []models.Document{doc("1", "a.pdf", 10, "2026-08-01T10:00:00Z")}
	incoming := []models.Document{doc("2", "b.pdf", 20, "2026-08-02T10:00:00Z")}

	merged := Merge(existing, incoming)

	assert.Len(t, merged, 2)
	assert.Equal(t, "b.pdf", merged[0].Name)
	assert.Equal(t, "a.pdf", merged[1].Name)
}

func TestMergeReplacesByName(t *testing.T) {
	existing := []models.Document{
		doc("1", "a.pdf", 10, "2026-08-01T10:00:00Z"),
		doc("2", "b.pdf", 20, "2026-08-01T11:00:00Z"),
	}
	incoming := []models.Document{doc("3", "a.pdf", 30, "2026-08-03T10:00:00Z")}

	merged := Merge(existing, incoming)

	assert.Len(t, merged, 2)
	assert.Equal(t, "a.pdf", merged[0].Name)
	assert.Equal(t, "3", merged[0].ID)
	assert.Equal(t, int64(30), merged[0].Size)
}

func TestMergeSortsDescendingByIndexedAt(t *testing.T) {
	existing := []models.Document{
		doc("1", "old.pdf", 10, "2026-08-01T10:00:00Z"),
		doc("2", "newer.pdf", 20, "2026-08-05T10:00:00Z"),
	}
	incoming := []models.Document{doc("3", "newest.pdf", 30, "2026-08-09T10:00:00Z")}

	merged := Merge(existing, incoming)

	assert.Equal(t, []string{"newest.pdf", "newer.pdf", "old.pdf"},
		[]string{merged[0].Name, merged[1].Name, merged[2].Name})
}

func TestMergeEmptyTimestampsSortLast(t *testing.T) {
	existing := []models.Document{doc("1", "stamped.pdf", 10, "2026-08-01T10:00:00Z")}
	incoming := []models.Document{doc("2", "unstamped.pdf", 20, "")}

	merged := Merge(existing, incoming)

	assert.Equal(t, "stamped.pdf", merged[0].Name)
	assert.Equal(t, "unstamped.pdf", merged[1].Name)
}

func TestMergeLeavesInputsUntouched(t *testing.T) {
	existing := []models.Document{doc("1", "a.pdf", 10, "2026-08-01T10:00:00Z")}
	incoming := []models.Document{doc("2", "a.pdf", 99, "2026-08-02T10:00:00Z")}

	Merge(existing, incoming)

	assert.Equal(t, "1", existing[0].ID)
	assert.Equal(t, int64(10), existing[0].Size)
}

func TestMergeWithNoExisting(t *testing.T) {
	incoming := []models.Document{doc("1", "a.pdf", 10, "2026-08-01T10:00:00Z")}
	merged := Merge(nil, incoming)
	assert.Len(t, merged, 1)
}

func TestLatestIndexedAt(t *testing.T) {
	docs := []models.Document{
		doc("1", "a.pdf", 10, "2026-08-01T10:00:00Z"),
		doc("2", "b.pdf", 20, "2026-08-09T10:00:00Z"),
		doc("3", "c.pdf", 30, ""),
	}
	assert.Equal(t, "2026-08-09T10:00:00Z", LatestIndexedAt(docs))
	assert.Equal(t, "", LatestIndexedAt(nil))
}

func TestTotalSize(t *testing.T) {
	docs := []models.Document{
		doc("1", "a.pdf", 10, ""),
		doc("2", "b.pdf", 20, ""),
	}
	assert.Equal(t, int64(30), TotalSize(docs))
	assert.Equal(t, int64(0), TotalSize(nil))
}

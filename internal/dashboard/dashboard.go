// Package dashboard coordinates document indexing state for the presentation
// layer.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docdash/docdash/internal/api"
	"github.com/docdash/docdash/internal/docs"
	"github.com/docdash/docdash/pkg/models"
)

// Tab identifies the visible dashboard panel.
type Tab string

const (
	TabConversations Tab = "conversations"
	TabDocuments     Tab = "documents"
)

// Storage keys owned by the dashboard.
const (
	documentsKey   = "indexed_documents"
	lastMessageKey = "last_index_message"
)

// ErrNoFiles rejects an indexing request with nothing selected.
var ErrNoFiles = errors.New("no files selected")

// Storage is the slice of the durable store the dashboard needs.
type Storage interface {
	Read(key string) (string, bool)
	Write(key, value string)
}

// IndexClient uploads documents to the remote indexing service.
type IndexClient interface {
	Index(ctx context.Context, files []api.File) (*api.IndexResponse, error)
}

// State is the dashboard data handed to the presentation layer. Indexing and
// Ready are never both true.
type State struct {
	ActiveTab     Tab
	Indexing      bool
	Ready         bool
	Documents     []models.Document
	LastIndexedAt string
	LastMessage   string
}

// Orchestrator owns the dashboard state exclusively. The indexing call runs
// off the event loop, so state access is guarded by a mutex.
type Orchestrator struct {
	storage Storage
	client  IndexClient

	mu    sync.RWMutex
	state State
}

// New creates an orchestrator and loads the persisted document list and last
// status message.
func New(storage Storage, client IndexClient) *Orchestrator {
	o := &Orchestrator{storage: storage, client: client}
	o.state.ActiveTab = TabConversations
	o.state.Ready = true
	o.load()
	return o
}

func (o *Orchestrator) load() {
	if raw, ok := o.storage.Read(documentsKey); ok {
		var documents []models.Document
		if err := json.Unmarshal([]byte(raw), &documents); err != nil {
			log.Printf("dashboard: discarding malformed document list: %v", err)
		} else {
			o.state.Documents = documents
			o.state.LastIndexedAt = docs.LatestIndexedAt(documents)
		}
	}
	if msg, ok := o.storage.Read(lastMessageKey); ok {
		o.state.LastMessage = msg
	}
}

// State returns a copy of the current dashboard state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	st := o.state
	st.Documents = append([]models.Document(nil), o.state.Documents...)
	return st
}

// Ready reports whether chat sends are currently allowed.
func (o *Orchestrator) Ready() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state.Ready
}

// SetTab switches the visible panel.
func (o *Orchestrator) SetTab(tab Tab) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.ActiveTab = tab
}

// IndexDocuments uploads the given files and merges the results into the
// indexed-document set. Readiness is suspended for the duration and restored
// whatever the outcome; a failure is returned to the caller after cleanup so
// the presentation layer can surface it, but it is not fatal to the session.
func (o *Orchestrator) IndexDocuments(ctx context.Context, files []api.File) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	o.mu.Lock()
	o.state.Indexing = true
	o.state.Ready = false
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.state.Indexing = false
		o.state.Ready = true
		o.mu.Unlock()
	}()

	resp, err := o.client.Index(ctx, files)
	if err != nil {
		return err
	}

	indexedAt := time.Now().Format(time.RFC3339)
	incoming := make([]models.Document, 0, len(files))
	for _, f := range files {
		incoming = append(incoming, models.Document{
			ID:        uuid.New().String(),
			Name:      f.Name,
			Size:      int64(len(f.Content)),
			IndexedAt: indexedAt,
		})
	}

	o.mu.Lock()
	o.state.Documents = docs.Merge(o.state.Documents, incoming)
	o.state.LastIndexedAt = docs.LatestIndexedAt(o.state.Documents)
	if resp.Message != "" {
		o.state.LastMessage = resp.Message
	}
	o.mu.Unlock()

	o.saveDocuments()
	if resp.Message != "" {
		o.storage.Write(lastMessageKey, resp.Message)
	}
	return nil
}

func (o *Orchestrator) saveDocuments() {
	o.mu.RLock()
	documents := append([]models.Document(nil), o.state.Documents...)
	o.mu.RUnlock()

	data, err := json.Marshal(documents)
	if err != nil {
		log.Printf("dashboard: cannot marshal document list: %v", err)
		return
	}
	o.storage.Write(documentsKey, string(data))
}

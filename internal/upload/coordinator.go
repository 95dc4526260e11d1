// Package upload coordinates batched highlight-clip uploads: a per-file
// state machine with progress tracking, retry, optimistic placeholder clips,
// and batch-level join reporting.
//
// States move queued → uploading → {completed | failed}; failed items go
// back to uploading on manual retry. All files in a batch upload
// concurrently; the batch result is reported once, after every file has
// settled.
package upload

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vantagemgmt/portal-data/internal/model"
	"github.com/vantagemgmt/portal-data/internal/storage"
)

// State is the lifecycle position of one upload item.
type State string

const (
	StateQueued    State = "queued"
	StateUploading State = "uploading"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Synthetic progress tuning. When no real byte-progress signal lands within
// the stall window, small synthetic increments keep the bar moving — capped
// below completion, since only a real success response may reach 100.
const (
	syntheticTick   = 800 * time.Millisecond
	stallWindow     = 2 * time.Second
	syntheticCap    = 95
	realProgressCap = 99
)

// Uploader sends one file to the media host. Satisfied by *storage.Client.
type Uploader interface {
	Upload(ctx context.Context, playerID int64, filename string, size int64, src io.Reader, onProgress storage.ProgressFunc) (string, error)
}

// Recorder appends a completed clip to the player's persisted highlights.
type Recorder interface {
	AppendBestClip(ctx context.Context, playerID int64, clip model.Clip) error
}

// File is one file of a submitted batch. Content is retained until the item
// completes so a failed upload can be retried without re-entering input.
type File struct {
	Name    string
	Content []byte
}

// Item is a read-only snapshot of one upload.
type Item struct {
	ID       string `json:"id"`
	BatchID  string `json:"batch_id"`
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	State    State  `json:"state"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// BatchResult is the aggregate outcome reported once a batch settles.
type BatchResult struct {
	BatchID   string    `json:"batch_id"`
	PlayerID  int64     `json:"player_id"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	SettledAt time.Time `json:"settled_at"`
}

type item struct {
	id       string
	batchID  string
	playerID int64
	name     string
	content  []byte
	state    State
	progress int
	errMsg   string
	lastReal time.Time
	settled  time.Time
}

type batch struct {
	id        string
	playerID  int64
	pending   int
	succeeded int
	failed    int
	result    *BatchResult
}

// Coordinator owns all in-flight uploads. All mutations of the shared item
// registry go through the mutex; independent completions therefore merge
// per-field instead of clobbering each other.
type Coordinator struct {
	uploader Uploader
	recorder Recorder
	logger   *slog.Logger

	// OnSettled, when set, receives each batch result after every file in
	// the batch has settled.
	OnSettled func(BatchResult)

	// OnCompleted, when set, fires per successful upload — the trigger for
	// an authoritative highlights refetch.
	OnCompleted func(playerID int64)

	mu      sync.Mutex
	items   map[string]*item
	batches map[string]*batch
}

// New creates a Coordinator.
func New(uploader Uploader, recorder Recorder, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		uploader: uploader,
		recorder: recorder,
		logger:   logger,
		items:    make(map[string]*item),
		batches:  make(map[string]*batch),
	}
}

// Start runs the synthetic-progress ticker until ctx is cancelled. Intended
// to be called with `go`.
func (c *Coordinator) Start(ctx context.Context) {
	ticker := time.NewTicker(syntheticTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.syntheticAdvance()
		case <-ctx.Done():
			return
		}
	}
}

// StartBatch registers a batch of files, inserts optimistic placeholders,
// and launches one concurrent upload per file. Returns the batch ID and
// per-file upload IDs in input order. ctx should outlive the originating
// request — uploads continue after the submitting call returns.
func (c *Coordinator) StartBatch(ctx context.Context, playerID int64, files []File) (string, []string) {
	batchID := uuid.NewString()

	c.mu.Lock()
	b := &batch{id: batchID, playerID: playerID, pending: len(files)}
	c.batches[batchID] = b
	ids := make([]string, len(files))
	for i, f := range files {
		it := &item{
			id:       uuid.NewString(),
			batchID:  batchID,
			playerID: playerID,
			name:     f.Name,
			content:  f.Content,
			state:    StateQueued,
		}
		c.items[it.id] = it
		ids[i] = it.id
	}
	c.mu.Unlock()

	for _, id := range ids {
		go c.run(ctx, id)
	}
	return batchID, ids
}

// Retry relaunches a failed item. Returns false when the item is unknown or
// not in the failed state.
func (c *Coordinator) Retry(ctx context.Context, id string) bool {
	c.mu.Lock()
	it, ok := c.items[id]
	if !ok || it.state != StateFailed {
		c.mu.Unlock()
		return false
	}
	it.state = StateQueued
	it.progress = 0
	it.errMsg = ""
	b := c.batches[it.batchID]
	if b != nil {
		b.pending++
		b.failed--
		b.result = nil
	}
	c.mu.Unlock()

	go c.run(ctx, id)
	return true
}

// run drives one item through uploading to a terminal state.
func (c *Coordinator) run(ctx context.Context, id string) {
	c.mu.Lock()
	it, ok := c.items[id]
	if !ok || (it.state != StateQueued) {
		c.mu.Unlock()
		return
	}
	it.state = StateUploading
	it.lastReal = time.Now()
	playerID, name, content := it.playerID, it.name, it.content
	c.mu.Unlock()

	url, err := c.uploader.Upload(ctx, playerID, name, int64(len(content)),
		bytes.NewReader(content), func(sent, total int64) {
			c.realProgress(id, sent, total)
		})
	if err == nil && c.recorder != nil {
		err = c.recorder.AppendBestClip(ctx, playerID, model.Clip{Name: name, VideoURL: url})
	}

	if err != nil {
		c.settle(id, StateFailed, err.Error())
		c.logger.Warn("clip upload failed", "upload_id", id, "name", name, "error", err)
		return
	}
	c.settle(id, StateCompleted, "")
	c.logger.Info("clip upload completed", "upload_id", id, "name", name)

	if c.OnCompleted != nil {
		c.OnCompleted(playerID)
	}
}

func (c *Coordinator) realProgress(id string, sent, total int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[id]
	if !ok || it.state != StateUploading {
		return
	}
	it.lastReal = time.Now()
	if total <= 0 {
		return
	}
	pct := int(sent * 100 / total)
	if pct > realProgressCap {
		pct = realProgressCap
	}
	if pct > it.progress {
		it.progress = pct
	}
}

// syntheticAdvance nudges stalled uploads so the UI stays responsive.
func (c *Coordinator) syntheticAdvance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for _, it := range c.items {
		if it.state != StateUploading {
			continue
		}
		if now.Sub(it.lastReal) < stallWindow {
			continue
		}
		if it.progress < syntheticCap {
			it.progress++
		}
	}
}

func (c *Coordinator) settle(id string, state State, errMsg string) {
	var result *BatchResult

	c.mu.Lock()
	it, ok := c.items[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	it.state = state
	it.errMsg = errMsg
	it.settled = time.Now()
	if state == StateCompleted {
		it.progress = 100
		it.content = nil
	}

	if b := c.batches[it.batchID]; b != nil {
		b.pending--
		switch state {
		case StateCompleted:
			b.succeeded++
		case StateFailed:
			b.failed++
		}
		if b.pending == 0 {
			b.result = &BatchResult{
				BatchID:   b.id,
				PlayerID:  b.playerID,
				Total:     b.succeeded + b.failed,
				Succeeded: b.succeeded,
				Failed:    b.failed,
				SettledAt: time.Now(),
			}
			result = b.result
		}
	}
	c.mu.Unlock()

	if result != nil {
		c.logger.Info("upload batch settled",
			"batch_id", result.BatchID, "succeeded", result.Succeeded, "failed", result.Failed)
		if c.OnSettled != nil {
			c.OnSettled(*result)
		}
	}
}

// Snapshot returns the current state of one item.
func (c *Coordinator) Snapshot(id string) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[id]
	if !ok {
		return Item{}, false
	}
	return snapshot(it), true
}

// BatchSnapshot returns the batch result once settled, or the live item
// states while uploads are in flight.
func (c *Coordinator) BatchSnapshot(batchID string) (*BatchResult, []Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.batches[batchID]
	if !ok {
		return nil, nil, false
	}
	var items []Item
	for _, it := range c.items {
		if it.batchID == batchID {
			items = append(items, snapshot(it))
		}
	}
	return b.result, items, true
}

// PendingClips returns the optimistic placeholder clips for a player, to be
// prepended ahead of the authoritative highlights list.
func (c *Coordinator) PendingClips(playerID int64) []model.Clip {
	c.mu.Lock()
	defer c.mu.Unlock()
	var clips []model.Clip
	for _, it := range c.items {
		if it.playerID != playerID {
			continue
		}
		clip := model.Clip{Name: it.name, UploadID: it.id}
		switch it.state {
		case StateQueued, StateUploading:
			clip.Uploading = true
		case StateFailed:
			clip.UploadFailed = true
			clip.Error = it.errMsg
		case StateCompleted:
			clip.JustCompleted = true
		}
		clips = append(clips, clip)
	}
	return clips
}

// Prune drops settled items and batch results older than the window.
// Completed placeholders disappear here once the authoritative list has had
// time to reconcile; failed items older than the window stop being
// retryable.
func (c *Coordinator) Prune(olderThan time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for id, it := range c.items {
		if it.state != StateCompleted && it.state != StateFailed {
			continue
		}
		if it.settled.Before(cutoff) {
			delete(c.items, id)
			removed++
		}
	}
	for id, b := range c.batches {
		if b.pending == 0 && b.result != nil && b.result.SettledAt.Before(cutoff) {
			delete(c.batches, id)
		}
	}
	return removed
}

func snapshot(it *item) Item {
	return Item{
		ID:       it.id,
		BatchID:  it.batchID,
		PlayerID: it.playerID,
		Name:     it.name,
		State:    it.state,
		Progress: it.progress,
		Error:    it.errMsg,
	}
}

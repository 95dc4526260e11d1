package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vantagemgmt/portal-data/internal/cache"
	"github.com/vantagemgmt/portal-data/internal/config"
	"github.com/vantagemgmt/portal-data/internal/model"
	"github.com/vantagemgmt/portal-data/internal/normalize"
	"github.com/vantagemgmt/portal-data/internal/session"
	"github.com/vantagemgmt/portal-data/internal/store"
	"github.com/vantagemgmt/portal-data/internal/upload"
)

// fakeStorage implements Storage over in-memory maps.
type fakeStorage struct {
	players map[int64]normalize.RawPlayer
	drafts  map[int64]model.ScoutingDraft
	saved   []model.ScoutingDraft
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		players: make(map[int64]normalize.RawPlayer),
		drafts:  make(map[int64]model.ScoutingDraft),
	}
}

func (f *fakeStorage) PlayerByID(ctx context.Context, id int64) (normalize.RawPlayer, error) {
	p, ok := f.players[id]
	if !ok {
		return normalize.RawPlayer{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStorage) AnalysesByPlayer(ctx context.Context, playerID int64) ([]model.Analysis, error) {
	return nil, nil
}

func (f *fakeStorage) ActionsByAnalysis(ctx context.Context, analysisID int64) ([]model.Action, error) {
	return nil, nil
}

func (f *fakeStorage) ProgramsByPlayer(ctx context.Context, playerID int64) ([]model.Program, error) {
	return nil, nil
}

func (f *fakeStorage) InvoicesByPlayer(ctx context.Context, playerID int64) ([]model.Invoice, error) {
	return nil, nil
}

func (f *fakeStorage) TestsByPlayer(ctx context.Context, playerID int64) ([]model.TestResult, error) {
	return nil, nil
}

func (f *fakeStorage) InsertTestResult(ctx context.Context, t model.TestResult) (int64, error) {
	return 1, nil
}

func (f *fakeStorage) SubmitTestResult(ctx context.Context, id int64) error { return nil }

func (f *fakeStorage) UpdatesByPlayer(ctx context.Context, playerID int64) ([]model.Update, error) {
	return nil, nil
}

func (f *fakeStorage) Concepts(ctx context.Context) ([]model.Concept, error) { return nil, nil }

func (f *fakeStorage) RemoveBestClip(ctx context.Context, playerID int64, videoURL string) error {
	return nil
}

func (f *fakeStorage) RenameBestClip(ctx context.Context, playerID int64, videoURL, newName string) error {
	return nil
}

func (f *fakeStorage) ScoutingDraftsByScout(ctx context.Context, scoutEmail string) ([]model.ScoutingDraft, error) {
	return nil, nil
}

func (f *fakeStorage) ScoutingDraftByID(ctx context.Context, id int64) (model.ScoutingDraft, error) {
	d, ok := f.drafts[id]
	if !ok {
		return model.ScoutingDraft{}, store.ErrNotFound
	}
	return d, nil
}

func (f *fakeStorage) SaveScoutingDraft(ctx context.Context, d model.ScoutingDraft) (int64, error) {
	f.saved = append(f.saved, d)
	if d.ID != 0 {
		f.drafts[d.ID] = d
		return d.ID, nil
	}
	id := int64(len(f.drafts) + 1)
	d.ID = id
	f.drafts[id] = d
	return id, nil
}

func (f *fakeStorage) DeleteScoutingDraft(ctx context.Context, id int64) error {
	if _, ok := f.drafts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.drafts, id)
	return nil
}

func (f *fakeStorage) SubmitScoutingDraft(ctx context.Context, draftID int64) (int64, error) {
	if _, ok := f.drafts[draftID]; !ok {
		return 0, store.ErrNotFound
	}
	delete(f.drafts, draftID)
	return draftID, nil
}

func (f *fakeStorage) ScoutMessages(ctx context.Context, scoutEmail string) ([]model.ScoutMessage, error) {
	return nil, nil
}

func (f *fakeStorage) InsertScoutMessage(ctx context.Context, m model.ScoutMessage) (int64, error) {
	return 1, nil
}

// fakeDurable backs the session store with a fixed key-to-email map.
type fakeDurable struct {
	identities map[string]string
}

func (f *fakeDurable) IdentityLookup(ctx context.Context, key string) (string, bool, error) {
	email, ok := f.identities[key]
	return email, ok, nil
}

func (f *fakeDurable) IdentityUpsert(ctx context.Context, key, email string) error { return nil }

func (f *fakeDurable) IdentityDelete(ctx context.Context, key string) error { return nil }

// newTestHandler builds a Handler over fakes: the given storage, a disabled
// cache, an idle upload coordinator, and a session store that knows "key-a".
func newTestHandler(st *fakeStorage) *Handler {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	durable := &fakeDurable{identities: map[string]string{
		"key-a": "a@scouts.example",
	}}
	return New(Deps{
		Store:    st,
		Cache:    cache.New(false),
		Sessions: session.NewStore(durable, time.Hour, quiet),
		Uploads:  upload.New(nil, nil, quiet),
		Logger:   quiet,
	}, &config.Config{})
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

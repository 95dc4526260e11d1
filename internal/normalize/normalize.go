// Package normalize turns loosely-shaped persisted blobs (player bio,
// highlights) into canonical records. Historical writes left some blobs
// double-encoded — a JSON string holding another JSON document — so every
// decode here is defensive: parse failures fall back to the previous
// best-known shape and never surface to the caller.
package normalize

import (
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/vantagemgmt/portal-data/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RawPlayer is a player row as read from the database, blobs undecoded.
type RawPlayer struct {
	ID         int64
	Email      string
	Name       string
	Position   string
	Bio        []byte
	Highlights []byte
}

// Player produces a flat, display-safe player record from a raw row.
// Bio keys are merged flat onto the record; a string-typed "bio" key nested
// inside the blob is parsed and merged over the outer object (inner wins),
// then dropped. Malformed JSON at any stage is discarded, never an error.
func Player(raw RawPlayer) model.Player {
	p := model.Player{
		ID:         raw.ID,
		Email:      raw.Email,
		Name:       raw.Name,
		Position:   raw.Position,
		Highlights: HighlightsBlob(raw.Highlights),
	}
	p.Bio = BioBlob(raw.Bio)
	return p
}

// BioBlob decodes a bio blob into a flat map, unwrapping one level of
// double-encoding. Returns nil for missing or unusable input.
func BioBlob(raw []byte) map[string]any {
	outer := MaybeObject(raw)
	if outer == nil {
		return nil
	}
	inner, ok := outer["bio"].(string)
	if !ok {
		return outer
	}
	nested := decodeObject([]byte(inner))
	if nested == nil {
		// Inner parse failed: keep the outer shape as-is.
		return outer
	}
	merged := make(map[string]any, len(outer)+len(nested))
	for k, v := range outer {
		merged[k] = v
	}
	for k, v := range nested {
		merged[k] = v
	}
	delete(merged, "bio")
	return merged
}

// HighlightsBlob coerces a highlights blob into the canonical two-list shape.
// Missing or malformed lists default to empty, never nil.
func HighlightsBlob(raw []byte) model.Highlights {
	h := model.Highlights{
		MatchHighlights: []model.Clip{},
		BestClips:       []model.Clip{},
	}
	obj := MaybeObject(raw)
	if obj == nil {
		return h
	}
	h.MatchHighlights = clipList(obj["matchHighlights"])
	h.BestClips = clipList(obj["bestClips"])
	return h
}

// MergeHighlights overlays fresh server highlights while preserving
// locally-tracked in-flight clips, prepended ahead of the server list so a
// background refetch never visually discards an upload in progress.
// JustCompleted clips already present in the fresh list are reconciled to
// the server copy instead of kept.
func MergeHighlights(local, fresh model.Highlights) model.Highlights {
	out := model.Highlights{
		MatchHighlights: fresh.MatchHighlights,
		BestClips:       fresh.BestClips,
	}
	if out.MatchHighlights == nil {
		out.MatchHighlights = []model.Clip{}
	}
	if out.BestClips == nil {
		out.BestClips = []model.Clip{}
	}

	var carry []model.Clip
	for _, c := range local.BestClips {
		if !c.InFlight() {
			continue
		}
		if c.JustCompleted && containsClip(out.BestClips, c.Name) {
			continue
		}
		carry = append(carry, c)
	}
	if len(carry) > 0 {
		out.BestClips = append(carry, out.BestClips...)
	}
	return out
}

// MaybeObject decodes raw JSON that may be an object or a JSON-encoded
// string wrapping an object. Returns nil when the input is empty, null, or
// not an object at any level.
func MaybeObject(raw []byte) map[string]any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		return t
	case string:
		return decodeObject([]byte(t))
	default:
		return nil
	}
}

func decodeObject(raw []byte) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func clipList(v any) []model.Clip {
	items, ok := v.([]any)
	if !ok {
		return []model.Clip{}
	}
	clips := make([]model.Clip, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		clip := model.Clip{
			Name:     stringField(obj, "name"),
			VideoURL: stringField(obj, "videoUrl", "video_url", "url"),
		}
		if clip.Name == "" && clip.VideoURL == "" {
			continue
		}
		clips = append(clips, clip)
	}
	return clips
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func containsClip(clips []model.Clip, name string) bool {
	for _, c := range clips {
		if c.Name == name {
			return true
		}
	}
	return false
}

// StatsBlob decodes a striker_stats blob into a numeric map, dropping
// non-numeric values. Handles the same double-encoding as bio.
func StatsBlob(raw []byte) map[string]float64 {
	obj := MaybeObject(raw)
	if obj == nil {
		return nil
	}
	stats := make(map[string]float64, len(obj))
	for k, v := range obj {
		if f, ok := numeric(v); ok {
			stats[k] = f
		}
	}
	if len(stats) == 0 {
		return nil
	}
	return stats
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

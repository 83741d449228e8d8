// Package remotesync pushes unsynced entries to a remote server and applies what it sends back.
package remotesync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/neilberkman/tickr/internal/core/models"
)

// ErrNoServer is returned when no sync server is configured
var ErrNoServer = errors.New("no sync server configured")

// Source is the local side of a sync; *db.DB implements it
type Source interface {
	GetUnsyncedEntries(ctx context.Context) ([]models.TimeEntry, error)
	SaveTimeEntry(ctx context.Context, entry models.TimeEntry) error
	MarkEntrySynced(ctx context.Context, id, syncID string) (bool, error)
}

// Result counts what a sync did
type Result struct {
	Pushed int
	Pulled int
	Marked int
}

// Syncer runs one push/pull exchange per call. There are no retries.
type Syncer struct {
	src       Source
	serverURL string
	client    *http.Client
	log       zerolog.Logger
}

// New creates a syncer for serverURL
func New(src Source, serverURL string, timeout time.Duration, log zerolog.Logger) *Syncer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Syncer{
		src:       src,
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}
}

// Sync sends unsynced entries, saves the entries the server returns and
// marks the acknowledged ids as synced. Any failed step aborts the rest.
func (s *Syncer) Sync(ctx context.Context, token string) (Result, error) {
	var res Result
	if s.serverURL == "" {
		return res, ErrNoServer
	}

	// 1. Get unsynced entries
	unsynced, err := s.src.GetUnsyncedEntries(ctx)
	if err != nil {
		return res, fmt.Errorf("read unsynced entries: %w", err)
	}
	res.Pushed = len(unsynced)

	payload := make([]wireEntry, 0, len(unsynced))
	for _, e := range unsynced {
		payload = append(payload, toWire(e))
	}

	// 2. Send to server
	resp, err := s.post(ctx, token, payload)
	if err != nil {
		return res, err
	}

	// 3. Apply server changes; the server's copy is authoritative
	for _, w := range resp.Entries {
		e := fromWire(w)
		e.Synced = true
		if err := s.src.SaveTimeEntry(ctx, e); err != nil {
			return res, fmt.Errorf("save server entry %s: %w", e.ID, err)
		}
		res.Pulled++
	}

	// 4. Mark entries as synced
	for _, id := range resp.SyncedIDs {
		ok, err := s.src.MarkEntrySynced(ctx, id, "")
		if err != nil {
			return res, fmt.Errorf("mark %s synced: %w", id, err)
		}
		if ok {
			res.Marked++
		} else {
			s.log.Warn().Str("entry_id", id).Msg("server acknowledged an unknown entry")
		}
	}

	s.log.Info().Int("pushed", res.Pushed).Int("pulled", res.Pulled).Int("marked", res.Marked).Msg("sync complete")
	return res, nil
}

func (s *Syncer) post(ctx context.Context, token string, payload []wireEntry) (*syncResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/api/sync", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post entries: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sync server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sync response: %w", err)
	}
	return &out, nil
}

// Package editor holds the editable form of a stored time entry.
package editor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/store"
)

// ErrBlankActivity is returned by Save when the activity is empty
var ErrBlankActivity = errors.New("activity is required")

// Updater is the part of the store the editor writes through
type Updater interface {
	Update(ctx context.Context, id string, f store.Fields) error
}

// Draft is an entry under edit. Elapsed is derived from Start and End,
// never edited directly.
type Draft struct {
	ID          string
	Activity    string
	Description string
	TagsInput   string
	Start       time.Time
	End         time.Time
}

// NewDraft prefills a draft from an entry
func NewDraft(e models.TimeEntry) Draft {
	return Draft{
		ID:          e.ID,
		Activity:    e.Activity,
		Description: e.Description,
		TagsInput:   models.JoinTags(e.Tags),
		Start:       e.Timestamp,
		End:         e.End(),
	}
}

// Elapsed is whole seconds from Start to End, floored and never negative
func (d Draft) Elapsed() int64 {
	secs := int64(d.End.Sub(d.Start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// Fields builds the replacement payload for the store
func (d Draft) Fields() store.Fields {
	return store.Fields{
		Activity:    strings.TrimSpace(d.Activity),
		Description: strings.TrimSpace(d.Description),
		Tags:        models.ParseTags(d.TagsInput),
		Elapsed:     d.Elapsed(),
		Timestamp:   d.Start,
	}
}

// Validate rejects drafts the tracker itself could never produce
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Activity) == "" {
		return ErrBlankActivity
	}
	return nil
}

// Save validates and sends the draft as a full replacement
func (d Draft) Save(ctx context.Context, u Updater) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return u.Update(ctx, d.ID, d.Fields())
}

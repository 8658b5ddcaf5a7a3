package services

import (
	"context"
	"sync"
	"time"

	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/logging"
	"github.com/quickpad-app/quickpad/internal/server/models"
	"github.com/quickpad-app/quickpad/internal/server/repositories/attachments"
	"github.com/quickpad-app/quickpad/internal/server/repositories/notes"
)

// userLocks hands out one mutex per username so read-modify-write cycles on
// a user's store file cannot interleave. Reads stay lock-free.
type userLocks struct {
	m sync.Map
}

func (l *userLocks) lock(username string) func() {
	v, _ := l.m.LoadOrStore(username, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type NoteService struct {
	notes       notes.Repository
	attachments attachments.Repository
	logger      logging.Logger

	locks userLocks

	// lastStamp tracks the most recent timestamp issued per user, so two
	// appends within the same microsecond cannot produce duplicate keys.
	lastStampMu sync.Mutex
	lastStamp   map[string]time.Time

	now func() time.Time
}

func NewNoteService(noteRepo notes.Repository, attachmentRepo attachments.Repository, logger logging.Logger) *NoteService {
	return &NoteService{
		notes:       noteRepo,
		attachments: attachmentRepo,
		logger:      logger.With("module", "note_service"),
		lastStamp:   make(map[string]time.Time),
		now:         time.Now,
	}
}

// nextTimestamp returns the current UTC instant, nudged forward by one
// microsecond when it would collide with the previous stamp issued for the
// same user. Timestamp is the note's only key, so it must stay unique.
func (s *NoteService) nextTimestamp(username string) string {
	s.lastStampMu.Lock()
	defer s.lastStampMu.Unlock()

	t := s.now().UTC().Truncate(time.Microsecond)
	if last, ok := s.lastStamp[username]; ok && !t.After(last) {
		t = last.Add(time.Microsecond)
	}
	s.lastStamp[username] = t

	return models.FormatTimestamp(t)
}

// List returns all of the user's notes, sorted ascending by timestamp.
func (s *NoteService) List(ctx context.Context, username string) ([]models.Note, error) {
	return s.notes.List(ctx, username)
}

// Add validates and appends a new note, stamping it with the current UTC
// instant. Either text or an attachment must be present.
func (s *NoteService) Add(ctx context.Context, username, text string, attachment *models.Attachment) (models.Note, error) {
	if text == "" && attachment == nil {
		return models.Note{}, common.ErrorValidation
	}
	// an attachment without a stored name references nothing on disk
	if attachment != nil && attachment.StoredName == "" {
		return models.Note{}, common.ErrorValidation
	}

	unlock := s.locks.lock(username)
	defer unlock()

	note := models.Note{
		Text:       text,
		Timestamp:  s.nextTimestamp(username),
		Attachment: attachment,
	}

	if err := s.notes.Append(ctx, username, note); err != nil {
		s.logger.Error(ctx, "appending note", "username", username, "error", err)
		return models.Note{}, common.ErrorInternal
	}

	return note, nil
}

// Edit replaces the text of the note with the given timestamp. The
// attachment and the timestamp itself are never touched.
func (s *NoteService) Edit(ctx context.Context, username, timestamp, newText string) error {
	unlock := s.locks.lock(username)
	defer unlock()

	list, err := s.notes.List(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "loading notes", "username", username, "error", err)
		return common.ErrorInternal
	}

	found := false
	for i := range list {
		if list[i].Timestamp == timestamp {
			list[i].Text = newText
			found = true
			break
		}
	}
	if !found {
		return common.ErrorNotFound
	}

	if err := s.notes.RewriteAll(ctx, username, list); err != nil {
		s.logger.Error(ctx, "rewriting notes", "username", username, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// Delete removes the note with the given timestamp along with its
// attachment file. An attachment file already gone from disk is tolerated;
// the note record is removed regardless.
func (s *NoteService) Delete(ctx context.Context, username, timestamp string) error {
	unlock := s.locks.lock(username)
	defer unlock()

	list, err := s.notes.List(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "loading notes", "username", username, "error", err)
		return common.ErrorInternal
	}

	idx := -1
	for i := range list {
		if list[i].Timestamp == timestamp {
			idx = i
			break
		}
	}
	if idx < 0 {
		return common.ErrorNotFound
	}

	if att := list[idx].Attachment; att != nil && att.StoredName != "" {
		if err := s.attachments.Delete(ctx, username, att.StoredName); err != nil {
			// the record still goes away; the orphaned file is the lesser evil
			s.logger.Warn(ctx, "deleting attachment file", "username", username, "stored_name", att.StoredName, "error", err)
		}
	}

	list = append(list[:idx], list[idx+1:]...)

	if err := s.notes.RewriteAll(ctx, username, list); err != nil {
		s.logger.Error(ctx, "rewriting notes", "username", username, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// Clear irreversibly removes the user's note store and attachment
// directory. The caller is responsible for re-verifying the password
// beforehand; Clear itself trusts the caller.
func (s *NoteService) Clear(ctx context.Context, username string) error {
	unlock := s.locks.lock(username)
	defer unlock()

	if err := s.notes.Clear(ctx, username); err != nil {
		s.logger.Error(ctx, "clearing note store", "username", username, "error", err)
		return common.ErrorInternal
	}
	if err := s.attachments.Clear(ctx, username); err != nil {
		s.logger.Error(ctx, "clearing attachments", "username", username, "error", err)
		return common.ErrorInternal
	}
	return nil
}

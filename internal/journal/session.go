package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/undoable/internal/history"
)

// Entry is one journaled history event.
type Entry struct {
	Seq       int64             `json:"seq"`
	Kind      history.EventKind `json:"kind"`
	Commands  int               `json:"commands"`
	UndoDepth int               `json:"undo_depth"`
	RedoDepth int               `json:"redo_depth"`
	Staged    int               `json:"staged"`
}

// SessionInfo describes a journaled session.
type SessionInfo struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Events int    `json:"events"`
}

// Session journals the events of one History. It implements
// history.Observer.
//
// Observe cannot return errors; the first write failure is logged and kept
// for Err, and later events are still attempted.
type Session struct {
	j     *Journal
	ctx   context.Context
	id    string
	clock history.Clock
	err   error
}

// Begin registers a new session. The session writes with ctx for its whole
// lifetime.
func (j *Journal) Begin(ctx context.Context, label string) (*Session, error) {
	id := uuid.Must(uuid.NewV7()).String()
	if _, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, label) VALUES (?, ?)`, id, label); err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return &Session{j: j, ctx: ctx, id: id}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Err returns the first write failure, if any.
func (s *Session) Err() error {
	return s.err
}

// Observe implements history.Observer.
func (s *Session) Observe(ev history.Event) {
	if err := s.write(ev); err != nil {
		s.j.logger.Error("journal write failed",
			"session", s.id,
			"kind", string(ev.Kind),
			"error", err,
		)
		if s.err == nil {
			s.err = err
		}
	}
}

func (s *Session) write(ev history.Event) error {
	seq := s.clock.Next()
	_, err := s.j.db.ExecContext(s.ctx, `
		INSERT INTO history_events
		(session_id, seq, kind, commands, undo_depth, redo_depth, staged)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		s.id,
		seq,
		string(ev.Kind),
		ev.Commands,
		ev.UndoDepth,
		ev.RedoDepth,
		ev.Staged,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Entries returns the events of a session ordered by seq.
// Returns an empty slice (not nil) if the session has no events.
func (j *Journal) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, kind, commands, undo_depth, redo_depth, staged
		FROM history_events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.Seq, &kind, &e.Commands, &e.UndoDepth, &e.RedoDepth, &e.Staged); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind = history.EventKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Sessions lists every session with its event count, ordered by id.
// UUIDv7 ids sort by creation time.
func (j *Journal) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.label, COUNT(e.seq)
		FROM sessions s
		LEFT JOIN history_events e ON e.session_id = s.id
		GROUP BY s.id, s.label
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.Label, &info.Events); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// CountByKind returns how many events of each kind a session recorded.
func (j *Journal) CountByKind(ctx context.Context, sessionID string) (map[history.EventKind]int, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM history_events
		WHERE session_id = ?
		GROUP BY kind
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query kinds: %w", err)
	}
	defer rows.Close()

	counts := make(map[history.EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan kind: %w", err)
		}
		counts[history.EventKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kinds: %w", err)
	}
	return counts, nil
}

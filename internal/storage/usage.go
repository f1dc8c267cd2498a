package storage

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RecordActions appends a batch of records in one transaction.
//
// Failures are logged and swallowed; the journal never blocks the engine.
func (s *SQLiteStorage) RecordActions(records []ActionRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.insertActions(records); err != nil {
		s.logger.Warn("failed to record actions", zap.Int("count", len(records)), zap.Error(err))
	}
	return nil
}

func (s *SQLiteStorage) insertActions(records []ActionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO action_log (session_id, kind, subject_id, ts, duration, window_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var duration sql.NullInt64
		if r.Duration != nil {
			duration = sql.NullInt64{Int64: *r.Duration, Valid: true}
		}
		var windowID sql.NullString
		if r.WindowID != "" {
			windowID = sql.NullString{String: r.WindowID, Valid: true}
		}

		if _, err := stmt.Exec(r.SessionID, r.Kind, r.SubjectID, r.Timestamp, duration, windowID); err != nil {
			return fmt.Errorf("failed to insert action: %w", err)
		}
	}

	return tx.Commit()
}

// History returns journaled actions matching the filter, oldest first.
func (s *SQLiteStorage) History(filter HistoryFilter) ([]ActionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return []ActionRecord{}, nil
	}

	query := `
		SELECT session_id, kind, subject_id, ts, duration, window_id
		FROM action_log
		WHERE ts >= ?
		  AND (? = '' OR subject_id = ?)
		  AND (? = '' OR session_id = ?)
		ORDER BY ts DESC, id DESC
	`
	args := []interface{}{filter.Since, filter.SubjectID, filter.SubjectID, filter.SessionID, filter.SessionID}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query action history: %w", err)
	}
	defer rows.Close()

	var records []ActionRecord
	for rows.Next() {
		var r ActionRecord
		var duration sql.NullInt64
		var windowID sql.NullString

		if err := rows.Scan(&r.SessionID, &r.Kind, &r.SubjectID, &r.Timestamp, &duration, &windowID); err != nil {
			s.logger.Warn("failed to scan action row", zap.Error(err))
			continue
		}
		if duration.Valid {
			d := duration.Int64
			r.Duration = &d
		}
		r.WindowID = windowID.String

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read action history: %w", err)
	}

	// Newest-first from the query so LIMIT keeps the latest; flip for output.
	out := make([]ActionRecord, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out, nil
}

// Clear removes every journaled action.
func (s *SQLiteStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	if _, err := s.db.Exec("DELETE FROM action_log"); err != nil {
		return fmt.Errorf("failed to clear action log: %w", err)
	}
	return nil
}

// Cleanup removes actions older than retention.
func (s *SQLiteStorage) Cleanup(retention time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return 0, nil
	}

	cutoff := time.Now().Add(-retention).UnixMilli()

	res, err := s.db.Exec("DELETE FROM action_log WHERE ts < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup action log: %w", err)
	}
	removed, _ := res.RowsAffected()

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.logger.Warn("failed to vacuum database", zap.Error(err))
	}

	return removed, nil
}

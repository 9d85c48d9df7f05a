package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

// timeFormat is fixed-width so that created_at sorts as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Run operations

// SaveFriendRun stores a friend result set as a new run.
func (s *Store) SaveFriendRun(targetID, inputPath string, rows []matcher.FriendRow) (*Run, error) {
	return s.saveRun(targetID, ActionFriends, inputPath, len(rows), func(tx *sql.Tx, runID string) error {
		stmt, err := tx.Prepare(`
			INSERT INTO friend_rows
			(run_id, friend_id, match_score, num_reviews, average_delta, reviews_in_common, average_error)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return eris.Wrap(err, "store: prepare friend insert")
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.Exec(runID, r.FriendID, r.MatchScore, r.NumReviews,
				r.AverageDelta, r.ReviewsInCommon, r.AverageError); err != nil {
				return eris.Wrapf(err, "store: insert friend %s", r.FriendID)
			}
		}
		return nil
	})
}

// SaveBusinessRun stores a business result set as a new run.
func (s *Store) SaveBusinessRun(targetID, inputPath string, rows []matcher.BusinessRow) (*Run, error) {
	return s.saveRun(targetID, ActionBusinesses, inputPath, len(rows), func(tx *sql.Tx, runID string) error {
		stmt, err := tx.Prepare(`
			INSERT INTO business_rows
			(run_id, business_id, relevance, num_references, total_match_scores, business_reviews,
			 business_average, predicted_average, reviewer_id, reviewer_stars, reviewer_contrib)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return eris.Wrap(err, "store: prepare business insert")
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.Exec(runID, r.BusinessID, r.Relevance, r.NumReferences,
				r.TotalMatchScores, r.BusinessReviews, r.BusinessAverage, r.PredictedAverage,
				r.ReviewerID, r.ReviewerStars, r.ReviewerContrib); err != nil {
				return eris.Wrapf(err, "store: insert business %s", r.BusinessID)
			}
		}
		return nil
	})
}

// saveRun inserts the run header and its rows in one transaction.
func (s *Store) saveRun(targetID, action, inputPath string, count int, insertRows func(*sql.Tx, string) error) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		TargetID:  targetID,
		Action:    action,
		InputPath: inputPath,
		RowCount:  count,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, eris.Wrap(err, "store: begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, target_id, action, input_path, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.TargetID, run.Action, run.InputPath, run.RowCount, run.CreatedAt.Format(timeFormat))
	if err != nil {
		return nil, classify(err, "store: insert run")
	}

	if err := insertRows(tx, run.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "store: commit run")
	}
	return run, nil
}

// ListRuns returns saved runs, newest first. An empty targetID lists all.
func (s *Store) ListRuns(targetID string) ([]*Run, error) {
	query := `
		SELECT id, target_id, action, input_path, row_count, created_at
		FROM runs
		WHERE ? = '' OR target_id = ?
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := s.db.Query(query, targetID, targetID)
	if err != nil {
		return nil, classify(err, "store: list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate runs")
	}
	return runs, nil
}

// GetRun returns one run by id.
func (s *Store) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, target_id, action, input_path, row_count, created_at
		FROM runs
		WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var createdAt string
	err := sc.Scan(&run.ID, &run.TargetID, &run.Action, &run.InputPath, &run.RowCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, classify(err, "store: scan run")
	}

	run.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, eris.Wrapf(err, "store: parse created_at of run %s", run.ID)
	}
	return &run, nil
}

// GetFriendRows returns the rows of a friend run, ordered by friend id.
func (s *Store) GetFriendRows(runID string) ([]matcher.FriendRow, error) {
	run, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT friend_id, match_score, num_reviews, average_delta, reviews_in_common, average_error
		FROM friend_rows
		WHERE run_id = ?
		ORDER BY friend_id
	`, runID)
	if err != nil {
		return nil, classify(err, "store: query friend rows")
	}
	defer rows.Close()

	out := []matcher.FriendRow{}
	for rows.Next() {
		r := matcher.FriendRow{UserID: run.TargetID}
		if err := rows.Scan(&r.FriendID, &r.MatchScore, &r.NumReviews,
			&r.AverageDelta, &r.ReviewsInCommon, &r.AverageError); err != nil {
			return nil, eris.Wrap(err, "store: scan friend row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate friend rows")
	}
	return out, nil
}

// GetBusinessRows returns the rows of a business run, ordered by business id.
func (s *Store) GetBusinessRows(runID string) ([]matcher.BusinessRow, error) {
	run, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT business_id, relevance, num_references, total_match_scores, business_reviews,
		       business_average, predicted_average, reviewer_id, reviewer_stars, reviewer_contrib
		FROM business_rows
		WHERE run_id = ?
		ORDER BY business_id
	`, runID)
	if err != nil {
		return nil, classify(err, "store: query business rows")
	}
	defer rows.Close()

	out := []matcher.BusinessRow{}
	for rows.Next() {
		r := matcher.BusinessRow{UserID: run.TargetID}
		if err := rows.Scan(&r.BusinessID, &r.Relevance, &r.NumReferences, &r.TotalMatchScores,
			&r.BusinessReviews, &r.BusinessAverage, &r.PredictedAverage,
			&r.ReviewerID, &r.ReviewerStars, &r.ReviewerContrib); err != nil {
			return nil, eris.Wrap(err, "store: scan business row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate business rows")
	}
	return out, nil
}

// DeleteRun removes a run and its rows.
func (s *Store) DeleteRun(runID string) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return classify(err, "store: delete run")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: delete run")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

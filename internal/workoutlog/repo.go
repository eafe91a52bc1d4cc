package workoutlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkalens/liftlog/internal/telemetry/tracing"
	"github.com/mkalens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrLogNotFound = errors.New("workout log not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores a new log for its date. One row per date is enforced by a
// unique constraint; when a second insert races in, the conflict is
// converted into an update of the existing row.
func (r *Repo) Add(ctx context.Context, workoutLog *WorkoutLog) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	day, err := workoutLog.Day()
	if err != nil {
		return nil, fmt.Errorf("parse log date %q: %w", workoutLog.Date, err)
	}

	workoutLog.Normalize()
	exercisesJson, err := json.Marshal(workoutLog.Exercises)
	if err != nil {
		return nil, fmt.Errorf("marshal exercises: %w", err)
	}

	if workoutLog.CreatedAt.IsZero() {
		workoutLog.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO workout_log
				(date, workout_name, muscle_group, skipped, forecast, exercises, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		day, workoutLog.WorkoutName, workoutLog.MuscleGroup,
		workoutLog.Skipped, workoutLog.Forecast, exercisesJson, workoutLog.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			log.Debugf("log for %s exists, updating instead", workoutLog.Date)
			return r.updateByDate(ctx, workoutLog, exercisesJson)
		}
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	workoutLog.ID = id
	return workoutLog, nil
}

func (r *Repo) updateByDate(ctx context.Context, workoutLog *WorkoutLog, exercisesJson []byte) (*WorkoutLog, error) {
	day, err := workoutLog.Day()
	if err != nil {
		return nil, fmt.Errorf("parse log date %q: %w", workoutLog.Date, err)
	}

	rows, err := r.db.Query(
		ctx,
		`UPDATE workout_log
			SET workout_name = $1, muscle_group = $2, skipped = $3, forecast = $4, exercises = $5, delete_after = NULL
			WHERE date = $6
		RETURNING id;`,
		workoutLog.WorkoutName, workoutLog.MuscleGroup,
		workoutLog.Skipped, workoutLog.Forecast, exercisesJson, day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrLogNotFound
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	workoutLog.ID = id
	return workoutLog, nil
}

func (r *Repo) Get(ctx context.Context, id int) (*WorkoutLog, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, date, workout_name, muscle_group, skipped, forecast, exercises, created_at
			FROM workout_log
			WHERE id = $1 AND delete_after IS NULL;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	logs, err := r.rows2logs(rows)
	if err != nil {
		return nil, err
	}

	if len(logs) != 1 {
		return nil, ErrLogNotFound
	}

	return &logs[0], nil
}

func (r *Repo) GetByDate(ctx context.Context, date string) (*WorkoutLog, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, date, workout_name, muscle_group, skipped, forecast, exercises, created_at
			FROM workout_log
			WHERE date = $1 AND delete_after IS NULL;`,
		day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	logs, err := r.rows2logs(rows)
	if err != nil {
		return nil, err
	}

	if len(logs) != 1 {
		return nil, ErrLogNotFound
	}

	return &logs[0], nil
}

// ListBetween returns all live logs in the inclusive from/to range,
// oldest first.
func (r *Repo) ListBetween(ctx context.Context, from, to time.Time) (_ []WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.listBetween")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, date, workout_name, muscle_group, skipped, forecast, exercises, created_at
			FROM workout_log
			WHERE date >= $1 AND date <= $2 AND delete_after IS NULL
			ORDER BY date ASC;`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2logs(rows)
}

func (r *Repo) ListAll(ctx context.Context) ([]WorkoutLog, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, date, workout_name, muscle_group, skipped, forecast, exercises, created_at
			FROM workout_log
			WHERE delete_after IS NULL
			ORDER BY date ASC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2logs(rows)
}

// ListPage returns one page of live logs, newest first, plus the total count.
func (r *Repo) ListPage(ctx context.Context, page, size int) (_ []WorkoutLog, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.page")
	span.SetAttributes(attribute.Int("page", page))
	span.SetAttributes(attribute.Int("size", size))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	countAll, err := r.Count(ctx)
	if err != nil {
		return nil, -1, err
	}

	limit := size
	offset := (page - 1) * size
	if offset > countAll {
		offset = countAll
	}

	log.Tracef("getting workout logs, total count %d, limit %d, offset %d", countAll, limit, offset)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, date, workout_name, muscle_group, skipped, forecast, exercises, created_at
			FROM workout_log
			WHERE delete_after IS NULL
			ORDER BY date DESC
			LIMIT $1
			OFFSET $2;`,
		limit, offset,
	)
	if err != nil {
		return nil, -1, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, -1, err
	}

	logs, err := r.rows2logs(rows)
	if err != nil {
		return nil, -1, err
	}
	return logs, countAll, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	rows, err := r.db.Query(ctx, `SELECT COUNT(*) FROM workout_log WHERE delete_after IS NULL`)
	if err != nil {
		return -1, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return -1, err
	}

	if rows.Next() {
		var count int
		if err := rows.Scan(&count); err == nil {
			return count, nil
		}
	}

	return -1, errors.New("unexpected error, failed to get workout logs count")
}

func (r *Repo) Update(ctx context.Context, workoutLog *WorkoutLog) error {
	day, err := workoutLog.Day()
	if err != nil {
		return fmt.Errorf("parse log date %q: %w", workoutLog.Date, err)
	}

	workoutLog.Normalize()
	exercisesJson, err := json.Marshal(workoutLog.Exercises)
	if err != nil {
		return fmt.Errorf("marshal exercises: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_log
			SET date = $1, workout_name = $2, muscle_group = $3, skipped = $4, forecast = $5, exercises = $6
			WHERE id = $7 AND delete_after IS NULL;`,
		day, workoutLog.WorkoutName, workoutLog.MuscleGroup,
		workoutLog.Skipped, workoutLog.Forecast, exercisesJson, workoutLog.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}

	return nil
}

// Delete marks a log for deletion after the grace period. The row stays
// invisible to reads from this moment on but can still be brought back
// with UndoDelete until the sweeper purges it.
func (r *Repo) Delete(ctx context.Context, id int, deleteAfter time.Time) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_log SET delete_after = $1 WHERE id = $2 AND delete_after IS NULL;`,
		deleteAfter, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

// UndoDelete cancels a pending deletion.
func (r *Repo) UndoDelete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_log SET delete_after = NULL WHERE id = $1 AND delete_after IS NOT NULL;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

// PurgeDue commits all deletions whose grace period has expired and
// returns how many rows went away. Called periodically by the server.
func (r *Repo) PurgeDue(ctx context.Context, now time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workoutlog.purgeDue")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout_log WHERE delete_after IS NOT NULL AND delete_after <= $1;`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repo) rows2logs(rows pgx.Rows) ([]WorkoutLog, error) {
	var logs []WorkoutLog
	for rows.Next() {
		var id int
		var day time.Time
		var workoutName string
		var muscleGroup string
		var skipped bool
		var forecast bool
		var exercisesBytes []byte
		var createdAt time.Time
		if err := rows.Scan(
			&id, &day, &workoutName, &muscleGroup,
			&skipped, &forecast, &exercisesBytes, &createdAt,
		); err != nil {
			return nil, err
		}

		l := WorkoutLog{
			ID:          id,
			Date:        day.Format(DateLayout),
			WorkoutName: workoutName,
			MuscleGroup: muscleGroup,
			Skipped:     skipped,
			Forecast:    forecast,
			CreatedAt:   createdAt,
		}

		if len(exercisesBytes) > 0 {
			if err := json.Unmarshal(exercisesBytes, &l.Exercises); err != nil {
				return nil, fmt.Errorf("unmarshal exercises for log %d: %w", id, err)
			}
		}
		l.Normalize()

		logs = append(logs, l)
	}

	if logs == nil {
		logs = make([]WorkoutLog, 0)
	}

	return logs, nil
}

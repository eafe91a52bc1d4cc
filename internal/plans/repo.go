package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkalens/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrTemplateNotFound = errors.New("template not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListAll returns the whole weekly plan in insertion order. Insertion
// order matters: when two rows share a weekday, the first one wins the
// weekday lookup.
func (r *Repo) ListAll(ctx context.Context) (_ []Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, day_of_week, workout_name, muscle_group, split, exercises
			FROM plan_template
			ORDER BY id ASC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2templates(rows)
}

// ListByDay returns all templates for one weekday, insertion order.
func (r *Repo) ListByDay(ctx context.Context, weekday string) ([]Template, error) {
	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, day_of_week, workout_name, muscle_group, split, exercises
			FROM plan_template
			WHERE LOWER(TRIM(day_of_week)) = LOWER(TRIM($1))
			ORDER BY id ASC;`,
		weekday,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2templates(rows)
}

// ReplaceAll swaps the whole weekly plan in one transaction: delete-all,
// insert-all. The plan is never patched row by row; a failed regeneration
// must leave the previous set fully intact.
func (r *Repo) ReplaceAll(ctx context.Context, templates []Template) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.replaceAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM plan_template;`); err != nil {
		return fmt.Errorf("delete templates: %w", err)
	}

	for i := range templates {
		templates[i].Normalize()
		exercisesJson, marshalErr := json.Marshal(templates[i].Exercises)
		if marshalErr != nil {
			err = fmt.Errorf("marshal exercises for %s: %w", templates[i].DayOfWeek, marshalErr)
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO plan_template (day_of_week, workout_name, muscle_group, split, exercises)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`,
			templates[i].DayOfWeek,
			templates[i].WorkoutName,
			templates[i].MuscleGroup,
			templates[i].Split,
			exercisesJson,
		).Scan(&templates[i].ID)
		if err != nil {
			return fmt.Errorf("insert template for %s: %w", templates[i].DayOfWeek, err)
		}
	}

	log.Debugf("weekly plan replaced, %d templates", len(templates))
	return nil
}

func (r *Repo) rows2templates(rows pgx.Rows) ([]Template, error) {
	var templates []Template
	for rows.Next() {
		var id int
		var dayOfWeek string
		var workoutName string
		var muscleGroup string
		var split string
		var exercisesBytes []byte
		if err := rows.Scan(&id, &dayOfWeek, &workoutName, &muscleGroup, &split, &exercisesBytes); err != nil {
			return nil, err
		}

		t := Template{
			ID:          id,
			DayOfWeek:   dayOfWeek,
			WorkoutName: workoutName,
			MuscleGroup: muscleGroup,
			Split:       split,
		}

		if len(exercisesBytes) > 0 {
			if err := json.Unmarshal(exercisesBytes, &t.Exercises); err != nil {
				return nil, fmt.Errorf("unmarshal exercises for template %d: %w", id, err)
			}
		}
		t.Normalize()

		templates = append(templates, t)
	}

	if templates == nil {
		templates = make([]Template, 0)
	}

	return templates, nil
}

package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkalens/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("profile not found")

// singleProfileID pins the one-and-only profile row.
const singleProfileID = 1

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profiles.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var p Profile
	var restDaysBytes []byte
	err = r.db.
		QueryRow(ctx, `
			SELECT
				name, goal, experience, days_per_week, equipment,
				height_cm, weight_kg, unit_preference, cardio_preference,
				preferred_rest_days, updated_at
			FROM profile
			WHERE id = $1
		`, singleProfileID).
		Scan(
			&p.Name, &p.Goal, &p.Experience, &p.DaysPerWeek, &p.Equipment,
			&p.HeightCm, &p.WeightKg, &p.UnitPreference, &p.CardioPreference,
			&restDaysBytes, &p.UpdatedAt,
		)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if len(restDaysBytes) > 0 {
		if err := json.Unmarshal(restDaysBytes, &p.PreferredRestDays); err != nil {
			return nil, fmt.Errorf("unmarshal preferred rest days: %w", err)
		}
	}
	p.Normalize()

	return &p, nil
}

// Upsert stores the profile, creating the single row on first save.
func (r *Repo) Upsert(ctx context.Context, profile *Profile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profiles.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	profile.Normalize()
	restDaysJson, err := json.Marshal(profile.PreferredRestDays)
	if err != nil {
		return fmt.Errorf("marshal preferred rest days: %w", err)
	}

	profile.UpdatedAt = time.Now()

	_, err = r.db.Exec(ctx, `
		INSERT INTO profile
			(id, name, goal, experience, days_per_week, equipment,
			height_cm, weight_kg, unit_preference, cardio_preference,
			preferred_rest_days, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			goal = EXCLUDED.goal,
			experience = EXCLUDED.experience,
			days_per_week = EXCLUDED.days_per_week,
			equipment = EXCLUDED.equipment,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			unit_preference = EXCLUDED.unit_preference,
			cardio_preference = EXCLUDED.cardio_preference,
			preferred_rest_days = EXCLUDED.preferred_rest_days,
			updated_at = EXCLUDED.updated_at;
	`,
		singleProfileID, profile.Name, profile.Goal, profile.Experience,
		profile.DaysPerWeek, profile.Equipment, profile.HeightCm, profile.WeightKg,
		profile.UnitPreference, profile.CardioPreference, restDaysJson, profile.UpdatedAt,
	)
	return err
}

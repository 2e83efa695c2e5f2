package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	MAX_OPEN_CONNS = 10
)

// ArchivedPlan is one persisted planning result.
type ArchivedPlan struct {
	ID             string    `json:"id"`
	RequestedAt    time.Time `json:"requested_at"`
	StopCount      int       `json:"stop_count"`
	Closed         bool      `json:"closed"`
	Policy         string    `json:"policy"`
	TotalMinutes   float64   `json:"total_minutes"`
	BaseMinutes    float64   `json:"base_minutes"`
	InitialMinutes float64   `json:"initial_minutes"`
	Passes         int       `json:"passes"`
	Moves          int       `json:"moves"`
	Converged      bool      `json:"converged"`
	StopIDs        []string  `json:"stop_ids"`
	Geometry       string    `json:"geometry,omitempty"`
}

// PlanArchive persists finished plans to postgres for later inspection.
type PlanArchive struct {
	db *sql.DB
}

func NewPlanArchive(dsn string) (*PlanArchive, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "open postgres")
	}
	db.SetMaxOpenConns(MAX_OPEN_CONNS)
	if err := db.Ping(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "ping postgres")
	}
	return &PlanArchive{db: db}, nil
}

func (p *PlanArchive) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		requested_at TIMESTAMPTZ NOT NULL,
		stop_count INT NOT NULL,
		closed BOOLEAN NOT NULL,
		policy TEXT NOT NULL,
		total_minutes DOUBLE PRECISION NOT NULL,
		base_minutes DOUBLE PRECISION NOT NULL,
		initial_minutes DOUBLE PRECISION NOT NULL,
		passes INT NOT NULL,
		moves INT NOT NULL,
		converged BOOLEAN NOT NULL,
		stop_ids JSONB NOT NULL,
		geometry TEXT
	)`)
	if err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "migrate plans table")
	}
	return nil
}

func (p *PlanArchive) ArchivePlan(ctx context.Context, result *da.RouteResult, geometry string) (string, error) {
	id := uuid.New().String()

	stopIDs, err := json.Marshal(result.GetStopIDs())
	if err != nil {
		return "", util.WrapErrorf(err, util.ErrInternalServerError, "marshal stop ids")
	}

	_, err = p.db.ExecContext(ctx, `INSERT INTO plans
		(id, requested_at, stop_count, closed, policy, total_minutes, base_minutes,
		 initial_minutes, passes, moves, converged, stop_ids, geometry)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		id, time.Now().UTC(), len(result.GetStopIDs()), result.IsClosed(),
		result.GetPenaltyPolicy().String(), result.GetTotalMinutes(), result.GetBaseMinutes(),
		result.GetInitialMinutes(), result.GetPasses(), result.GetMoves(),
		result.IsConverged(), stopIDs, nullIfEmpty(geometry))
	if err != nil {
		return "", util.WrapErrorf(err, util.ErrInternalServerError, "insert plan")
	}
	return id, nil
}

func (p *PlanArchive) GetPlan(ctx context.Context, id string) (ArchivedPlan, error) {
	row := p.db.QueryRowContext(ctx, `SELECT id, requested_at, stop_count, closed, policy,
		total_minutes, base_minutes, initial_minutes, passes, moves, converged, stop_ids,
		COALESCE(geometry, '')
		FROM plans WHERE id=$1`, id)

	plan, err := scanPlan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ArchivedPlan{}, util.WrapErrorf(err, util.ErrNotFound, "plan %s not found", id)
		}
		return ArchivedPlan{}, util.WrapErrorf(err, util.ErrInternalServerError, "get plan")
	}
	return plan, nil
}

func (p *PlanArchive) ListPlans(ctx context.Context, limit int) ([]ArchivedPlan, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := p.db.QueryContext(ctx, `SELECT id, requested_at, stop_count, closed, policy,
		total_minutes, base_minutes, initial_minutes, passes, moves, converged, stop_ids,
		COALESCE(geometry, '')
		FROM plans ORDER BY requested_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "list plans")
	}
	defer rows.Close()

	plans := make([]ArchivedPlan, 0, limit)
	for rows.Next() {
		plan, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "scan plan row")
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "plan row iteration")
	}
	return plans, nil
}

func (p *PlanArchive) Close() error {
	return p.db.Close()
}

func scanPlan(scan func(dest ...any) error) (ArchivedPlan, error) {
	var plan ArchivedPlan
	var stopIDs []byte
	err := scan(&plan.ID, &plan.RequestedAt, &plan.StopCount, &plan.Closed, &plan.Policy,
		&plan.TotalMinutes, &plan.BaseMinutes, &plan.InitialMinutes, &plan.Passes,
		&plan.Moves, &plan.Converged, &stopIDs, &plan.Geometry)
	if err != nil {
		return ArchivedPlan{}, err
	}
	if err := json.Unmarshal(stopIDs, &plan.StopIDs); err != nil {
		return ArchivedPlan{}, err
	}
	return plan, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

// ─── Models ──────────────────────────────────────────────────────────────────

type Plan struct {
	ID                    string    `json:"id"`
	Source                string    `json:"source"`
	Destination           string    `json:"destination"`
	StartDate             string    `json:"start_date"`
	EndDate               string    `json:"end_date"`
	Budget                string    `json:"budget"`
	Travelers             int       `json:"travelers"`
	Interests             string    `json:"interests"`
	IncludeTransportation bool      `json:"include_transportation"`
	Narrative             string    `json:"narrative"`
	FlightsJSON           string    `json:"flights_json"`
	FlightsSynthetic      bool      `json:"flights_synthetic"`
	ItineraryText         string    `json:"itinerary_text"`
	PDFData               []byte    `json:"pdf_data,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// ─── Init ─────────────────────────────────────────────────────────────────────

// Open connects to Postgres, waiting for it to come up, and applies the
// schema.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("✅ Database connected and migrated")
	return db, nil
}

// ─── Migrations ───────────────────────────────────────────────────────────────

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id                     TEXT PRIMARY KEY,
		source                 TEXT NOT NULL,
		destination            TEXT NOT NULL,
		start_date             TEXT NOT NULL,
		end_date               TEXT NOT NULL,
		budget                 TEXT,
		travelers              INTEGER DEFAULT 1,
		interests              TEXT,
		include_transportation BOOLEAN DEFAULT FALSE,
		narrative              TEXT NOT NULL,
		flights_json           TEXT,
		flights_synthetic      BOOLEAN DEFAULT FALSE,
		itinerary_text         TEXT NOT NULL,
		pdf_data               BYTEA,
		created_at             TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plans_created_at
		ON plans(created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Plans ────────────────────────────────────────────────────────────────────

type PlanRepo struct {
	db *sql.DB
}

func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

func (r *PlanRepo) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("not initialized")
	}
	return r.db.PingContext(ctx)
}

func (r *PlanRepo) SavePlan(ctx context.Context, p *Plan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plans (id, source, destination, start_date, end_date, budget, travelers, interests,
			include_transportation, narrative, flights_json, flights_synthetic, itinerary_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Source, p.Destination, p.StartDate, p.EndDate, p.Budget, p.Travelers, p.Interests,
		p.IncludeTransportation, p.Narrative, p.FlightsJSON, p.FlightsSynthetic, p.ItineraryText, p.CreatedAt)
	return err
}

func (r *PlanRepo) UpdatePlanPDF(ctx context.Context, id string, pdfData []byte) error {
	res, err := r.db.ExecContext(ctx, `UPDATE plans SET pdf_data = $1 WHERE id = $2`, pdfData, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PlanRepo) GetPlan(ctx context.Context, id string) (*Plan, error) {
	p := &Plan{}
	var budget, interests, flightsJSON sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, source, destination, start_date, end_date, budget, travelers, interests,
			include_transportation, narrative, flights_json, flights_synthetic, itinerary_text, pdf_data, created_at
		FROM plans WHERE id = $1`, id).
		Scan(&p.ID, &p.Source, &p.Destination, &p.StartDate, &p.EndDate, &budget, &p.Travelers, &interests,
			&p.IncludeTransportation, &p.Narrative, &flightsJSON, &p.FlightsSynthetic, &p.ItineraryText,
			&p.PDFData, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Budget = budget.String
	p.Interests = interests.String
	p.FlightsJSON = flightsJSON.String
	return p, nil
}

// ─── Settings ─────────────────────────────────────────────────────────────────

// SettingsRepo stores API credentials in the settings table.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *PlanRepo, *SettingsRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewPlanRepo(db), NewSettingsRepo(db)
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range migrations {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepo_SavePlan(t *testing.T) {
	mock, plans, _ := newMock(t)
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p := &Plan{
		ID: "p1", Source: "Delhi", Destination: "Hanoi", StartDate: "2025-02-07", EndDate: "2025-02-14",
		Budget: "$1000", Travelers: 2, Interests: "food", IncludeTransportation: true,
		Narrative: "n", FlightsJSON: "[]", FlightsSynthetic: true, ItineraryText: "n", CreatedAt: created,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plans")).
		WithArgs("p1", "Delhi", "Hanoi", "2025-02-07", "2025-02-14", "$1000", 2, "food",
			true, "n", "[]", true, "n", created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, plans.SavePlan(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepo_GetPlan(t *testing.T) {
	mock, plans, _ := newMock(t)
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	cols := []string{"id", "source", "destination", "start_date", "end_date", "budget", "travelers", "interests",
		"include_transportation", "narrative", "flights_json", "flights_synthetic", "itinerary_text", "pdf_data", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM plans WHERE id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", "Delhi", "Hanoi", "2025-02-07", "2025-02-14", nil, 1, nil, false, "text", nil, false, "text", nil, created))

	p, err := plans.GetPlan(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Delhi", p.Source)
	assert.Empty(t, p.Budget)
	assert.Empty(t, p.FlightsJSON)
	assert.Nil(t, p.PDFData)
	assert.Equal(t, created, p.CreatedAt)
}

func TestPlanRepo_GetPlan_NotFound(t *testing.T) {
	mock, plans, _ := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM plans WHERE id = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := plans.GetPlan(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanRepo_UpdatePlanPDF(t *testing.T) {
	mock, plans, _ := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE plans SET pdf_data")).
		WithArgs([]byte("%PDF"), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE plans SET pdf_data")).
		WithArgs([]byte("%PDF"), "p2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, plans.UpdatePlanPDF(context.Background(), "p1", []byte("%PDF")))
	assert.ErrorIs(t, plans.UpdatePlanPDF(context.Background(), "p2", []byte("%PDF")), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepo(t *testing.T) {
	mock, _, settings := newMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO settings")).
		WithArgs("AI_API_KEY", "k").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM settings WHERE key = $1")).
		WithArgs("AI_API_KEY").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("k"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM settings WHERE key = $1")).
		WithArgs("FLIGHT_API_KEY").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	require.NoError(t, settings.Set(ctx, "AI_API_KEY", "k"))

	v, err := settings.Get(ctx, "AI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "k", v)

	v, err = settings.Get(ctx, "FLIGHT_API_KEY")
	require.NoError(t, err)
	assert.Empty(t, v)

	assert.NoError(t, mock.ExpectationsWereMet())
}

package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func tday(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestSaveAndGetValuationSeries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	series := types.ValuationSeries{
		{Date: tday(0), Value: decimal.RequireFromString("100")},
		{Date: tday(1), Value: decimal.RequireFromString("110.50")},
		{Date: tday(2), Value: decimal.RequireFromString("90.25")},
	}
	if err := repo.SaveValuationSeries(ctx, "alice", series); err != nil {
		t.Fatalf("SaveValuationSeries: %v", err)
	}

	got, err := repo.GetValuationSeries(ctx, "alice", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetValuationSeries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
	for i, p := range got {
		if !p.Date.Equal(series[i].Date) {
			t.Errorf("point[%d].Date = %s, want %s", i, p.Date, series[i].Date)
		}
		if !p.Value.Equal(series[i].Value) {
			t.Errorf("point[%d].Value = %s, want %s", i, p.Value, series[i].Value)
		}
	}

	// Other users see nothing.
	got, err = repo.GetValuationSeries(ctx, "bob", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetValuationSeries: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d points for bob, want 0", len(got))
	}
}

func TestGetValuationSeries_Window(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	series := types.ValuationSeries{
		{Date: tday(0), Value: decimal.NewFromInt(100)},
		{Date: tday(1), Value: decimal.NewFromInt(110)},
		{Date: tday(2), Value: decimal.NewFromInt(90)},
		{Date: tday(3), Value: decimal.NewFromInt(95)},
	}
	if err := repo.SaveValuationSeries(ctx, "alice", series); err != nil {
		t.Fatalf("SaveValuationSeries: %v", err)
	}

	got, err := repo.GetValuationSeries(ctx, "alice", tday(1), tday(2))
	if err != nil {
		t.Fatalf("GetValuationSeries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d points in window, want 2", len(got))
	}
	if !got[0].Date.Equal(tday(1)) || !got[1].Date.Equal(tday(2)) {
		t.Errorf("window bounds wrong: %s .. %s", got[0].Date, got[1].Date)
	}
}

func TestSaveValuation_Upsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := types.ValuationPoint{Date: tday(0), Value: decimal.NewFromInt(100)}
	if err := repo.SaveValuation(ctx, "alice", p); err != nil {
		t.Fatalf("SaveValuation: %v", err)
	}

	// Same date again: the value is replaced, not duplicated.
	p.Value = decimal.NewFromInt(105)
	if err := repo.SaveValuation(ctx, "alice", p); err != nil {
		t.Fatalf("SaveValuation: %v", err)
	}

	got, err := repo.GetValuationSeries(ctx, "alice", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetValuationSeries: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d points, want 1", len(got))
	}
	if !got[0].Value.Equal(decimal.NewFromInt(105)) {
		t.Errorf("value = %s, want 105", got[0].Value)
	}
}

func TestGetLatestValuation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetLatestValuation(ctx, "alice"); !errors.Is(err, types.ErrSeriesNotFound) {
		t.Errorf("err = %v, want ErrSeriesNotFound", err)
	}

	series := types.ValuationSeries{
		{Date: tday(0), Value: decimal.NewFromInt(100)},
		{Date: tday(5), Value: decimal.NewFromInt(120)},
		{Date: tday(2), Value: decimal.NewFromInt(90)},
	}
	for _, p := range series {
		if err := repo.SaveValuation(ctx, "alice", p); err != nil {
			t.Fatalf("SaveValuation: %v", err)
		}
	}

	latest, err := repo.GetLatestValuation(ctx, "alice")
	if err != nil {
		t.Fatalf("GetLatestValuation: %v", err)
	}
	if !latest.Date.Equal(tday(5)) {
		t.Errorf("latest date = %s, want %s", latest.Date, tday(5))
	}
	if !latest.Value.Equal(decimal.NewFromInt(120)) {
		t.Errorf("latest value = %s, want 120", latest.Value)
	}
}

func TestListUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("got %d users, want 0", len(users))
	}

	p := types.ValuationPoint{Date: tday(0), Value: decimal.NewFromInt(100)}
	for _, u := range []string{"carol", "alice", "bob", "alice"} {
		if err := repo.SaveValuation(ctx, u, p); err != nil {
			t.Fatalf("SaveValuation: %v", err)
		}
	}

	users, err = repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(users) != len(want) {
		t.Fatalf("got %d users, want %d", len(users), len(want))
	}
	for i := range want {
		if users[i] != want[i] {
			t.Errorf("users[%d] = %q, want %q", i, users[i], want[i])
		}
	}
}

func TestThresholds_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Unconfigured user returns nil without error.
	cfg, err := repo.GetThresholds(ctx, "alice")
	if err != nil {
		t.Fatalf("GetThresholds: %v", err)
	}
	if cfg != nil {
		t.Fatalf("cfg = %+v, want nil", cfg)
	}

	stored := types.AlertThresholdConfig{
		WarningPct:   decimal.RequireFromString("12.5"),
		CriticalPct:  decimal.NewFromInt(20),
		EmergencyPct: decimal.NewFromInt(30),
	}
	if err := repo.SaveThresholds(ctx, "alice", stored); err != nil {
		t.Fatalf("SaveThresholds: %v", err)
	}

	cfg, err = repo.GetThresholds(ctx, "alice")
	if err != nil {
		t.Fatalf("GetThresholds: %v", err)
	}
	if cfg == nil {
		t.Fatal("cfg = nil, want stored config")
	}
	if !cfg.WarningPct.Equal(stored.WarningPct) ||
		!cfg.CriticalPct.Equal(stored.CriticalPct) ||
		!cfg.EmergencyPct.Equal(stored.EmergencyPct) {
		t.Errorf("cfg = %+v, want %+v", cfg, stored)
	}

	// Upsert replaces the tiers.
	stored.WarningPct = decimal.NewFromInt(15)
	if err := repo.SaveThresholds(ctx, "alice", stored); err != nil {
		t.Fatalf("SaveThresholds: %v", err)
	}
	cfg, err = repo.GetThresholds(ctx, "alice")
	if err != nil {
		t.Fatalf("GetThresholds: %v", err)
	}
	if !cfg.WarningPct.Equal(decimal.NewFromInt(15)) {
		t.Errorf("WarningPct = %s, want 15 after upsert", cfg.WarningPct)
	}
}

func TestSaveThresholds_RejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	bad := types.AlertThresholdConfig{
		WarningPct:   decimal.NewFromInt(30),
		CriticalPct:  decimal.NewFromInt(20),
		EmergencyPct: decimal.NewFromInt(10),
	}
	err := repo.SaveThresholds(context.Background(), "alice", bad)
	if !errors.Is(err, types.ErrInvalidThresholds) {
		t.Errorf("err = %v, want ErrInvalidThresholds", err)
	}
}

func TestBenchmarkSeries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, v := range []int64{4700, 4750, 4600} {
		p := types.ValuationPoint{Date: tday(i), Value: decimal.NewFromInt(v)}
		if err := repo.SaveBenchmarkPoint(ctx, "sp500", p); err != nil {
			t.Fatalf("SaveBenchmarkPoint: %v", err)
		}
	}

	got, err := repo.GetBenchmarkSeries(ctx, "sp500", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetBenchmarkSeries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
	if !got[1].Value.Equal(decimal.NewFromInt(4750)) {
		t.Errorf("point[1].Value = %s, want 4750", got[1].Value)
	}

	got, err = repo.GetBenchmarkSeries(ctx, "nasdaq", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetBenchmarkSeries: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d points for unknown benchmark, want 0", len(got))
	}
}

//go:build integration
// +build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/repository/testutil"
)

func newRun(t *testing.T) *models.Run {
	t.Helper()
	run, err := models.NewRun("playwright", "http://localhost:8080/")
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}
	return run
}

func TestRunRepository_CreateAndGetRun_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRunRepositoryWithDB(testDB.DB)

	run := newRun(t)
	if err := repo.CreateRun(run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	retrieved, err := repo.GetRun(run.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve created run: %v", err)
	}
	if retrieved.Engine != run.Engine {
		t.Errorf("Engine mismatch: got %v, want %v", retrieved.Engine, run.Engine)
	}
	if retrieved.BaseURL != run.BaseURL {
		t.Errorf("BaseURL mismatch: got %v, want %v", retrieved.BaseURL, run.BaseURL)
	}
	if retrieved.Status != models.RunStatusRunning {
		t.Errorf("Status mismatch: got %v, want %v", retrieved.Status, models.RunStatusRunning)
	}
	if !retrieved.FinishedAt.IsZero() {
		t.Errorf("FinishedAt should be unset, got %v", retrieved.FinishedAt)
	}
}

func TestRunRepository_GetRun_NotFound_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRunRepositoryWithDB(testDB.DB)

	_, err := repo.GetRun(uuid.New().String())
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestRunRepository_ChecksAndFinish_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRunRepositoryWithDB(testDB.DB)

	run := newRun(t)
	if err := repo.CreateRun(run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	checks := []*models.CheckResult{
		run.NewCheckResult("add HP Z8000 Bluetooth Mouse to cart and verify", "HP Z8000 Bluetooth Mouse", nil, 1500*time.Millisecond),
		run.NewCheckResult("verify cart total quantity", "", errors.New("cart total quantity mismatch, expected: 4, actual: 3"), 20*time.Millisecond),
	}
	for _, c := range checks {
		if err := repo.AddCheck(c); err != nil {
			t.Fatalf("AddCheck() error = %v", err)
		}
	}

	if err := run.Finish(false); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if err := repo.FinishRun(run); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	retrieved, err := repo.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if retrieved.Status != models.RunStatusFailed {
		t.Errorf("Status mismatch: got %v, want %v", retrieved.Status, models.RunStatusFailed)
	}
	if retrieved.FinishedAt.IsZero() {
		t.Error("FinishedAt should be set")
	}

	stored, err := repo.ListChecks(run.ID)
	if err != nil {
		t.Fatalf("ListChecks() error = %v", err)
	}
	if len(stored) != len(checks) {
		t.Fatalf("Expected %d checks, got %d", len(checks), len(stored))
	}
	for i, c := range stored {
		if c.Name != checks[i].Name || c.Passed != checks[i].Passed || c.Message != checks[i].Message {
			t.Errorf("Check %d mismatch: got %+v, want %+v", i, c, checks[i])
		}
		if c.Duration != checks[i].Duration {
			t.Errorf("Check %d duration: got %v, want %v", i, c.Duration, checks[i].Duration)
		}
	}
}

func TestRunRepository_FinishRun_NotFound_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRunRepositoryWithDB(testDB.DB)

	run := newRun(t)
	if err := run.Abort(errors.New("storefront unreachable")); err != nil {
		t.Fatal(err)
	}

	if err := repo.FinishRun(run); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestRunRepository_ListRuns_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRunRepositoryWithDB(testDB.DB)

	var ids []string
	for i := 0; i < 3; i++ {
		run := newRun(t)
		run.StartedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if err := repo.CreateRun(run); err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := repo.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("Expected newest runs first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jaehyo/sodam/internal/timefmt"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestMessageRepository_InsertAndSelect(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t), timefmt.New())
	ctx := context.Background()

	first, err := repo.Insert(ctx, "첫 메시지", "2026-08-31 09:00:00")
	if err != nil {
		t.Fatalf("Insert first failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected a generated id")
	}
	second, err := repo.Insert(ctx, "둘째 메시지", "2026-08-31 10:30:00")
	if err != nil {
		t.Fatalf("Insert second failed: %v", err)
	}

	rows, err := repo.SelectPage(ctx, 0, 10)
	if err != nil {
		t.Fatalf("SelectPage failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(rows))
	}
	if rows[0].ID != second.ID {
		t.Fatalf("expected newest first, got %q", rows[0].Text)
	}
	if rows[1].ID != first.ID {
		t.Fatalf("expected oldest last, got %q", rows[1].Text)
	}
	if rows[0].Time.Before(rows[1].Time) {
		t.Fatal("expected descending time order")
	}
}

func TestMessageRepository_InsertValidation(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t), timefmt.New())
	ctx := context.Background()

	if _, err := repo.Insert(ctx, "   ", "2026-08-31 09:00:00"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := repo.Insert(ctx, "text", ""); !errors.Is(err, ErrEmptyStored) {
		t.Fatalf("expected ErrEmptyStored, got %v", err)
	}
}

func TestMessageRepository_SelectPageWindows(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t), timefmt.New())
	ctx := context.Background()

	stored := []string{
		"2026-08-31 09:00:00",
		"2026-08-31 09:01:00",
		"2026-08-31 09:02:00",
		"2026-08-31 09:03:00",
		"2026-08-31 09:04:00",
	}
	for i, s := range stored {
		if _, err := repo.Insert(ctx, s, s); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	page, err := repo.SelectPage(ctx, 0, 2)
	if err != nil {
		t.Fatalf("SelectPage(0,2) failed: %v", err)
	}
	if len(page) != 2 || page[0].Text != "2026-08-31 09:04:00" {
		t.Fatalf("unexpected first page: %+v", page)
	}

	page, err = repo.SelectPage(ctx, 2, 2)
	if err != nil {
		t.Fatalf("SelectPage(2,2) failed: %v", err)
	}
	if len(page) != 2 || page[0].Text != "2026-08-31 09:02:00" {
		t.Fatalf("unexpected second page: %+v", page)
	}

	page, err = repo.SelectPage(ctx, 4, 2)
	if err != nil {
		t.Fatalf("SelectPage(4,2) failed: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected short final page, got %d rows", len(page))
	}

	page, err = repo.SelectPage(ctx, 10, 2)
	if err != nil {
		t.Fatalf("SelectPage(10,2) failed: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %d rows", len(page))
	}

	if _, err := repo.SelectPage(ctx, -1, 2); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestMessageRepository_UnparsableStoredTimeKept(t *testing.T) {
	database := setupTestDB(t)
	repo := NewMessageRepository(database, timefmt.New())
	ctx := context.Background()

	// Bypass Insert validation: a row written by some other client.
	if _, err := database.ExecContext(ctx, `
		INSERT INTO message (id, text, time) VALUES ('bad-row', 'still readable', 'not a time')
	`); err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	rows, err := repo.SelectPage(ctx, 0, 10)
	if err != nil {
		t.Fatalf("SelectPage failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 message, got %d", len(rows))
	}
	if rows[0].Text != "still readable" {
		t.Fatalf("unexpected text %q", rows[0].Text)
	}
	if !rows[0].Time.IsZero() {
		t.Fatalf("expected zero time, got %v", rows[0].Time)
	}
}

func TestMessageRepository_Count(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t), timefmt.New())
	ctx := context.Background()

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}

	if _, err := repo.Insert(ctx, "one", "2026-08-31 09:00:00"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	n, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
}

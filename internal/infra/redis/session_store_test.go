package redis

import (
	"context"
	"testing"
	"time"

	"assessment-engine/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreCompleteIsConditional(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr))
	session := domain.NewSession("s1", "u1", "mathematics", domain.TestDiagnostic, sampleQuestions()[:2], time.Now())

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("assessment:session:s1") {
		t.Fatalf("expected session document")
	}
	if err := store.Create(ctx, session); err != domain.ErrSessionExists {
		t.Fatalf("expected duplicate create to fail, got %v", err)
	}

	correct := true
	session.Questions[0].IsCorrect = &correct
	session.Questions[0].PointsEarned = 1
	session.Recompute()
	session.Status = domain.StatusCompleted

	ok, err := store.Complete(ctx, session)
	if err != nil || !ok {
		t.Fatalf("expected first complete to apply, ok=%v err=%v", ok, err)
	}
	ok, err = store.Complete(ctx, session)
	if err != nil || ok {
		t.Fatalf("expected second complete to be rejected, ok=%v err=%v", ok, err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.CorrectAnswers != 1 || got.Percentage != 50 {
		t.Fatalf("unexpected stored session %+v", got)
	}

	completed, err := store.ListCompleted(ctx, "mathematics")
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "s1" {
		t.Fatalf("expected s1 in completed index, got %+v", completed)
	}
}

func TestSessionStoreAbandon(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr))
	_ = store.Create(ctx, domain.NewSession("s1", "u1", "mathematics", domain.TestPractice, sampleQuestions()[:1], time.Now()))

	if ok, _ := store.Abandon(ctx, "s1", "intruder", time.Now()); ok {
		t.Fatalf("abandon by non-owner must not apply")
	}
	if ok, err := store.Abandon(ctx, "s1", "u1", time.Now()); err != nil || !ok {
		t.Fatalf("expected abandon to apply, ok=%v err=%v", ok, err)
	}
	if ok, _ := store.Abandon(ctx, "s1", "u1", time.Now()); ok {
		t.Fatalf("abandon of a terminal session must not apply")
	}
	if ok, _ := store.Abandon(ctx, "missing", "u1", time.Now()); ok {
		t.Fatalf("abandon of a missing session must not apply")
	}

	completed, _ := store.ListCompleted(ctx, "mathematics")
	if len(completed) != 0 {
		t.Fatalf("abandoned sessions must not be indexed as completed")
	}
}

func TestSessionStoreListByUser(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr))
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_ = store.Create(ctx, domain.NewSession("old", "u1", "mathematics", domain.TestDiagnostic, sampleQuestions()[:1], base))
	_ = store.Create(ctx, domain.NewSession("new", "u1", "mathematics", domain.TestPractice, sampleQuestions()[:1], base.Add(time.Hour)))
	_ = store.Create(ctx, domain.NewSession("else", "u2", "mathematics", domain.TestPractice, sampleQuestions()[:1], base))

	got, err := store.ListByUser(ctx, "u1", domain.HistoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Fatalf("expected newest first, got %+v", got)
	}

	practice, _ := store.ListByUser(ctx, "u1", domain.HistoryFilter{TestType: domain.TestPractice})
	if len(practice) != 1 || practice[0].ID != "new" {
		t.Fatalf("unexpected filtered listing %+v", practice)
	}

	if _, err := store.Get(ctx, "missing"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionStoreListByUserReadsOnlyLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr))
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"s0", "s1", "s2"} {
		session := domain.NewSession(id, "u1", "mathematics", domain.TestDiagnostic, sampleQuestions()[:1], base.Add(time.Duration(i)*time.Hour))
		if err := store.Create(ctx, session); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	// The oldest document is unreadable, so any read that reaches it fails.
	if err := mr.Set("assessment:session:s0", "{broken"); err != nil {
		t.Fatalf("corrupt session: %v", err)
	}

	got, err := store.ListByUser(ctx, "u1", domain.HistoryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("expected bounded listing to skip older sessions, got %v", err)
	}
	if len(got) != 2 || got[0].ID != "s2" || got[1].ID != "s1" {
		t.Fatalf("unexpected listing %+v", got)
	}

	if _, err := store.ListByUser(ctx, "u1", domain.HistoryFilter{Domain: "mathematics", Limit: 2}); err == nil {
		t.Fatalf("expected filtered listing to scan the full history")
	}
}

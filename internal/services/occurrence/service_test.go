package occurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guardiao/base-security-service/internal/audit"
	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/store"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	st := store.New(db)
	return New(Dependencies{
		Occurrences: st.Occurrences,
		Auditor:     audit.New(db, zap.NewNop()),
		Logger:      zap.NewNop(),
	})
}

func createOccurrence(t *testing.T, svc *Service, sector string) *models.Occurrence {
	t.Helper()
	occ, err := svc.Create(context.Background(), n1Actor, CreateInput{
		Title:       "Veículo não identificado no portão",
		Type:        "Segurança",
		Category:    "Acesso",
		Urgency:     models.UrgencyAlta,
		Location:    "Portão G2",
		Description: "Veículo sem credencial tentou acesso",
		Sector:      sector,
	})
	if err != nil {
		t.Fatalf("failed to create occurrence: %v", err)
	}
	return occ
}

func TestService_CreateStartsRegistered(t *testing.T) {
	svc := setupService(t)
	occ := createOccurrence(t, svc, "")

	loaded, err := svc.Get(context.Background(), occ.ID)
	if err != nil {
		t.Fatalf("failed to load occurrence: %v", err)
	}
	if loaded.Status != string(StatusRegistered) {
		t.Errorf("expected status REGISTERED, got %q", loaded.Status)
	}
	if len(loaded.Timeline) != 1 {
		t.Fatalf("expected 1 timeline event, got %d", len(loaded.Timeline))
	}
	if loaded.Timeline[0].Comment != "Ocorrência registrada" {
		t.Errorf("unexpected initial comment %q", loaded.Timeline[0].Comment)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(context.Background(), n1Actor, CreateInput{Urgency: models.UrgencyBaixa})
	if !errors.Is(err, ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}

	_, err = svc.Create(context.Background(), n1Actor, CreateInput{Title: "x", Urgency: "Urgentíssima"})
	if !errors.Is(err, ErrInvalidUrgency) {
		t.Errorf("expected ErrInvalidUrgency, got %v", err)
	}
}

func TestService_TransitionsAppendOnly(t *testing.T) {
	svc := setupService(t)
	occ := createOccurrence(t, svc, "")
	ctx := context.Background()

	if _, err := svc.Transition(ctx, n1Actor, occ.ID, StatusTriage, "em análise"); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	loaded, err := svc.Transition(ctx, n1Actor, occ.ID, StatusEscalated, "encaminhada à seção")
	if err != nil {
		t.Fatalf("second transition failed: %v", err)
	}

	if loaded.Status != string(StatusEscalated) {
		t.Errorf("expected status ESCALATED, got %q", loaded.Status)
	}
	if len(loaded.Timeline) != 3 {
		t.Fatalf("expected 3 timeline events, got %d", len(loaded.Timeline))
	}
	for i := 1; i < len(loaded.Timeline); i++ {
		if loaded.Timeline[i].Timestamp.Before(loaded.Timeline[i-1].Timestamp) {
			t.Errorf("timeline not in increasing timestamp order at index %d", i)
		}
	}
	last := loaded.Timeline[len(loaded.Timeline)-1]
	if last.Status != loaded.Status {
		t.Errorf("cached status %q does not match latest event %q", loaded.Status, last.Status)
	}
	if last.Comment != "encaminhada à seção" {
		t.Errorf("unexpected last comment %q", last.Comment)
	}
}

func TestService_ClosedIsImmutable(t *testing.T) {
	svc := setupService(t)
	occ := createOccurrence(t, svc, "")
	ctx := context.Background()

	closed, err := svc.Transition(ctx, omActor, occ.ID, StatusClosed, "Encerrada pelo comando")
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	eventCount := len(closed.Timeline)

	if _, err := svc.Transition(ctx, omActor, occ.ID, StatusTriage, "reabrir"); !errors.Is(err, ErrOccurrenceClosed) {
		t.Errorf("expected ErrOccurrenceClosed on transition, got %v", err)
	}
	if _, err := svc.AddNote(ctx, omActor, occ.ID, "anotação tardia"); !errors.Is(err, ErrOccurrenceClosed) {
		t.Errorf("expected ErrOccurrenceClosed on note, got %v", err)
	}
	title := "novo título"
	if _, err := svc.UpdateDetails(ctx, admin, occ.ID, UpdateInput{Title: &title}); !errors.Is(err, ErrOccurrenceClosed) {
		t.Errorf("expected ErrOccurrenceClosed on edit, got %v", err)
	}

	loaded, err := svc.Get(ctx, occ.ID)
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Status != string(StatusClosed) {
		t.Errorf("status changed after close: %q", loaded.Status)
	}
	if len(loaded.Timeline) != eventCount {
		t.Errorf("timeline grew after close: %d -> %d", eventCount, len(loaded.Timeline))
	}
}

func TestService_ResolveGatedOnSector(t *testing.T) {
	svc := setupService(t)
	occ := createOccurrence(t, svc, "")
	ctx := context.Background()

	if _, err := svc.Transition(ctx, omActor, occ.ID, StatusEscalated, "direto para análise"); err != nil {
		t.Fatalf("escalate failed: %v", err)
	}

	if _, err := svc.Transition(ctx, n2Actor, occ.ID, StatusResolved, ""); !errors.Is(err, ErrSectorRequired) {
		t.Fatalf("expected ErrSectorRequired, got %v", err)
	}

	sector := "SIPAA"
	if _, err := svc.UpdateDetails(ctx, admin, occ.ID, UpdateInput{Sector: &sector}); err != nil {
		t.Fatalf("failed to set sector: %v", err)
	}

	loaded, err := svc.Transition(ctx, n2Actor, occ.ID, StatusResolved, "")
	if err != nil {
		t.Fatalf("resolve failed after sector set: %v", err)
	}
	if loaded.Status != string(StatusResolved) {
		t.Errorf("expected RESOLVED, got %q", loaded.Status)
	}
	last := loaded.Timeline[len(loaded.Timeline)-1]
	if last.Comment != "Encaminhada ao setor SIPAA" {
		t.Errorf("expected default sector comment, got %q", last.Comment)
	}
}

func TestService_AddNoteKeepsStatus(t *testing.T) {
	svc := setupService(t)
	occ := createOccurrence(t, svc, "")
	ctx := context.Background()

	if _, err := svc.AddNote(ctx, n1Actor, occ.ID, ""); !errors.Is(err, ErrCommentRequired) {
		t.Errorf("expected ErrCommentRequired on empty note, got %v", err)
	}

	loaded, err := svc.AddNote(ctx, n1Actor, occ.ID, "aguardando contato do setor")
	if err != nil {
		t.Fatalf("note failed: %v", err)
	}
	if loaded.Status != string(StatusRegistered) {
		t.Errorf("note changed status to %q", loaded.Status)
	}
	if len(loaded.Timeline) != 2 {
		t.Fatalf("expected 2 timeline events, got %d", len(loaded.Timeline))
	}
	if loaded.Timeline[1].Status != string(StatusRegistered) {
		t.Errorf("note event carries status %q, want current stage", loaded.Timeline[1].Status)
	}
}

func TestService_UpdateDetailsRequiresAdmin(t *testing.T) {
	svc := setupService(t)
	occ := createOccurrence(t, svc, "")

	title := "editado"
	if _, err := svc.UpdateDetails(context.Background(), n1Actor, occ.ID, UpdateInput{Title: &title}); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("expected ErrTransitionNotAllowed for non-admin edit, got %v", err)
	}

	loaded, err := svc.UpdateDetails(context.Background(), admin, occ.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("admin edit failed: %v", err)
	}
	if loaded.Title != "editado" {
		t.Errorf("expected title edited, got %q", loaded.Title)
	}
	// Field edits do not touch the timeline.
	if len(loaded.Timeline) != 1 {
		t.Errorf("edit appended to timeline: %d events", len(loaded.Timeline))
	}
}

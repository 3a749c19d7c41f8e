package occurrence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guardiao/base-security-service/internal/audit"
	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/store"
	"go.uber.org/zap"
)

// Service owns the occurrence lifecycle: creation, gated transitions, notes
// and direct field edits.
type Service struct {
	occurrences *store.OccurrenceRepository
	auditor     *audit.Logger
	logger      *zap.Logger
}

// Dependencies aggregates constructor inputs.
type Dependencies struct {
	Occurrences *store.OccurrenceRepository
	Auditor     *audit.Logger
	Logger      *zap.Logger
}

// New initialises the occurrence service.
func New(deps Dependencies) *Service {
	return &Service{
		occurrences: deps.Occurrences,
		auditor:     deps.Auditor,
		logger:      deps.Logger,
	}
}

// CreateInput captures a new occurrence report.
type CreateInput struct {
	Title       string
	Type        string
	Category    string
	Urgency     string
	Date        time.Time
	Location    string
	Description string
	Sector      string
}

var (
	// ErrTitleRequired is a validation failure on occurrence creation.
	ErrTitleRequired = errors.New("title is required")
	// ErrInvalidUrgency is a validation failure on the closed urgency set.
	ErrInvalidUrgency = errors.New("urgency outside closed set")
)

// Create registers a new occurrence in REGISTERED with its first timeline event.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*models.Occurrence, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if !ValidUrgency(in.Urgency) {
		return nil, ErrInvalidUrgency
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	occ := &models.Occurrence{
		Title:       in.Title,
		Type:        in.Type,
		Category:    in.Category,
		Urgency:     in.Urgency,
		Date:        date,
		Location:    in.Location,
		Description: in.Description,
		Creator:     actor.Name,
		Sector:      in.Sector,
		Status:      string(StatusRegistered),
	}
	first := &models.TimelineEvent{
		Status:    string(StatusRegistered),
		UpdatedBy: actor.Name,
		Timestamp: time.Now(),
		Comment:   "Ocorrência registrada",
	}
	if err := s.occurrences.Create(ctx, occ, first); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:     actorID(actor),
		Action:     "occurrence.created",
		Resource:   "occurrence",
		ResourceID: occ.ID.String(),
		Context:    map[string]any{"urgency": occ.Urgency},
	})
	return occ, nil
}

// Get loads an occurrence with its full timeline.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Occurrence, error) {
	return s.occurrences.Get(ctx, id)
}

// List retrieves occurrences matching the filter.
func (s *Service) List(ctx context.Context, filter store.OccurrenceFilter) ([]models.Occurrence, int64, error) {
	return s.occurrences.List(ctx, filter)
}

// Transition attempts a gated status change, appending the resulting timeline
// event and updating the cached status atomically.
func (s *Service) Transition(ctx context.Context, actor Actor, id uuid.UUID, target Status, comment string) (*models.Occurrence, error) {
	occ, err := s.occurrences.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	event, err := AttemptTransition(occ, actor, target, comment, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.occurrences.ApplyTransition(ctx, id, event); err != nil {
		return nil, err
	}

	s.logger.Info("occurrence transition",
		zap.String("occurrence_id", id.String()),
		zap.String("from", occ.Status),
		zap.String("to", string(target)),
		zap.String("actor", actor.Name),
	)
	s.auditor.Record(ctx, audit.Entry{
		UserID:     actorID(actor),
		Action:     "occurrence.transition",
		Resource:   "occurrence",
		ResourceID: id.String(),
		Context:    map[string]any{"from": occ.Status, "to": string(target)},
	})

	return s.occurrences.Get(ctx, id)
}

// AddNote appends a timeline entry carrying the current status, recording an
// intermediate remark without advancing state.
func (s *Service) AddNote(ctx context.Context, actor Actor, id uuid.UUID, comment string) (*models.Occurrence, error) {
	if comment == "" {
		return nil, ErrCommentRequired
	}
	occ, err := s.occurrences.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if Status(occ.Status) == StatusClosed {
		return nil, ErrOccurrenceClosed
	}

	event := &models.TimelineEvent{
		Status:    occ.Status,
		UpdatedBy: actor.Name,
		Timestamp: time.Now(),
		Comment:   comment,
	}
	if err := s.occurrences.AppendEvent(ctx, id, event); err != nil {
		return nil, err
	}
	return s.occurrences.Get(ctx, id)
}

// UpdateInput carries the directly editable fields. Nil pointers are left
// untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Location    *string
	Urgency     *string
	Sector      *string
	AssignedTo  *string
}

// UpdateDetails mutates editable fields before closure. Edits are admin-only
// and deliberately absent from the timeline; the operational audit log keeps
// the only trace.
func (s *Service) UpdateDetails(ctx context.Context, actor Actor, id uuid.UUID, in UpdateInput) (*models.Occurrence, error) {
	if !actor.IsAdmin {
		return nil, ErrTransitionNotAllowed
	}
	occ, err := s.occurrences.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if Status(occ.Status) == StatusClosed {
		return nil, ErrOccurrenceClosed
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.Urgency != nil {
		if !ValidUrgency(*in.Urgency) {
			return nil, ErrInvalidUrgency
		}
		fields["urgency"] = *in.Urgency
	}
	if in.Sector != nil {
		fields["sector"] = *in.Sector
	}
	if in.AssignedTo != nil {
		fields["assigned_to"] = *in.AssignedTo
	}
	if err := s.occurrences.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:     actorID(actor),
		Action:     "occurrence.updated",
		Resource:   "occurrence",
		ResourceID: id.String(),
		Context:    map[string]any{"fields": fieldNames(fields)},
	})
	return s.occurrences.Get(ctx, id)
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names
}

func actorID(actor Actor) *uuid.UUID {
	id, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil
	}
	return &id
}

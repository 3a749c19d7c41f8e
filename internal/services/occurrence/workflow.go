package occurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/guardiao/base-security-service/internal/models"
)

// Status is the closed set of occurrence lifecycle states.
type Status string

const (
	// StatusRegistered is the initial state of every occurrence.
	StatusRegistered Status = "REGISTERED"
	// StatusTriage means the duty officer (N1) is evaluating the report.
	StatusTriage Status = "TRIAGE"
	// StatusEscalated means organic security (N2) holds the occurrence.
	StatusEscalated Status = "ESCALATED"
	// StatusResolved means a sector was assigned and homologation (N3) reviews.
	StatusResolved Status = "RESOLVED"
	// StatusCommandReview means the occurrence awaits command (OM) review.
	StatusCommandReview Status = "COMMAND_REVIEW"
	// StatusReturned means triage sent the report back for more information.
	StatusReturned Status = "RETURNED"
	// StatusPending is a flag-like annotation overwriting the current stage;
	// the previous stage is only recoverable from the timeline.
	StatusPending Status = "PENDING"
	// StatusClosed is terminal: no transitions, notes or edits afterwards.
	StatusClosed Status = "CLOSED"
)

// Actor identifies who attempts a transition and what they may do.
type Actor struct {
	ID          string
	Name        string
	AccessLevel string
	IsAdmin     bool
}

var (
	// ErrOccurrenceClosed indicates the occurrence reached its terminal state.
	ErrOccurrenceClosed = errors.New("occurrence is closed")
	// ErrTransitionNotAllowed indicates the actor may not perform this transition.
	ErrTransitionNotAllowed = errors.New("transition not allowed for actor")
	// ErrUnknownStatus indicates a target outside the closed status set.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrSectorRequired indicates resolving requires an assigned sector.
	ErrSectorRequired = errors.New("sector must be set before resolving")
	// ErrCommentRequired indicates the transition needs a non-empty comment.
	ErrCommentRequired = errors.New("comment is required")
	// ErrAlreadyPending indicates the occurrence is already flagged pending.
	ErrAlreadyPending = errors.New("occurrence is already pending")
)

// ValidStatus reports whether s belongs to the closed status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusRegistered, StatusTriage, StatusEscalated, StatusResolved,
		StatusCommandReview, StatusReturned, StatusPending, StatusClosed:
		return true
	}
	return false
}

// ValidUrgency reports whether u belongs to the closed urgency set.
func ValidUrgency(u string) bool {
	switch u {
	case models.UrgencyBaixa, models.UrgencyMedia, models.UrgencyAlta, models.UrgencyCritica:
		return true
	}
	return false
}

// AttemptTransition is the single authoritative gate for status changes. It
// validates the actor, current state, target and preconditions, and returns
// the timeline event to append. It never mutates occ.
//
// Gating summary:
//   - N1 moves REGISTERED/RETURNED to TRIAGE, and TRIAGE to ESCALATED or RETURNED.
//   - N2 moves ESCALATED to RESOLVED (sector required) or back to TRIAGE.
//   - N3 moves RESOLVED to CLOSED, back to ESCALATED, or on to COMMAND_REVIEW.
//   - OM bypasses level gating and may jump to any non-terminal stage or close.
//   - Any admin may flag a non-pending occurrence PENDING; admins at level N2
//     may also close directly.
//   - Closing always requires a non-empty comment. CLOSED is terminal.
func AttemptTransition(occ *models.Occurrence, actor Actor, target Status, comment string, now time.Time) (*models.TimelineEvent, error) {
	if !ValidStatus(target) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}
	current := Status(occ.Status)
	if current == StatusClosed {
		return nil, ErrOccurrenceClosed
	}

	switch target {
	case StatusClosed:
		if !canClose(current, actor) {
			return nil, ErrTransitionNotAllowed
		}
		if comment == "" {
			return nil, ErrCommentRequired
		}
	case StatusPending:
		if !actor.IsAdmin {
			return nil, ErrTransitionNotAllowed
		}
		if current == StatusPending {
			return nil, ErrAlreadyPending
		}
	default:
		if !canProgress(current, actor, target) {
			return nil, ErrTransitionNotAllowed
		}
		if target == StatusResolved {
			if actor.AccessLevel != models.LevelOM && occ.Sector == "" {
				return nil, ErrSectorRequired
			}
			if comment == "" && occ.Sector != "" {
				comment = fmt.Sprintf("Encaminhada ao setor %s", occ.Sector)
			}
		}
	}

	return &models.TimelineEvent{
		Status:    string(target),
		UpdatedBy: actor.Name,
		Timestamp: now,
		Comment:   comment,
	}, nil
}

func canClose(current Status, actor Actor) bool {
	if actor.AccessLevel == models.LevelOM {
		return true
	}
	if actor.IsAdmin && actor.AccessLevel == models.LevelN2 {
		return true
	}
	return actor.AccessLevel == models.LevelN3 && current == StatusResolved
}

func canProgress(current Status, actor Actor, target Status) bool {
	if actor.AccessLevel == models.LevelOM {
		switch target {
		case StatusTriage, StatusEscalated, StatusResolved, StatusCommandReview:
			return true
		}
		return false
	}

	switch actor.AccessLevel {
	case models.LevelN1:
		if target == StatusTriage {
			return current == StatusRegistered || current == StatusReturned
		}
		if target == StatusEscalated || target == StatusReturned {
			return current == StatusTriage
		}
	case models.LevelN2:
		if target == StatusResolved || target == StatusTriage {
			return current == StatusEscalated
		}
	case models.LevelN3:
		if target == StatusEscalated || target == StatusCommandReview {
			return current == StatusResolved
		}
	}
	return false
}

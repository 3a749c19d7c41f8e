package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store groups all repositories over one database handle.
type Store struct {
	AccessLogs  *AccessLogRepository
	Occurrences *OccurrenceRepository
	Users       *UserRepository
	Sessions    *SessionRepository
	Suggestions *SuggestionRepository
	Parking     *ParkingRepository
	Missions    *MissionRepository
}

// New constructs a Store.
func New(db *gorm.DB) *Store {
	return &Store{
		AccessLogs:  &AccessLogRepository{db: db},
		Occurrences: &OccurrenceRepository{db: db},
		Users:       &UserRepository{db: db},
		Sessions:    &SessionRepository{db: db},
		Suggestions: &SuggestionRepository{db: db},
		Parking:     &ParkingRepository{db: db},
		Missions:    &MissionRepository{db: db},
	}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Access levels used to gate occurrence workflow transitions.
const (
	LevelN1 = "N1" // adjunct / duty officer
	LevelN2 = "N2" // counter-intelligence / organic security
	LevelN3 = "N3" // sector homologation
	LevelOM = "OM" // commander / organization review
)

// Guard gates of the base perimeter.
const (
	GateG1 = "G1"
	GateG2 = "G2"
	GateG3 = "G3"
)

// Visitor characteristics on an access-log entry.
const (
	CharacteristicMilitar    = "MILITAR"
	CharacteristicCivil      = "CIVIL"
	CharacteristicPrestador  = "PRESTADOR"
	CharacteristicEntregador = "ENTREGADOR"
)

// Access modes and categories.
const (
	ModePedestre    = "Pedestre"
	ModeVeiculo     = "Veículo"
	CategoryEntrada = "Entrada"
	CategorySaida   = "Saída"
)

// Occurrence urgency levels.
const (
	UrgencyBaixa   = "Baixa"
	UrgencyMedia   = "Média"
	UrgencyAlta    = "Alta"
	UrgencyCritica = "Crítica"
)

// User is an operator of the system. AccessLevel gates workflow transitions;
// IsAdmin gates direct edits, pending flags and user administration.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Saram        string     `gorm:"size:32;index" json:"saram"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	AccessLevel  string     `gorm:"size:4;not null;default:N1" json:"access_level"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	Status       string     `gorm:"size:32;not null;default:active" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Session tracks a refresh-token lineage for one login.
type Session struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	RefreshTokenHash string     `gorm:"size:128;index;not null" json:"-"`
	ExpiresAt        time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	IPAddress        string     `gorm:"size:64" json:"ip_address"`
	UserAgent        string     `gorm:"size:255" json:"user_agent"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AccessLogEntry records one passage through a guard gate. Entries are
// immutable once created; corrections happen out of band.
type AccessLogEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp      time.Time `gorm:"index;not null" json:"timestamp"`
	GuardGate      string    `gorm:"size:4;index;not null" json:"guard_gate"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Characteristic string    `gorm:"size:32;not null" json:"characteristic"`
	Identification string    `gorm:"size:64;index" json:"identification"`
	AccessMode     string    `gorm:"size:32;not null" json:"access_mode"`
	AccessCategory string    `gorm:"size:16;index;not null" json:"access_category"`
	VehicleModel   string    `gorm:"size:128" json:"vehicle_model"`
	VehiclePlate   string    `gorm:"size:16;index" json:"vehicle_plate"`
	Destination    string    `gorm:"size:255" json:"destination"`
	Authorizer     string    `gorm:"size:255" json:"authorizer"`
	RegisteredBy   string    `gorm:"size:255;not null" json:"registered_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// Occurrence is a security incident. Status is a cached projection of the
// latest timeline event; the timeline is the authoritative history.
type Occurrence struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Type        string          `gorm:"size:64" json:"type"`
	Category    string          `gorm:"size:64" json:"category"`
	Urgency     string          `gorm:"size:16;index;not null" json:"urgency"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Location    string          `gorm:"size:255" json:"location"`
	Description string          `gorm:"type:text" json:"description"`
	Creator     string          `gorm:"size:255;not null" json:"creator"`
	Sector      string          `gorm:"size:128" json:"sector"`
	AssignedTo  string          `gorm:"size:255" json:"assigned_to"`
	Status      string          `gorm:"size:32;index;not null" json:"status"`
	Timeline    []TimelineEvent `gorm:"foreignKey:OccurrenceID;constraint:OnDelete:CASCADE" json:"timeline,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TimelineEvent is one append-only entry in an occurrence history.
type TimelineEvent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OccurrenceID uuid.UUID `gorm:"type:uuid;index;not null" json:"occurrence_id"`
	Status       string    `gorm:"size:32;not null" json:"status"`
	UpdatedBy    string    `gorm:"size:255;not null" json:"updated_by"`
	Timestamp    time.Time `gorm:"index;not null" json:"timestamp"`
	Comment      string    `gorm:"type:text" json:"comment"`
}

// Suggestion is an entry in the suggestions inbox.
type Suggestion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Subject   string    `gorm:"size:255;not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Author    string    `gorm:"size:255" json:"author"`
	Status    string    `gorm:"size:32;not null;default:Nova" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParkingRequest asks for a parking-space allocation on base.
type ParkingRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerName    string    `gorm:"size:255;not null" json:"owner_name"`
	Saram        string    `gorm:"size:32" json:"saram"`
	Sector       string    `gorm:"size:128" json:"sector"`
	VehicleModel string    `gorm:"size:128" json:"vehicle_model"`
	VehiclePlate string    `gorm:"size:16;index" json:"vehicle_plate"`
	Slot         string    `gorm:"size:32" json:"slot"`
	Status       string    `gorm:"size:32;not null;default:Pendente" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MissionOrder is a mission-order document reference (OMIS number is the
// organization's opaque order identifier).
type MissionOrder struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OmisNumber  string    `gorm:"size:64;uniqueIndex;not null" json:"omis_number"`
	Destination string    `gorm:"size:255" json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Personnel   string    `gorm:"type:text" json:"personnel"`
	Status      string    `gorm:"size:32;not null;default:Aberta" json:"status"`
	CreatedBy   string    `gorm:"size:255" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuditLog stores immutable operational audit events.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string     `gorm:"size:128;not null" json:"action"`
	Resource   string     `gorm:"size:64" json:"resource"`
	ResourceID string     `gorm:"size:64" json:"resource_id"`
	IPAddress  string     `gorm:"size:64" json:"ip_address"`
	UserAgent  string     `gorm:"size:255" json:"user_agent"`
	Context    string     `gorm:"type:text" json:"context,omitempty"`
	OccurredAt time.Time  `gorm:"index;not null" json:"occurred_at"`
}

// BeforeCreate assigns ids so the models work the same on postgres and the
// sqlite test databases.
func (u *User) BeforeCreate(*gorm.DB) error           { ensureID(&u.ID); return nil }
func (s *Session) BeforeCreate(*gorm.DB) error        { ensureID(&s.ID); return nil }
func (e *AccessLogEntry) BeforeCreate(*gorm.DB) error { ensureID(&e.ID); return nil }
func (o *Occurrence) BeforeCreate(*gorm.DB) error     { ensureID(&o.ID); return nil }
func (t *TimelineEvent) BeforeCreate(*gorm.DB) error  { ensureID(&t.ID); return nil }
func (s *Suggestion) BeforeCreate(*gorm.DB) error     { ensureID(&s.ID); return nil }
func (p *ParkingRequest) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
func (m *MissionOrder) BeforeCreate(*gorm.DB) error   { ensureID(&m.ID); return nil }
func (a *AuditLog) BeforeCreate(*gorm.DB) error       { ensureID(&a.ID); return nil }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every model for migration.
func All() []any {
	return []any{
		&User{},
		&Session{},
		&AccessLogEntry{},
		&Occurrence{},
		&TimelineEvent{},
		&Suggestion{},
		&ParkingRequest{},
		&MissionOrder{},
		&AuditLog{},
	}
}

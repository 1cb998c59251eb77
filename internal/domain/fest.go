package domain

import "time"

type Mode string

const (
	ModeOnline  Mode = "ONLINE"
	ModeHybrid  Mode = "HYBRID"
	ModeOffline Mode = "OFFLINE"
)

type ParticipationType string

const (
	ParticipationIndividual ParticipationType = "INDIVIDUAL"
	ParticipationTeam       ParticipationType = "TEAM"
)

// FestDomain is a topical subject area owning events and workshops.
// Named FestDomain rather than Domain to avoid colliding with the
// package name at call sites.
type FestDomain struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PhotoHash   []byte `json:"photo_hash,omitempty"`
}

type Event struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Mode              Mode              `json:"mode"`
	Venue             string            `json:"venue"`
	DomainID          int64             `json:"domain_id"`
	Prize             int               `json:"prize"`
	Points            int               `json:"points"`
	PSLink            string            `json:"ps_link"`
	StartTime         time.Time         `json:"start_time"`
	EndTime           time.Time         `json:"end_time"`
	RegistrationStart time.Time         `json:"registration_start"`
	RegistrationEnd   time.Time         `json:"registration_end"`
	WhatsappLink      string            `json:"whatsapp_link"`
	ParticipationType ParticipationType `json:"participation_type"`
	PhotoHash         []byte            `json:"photo_hash,omitempty"`
}

type Workshop struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Mode              Mode      `json:"mode"`
	Venue             string    `json:"venue"`
	DomainID          int64     `json:"domain_id"`
	Points            int       `json:"points"`
	PSLink            string    `json:"ps_link"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`
	WhatsappLink      string    `json:"whatsapp_link"`
	PhotoHash         []byte    `json:"photo_hash,omitempty"`
}

// Payment is a verified fee record; its presence with Verified=true
// satisfies the payment gate for non-institution accounts.
type Payment struct {
	UserID    int64  `json:"user_id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"payment_amount"`
	Verified  bool   `json:"-"`
}

package models

// RSVPStatus is the answer of a public RSVP submission.
type RSVPStatus string

const (
	RSVPYes RSVPStatus = "yes"
	RSVPNo  RSVPStatus = "no"
)

// RSVP stores an answer submitted from the public RSVP form.
type RSVP struct {
	BaseModel

	Name    string     `gorm:"size:200;not null" json:"name"`
	Email   *string    `gorm:"size:320;index" json:"email,omitempty"`
	Status  RSVPStatus `gorm:"size:8;not null;index" json:"status"`
	Message *string    `gorm:"type:text" json:"message,omitempty"`
}

// TableName keeps the plural form readable.
func (RSVP) TableName() string {
	return "rsvps"
}

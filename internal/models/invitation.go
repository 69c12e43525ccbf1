package models

import (
	"strings"
	"time"
)

// Locale is a guest's preferred language.
type Locale string

const (
	LocaleES Locale = "es"
	LocaleFR Locale = "fr"
	LocaleEN Locale = "en"
	LocaleDE Locale = "de"
	LocaleIT Locale = "it"
)

// Valid reports whether the locale is one a guest may choose.
func (l Locale) Valid() bool {
	switch l {
	case LocaleES, LocaleFR, LocaleEN, LocaleDE, LocaleIT:
		return true
	}
	return false
}

// Dietary is the closed set of dietary preferences collected per member.
type Dietary string

const (
	DietaryNone        Dietary = "none"
	DietaryVegetarian  Dietary = "vegetarian"
	DietaryVegan       Dietary = "vegan"
	DietaryPescatarian Dietary = "pescatarian"
	DietaryGlutenFree  Dietary = "gluten_free"
	DietaryHalal       Dietary = "halal"
	DietaryKosher      Dietary = "kosher"
	DietaryNoPork      Dietary = "no_pork"
	DietaryNoAlcohol   Dietary = "no_alcohol"
	DietaryOther       Dietary = "other"
)

// Valid reports whether the value belongs to the dietary enum.
func (d Dietary) Valid() bool {
	switch d {
	case DietaryNone, DietaryVegetarian, DietaryVegan, DietaryPescatarian, DietaryGlutenFree,
		DietaryHalal, DietaryKosher, DietaryNoPork, DietaryNoAlcohol, DietaryOther:
		return true
	}
	return false
}

// MemberRole distinguishes the household contact from companions.
type MemberRole string

const (
	RolePrimary   MemberRole = "primary"
	RoleCompanion MemberRole = "companion"
)

// Valid reports whether the role is known.
func (r MemberRole) Valid() bool {
	return r == RolePrimary || r == RoleCompanion
}

// MemberStatus tracks delivery and confirmation. It only moves from sent to confirmed.
type MemberStatus string

const (
	StatusSent      MemberStatus = "sent"
	StatusConfirmed MemberStatus = "confirmed"
)

// GroupInvitation is one household's invitation.
type GroupInvitation struct {
	BaseModel

	GroupID           string  `gorm:"size:32;not null;uniqueIndex" json:"groupId"`
	ContactName       string  `gorm:"size:200;not null" json:"contactName"`
	ContactEmail      string  `gorm:"size:320;not null;index" json:"contactEmail"`
	ContactPhone      *string `gorm:"size:50" json:"contactPhone,omitempty"`
	PreferredLanguage Locale  `gorm:"size:5;not null;default:es" json:"preferredLanguage"`
	Notes             *string `gorm:"type:text" json:"notes,omitempty"`

	Members []InvitationMember `gorm:"foreignKey:InvitationID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// PrimaryMember returns the member holding the primary role, or the first member.
func (g *GroupInvitation) PrimaryMember() *InvitationMember {
	if g == nil || len(g.Members) == 0 {
		return nil
	}
	for i := range g.Members {
		if g.Members[i].Role == RolePrimary {
			return &g.Members[i]
		}
	}
	return &g.Members[0]
}

// InvitationMember is one named guest within a group invitation. Position preserves
// submission order.
type InvitationMember struct {
	BaseModel

	InvitationID       string       `gorm:"size:36;not null;index" json:"invitationId"`
	Position           int          `gorm:"not null" json:"position"`
	FirstName          string       `gorm:"size:100;not null" json:"firstName"`
	LastName           string       `gorm:"size:100;not null" json:"lastName"`
	TargetEmail        string       `gorm:"size:320;not null;index" json:"targetEmail"`
	OriginalGuestEmail *string      `gorm:"size:320" json:"originalGuestEmail,omitempty"`
	Age                float64      `gorm:"not null" json:"age"`
	IsChild            bool         `gorm:"not null;default:false" json:"isChild"`
	Phone              *string      `gorm:"size:50" json:"phone,omitempty"`
	Allergies          *string      `gorm:"type:text" json:"allergies,omitempty"`
	Dietary            Dietary      `gorm:"size:20;not null;default:none" json:"dietary"`
	DietaryOther       *string      `gorm:"size:200" json:"dietaryOther,omitempty"`
	MobilityNeeds      *string      `gorm:"type:text" json:"mobilityNeeds,omitempty"`
	SongSuggestion     *string      `gorm:"size:200" json:"songSuggestion,omitempty"`
	Role               MemberRole   `gorm:"size:16;not null" json:"role"`
	Token              string       `gorm:"type:text;not null" json:"-"`
	TokenHash          string       `gorm:"size:64;not null;uniqueIndex" json:"-"`
	AccessLink         string       `gorm:"type:text" json:"-"`
	Status             MemberStatus `gorm:"size:16;not null;default:sent;index" json:"status"`
	Used               bool         `gorm:"not null;default:false" json:"used"`
	SentAt             time.Time    `json:"sentAt"`
	ConfirmedAt        *time.Time   `json:"confirmedAt,omitempty"`
}

// FullName joins first and last name.
func (m InvitationMember) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

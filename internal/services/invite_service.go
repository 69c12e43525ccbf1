package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/romyseb/wedding/internal/auth"
	"github.com/romyseb/wedding/internal/emails"
	"github.com/romyseb/wedding/internal/models"
	"github.com/romyseb/wedding/pkg/crypto"
	"github.com/romyseb/wedding/pkg/logger"
	"github.com/romyseb/wedding/pkg/mail"
	"github.com/romyseb/wedding/pkg/metrics"
	"github.com/romyseb/wedding/pkg/validator"
)

const (
	defaultInviteBaseURL       = "https://romyseb.ch"
	defaultInviteSender        = "Romina & Sebas <contact@romyseb.ch>"
	defaultDispatchConcurrency = 4
	groupIDBytes               = 9 // twelve URL-safe characters
	maxGuestAge                = 120
	adultAge                   = 18
)

// TokenSigner mints guest access tokens.
type TokenSigner interface {
	Sign(identity auth.GuestIdentity) (string, error)
}

// EmailRenderer renders localized access link emails.
type EmailRenderer interface {
	Render(preferred string, kind emails.Kind, data emails.Data) (emails.Email, error)
}

// GroupInput is the household contact of a bulk submission.
type GroupInput struct {
	ContactName       string `json:"contactName"`
	ContactEmail      string `json:"contactEmail"`
	ContactPhone      string `json:"contactPhone,omitempty"`
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// GuestInput is one submitted guest. Email is accepted as an alias of the guest's own address.
type GuestInput struct {
	Role               string   `json:"role,omitempty"`
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	TargetEmail        string   `json:"targetEmail,omitempty"`
	Email              string   `json:"email,omitempty"`
	OriginalGuestEmail string   `json:"originalGuestEmail,omitempty"`
	Age                *float64 `json:"age"`
	IsChild            bool     `json:"isChild,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	Allergies          string   `json:"allergies,omitempty"`
	Dietary            string   `json:"dietary,omitempty"`
	DietaryOther       string   `json:"dietaryOther,omitempty"`
	MobilityNeeds      string   `json:"mobilityNeeds,omitempty"`
	SongSuggestion     string   `json:"songSuggestion,omitempty"`
}

// BulkInviteRequest is a household submission.
type BulkInviteRequest struct {
	Group  GroupInput   `json:"group"`
	Guests []GuestInput `json:"guests"`
}

// DeliveryStatus summarises the dispatch step of a bulk invitation.
type DeliveryStatus string

const (
	DeliveryComplete DeliveryStatus = "complete"
	DeliveryPartial  DeliveryStatus = "partial"
)

// DeliveryOutcome records the dispatch result for one member. Error is safe to show to guests.
type DeliveryOutcome struct {
	MemberID  string `json:"memberId"`
	Email     string `json:"email"`
	Delivered bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Err       error  `json:"-"`
}

// BulkInviteResult is returned once the invitation is persisted and every dispatch has finished.
type BulkInviteResult struct {
	InvitationID string                  `json:"invitationId"`
	GroupID      string                  `json:"groupId"`
	Status       DeliveryStatus          `json:"status"`
	Outcomes     []DeliveryOutcome       `json:"results"`
	Invitation   *models.GroupInvitation `json:"-"`
}

// Failed returns the outcomes whose dispatch did not succeed.
func (r *BulkInviteResult) Failed() []DeliveryOutcome {
	var failed []DeliveryOutcome
	for _, outcome := range r.Outcomes {
		if !outcome.Delivered {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// ResendResult describes a completed token rotation.
type ResendResult struct {
	MemberID  string    `json:"memberId"`
	Email     string    `json:"email"`
	SentAt    time.Time `json:"sentAt"`
	Delivered bool      `json:"delivered"`
}

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteBaseURL configures the base URL used to build access links.
func WithInviteBaseURL(baseURL string) InviteOption {
	return func(s *InviteService) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			s.baseURL = trimmed
		}
	}
}

// WithInviteSender overrides the From header of invitation emails.
func WithInviteSender(from string) InviteOption {
	return func(s *InviteService) {
		if from = strings.TrimSpace(from); from != "" {
			s.from = from
		}
	}
}

// WithDispatchConcurrency bounds the number of concurrent email dispatches.
func WithDispatchConcurrency(n int) InviteOption {
	return func(s *InviteService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InviteService issues group invitations and rotates member tokens.
type InviteService struct {
	store       InvitationStore
	signer      TokenSigner
	mailer      mail.Mailer
	renderer    EmailRenderer
	baseURL     string
	from        string
	concurrency int
	now         func() time.Time
	log         *zap.Logger
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(store InvitationStore, signer TokenSigner, mailer mail.Mailer, renderer EmailRenderer, opts ...InviteOption) (*InviteService, error) {
	switch {
	case store == nil:
		return nil, errors.New("invite service: store is required")
	case signer == nil:
		return nil, errors.New("invite service: token signer is required")
	case mailer == nil:
		return nil, errors.New("invite service: mailer is required")
	case renderer == nil:
		return nil, errors.New("invite service: email renderer is required")
	}

	service := &InviteService{
		store:       store,
		signer:      signer,
		mailer:      mailer,
		renderer:    renderer,
		baseURL:     defaultInviteBaseURL,
		from:        defaultInviteSender,
		concurrency: defaultDispatchConcurrency,
		now:         time.Now,
		log:         logger.WithModule("invites"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RequestBulk validates a household submission, persists one invitation with a token per
// member and emails every member. Delivery failures never undo the persisted invitation.
func (s *InviteService) RequestBulk(ctx context.Context, req BulkInviteRequest) (*BulkInviteResult, error) {
	if err := validateBulkRequest(req); err != nil {
		return nil, err
	}

	groupID, err := crypto.GenerateToken(groupIDBytes)
	if err != nil {
		return nil, fmt.Errorf("invite service: generate group id: %w", err)
	}

	now := s.now()
	contactEmail := strings.ToLower(strings.TrimSpace(req.Group.ContactEmail))
	group := &models.GroupInvitation{
		GroupID:           groupID,
		ContactName:       strings.TrimSpace(req.Group.ContactName),
		ContactEmail:      contactEmail,
		ContactPhone:      optional(req.Group.ContactPhone),
		PreferredLanguage: preferredLanguage(req.Group.PreferredLanguage),
		Notes:             optional(req.Group.Notes),
		Members:           normalizeGuests(req.Guests, contactEmail),
	}

	for i := range group.Members {
		member := &group.Members[i]
		token, err := s.signer.Sign(memberIdentity(*member, groupID))
		if err != nil {
			return nil, fmt.Errorf("invite service: sign token for guest %d: %w", i, err)
		}
		member.Token = token
		member.AccessLink = s.accessLink(token)
		member.Status = models.StatusSent
		member.SentAt = now
		metrics.TokensIssued.WithLabelValues("bulk").Inc()
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	metrics.InvitationsIssued.Inc()

	outcomes := s.dispatchAll(ctx, group)

	result := &BulkInviteResult{
		InvitationID: group.ID,
		GroupID:      group.GroupID,
		Status:       DeliveryComplete,
		Outcomes:     outcomes,
		Invitation:   group,
	}
	if len(result.Failed()) > 0 {
		result.Status = DeliveryPartial
	}

	s.log.Info("group invitation issued",
		zap.String("group_id", group.GroupID),
		zap.Int("members", len(group.Members)),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

// Resend mints a new token for the member addressed by email and mails it. The rotation
// only succeeds if the member still holds the token that was read, so concurrent resends
// cannot silently overwrite each other. When delivery fails the new token stays valid and
// ErrDelivery is returned with the result.
func (s *InviteService) Resend(ctx context.Context, email string) (*ResendResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalid("email", "is required")
	}
	if !validator.IsEmailShape(email) {
		return nil, invalid("email", "is not a valid email address")
	}

	record, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrInvitationNotFound
	}

	member := record.Member
	token, err := s.signer.Sign(memberIdentity(member, record.Invitation.GroupID))
	if err != nil {
		return nil, fmt.Errorf("invite service: sign token: %w", err)
	}
	metrics.TokensIssued.WithLabelValues("resend").Inc()

	now := s.now()
	rotation := TokenRotation{Token: token, AccessLink: s.accessLink(token), SentAt: now}
	if err := s.store.UpdateMemberToken(ctx, MemberMatch{Token: member.Token}, rotation); err != nil {
		return nil, err
	}

	member.Token = rotation.Token
	member.AccessLink = rotation.AccessLink
	member.SentAt = now

	result := &ResendResult{MemberID: member.ID, Email: member.TargetEmail, SentAt: now}
	if err := s.dispatch(ctx, emails.KindResend, string(record.Invitation.PreferredLanguage), member); err != nil {
		return result, fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	result.Delivered = true
	return result, nil
}

func (s *InviteService) dispatchAll(ctx context.Context, group *models.GroupInvitation) []DeliveryOutcome {
	outcomes := make([]DeliveryOutcome, len(group.Members))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range group.Members {
		member := group.Members[i]
		g.Go(func() error {
			outcome := DeliveryOutcome{MemberID: member.ID, Email: member.TargetEmail, Delivered: true}
			if err := s.dispatch(ctx, emails.KindInvite, string(group.PreferredLanguage), member); err != nil {
				outcome.Delivered = false
				outcome.Error = "delivery failed"
				outcome.Err = err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *InviteService) dispatch(ctx context.Context, kind emails.Kind, language string, member models.InvitationMember) error {
	email, err := s.renderer.Render(language, kind, emails.Data{FirstName: member.FirstName, Link: member.AccessLink})
	if err == nil {
		err = s.mailer.Send(ctx, mail.Message{
			From:    s.from,
			To:      []string{member.TargetEmail},
			Subject: email.Subject,
			Body:    email.Text,
			HTML:    email.HTML,
		})
	}

	if err != nil {
		metrics.EmailDeliveries.WithLabelValues(string(kind), "failure").Inc()
		s.log.Warn("access link email failed",
			zap.String("kind", string(kind)),
			zap.String("member_id", member.ID),
			zap.String("to", logger.MaskEmail(member.TargetEmail)),
			zap.Error(err),
		)
		return err
	}

	metrics.EmailDeliveries.WithLabelValues(string(kind), "success").Inc()
	return nil
}

func (s *InviteService) accessLink(token string) string {
	return s.baseURL + "/acces?token=" + url.QueryEscape(token)
}

func validateBulkRequest(req BulkInviteRequest) error {
	group := req.Group
	if strings.TrimSpace(group.ContactName) == "" {
		return invalid("contactName", "is required")
	}
	contactEmail := strings.TrimSpace(group.ContactEmail)
	if contactEmail == "" {
		return invalid("contactEmail", "is required")
	}
	if !validator.IsEmailShape(contactEmail) {
		return invalid("contactEmail", "is not a valid email address")
	}
	if lang := strings.TrimSpace(group.PreferredLanguage); lang != "" && !models.Locale(strings.ToLower(lang)).Valid() {
		return invalid("preferredLanguage", "must be one of es, fr, en, de, it")
	}
	if len(req.Guests) == 0 {
		return invalid("guests", "at least one guest is required")
	}

	for i, guest := range req.Guests {
		if err := validateGuest(i, guest); err != nil {
			return err
		}
	}
	return nil
}

func validateGuest(i int, guest GuestInput) error {
	field := func(name string) string { return fmt.Sprintf("guests[%d].%s", i, name) }

	if strings.TrimSpace(guest.FirstName) == "" {
		return invalid(field("firstName"), "is required")
	}
	if strings.TrimSpace(guest.LastName) == "" {
		return invalid(field("lastName"), "is required")
	}

	if guest.Age == nil {
		return invalid(field("age"), "is required")
	}
	age := *guest.Age
	if math.IsNaN(age) || math.IsInf(age, 0) || age < 0 || age > maxGuestAge {
		return invalid(field("age"), "must be between 0 and %d", maxGuestAge)
	}
	if guest.IsChild && age >= adultAge {
		return invalid(field("isChild"), "children must be younger than %d", adultAge)
	}

	emailsToCheck := []struct{ name, value string }{
		{"originalGuestEmail", guest.OriginalGuestEmail},
		{"email", guest.Email},
		{"targetEmail", guest.TargetEmail},
	}
	for _, candidate := range emailsToCheck {
		if value := strings.TrimSpace(candidate.value); value != "" && !validator.IsEmailShape(value) {
			return invalid(field(candidate.name), "is not a valid email address")
		}
	}

	if dietary := strings.TrimSpace(guest.Dietary); dietary != "" && !models.Dietary(dietary).Valid() {
		return invalid(field("dietary"), "is not a supported dietary preference")
	}
	if role := strings.TrimSpace(guest.Role); role != "" && !models.MemberRole(role).Valid() {
		return invalid(field("role"), "must be primary or companion")
	}
	return nil
}

// normalizeGuests resolves delivery addresses and roles. Exactly one member ends up
// primary: the first one marked as such, else the first guest.
func normalizeGuests(guests []GuestInput, contactEmail string) []models.InvitationMember {
	members := make([]models.InvitationMember, len(guests))
	primaryAssigned := false

	for i, guest := range guests {
		role := models.RoleCompanion
		if models.MemberRole(strings.TrimSpace(guest.Role)) == models.RolePrimary && !primaryAssigned {
			role = models.RolePrimary
			primaryAssigned = true
		}

		dietary := models.Dietary(strings.TrimSpace(guest.Dietary))
		if dietary == "" {
			dietary = models.DietaryNone
		}

		original := optional(strings.ToLower(guest.OriginalGuestEmail))
		if original == nil {
			original = optional(strings.ToLower(guest.Email))
		}

		members[i] = models.InvitationMember{
			Position:           i,
			FirstName:          strings.TrimSpace(guest.FirstName),
			LastName:           strings.TrimSpace(guest.LastName),
			TargetEmail:        resolveTargetEmail(guest, contactEmail),
			OriginalGuestEmail: original,
			Age:                *guest.Age,
			IsChild:            guest.IsChild,
			Phone:              optional(guest.Phone),
			Allergies:          optional(guest.Allergies),
			Dietary:            dietary,
			DietaryOther:       optional(guest.DietaryOther),
			MobilityNeeds:      optional(guest.MobilityNeeds),
			SongSuggestion:     optional(guest.SongSuggestion),
			Role:               role,
		}
	}

	if !primaryAssigned && len(members) > 0 {
		members[0].Role = models.RolePrimary
	}
	return members
}

func resolveTargetEmail(guest GuestInput, contactEmail string) string {
	for _, candidate := range []string{guest.TargetEmail, guest.Email} {
		if value := strings.TrimSpace(candidate); value != "" && validator.IsEmailShape(value) {
			return strings.ToLower(value)
		}
	}
	return strings.ToLower(contactEmail)
}

func memberIdentity(member models.InvitationMember, groupID string) auth.GuestIdentity {
	age := member.Age
	isChild := member.IsChild
	return auth.GuestIdentity{
		Email:     member.TargetEmail,
		FirstName: member.FirstName,
		LastName:  member.LastName,
		Age:       &age,
		IsChild:   &isChild,
		GroupID:   groupID,
		Role:      string(member.Role),
	}
}

func preferredLanguage(value string) models.Locale {
	lang := models.Locale(strings.ToLower(strings.TrimSpace(value)))
	if lang == "" {
		return models.LocaleES
	}
	return lang
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/romyseb/wedding/internal/auth"
	"github.com/romyseb/wedding/internal/locale"
	"github.com/romyseb/wedding/internal/models"
	"github.com/romyseb/wedding/pkg/logger"
	"github.com/romyseb/wedding/pkg/metrics"
)

// AccessOutcome classifies an access link check.
type AccessOutcome string

const (
	AccessMissing  AccessOutcome = "missing"
	AccessInvalid  AccessOutcome = "invalid"
	AccessNotFound AccessOutcome = "not_found"
	AccessGranted  AccessOutcome = "granted"
)

// AccessDecision is the result of Verify. Record is set only when access is granted.
type AccessDecision struct {
	Outcome AccessOutcome
	Reason  string
	Record  *MemberRecord
}

// Granted reports whether the token may be stored as the guest credential.
func (d AccessDecision) Granted() bool {
	return d.Outcome == AccessGranted
}

// GuestTokenCodec verifies guest tokens and issues guest sessions.
type GuestTokenCodec interface {
	Verify(token string) auth.VerifyResult
	SignSession(payload auth.SessionPayload) (string, error)
	VerifySession(token string) auth.SessionResult
}

// GuestSession is an authenticated guest. Token is the signed session token; Renewed is
// set when it was minted during the current call and must replace the client's cookie.
type GuestSession struct {
	auth.SessionPayload
	Token   string `json:"-"`
	Renewed bool   `json:"-"`
}

// MemberSummary is the public view of a household member.
type MemberSummary struct {
	ID        string              `json:"id"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Role      models.MemberRole   `json:"role"`
	Status    models.MemberStatus `json:"status"`
	IsChild   bool                `json:"isChild"`
}

// InvitationOverview is the content of the protected invitation page.
type InvitationOverview struct {
	Locale      string                  `json:"locale"`
	GroupID     string                  `json:"groupId"`
	ContactName string                  `json:"contactName"`
	Guest       models.InvitationMember `json:"guest"`
	Members     []MemberSummary         `json:"members"`
}

// AccessOption customises AccessService behaviour.
type AccessOption func(*AccessService)

// WithAccessClock injects a custom clock primarily for testing.
func WithAccessClock(clock func() time.Time) AccessOption {
	return func(s *AccessService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// AccessService checks access links and turns them into guest sessions.
type AccessService struct {
	store      InvitationStore
	codec      GuestTokenCodec
	negotiator *locale.Negotiator
	now        func() time.Time
	log        *zap.Logger
}

// NewAccessService constructs an AccessService.
func NewAccessService(store InvitationStore, codec GuestTokenCodec, negotiator *locale.Negotiator, opts ...AccessOption) (*AccessService, error) {
	if store == nil {
		return nil, errors.New("access service: store is required")
	}
	if codec == nil {
		return nil, errors.New("access service: token codec is required")
	}
	if negotiator == nil {
		negotiator = locale.NewNegotiator(locale.Default)
	}

	service := &AccessService{
		store:      store,
		codec:      codec,
		negotiator: negotiator,
		now:        time.Now,
		log:        logger.WithModule("access"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Verify decides whether an access link token grants entry. The returned error is
// reserved for storage failures; every guest-side problem is an outcome.
func (s *AccessService) Verify(ctx context.Context, token string) (AccessDecision, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.decide(AccessDecision{Outcome: AccessMissing}), nil
	}

	result := s.codec.Verify(token)
	if !result.OK() {
		s.log.Debug("access token rejected",
			zap.String("reason", result.Reason),
			zap.String("token", logger.MaskToken(token)),
		)
		return s.decide(AccessDecision{Outcome: AccessInvalid, Reason: result.Reason}), nil
	}

	record, err := s.store.FindByToken(ctx, token)
	if err != nil {
		return AccessDecision{}, err
	}
	if record == nil {
		return s.decide(AccessDecision{Outcome: AccessNotFound}), nil
	}

	return s.decide(AccessDecision{Outcome: AccessGranted, Record: record}), nil
}

// Confirm marks the member holding token as confirmed and opens a guest session.
// forcedLocale, when set, wins over the household's preferred language.
func (s *AccessService) Confirm(ctx context.Context, token, forcedLocale string) (*GuestSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalid("token", "is required")
	}

	if result := s.codec.Verify(token); !result.OK() {
		return nil, ErrTokenInvalid
	}

	record, err := s.store.MarkMemberConfirmed(ctx, token, s.now())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrTokenInvalid
	}
	metrics.Confirmations.Inc()

	payload := auth.SessionPayload{
		InvitationID: record.Invitation.ID,
		MemberID:     record.Member.ID,
		GroupID:      record.Invitation.GroupID,
		FirstName:    record.Member.FirstName,
		LastName:     record.Member.LastName,
		Locale:       s.sessionLocale(forcedLocale, string(record.Invitation.PreferredLanguage)),
	}
	sessionToken, err := s.codec.SignSession(payload)
	if err != nil {
		return nil, err
	}

	s.log.Info("guest confirmed",
		zap.String("member_id", record.Member.ID),
		zap.String("group_id", record.Invitation.GroupID),
	)
	return &GuestSession{SessionPayload: payload, Token: sessionToken, Renewed: true}, nil
}

// Authenticate resolves the guest cookie. A session token is accepted as is; a guest
// access token is confirmed and exchanged for a fresh session.
func (s *AccessService) Authenticate(ctx context.Context, credential string) (*GuestSession, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrTokenInvalid
	}

	if session := s.codec.VerifySession(credential); session.OK() {
		return &GuestSession{SessionPayload: session.Claims.SessionPayload, Token: credential}, nil
	}

	return s.Confirm(ctx, credential, "")
}

// Overview loads the invitation page content for session.
func (s *AccessService) Overview(ctx context.Context, session *GuestSession) (*InvitationOverview, error) {
	if session == nil {
		return nil, ErrTokenInvalid
	}

	group, err := s.store.GetGroup(ctx, session.InvitationID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrInvitationNotFound
	}

	overview := &InvitationOverview{
		Locale:      s.sessionLocale(session.Locale, string(group.PreferredLanguage)),
		GroupID:     group.GroupID,
		ContactName: group.ContactName,
		Members:     make([]MemberSummary, 0, len(group.Members)),
	}

	found := false
	for _, member := range group.Members {
		if member.ID == session.MemberID {
			overview.Guest = member
			found = true
		}
		overview.Members = append(overview.Members, MemberSummary{
			ID:        member.ID,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			Role:      member.Role,
			Status:    member.Status,
			IsChild:   member.IsChild,
		})
	}
	if !found {
		return nil, ErrInvitationNotFound
	}
	return overview, nil
}

func (s *AccessService) sessionLocale(forced, preferred string) string {
	if strings.TrimSpace(forced) != "" {
		return s.negotiator.Normalize(forced)
	}
	return s.negotiator.Normalize(preferred)
}

func (s *AccessService) decide(decision AccessDecision) AccessDecision {
	metrics.AccessChecks.WithLabelValues(string(decision.Outcome)).Inc()
	return decision
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/romyseb/wedding/internal/auth"
	"github.com/romyseb/wedding/internal/database/testutil"
	"github.com/romyseb/wedding/internal/emails"
	"github.com/romyseb/wedding/internal/locale"
	"github.com/romyseb/wedding/pkg/mail"
	"github.com/romyseb/wedding/web"
)

const testBaseURL = "https://romyseb.ch"

type recordingMailer struct {
	mu       sync.Mutex
	sent     []mail.Message
	failures map[string]error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, to := range msg.To {
		if err := m.failures[to]; err != nil {
			return err
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) Messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

func (m *recordingMailer) failFor(address string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = make(map[string]error)
	}
	m.failures[address] = err
}

type countingSigner struct {
	mu         sync.Mutex
	codec      *auth.TokenCodec
	identities []auth.GuestIdentity
}

func (s *countingSigner) Sign(identity auth.GuestIdentity) (string, error) {
	s.mu.Lock()
	s.identities = append(s.identities, identity)
	s.mu.Unlock()
	return s.codec.Sign(identity)
}

func (s *countingSigner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.identities)
}

type inviteFixture struct {
	db       *gorm.DB
	store    *GormInvitationStore
	codec    *auth.TokenCodec
	signer   *countingSigner
	mailer   *recordingMailer
	invites  *InviteService
	access   *AccessService
	clockNow time.Time
}

func newTestCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: "test-secret"})
	require.NoError(t, err)
	return codec
}

func newTestRenderer(t *testing.T) *emails.Renderer {
	t.Helper()
	files, err := web.EmailTemplates()
	require.NoError(t, err)
	renderer, err := emails.NewRenderer(files, locale.NewNegotiator(locale.Default))
	require.NoError(t, err)
	return renderer
}

func newTestStore(t *testing.T) (*GormInvitationStore, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := NewInvitationStore(db)
	require.NoError(t, err)
	return store, db
}

func newInviteFixture(t *testing.T) *inviteFixture {
	t.Helper()

	store, db := newTestStore(t)
	codec := newTestCodec(t)
	fixture := &inviteFixture{
		db:       db,
		store:    store,
		codec:    codec,
		signer:   &countingSigner{codec: codec},
		mailer:   &recordingMailer{},
		clockNow: time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC),
	}

	invites, err := NewInviteService(store, fixture.signer, fixture.mailer, newTestRenderer(t),
		WithInviteBaseURL(testBaseURL),
		WithInviteClock(func() time.Time { return fixture.clockNow }),
		WithDispatchConcurrency(2),
	)
	require.NoError(t, err)
	fixture.invites = invites

	access, err := NewAccessService(store, codec, locale.NewNegotiator(locale.Default),
		WithAccessClock(func() time.Time { return fixture.clockNow }),
	)
	require.NoError(t, err)
	fixture.access = access

	return fixture
}

func age(v float64) *float64 { return &v }

func householdRequest() BulkInviteRequest {
	return BulkInviteRequest{
		Group: GroupInput{
			ContactName:  "Ana Ruiz",
			ContactEmail: "Ana@Example.com",
		},
		Guests: []GuestInput{
			{Role: "primary", FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", Age: age(34)},
			{FirstName: "Leo", LastName: "Ruiz", Age: age(7), IsChild: true},
			{FirstName: "Marta", LastName: "Gil", TargetEmail: "marta@example.com", Age: age(33)},
		},
	}
}

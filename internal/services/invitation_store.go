package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/romyseb/wedding/internal/models"
	"github.com/romyseb/wedding/pkg/crypto"
)

var (
	_ InvitationStore = (*GormInvitationStore)(nil)
)

// InvitationStore persists group invitations and exposes per-member updates.
type InvitationStore interface {
	// CreateGroup stores the invitation and all of its members atomically.
	CreateGroup(ctx context.Context, group *models.GroupInvitation) error
	// FindByToken returns the member holding token, or nil when none does.
	FindByToken(ctx context.Context, token string) (*MemberRecord, error)
	// FindByEmail returns the first member addressed to email, falling back to the
	// primary member of a group whose contact email matches. Nil when absent.
	FindByEmail(ctx context.Context, email string) (*MemberRecord, error)
	// UpdateMemberToken rewrites exactly one member's token fields.
	UpdateMemberToken(ctx context.Context, match MemberMatch, rotation TokenRotation) error
	// MarkMemberConfirmed confirms the member holding token. Nil when none does.
	MarkMemberConfirmed(ctx context.Context, token string, at time.Time) (*MemberRecord, error)
	// GetMember loads a member by id. Nil when absent.
	GetMember(ctx context.Context, memberID string) (*MemberRecord, error)
	// GetGroup loads an invitation with its members in submission order. Nil when absent.
	GetGroup(ctx context.Context, invitationID string) (*models.GroupInvitation, error)
	// CountMembersByStatus reports how many members are in each status.
	CountMembersByStatus(ctx context.Context) (map[models.MemberStatus]int64, error)
}

// MemberRecord pairs a member with its invitation. Invitation.Members is not loaded.
type MemberRecord struct {
	Invitation models.GroupInvitation
	Member     models.InvitationMember
}

// MemberMatch identifies the member to update, by current token or by email.
type MemberMatch struct {
	Token string
	Email string
}

// TokenRotation carries the replacement token fields.
type TokenRotation struct {
	Token      string
	AccessLink string
	SentAt     time.Time
}

// GormInvitationStore implements InvitationStore on a relational database.
type GormInvitationStore struct {
	db *gorm.DB
}

// NewInvitationStore constructs a GormInvitationStore.
func NewInvitationStore(db *gorm.DB) (*GormInvitationStore, error) {
	if db == nil {
		return nil, errors.New("invitation store: db is required")
	}
	return &GormInvitationStore{db: db}, nil
}

func (s *GormInvitationStore) CreateGroup(ctx context.Context, group *models.GroupInvitation) error {
	if group == nil {
		return errors.New("invitation store: group is required")
	}
	if len(group.Members) == 0 {
		return errors.New("invitation store: group requires at least one member")
	}

	for i := range group.Members {
		member := &group.Members[i]
		if member.Token == "" {
			return fmt.Errorf("invitation store: member %d has no token", i)
		}
		member.Position = i
		member.TokenHash = crypto.HashToken(member.Token)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(group).Error; err != nil {
			return err
		}
		for i := range group.Members {
			group.Members[i].InvitationID = group.ID
		}
		return tx.Create(&group.Members).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: create group: %w", ErrPersistence, ErrDuplicateToken)
		}
		return persistenceError("create group", err)
	}
	return nil
}

func (s *GormInvitationStore) FindByToken(ctx context.Context, token string) (*MemberRecord, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	var member models.InvitationMember
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND token = ?", crypto.HashToken(token), token).
		Take(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("find by token", err)
	}
	return s.withInvitation(ctx, member)
}

func (s *GormInvitationStore) FindByEmail(ctx context.Context, email string) (*MemberRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}

	member, err := s.firstMemberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return s.withInvitation(ctx, *member)
	}

	var group models.GroupInvitation
	err = s.db.WithContext(ctx).
		Where("contact_email = ?", email).
		Order("created_at ASC").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Take(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("find by contact email", err)
	}

	primary := group.PrimaryMember()
	if primary == nil {
		return nil, nil
	}
	record := &MemberRecord{Member: *primary}
	group.Members = nil
	record.Invitation = group
	return record, nil
}

func (s *GormInvitationStore) UpdateMemberToken(ctx context.Context, match MemberMatch, rotation TokenRotation) error {
	if strings.TrimSpace(rotation.Token) == "" {
		return errors.New("invitation store: rotation token is required")
	}

	query := s.db.WithContext(ctx).Model(&models.InvitationMember{})
	switch {
	case strings.TrimSpace(match.Token) != "":
		query = query.Where("token_hash = ?", crypto.HashToken(strings.TrimSpace(match.Token)))
	case strings.TrimSpace(match.Email) != "":
		member, err := s.firstMemberByEmail(ctx, strings.ToLower(strings.TrimSpace(match.Email)))
		if err != nil {
			return err
		}
		if member == nil {
			return ErrInvitationNotFound
		}
		query = query.Where("id = ? AND token_hash = ?", member.ID, member.TokenHash)
	default:
		return errors.New("invitation store: member match requires a token or an email")
	}

	result := query.Updates(map[string]interface{}{
		"token":       rotation.Token,
		"token_hash":  crypto.HashToken(rotation.Token),
		"access_link": rotation.AccessLink,
		"sent_at":     rotation.SentAt,
	})
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return fmt.Errorf("%w: update member token: %w", ErrPersistence, ErrDuplicateToken)
		}
		return persistenceError("update member token", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

func (s *GormInvitationStore) MarkMemberConfirmed(ctx context.Context, token string, at time.Time) (*MemberRecord, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.InvitationMember{}).
		Where("token_hash = ? AND token = ?", crypto.HashToken(token), token).
		Updates(map[string]interface{}{
			"status":       models.StatusConfirmed,
			"used":         true,
			"confirmed_at": at,
		})
	if result.Error != nil {
		return nil, persistenceError("mark member confirmed", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindByToken(ctx, token)
}

func (s *GormInvitationStore) GetMember(ctx context.Context, memberID string) (*MemberRecord, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, nil
	}

	var member models.InvitationMember
	err := s.db.WithContext(ctx).Where("id = ?", memberID).Take(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("get member", err)
	}
	return s.withInvitation(ctx, member)
}

func (s *GormInvitationStore) GetGroup(ctx context.Context, invitationID string) (*models.GroupInvitation, error) {
	if strings.TrimSpace(invitationID) == "" {
		return nil, nil
	}

	var group models.GroupInvitation
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", invitationID).
		Take(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("get group", err)
	}
	return &group, nil
}

func (s *GormInvitationStore) CountMembersByStatus(ctx context.Context) (map[models.MemberStatus]int64, error) {
	var rows []struct {
		Status models.MemberStatus
		Total  int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.InvitationMember{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, persistenceError("count members by status", err)
	}

	counts := map[models.MemberStatus]int64{
		models.StatusSent:      0,
		models.StatusConfirmed: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (s *GormInvitationStore) firstMemberByEmail(ctx context.Context, email string) (*models.InvitationMember, error) {
	var member models.InvitationMember
	err := s.db.WithContext(ctx).
		Model(&models.InvitationMember{}).
		Joins("JOIN group_invitations ON group_invitations.id = invitation_members.invitation_id").
		Where("invitation_members.target_email = ?", email).
		Order("group_invitations.created_at ASC").
		Order("invitation_members.position ASC").
		Take(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("find member by email", err)
	}
	return &member, nil
}

func (s *GormInvitationStore) withInvitation(ctx context.Context, member models.InvitationMember) (*MemberRecord, error) {
	var group models.GroupInvitation
	err := s.db.WithContext(ctx).Where("id = ?", member.InvitationID).Take(&group).Error
	if err != nil {
		return nil, persistenceError("load invitation", err)
	}
	return &MemberRecord{Invitation: group, Member: member}, nil
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csihub/codefest-api/internal/domain"
	"github.com/csihub/codefest-api/internal/repository"
)

var (
	ErrRegistrationEmailExists = repository.ErrRegistrationEmailExists
	ErrRegistrationNotFound    = repository.ErrRegistrationNotFound
	ErrMissingCSIProof         = errors.New("CSI membership proof is required for members")
	ErrNoParticipantTypes      = errors.New("at least one participation type is required")
	ErrNoRoundsSelected        = errors.New("at least one round must be selected")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	FindByID(ctx context.Context, id string) (domain.Registration, error)
	FindByEmail(ctx context.Context, email string) (domain.Registration, error)
	FindAll(ctx context.Context) ([]domain.Registration, error)
}

// RegistrationMailer is the slice of the mailer the registration flow uses.
type RegistrationMailer interface {
	Send(to, subject, html string, inlinePNG []byte) error
}

type RegistrationService struct {
	repo   RegistrationRepository
	mailer RegistrationMailer
}

func NewRegistrationService(repo RegistrationRepository, mailer RegistrationMailer) *RegistrationService {
	return &RegistrationService{
		repo:   repo,
		mailer: mailer,
	}
}

// Create validates cross-field invariants, normalizes the record, persists
// it and queues the confirmation email. The email is fire-and-forget: a
// send failure is logged but never rolls the record back.
func (s *RegistrationService) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	reg.PersonalInfo.Email = strings.ToLower(strings.TrimSpace(reg.PersonalInfo.Email))

	// Outside participants compete inter-institution by definition.
	if reg.ParticipationDetails.HomeInstitution == domain.FlagNo &&
		len(reg.ParticipationDetails.ParticipantTypes) == 0 {
		reg.ParticipationDetails.ParticipantTypes = []string{domain.ParticipantInter}
	}
	if len(reg.ParticipationDetails.ParticipantTypes) == 0 {
		return domain.Registration{}, ErrNoParticipantTypes
	}

	if domain.RoundsRequired(reg.ParticipationDetails.HomeInstitution, reg.ParticipationDetails.ParticipantTypes) &&
		len(reg.ParticipationDetails.Rounds) == 0 {
		return domain.Registration{}, ErrNoRoundsSelected
	}

	if reg.ParticipationDetails.HomeInstitution == domain.FlagYes &&
		reg.ParticipationDetails.CSIMember == domain.FlagYes &&
		reg.Documents.CSIProof == "" {
		return domain.Registration{}, ErrMissingCSIProof
	}

	// The client-sent total is advisory only.
	computed := domain.ComputeTotalPrice(
		reg.ParticipationDetails.HomeInstitution,
		reg.ParticipationDetails.ParticipantTypes,
		reg.ParticipationDetails.CSIMember,
		reg.ParticipationDetails.Rounds,
	)
	if reg.ParticipationDetails.TotalPrice != computed {
		zap.L().Warn("client total price mismatch, overriding",
			zap.String("email", reg.PersonalInfo.Email),
			zap.Int("client", reg.ParticipationDetails.TotalPrice),
			zap.Int("computed", computed))
	}
	reg.ParticipationDetails.TotalPrice = computed

	if err := s.checkEmailExists(ctx, reg.PersonalInfo.Email); err != nil {
		return domain.Registration{}, err
	}

	reg.ID = newRegistrationID()
	reg.Status = domain.StatusPending
	reg.Arrived = domain.FlagNo
	reg.QRToken = ""
	reg.CreatedAt = time.Now()
	reg.ArrivedAt = nil

	created, err := s.repo.Create(ctx, reg)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	go s.sendConfirmation(created)

	return created, nil
}

func (s *RegistrationService) Get(ctx context.Context, id string) (domain.Registration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return reg, nil
}

// List returns all registrations, newest first.
func (s *RegistrationService) List(ctx context.Context) ([]domain.Registration, error) {
	regs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return regs, nil
}

func (s *RegistrationService) sendConfirmation(reg domain.Registration) {
	subject, html := ConfirmationEmail(reg)
	if err := s.mailer.Send(reg.PersonalInfo.Email, subject, html, nil); err != nil {
		zap.L().Error("failed to send confirmation email",
			zap.String("registrationID", reg.ID),
			zap.Error(err))
	}
}

// checkEmailExists is the pre-insert uniqueness probe. The database unique
// constraint still backstops the race window.
func (s *RegistrationService) checkEmailExists(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrRegistrationEmailExists
	}
	if !errors.Is(err, repository.ErrRegistrationNotFound) {
		return err
	}

	return nil
}

// newRegistrationID derives an identifier from the creation instant, with
// a short random suffix so two submissions in the same millisecond cannot
// collide.
func newRegistrationID() string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)

	return fmt.Sprintf("reg-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(suffix))
}

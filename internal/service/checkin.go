package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/csihub/codefest-api/internal/domain"
	"github.com/csihub/codefest-api/internal/pkg/qrdecode"
	"github.com/csihub/codefest-api/internal/repository"
)

var ErrNoQRCode = qrdecode.ErrNoQRCode

const (
	tokenBytes     = 16
	qrImageSize    = 512
	tokenSetTries  = 3
	checkinSegment = "checkin"
)

// VerifyOutcome classifies one scan.
type VerifyOutcome string

const (
	VerifyOK          VerifyOutcome = "ok"
	VerifyInvalid     VerifyOutcome = "invalid"
	VerifyNotApproved VerifyOutcome = "not_approved"
	VerifyDuplicate   VerifyOutcome = "duplicate"
)

type VerifyResult struct {
	Outcome   VerifyOutcome
	Name      string
	ArrivedAt *time.Time
}

type CheckinRepository interface {
	FindByID(ctx context.Context, id string) (domain.Registration, error)
	FindByToken(ctx context.Context, token string) (domain.Registration, error)
	SetToken(ctx context.Context, id, token string) error
	MarkArrived(ctx context.Context, id string, at time.Time) (bool, error)
}

type CheckinService struct {
	repo          CheckinRepository
	publicBaseURL string
}

func NewCheckinService(repo CheckinRepository, publicBaseURL string) *CheckinService {
	return &CheckinService{
		repo:          repo,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// IssueToken assigns the registration its check-in secret. Issuing is
// idempotent: a registration that already has a token gets the same one
// back, so re-sending a pass never invalidates a printed QR.
func (s *CheckinService) IssueToken(ctx context.Context, id string) (string, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if reg.QRToken != "" {
		return reg.QRToken, nil
	}

	// A fresh random token can, in principle, collide with an existing
	// one; regenerate instead of failing the issue.
	for i := 0; i < tokenSetTries; i++ {
		token, err := newCheckinToken()
		if err != nil {
			return "", err
		}

		err = s.repo.SetToken(ctx, id, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, repository.ErrTokenExists) {
			return "", fmt.Errorf("s.repo.SetToken -> %w", err)
		}
	}

	return "", repository.ErrTokenExists
}

// CheckinURL is the link encoded into the participant's QR pass.
func (s *CheckinService) CheckinURL(token string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, checkinSegment, token)
}

// QRCode renders the check-in link as a PNG.
func (s *CheckinService) QRCode(token string) ([]byte, error) {
	png, err := qrcode.Encode(s.CheckinURL(token), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("qrcode.Encode -> %w", err)
	}

	return png, nil
}

// Verify performs the scan-and-verify operation on a decoded QR string.
// The arrived transition is a single conditional update, so two
// concurrent scans of the same token resolve to one ok and one duplicate.
func (s *CheckinService) Verify(ctx context.Context, code string) (VerifyResult, error) {
	token := ExtractToken(code)
	if token == "" {
		return VerifyResult{Outcome: VerifyInvalid}, nil
	}

	reg, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return VerifyResult{Outcome: VerifyInvalid}, nil
		}

		return VerifyResult{}, fmt.Errorf("s.repo.FindByToken -> %w", err)
	}

	if reg.Status != domain.StatusApproved {
		return VerifyResult{Outcome: VerifyNotApproved, Name: reg.PersonalInfo.Name}, nil
	}

	now := time.Now()
	transitioned, err := s.repo.MarkArrived(ctx, reg.ID, now)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("s.repo.MarkArrived -> %w", err)
	}
	if !transitioned {
		return VerifyResult{Outcome: VerifyDuplicate, Name: reg.PersonalInfo.Name, ArrivedAt: reg.ArrivedAt}, nil
	}

	return VerifyResult{Outcome: VerifyOK, Name: reg.PersonalInfo.Name, ArrivedAt: &now}, nil
}

// ScanImage decodes a QR code from an uploaded still image, then verifies
// it like any other scan.
func (s *CheckinService) ScanImage(ctx context.Context, image []byte) (VerifyResult, error) {
	content, err := qrdecode.Decode(image)
	if err != nil {
		return VerifyResult{}, err
	}

	return s.Verify(ctx, content)
}

// ExtractToken pulls the bearer token out of a decoded QR string: either
// the raw token itself, or the trailing segment of a check-in link.
func ExtractToken(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}

	if strings.Contains(code, "://") {
		u, err := url.Parse(code)
		if err != nil {
			return ""
		}

		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segments) >= 2 && segments[len(segments)-2] == checkinSegment {
			return segments[len(segments)-1]
		}

		return ""
	}

	return code
}

func newCheckinToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand.Read -> %w", err)
	}

	return hex.EncodeToString(buf), nil
}

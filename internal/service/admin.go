package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/csihub/codefest-api/internal/domain"
)

var (
	ErrWrongPassword = errors.New("wrong password")
	ErrInvalidStatus = errors.New("invalid status")
)

// RoundsDelimiter joins list-valued fields in exported rows.
const RoundsDelimiter = ";"

var exportHeader = []string{
	"ID", "Name", "Email", "Phone", "College", "Year", "Branch", "PRN",
	"Education Type", "Home Institution", "Participant Types", "CSI Member",
	"Rounds", "Total Price", "Transaction Ref", "Status", "Arrived", "Created At",
}

type AdminRepository interface {
	FindByID(ctx context.Context, id string) (domain.Registration, error)
	FindAll(ctx context.Context) ([]domain.Registration, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// RegistrationEdit carries a partial overwrite; nil fields are left
// untouched on the stored record.
type RegistrationEdit struct {
	Name           *string
	Email          *string
	Phone          *string
	College        *string
	Year           *string
	Branch         *string
	PRN            *string
	EducationType  *string
	TransactionRef *string
}

// StatusChangeResult reports the mutation and, separately, the fate of
// the notification email so callers can surface partial failure.
type StatusChangeResult struct {
	Registration domain.Registration
	EmailSent    bool
	EmailError   string
}

type AdminService struct {
	repo         AdminRepository
	mailer       RegistrationMailer
	passwordHash []byte
}

func NewAdminService(repo AdminRepository, mailer RegistrationMailer, adminPassword string) (*AdminService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return &AdminService{
		repo:         repo,
		mailer:       mailer,
		passwordHash: hash,
	}, nil
}

// Authenticate checks the shared admin password.
func (s *AdminService) Authenticate(password string) error {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return ErrWrongPassword
	}

	return nil
}

// List returns registrations matching the search query, newest first. An
// empty query matches everything.
func (s *AdminService) List(ctx context.Context, query string) ([]domain.Registration, error) {
	regs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	if query == "" {
		return regs, nil
	}

	filtered := make([]domain.Registration, 0, len(regs))
	for _, reg := range regs {
		if matchesQuery(reg, query) {
			filtered = append(filtered, reg)
		}
	}

	return filtered, nil
}

func (s *AdminService) Get(ctx context.Context, id string) (domain.Registration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return reg, nil
}

// Edit merges only the provided fields into the stored record.
func (s *AdminService) Edit(ctx context.Context, id string, edit RegistrationEdit) (domain.Registration, error) {
	fields := map[string]any{}
	setIfPresent(fields, "name", edit.Name)
	setIfPresent(fields, "phone", edit.Phone)
	setIfPresent(fields, "college", edit.College)
	setIfPresent(fields, "year", edit.Year)
	setIfPresent(fields, "branch", edit.Branch)
	setIfPresent(fields, "prn", edit.PRN)
	setIfPresent(fields, "education_type", edit.EducationType)
	setIfPresent(fields, "transaction_ref", edit.TransactionRef)
	if edit.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*edit.Email))
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return domain.Registration{}, fmt.Errorf("s.repo.UpdateFields -> %w", err)
		}
	}

	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return reg, nil
}

func (s *AdminService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// SetStatus commits the status change, then notifies the participant for
// approved/rejected. The email is not atomic with the mutation; a send
// failure is reported in the result but never reverts the status.
func (s *AdminService) SetStatus(ctx context.Context, id string, status domain.Status) (StatusChangeResult, error) {
	switch status {
	case domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
	default:
		return StatusChangeResult{}, ErrInvalidStatus
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]any{"status": string(status)}); err != nil {
		return StatusChangeResult{}, fmt.Errorf("s.repo.UpdateFields -> %w", err)
	}

	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return StatusChangeResult{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	result := StatusChangeResult{Registration: reg}

	subject, html, ok := StatusEmail(reg)
	if !ok {
		return result, nil
	}

	if err := s.mailer.Send(reg.PersonalInfo.Email, subject, html, nil); err != nil {
		zap.L().Error("failed to send status email",
			zap.String("registrationID", reg.ID),
			zap.String("status", string(status)),
			zap.Error(err))
		result.EmailError = err.Error()

		return result, nil
	}
	result.EmailSent = true

	return result, nil
}

// SetArrived is the manual admin override for the arrived flag.
func (s *AdminService) SetArrived(ctx context.Context, id, arrived string) (domain.Registration, error) {
	fields := map[string]any{"arrived": arrived}
	if arrived == domain.FlagYes {
		fields["arrived_at"] = time.Now()
	} else {
		fields["arrived_at"] = nil
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.UpdateFields -> %w", err)
	}

	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return reg, nil
}

// ExportCSV serializes the filtered view, one row per record.
func (s *AdminService) ExportCSV(ctx context.Context, query string) ([]byte, error) {
	regs, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("w.Write -> %w", err)
	}
	for _, reg := range regs {
		if err := w.Write(exportRow(reg)); err != nil {
			return nil, fmt.Errorf("w.Write -> %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("w.Flush -> %w", err)
	}

	return buf.Bytes(), nil
}

// ExportXLSX serializes the filtered view as a spreadsheet.
func (s *AdminService) ExportXLSX(ctx context.Context, query string) ([]byte, error) {
	regs, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("f.SetSheetRow -> %w", err)
	}

	for i, reg := range regs {
		row := exportRow(reg)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("excelize.CoordinatesToCellName -> %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("f.SetSheetRow -> %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("f.WriteToBuffer -> %w", err)
	}

	return buf.Bytes(), nil
}

func exportRow(reg domain.Registration) []string {
	return []string{
		reg.ID,
		reg.PersonalInfo.Name,
		reg.PersonalInfo.Email,
		reg.PersonalInfo.Phone,
		reg.PersonalInfo.College,
		reg.PersonalInfo.Year,
		reg.PersonalInfo.Branch,
		reg.PersonalInfo.PRN,
		reg.PersonalInfo.EducationType,
		reg.ParticipationDetails.HomeInstitution,
		strings.Join(reg.ParticipationDetails.ParticipantTypes, RoundsDelimiter),
		reg.ParticipationDetails.CSIMember,
		strings.Join(reg.ParticipationDetails.Rounds, RoundsDelimiter),
		strconv.Itoa(reg.ParticipationDetails.TotalPrice),
		reg.ParticipationDetails.TransactionRef,
		string(reg.Status),
		reg.Arrived,
		reg.CreatedAt.Format(time.RFC3339),
	}
}

// matchesQuery does the same substring match over name, email, phone and
// PRN that the dashboard search box applies.
func matchesQuery(reg domain.Registration, query string) bool {
	q := strings.ToLower(query)

	return strings.Contains(strings.ToLower(reg.PersonalInfo.Name), q) ||
		strings.Contains(strings.ToLower(reg.PersonalInfo.Email), q) ||
		strings.Contains(reg.PersonalInfo.Phone, q) ||
		strings.Contains(strings.ToLower(reg.PersonalInfo.PRN), q)
}

func setIfPresent(fields map[string]any, column string, value *string) {
	if value != nil {
		fields[column] = *value
	}
}

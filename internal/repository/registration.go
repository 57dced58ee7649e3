package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/csihub/codefest-api/internal/domain"
	"github.com/csihub/codefest-api/internal/repository/dao"
)

var (
	ErrRegistrationEmailExists = dao.ErrRegistrationEmailExists
	ErrRegistrationNotFound    = dao.ErrRegistrationNotFound
	ErrTokenExists             = dao.ErrTokenExists
)

type RegistrationDAO interface {
	Insert(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	FindByID(ctx context.Context, id string) (dao.Registration, error)
	FindByEmail(ctx context.Context, email string) (dao.Registration, error)
	FindByToken(ctx context.Context, token string) (dao.Registration, error)
	FindAll(ctx context.Context) ([]dao.Registration, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	SetToken(ctx context.Context, id, token string) error
	MarkArrived(ctx context.Context, id string, at time.Time) (bool, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(reg))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (domain.Registration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByEmail(ctx context.Context, email string) (domain.Registration, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByToken(ctx context.Context, token string) (domain.Registration, error) {
	found, err := r.dao.FindByToken(ctx, token)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByToken -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindAll(ctx context.Context) ([]domain.Registration, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	regs := make([]domain.Registration, 0, len(found))
	for _, f := range found {
		regs = append(regs, r.daoToDomain(f))
	}

	return regs, nil
}

func (r *RegistrationRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if err := r.dao.UpdateFields(ctx, id, fields); err != nil {
		return fmt.Errorf("r.dao.UpdateFields -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) SetToken(ctx context.Context, id, token string) error {
	if err := r.dao.SetToken(ctx, id, token); err != nil {
		return fmt.Errorf("r.dao.SetToken -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) MarkArrived(ctx context.Context, id string, at time.Time) (bool, error) {
	transitioned, err := r.dao.MarkArrived(ctx, id, at)
	if err != nil {
		return false, fmt.Errorf("r.dao.MarkArrived -> %w", err)
	}

	return transitioned, nil
}

func (r *RegistrationRepository) daoToDomain(d dao.Registration) domain.Registration {
	token := ""
	if d.QRToken != nil {
		token = *d.QRToken
	}

	return domain.Registration{
		ID: d.ID,
		PersonalInfo: domain.PersonalInfo{
			Name:          d.Name,
			Email:         d.Email,
			Phone:         d.Phone,
			College:       d.College,
			Year:          d.Year,
			Branch:        d.Branch,
			PRN:           d.PRN,
			EducationType: d.EducationType,
		},
		ParticipationDetails: domain.ParticipationDetails{
			HomeInstitution:  d.HomeInstitution,
			ParticipantTypes: d.ParticipantTypes,
			CSIMember:        d.CSIMember,
			Rounds:           d.Rounds,
			TotalPrice:       d.TotalPrice,
			TransactionRef:   d.TransactionRef,
		},
		Documents: domain.Documents{
			PaymentProof: d.PaymentProof,
			CSIProof:     d.CSIProof,
		},
		Status:    domain.Status(d.Status),
		Arrived:   d.Arrived,
		QRToken:   token,
		CreatedAt: d.CreatedAt,
		ArrivedAt: d.ArrivedAt,
	}
}

func (r *RegistrationRepository) domainToDAO(reg domain.Registration) dao.Registration {
	var token *string
	if reg.QRToken != "" {
		token = &reg.QRToken
	}

	return dao.Registration{
		ID:               reg.ID,
		Name:             reg.PersonalInfo.Name,
		Email:            reg.PersonalInfo.Email,
		Phone:            reg.PersonalInfo.Phone,
		College:          reg.PersonalInfo.College,
		Year:             reg.PersonalInfo.Year,
		Branch:           reg.PersonalInfo.Branch,
		PRN:              reg.PersonalInfo.PRN,
		EducationType:    reg.PersonalInfo.EducationType,
		HomeInstitution:  reg.ParticipationDetails.HomeInstitution,
		ParticipantTypes: reg.ParticipationDetails.ParticipantTypes,
		CSIMember:        reg.ParticipationDetails.CSIMember,
		Rounds:           reg.ParticipationDetails.Rounds,
		TotalPrice:       reg.ParticipationDetails.TotalPrice,
		TransactionRef:   reg.ParticipationDetails.TransactionRef,
		PaymentProof:     reg.Documents.PaymentProof,
		CSIProof:         reg.Documents.CSIProof,
		Status:           string(reg.Status),
		Arrived:          reg.Arrived,
		QRToken:          token,
		CreatedAt:        reg.CreatedAt,
		ArrivedAt:        reg.ArrivedAt,
	}
}

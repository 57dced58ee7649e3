package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrRegistrationEmailExists = errors.New("email already registered")
	ErrRegistrationNotFound    = errors.New("registration not found")
	ErrTokenExists             = errors.New("qr token already assigned")
)

// Registration is the flat storage shape. The API serves the nested
// personalInfo/participationDetails shape; mapping lives in the repository.
type Registration struct {
	ID string `gorm:"primaryKey"`

	Name          string `gorm:"not null"`
	Email         string `gorm:"unique;not null"`
	Phone         string `gorm:"not null"`
	College       string `gorm:"not null"`
	Year          string `gorm:"not null"`
	Branch        string `gorm:"not null"`
	PRN           string
	EducationType string

	HomeInstitution  string   `gorm:"not null"`
	ParticipantTypes []string `gorm:"serializer:json;not null"`
	CSIMember        string
	Rounds           []string `gorm:"serializer:json"`
	TotalPrice       int      `gorm:"not null"`
	TransactionRef   string

	PaymentProof string
	CSIProof     string

	Status  string `gorm:"not null;default:pending"`
	Arrived string `gorm:"not null;default:no"`

	// QRToken is the check-in bearer secret. The unique index doubles as
	// the token -> registration lookup path, so a scan never walks the
	// whole table.
	QRToken *string `gorm:"uniqueIndex"`

	CreatedAt time.Time `gorm:"not null"`
	ArrivedAt *time.Time
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

func (d *RegistrationDAO) Insert(ctx context.Context, reg Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Create(&reg)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, "email") {
			return Registration{}, ErrRegistrationEmailExists
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id string) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByEmail(ctx context.Context, email string) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByToken(ctx context.Context, token string) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "qr_token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

// FindAll returns every registration, newest first.
func (d *RegistrationDAO) FindAll(ctx context.Context) ([]Registration, error) {
	var regs []Registration

	result := d.db.WithContext(ctx).Order("created_at DESC").Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

// UpdateFields merges only the given columns into the stored record.
func (d *RegistrationDAO) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	result := d.db.WithContext(ctx).Model(&Registration{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

func (d *RegistrationDAO) Delete(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).Delete(&Registration{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

// SetToken assigns the check-in token once. A colliding token surfaces as
// ErrTokenExists so the caller can regenerate.
func (d *RegistrationDAO) SetToken(ctx context.Context, id, token string) error {
	result := d.db.WithContext(ctx).Model(&Registration{}).Where("id = ?", id).Update("qr_token", token)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return ErrTokenExists
		}

		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

// MarkArrived flips arrived to yes only if it is currently no, as a single
// conditional update. Returns true when this call performed the
// transition and false when the record had already arrived.
func (d *RegistrationDAO) MarkArrived(ctx context.Context, id string, at time.Time) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ? AND arrived = ?", id, "no").
		Updates(map[string]any{"arrived": "yes", "arrived_at": at})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

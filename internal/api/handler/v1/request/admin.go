package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/csihub/codefest-api/internal/domain"
)

type AdminLoginRequest struct {
	Password string `json:"password"`
}

func (req *AdminLoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Password, validation.Required),
	)
}

// UpdateRegistrationRequest is a partial overwrite; absent fields keep
// their stored values.
type UpdateRegistrationRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	College        *string `json:"college"`
	Year           *string `json:"year"`
	Branch         *string `json:"branch"`
	PRN            *string `json:"prn"`
	EducationType  *string `json:"educationType"`
	TransactionRef *string `json:"transactionRef"`
}

func (req *UpdateRegistrationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Phone, validation.Match(regexp.MustCompile(phonePattern)).Error("must be exactly 10 digits")),
		validation.Field(&req.PRN, validation.Match(regexp.MustCompile(prnPattern)).Error("must be alphanumeric, at most 14 characters")),
		validation.Field(&req.EducationType, validation.In(domain.EducationDiploma, domain.EducationBachelors)),
	)
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

func (req *SetStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(
			string(domain.StatusPending),
			string(domain.StatusApproved),
			string(domain.StatusRejected),
		)),
	)
}

type SetArrivedRequest struct {
	Arrived string `json:"arrived"`
}

func (req *SetArrivedRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Arrived, validation.Required, validation.In(domain.FlagYes, domain.FlagNo)),
	)
}

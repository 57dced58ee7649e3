package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/csihub/codefest-api/internal/domain"
)

const (
	phonePattern = `^\d{10}$`
	prnPattern   = `^[A-Za-z0-9]{0,14}$`
)

var (
	phoneExp = regexp.MustCompile(phonePattern)
	prnExp   = regexp.MustCompile(prnPattern)
)

// CreateRegistrationRequest is the flat submission payload. The service
// restructures it into the nested record shape and recomputes the total.
type CreateRegistrationRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	College       string `json:"college"`
	Year          string `json:"year"`
	Branch        string `json:"branch"`
	PRN           string `json:"prn"`
	EducationType string `json:"educationType"`

	HomeInstitution  string   `json:"homeInstitution"`
	ParticipantTypes []string `json:"participantTypes"`
	CSIMember        string   `json:"csiMember"`
	Rounds           []string `json:"rounds"`
	TotalPrice       int      `json:"totalPrice"`
	TransactionRef   string   `json:"transactionRef"`

	PaymentProof string `json:"paymentProof"`
	CSIProof     string `json:"csiProof"`
}

func (req *CreateRegistrationRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Phone, validation.Required, validation.Match(phoneExp).Error("must be exactly 10 digits")),
		validation.Field(&req.College, validation.Required),
		validation.Field(&req.Year, validation.Required),
		validation.Field(&req.Branch, validation.Required),
		validation.Field(&req.PRN, validation.Match(prnExp).Error("must be alphanumeric, at most 14 characters")),
		validation.Field(&req.HomeInstitution, validation.Required, validation.In(domain.FlagYes, domain.FlagNo)),
		validation.Field(&req.CSIMember, validation.In(domain.FlagYes, domain.FlagNo)),
		validation.Field(&req.ParticipantTypes, validation.Each(validation.In(domain.ParticipantInter, domain.ParticipantIntra))),
		validation.Field(&req.PaymentProof, validation.Required.Error("payment proof is required")),
	)
	if err != nil {
		return err
	}

	// Conditional requirements that ozzo's per-field rules don't express.
	if req.HomeInstitution == domain.FlagYes {
		return validation.ValidateStruct(
			req,
			validation.Field(&req.CSIMember, validation.Required.Error("membership choice is required")),
			validation.Field(&req.ParticipantTypes, validation.Required.Error("select at least one participation type")),
		)
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.EducationType, validation.Required, validation.In(domain.EducationDiploma, domain.EducationBachelors)),
	)
}

// ToDomain restructures the flat payload into the nested record shape.
func (req *CreateRegistrationRequest) ToDomain() domain.Registration {
	return domain.Registration{
		PersonalInfo: domain.PersonalInfo{
			Name:          req.Name,
			Email:         req.Email,
			Phone:         req.Phone,
			College:       req.College,
			Year:          req.Year,
			Branch:        req.Branch,
			PRN:           req.PRN,
			EducationType: req.EducationType,
		},
		ParticipationDetails: domain.ParticipationDetails{
			HomeInstitution:  req.HomeInstitution,
			ParticipantTypes: req.ParticipantTypes,
			CSIMember:        req.CSIMember,
			Rounds:           req.Rounds,
			TotalPrice:       req.TotalPrice,
			TransactionRef:   req.TransactionRef,
		},
		Documents: domain.Documents{
			PaymentProof: req.PaymentProof,
			CSIProof:     req.CSIProof,
		},
	}
}

// ValidateStepRequest asks whether one wizard step's data passes its
// forward guard.
type ValidateStepRequest struct {
	Step string            `json:"step"`
	Data domain.WizardData `json:"data"`
}

func (req *ValidateStepRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Step, validation.Required, validation.In(
			string(domain.StepCollegeInfo),
			string(domain.StepPersonalDetails),
			string(domain.StepRoundSelection),
			string(domain.StepPayment),
		)),
	)
}

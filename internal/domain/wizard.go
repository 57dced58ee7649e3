package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// WizardStep identifies one screen of the registration form.
type WizardStep string

const (
	StepCollegeInfo     WizardStep = "collegeInfo"
	StepPersonalDetails WizardStep = "personalDetails"
	StepRoundSelection  WizardStep = "roundSelection"
	StepPayment         WizardStep = "payment"
	StepSubmitted       WizardStep = "submitted"
)

var stepOrder = []WizardStep{
	StepCollegeInfo,
	StepPersonalDetails,
	StepRoundSelection,
	StepPayment,
	StepSubmitted,
}

var (
	phoneExp = regexp.MustCompile(`^\d{10}$`)
	emailExp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

var ErrUnknownStep = errors.New("unknown wizard step")

// GuardError explains why a forward transition was refused. It is
// user-correctable and field-scoped, never a system fault.
type GuardError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// WizardData holds everything entered across the four steps. Back
// transitions keep it intact; only a successful final submission plus an
// explicit acknowledgment resets it.
type WizardData struct {
	HomeInstitution  string   `json:"homeInstitution"`
	EducationType    string   `json:"educationType"`
	ParticipantTypes []string `json:"participantTypes"`

	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	College string `json:"college"`
	Year    string `json:"year"`
	Branch  string `json:"branch"`
	PRN     string `json:"prn"`

	CSIMember string   `json:"csiMember"`
	Rounds    []string `json:"rounds"`

	HasPaymentProof bool `json:"hasPaymentProof"`
	HasCSIProof     bool `json:"hasCsiProof"`
}

// Wizard is the four-step registration form state machine. Forward
// transitions are gated by per-step guards; a failed guard leaves the
// state unchanged and reports a GuardError.
type Wizard struct {
	step WizardStep
	Data WizardData
}

func NewWizard() *Wizard {
	return &Wizard{step: StepCollegeInfo}
}

func (w *Wizard) Step() WizardStep {
	return w.step
}

// Next runs the guard for the current step and advances on success.
func (w *Wizard) Next() error {
	if w.step == StepSubmitted {
		return nil
	}

	if err := GuardStep(w.step, &w.Data); err != nil {
		return err
	}

	for i, s := range stepOrder {
		if s == w.step {
			w.step = stepOrder[i+1]
			break
		}
	}

	return nil
}

// Back moves to the previous step. Entered data is preserved.
func (w *Wizard) Back() {
	for i, s := range stepOrder {
		if s == w.step && i > 0 {
			w.step = stepOrder[i-1]
			return
		}
	}
}

// Reset returns the wizard to its initial state, discarding entered data.
// Called only after the user acknowledges a successful submission.
func (w *Wizard) Reset() {
	w.step = StepCollegeInfo
	w.Data = WizardData{}
}

// GuardStep validates the data required to leave the given step.
func GuardStep(step WizardStep, data *WizardData) error {
	switch step {
	case StepCollegeInfo:
		return guardCollegeInfo(data)
	case StepPersonalDetails:
		return guardPersonalDetails(data)
	case StepRoundSelection:
		return guardRoundSelection(data)
	case StepPayment:
		return guardPayment(data)
	case StepSubmitted:
		return nil
	default:
		return ErrUnknownStep
	}
}

func guardCollegeInfo(data *WizardData) error {
	if data.HomeInstitution != FlagYes && data.HomeInstitution != FlagNo {
		return &GuardError{Field: "homeInstitution", Reason: "please tell us whether you study at the host institute"}
	}

	if data.HomeInstitution == FlagNo {
		if data.EducationType != EducationDiploma && data.EducationType != EducationBachelors {
			return &GuardError{Field: "educationType", Reason: "please choose diploma or bachelors"}
		}
		return nil
	}

	if len(data.ParticipantTypes) == 0 {
		return &GuardError{Field: "participantTypes", Reason: "select at least one participation type"}
	}

	return nil
}

func guardPersonalDetails(data *WizardData) error {
	required := []struct {
		field string
		value string
	}{
		{"name", data.Name},
		{"email", data.Email},
		{"phone", data.Phone},
		{"college", data.College},
		{"year", data.Year},
		{"branch", data.Branch},
	}
	for _, f := range required {
		if f.value == "" {
			return &GuardError{Field: f.field, Reason: "this field is required"}
		}
	}

	if !emailExp.MatchString(data.Email) {
		return &GuardError{Field: "email", Reason: "enter a valid email address"}
	}

	if !phoneExp.MatchString(data.Phone) {
		return &GuardError{Field: "phone", Reason: "phone number must be exactly 10 digits"}
	}

	return nil
}

func guardRoundSelection(data *WizardData) error {
	if data.HomeInstitution == FlagYes &&
		data.CSIMember != FlagYes && data.CSIMember != FlagNo {
		return &GuardError{Field: "csiMember", Reason: "please tell us whether you are a CSI member"}
	}

	if RoundsRequired(data.HomeInstitution, data.ParticipantTypes) && len(data.Rounds) == 0 {
		return &GuardError{Field: "rounds", Reason: "select at least one round"}
	}

	return nil
}

func guardPayment(data *WizardData) error {
	if !data.HasPaymentProof {
		return &GuardError{Field: "paymentProof", Reason: "upload your payment screenshot"}
	}

	if data.HomeInstitution == FlagYes && data.CSIMember == FlagYes && !data.HasCSIProof {
		return &GuardError{Field: "csiProof", Reason: "upload your CSI membership proof"}
	}

	return nil
}

// RoundsRequired reports whether a non-empty round selection is mandatory.
// It is, whenever the participant competes inter-institution; a solely
// intra-institution participant from the host institute may skip it.
func RoundsRequired(homeInstitution string, participantTypes []string) bool {
	if containsString(participantTypes, ParticipantInter) {
		return true
	}

	intraOnly := containsString(participantTypes, ParticipantIntra)
	if homeInstitution == FlagYes && intraOnly {
		return false
	}

	// Non-home participants compete inter-institution by definition, so an
	// empty or intra-only tag set still needs rounds.
	return homeInstitution == FlagNo
}

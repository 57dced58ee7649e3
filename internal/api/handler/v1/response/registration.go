package response

import (
	"time"

	"github.com/csihub/codefest-api/internal/domain"
)

type CreateRegistrationResponse struct {
	Message        string              `json:"message"`
	RegistrationID string              `json:"registrationId"`
	Data           domain.Registration `json:"data"`
}

type StepValidationResponse struct {
	OK     bool   `json:"ok"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type StatusChangeResponse struct {
	Message    string              `json:"message"`
	EmailSent  bool                `json:"emailSent"`
	EmailError string              `json:"emailError,omitempty"`
	Data       domain.Registration `json:"data"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type QRIssueResponse struct {
	Token      string `json:"token"`
	CheckinURL string `json:"checkinUrl"`
	QRBase64   string `json:"qrCodeBase64"`
}

type VerifyResponse struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	Name      string     `json:"name,omitempty"`
	ArrivedAt *time.Time `json:"arrivedAt,omitempty"`
}

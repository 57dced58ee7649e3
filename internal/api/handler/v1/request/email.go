package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// SendEmailRequest is the raw outbound-email payload. QRCodeBase64, when
// set, is a data-URI (or bare base64) PNG embedded inline.
type SendEmailRequest struct {
	To           string `json:"to"`
	Subject      string `json:"subject"`
	HTML         string `json:"html"`
	QRCodeBase64 string `json:"qrCodeBase64"`
}

func (req *SendEmailRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.To, validation.Required, is.Email),
		validation.Field(&req.Subject, validation.Required),
		validation.Field(&req.HTML, validation.Required),
	)
}

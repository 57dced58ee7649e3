package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// VerifyCheckinRequest carries the decoded QR contents: either the bare
// token or the full check-in link.
type VerifyCheckinRequest struct {
	Code string `json:"code"`
}

func (req *VerifyCheckinRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required),
	)
}

package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csihub/codefest-api/internal/domain"
)

func validCreateRequest() CreateRegistrationRequest {
	return CreateRegistrationRequest{
		Name:             "Asha Kulkarni",
		Email:            "asha@example.com",
		Phone:            "9876543210",
		College:          "Host Institute",
		Year:             "TE",
		Branch:           "Computer",
		PRN:              "PRN12345",
		HomeInstitution:  domain.FlagYes,
		ParticipantTypes: []string{domain.ParticipantInter},
		CSIMember:        domain.FlagNo,
		Rounds:           []string{"round1"},
		TotalPrice:       100,
		PaymentProof:     "https://example.com/proof.jpg",
	}
}

func TestCreateRegistrationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *CreateRegistrationRequest)
		wantErr bool
	}{
		{
			name:   "valid home participant",
			mutate: func(req *CreateRegistrationRequest) {},
		},
		{
			name: "valid outside participant",
			mutate: func(req *CreateRegistrationRequest) {
				req.HomeInstitution = domain.FlagNo
				req.EducationType = domain.EducationBachelors
				req.ParticipantTypes = nil
				req.CSIMember = ""
			},
		},
		{
			name:    "phone too short",
			mutate:  func(req *CreateRegistrationRequest) { req.Phone = "12345" },
			wantErr: true,
		},
		{
			name:    "phone with letters",
			mutate:  func(req *CreateRegistrationRequest) { req.Phone = "12345678ab" },
			wantErr: true,
		},
		{
			name:    "bad email",
			mutate:  func(req *CreateRegistrationRequest) { req.Email = "nope" },
			wantErr: true,
		},
		{
			name:    "PRN too long",
			mutate:  func(req *CreateRegistrationRequest) { req.PRN = "123456789012345" },
			wantErr: true,
		},
		{
			name:    "PRN with punctuation",
			mutate:  func(req *CreateRegistrationRequest) { req.PRN = "PRN-123" },
			wantErr: true,
		},
		{
			name:    "missing payment proof",
			mutate:  func(req *CreateRegistrationRequest) { req.PaymentProof = "" },
			wantErr: true,
		},
		{
			name:    "bogus home institution flag",
			mutate:  func(req *CreateRegistrationRequest) { req.HomeInstitution = "maybe" },
			wantErr: true,
		},
		{
			name:    "bogus participant type",
			mutate:  func(req *CreateRegistrationRequest) { req.ParticipantTypes = []string{"extra"} },
			wantErr: true,
		},
		{
			name: "home participant without membership answer",
			mutate: func(req *CreateRegistrationRequest) {
				req.CSIMember = ""
			},
			wantErr: true,
		},
		{
			name: "home participant without types",
			mutate: func(req *CreateRegistrationRequest) {
				req.ParticipantTypes = nil
			},
			wantErr: true,
		},
		{
			name: "outside participant without education type",
			mutate: func(req *CreateRegistrationRequest) {
				req.HomeInstitution = domain.FlagNo
				req.EducationType = ""
			},
			wantErr: true,
		},
		{
			name: "outside participant with bogus education type",
			mutate: func(req *CreateRegistrationRequest) {
				req.HomeInstitution = domain.FlagNo
				req.EducationType = "phd"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)

			err := req.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateRegistrationRequest_ToDomain(t *testing.T) {
	req := validCreateRequest()

	reg := req.ToDomain()

	assert.Equal(t, req.Name, reg.PersonalInfo.Name)
	assert.Equal(t, req.Email, reg.PersonalInfo.Email)
	assert.Equal(t, req.HomeInstitution, reg.ParticipationDetails.HomeInstitution)
	assert.Equal(t, req.Rounds, reg.ParticipationDetails.Rounds)
	assert.Equal(t, req.TotalPrice, reg.ParticipationDetails.TotalPrice)
	assert.Equal(t, req.PaymentProof, reg.Documents.PaymentProof)
}

func TestValidateStepRequest_Validate(t *testing.T) {
	req := ValidateStepRequest{Step: string(domain.StepCollegeInfo)}
	require.NoError(t, req.Validate())

	req.Step = "bogus"
	assert.Error(t, req.Validate())

	req.Step = ""
	assert.Error(t, req.Validate())
}

func TestUpdateRegistrationRequest_Validate(t *testing.T) {
	bad := "12345"
	req := UpdateRegistrationRequest{Phone: &bad}
	assert.Error(t, req.Validate())

	good := "9876543210"
	req = UpdateRegistrationRequest{Phone: &good}
	assert.NoError(t, req.Validate())

	// Absent fields validate fine.
	assert.NoError(t, (&UpdateRegistrationRequest{}).Validate())
}

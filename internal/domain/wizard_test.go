package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHomeMemberData() WizardData {
	return WizardData{
		HomeInstitution:  FlagYes,
		ParticipantTypes: []string{ParticipantInter},
		Name:             "Asha Kulkarni",
		Email:            "asha@example.com",
		Phone:            "9876543210",
		College:          "Host Institute",
		Year:             "TE",
		Branch:           "Computer",
		CSIMember:        FlagYes,
		Rounds:           []string{"round1"},
		HasPaymentProof:  true,
		HasCSIProof:      true,
	}
}

func TestWizard_FullWalk(t *testing.T) {
	w := NewWizard()
	w.Data = validHomeMemberData()

	require.Equal(t, StepCollegeInfo, w.Step())
	require.NoError(t, w.Next())
	require.Equal(t, StepPersonalDetails, w.Step())
	require.NoError(t, w.Next())
	require.Equal(t, StepRoundSelection, w.Step())
	require.NoError(t, w.Next())
	require.Equal(t, StepPayment, w.Step())
	require.NoError(t, w.Next())
	require.Equal(t, StepSubmitted, w.Step())

	// Next on the terminal step is a no-op.
	require.NoError(t, w.Next())
	assert.Equal(t, StepSubmitted, w.Step())
}

func TestWizard_FailedGuardKeepsState(t *testing.T) {
	w := NewWizard()
	// Nothing filled in; the college-info guard must refuse.
	err := w.Next()

	var guardErr *GuardError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "homeInstitution", guardErr.Field)
	assert.Equal(t, StepCollegeInfo, w.Step())
}

func TestWizard_BackPreservesData(t *testing.T) {
	w := NewWizard()
	w.Data = validHomeMemberData()

	require.NoError(t, w.Next())
	require.Equal(t, StepPersonalDetails, w.Step())

	w.Back()
	assert.Equal(t, StepCollegeInfo, w.Step())
	assert.Equal(t, "Asha Kulkarni", w.Data.Name)
	assert.Equal(t, []string{"round1"}, w.Data.Rounds)

	// Back on the first step stays put.
	w.Back()
	assert.Equal(t, StepCollegeInfo, w.Step())
}

func TestWizard_Reset(t *testing.T) {
	w := NewWizard()
	w.Data = validHomeMemberData()
	require.NoError(t, w.Next())

	w.Reset()
	assert.Equal(t, StepCollegeInfo, w.Step())
	assert.Equal(t, WizardData{}, w.Data)
}

func TestGuardStep_CollegeInfo(t *testing.T) {
	tests := []struct {
		name      string
		data      WizardData
		wantField string
	}{
		{
			name:      "missing home institution answer",
			data:      WizardData{},
			wantField: "homeInstitution",
		},
		{
			name:      "outside student without education type",
			data:      WizardData{HomeInstitution: FlagNo},
			wantField: "educationType",
		},
		{
			name:      "home student without participation types",
			data:      WizardData{HomeInstitution: FlagYes},
			wantField: "participantTypes",
		},
		{
			name: "outside student with education type",
			data: WizardData{HomeInstitution: FlagNo, EducationType: EducationDiploma},
		},
		{
			name: "home student with types",
			data: WizardData{HomeInstitution: FlagYes, ParticipantTypes: []string{ParticipantIntra}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GuardStep(StepCollegeInfo, &tt.data)

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var guardErr *GuardError
			require.ErrorAs(t, err, &guardErr)
			assert.Equal(t, tt.wantField, guardErr.Field)
		})
	}
}

func TestGuardStep_PersonalDetails(t *testing.T) {
	data := validHomeMemberData()
	require.NoError(t, GuardStep(StepPersonalDetails, &data))

	data.Phone = "12345"
	err := GuardStep(StepPersonalDetails, &data)
	var guardErr *GuardError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "phone", guardErr.Field)

	data = validHomeMemberData()
	data.Email = "not-an-email"
	err = GuardStep(StepPersonalDetails, &data)
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "email", guardErr.Field)

	data = validHomeMemberData()
	data.Name = ""
	err = GuardStep(StepPersonalDetails, &data)
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "name", guardErr.Field)
}

func TestGuardStep_RoundSelection(t *testing.T) {
	data := validHomeMemberData()
	require.NoError(t, GuardStep(StepRoundSelection, &data))

	// Home student who never answered the membership question.
	data.CSIMember = ""
	err := GuardStep(StepRoundSelection, &data)
	var guardErr *GuardError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "csiMember", guardErr.Field)

	// Inter participant with no rounds.
	data = validHomeMemberData()
	data.Rounds = nil
	err = GuardStep(StepRoundSelection, &data)
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "rounds", guardErr.Field)

	// Intra-only home participant may skip rounds.
	data = validHomeMemberData()
	data.ParticipantTypes = []string{ParticipantIntra}
	data.Rounds = nil
	assert.NoError(t, GuardStep(StepRoundSelection, &data))
}

func TestGuardStep_Payment(t *testing.T) {
	data := validHomeMemberData()
	require.NoError(t, GuardStep(StepPayment, &data))

	data.HasPaymentProof = false
	err := GuardStep(StepPayment, &data)
	var guardErr *GuardError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "paymentProof", guardErr.Field)

	// Members must also attach membership proof.
	data = validHomeMemberData()
	data.HasCSIProof = false
	err = GuardStep(StepPayment, &data)
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "csiProof", guardErr.Field)

	// Non-members don't.
	data = validHomeMemberData()
	data.CSIMember = FlagNo
	data.HasCSIProof = false
	assert.NoError(t, GuardStep(StepPayment, &data))
}

func TestGuardStep_UnknownStep(t *testing.T) {
	data := WizardData{}

	assert.ErrorIs(t, GuardStep(WizardStep("bogus"), &data), ErrUnknownStep)
}

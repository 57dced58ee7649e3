package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalPrice(t *testing.T) {
	tests := []struct {
		name             string
		homeInstitution  string
		participantTypes []string
		csiMember        string
		rounds           []string
		want             int
	}{
		{
			name:             "home non-member inter, two rounds",
			homeInstitution:  FlagYes,
			participantTypes: []string{ParticipantInter},
			csiMember:        FlagNo,
			rounds:           []string{"round1", "round2"},
			want:             200,
		},
		{
			name:             "home member inter, two rounds",
			homeInstitution:  FlagYes,
			participantTypes: []string{ParticipantInter},
			csiMember:        FlagYes,
			rounds:           []string{"round1", "round2"},
			want:             100,
		},
		{
			name:             "outside participant, one round",
			homeInstitution:  FlagNo,
			participantTypes: []string{ParticipantInter},
			csiMember:        "",
			rounds:           []string{"round1"},
			want:             150,
		},
		{
			name:             "home non-member inter and intra, one round",
			homeInstitution:  FlagYes,
			participantTypes: []string{ParticipantInter, ParticipantIntra},
			csiMember:        FlagNo,
			rounds:           []string{"round1"},
			want:             200,
		},
		{
			name:             "home member intra only, three rounds",
			homeInstitution:  FlagYes,
			participantTypes: []string{ParticipantIntra},
			csiMember:        FlagYes,
			rounds:           []string{"round1", "round2", "round3"},
			want:             150,
		},
		{
			name:             "home non-member intra only, one round",
			homeInstitution:  FlagYes,
			participantTypes: []string{ParticipantIntra},
			csiMember:        FlagNo,
			rounds:           []string{"round1"},
			want:             100,
		},
		{
			name:             "no rounds selected",
			homeInstitution:  FlagYes,
			participantTypes: []string{ParticipantIntra},
			csiMember:        FlagYes,
			rounds:           nil,
			want:             0,
		},
		{
			name:             "no participant types",
			homeInstitution:  FlagYes,
			participantTypes: nil,
			csiMember:        FlagYes,
			rounds:           []string{"round1"},
			want:             0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotalPrice(tt.homeInstitution, tt.participantTypes, tt.csiMember, tt.rounds)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistration_HasParticipantType(t *testing.T) {
	reg := Registration{
		ParticipationDetails: ParticipationDetails{
			ParticipantTypes: []string{ParticipantInter},
		},
	}

	assert.True(t, reg.HasParticipantType(ParticipantInter))
	assert.False(t, reg.HasParticipantType(ParticipantIntra))
}

func TestRoundsRequired(t *testing.T) {
	tests := []struct {
		name             string
		homeInstitution  string
		participantTypes []string
		want             bool
	}{
		{"home inter", FlagYes, []string{ParticipantInter}, true},
		{"home inter and intra", FlagYes, []string{ParticipantInter, ParticipantIntra}, true},
		{"home intra only", FlagYes, []string{ParticipantIntra}, false},
		{"outside inter", FlagNo, []string{ParticipantInter}, true},
		{"outside with no tags", FlagNo, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundsRequired(tt.homeInstitution, tt.participantTypes))
		})
	}
}

package domain

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Yes/no flags are kept as strings because that is how the registration
// form submits them and how the admin dashboard renders them.
const (
	FlagYes = "yes"
	FlagNo  = "no"
)

const (
	ParticipantInter = "inter"
	ParticipantIntra = "intra"
)

const (
	EducationDiploma   = "diploma"
	EducationBachelors = "bachelors"
)

type PersonalInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	College       string `json:"college"`
	Year          string `json:"year"`
	Branch        string `json:"branch"`
	PRN           string `json:"prn,omitempty"`
	EducationType string `json:"educationType,omitempty"`
}

type ParticipationDetails struct {
	HomeInstitution  string   `json:"homeInstitution"`
	ParticipantTypes []string `json:"participantTypes"`
	CSIMember        string   `json:"csiMember,omitempty"`
	Rounds           []string `json:"rounds"`
	TotalPrice       int      `json:"totalPrice"`
	TransactionRef   string   `json:"transactionRef"`
}

type Documents struct {
	PaymentProof string `json:"paymentProof"`
	CSIProof     string `json:"csiProof,omitempty"`
}

// Registration is one participant's submitted entry.
type Registration struct {
	ID                   string               `json:"id"`
	PersonalInfo         PersonalInfo         `json:"personalInfo"`
	ParticipationDetails ParticipationDetails `json:"participationDetails"`
	Documents            Documents            `json:"documents"`
	Status               Status               `json:"status"`
	Arrived              string               `json:"arrived"`
	QRToken              string               `json:"-"`
	CreatedAt            time.Time            `json:"createdAt"`
	ArrivedAt            *time.Time           `json:"arrivedAt,omitempty"`
}

// HasParticipantType reports whether the given tag was selected.
func (r *Registration) HasParticipantType(tag string) bool {
	return containsString(r.ParticipationDetails.ParticipantTypes, tag)
}

// ComputeTotalPrice derives the registration fee from the participation
// choices. It is a pure function; client-submitted totals are never
// trusted and are always recomputed through here.
//
// Per selected round:
//   - inter-institution entry costs 100 for home-institution participants,
//     50 if they are also CSI members, and 150 for everyone else;
//   - intra-institution entry costs 50 for CSI members and 100 otherwise.
//
// The tags are not mutually exclusive; a participant entered as both pays
// both fees for every selected round.
func ComputeTotalPrice(homeInstitution string, participantTypes []string, csiMember string, rounds []string) int {
	perRound := 0

	if containsString(participantTypes, ParticipantInter) {
		switch {
		case homeInstitution == FlagYes && csiMember == FlagYes:
			perRound += 50
		case homeInstitution == FlagYes:
			perRound += 100
		default:
			perRound += 150
		}
	}

	if containsString(participantTypes, ParticipantIntra) {
		if csiMember == FlagYes {
			perRound += 50
		} else {
			perRound += 100
		}
	}

	return perRound * len(rounds)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

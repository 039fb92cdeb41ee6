// Package submission parses intake form submissions delivered by the upstream
// webhook into typed answers.
package submission

// Field is one name/value pair of a submission, in upstream order.
type Field struct {
	Name  string
	Value string
}

// DiagnosisStatus is the applicant's self-reported diagnosis status.
type DiagnosisStatus string

const (
	DiagnosisFormal         DiagnosisStatus = "Formal"
	DiagnosisQuestioning    DiagnosisStatus = "Questioning"
	DiagnosisSelfDiagnosed  DiagnosisStatus = "SelfDiagnosed"
	DiagnosisFamilyOrFriend DiagnosisStatus = "FamilyOrFriend"
)

// Valid reports whether s is one of the stored labels.
func (s DiagnosisStatus) Valid() bool {
	switch s {
	case DiagnosisFormal, DiagnosisQuestioning, DiagnosisSelfDiagnosed, DiagnosisFamilyOrFriend:
		return true
	}
	return false
}

// Gender is the applicant's self-reported gender.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the stored labels.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Answers is the validated projection of a raw submission.
type Answers struct {
	ClaimedIdentity string
	DiagnosisStatus DiagnosisStatus
	Gender          Gender
	IsAdult         bool
	IsSenior        bool
	IsFemale        bool
}

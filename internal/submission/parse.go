package submission

import (
	"fmt"
	"strings"

	"github.com/hpungsan/warden/internal/errors"
)

// Positional layout of the upstream form.
const (
	fieldIdentity = iota
	fieldDiagnosis
	fieldGender
	fieldAdult
	fieldSenior

	// MinFields is the number of positional fields a submission must carry.
	MinFields
)

// Accepted upstream strings. Anything else is a parse error.
var (
	diagnosisValues = map[string]DiagnosisStatus{
		"Formally diagnosed with ASD (Autism spectrum Disorder)": DiagnosisFormal,
		"Questioning ASD": DiagnosisQuestioning,
		"Self Diagnosed":  DiagnosisSelfDiagnosed,
		"Family Member or Friend of an Autistic Individual.": DiagnosisFamilyOrFriend,
	}

	genderValues = map[string]Gender{
		"Male":   GenderMale,
		"Female": GenderFemale,
		"Other (Non-Binary, Transgender, ETC...)": GenderOther,
	}

	yesNoValues = map[string]bool{
		"Yes": true,
		"No":  false,
	}
)

// Parse converts the ordered upstream fields into Answers.
// Values are matched after trimming surrounding whitespace.
// Returns ErrMalformedSubmission if fewer than MinFields fields are present
// or any positional value falls outside its accepted set.
func Parse(fields []Field) (*Answers, error) {
	if len(fields) < MinFields {
		return nil, errors.NewMalformedSubmission(
			fmt.Sprintf("expected at least %d fields, got %d", MinFields, len(fields)))
	}

	value := func(i int) string {
		return strings.TrimSpace(fields[i].Value)
	}

	identity := value(fieldIdentity)
	if identity == "" {
		return nil, malformedField(fieldIdentity, fields[fieldIdentity], "claimed identity is empty")
	}

	status, ok := diagnosisValues[value(fieldDiagnosis)]
	if !ok {
		return nil, malformedField(fieldDiagnosis, fields[fieldDiagnosis], "unknown diagnosis status")
	}

	gender, ok := genderValues[value(fieldGender)]
	if !ok {
		return nil, malformedField(fieldGender, fields[fieldGender], "unknown gender")
	}

	isAdult, ok := yesNoValues[value(fieldAdult)]
	if !ok {
		return nil, malformedField(fieldAdult, fields[fieldAdult], "expected Yes or No")
	}

	isSenior, ok := yesNoValues[value(fieldSenior)]
	if !ok {
		return nil, malformedField(fieldSenior, fields[fieldSenior], "expected Yes or No")
	}

	return &Answers{
		ClaimedIdentity: identity,
		DiagnosisStatus: status,
		Gender:          gender,
		IsAdult:         isAdult,
		IsSenior:        isSenior,
		IsFemale:        gender == GenderFemale,
	}, nil
}

func malformedField(pos int, f Field, reason string) error {
	err := errors.NewMalformedSubmission(fmt.Sprintf("field %d (%s): %s: %q", pos, f.Name, reason, f.Value))
	err.Details = map[string]any{"position": pos, "name": f.Name, "value": f.Value}
	return err
}

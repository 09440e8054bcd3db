package questionnaire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"rental-inspection-backend/internal/models"
)

// Language selects the prefixes used in the report description.
type Language string

const (
	LanguageDE Language = "de"
	LanguageEN Language = "en"
)

// ParseLanguage maps a language tag to a supported language. Anything other
// than English falls back to German.
func ParseLanguage(tag string) Language {
	if strings.EqualFold(strings.TrimSpace(tag), string(LanguageEN)) {
		return LanguageEN
	}
	return LanguageDE
}

// Condition is the answer to a yes/no condition question.
type Condition string

const (
	ConditionOK      Condition = "einwandfrei"
	ConditionProblem Condition = "probleme"
)

var ErrInvalidAnswers = errors.New("invalid questionnaire answers")

// Question is one condition question with its optional problem description.
type Question struct {
	Answer  Condition `json:"answer" validate:"required,oneof=einwandfrei probleme"`
	Problem string    `json:"problem,omitempty" validate:"required_if=Answer probleme,max=1000"`
}

// Answers is the filled in condition form of one inspection.
type Answers struct {
	Schaltung       Question `json:"schaltung"`
	Bremsen         Question `json:"bremsen"`
	SonstigeMaengel Question `json:"sonstige_maengel"`
	Bemerkungen     string   `json:"bemerkungen,omitempty" validate:"max=2000"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every condition question is answered and that each
// reported problem is described.
func (a Answers) Validate() error {
	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidAnswers, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidAnswers, err)
	}
	return nil
}

type prefixes struct {
	schaltung, bremsen, sonstige, bemerkungen string
}

var descriptionPrefixes = map[Language]prefixes{
	LanguageDE: {"Schaltung", "Bremsen", "Sonstige Mängel", "Bemerkungen"},
	LanguageEN: {"Gears", "Brakes", "Other Issues", "Notes"},
}

// Derive computes the report status and the description from the answers.
// Any reported problem marks the report as damage_found.
func (a Answers) Derive(lang Language) (models.ReportStatus, string) {
	p, ok := descriptionPrefixes[lang]
	if !ok {
		p = descriptionPrefixes[LanguageDE]
	}

	status := models.StatusNoDamage
	var parts []string

	for _, q := range []struct {
		prefix   string
		question Question
	}{
		{p.schaltung, a.Schaltung},
		{p.bremsen, a.Bremsen},
		{p.sonstige, a.SonstigeMaengel},
	} {
		if q.question.Answer != ConditionProblem {
			continue
		}
		status = models.StatusDamageFound
		if text := strings.TrimSpace(q.question.Problem); text != "" {
			parts = append(parts, q.prefix+": "+text)
		}
	}

	if notes := strings.TrimSpace(a.Bemerkungen); notes != "" {
		parts = append(parts, p.bemerkungen+": "+notes)
	}

	return status, strings.Join(parts, "; ")
}

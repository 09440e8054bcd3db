package questionnaire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/questionnaire"
)

func allOK() questionnaire.Answers {
	return questionnaire.Answers{
		Schaltung:       questionnaire.Question{Answer: questionnaire.ConditionOK},
		Bremsen:         questionnaire.Question{Answer: questionnaire.ConditionOK},
		SonstigeMaengel: questionnaire.Question{Answer: questionnaire.ConditionOK},
	}
}

func TestDerive_NoDamage(t *testing.T) {
	status, description := allOK().Derive(questionnaire.LanguageDE)

	assert.Equal(t, models.StatusNoDamage, status)
	assert.Empty(t, description)
}

func TestDerive_NotesOnlyKeepNoDamage(t *testing.T) {
	answers := allOK()
	answers.Bemerkungen = "  Kratzer am Schutzblech  "

	status, description := answers.Derive(questionnaire.LanguageDE)

	assert.Equal(t, models.StatusNoDamage, status)
	assert.Equal(t, "Bemerkungen: Kratzer am Schutzblech", description)
}

func TestDerive_DamageFoundGerman(t *testing.T) {
	answers := allOK()
	answers.Bremsen = questionnaire.Question{Answer: questionnaire.ConditionProblem, Problem: "quietschen"}
	answers.SonstigeMaengel = questionnaire.Question{Answer: questionnaire.ConditionProblem, Problem: "Licht defekt"}
	answers.Bemerkungen = "sonst gut"

	status, description := answers.Derive(questionnaire.LanguageDE)

	assert.Equal(t, models.StatusDamageFound, status)
	assert.Equal(t, "Bremsen: quietschen; Sonstige Mängel: Licht defekt; Bemerkungen: sonst gut", description)
}

func TestDerive_DamageFoundEnglish(t *testing.T) {
	answers := allOK()
	answers.Schaltung = questionnaire.Question{Answer: questionnaire.ConditionProblem, Problem: "chain skips"}

	status, description := answers.Derive(questionnaire.LanguageEN)

	assert.Equal(t, models.StatusDamageFound, status)
	assert.Equal(t, "Gears: chain skips", description)
}

func TestDerive_ProblemWithoutTextStillDamage(t *testing.T) {
	answers := allOK()
	answers.Bremsen = questionnaire.Question{Answer: questionnaire.ConditionProblem}

	status, description := answers.Derive(questionnaire.LanguageEN)

	assert.Equal(t, models.StatusDamageFound, status)
	assert.Empty(t, description)
}

func TestAnswers_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*questionnaire.Answers)
		wantErr bool
	}{
		{
			name:   "all answered",
			mutate: func(a *questionnaire.Answers) {},
		},
		{
			name: "problem with description",
			mutate: func(a *questionnaire.Answers) {
				a.Bremsen = questionnaire.Question{Answer: questionnaire.ConditionProblem, Problem: "quietschen"}
			},
		},
		{
			name: "unanswered question",
			mutate: func(a *questionnaire.Answers) {
				a.Schaltung = questionnaire.Question{}
			},
			wantErr: true,
		},
		{
			name: "unknown answer",
			mutate: func(a *questionnaire.Answers) {
				a.Bremsen = questionnaire.Question{Answer: "vielleicht"}
			},
			wantErr: true,
		},
		{
			name: "problem without description",
			mutate: func(a *questionnaire.Answers) {
				a.SonstigeMaengel = questionnaire.Question{Answer: questionnaire.ConditionProblem}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := allOK()
			tt.mutate(&answers)

			err := answers.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, questionnaire.ErrInvalidAnswers)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, questionnaire.LanguageEN, questionnaire.ParseLanguage("en"))
	assert.Equal(t, questionnaire.LanguageEN, questionnaire.ParseLanguage(" EN "))
	assert.Equal(t, questionnaire.LanguageDE, questionnaire.ParseLanguage("de"))
	assert.Equal(t, questionnaire.LanguageDE, questionnaire.ParseLanguage("fr"))
	assert.Equal(t, questionnaire.LanguageDE, questionnaire.ParseLanguage(""))
}

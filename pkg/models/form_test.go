package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionTableName(t *testing.T) {
	tests := []struct {
		name     string
		formName string
		uniqueID string
		want     string
	}{
		{
			name:     "simple name",
			formName: "patients",
			uniqueID: "ab12cd34ef56",
			want:     "patients_ab12cd34ef56_submission",
		},
		{
			name:     "spaces and case collapse",
			formName: "Patient Intake Form",
			uniqueID: "ab12cd34ef56",
			want:     "patient_intake_form_ab12cd34ef56_submission",
		},
		{
			name:     "punctuation runs collapse to one underscore",
			formName: "Q1 -- Survey (2024)!",
			uniqueID: "ab12cd34ef56",
			want:     "q1_survey_2024_ab12cd34ef56_submission",
		},
		{
			name:     "leading and trailing junk trimmed",
			formName: "  ***Survey***  ",
			uniqueID: "ab12cd34ef56",
			want:     "survey_ab12cd34ef56_submission",
		},
		{
			name:     "name with nothing usable falls back",
			formName: "???",
			uniqueID: "ab12cd34ef56",
			want:     "form_ab12cd34ef56_submission",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Form{Name: tt.formName, UniqueID: tt.uniqueID}
			assert.Equal(t, tt.want, f.SubmissionTableName())
		})
	}
}

func TestSubmissionTableName_StableAcrossRename(t *testing.T) {
	f := &Form{Name: "patients", UniqueID: "ab12cd34ef56"}
	original := f.SubmissionTableName()

	// The derived name changes with the form name; callers persist the
	// name at first publish and never re-derive it.
	f.Name = "renamed patients"
	assert.NotEqual(t, original, f.SubmissionTableName())
}

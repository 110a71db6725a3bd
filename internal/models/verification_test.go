package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifiesForAutoApproval(t *testing.T) {
	cases := []struct {
		name       string
		label      string
		confidence float64
		want       bool
	}{
		{"at the bar", AutoApproveLabel, AutoApproveConfidence, true},
		{"above the bar", AutoApproveLabel, 0.99, true},
		{"just below the bar", AutoApproveLabel, 0.8499, false},
		{"wrong label high confidence", "male", 0.99, false},
		{"case sensitive label", "Female", 0.95, false},
		{"empty label", "", 1.0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := &IdentityVerification{AILabel: tc.label, AIConfidence: tc.confidence}
			assert.Equal(t, tc.want, v.QualifiesForAutoApproval())
		})
	}
}

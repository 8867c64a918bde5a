package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawRecord_Fingerprint_IgnoresSourceAndLine(t *testing.T) {
	a := RawRecord{Source: "a.csv", Line: 2, Fields: map[string]string{"FNAME": "JANE", "LNAME": "DOE"}}
	b := RawRecord{Source: "b.csv", Line: 90, Fields: map[string]string{"LNAME": "DOE", "FNAME": "JANE"}}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEmpty(t, a.Fingerprint())
}

func TestRawRecord_Fingerprint_Distinguishes(t *testing.T) {
	base := RawRecord{Fields: map[string]string{"FNAME": "JANE", "LNAME": "DOE"}}

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"different value", map[string]string{"FNAME": "JOHN", "LNAME": "DOE"}},
		{"different column", map[string]string{"FIRST": "JANE", "LNAME": "DOE"}},
		{"extra column", map[string]string{"FNAME": "JANE", "LNAME": "DOE", "VUID": "1"}},
		{"value moved across separator", map[string]string{"FNAME": "JANE=LNAME", "LNAME": "DOE"}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := RawRecord{Fields: tt.fields}
			assert.NotEqual(t, base.Fingerprint(), other.Fingerprint())
		})
	}
}

func TestRawRecord_Fingerprint_Stable(t *testing.T) {
	r := RawRecord{Fields: map[string]string{"VUID": "1001", "DOB": "19800101"}}
	assert.Equal(t, r.Fingerprint(), r.Fingerprint())
}

package domain

import "strings"

// FileTypeVoterFile marks a registered-voter file.
// Voter files require a residential address.
const FileTypeVoterFile = "voterfile"

// DefaultDistrictThreshold is the token-sort similarity (0-100) a district
// field name must exceed to take a canonical district label.
const DefaultDistrictThreshold = 90

// Jurisdiction identifies which alias configuration applies to a file.
type Jurisdiction struct {
	// State is the state code, e.g. "tx".
	State string

	// FileType selects a configuration within the state, e.g. "voterfile".
	FileType string
}

// AliasConfig is the immutable per-jurisdiction configuration used by the
// renaming and cleanup stages.
type AliasConfig struct {
	Jurisdiction Jurisdiction

	// Fields maps canonical field names to raw source names in priority order.
	Fields map[string][]string

	// DateFormats are strptime-style patterns tried in order.
	DateFormats []string

	Settings Settings
}

// Settings holds jurisdiction scoping and behaviour switches.
type Settings struct {
	StateAbbreviation string `json:"state_abbreviation"`
	StateName         string `json:"state_name,omitempty"`
	CityName          string `json:"city_name,omitempty"`
	CountyName        string `json:"county_name,omitempty"`
	FileType          string `json:"file_type,omitempty"`

	// RemoveChars strips text from district names that contain a target.
	RemoveChars []TextCorrection `json:"remove_chars,omitempty"`

	// ReplaceChars rewrites substrings of canonical field values.
	ReplaceChars []FieldReplacement `json:"replace_chars,omitempty"`

	// RequireAddress makes a record without any address invalid.
	RequireAddress bool `json:"require_address,omitempty"`

	// StrictDOB escalates a missing or unparseable date of birth to an error.
	StrictDOB bool `json:"strict_dob,omitempty"`

	// DistrictThreshold overrides DefaultDistrictThreshold when non-zero.
	DistrictThreshold int `json:"district_threshold,omitempty"`
}

// IsVoterFile reports whether the file type is a voter file.
func (s Settings) IsVoterFile() bool {
	return strings.EqualFold(s.FileType, FileTypeVoterFile)
}

// Threshold returns the effective district similarity threshold.
func (s Settings) Threshold() int {
	if s.DistrictThreshold > 0 {
		return s.DistrictThreshold
	}
	return DefaultDistrictThreshold
}

// TextCorrection removes Text from district names containing Target.
type TextCorrection struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Target string `json:"target"`
}

// FieldReplacement replaces Old with New in the value of Field.
type FieldReplacement struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

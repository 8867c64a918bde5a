package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

func renameStageError(t *testing.T, err error) *domain.StageError {
	t.Helper()
	var se *domain.StageError
	require.True(t, errors.As(err, &se), "expected StageError, got %v", err)
	assert.Equal(t, domain.FailureRename, se.Stage)
	assert.Equal(t, ModelRename, se.Model)
	return se
}

func TestRenamer_Rename_GroupsFields(t *testing.T) {
	raw := txRow(2, "Jane", "Doe", "1001")
	out, err := NewRenamer().Rename(txConfig(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Jane", out.Person.First)
	assert.Equal(t, "Doe", out.Person.Last)
	assert.Equal(t, "19800115", out.Person.DOB)
	assert.Equal(t, "1001", out.Registration.VUID)
	assert.Equal(t, "20100304", out.Registration.RegistrationDate)
	assert.Equal(t, []domain.Field{{Name: "election_2022_general_method", Value: "early"}}, out.Elections)

	// State is filled from settings as a part field.
	assert.Equal(t, "TX", out.Renamed["residence_part_state"])
	assert.Contains(t, out.Addresses[domain.AddressResidence], domain.Field{Name: "residence_part_state", Value: "TX"})
	assert.Len(t, out.Addresses[domain.AddressResidence], 6)

	assert.Equal(t, raw, out.Raw)
	assert.Equal(t, []string{"%Y%m%d"}, out.DateFormats)
	assert.Equal(t, "TX", out.Settings.StateAbbreviation)
}

func TestRenamer_Rename_FirstAliasWins(t *testing.T) {
	cfg := txConfig()
	raw := domain.RawRecord{Fields: map[string]string{"FIRST_NAME": "Jane", "FNAME": "Janet"}}

	out, err := NewRenamer().Rename(cfg, raw)
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Person.First)

	raw.Fields["FIRST_NAME"] = "null"
	out, err = NewRenamer().Rename(cfg, raw)
	require.NoError(t, err)
	assert.Equal(t, "Janet", out.Person.First, "blank values fall through to the next alias")
}

func TestRenamer_Rename_CaseInsensitiveFallback(t *testing.T) {
	raw := domain.RawRecord{Fields: map[string]string{"first_name": "jane", "Last_Name": "doe"}}
	out, err := NewRenamer().Rename(txConfig(), raw)
	require.NoError(t, err)
	assert.Equal(t, "jane", out.Person.First)
	assert.Equal(t, "doe", out.Person.Last)
}

func TestRenamer_Rename_NullAliasIsCanonicalName(t *testing.T) {
	cfg := &domain.AliasConfig{Fields: map[string][]string{"voter_vuid": {"null"}}}
	out, err := NewRenamer().Rename(cfg, domain.RawRecord{Fields: map[string]string{"voter_vuid": "42"}})
	require.NoError(t, err)
	assert.Equal(t, "42", out.Registration.VUID)
}

func TestRenamer_Rename_DropsSentinels(t *testing.T) {
	raw := domain.RawRecord{Fields: map[string]string{
		"FIRST_NAME": `"`,
		"LAST_NAME":  "  ",
		"VUID":       " 1001 ",
	}}
	out, err := NewRenamer().Rename(txConfig(), raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"voter_vuid": "1001"}, out.Renamed)
	assert.True(t, out.Person.IsEmpty())
}

func TestRenamer_Rename_ReplaceChars(t *testing.T) {
	cfg := txConfig()
	cfg.Settings.ReplaceChars = []domain.FieldReplacement{
		{Field: "person_name_last", Old: "'", New: ""},
		{Field: "person_name_first", Old: "X", New: ""},
	}
	raw := domain.RawRecord{Fields: map[string]string{"LAST_NAME": "O'Neil", "FIRST_NAME": "X", "VUID": "1"}}

	out, err := NewRenamer().Rename(cfg, raw)
	require.NoError(t, err)
	assert.Equal(t, "ONeil", out.Person.Last)
	_, ok := out.Renamed["person_name_first"]
	assert.False(t, ok, "a field emptied by replacement is dropped")
}

func TestRenamer_Rename_Unmapped(t *testing.T) {
	_, err := NewRenamer().Rename(txConfig(), domain.RawRecord{Source: "x.csv", Fields: map[string]string{"OTHER": "1"}})
	se := renameStageError(t, err)
	assert.Equal(t, []string{domain.ErrTypeUnmappedRecord}, se.Types())
}

func TestRenamer_Rename_MissingStateSetting(t *testing.T) {
	cfg := txConfig()
	cfg.Settings.StateAbbreviation = ""

	_, err := NewRenamer().Rename(cfg, txRow(2, "Jane", "Doe", "1"))
	se := renameStageError(t, err)
	assert.Equal(t, []string{domain.ErrTypeMissingStateSetting}, se.Types())
}

func TestRenamer_Rename_FreeTextAddressGetsPlainState(t *testing.T) {
	cfg := &domain.AliasConfig{
		Fields: map[string][]string{
			"mail_address_line_1": {"ADDR"},
			"mail_part_zip5":      {"ZIP"},
		},
		Settings: domain.Settings{StateAbbreviation: "oh"},
	}
	out, err := NewRenamer().Rename(cfg, domain.RawRecord{Fields: map[string]string{"ADDR": "1 Elm St", "ZIP": "43004"}})
	require.NoError(t, err)
	assert.Equal(t, "OH", out.Renamed["mail_state"])
}

func TestRenamer_Rename_NilConfig(t *testing.T) {
	_, err := NewRenamer().Rename(nil, txRow(1, "a", "b", "c"))
	se := renameStageError(t, err)
	assert.Equal(t, []string{domain.ErrTypeInternal}, se.Types())
}

func TestGroup(t *testing.T) {
	out := group(map[string]string{
		"person_name_middle":          "Q",
		"person_dob_year":             "1980",
		"person_nickname":             "JJ",
		"voter_status":                "A",
		"voter_party_status":          "D",
		"voter_precinct_number":       "101",
		"voter_profile_party":         "DEM",
		"voter_language":              "EN",
		"contact_phone_mobile":        "5125551212",
		"contact_phone_home_areacode": "512",
		"contact_phone_home_number":   "5551212",
		"district_city_council":       "4",
		"district_galaxy_far":         "9",
		"vendor_tsmart_score":         "87",
		"vendor_bad":                  "x",
		"something_else":              "y",
	})

	assert.Equal(t, "Q", out.Person.Middle)
	assert.Equal(t, "1980", out.Person.DOBYear)
	assert.Equal(t, map[string]string{"nickname": "JJ"}, out.Person.Other)

	assert.NotEmpty(t, out.Registration.Status)
	assert.Equal(t, "101", out.Registration.PrecinctNumber)
	assert.Equal(t, map[string]string{"party": "DEM"}, out.Registration.PoliticalTags)
	assert.Equal(t, map[string]string{"language": "EN"}, out.Registration.Attributes)

	require.Len(t, out.Phones, 2)
	assert.Equal(t, domain.PhoneSlot{Type: "home", AreaCode: "512", Subscriber: "5551212"}, out.Phones[0])
	assert.Equal(t, domain.PhoneSlot{Type: "mobile", Number: "5125551212"}, out.Phones[1])

	assert.Equal(t, []domain.Field{{Name: "council", Value: "4"}}, out.Districts[domain.LevelCity])
	assert.Equal(t, []domain.VendorGroup{{Name: "tsmart", Tags: []domain.Field{{Name: "score", Value: "87"}}}}, out.Vendors)

	assert.Equal(t, map[string]string{
		"district_galaxy_far": "9",
		"vendor_bad":          "x",
		"something_else":      "y",
	}, out.Extra)
}

package address

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

func labels(tokens []Token) []Label {
	out := make([]Label, len(tokens))
	for i, t := range tokens {
		out[i] = t.Label
	}
	return out
}

func TestTokenize_StreetAddress(t *testing.T) {
	tokens := Tokenize("123 N Main St Apt 4, Austin, TX 78701-1234")

	assert.Equal(t, []Label{
		AddressNumber, StreetNamePreDirectional, StreetName, StreetNamePostType,
		OccupancyType, OccupancyIdentifier, PlaceName, StateName, ZipCode,
	}, labels(tokens))
	assert.Equal(t, "78701-1234", tokens[len(tokens)-1].Text)
}

func TestTokenize_POBox(t *testing.T) {
	tokens := Tokenize("P.O. Box 55 Round Rock TX 78664")

	assert.Equal(t, []Label{
		USPSBoxType, USPSBoxType, USPSBoxID, PlaceName, PlaceName, StateName, ZipCode,
	}, labels(tokens))
}

func TestTokenize_StreetWithoutSuffix(t *testing.T) {
	tokens := Tokenize("350 Broadway New York NY 10013")

	assert.Equal(t, []Label{
		AddressNumber, StreetName, PlaceName, PlaceName, StateName, ZipCode,
	}, labels(tokens))
}

func TestTokenize_CommaBoundsStreetName(t *testing.T) {
	tokens := Tokenize("12 El Camino Real, Santa Clara, CA")

	assert.Equal(t, []Label{
		AddressNumber, StreetName, StreetName, StreetName, PlaceName, PlaceName, StateName,
	}, labels(tokens))
}

func TestStandardize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Lines
		std   string
	}{
		{
			name:  "long form words are abbreviated",
			input: "123 north main street apartment 4 austin texas 78701",
			want:  Lines{Line1: "123 N MAIN ST", Line2: "APT 4", City: "AUSTIN", State: "TX", Zip5: "78701"},
			std:   "123 N MAIN ST, APT 4, AUSTIN, TX, 78701",
		},
		{
			name:  "zip plus four",
			input: "9 Elm Ave Dallas TX 75201 1234",
			want:  Lines{Line1: "9 ELM AVE", City: "DALLAS", State: "TX", Zip5: "75201", Zip4: "1234"},
			std:   "9 ELM AVE, DALLAS, TX, 75201-1234",
		},
		{
			name:  "post office box",
			input: "P.O. Box 55 Round Rock TX 78664",
			want:  Lines{Line1: "PO BOX 55", City: "ROUND ROCK", State: "TX", Zip5: "78664"},
			std:   "PO BOX 55, ROUND ROCK, TX, 78664",
		},
		{
			name:  "zip without city",
			input: "1600 Pennsylvania Ave NW 20500",
			want:  Lines{Line1: "1600 PENNSYLVANIA AVE NW", Zip5: "20500"},
			std:   "1600 PENNSYLVANIA AVE NW, 20500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Standardize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.std, got.Standardized())
		})
	}
}

func TestStandardize_Unparseable(t *testing.T) {
	_, err := Standardize("Rural Route Nowhere")
	assert.True(t, errors.Is(err, ErrUnparseable))

	_, err = Standardize("123 Main St")
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestFallback(t *testing.T) {
	l := Fallback("Rural Route Nowhere")
	assert.Equal(t, "RURAL ROUTE NOWHERE", l.City)
	assert.Empty(t, l.Line1)

	l = Fallback("123 Main St")
	assert.Equal(t, "123 MAIN ST", l.Line1)
}

func TestParts_MergesRepeatedComponents(t *testing.T) {
	parts := Parts("123 N MAIN ST, APT 4, ROUND ROCK, TX, 78664")

	assert.Equal(t, map[string]string{
		"AddressNumber":            "123",
		"StreetNamePreDirectional": "N",
		"StreetName":               "MAIN",
		"StreetNamePostType":       "ST",
		"OccupancyType":            "APT",
		"OccupancyIdentifier":      "4",
		"PlaceName":                "ROUND ROCK",
		"StateName":                "TX",
		"ZipCode":                  "78664",
	}, parts)
	assert.Nil(t, Parts(""))
}

func TestResolve_PartKeyedFields(t *testing.T) {
	r := NewResolver()

	addr, notes, err := r.Resolve(domain.AddressResidence, []domain.Field{
		{Name: "residence_part_zip5", Value: "78701"},
		{Name: "residence_part_city", Value: "Austin"},
		{Name: "residence_part_street_name", Value: "Main"},
		{Name: "residence_part_address_number", Value: "123"},
		{Name: "residence_part_street_suffix", Value: "St"},
		{Name: "residence_part_state", Value: "TX"},
	})
	require.NoError(t, err)
	require.NotNil(t, addr)

	assert.Equal(t, "123 MAIN ST, AUSTIN, TX, 78701", addr.Standardized)
	assert.Equal(t, keygen.MustStaticKey(addr.Standardized), addr.ID)
	assert.True(t, addr.IsResidence)
	assert.False(t, addr.IsMailing)
	assert.Equal(t, "78701", addr.Zipcode)
	assert.Equal(t, "MAIN", addr.Parts["StreetName"])
	assert.Contains(t, notes, NoteFromParts)
	assert.Contains(t, notes, NoteStandardized)
}

func TestResolve_ConcatenatedFieldsAreKeyedByStandardForm(t *testing.T) {
	r := NewResolver()

	a, _, err := r.Resolve(domain.AddressMail, []domain.Field{
		{Name: "mail_address1", Value: "123 Main Street"},
		{Name: "mail_city", Value: "Austin"},
		{Name: "mail_state", Value: "TX"},
		{Name: "mail_zip5", Value: "78701"},
		{Name: "mail_zip4", Value: "0001"},
		{Name: "mail_county", Value: "Travis"},
	})
	require.NoError(t, err)

	b, _, err := r.Resolve(domain.AddressMail, []domain.Field{
		{Name: "mail_zip4", Value: "0001"},
		{Name: "mail_zip5", Value: "78701"},
		{Name: "mail_address1", Value: "123 MAIN ST"},
		{Name: "mail_state", Value: "Texas"},
		{Name: "mail_city", Value: "AUSTIN"},
	})
	require.NoError(t, err)

	assert.Equal(t, "123 MAIN ST, AUSTIN, TX, 78701-0001", a.Standardized)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "Travis", a.County)
	assert.Empty(t, b.County)
	assert.True(t, a.IsMailing)
}

func TestResolve_FallbackStillKeys(t *testing.T) {
	r := NewResolver()

	addr, notes, err := r.Resolve(domain.AddressResidence, []domain.Field{
		{Name: "residence_address1", Value: "Rural Route Nowhere"},
	})
	require.NoError(t, err)
	assert.Equal(t, "RURAL ROUTE NOWHERE", addr.Standardized)
	assert.NotEmpty(t, addr.ID)
	assert.Contains(t, notes, NoteFallback)
}

func TestResolve_NoLocationFields(t *testing.T) {
	r := NewResolver()

	addr, _, err := r.Resolve(domain.AddressResidence, nil)
	assert.NoError(t, err)
	assert.Nil(t, addr)

	addr, _, err = r.Resolve(domain.AddressResidence, []domain.Field{{Name: "residence_county", Value: "Travis"}})
	assert.NoError(t, err)
	assert.Nil(t, addr)
}

package date

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

func fixedClock() time.Time {
	return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func newParser(t *testing.T, formats ...string) *Parser {
	t.Helper()
	p, err := NewParser(formats, WithClock(fixedClock))
	require.NoError(t, err)
	return p
}

func ymd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewParser_MissingFormat(t *testing.T) {
	_, err := NewParser(nil)
	require.Error(t, err)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, domain.ErrTypeMissingDateFormat, ve.Type)

	_, err = NewParser([]string{"  ", ""})
	assert.Error(t, err)
}

func TestParse_TriesFormatsInOrder(t *testing.T) {
	p := newParser(t, "%m/%d/%Y", "%Y-%m-%d", "%Y%m%d")

	got, err := p.Parse("2020-03-15")
	require.NoError(t, err)
	assert.Equal(t, ymd(2020, time.March, 15), got)

	got, err = p.Parse("03/15/2020")
	require.NoError(t, err)
	assert.Equal(t, ymd(2020, time.March, 15), got)

	_, err = p.Parse("not a date")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistrationDate_Invalid(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	got, err := p.RegistrationDate("20210704")
	require.NoError(t, err)
	assert.Equal(t, ymd(2021, time.July, 4), got)

	_, err = p.RegistrationDate("July fourth")
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, domain.ErrTypeInvalidRegistrationDate, ve.Type)
	assert.Equal(t, "July fourth", ve.Context["voter_registration_date"])
}

func TestComposeDOB_YearMonthDefaultsDay(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	res := p.ComposeDOB(Parts{YearMonth: "202003"})
	require.NotNil(t, res.Date)
	assert.Equal(t, ymd(2020, time.March, 1), *res.Date)
	assert.Equal(t, "20200301", res.Value)
	assert.Contains(t, res.Notes, NoteYearMonth)
	assert.Contains(t, res.Notes, NoteConverted)
}

func TestComposeDOB_SixCharacterDate(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	res := p.ComposeDOB(Parts{Full: "990101"})
	require.NotNil(t, res.Date)
	assert.Equal(t, ymd(1999, time.January, 1), *res.Date)
	assert.Contains(t, res.Notes, NoteSixChars)
	assert.Contains(t, res.Notes, NoteTwoDigitYear)
}

func TestComposeDOB_SixCharacterYearMonth(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	res := p.ComposeDOB(Parts{Full: "198705"})
	require.NotNil(t, res.Date)
	assert.Equal(t, ymd(1987, time.May, 1), *res.Date)
	assert.NotContains(t, res.Notes, NoteTwoDigitYear)
}

func TestComposeDOB_ZeroDay(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	res := p.ComposeDOB(Parts{Full: "19800500"})
	require.NotNil(t, res.Date)
	assert.Equal(t, ymd(1980, time.May, 1), *res.Date)
	assert.Contains(t, res.Notes, NoteZeroDay)
}

func TestComposeDOB_Parts(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	tests := []struct {
		name  string
		parts Parts
		want  time.Time
		note  string
	}{
		{"year month day", Parts{Year: "1975", Month: "7", Day: "4"}, ymd(1975, time.July, 4), NoteYearMonthParts},
		{"year month", Parts{Year: "1975", Month: "12"}, ymd(1975, time.December, 1), NoteYearAndMonth},
		{"year only", Parts{Year: "1975"}, ymd(1975, time.January, 1), NoteYearOnly},
		{"yearmonth and day", Parts{YearMonth: "197512", Day: "24"}, ymd(1975, time.December, 24), NoteYearMonthDay},
		{"full wins", Parts{Full: "19600202", Year: "1975"}, ymd(1960, time.February, 2), NoteConverted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.ComposeDOB(tt.parts)
			require.NotNil(t, res.Date)
			assert.Equal(t, tt.want, *res.Date)
			assert.Contains(t, res.Notes, tt.note)
		})
	}
}

func TestComposeDOB_DashedFullDate(t *testing.T) {
	p := newParser(t, "%Y-%m-%d")

	res := p.ComposeDOB(Parts{Full: "1988-11-30"})
	require.NotNil(t, res.Date)
	assert.Equal(t, ymd(1988, time.November, 30), *res.Date)
}

func TestComposeDOB_FutureDateRejected(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	res := p.ComposeDOB(Parts{Full: "20300101"})
	assert.Nil(t, res.Date)
	assert.Contains(t, res.Notes, NoteRemoved)
}

func TestComposeDOB_Unparseable(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	res := p.ComposeDOB(Parts{Full: "unknown"})
	assert.Nil(t, res.Date)
	assert.Contains(t, res.Notes, NoteRemoved)
}

func TestComposeDOB_Empty(t *testing.T) {
	p := newParser(t, "%Y%m%d")

	res := p.ComposeDOB(Parts{})
	assert.Nil(t, res.Date)
	assert.Empty(t, res.Notes)
	assert.True(t, Parts{}.IsEmpty())
}

func TestFormats_ReturnsCopy(t *testing.T) {
	p := newParser(t, "%Y%m%d", "%m/%d/%Y")

	formats := p.Formats()
	formats[0] = "changed"
	assert.Equal(t, []string{"%Y%m%d", "%m/%d/%Y"}, p.Formats())
}

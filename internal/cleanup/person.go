package cleanup

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/normalisers/date"
)

// PersonStage builds the record's PersonName from person_* fields.
type PersonStage struct{}

var _ driven.CleanupStage = (*PersonStage)(nil)

// NewPersonStage creates a person stage.
func NewPersonStage() *PersonStage {
	return &PersonStage{}
}

func (s *PersonStage) Name() string { return StagePerson }

// Apply fails with missing_name when the record has no person field at all.
func (s *PersonStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, _ domain.Corrections) (domain.Record, error) {
	if src.Person.IsEmpty() {
		return rec, domain.NewValidationError(
			domain.ErrTypeMissingName,
			"missing name details, unable to generate a strong key to match with",
			"validator_model", StagePerson,
		)
	}

	f := src.Person
	f.Prefix = squash(f.Prefix)
	f.First = squash(f.First)
	f.Middle = squash(f.Middle)
	f.Last = squash(f.Last)
	f.Suffix = squash(f.Suffix)
	f.Gender = squash(f.Gender)
	rec.Name = domain.NewPersonName(f)
	return rec, nil
}

// DOBStage composes the date of birth and attaches it to the name.
type DOBStage struct {
	strict bool
	now    func() time.Time
}

var _ driven.CleanupStage = (*DOBStage)(nil)

// DOBOption configures a DOBStage.
type DOBOption func(*DOBStage)

// WithStrictDOB makes an unusable date of birth an invalid_dob error for
// every file, not only files whose settings ask for it.
func WithStrictDOB(strict bool) DOBOption {
	return func(s *DOBStage) {
		s.strict = strict
	}
}

// WithDOBClock sets the clock dates of birth must precede.
func WithDOBClock(now func() time.Time) DOBOption {
	return func(s *DOBStage) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDOBStage creates a date of birth stage.
func NewDOBStage(opts ...DOBOption) *DOBStage {
	s := &DOBStage{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DOBStage) Name() string { return StageDOB }

// Apply leaves the record untouched when it has no date of birth fields.
// An unusable date of birth is dropped with a note unless strict.
func (s *DOBStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, notes domain.Corrections) (domain.Record, error) {
	p := src.Person
	if !p.HasDOBParts() || rec.Name == nil {
		return rec, nil
	}

	parser, err := date.NewParser(src.DateFormats, date.WithClock(s.now))
	if err != nil {
		return rec, err
	}

	res := parser.ComposeDOB(date.Parts{
		Full:      p.DOB,
		YearMonth: p.DOBYearMonth,
		Year:      p.DOBYear,
		Month:     p.DOBMonth,
		Day:       p.DOBDay,
	})
	notes.Add(NoteKeyDOB, res.Notes...)

	if res.Date == nil {
		if s.strict || src.Settings.StrictDOB {
			return rec, domain.NewValidationError(
				domain.ErrTypeInvalidDOB,
				"date of birth is not a valid date",
				"person_dob", res.Value,
			)
		}
		return rec, nil
	}

	rec.Name = rec.Name.WithDOB(res.Date)
	return rec, nil
}

// squash trims s and collapses inner whitespace.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

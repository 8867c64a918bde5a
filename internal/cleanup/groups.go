package cleanup

import (
	"context"
	"time"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/normalisers/date"
	"github.com/custodia-labs/vepctl/internal/normalisers/district"
	"github.com/custodia-labs/vepctl/internal/normalisers/election"
	"github.com/custodia-labs/vepctl/internal/normalisers/vendor"
)

// DistrictStage resolves district memberships into a DistrictSet.
type DistrictStage struct {
	threshold int
	now       func() time.Time
}

var _ driven.CleanupStage = (*DistrictStage)(nil)

// DistrictOption configures a DistrictStage.
type DistrictOption func(*DistrictStage)

// WithDistrictThreshold overrides the similarity threshold of every file.
func WithDistrictThreshold(threshold int) DistrictOption {
	return func(s *DistrictStage) {
		s.threshold = threshold
	}
}

// WithDistrictClock sets the clock used for last_updated.
func WithDistrictClock(now func() time.Time) DistrictOption {
	return func(s *DistrictStage) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDistrictStage creates a district stage.
func NewDistrictStage(opts ...DistrictOption) *DistrictStage {
	s := &DistrictStage{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DistrictStage) Name() string { return StageDistrict }

// Apply resolves every level, applies the file's REMOVE-CHARS corrections
// and collects the result into one set.
func (s *DistrictStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, notes domain.Corrections) (domain.Record, error) {
	if len(src.Districts) == 0 {
		return rec, nil
	}

	threshold := s.threshold
	if threshold <= 0 {
		threshold = src.Settings.Threshold()
	}
	r := district.NewResolver(district.WithThreshold(threshold), district.WithClock(s.now))

	districts, n := r.ResolveAll(src.Districts, district.ScopeFrom(src.Settings))
	for k, v := range n {
		notes.Add(k, v...)
	}
	for level, removed := range district.RemoveText(districts, src.Settings.RemoveChars) {
		for _, note := range removed {
			notes.Add(NoteKeyDistricts, string(level)+": "+note)
		}
	}

	if len(districts) > 0 {
		rec.Districts = domain.NewDistrictSet(districts...)
	}
	return rec, nil
}

// VendorStage extracts vendor names and tag bags.
type VendorStage struct{}

var _ driven.CleanupStage = (*VendorStage)(nil)

// NewVendorStage creates a vendor stage.
func NewVendorStage() *VendorStage {
	return &VendorStage{}
}

func (s *VendorStage) Name() string { return StageVendor }

func (s *VendorStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, _ domain.Corrections) (domain.Record, error) {
	rec.VendorNames, rec.VendorTags = vendor.Extract(src.Vendors)
	return rec, nil
}

// ElectionStage builds the vote history of registered voters.
type ElectionStage struct{}

var _ driven.CleanupStage = (*ElectionStage)(nil)

// NewElectionStage creates an election stage.
func NewElectionStage() *ElectionStage {
	return &ElectionStage{}
}

func (s *ElectionStage) Name() string { return StageElection }

// Apply is a no-op for records without a VUID, since votes are keyed by it.
func (s *ElectionStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, notes domain.Corrections) (domain.Record, error) {
	if len(src.Elections) == 0 || rec.Registration == nil || rec.Registration.VUID == "" {
		return rec, nil
	}

	var opts []election.Option
	if parser, err := date.NewParser(src.DateFormats); err == nil {
		opts = append(opts, election.WithDateParser(parser.Parse))
	}

	h, n := election.NewParser(src.Settings.StateAbbreviation, opts...).Parse(src.Elections, rec.Registration.VUID)
	notes.Add(NoteKeyElections, n...)
	rec.Elections = h.Elections
	rec.VoteMethods = h.Methods
	rec.Votes = h.Votes
	return rec, nil
}

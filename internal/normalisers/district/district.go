// Package district resolves district memberships from district_<level>_*
// fields.
package district

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// Attribute names set on resolved districts.
const (
	AttrLastUpdated = "last_updated"
	AttrCodePrefix  = "district_code_prefix"
)

// Resolver maps district fields onto canonical districts.
type Resolver struct {
	threshold int
	now       func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithThreshold sets the similarity (0-100) a field name must exceed to
// take a code's canonical label.
func WithThreshold(threshold int) Option {
	return func(r *Resolver) {
		if threshold > 0 {
			r.threshold = threshold
		}
	}
}

// WithClock sets the clock used for the last_updated attribute.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a resolver using domain.DefaultDistrictThreshold.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{threshold: domain.DefaultDistrictThreshold, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scope is the jurisdiction attached to every resolved district.
type Scope struct {
	State  string
	City   string
	County string
}

// ScopeFrom builds the scope of a file from its settings.
func ScopeFrom(s domain.Settings) Scope {
	return Scope{State: s.StateAbbreviation, City: s.CityName, County: s.CountyName}
}

// Resolve builds one district per field of level. Fields are taken longest
// name first. A field name containing a code's name takes the code's label
// when their token-sort similarity exceeds the threshold; otherwise the
// field name itself is the district name. Digits of the value become the
// district number and its letters the district_code_prefix attribute.
func (r *Resolver) Resolve(level domain.DistrictLevel, fields []domain.Field, scope Scope) []domain.District {
	if len(fields) == 0 {
		return nil
	}

	sorted := make([]domain.Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Name) != len(sorted[j].Name) {
			return len(sorted[i].Name) > len(sorted[j].Name)
		}
		return sorted[i].Name < sorted[j].Name
	})

	updated := r.now().Format(time.DateOnly)
	districts := make([]domain.District, 0, len(sorted))
	for _, f := range sorted {
		d := domain.District{
			Type:       level,
			StateAbbv:  scope.State,
			Name:       r.label(level, f.Name),
			Attributes: map[string]string{AttrLastUpdated: updated},
		}

		number, prefix := splitCode(f.Value)
		d.Number = number
		if prefix != "" {
			d.Attributes[AttrCodePrefix] = prefix
		}

		switch {
		case scope.City != "":
			d.City = scope.City
		case scope.County != "":
			d.County = scope.County
		}

		d.Rekey()
		districts = append(districts, d)
	}
	return districts
}

// ResolveAll resolves every level and returns the districts in level order
// with a note per resolved level, keyed "<level>_districts".
func (r *Resolver) ResolveAll(fields map[domain.DistrictLevel][]domain.Field, scope Scope) ([]domain.District, domain.Corrections) {
	notes := make(domain.Corrections)
	var all []domain.District
	for _, level := range domain.DistrictLevels {
		resolved := r.Resolve(level, fields[level], scope)
		if len(resolved) == 0 {
			continue
		}
		all = append(all, resolved...)
		notes.Add(string(level)+"_districts", "Parsed district information")
	}
	return all, notes
}

// RemoveText applies text corrections to district names. A district whose
// name contains a correction's target, ignoring case, has its name upper
// cased, the correction's text removed and its key recomputed. Notes are
// keyed by district level.
func RemoveText(districts []domain.District, corrections []domain.TextCorrection) map[domain.DistrictLevel][]string {
	notes := make(map[domain.DistrictLevel][]string)
	for _, c := range corrections {
		target := strings.ToUpper(c.Target)
		if target == "" || c.Text == "" {
			continue
		}
		for i := range districts {
			d := &districts[i]
			name := strings.ToUpper(d.Name)
			if !strings.Contains(name, target) {
				continue
			}
			d.Name = strings.Join(strings.Fields(strings.ReplaceAll(name, strings.ToUpper(c.Text), "")), " ")
			d.Rekey()
			notes[d.Type] = append(notes[d.Type], fmt.Sprintf("Removed '%s' from '%s'", c.Text, d.Name))
		}
	}
	return notes
}

// label picks the canonical label for a field name. When no code clears
// the threshold the field name itself is the label.
func (r *Resolver) label(level domain.DistrictLevel, key string) string {
	best, bestScore := "", -1.0
	for _, code := range Codes[level] {
		if !strings.Contains(key, code.Name) {
			continue
		}
		if score := TokenSortRatio(code.Name, key); score > bestScore {
			best, bestScore = code.Label, score
		}
	}
	if bestScore > float64(r.threshold) {
		return best
	}
	return key
}

// TokenSortRatio is the normalized indel similarity (0-100) of a and b
// after splitting on spaces and underscores, sorting and rejoining their
// words: 100 * (1 - indel / (len(a)+len(b))), where indel counts the
// insertions and deletions turning one into the other.
func TokenSortRatio(a, b string) float64 {
	ra, rb := []rune(sortTokens(a)), []rune(sortTokens(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	indel := total - 2*lcs(ra, rb)
	return (1 - float64(indel)/float64(total)) * 100
}

// lcs returns the length of the longest common subsequence of a and b.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func sortTokens(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	sort.Strings(words)
	return strings.Join(words, " ")
}

// splitCode separates the digits and letters of a district value.
func splitCode(v string) (number, prefix string) {
	var digits, letters strings.Builder
	for _, r := range v {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			letters.WriteRune(r)
		}
	}
	return digits.String(), letters.String()
}

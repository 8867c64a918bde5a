// Package election turns election_<year>_<type>_<attr> fields into vote
// history entries.
package election

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// Attributes recognised as the last segment of an election field.
const (
	AttrMethod = "method"
	AttrParty  = "party"
	AttrDate   = "date"
	AttrDesc   = "desc"
)

const prefix = "election_"

// History is the vote history of one record.
type History struct {
	Elections []domain.Election
	Methods   []domain.VoteMethod
	Votes     []domain.Vote
}

// Parser extracts vote history.
type Parser struct {
	state     string
	parseDate func(string) (time.Time, error)
}

// Option configures a Parser.
type Option func(*Parser)

// WithDateParser sets the parser for election_<year>_<type>_date values.
// Without one, dates are ignored.
func WithDateParser(fn func(string) (time.Time, error)) Option {
	return func(p *Parser) {
		p.parseDate = fn
	}
}

// NewParser creates a parser for elections held in state.
func NewParser(state string, opts ...Option) *Parser {
	p := &Parser{state: strings.ToUpper(state)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type key struct {
	year int
	kind string
}

// Parse groups fields by election and builds one Election per group. A group
// with a method or a party is a vote cast by voterID. Fields that do not
// name a year and type are reported in the returned notes and skipped.
func (p *Parser) Parse(fields []domain.Field, voterID string) (History, []string) {
	groups := make(map[key]map[string]string)
	var notes []string

	for _, f := range fields {
		k, attr, ok := split(f.Name)
		if !ok {
			notes = append(notes, fmt.Sprintf("Skipped election field '%s'", f.Name))
			continue
		}
		if groups[k] == nil {
			groups[k] = make(map[string]string)
		}
		groups[k][attr] = strings.TrimSpace(f.Value)
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].kind < keys[j].kind
	})

	var h History
	methods := make(map[string]bool)
	for _, k := range keys {
		attrs := groups[k]
		e := domain.NewElection(p.state, k.year, k.kind)
		e.Description = attrs[AttrDesc]
		if v := attrs[AttrDate]; v != "" && p.parseDate != nil {
			if d, err := p.parseDate(v); err == nil {
				e.Date = &d
			} else {
				notes = append(notes, fmt.Sprintf("Unparseable date '%s' for %s", v, e.Label()))
			}
		}
		h.Elections = append(h.Elections, e)

		method, party := attrs[AttrMethod], attrs[AttrParty]
		if method == "" && party == "" {
			continue
		}
		vote := domain.Vote{
			VoterID:     voterID,
			ElectionKey: e.ID,
			Election:    e.Label(),
			Party:       party,
		}
		if method != "" {
			m := domain.NewVoteMethod(method)
			vote.MethodKey, vote.Method = m.ID, m.Method
			if !methods[m.ID] {
				methods[m.ID] = true
				h.Methods = append(h.Methods, m)
			}
		}
		h.Votes = append(h.Votes, vote)
	}
	return h, notes
}

// split parses "[election_]<year>_<type>_<attr>". The type may itself
// contain underscores, e.g. "primary_runoff".
func split(name string) (key, string, bool) {
	parts := strings.Split(strings.TrimPrefix(strings.ToLower(name), prefix), "_")
	if len(parts) < 3 {
		return key{}, "", false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1000 || year > 9999 {
		return key{}, "", false
	}
	attr := parts[len(parts)-1]
	switch attr {
	case AttrMethod, AttrParty, AttrDate, AttrDesc:
	default:
		return key{}, "", false
	}
	kind := strings.Join(parts[1:len(parts)-1], "_")
	if kind == "" {
		return key{}, "", false
	}
	return key{year: year, kind: kind}, attr, true
}

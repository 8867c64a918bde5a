package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

// Election is one contest on the jurisdiction's election roster.
type Election struct {
	ID          string     `json:"id"`
	State       string     `json:"state,omitempty"`
	Year        int        `json:"year"`
	Type        string     `json:"election_type"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description,omitempty"`
}

var _ Entity = (*Election)(nil)

// NewElection builds a keyed Election.
func NewElection(state string, year int, electionType string) Election {
	e := Election{State: state, Year: year, Type: strings.ToLower(electionType)}
	e.ID = tupleKey(e.State, strconv.Itoa(e.Year), e.Type)
	return e
}

func (e *Election) Kind() EntityKind { return KindElection }
func (e *Election) Key() string      { return e.ID }

// Label is the short display form, e.g. "2022general".
func (e *Election) Label() string {
	return strconv.Itoa(e.Year) + e.Type
}

// Fill copies a missing date or description.
func (e *Election) Fill(other Entity) bool {
	o, ok := other.(*Election)
	if !ok {
		return false
	}
	changed := false
	if e.Date == nil && o.Date != nil {
		d := *o.Date
		e.Date = &d
		changed = true
	}
	return fillString(&e.Description, o.Description) || changed
}

// VoteMethod is how a ballot was cast, e.g. "EARLY" or "MAIL".
type VoteMethod struct {
	ID     string `json:"id"`
	Method string `json:"vote_method"`
}

var _ Entity = (*VoteMethod)(nil)

// NewVoteMethod builds a keyed VoteMethod. Methods compare case-insensitively.
func NewVoteMethod(method string) VoteMethod {
	m := strings.ToUpper(strings.TrimSpace(method))
	return VoteMethod{ID: keygen.MustStaticKey(m), Method: m}
}

func (m *VoteMethod) Kind() EntityKind { return KindVoteMethod }
func (m *VoteMethod) Key() string      { return m.ID }
func (m *VoteMethod) Fill(Entity) bool { return false }

// Vote is one entry of a voter's history.
type Vote struct {
	VoterID     string `json:"voter_id,omitempty"`
	ElectionKey string `json:"election_key"`
	Election    string `json:"election"`
	MethodKey   string `json:"vote_method_key,omitempty"`
	Method      string `json:"vote_method,omitempty"`
	Party       string `json:"party,omitempty"`
}

// TurnoutScore summarises a voter's participation against a roster.
type TurnoutScore struct {
	Participated int                `json:"participated"`
	Eligible     int                `json:"eligible"`
	Ratio        float64            `json:"ratio"`
	ByType       map[string]float64 `json:"by_type,omitempty"`
}

// RecordVotes pairs a stored record with its vote history.
type RecordVotes struct {
	RecordID string
	Votes    []Vote
}

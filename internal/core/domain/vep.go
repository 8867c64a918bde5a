package domain

import (
	"strconv"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

// VEPMatch holds the candidate keys used to link one person across
// independently sourced files.
type VEPMatch struct {
	ID          string `json:"id"`
	Short       string `json:"short,omitempty"`
	Long        string `json:"long,omitempty"`
	NameDOB     string `json:"name_dob,omitempty"`
	AddrText    string `json:"addr_text,omitempty"`
	AddrKey     string `json:"addr_key,omitempty"`
	FullKey     string `json:"full_key,omitempty"`
	FullKeyHash string `json:"full_key_hash,omitempty"`
	BestKey     string `json:"best_key,omitempty"`
	UsesMailZip bool   `json:"uses_mailzip,omitempty"`

	// RegistrationDate is set (YYYYMMDD) only for fresh registrations.
	RegistrationDate string `json:"registration_date,omitempty"`
}

var _ Entity = (*VEPMatch)(nil)

func (m *VEPMatch) Kind() EntityKind { return KindVEPMatch }
func (m *VEPMatch) Key() string      { return m.ID }

// HasKeys reports whether any matching key is populated.
func (m *VEPMatch) HasKeys() bool {
	return m.Short != "" || m.Long != "" || m.NameDOB != "" || m.AddrText != "" ||
		m.AddrKey != "" || m.FullKey != "" || m.FullKeyHash != "" || m.BestKey != ""
}

// Values returns the populated keys by name.
func (m *VEPMatch) Values() map[string]string {
	out := make(map[string]string, 9)
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("short", m.Short)
	set("long", m.Long)
	set("name_dob", m.NameDOB)
	set("addr_text", m.AddrText)
	set("addr_key", m.AddrKey)
	set("full_key", m.FullKey)
	set("full_key_hash", m.FullKeyHash)
	set("best_key", m.BestKey)
	if m.UsesMailZip {
		out["uses_mailzip"] = strconv.FormatBool(m.UsesMailZip)
	}
	return out
}

// Rekey derives the identity key from the populated keys.
func (m *VEPMatch) Rekey() string {
	rendered, _ := keygen.Render(m.Values())
	m.ID = keygen.MustStaticKey(rendered)
	return m.ID
}

// Fill records a registration date when the pooled match has none.
func (m *VEPMatch) Fill(other Entity) bool {
	o, ok := other.(*VEPMatch)
	if !ok {
		return false
	}
	return fillString(&m.RegistrationDate, o.RegistrationDate)
}

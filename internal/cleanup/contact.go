package cleanup

import (
	"context"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/normalisers/address"
	"github.com/custodia-labs/vepctl/internal/normalisers/phone"
)

// AddressStage standardizes the residence and mailing addresses.
type AddressStage struct {
	resolver *address.Resolver
}

var _ driven.CleanupStage = (*AddressStage)(nil)

// NewAddressStage creates an address stage.
func NewAddressStage() *AddressStage {
	return &AddressStage{resolver: address.NewResolver()}
}

func (s *AddressStage) Name() string { return StageAddress }

// Apply resolves each address type in turn. A mailing address that
// standardizes to the residence address is kept once, flagged as both.
func (s *AddressStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, notes domain.Corrections) (domain.Record, error) {
	var out []domain.Address
	for _, t := range domain.AddressTypes {
		addr, n, err := s.resolver.Resolve(t, src.Addresses[t])
		if err != nil {
			return rec, err
		}
		if addr == nil {
			continue
		}
		notes.Add("address_"+string(t), n...)

		merged := false
		for i := range out {
			if out[i].ID == addr.ID {
				out[i].IsMailing = out[i].IsMailing || addr.IsMailing
				out[i].IsResidence = out[i].IsResidence || addr.IsResidence
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, *addr)
		}
	}
	rec.Addresses = out
	return rec, nil
}

// PhoneStage validates contact phone numbers.
type PhoneStage struct {
	resolver *phone.Resolver
}

var _ driven.CleanupStage = (*PhoneStage)(nil)

// NewPhoneStage creates a phone stage for region.
func NewPhoneStage(region string) *PhoneStage {
	return &PhoneStage{resolver: phone.NewResolver(phone.WithRegion(region))}
}

func (s *PhoneStage) Name() string { return StagePhone }

// Apply never fails: invalid numbers are dropped with a note.
func (s *PhoneStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, notes domain.Corrections) (domain.Record, error) {
	if len(src.Phones) == 0 {
		return rec, nil
	}
	phones, n := s.resolver.Resolve(src.Phones)
	for k, v := range n {
		notes.Add(k, v...)
	}
	rec.Phones = phones
	return rec, nil
}

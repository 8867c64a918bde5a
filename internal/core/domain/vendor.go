package domain

import "github.com/custodia-labs/vepctl/internal/core/keygen"

// VendorName is a data vendor that annotated a record.
type VendorName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var _ Entity = (*VendorName)(nil)

// NewVendorName builds a keyed VendorName.
func NewVendorName(name string) VendorName {
	return VendorName{ID: keygen.MustStaticKey(name), Name: name}
}

func (v *VendorName) Kind() EntityKind { return KindVendorName }
func (v *VendorName) Key() string      { return v.ID }
func (v *VendorName) Fill(Entity) bool { return false }

// VendorTags is one vendor's tag bag for a record. Tag bags are keyed by
// content and linked many-to-many with vendors.
type VendorTags struct {
	ID     string            `json:"id"`
	Vendor string            `json:"vendor"`
	Tags   map[string]string `json:"tags"`
}

var _ Entity = (*VendorTags)(nil)

// NewVendorTags builds a keyed VendorTags.
func NewVendorTags(vendor string, tags map[string]string) VendorTags {
	rendered, _ := keygen.Render(tags)
	return VendorTags{
		ID:     keygen.MustStaticKey(rendered),
		Vendor: vendor,
		Tags:   cloneMap(tags),
	}
}

func (v *VendorTags) Kind() EntityKind { return KindVendorTags }
func (v *VendorTags) Key() string      { return v.ID }

// Fill records the vendor name when the pooled bag has none.
func (v *VendorTags) Fill(other Entity) bool {
	o, ok := other.(*VendorTags)
	if !ok {
		return false
	}
	return fillString(&v.Vendor, o.Vendor)
}

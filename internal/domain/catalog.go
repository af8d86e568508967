package domain

// NotAvailable is written in place of any characteristic the detail lookup did not provide.
const NotAvailable = "N/A"

// DomainSummary is one element of the service-domain listing.
type DomainSummary struct {
	BianID         string `json:"bianId"`
	Name           string `json:"name"`
	RoleDefinition string `json:"roleDefinition"`
}

// DomainDetail holds the characteristics returned by the per-domain lookup.
// A nil field means the lookup succeeded but did not carry that value.
type DomainDetail struct {
	FunctionalPattern   *string
	AssetType           *string
	GenericArtefactType *string
}

// MissingFields lists the characteristic names the detail did not carry.
func (d *DomainDetail) MissingFields() []string {
	if d == nil {
		return []string{"functionalPattern", "assetType", "genericArtefactType"}
	}
	var out []string
	if d.FunctionalPattern == nil {
		out = append(out, "functionalPattern")
	}
	if d.AssetType == nil {
		out = append(out, "assetType")
	}
	if d.GenericArtefactType == nil {
		out = append(out, "genericArtefactType")
	}
	return out
}

// OutputRow is one flattened line of the exported table.
type OutputRow struct {
	BianID            string `json:"bianId"`
	ServiceDomain     string `json:"serviceDomain"`
	Description       string `json:"description"`
	FunctionalPattern string `json:"functionalPattern"`
	AssetType         string `json:"assetType"`
	GenericArtefact   string `json:"genericArtefact"`
}

// TableHeader is the fixed header row of the exported table.
var TableHeader = []string{
	"BIAN ID",
	"Service Domain",
	"Description",
	"Functional Pattern",
	"Asset Type",
	"Generic Artefact",
}

// Cells returns the row values in header order.
func (r OutputRow) Cells() []string {
	return []string{
		r.BianID,
		r.ServiceDomain,
		r.Description,
		r.FunctionalPattern,
		r.AssetType,
		r.GenericArtefact,
	}
}

// AssembleRow merges a summary with its (possibly absent) detail.
func AssembleRow(s DomainSummary, d *DomainDetail) OutputRow {
	row := OutputRow{
		BianID:            s.BianID,
		ServiceDomain:     s.Name,
		Description:       s.RoleDefinition,
		FunctionalPattern: NotAvailable,
		AssetType:         NotAvailable,
		GenericArtefact:   NotAvailable,
	}
	if d == nil {
		return row
	}
	row.FunctionalPattern = valueOr(d.FunctionalPattern)
	row.AssetType = valueOr(d.AssetType)
	row.GenericArtefact = valueOr(d.GenericArtefactType)
	return row
}

func valueOr(p *string) string {
	if p == nil {
		return NotAvailable
	}
	return *p
}

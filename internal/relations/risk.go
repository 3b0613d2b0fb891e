package relations

// RiskTier buckets how widely an entity is referenced.
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// Tier thresholds on the combined inbound reference count.
const (
	mediumThreshold = 3
	highThreshold   = 10
)

// RiskReport quantifies the blast radius of changing one entity.
type RiskReport struct {
	File      string   `json:"file"`
	Name      string   `json:"name"`
	Importers int      `json:"importers"`
	Calls     int      `json:"calls"`
	ReExports int      `json:"reExports"`
	Total     int      `json:"total"`
	Tier      RiskTier `json:"tier"`
}

// Risk combines the importer, call, and re-export counts for an entity
// declared in file under the given bare name.
func (ix *Index) Risk(file, name string) RiskReport {
	r := RiskReport{
		File:      file,
		Name:      name,
		Importers: len(ix.ImportersOf(file)),
		Calls:     len(ix.CallsTo(name)),
		ReExports: len(ix.ReExportersOf(file)),
	}
	r.Total = r.Importers + r.Calls + r.ReExports
	r.Tier = tierOf(r.Total)
	return r
}

func tierOf(total int) RiskTier {
	switch {
	case total >= highThreshold:
		return RiskHigh
	case total >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

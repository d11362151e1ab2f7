package checks

// Verdict is the structured result of a single check.
// Each check has its own JSON shape; no common schema is imposed.
type Verdict interface {
	Passed() bool
	Explanation() string
}

// StructureVerdict is returned by the package structure check.
type StructureVerdict struct {
	IsValid bool   `json:"is_valid" yaml:"is_valid"`
	Reason  string `json:"reason" yaml:"reason"`
}

func (v StructureVerdict) Passed() bool        { return v.IsValid }
func (v StructureVerdict) Explanation() string { return v.Reason }

// ComplianceVerdict is returned by the security compliance check.
type ComplianceVerdict struct {
	IsCompliant bool   `json:"is_compliant" yaml:"is_compliant"`
	Reason      string `json:"reason" yaml:"reason"`
}

func (v ComplianceVerdict) Passed() bool        { return v.IsCompliant }
func (v ComplianceVerdict) Explanation() string { return v.Reason }

// ResourceVerdict is returned by the resource requirements check.
type ResourceVerdict struct {
	IsWithinLimits bool   `json:"is_within_limits" yaml:"is_within_limits"`
	Reason         string `json:"reason" yaml:"reason"`
}

func (v ResourceVerdict) Passed() bool        { return v.IsWithinLimits }
func (v ResourceVerdict) Explanation() string { return v.Reason }

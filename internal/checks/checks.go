// Package checks provides the fixed registry of VNF package validation checks.
package checks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ArgFileName is the only argument accepted by every check.
const ArgFileName = "file_name"

// Argument errors returned by Invoke.
var (
	ErrMissingArgument    = errors.New("missing required argument")
	ErrUnexpectedArgument = errors.New("unexpected argument")
	ErrArgumentType       = errors.New("argument has wrong type")
)

// Check identifies one of the registered validation checks.
type Check int

const (
	PackageStructure Check = iota
	SecurityCompliance
	ResourceRequirements
)

// Tool names exposed to the model.
const (
	NamePackageStructure     = "check_vnf_package_structure"
	NameSecurityCompliance   = "check_security_compliance"
	NameResourceRequirements = "check_resource_requirements"
)

// packageSuffix is the only archive extension accepted by the structure check.
const packageSuffix = ".zip"

// minNameSegments is vendor_name_version.
const minNameSegments = 3

// trustedVendors is compared against the lowercased vendor segment.
var trustedVendors = map[string]bool{
	"cisco":    true,
	"juniper":  true,
	"paloalto": true,
}

// All returns the registered checks in registry order.
func All() []Check {
	return []Check{PackageStructure, SecurityCompliance, ResourceRequirements}
}

// Lookup maps a tool name to its check.
func Lookup(name string) (Check, bool) {
	switch name {
	case NamePackageStructure:
		return PackageStructure, true
	case NameSecurityCompliance:
		return SecurityCompliance, true
	case NameResourceRequirements:
		return ResourceRequirements, true
	}
	return 0, false
}

// Name returns the tool name.
func (c Check) Name() string {
	switch c {
	case PackageStructure:
		return NamePackageStructure
	case SecurityCompliance:
		return NameSecurityCompliance
	case ResourceRequirements:
		return NameResourceRequirements
	}
	return fmt.Sprintf("check(%d)", int(c))
}

func (c Check) String() string { return c.Name() }

// Description returns the tool description shown to the model.
func (c Check) Description() string {
	switch c {
	case PackageStructure:
		return "Tool 1: Checks VNF package name and extension (.zip)."
	case SecurityCompliance:
		return "Tool 2: Simulates a security check for trusted vendors."
	case ResourceRequirements:
		return "Tool 3: Simulates checking resource limits from the package."
	}
	return c.Name()
}

// Parameters returns the JSON schema for the check arguments.
func (c Check) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			ArgFileName: map[string]interface{}{
				"type":        "string",
				"description": "Name of the VNF package file to validate (e.g. vendor_product_version.zip).",
			},
		},
		"required": []string{ArgFileName},
	}
}

// Run executes the check against a package file name.
func (c Check) Run(fileName string) Verdict {
	switch c {
	case PackageStructure:
		return checkPackageStructure(fileName)
	case SecurityCompliance:
		return checkSecurityCompliance(fileName)
	default:
		return checkResourceRequirements(fileName)
	}
}

// Invoke validates raw call arguments and runs the check.
// The argument mapping must hold exactly one string value under file_name.
func (c Check) Invoke(args map[string]interface{}) (Verdict, error) {
	var extra []string
	for k := range args {
		if k != ArgFileName {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, fmt.Errorf("%s() got %w: %s", c.Name(), ErrUnexpectedArgument, strings.Join(extra, ", "))
	}

	raw, ok := args[ArgFileName]
	if !ok {
		return nil, fmt.Errorf("%s() %w: '%s'", c.Name(), ErrMissingArgument, ArgFileName)
	}
	fileName, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s() %w: '%s' must be a string, got %T", c.Name(), ErrArgumentType, ArgFileName, raw)
	}
	return c.Run(fileName), nil
}

func checkPackageStructure(fileName string) Verdict {
	if !strings.HasSuffix(fileName, packageSuffix) {
		return StructureVerdict{IsValid: false, Reason: "Invalid file extension. Expected .zip."}
	}
	stem := strings.TrimSuffix(fileName, packageSuffix)
	if len(strings.Split(stem, "_")) < minNameSegments {
		return StructureVerdict{IsValid: false, Reason: "Naming convention violation. Expected: vendor_name_version.zip."}
	}
	return StructureVerdict{IsValid: true, Reason: "Package structure and naming are valid."}
}

func checkSecurityCompliance(fileName string) Verdict {
	vendor, _, _ := strings.Cut(fileName, "_")
	if trustedVendors[strings.ToLower(vendor)] {
		return ComplianceVerdict{IsCompliant: true, Reason: fmt.Sprintf("Vendor '%s' is trusted.", vendor)}
	}
	return ComplianceVerdict{IsCompliant: false, Reason: fmt.Sprintf("Vendor '%s' is not trusted.", vendor)}
}

func checkResourceRequirements(fileName string) Verdict {
	if strings.Contains(strings.ToLower(fileName), "highcpu") {
		return ResourceVerdict{IsWithinLimits: false, Reason: "VNF requires high CPU (32 cores), exceeding standard limit."}
	}
	return ResourceVerdict{IsWithinLimits: true, Reason: "Resource requirements are within standard limits."}
}

package importer

import (
	"strconv"
	"strings"
)

// Allowed value sets for constrained columns. Unknown or missing values are
// repaired to the default instead of failing the row, so one bad cell never
// sinks an import.
var (
	AllowedCompanySource  = []string{"etc", "Purchased", "Marketing", "Sales", "Linkedin"}
	DefaultCompanySource  = "etc"
	AllowedClassification = []string{
		"Training-Institute",
		"HigherED",
		"Technology",
		"Multinationals",
		"Corporate (> 1000)",
		"Enterprise (200-1000)",
		"SME (50-200)",
		"mSME (< 50)",
	}
	DefaultClassification = "Technology"

	AllowedContactPersona = []string{
		"Advanced Tech",
		"Advanced Non-Tech Career",
		"Mid Tech Career",
		"Mid Non-Tech Career",
		"Early Tech Career",
		"Early Non-Tech Career",
		"Fresh Graduates",
		"Average Students",
		"Good Students",
	}
	DefaultContactPersona = "Average Students"

	AllowedContactCompanyClassification = []string{"Technology", "MNC", "Corporate", "SME"}
	DefaultContactCompanyClassification = "Technology"

	// TODO: "etc" is not in the allowed set for contacts; align the default
	// with the contact_source check constraint once the data team confirms
	// the canonical casing.
	AllowedContactSource = []string{"Etc", "Purchased", "Marketing", "Sales", "Linkedin", "Apollo"}
	DefaultContactSource = "etc"
)

// EnforceCompanyConstraints repairs company payloads in place: enum columns
// snap to their defaults and business_unit_id must reference a known unit.
// Enforcement is pure and column-order independent.
func EnforceCompanyConstraints(p *Payload, validBusinessUnits map[int]struct{}) {
	enforceEnum(p, "company_source", AllowedCompanySource, DefaultCompanySource)
	enforceEnum(p, "company_classification", AllowedClassification, DefaultClassification)
	enforceBusinessUnit(p, validBusinessUnits)
}

// EnforceContactConstraints is the contact-side twin of
// EnforceCompanyConstraints.
func EnforceContactConstraints(p *Payload, validBusinessUnits map[int]struct{}) {
	enforceEnum(p, "contact_persona", AllowedContactPersona, DefaultContactPersona)
	enforceEnum(p, "company_classification", AllowedContactCompanyClassification, DefaultContactCompanyClassification)
	enforceEnum(p, "contact_source", AllowedContactSource, DefaultContactSource)
	enforceBusinessUnit(p, validBusinessUnits)
}

func enforceEnum(p *Payload, col string, allowed []string, def string) {
	v, ok := p.Get(col)
	if !ok {
		return
	}
	if s, held := stringValue(v); held {
		for _, candidate := range allowed {
			if s == candidate {
				return
			}
		}
	}
	fallback := def
	p.Set(col, &fallback)
}

func enforceBusinessUnit(p *Payload, valid map[int]struct{}) {
	v, ok := p.Get("business_unit_id")
	if !ok {
		return
	}
	p.Set("business_unit_id", sanitizeBusinessUnitID(v, valid))
}

// sanitizeBusinessUnitID coerces a raw cell to an integer business unit id.
// Non-numeric values and ids that do not exist in bu_ref become nil so the
// insert cannot trip a foreign key.
func sanitizeBusinessUnitID(v any, valid map[int]struct{}) *int {
	s, held := stringValue(v)
	if !held {
		if id, ok := v.(*int); ok && id != nil {
			if _, known := valid[*id]; known {
				return id
			}
		}
		return nil
	}
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	if _, known := valid[id]; !known {
		return nil
	}
	return &id
}

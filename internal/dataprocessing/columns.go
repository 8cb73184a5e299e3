package dataprocessing

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Semantic column keys recognized by the resolver
const (
	KeyInstaller           = "installer"
	KeyTechnician          = "technician"
	KeyAppointmentDate     = "appointmentDate"
	KeyAppointmentSetOn    = "appointmentSetOn"
	KeyLastAssignedOn      = "lastAssignedOn"
	KeyProductDeliveryDate = "productDeliveryDate"
	KeyAppointmentRange    = "appointmentRange"
	KeyCompletedOn         = "completedOn"
	KeyService             = "service"
	KeyProduct             = "product"
	KeyPostalCode          = "postalCode"
	KeyWorkOrder           = "workOrder"
	KeyLatitude            = "latitude"
	KeyLongitude           = "longitude"
)

// EssentialKeys are the semantic columns a dataset must resolve before any
// aggregation may run
var EssentialKeys = []string{
	KeyInstaller,
	KeyTechnician,
	KeyAppointmentDate,
	KeyAppointmentSetOn,
	KeyLastAssignedOn,
	KeyProductDeliveryDate,
	KeyAppointmentRange,
	KeyCompletedOn,
}

// SynonymTable maps a semantic key to its ordered header spelling variants
type SynonymTable map[string][]string

// DefaultSynonyms returns the stock synonym table covering the header
// spellings observed in exported work-order sheets (Dynamics exports,
// hand-edited Greek sheets, and plain English headers).
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		KeyInstaller:           {"dot_installeridname", "installer", "installername", "dot_installer"},
		KeyTechnician:          {"technician"},
		KeyAppointmentDate:     {"appointment date"},
		KeyAppointmentSetOn:    {"appointment set on"},
		KeyLastAssignedOn:      {"last assigned on"},
		KeyProductDeliveryDate: {"product delivery date"},
		KeyAppointmentRange:    {"appointment range"},
		KeyCompletedOn:         {"msdyn_completedon", "completed on", "msdyn completedon"},
		KeyService:             {"service"},
		KeyProduct:             {"product"},
		KeyPostalCode:          {"postal code", "zip", "τκ"},
		KeyWorkOrder:           {"work order"},
		KeyLatitude:            {"latitude", "lat", "y", "γεωγραφικό πλάτος"},
		KeyLongitude:           {"longitude", "lon", "lng", "x", "γεωγραφικό μήκος"},
	}
}

// ColumnMap maps a semantic key to the actual header found in a dataset.
// An entry exists only when a header was matched.
type ColumnMap map[string]string

// EssentialCheck reports whether a column map covers every essential key
type EssentialCheck struct {
	OK      bool     `json:"ok"`
	Missing []string `json:"missing"`
}

var (
	headerSeparators = regexp.MustCompile(`[_\s]+`)
	accentFolder     = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeHeader canonicalizes a header string for matching: trim,
// lowercase, fold combining accents, collapse whitespace/underscore runs
// to a single space.
func NormalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	if folded, _, err := transform.String(accentFolder, s); err == nil {
		s = folded
	}
	return headerSeparators.ReplaceAllString(s, " ")
}

// BuildColumnMap resolves raw sheet headers against a synonym table. For
// each semantic key, synonyms are tried in order: exact normalized match
// first, then a word-boundary substring match; ties break by header order.
func BuildColumnMap(headers []string, syns SynonymTable) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	m := make(ColumnMap)
	for key, variants := range syns {
		idx := -1

		for _, v := range variants {
			target := NormalizeHeader(v)
			for i, h := range normalized {
				if h == target {
					idx = i
					break
				}
			}
			if idx != -1 {
				break
			}
		}

		// Word-boundary fallback keeps "installer" from matching
		// inside "installerid".
		if idx == -1 {
		fallback:
			for i, h := range normalized {
				for _, v := range variants {
					re, err := regexp.Compile(`\b` + regexp.QuoteMeta(NormalizeHeader(v)) + `\b`)
					if err != nil {
						continue
					}
					if re.MatchString(h) {
						idx = i
						break fallback
					}
				}
			}
		}

		if idx != -1 {
			m[key] = headers[idx]
		}
	}
	return m
}

// CheckEssential enumerates the essential keys and reports any that the
// column map failed to resolve. Callers must not aggregate when OK is false.
func CheckEssential(m ColumnMap) EssentialCheck {
	missing := make([]string, 0)
	for _, key := range EssentialKeys {
		if _, ok := m[key]; !ok {
			missing = append(missing, key)
		}
	}
	return EssentialCheck{OK: len(missing) == 0, Missing: missing}
}

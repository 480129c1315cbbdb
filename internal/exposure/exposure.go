// Package exposure tags each measure's economic scope from its exposure-type
// and description text. Classification is deterministic: the first matching
// rule wins.
package exposure

import (
	"strings"

	"policyhub/internal/model"
)

var (
	commercialMarkers  = []string{"commercial", "cre"}
	residentialMarkers = []string{"residential", "rre", "housing"}
	broadRREMarkers    = []string{"residential", "rre", "housing", "mortgage", "household"}
)

// Classify tags a record's scope. The exposure-type column alone decides
// General ("all exposures" / "domestic"); the combined text decides the real
// estate classes.
func Classify(exposureType, description string) model.ExposureClass {
	expType := strings.ToLower(exposureType)
	full := expType + " " + strings.ToLower(description)

	if strings.Contains(expType, "all exposures") || strings.Contains(expType, "domestic") {
		return model.ExposureGeneral
	}
	if containsAny(full, commercialMarkers) {
		if containsAny(full, residentialMarkers) {
			return model.ExposureMixed
		}
		return model.ExposureCRE
	}
	if containsAny(full, broadRREMarkers) {
		return model.ExposureRRE
	}
	return model.ExposureOther
}

// SyRBType derives the binary general/sectoral split: anything that is not
// the General tag targets a sector.
func SyRBType(class model.ExposureClass) model.SyRBType {
	if strings.Contains(string(class), "General") {
		return model.SyRBGeneral
	}
	return model.SyRBSectoral
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Package detector classifies text into sensitive-data findings.
package detector

import (
	"github.com/aleister1102/zeroleaks/internal/models"
)

// Detector scans text for sensitive data. Implementations must be safe for
// concurrent use and must not fail on arbitrary input; malformed text
// simply yields no findings.
type Detector interface {
	Scan(text string) []models.Finding
}

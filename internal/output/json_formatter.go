package output

import (
	"encoding/json"

	"github.com/taxcore/assessment-engine/internal/domain"
)

// JSONFormatter serializes the assessment as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(assessment *domain.ComprehensiveAssessment) ([]byte, error) {
	return json.MarshalIndent(assessment, "", "  ")
}

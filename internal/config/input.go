package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taxcore/assessment-engine/internal/domain"
)

// InputParser handles parsing of assessment request files.
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads an assessment request from a YAML file and runs the
// full required-field validation. Missing fields are rejected outright;
// there are no implicit defaults that could change a computed liability.
func (ip *InputParser) LoadFromFile(filename string) (*domain.AssessmentRequest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse unmarshals and validates an assessment request document.
func (ip *InputParser) Parse(data []byte) (*domain.AssessmentRequest, error) {
	var req domain.AssessmentRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("request validation failed: %w", err)
	}
	return &req, nil
}

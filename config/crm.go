package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"forumregistrations/internal/domain"
)

//go:embed crm.yaml
var defaultCRMConfig []byte

// CRMConfig routes outcomes to CRM pipelines and maps sales reps to CRM owners.
type CRMConfig struct {
	DealTypeName string                                                   `yaml:"deal_type"`
	Pipelines    map[domain.EventType]map[domain.Stage]domain.PipelineTarget `yaml:"pipelines"`
	SalesReps    map[string]string                                        `yaml:"sales_reps"`
}

// LoadCRMConfig reads the routing table from path, or the embedded default when path is empty.
func LoadCRMConfig(path string) (*CRMConfig, error) {
	raw := defaultCRMConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read crm config: %w", err)
		}
		raw = b
	}
	return ParseCRMConfig(raw)
}

// ParseCRMConfig decodes and validates a YAML routing table.
func ParseCRMConfig(raw []byte) (*CRMConfig, error) {
	cfg := &CRMConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode crm config: %w", err)
	}
	for eventType, outcomes := range cfg.Pipelines {
		if !eventType.Valid() {
			return nil, fmt.Errorf("crm config: unknown event type %q", eventType)
		}
		for outcome, target := range outcomes {
			if !outcome.Emailable() {
				return nil, fmt.Errorf("crm config: %s: %q is not a deal outcome", eventType, outcome)
			}
			if target.PipelineID == "" || target.StageID == "" {
				return nil, fmt.Errorf("crm config: %s/%s: pipeline and stage are required", eventType, outcome)
			}
		}
	}
	if cfg.DealTypeName == "" {
		cfg.DealTypeName = "Forum Attendee"
	}
	return cfg, nil
}

// Pipeline implements domain.DealRouting.
func (c *CRMConfig) Pipeline(eventType domain.EventType, outcome domain.Stage) (domain.PipelineTarget, bool) {
	target, ok := c.Pipelines[eventType][outcome]
	return target, ok
}

// OwnerID implements domain.DealRouting.
func (c *CRMConfig) OwnerID(salesRep string) (string, bool) {
	id, ok := c.SalesReps[salesRep]
	return id, ok
}

// DealType implements domain.DealRouting.
func (c *CRMConfig) DealType() string { return c.DealTypeName }

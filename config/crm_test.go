package config

import (
	"testing"

	"forumregistrations/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCRMConfig_Default(t *testing.T) {
	cfg, err := LoadCRMConfig("")
	require.NoError(t, err)

	target, ok := cfg.Pipeline(domain.EventTypeForum, domain.StageDenied)
	require.True(t, ok)
	assert.Equal(t, domain.PipelineTarget{PipelineID: "90169477", StageID: "166990871"}, target)

	_, ok = cfg.Pipeline(domain.EventTypeDinner, domain.StageApproved)
	assert.False(t, ok)

	owner, ok := cfg.OwnerID("Trevor")
	require.True(t, ok)
	assert.Equal(t, "680535117", owner)
	assert.Len(t, cfg.SalesReps, 16)
	assert.Equal(t, "Forum Attendee", cfg.DealType())
}

func TestParseCRMConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown event type", "pipelines:\n  gala:\n    approved: {pipeline: p, stage: s}\n"},
		{"non-deal outcome", "pipelines:\n  forum:\n    in_queue: {pipeline: p, stage: s}\n"},
		{"missing stage", "pipelines:\n  dinner:\n    approved: {pipeline: p}\n"},
		{"malformed yaml", "pipelines: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCRMConfig([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

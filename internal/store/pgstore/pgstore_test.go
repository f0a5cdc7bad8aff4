package pgstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"

	"luxera/internal/project"
)

func TestDefaultConfig_SetsPoolDefaults(t *testing.T) {
	cfg := DefaultConfig("postgres://example")
	assert.Equal(t, 100, cfg.MaxOpenConns)
	assert.Equal(t, 25, cfg.MaxIdleConns)
	assert.Equal(t, logger.Warn, cfg.LogLevel)
}

func TestOpen_RejectsEmptyDSN(t *testing.T) {
	_, err := Open(Config{}, nil)
	assert.Error(t, err)
}

func TestJobRow_IDIsProjectScoped(t *testing.T) {
	ref := project.JobResultRef{JobID: "j1", JobHash: "abc123", ResultDir: "/results/abc123"}
	row := JobRow{ID: "demo/" + ref.JobHash, ProjectID: "demo", JobID: ref.JobID, JobHash: ref.JobHash}
	assert.Equal(t, "demo/abc123", row.ID)
	assert.Equal(t, "demo", row.ProjectID)
}

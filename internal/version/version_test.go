package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version, GitCommit = "v1.2.0", "unknown"
	assert.Equal(t, "v1.2.0", String())

	GitCommit, BuildTime = "0123456789abcdef", "2025-06-01T00:00:00Z"
	assert.Equal(t, "v1.2.0 (0123456, built 2025-06-01T00:00:00Z)", String())
}

func TestDefaults(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, BuildTime)
	assert.NotEmpty(t, GitCommit)
}

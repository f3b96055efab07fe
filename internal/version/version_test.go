package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := []string{Version, GitSHA, BuildTime}
	t.Cleanup(func() { Version, GitSHA, BuildTime = orig[0], orig[1], orig[2] })

	assert.Equal(t, "submovements dev (git unknown, built unknown)", String("submovements"))

	Version, GitSHA, BuildTime = "v0.3.1", "1a2b3c4", "2026-03-02T09:00:00Z"
	assert.Equal(t, "viewer v0.3.1 (git 1a2b3c4, built 2026-03-02T09:00:00Z)", String("viewer"))
}

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionPrefersLdflags(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })
	version = "v1.4.0"

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "studydeck v1.4.0\n", out.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Netw…", truncate("Networking", 5))
	assert.Equal(t, "héll…", truncate("héllo wörld", 5))
}

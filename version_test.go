package matching_test

import (
	"testing"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	defer func() { matching.GitCommit = "" }()

	matching.GitCommit = ""
	assert.Equal(t, "v0.1.0-dev", matching.Version())

	matching.GitCommit = "12345678"
	assert.Equal(t, "v0.1.0-dev 12345678", matching.Version())
}

package matching_test

import (
	"encoding/json"
	"testing"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInit struct {
	name  string
	calls *[]string
	err   error
}

func (r recordingInit) FromGenesis(opts matching.Options, kv matching.KVStore) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestChainInitializers(t *testing.T) {
	var calls []string
	chain := matching.ChainInitializers(
		recordingInit{name: "a", calls: &calls},
		recordingInit{name: "b", calls: &calls, err: errors.ErrState},
		recordingInit{name: "c", calls: &calls},
	)
	err := chain.FromGenesis(matching.Options{}, nil)
	require.True(t, errors.ErrState.Is(err))
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestReadOptions(t *testing.T) {
	opts := matching.Options{
		"num": json.RawMessage(`17`),
		"bad": json.RawMessage(`"seventeen"`),
	}
	var n int
	require.NoError(t, opts.ReadOptions("num", &n))
	assert.Equal(t, 17, n)

	var missing int
	require.NoError(t, opts.ReadOptions("missing", &missing))
	assert.Equal(t, 0, missing)

	assert.Error(t, opts.ReadOptions("bad", &n))
}

func TestTag(t *testing.T) {
	tag := matching.Tag("action", "donate")
	assert.Equal(t, []byte("action"), tag.Key)
	assert.Equal(t, []byte("donate"), tag.Value)
}

package lib

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1.5s"`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`1000`), &d))
	assert.Equal(t, time.Microsecond, d.Duration)

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))

	b, err := json.Marshal(DurationFrom(50 * time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, `"50ms"`, string(b))
}

func TestDurationTOML(t *testing.T) {
	var cfg struct {
		Timeout Duration `toml:"timeout"`
	}
	_, err := toml.Decode(`timeout = "3s"`, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Timeout.Duration)
}

func TestSet(t *testing.T) {
	s := NewSet[string]()
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))

	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
}

func TestIDs(t *testing.T) {
	ids := NewIDs("n")
	assert.Equal(t, "n1", ids.Get("x"))
	assert.Equal(t, "n2", ids.Get("y"))
	assert.Equal(t, "n1", ids.Get("x"))
}

func TestParseSLogLevel(t *testing.T) {
	level, err := ParseSLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseSLogLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseSLogLevel("loud")
	assert.Error(t, err)
}

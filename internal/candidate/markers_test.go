package candidate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMarkers_OverridesOnlyGivenLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.yaml")
	yml := `
trigger:
  - "▶"
  - "go to"
move_or_skip:
  - "go to"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	m, err := LoadMarkers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"▶", "go to"}, m.Trigger)
	assert.Equal(t, []string{"go to"}, m.MoveOrSkip)
	assert.Equal(t, DefaultMarkers().DisplayNoise, m.DisplayNoise)

	s, err := NewScanner(m)
	require.NoError(t, err)

	cands := s.Scan("A1. Smoker?\n1 Yes ▶ A4\nNo: GOTO next section\nMaybe: GO  TO end", ScanOptions{})
	require.Len(t, cands, 3)
	assert.Equal(t, []string{"1", "A4"}, cands[0].Targets)
	assert.Empty(t, cands[1].Targets)
	assert.Empty(t, cands[2].Targets)
	for _, c := range cands {
		assert.Equal(t, "A1", c.StartCol)
	}
}

func TestLoadMarkers_Errors(t *testing.T) {
	_, err := LoadMarkers(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read markers")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trigger: [unclosed"), 0o644))
	_, err = LoadMarkers(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse markers")
}

func TestNewScanner_EmptyList(t *testing.T) {
	m := DefaultMarkers()
	m.Trigger = []string{"  "}
	_, err := NewScanner(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"trigger" is empty`)
}

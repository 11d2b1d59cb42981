// ABOUTME: Tests for calculator input decoding
// ABOUTME: Covers YAML, JSON, stdin and strict field checking

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

const deratingYAML = `# kitchen radial
base_rating_amps: 32
cable_type: pvc-70
installation_method: method-c
ambient_temp_c: 30
number_of_cables: 1
thermal_insulation: none
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadInput_YAML(t *testing.T) {
	var input models.CableDeratingInput
	err := readInput(writeTemp(t, "in.yaml", deratingYAML), nil, &input)

	require.NoError(t, err)
	assert.Equal(t, 32.0, input.BaseRatingAmps)
	assert.Equal(t, models.CableTypePVC70, input.CableType)
	assert.Equal(t, models.MethodC, input.InstallationMethod)
	assert.Nil(t, input.DesignCurrent)
}

func TestReadInput_JSON(t *testing.T) {
	body := `{"base_rating_amps": 27, "cable_type": "xlpe-90", "installation_method": "method-e",
		"ambient_temp_c": 40, "number_of_cables": 3, "thermal_insulation": "none", "design_current": 20}`

	var input models.CableDeratingInput
	err := readInput(writeTemp(t, "in.json", body), nil, &input)

	require.NoError(t, err)
	assert.Equal(t, 3, input.NumberOfCables)
	require.NotNil(t, input.DesignCurrent)
	assert.Equal(t, 20.0, *input.DesignCurrent)
}

func TestReadInput_Stdin(t *testing.T) {
	var input models.CableDeratingInput
	err := readInput("-", strings.NewReader(deratingYAML), &input)

	require.NoError(t, err)
	assert.Equal(t, models.InsulationNone, input.ThermalInsulation)
}

func TestReadInput_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{"no path", func(*testing.T) string { return "" }, "input file is required"},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }, "read input"},
		{"empty file", func(t *testing.T) string { return writeTemp(t, "e.yaml", "") }, "input is empty"},
		{"list document", func(t *testing.T) string { return writeTemp(t, "l.yaml", "- 1\n- 2\n") }, "must be a mapping"},
		{"bad yaml", func(t *testing.T) string { return writeTemp(t, "b.yaml", "base_rating_amps: [32\n") }, "parse input"},
		{"unknown field", func(t *testing.T) string { return writeTemp(t, "u.yaml", deratingYAML+"colour: grey\n") }, "unknown field"},
		{"wrong type", func(t *testing.T) string { return writeTemp(t, "w.yaml", "base_rating_amps: lots\n") }, "decode input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input models.CableDeratingInput
			err := readInput(tt.path(t), nil, &input)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

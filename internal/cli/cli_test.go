package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/whatif-engine/internal/engine"
	"github.com/danielpatrickdp/whatif-engine/internal/logging"
	"github.com/danielpatrickdp/whatif-engine/internal/orchestrator"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/danielpatrickdp/whatif-engine/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #region helpers

func execute(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"--log-level", "error"}, args...), &out)
	return out.Bytes(), err
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func withSeed(t *testing.T) {
	t.Helper()
	t.Setenv("WHATIF_SEED", "11")
}

// #endregion helpers

// #region generate-tests

func TestPromptsCommand(t *testing.T) {
	withSeed(t)
	out, err := execute(t, "prompts",
		"--genre", "mystery", "--character", "Mara", "--traits", "curious,stubborn",
		"--place", "Blackwood", "--mode", "logical", "--count", "2")
	require.NoError(t, err)

	res := decode[orchestrator.PromptResult](t, out)
	assert.LessOrEqual(t, len(res.Prompts), 2)
	assert.Equal(t, orchestrator.Split{Logical: 2}, res.Requested)
}

func TestPromptsCommand_ParamsFile(t *testing.T) {
	withSeed(t)
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
character:
  name: Ilya
  traits: [brave]
genre: fantasy
generation_mode: creative
`), 0o600))

	out, err := execute(t, "prompts", "--params", path, "--count", "3")
	require.NoError(t, err)
	res := decode[orchestrator.PromptResult](t, out)
	assert.Equal(t, orchestrator.Split{Creative: 3}, res.Requested)
}

func TestBranchesCommand(t *testing.T) {
	withSeed(t)
	out, err := execute(t, "branches", "--density", "low",
		"--content", "Ilya crossed the river and lost the map.")
	require.NoError(t, err)

	res := decode[orchestrator.BranchResult](t, out)
	assert.Equal(t, orchestrator.Split{Logical: 2}, res.Requested)
	assert.LessOrEqual(t, len(res.Branches), 2)
}

func TestHealthCommand(t *testing.T) {
	out, err := execute(t, "health")
	require.NoError(t, err)
	h := decode[engine.Health](t, out)
	assert.Equal(t, "healthy", string(h.Generation.Status))
	assert.Empty(t, h.Backend)
}

func TestParamFlagsLayerOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("genre: horror\nsetting:\n  place: the lighthouse\n"), 0o600))

	pf := paramFlags{file: path, genre: "comedy", era: "1890s", banned: []string{"gore"}}
	p, err := pf.build()
	require.NoError(t, err)
	assert.Equal(t, "comedy", p.Genre)
	assert.Equal(t, &params.Setting{Place: "the lighthouse", Era: "1890s"}, p.Setting)
	assert.Equal(t, []string{"gore"}, p.BannedContent())
	assert.Nil(t, p.Character)
}

// #endregion generate-tests

// #region template-tests

func TestTemplatesListAndStats(t *testing.T) {
	out, err := execute(t, "templates", "list")
	require.NoError(t, err)
	list := decode[[]templates.Template](t, out)
	assert.Len(t, list, len(templates.Defaults()))

	out, err = execute(t, "templates", "stats")
	require.NoError(t, err)
	stats := decode[templates.Stats](t, out)
	assert.Equal(t, len(templates.Defaults()), stats.Active)
}

func TestTemplatesFeedbackPersists(t *testing.T) {
	t.Setenv("WHATIF_DB", filepath.Join(t.TempDir(), "whatif.db"))

	_, err := execute(t, "templates", "feedback", "tpl-place-memory", "--accepted", "--rating", "4")
	require.NoError(t, err)

	out, err := execute(t, "templates", "list", "--category", "slot-permutation")
	require.NoError(t, err)
	list := decode[[]templates.Template](t, out)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].UsageCount)

	out, err = execute(t, "templates", "history", "tpl-place-memory")
	require.NoError(t, err)
	history := decode[[]logging.FeedbackEntry](t, out)
	require.Len(t, history, 1)
	assert.Equal(t, 4, history[0].Rating)
	assert.True(t, history[0].Accepted)
}

func TestTemplatesFeedback_Errors(t *testing.T) {
	_, err := execute(t, "templates", "feedback", "nope", "--accepted")
	assert.ErrorIs(t, err, templates.ErrNotFound)

	_, err = execute(t, "templates", "feedback", "tpl-place-memory", "--rating", "9")
	assert.Error(t, err)
}

func TestTemplatesAdd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
id: tpl-storm
name: Storm
category: causal-branch
text: "What if the storm kept {character} in {place}?"
`), 0o600))

	out, err := execute(t, "templates", "add", "--file", path)
	require.NoError(t, err)
	tpl := decode[templates.Template](t, out)
	assert.Equal(t, "tpl-storm", tpl.ID)
	assert.Equal(t, []string{"character", "place"}, tpl.Required)
	assert.True(t, tpl.Active)
}

func TestTemplatesPrune(t *testing.T) {
	out, err := execute(t, "templates", "prune")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"deactivated": 0}, decode[map[string]int](t, out))
}

func TestUnknownConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "health")
	assert.Error(t, err)
}

// #endregion template-tests

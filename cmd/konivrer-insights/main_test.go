package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// fixtureHistory has alice lose 9 of 10 against Control and win 8 of 10
// against Midrange.
func fixtureHistory() *models.History {
	h := &models.History{
		Players: []models.Player{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}},
		Decks: []models.Deck{
			{ID: "d-alice", OwnerID: "alice", Cards: []string{"a", "b", "c"}},
			{ID: "d-bob", OwnerID: "bob", Cards: []string{"x", "y"}},
		},
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		archetype, aliceWins := "Control", i == 0
		if i >= 10 {
			archetype, aliceWins = "Midrange", i < 18
		}
		result := models.ResultSideB
		if aliceWins {
			result = models.ResultSideA
		}
		h.Matches = append(h.Matches, models.Match{
			ID:       fmt.Sprintf("m-%02d", i),
			SideA:    models.Participant{PlayerID: "alice", DeckID: "d-alice", Archetype: "Aggro"},
			SideB:    models.Participant{PlayerID: "bob", DeckID: "d-bob", Archetype: archetype},
			Result:   result,
			PlayedAt: start.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return h
}

type cliEnv struct {
	dir     string
	history string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()

	data, err := json.Marshal(fixtureHistory())
	require.NoError(t, err)
	history := filepath.Join(dir, "history.json")
	require.NoError(t, os.WriteFile(history, data, 0o644))

	return &cliEnv{dir: dir, history: history}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	base := []string{
		"--config", filepath.Join(e.dir, "config.toml"),
		"--db", filepath.Join(e.dir, "history.db"),
		"--log-level", "error",
	}

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(base, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportAndStatus(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "import", env.history, "--backup")
	require.NoError(t, err)

	var imported importOutput
	require.NoError(t, json.Unmarshal([]byte(out), &imported))
	assert.Equal(t, 20, imported.Imported.Matches)
	assert.Equal(t, 2, imported.Stored.Players)
	assert.NotEmpty(t, imported.Backup)

	out, err = env.run(t, "status")
	require.NoError(t, err)

	var status statusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, uint(1), status.SchemaVersion)
	assert.Equal(t, 20, status.Counts.Matches)
	assert.Equal(t, 2, status.Counts.Decks)
	assert.Equal(t, 1, status.Backups)
}

func TestWeakness_FromDatabase(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "import", env.history)
	require.NoError(t, err)

	out, err := env.run(t, "weakness", "--player", "alice")
	require.NoError(t, err)

	var profile analytics.WeaknessProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, "Alice", profile.PlayerName)
	assert.Equal(t, 20, profile.MatchCount)
	require.Len(t, profile.Weaknesses, 1)
	assert.Equal(t, "Control", profile.Weaknesses[0].Archetype)
	require.Len(t, profile.Strengths, 1)
	assert.Equal(t, "Midrange", profile.Strengths[0].Archetype)
}

func TestRecommend_FromHistoryFile(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "--history", env.history, "recommend", "--player", "alice")
	require.NoError(t, err)

	var recs []analytics.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &recs))

	var matchup *analytics.Recommendation
	for i := range recs {
		if recs[i].Type == analytics.RecommendMatchup {
			matchup = &recs[i]
		}
	}
	require.NotNil(t, matchup)
	assert.Equal(t, "Control", matchup.Archetype)

	out, err = env.run(t, "--history", env.history, "recommend", "--player", "nobody")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestAnalyze_YAML(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "--history", env.history, "analyze", "--metrics", "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "run_id")
	assert.Contains(t, doc, "weaknesses")
	assert.Contains(t, doc, "metrics")

	runID, ok := doc["run_id"].(string)
	require.True(t, ok, "run IDs render as text")
	assert.Len(t, runID, 36)
}

func TestVariance_PlayerFilter(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "--history", env.history, "variance", "--player", "bob")
	require.NoError(t, err)

	var profiles []analytics.VarianceProfile
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "bob", profiles[0].PlayerID)
}

func TestSuggest_UnknownDeck(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "--history", env.history, "suggest", "--deck", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	out, err := env.run(t, "--history", env.history, "suggest", "--deck", "d-alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "["))
}

func TestFlagValidation(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown output format", args: []string{"-o", "xml", "status"}},
		{name: "weakness without player", args: []string{"weakness"}},
		{name: "negative workers", args: []string{"--workers", "-1", "status"}},
		{name: "bad log level", args: []string{"--log-level", "loud", "status"}},
		{name: "watch without source", args: []string{"watch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.dir, "config.toml"))

	_, err = env.run(t, "config", "init")
	assert.Error(t, err, "init refuses to overwrite")

	_, err = env.run(t, "config", "init", "--force")
	require.NoError(t, err)

	out, err := env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[analytics]")
	assert.Contains(t, out, "min_profile_matches = 10")
}

func TestBackupCreateAndList(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "import", env.history)
	require.NoError(t, err)

	backupDir := filepath.Join(env.dir, "snapshots")
	_, err = env.run(t, "backup", "create", "--dir", backupDir, "--name", "manual")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(backupDir, "manual.db"))

	out, err := env.run(t, "backup", "list", "--dir", backupDir)
	require.NoError(t, err)

	var backups []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &backups))
	require.Len(t, backups, 1)
	assert.Equal(t, "manual.db", backups[0]["name"])
}

func TestLimit(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2, 3}, limit(items, 0))
	assert.Equal(t, []int{1, 2}, limit(items, 2))
	assert.Equal(t, []int{1, 2, 3}, limit(items, 5))
}

func TestExport(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "--history", env.history, "export", "matchups")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "player_id,kind,archetype,win_rate,matches,wins,score", lines[0])
	assert.Contains(t, out, "alice,weakness,Control,0.1000,10,1,")

	file := filepath.Join(env.dir, "out", "variance.json")
	_, err = env.run(t, "--history", env.history, "export", "variance", "--format", "json", "--file", file)
	require.NoError(t, err)
	assert.FileExists(t, file)

	_, err = env.run(t, "--history", env.history, "export", "variance", "--format", "json", "--file", file)
	assert.Error(t, err, "existing export files need --overwrite")

	_, err = env.run(t, "--history", env.history, "export", "elo")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "version")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

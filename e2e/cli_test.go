package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamematch/internal/api"
	"github.com/mcoot/gamematch/internal/factory"
	"github.com/mcoot/gamematch/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "gamematch")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gamematch")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// runJSON runs a command that must succeed and decodes its output into v
func (r *cliRunner) runJSON(t *testing.T, v any, args ...string) {
	t.Helper()

	out, err := r.run(args...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the API on a free local port until the test ends
func startTestServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		PlayerService:       app.PlayerService,
		MatchService:        app.MatchService,
		LifecycleController: app.LifecycleController,
		HistoryService:      app.HistoryService,
	})

	cfg := api.DefaultServerConfig()
	cfg.ShutdownTimeout = 5 * time.Second
	server := api.NewServer(router, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.RunListener(ctx, listener)
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Logf("server error: %v", err)
		}
	})

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type playerResponse struct {
	ID       string  `json:"id"`
	Nickname string  `json:"nickname"`
	MatchID  *string `json:"match_id"`
}

type matchResponse struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	State   string             `json:"state"`
	Scores  map[string]float64 `json:"scores"`
	Players []playerResponse   `json:"players"`
}

func TestCLIHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	cli := newCLIRunner(t, startTestServer(t))

	var health struct {
		Status string `json:"status"`
	}
	cli.runJSON(t, &health, "health")
	assert.Equal(t, "ok", health.Status)
}

func TestCLIMatchLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	cli := newCLIRunner(t, startTestServer(t))

	var alice, bob playerResponse
	cli.runJSON(t, &alice, "player", "register", "--name", "Alice", "--nickname", "alice", "--email", "alice@example.com")
	cli.runJSON(t, &bob, "player", "register", "--name", "Bob", "--nickname", "bob", "--email", "bob@example.com")

	out, err := cli.run("player", "register", "--name", "Alice", "--nickname", "alice", "--email", "other@example.com")
	require.Error(t, err)
	assert.Contains(t, out, "this nickname is already in use")

	var match matchResponse
	cli.runJSON(t, &match, "match", "create", "--name", "Alpha")
	assert.Equal(t, "WAITING", match.State)

	cli.runJSON(t, &match, "match", "join", match.ID, alice.ID)
	cli.runJSON(t, &match, "match", "join", match.ID, bob.ID)
	require.Len(t, match.Players, 2)

	var open []matchResponse
	cli.runJSON(t, &open, "match", "open")
	require.Len(t, open, 1)

	cli.runJSON(t, &match, "match", "start", match.ID)
	assert.Equal(t, "IN_PROGRESS", match.State)

	out, err = cli.run("match", "finish", match.ID, "--score", alice.ID+"=10")
	require.Error(t, err)
	assert.Contains(t, out, "missing scores for players: "+bob.ID)

	cli.runJSON(t, &match, "match", "finish", match.ID, "--score", alice.ID+"=10", "--score", bob.ID+"=20")
	assert.Equal(t, "FINISHED", match.State)
	assert.Empty(t, match.Players)
	assert.Equal(t, map[string]float64{alice.ID: 10, bob.ID: 20}, match.Scores)

	var player playerResponse
	cli.runJSON(t, &player, "player", "get", alice.ID)
	assert.Nil(t, player.MatchID)

	var history []matchResponse
	cli.runJSON(t, &history, "match", "history", alice.ID)
	require.Len(t, history, 1)
	assert.Equal(t, match.ID, history[0].ID)

	var msg struct {
		Message string `json:"message"`
	}
	cli.runJSON(t, &msg, "player", "delete", alice.ID)
	assert.Equal(t, "player deleted", msg.Message)
}

func TestCLILeaveMatchViaUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	cli := newCLIRunner(t, startTestServer(t))

	var alice playerResponse
	cli.runJSON(t, &alice, "player", "register", "--name", "Alice", "--nickname", "alice", "--email", "alice@example.com")

	var match matchResponse
	cli.runJSON(t, &match, "match", "create", "--name", "Alpha")
	cli.runJSON(t, &match, "match", "join", match.ID, alice.ID)

	out, err := cli.run("player", "update", alice.ID, "--name", "Alice Smith")
	require.Error(t, err)
	assert.Contains(t, out, "player is in a match and cannot be updated")

	cli.runJSON(t, &alice, "player", "update", alice.ID, "--leave-match")
	assert.Nil(t, alice.MatchID)

	cli.runJSON(t, &match, "match", "get", match.ID)
	assert.Empty(t, match.Players)
}

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-m-fleetenable/global-search/internal/config"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/search/result"
	chiTransport "github.com/ravi-m-fleetenable/global-search/internal/transport/chi"
)

const testFixtures = `
orders:
  - id: o1
    order_number: ORD-5001
    status: pending
    driver_id: d1
    created_at: "2024-03-01"
  - id: o2
    order_number: ORD-5002
    status: delivered
    driver_id: d2
    created_at: "2024-03-02"
pods:
  - id: p1
    pod_number: POD-77
    delivery_status: completed
    driver_id: d1
    created_at: "2024-03-03"
`

// testEnv writes a bleve-backed config plus fixtures and returns the config path.
func testEnv(t *testing.T, secret string) string {
	t.Helper()
	dir := t.TempDir()

	fixtures := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(testFixtures), 0o600))

	cfg := `
http:
  port: 8099
database:
  driver: bleve
  bleve_path: ` + filepath.Join(dir, "indexes") + `
auth:
  jwt_secret: "` + secret + `"
seed:
  fixtures_path: ` + fixtures + `
logging:
  level: error
`
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_ShowsHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "bootstrap", "seed", "query", "token"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := run(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "commit")
}

func TestSeedThenQuery(t *testing.T) {
	cfgPath := testEnv(t, "")

	out, err := run(t, "--env", "test", "--config", cfgPath, "seed")
	require.NoError(t, err)
	assert.Equal(t, "orders: 2\npods: 1\n", out)

	out, err = run(t, "--env", "test", "--config", cfgPath, "query", "ORD-5001", "--type", "orders")
	require.NoError(t, err)

	var env struct {
		Success      bool                               `json:"success"`
		TotalResults int                                `json:"total_results"`
		Results      map[string]result.CollectionResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 2, env.Results["orders"].Count)
}

func TestQuery_DriverScope(t *testing.T) {
	cfgPath := testEnv(t, "")
	_, err := run(t, "--env", "test", "--config", cfgPath, "seed")
	require.NoError(t, err)

	out, err := run(t, "--env", "test", "--config", cfgPath,
		"query", "ORD", "--type", "orders", "--role", "driver", "--driver-id", "d1")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 1`)
	assert.NotContains(t, out, "ORD-5002")
}

func TestQuery_Errors(t *testing.T) {
	cfgPath := testEnv(t, "")

	_, err := run(t, "--env", "test", "--config", cfgPath, "query", "x", "--role", "root")
	assert.Error(t, err)

	_, err = run(t, "--env", "test", "--config", cfgPath, "query", "x", "--type", "widgets")
	assert.Error(t, err)

	_, err = run(t, "--env", "test", "--config", cfgPath, "query")
	assert.Error(t, err, "query text is required")
}

func TestSeed_MissingFile(t *testing.T) {
	cfgPath := testEnv(t, "")
	_, err := run(t, "--env", "test", "--config", cfgPath, "seed", "--file", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBootstrap_Embedded(t *testing.T) {
	out, err := run(t, "--env", "test", "--config", testEnv(t, ""), "bootstrap")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "embedded indexes ready: orders"), out)
}

func TestTokenCmd(t *testing.T) {
	const secret = "cli-secret"
	cfgPath := testEnv(t, secret)

	out, err := run(t, "--env", "test", "--config", cfgPath, "token", "--user", "u5", "--role", "driver", "--driver-id", "d9")
	require.NoError(t, err)

	c, err := chiTransport.ParseToken(strings.TrimSpace(out), secret)
	require.NoError(t, err)
	assert.Equal(t, "u5", c.UserID())
	assert.Equal(t, role.Driver, c.Role())
	assert.Equal(t, "d9", c.DriverID())

	_, err = run(t, "--env", "test", "--config", testEnv(t, ""), "token", "--user", "u5")
	assert.Error(t, err, "empty secret cannot sign")
}

func TestAuthConfig(t *testing.T) {
	_, err := authConfig(testAuth("nobody"))
	assert.Error(t, err)

	a, err := authConfig(testAuth("billing"))
	require.NoError(t, err)
	assert.Equal(t, role.Billing, a.Dev.Role())
}

func testAuth(devRole string) config.AuthConfig {
	return config.AuthConfig{DevRole: devRole, DevUserID: "dev"}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AppFlags(fs)
	LogFlags(fs)
	ServeFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func load(t *testing.T, file string, args ...string) (*Config, error) {
	t.Helper()
	v, err := NewViper(newFlagSet(t, args...))
	require.NoError(t, err)
	return Load(v, file)
}

func TestDefaults(t *testing.T) {
	c, err := load(t, "")
	require.NoError(t, err)
	require.Equal(t, Default().Server, Server{
		Addr:         ":4004",
		Path:         "/graphql",
		Timeout:      10 * time.Second,
		MaxBodyBytes: 1 << 20,
	})
	require.Equal(t, "app1", c.GraphQL.App)
	require.Equal(t, ":4004", c.Server.Addr)
	require.Equal(t, 10*time.Second, c.Server.Timeout)
	require.Equal(t, int64(1<<20), c.Server.MaxBodyBytes)
	require.Equal(t, "/metrics", c.Metrics.Path)
	require.Equal(t, "hellograph", c.Otel.Service)
}

func TestFlagsEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hellograph.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
graphql:
  app: app2
server:
  addr: ":9000"
  pretty: true
log:
  level: debug
`), 0o600))
	t.Setenv("HELLOGRAPH_SERVER_ADDR", ":9100")
	t.Setenv("HELLOGRAPH_SERVER_MAX_BODY_BYTES", "2048")

	c, err := load(t, file, "--server.timeout=3s", "--server.cors-origin=http://a.test", "--server.cors-origin=http://b.test")
	require.NoError(t, err)
	require.Equal(t, "app2", c.GraphQL.App)
	require.Equal(t, ":9100", c.Server.Addr)
	require.True(t, c.Server.Pretty)
	require.Equal(t, "debug", c.Log.Level)
	require.Equal(t, 3*time.Second, c.Server.Timeout)
	require.Equal(t, int64(2048), c.Server.MaxBodyBytes)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, c.Server.CORSOrigins)

	c, err = load(t, file, "--server.addr=:9200")
	require.NoError(t, err)
	require.Equal(t, ":9200", c.Server.Addr)
}

func TestMissingFile(t *testing.T) {
	_, err := load(t, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidation(t *testing.T) {
	cases := map[string]struct {
		args []string
		want string
	}{
		"unknown app":      {[]string{"--graphql.app=app3"}, `graphql.app: unknown app "app3" (have app1, app2)`},
		"negative timeout": {[]string{"--server.timeout=-1s"}, "server.timeout: must be >= 0"},
		"negative body":    {[]string{"--server.max-body-bytes=-5"}, "server.max-body-bytes: must be >= 0"},
		"bad level":        {[]string{"--log.level=loud"}, `log.level: "loud" is not one of debug info warn error`},
		"relative path":    {[]string{"--server.path=graphql"}, "server.path: failed startswith /"},
		"bad otel":         {[]string{"--otel.endpoint=no port"}, "otel.endpoint: failed hostname_port"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(t, "", tc.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateStruct(t *testing.T) {
	c := Default()
	require.NoError(t, Validate(&c))
	c.GraphQL.App = ""
	require.EqualError(t, Validate(&c), "invalid config: graphql.app is required")
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScripts runs the testdata/script/*.txt scenarios. The swaggerstub
// command runs in-process; paths must be given relative to $WORK.
func TestScripts(t *testing.T) {
	fixture, err := os.ReadFile(filepath.Join("..", "contract", "testdata", "petstore.yaml"))
	require.NoError(t, err)

	testscript.Run(t, testscript.Params{
		Dir: filepath.Join("testdata", "script"),
		Setup: func(env *testscript.Env) error {
			return os.WriteFile(filepath.Join(env.WorkDir, "petstore.yaml"), fixture, 0o644)
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"swaggerstub": func(ts *testscript.TestScript, neg bool, args []string) {
				code := Run(args, ts.Stdout(), ts.Stderr())
				if neg && code == 0 {
					ts.Fatalf("swaggerstub %v: unexpected success", args)
				}
				if !neg && code != 0 {
					ts.Fatalf("swaggerstub %v: exit status %d", args, code)
				}
			},
		},
	})
}

func TestRun_VersionJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"version", "--json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var out VersionOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.NotEmpty(t, out.Version)
	assert.NotEmpty(t, out.Go)
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"nope"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown command")
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"X-Trace: 1", "Accept:application/json"})
	require.NoError(t, err)
	assert.Equal(t, "1", h.Get("X-Trace"))
	assert.Equal(t, "application/json", h.Get("Accept"))

	_, err = parseHeaders([]string{"no-colon"})
	assert.ErrorIs(t, err, ErrInvalidHeader)

	_, err = parseHeaders([]string{": empty"})
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestJoinStatuses(t *testing.T) {
	assert.Equal(t, "201,405", joinStatuses([]int{201, 405}))
	assert.Equal(t, "", joinStatuses(nil))
}

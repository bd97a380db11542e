package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPlans = `
plan: {
	avg_temp: {
		variables: c: {coverage: "AvgLandTemp", subset: "ansi(\"2014-07\")"}
		aggregate: "avg"
	}
	july_png: {
		variables: c: {coverage: "AvgLandTemp", subset: "ansi(\"2014-07\")"}
		format: "png"
	}
}
`

const brokenPlans = `
plan: broken: {
	variables: c: coverage: "A"
	where:     "$d > 0"
	transform: "1 + 2"
}
`

// executeCommand runs the root command with args and captures its output.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

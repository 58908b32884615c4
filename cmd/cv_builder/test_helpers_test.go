package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	embedded "github.com/jonathan/cv-builder/schemas"
)

// runCLI executes the root command against a temporary file store and returns its output.
func runCLI(t *testing.T, storageDir string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Setenv("CV_STORAGE_DIR", storageDir)
	t.Setenv("REDIS_URL", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores flag variables that persist between Execute calls.
func resetFlags() {
	configPath, logLevel = "", "error"
	genContext, genTarget, genJobURL, genJobFile = "", "", "", ""
	genBrowser, genNoStructural, genDryRun, genJSON = false, false, false, false
	tailorJobURL, tailorJobFile = "", ""
	tailorBrowser, tailorNoStructural, tailorDryRun, tailorJSON = false, false, false, false
	showJSON = false
	validateSchema = embedded.CVData
	serveAddr, serveBrowser = "", false
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

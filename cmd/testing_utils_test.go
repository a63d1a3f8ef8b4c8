package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/hush/internal/configs"
	"github.com/spf13/cobra"
)

// setupTestEnvironment points settings, the database and secrets at a
// temporary directory and resets command state afterwards.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	original := configs.HushSettings
	configs.HushSettings = configs.NewSettings(filepath.Join(dir, "config"), filepath.Join(dir, "data"))
	t.Cleanup(func() {
		configs.HushSettings = original
		ResetGlobalState()
	})

	for _, name := range []string{configs.EnvKeyBits, configs.EnvScheme, configs.EnvDevMode, configs.EnvWorkers} {
		t.Setenv(name, "")
	}
	t.Setenv(configs.EnvMasterKey, "cmd-test-master")
	t.Setenv(configs.EnvFieldKey, "cmd-test-field")
	t.Setenv(configs.EnvDatabase, filepath.Join(dir, "hush.db"))
	t.Setenv("NO_COLOR", "1")

	ResetGlobalState()
	return dir
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	collect := func(r io.Reader, out chan<- string) {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		out <- buf.String()
	}
	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)
	go collect(stdoutReader, stdoutChan)
	go collect(stderrReader, stderrChan)

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// runCLI executes the command line args against a fresh root command.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()

	root := &cobra.Command{Use: "hush"}
	root.AddCommand(Commands()...)
	root.SetArgs(args)

	output, err := captureOutput(func() error {
		defer ResetGlobalState()
		return root.Execute()
	})
	if err != nil {
		t.Fatalf("hush %v failed: %v\n%s", args, err, output)
	}
	return output
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_Success(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}

		require.NoError(t, formatter.Success(ValidationResult{Valid: true, Modules: 3}))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Nil(t, resp.Error)
		assert.Equal(t, map[string]interface{}{"valid": true, "modules": float64(3)}, resp.Data)
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		require.NoError(t, formatter.Success("No runs recorded."))
		assert.Equal(t, "No runs recorded.\n", buf.String())
	})
}

func TestOutputFormatter_Error(t *testing.T) {
	details := map[string]string{"db": "runs.db"}

	tests := []struct {
		name    string
		format  string
		verbose bool
		want    []string
		notWant []string
	}{
		{"text", "text", false, []string{"Error [E210]: history database not found"}, []string{"Details:"}},
		{"text verbose", "text", true, []string{"Error [E210]", "Details: map[db:runs.db]"}, nil},
		{"json", "json", false, []string{`"status":"error"`, `"code":"E210"`, `"details":{"db":"runs.db"}`}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: tt.format, Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error(ErrCodeHistory, "history database not found", details))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
		})
	}
}

func TestOutputFormatter_Errors(t *testing.T) {
	errs := []error{
		&LoadError{Code: ErrCodeModuleKind, Message: "kind: unknown kind \"plugin\""},
		errors.New("disk full"),
	}
	asList := func(list []CLIError) interface{} { return list }

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		require.NoError(t, formatter.Errors("✗ Compilation failed", errs, asList))
		assert.Equal(t, "✗ Compilation failed\n\n"+
			"  E101: kind: unknown kind \"plugin\"\n\n"+
			"  E001: disk full\n\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}

		require.NoError(t, formatter.Errors("ignored", errs, asList))

		var resp struct {
			Status string     `json:"status"`
			Error  CLIError   `json:"error"`
			Data   []CLIError `json:"data"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, ErrCodeModuleKind, resp.Error.Code)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, ErrCodeGeneric, resp.Data[1].Code)
	})
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Found %d CUE file(s) in %s", 2, "tests")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Found 2 CUE file(s) in tests")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	cause := errors.New("bundle not found")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ExitFailure, "1 failures")), ExitFailure},
		{"nil", nil, ExitSuccess},
		{"plain error", cause, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestWrapExitError_Unwraps(t *testing.T) {
	cause := errors.New("bundle not found")
	err := WrapExitError(ExitCommandError, "E201", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "E201: bundle not found", err.Error())
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dl-alexandre/nxraw/internal/publish"
	"github.com/dl-alexandre/nxraw/internal/types"
	"github.com/dl-alexandre/nxraw/internal/utils"
)

func TestOutputWriter_JSONEnvelope(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := newOutputWriterTo(&stdout, &stderr, types.OutputFormatJSON, false, false)
	w.SetTraceID("trace-1")
	w.AddWarning("W1", "heads up", "info")

	if err := w.WriteSuccess("publish", map[string]int{"files": 2}); err != nil {
		t.Fatalf("WriteSuccess: %v", err)
	}

	var got types.CLIOutput
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if got.SchemaVersion != utils.SchemaVersion || got.TraceID != "trace-1" || got.Command != "publish" {
		t.Errorf("unexpected envelope: %+v", got)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Code != "W1" {
		t.Errorf("warnings = %+v", got.Warnings)
	}
	if got.Errors == nil || len(got.Errors) != 0 {
		t.Errorf("errors must be an empty list, got %+v", got.Errors)
	}
}

func TestOutputWriter_WriteErrorReturnsAppError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := newOutputWriterTo(&stdout, &stderr, types.OutputFormatJSON, false, false)

	err := w.WriteError("publish", utils.NewCLIError(utils.ErrCodeDeletionTimeout, "too slow").Build())

	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *utils.AppError, got %T", err)
	}
	if appErr.ExitCode() != utils.ExitDeletionTimeout {
		t.Errorf("exit code = %d, want %d", appErr.ExitCode(), utils.ExitDeletionTimeout)
	}
	if exitCode(err) != utils.ExitDeletionTimeout {
		t.Errorf("exitCode() = %d", exitCode(err))
	}
	if !strings.Contains(stdout.String(), `"code": "DELETION_TIMEOUT"`) {
		t.Errorf("envelope missing error code:\n%s", stdout.String())
	}
}

func TestOutputWriter_TableError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := newOutputWriterTo(&stdout, &stderr, types.OutputFormatTable, false, false)

	_ = w.WriteError("publish", utils.NewCLIError(utils.ErrCodeUploadFailed, "failed to upload a.txt").Build())

	if stdout.Len() != 0 {
		t.Errorf("table errors belong on stderr, stdout has %q", stdout.String())
	}
	if got := stderr.String(); got != "Error [UPLOAD_FAILED]: failed to upload a.txt\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestOutputWriter_ResultTable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := newOutputWriterTo(&stdout, &stderr, types.OutputFormatTable, false, false)

	result := &publish.Result{Files: []publish.FileResult{
		{Path: "index.html", ContentType: "text/html", Size: 2048, Status: publish.FileUploaded},
	}}
	if err := w.WriteSuccess("publish", result); err != nil {
		t.Fatalf("WriteSuccess: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"PATH", "index.html", "text/html", "2.0 KB", "uploaded"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestOutputWriter_EmptyTableAndQuiet(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := newOutputWriterTo(&stdout, &stderr, types.OutputFormatTable, false, false)
	_ = w.WriteSuccess("publish", &publish.Result{})
	if strings.TrimSpace(stdout.String()) != "No files to upload" {
		t.Errorf("stdout = %q", stdout.String())
	}

	stdout.Reset()
	quiet := newOutputWriterTo(&stdout, &stderr, types.OutputFormatTable, true, false)
	quiet.Log("progress")
	_ = quiet.WriteSuccess("publish", &publish.Result{})
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("quiet writer produced output: %q %q", stdout.String(), stderr.String())
	}
}

func TestExitCode_NonAppError(t *testing.T) {
	if got := exitCode(errors.New("unknown flag: --nope")); got != utils.ExitInvalidArgument {
		t.Errorf("exitCode = %d, want %d", got, utils.ExitInvalidArgument)
	}
}

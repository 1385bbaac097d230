package utils

import "testing"

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeDeletionFailed, ExitDeletionFailed},
		{ErrCodeDeletionCheckFailed, ExitDeletionCheckFailed},
		{ErrCodeDeletionTimeout, ExitDeletionTimeout},
		{ErrCodeUploadFailed, ExitUploadFailed},
		{ErrCodeScanFailed, ExitScanFailed},
		{ErrCodeInvalidArgument, ExitInvalidArgument},
		{ErrCodeKeyringUnavailable, ExitAuthRequired},
		{"SOMETHING_ELSE", ExitUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetExitCode(tt.code); got != tt.want {
				t.Errorf("GetExitCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestCLIErrorBuilder(t *testing.T) {
	cliErr := NewCLIError(ErrCodeUploadFailed, "upload rejected").
		WithHTTPStatus(403).
		WithContext("path", "assets/app.js").
		Build()

	if cliErr.Code != ErrCodeUploadFailed {
		t.Errorf("Code = %s, want %s", cliErr.Code, ErrCodeUploadFailed)
	}
	if cliErr.HTTPStatus != 403 {
		t.Errorf("HTTPStatus = %d, want 403", cliErr.HTTPStatus)
	}
	if cliErr.Context["path"] != "assets/app.js" {
		t.Errorf("Context[path] = %v", cliErr.Context["path"])
	}

	appErr := NewAppError(cliErr)
	if appErr.Error() != "UPLOAD_FAILED: upload rejected" {
		t.Errorf("Error() = %q", appErr.Error())
	}
	if appErr.ExitCode() != ExitUploadFailed {
		t.Errorf("ExitCode() = %d, want %d", appErr.ExitCode(), ExitUploadFailed)
	}
}

package errors

import "testing"

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, false},
		{400, false},
		{401, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{501, false},
		{503, true},
		{504, true},
	}
	for _, tt := range tests {
		if got := RetryableStatus(tt.status); got != tt.want {
			t.Errorf("RetryableStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatusHint(t *testing.T) {
	for _, status := range []int{401, 403, 404, 413, 429} {
		if StatusHint(status) == "" {
			t.Errorf("StatusHint(%d) is empty", status)
		}
	}
	if got := StatusHint(500); got != "" {
		t.Errorf("StatusHint(500) = %q, want empty", got)
	}
}

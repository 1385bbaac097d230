package publish

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"upload with status and body",
			&Error{Kind: KindUploadFailed, Path: "css/site.css", StatusCode: 500, Details: "boom"},
			"failed to upload css/site.css (HTTP 500): boom",
		},
		{
			"check failed status only",
			&Error{Kind: KindDeletionCheckFailed, StatusCode: 401},
			"failed to check remote folder deletion (HTTP 401)",
		},
		{
			"wrapped cause without details",
			&Error{Kind: KindCancelled, Err: context.Canceled},
			"publish cancelled: context canceled",
		},
		{
			"timeout",
			&Error{Kind: KindDeletionTimeout, Details: "folder still present after 30s (31 checks)"},
			"timed out waiting for remote folder deletion: folder still present after 30s (31 checks)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("publish: %w", &Error{Kind: KindDeletionFailed, Err: cause})

	kind, ok := KindOf(wrapped)
	if !ok || kind != KindDeletionFailed {
		t.Fatalf("KindOf = %q, %v", kind, ok)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if _, ok := KindOf(cause); ok {
		t.Error("plain error reported a kind")
	}
}

func TestCanTransition(t *testing.T) {
	legal := [][2]State{
		{StateIdle, StateDeleting},
		{StateIdle, StateDone},
		{StateDeleting, StateWaitingForDeletion},
		{StateWaitingForDeletion, StateUploading},
		{StateUploading, StateDone},
		{StateUploading, StateFailed},
	}
	for _, tr := range legal {
		if !CanTransition(tr[0], tr[1]) {
			t.Errorf("%s -> %s should be legal", tr[0], tr[1])
		}
	}

	illegal := [][2]State{
		{StateIdle, StateUploading},
		{StateWaitingForDeletion, StateDeleting},
		{StateDone, StateDeleting},
		{StateFailed, StateUploading},
		{StateUploading, StateUploading},
	}
	for _, tr := range illegal {
		if CanTransition(tr[0], tr[1]) {
			t.Errorf("%s -> %s should be illegal", tr[0], tr[1])
		}
	}

	if !StateDone.Terminal() || !StateFailed.Terminal() || StateUploading.Terminal() {
		t.Error("Terminal() misclassifies states")
	}
}

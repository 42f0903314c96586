package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	repo2pdf "github.com/alnah/go-repo2pdf"
	"github.com/alnah/go-repo2pdf/internal/config"
	"github.com/alnah/go-repo2pdf/internal/gitrepo"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error classification
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown", errors.New("boom"), ExitGeneral},
		{"cancelled", context.Canceled, ExitGeneral},

		{"typesetting", fmt.Errorf("run: %w", repo2pdf.ErrTypesetting), ExitTypeset},
		{"typeset error", &repo2pdf.TypesetError{Err: fmt.Errorf("%w: x", repo2pdf.ErrTypesetting)}, ExitTypeset},
		{"pandoc missing", ErrPandocMissing, ExitTypeset},
		{"typeset timeout", fmt.Errorf("%w: %w", repo2pdf.ErrTypesetting, context.DeadlineExceeded), ExitTypeset},

		{"auth", &gitrepo.AuthError{Op: "clone", URL: "u", Err: errors.New("denied")}, ExitRepository},
		{"not found", &gitrepo.NotFoundError{Op: "clone", URL: "u", Err: errors.New("404")}, ExitRepository},
		{"sync", fmt.Errorf("%w: network", ErrSync), ExitRepository},

		{"no config", ErrNoConfig, ExitUsage},
		{"config not found", fmt.Errorf("loading: %w", config.ErrConfigNotFound), ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"unknown preset", config.ErrUnknownPreset, ExitUsage},
		{"retired setting", config.ErrRetiredSetting, ExitUsage},
		{"shell", ErrUnsupportedShell, ExitUsage},
		{"layout", repo2pdf.ErrInvalidFontSize, ExitUsage},
		{"processing", repo2pdf.ErrInvalidTreeDepth, ExitUsage},

		{"not exist", os.ErrNotExist, ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"output dir", repo2pdf.ErrOutputDir, ExitIO},
		{"no content", repo2pdf.ErrNoContent, ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

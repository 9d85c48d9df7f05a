package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

func TestRecomputeResult(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStop   bool
		wantReport bool
	}{
		{"success", nil, false, false},
		{"cancelled", eris.Wrap(context.Canceled, "source: load cancelled"), false, false},
		{"bad corpus", eris.Wrap(matcher.ErrInvalidRecord, "line 3"), false, true},
		{"io error", io.ErrUnexpectedEOF, false, true},
		{"invariant", eris.Wrap(matcher.ErrInvariant, "no stats for business B1"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetErr(&stderr)

			err := recomputeResult(cmd, zap.NewNop(), tt.err)
			if tt.wantStop {
				assert.True(t, errors.Is(err, matcher.ErrInvariant))
			} else {
				assert.NoError(t, err)
			}
			if tt.wantReport {
				assert.Contains(t, stderr.String(), "Error:")
			} else {
				assert.Empty(t, stderr.String())
			}
		})
	}
}

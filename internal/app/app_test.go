package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/marshallshelly/linknova/pkg/runtime"
)

func TestMatches(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		ok      bool
		err     error
		want    bool
		wantErr error
	}{
		{"same name", true, nil, true, nil},
		{"renamed", false, nil, false, nil},
		{"deleted", false, fmt.Errorf("get category: %w", runtime.ErrNotFound), false, nil},
		{"store failure", false, boom, false, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matches(tt.ok, tt.err)
			if got != tt.want {
				t.Errorf("matches() = %v, want %v", got, tt.want)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("matches() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

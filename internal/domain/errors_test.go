package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"score not found", ErrScoreNotFound, true},
		{"progress not found", ErrProgressNotFound, true},
		{"profile not found", ErrProfileNotFound, true},
		{"unknown course", ErrUnknownCourse, true},
		{"wrapped progress not found", fmt.Errorf("getting course progress: %w", ErrProgressNotFound), true},
		{"invalid chart", ErrInvalidChart, false},
		{"invalid request", ErrInvalidRequest, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.want {
				t.Errorf("IsNotFoundError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/reactivities/backend/internal/domain"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", fmt.Errorf("repo.UnitOfWork.FindByID: %w", domain.ErrNotFound), domain.CodeNotFound},
		{"storage", fmt.Errorf("repo: %w: connection refused", domain.ErrStorage), domain.CodeStorageFailure},
		{"handler", domain.ErrHandlerNotFound, domain.CodeHandlerNotFound},
		{"mapping", domain.ErrMappingConfigurationMissing, domain.CodeMappingConfigurationMissing},
		{"cancelled storage call", fmt.Errorf("%w: %w: %w", domain.ErrCancelled, domain.ErrStorage, context.Canceled), domain.CodeCancelled},
		{"unknown", errors.New("boom"), domain.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Code(tt.err))
		})
	}
}

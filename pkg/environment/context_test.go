package environment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/stampkit/pkg/environment"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("stored environment comes back", func(t *testing.T) {
		t.Parallel()
		ctx := environment.WithContext(context.Background(), environment.Production)
		assert.Equal(t, environment.Production, environment.FromContext(ctx))
	})

	t.Run("bare context yields empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, environment.Environment(""), environment.FromContext(context.Background()))
	})
}

func TestEnvironmentPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env        environment.Environment
		production bool
		staging    bool
		dev        bool
	}{
		{environment.Production, true, false, false},
		{environment.Environment("prod"), true, false, false},
		{environment.Staging, false, true, false},
		{environment.Environment("stage"), false, true, false},
		{environment.Development, false, false, true},
		{environment.Environment("dev"), false, false, true},
		{environment.Environment(""), false, false, false},
	}

	for _, tt := range tests {
		name := string(tt.env)
		if name == "" {
			name = "unset"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := environment.WithContext(context.Background(), tt.env)
			assert.Equal(t, tt.production, environment.IsProduction(ctx))
			assert.Equal(t, tt.staging, environment.IsStaging(ctx))
			assert.Equal(t, tt.dev, environment.IsDevelopment(ctx))
		})
	}
}

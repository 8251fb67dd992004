package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithLoggerRoundTrip(t *testing.T) {
	ctx := WithLogger(context.Background(), &Nop)
	assert.Same(t, &Nop, FromContext(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, Default(), FromContext(context.Background()))
}

func TestFromContextNilContext(t *testing.T) {
	assert.Same(t, Default(), FromContext(nil)) //nolint:staticcheck // nil fallback is the point
}

func TestWithLoggerNilFallsBackToDefault(t *testing.T) {
	ctx := WithLogger(context.Background(), nil)
	assert.Same(t, Default(), FromContext(ctx))
}

func TestCtxAlias(t *testing.T) {
	ctx := WithLogger(context.Background(), &Nop)
	assert.Same(t, FromContext(ctx), Ctx(ctx))
}

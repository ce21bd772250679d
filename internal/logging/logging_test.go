package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coachhub/coachapi/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	l, err := logging.New("debug", "json")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = logging.New("loud", "json")
	require.Error(t, err)

	_, err = logging.New("info", "xml")
	require.Error(t, err)
}

func TestFromContext_FallsBackToNop(t *testing.T) {
	t.Parallel()

	l := logging.FromContext(context.Background())
	require.NotNil(t, l)
	l.Info("must not panic")
}

func TestWith_DoesNotLeakIntoParent(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	base := logging.WithLogger(context.Background(), zap.New(core))

	first := logging.With(base, zap.String("request_id", "first"))
	second := logging.With(base, zap.String("request_id", "second"))

	logging.FromContext(first).Info("a")
	logging.FromContext(second).Info("b")
	logging.FromContext(base).Info("c")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "second", entries[1].ContextMap()["request_id"])
	assert.NotContains(t, entries[2].ContextMap(), "request_id")
}

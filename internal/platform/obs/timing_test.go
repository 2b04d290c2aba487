package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimeLogsRequestIDAndError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	ctx := context.WithValue(context.Background(), RequestIDKey, "abc")

	func() (err error) {
		defer Time(ctx, "op.ok")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, "op.fail")(&err)
		return errors.New("boom")
	}()

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "abc", entries[0].ContextMap()["req_id"])
	assert.Equal(t, "op.ok", entries[0].ContextMap()["op"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

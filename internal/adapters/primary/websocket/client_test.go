package websocket

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	apperrors "github.com/lorrc/logistics-ops-backend/internal/core/errors"
	"github.com/lorrc/logistics-ops-backend/internal/core/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient builds a client without pumps; SendMessage and Close never
// touch the underlying connection, so nil is fine here.
func newTestClient(t *testing.T, sendBuffer int) *Client {
	t.Helper()
	registry := services.NewSessionRegistry(testLogger())
	return NewClient(nil, registry, nil, nil, sendBuffer, testLogger())
}

func TestClient_SendMessage(t *testing.T) {
	t.Run("queues until the buffer is full", func(t *testing.T) {
		c := newTestClient(t, 1)

		require.NoError(t, c.SendMessage(domain.NewSystemMessage("one")))
		assert.ErrorIs(t, c.SendMessage(domain.NewSystemMessage("two")), apperrors.ErrSendBufferFull)
	})

	t.Run("fails after close", func(t *testing.T) {
		c := newTestClient(t, 4)

		require.NoError(t, c.Close())
		require.NoError(t, c.Close()) // close-once, second call is a no-op

		assert.ErrorIs(t, c.SendMessage(domain.NewSystemMessage("late")), apperrors.ErrConnectionClosed)
	})
}

// A teardown racing an in-flight send must never panic: the broadcaster, the
// reaper, and the insight-reply goroutine all call SendMessage on sessions
// that may be closing concurrently.
func TestClient_ConcurrentSendAndClose(t *testing.T) {
	for i := 0; i < 500; i++ {
		c := newTestClient(t, 1)

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = c.SendMessage(domain.NewSystemMessage("a"))
		}()
		go func() {
			defer wg.Done()
			_ = c.SendMessage(domain.NewSystemMessage("b"))
		}()
		go func() {
			defer wg.Done()
			_ = c.Close()
		}()
		wg.Wait()

		assert.ErrorIs(t, c.SendMessage(domain.NewSystemMessage("after")), apperrors.ErrConnectionClosed)
	}
}

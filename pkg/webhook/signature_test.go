package webhook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hookrelay/pkg/webhook"
)

func TestSignPayload(t *testing.T) {
	t.Parallel()

	t.Run("produces complete headers", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", []byte(`{"a":1}`))
		require.NoError(t, err)
		assert.NotEmpty(t, headers.Signature)
		assert.NotEmpty(t, headers.ID)
		assert.InDelta(t, time.Now().Unix(), headers.Timestamp, 5)

		m := headers.Headers()
		assert.Contains(t, m, "X-Webhook-Signature")
		assert.Contains(t, m, "X-Webhook-Timestamp")
		assert.Contains(t, m, "X-Webhook-ID")
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		t.Parallel()

		_, err := webhook.SignPayload("", []byte(`{"a":1}`))
		assert.ErrorIs(t, err, webhook.ErrInvalidConfiguration)
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		t.Parallel()

		_, err := webhook.SignPayload("secret", nil)
		assert.ErrorIs(t, err, webhook.ErrInvalidPayload)
	})
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"event":"user.created"}`)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", payload)
		require.NoError(t, err)
		assert.NoError(t, webhook.VerifySignature("secret", payload, headers, 5*time.Minute))
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", payload)
		require.NoError(t, err)
		assert.ErrorIs(t,
			webhook.VerifySignature("other", payload, headers, 5*time.Minute),
			webhook.ErrInvalidConfiguration)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", payload)
		require.NoError(t, err)
		assert.Error(t, webhook.VerifySignature("secret", []byte(`{"event":"admin.created"}`), headers, 5*time.Minute))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		t.Parallel()

		headers, err := webhook.SignPayload("secret", payload)
		require.NoError(t, err)
		headers.Timestamp = time.Now().Add(-time.Hour).Unix()
		assert.Error(t, webhook.VerifySignature("secret", payload, headers, 5*time.Minute))
	})

	t.Run("missing signature", func(t *testing.T) {
		t.Parallel()

		err := webhook.VerifySignature("secret", payload, webhook.SignatureHeaders{}, 0)
		assert.ErrorIs(t, err, webhook.ErrInvalidConfiguration)
	})
}

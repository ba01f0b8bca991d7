// Package webhook provides HTTP webhook delivery for the relay: a
// single-attempt sender with request signing and failure classification,
// backoff strategies for retry scheduling, and the delivery task executed by
// the dispatch engine.
//
// The sender deliberately performs exactly one attempt per call. Retries,
// delays between attempts, and the attempt ceiling are owned by the dispatch
// engine, which wraps a DeliveryTask in an envelope and re-queues it after
// failures.
//
// # Basic Usage
//
//	sender := webhook.NewSender()
//
//	task, err := webhook.NewDeliveryTask(sender, event, sub.CallbackURL,
//	    webhook.WithDeliverySecret(sub.Secret),
//	)
//	if err != nil {
//	    return err
//	}
//
//	env, err := dispatch.NewEnvelope(task,
//	    dispatch.WithRetryDelay(webhook.DefaultBackoffStrategy()),
//	)
//	if err != nil {
//	    return err
//	}
//	engine.Enqueue(env)
//
// The sender can also be used directly for one-off deliveries:
//
//	err := sender.Send(ctx, callbackURL, payload,
//	    webhook.WithSignature(secret),
//	    webhook.WithTimeout(15*time.Second),
//	)
//
// # Request Signing
//
// When a subscription carries a secret, deliveries include:
//
//	X-Webhook-Signature: HMAC-SHA256 hex-encoded signature
//	X-Webhook-Timestamp: Unix timestamp when the signature was created
//	X-Webhook-ID: unique identifier for this delivery
//
// The signature is HMAC-SHA256(secret, timestamp + "." + payload).
// Receivers verify with VerifySignature.
//
// # Failure Classification
//
// Send wraps failures in sentinel errors checkable with errors.Is:
// ErrPermanentFailure for 4xx responses (except 408, 425, 429) and
// ErrTemporaryFailure for network errors and 5xx responses. The dispatch
// engine retries either kind until the envelope's ceiling; classification
// exists for observability and for callers that deliver outside the engine.
package webhook

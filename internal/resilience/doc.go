// Package resilience groups the fault-tolerance helpers used around the
// outbound dependencies: the generative-AI providers, notification webhooks
// and the MQTT broker.
//
//   - circuitbreaker wraps sony/gobreaker with per-dependency presets.
//   - retry runs an operation with exponential backoff and jitter.
//
// Retry goes outside, the breaker inside, so an open breaker is not retried:
//
//	err := retry.WithBackoff(ctx, retry.AIAPIConfig(), func() error {
//	    return cb.Run(func() error {
//	        text, err = provider.Generate(ctx, req)
//	        return err
//	    })
//	})
package resilience

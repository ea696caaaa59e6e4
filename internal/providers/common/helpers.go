package common

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MaskAPIKey hides the middle of a key for log output.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// SanitizeError strips any occurrence of the API key from an error
// message before it is persisted or logged.
func SanitizeError(err error, apiKey string) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if apiKey != "" {
		msg = strings.ReplaceAll(msg, apiKey, MaskAPIKey(apiKey))
	}
	return msg
}

// Retry runs fn up to attempts times with linear backoff between
// tries. It stops early when the context is cancelled and returns the
// last error observed.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i < attempts-1 {
			backoff := delay * time.Duration(i+1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return lastErr
			}
		}
	}
	return lastErr
}

// NewRequestID tags an outbound call for correlation across logs and
// persisted results.
func NewRequestID(provider string) string {
	return fmt.Sprintf("%s-%d", provider, time.Now().UnixMilli())
}

// internal/providers/common/types.go
package common

import (
	"time"

	"github.com/TayyabArif/Firtz/internal/models"
)

// Status of one provider call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Request is the normalized ask sent to every adapter. Context carries
// the brand/category framing prepended to the prompt.
type Request struct {
	Prompt  string
	Context string
}

// FullPrompt returns the context-framed prompt text.
func (r Request) FullPrompt() string {
	if r.Context == "" {
		return r.Prompt
	}
	return r.Context + "\n\n" + r.Prompt
}

// Payload is the normalized successful response body.
type Payload struct {
	Content       string
	Model         string
	TokenCount    int
	Citations     []models.Citation
	WebSearchUsed bool
	RealTimeData  bool
}

// Result is the envelope every adapter returns. Provider failures are
// carried as StatusError with Err set; adapters never surface transport
// failures as Go errors, so callers need no exception-style handling.
type Result struct {
	RequestID      string
	Status         Status
	Data           *Payload
	Err            string
	ResponseTimeMs int64
	Cost           float64
	Timestamp      time.Time
}

// Success reports whether the call produced a usable payload.
func (r Result) Success() bool {
	return r.Status == StatusSuccess && r.Data != nil
}

// ErrorResult builds an error envelope with timing filled in.
func ErrorResult(requestID, message string, started time.Time) Result {
	return Result{
		RequestID:      requestID,
		Status:         StatusError,
		Err:            message,
		ResponseTimeMs: time.Since(started).Milliseconds(),
		Cost:           0,
		Timestamp:      time.Now().UTC(),
	}
}

// SuccessResult builds a success envelope with timing filled in.
func SuccessResult(requestID string, data *Payload, cost float64, started time.Time) Result {
	return Result{
		RequestID:      requestID,
		Status:         StatusSuccess,
		Data:           data,
		ResponseTimeMs: time.Since(started).Milliseconds(),
		Cost:           cost,
		Timestamp:      time.Now().UTC(),
	}
}

package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Sender delivers one message to one device token. Implementations must
// be safe for concurrent use; pkg/firebase provides the FCM-backed one.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// DeliveryFailure records one token whose send did not succeed.
type DeliveryFailure struct {
	Token  string
	Reason string
}

// DeliveryResult is the settled outcome of one fan-out. Failures keep the
// relative order of the input token sequence, so
// SuccessCount + len(Failures) always equals the number of tokens.
type DeliveryResult struct {
	SuccessCount int
	Failures     []DeliveryFailure
}

// Fanout sends a formatted message to every token of a recipient
// concurrently, settling every send before returning. No single token's
// failure can abort the others.
type Fanout struct {
	sender      Sender
	sendTimeout time.Duration
}

// NewFanout creates a Fanout. sendTimeout bounds each provider call; a
// timed-out send counts as an ordinary failure. Zero disables the bound.
func NewFanout(sender Sender, sendTimeout time.Duration) *Fanout {
	return &Fanout{sender: sender, sendTimeout: sendTimeout}
}

// Deliver issues one independent send per token and reduces the settled
// outcomes. An empty token slice returns a zero-valued result without any
// provider call.
func (f *Fanout) Deliver(ctx context.Context, tokens []string, msg Message, data map[string]string) DeliveryResult {
	if len(tokens) == 0 {
		return DeliveryResult{}
	}

	errs := make([]error, len(tokens))
	var wg sync.WaitGroup
	wg.Add(len(tokens))
	for i, token := range tokens {
		go func(i int, token string) {
			defer wg.Done()
			errs[i] = f.send(ctx, token, msg, data)
		}(i, token)
	}
	wg.Wait()

	var result DeliveryResult
	for i, err := range errs {
		if err == nil {
			result.SuccessCount++
			continue
		}
		result.Failures = append(result.Failures, DeliveryFailure{Token: tokens[i], Reason: err.Error()})
	}
	return result
}

// send wraps one provider call with the per-send timeout and converts a
// panicking provider into an ordinary failure, keeping the all-settle
// guarantee.
func (f *Fanout) send(ctx context.Context, token string, msg Message, data map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	if f.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.sendTimeout)
		defer cancel()
	}
	return f.sender.Send(ctx, token, msg.Title, msg.Body, data)
}

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studydeck/studydeck/internal/store"
)

type recording struct {
	next   Provider
	vendor string
	events store.EventRepo
	logger *slog.Logger
	now    func() time.Time
}

// WithRecording stores one event per call in events, which may be nil to
// only log. A failure to store never fails the call.
func WithRecording(p Provider, vendor string, events store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &recording{next: p, vendor: vendor, events: events, logger: logger, now: time.Now}
}

func (r *recording) ModelID() string { return r.next.ModelID() }

func (r *recording) Generate(ctx context.Context, req Request) (*Response, error) {
	started := r.now()
	resp, err := r.next.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    r.vendor,
		Model:       r.next.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   r.now().Sub(started).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = resp.Text
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	r.logger.Debug("llm call",
		"provider", ev.Provider,
		"model", ev.Model,
		"purpose", ev.Purpose,
		"latency_ms", ev.LatencyMs,
		"ok", ev.Success,
	)
	if r.events != nil {
		if serr := r.events.AppendLLMRequest(ctx, ev); serr != nil {
			r.logger.Warn("llm event not stored", "error", serr)
		}
	}
	return resp, err
}

// transcript flattens req into the text stored with the event.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

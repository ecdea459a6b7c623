package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/llm"
)

// resolveNarrative returns text for a free-text field. The deterministic
// template value is computed up front while the enhanced generator (when
// configured) runs against a deadline; any failure, timeout or empty
// answer yields the template value, so the stage never blocks on or fails
// because of the enhanced generator.
func (s *generationService) resolveNarrative(ctx context.Context, req llm.Request) string {
	fallbackText, err := s.fallback.Narrative(ctx, req)
	if err != nil {
		// Unknown field in the template generator is a programming error;
		// keep the pipeline alive with an empty narrative.
		s.logger.Error("Template narrative failed", zap.Error(err))
		fallbackText = ""
	}

	if s.narrative == nil {
		return fallbackText
	}

	type answer struct {
		text string
		err  error
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := make(chan answer, 1)
	go func() {
		text, err := s.narrative.Narrative(callCtx, req)
		ch <- answer{text: text, err: err}
	}()

	select {
	case a := <-ch:
		if a.err != nil || a.text == "" {
			if a.err != nil {
				s.logger.Debug("Enhanced narrative failed, using template",
					zap.String("generator", s.narrative.Name()),
					zap.String("field", string(req.Field)),
					zap.Error(a.err))
			}
			return fallbackText
		}
		return a.text
	case <-callCtx.Done():
		s.logger.Debug("Enhanced narrative timed out, using template",
			zap.String("generator", s.narrative.Name()),
			zap.String("field", string(req.Field)))
		return fallbackText
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"log/slog"
)

// ConsoleSink writes local codes to the log. It is the delivery path when
// no remote verification service is configured, and the fallback when one
// is unreachable.
type ConsoleSink struct {
	logger *slog.Logger
}

// NewConsoleSink returns a sink that logs through logger, or slog.Default
// when logger is nil.
func NewConsoleSink(logger *slog.Logger) *ConsoleSink {
	return &ConsoleSink{logger: logger}
}

func (s *ConsoleSink) Deliver(ctx context.Context, voterID, phone, code string) error {
	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "otp issued",
		"voter_id", voterID,
		"phone", phone,
		"code", code,
	)
	return nil
}

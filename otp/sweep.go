// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package otp

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// ScheduleSweep registers a job on c that sweeps the ledger on the given
// cron spec (e.g. "@every 1m").
func ScheduleSweep(c *cron.Cron, spec string, ledger *MemoryLedger, now Clock) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if n := ledger.Sweep(now()); n > 0 {
			slog.Info("swept expired otp entries", "removed", n, "pending", ledger.Len())
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to schedule otp sweep %q: %w", spec, err)
	}
	return id, nil
}

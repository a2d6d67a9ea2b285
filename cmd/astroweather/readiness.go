package main

import (
	"context"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// readinessChecks is ready when every member is.
type readinessChecks []sharedobs.ReadinessChecker

func (rc readinessChecks) CheckReadiness(ctx context.Context) error {
	for _, c := range rc {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Package health runs named connectivity checks against storage and
// aggregates their outcome.
//
// Checks share the func(context.Context) error signature, so any probe can
// be plugged in. [Client.Healthcheck] in the root package returns one that
// verifies the default bucket is reachable with the configured credentials.
//
// # Usage
//
//	report := health.Run(ctx, health.Checks{
//	    "bucket": client.Healthcheck(),
//	    "backup": backup.Healthcheck(),
//	}, health.WithTimeout(3*time.Second))
//	if err := report.Err(); err != nil {
//	    return err
//	}
//
// All checks run concurrently under one shared timeout. A check still
// running when the timeout fires is reported with [ErrCheckTimeout].
package health

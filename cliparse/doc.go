// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

Flags take precedence over environment variables:

	-p / PORT                     server port (default 3525)
	-d / DATABASE_URL             database connection string (required)
	-t / DATABASE_TYPE            sqlite or postgres (default sqlite)
	-round / ROUND_SECONDS        default round duration (default 60)
	-sweep-ms / SWEEP_INTERVAL_MS expiry sweep interval (default 5000)
	-tick-ms / TICK_INTERVAL_MS   timer broadcast interval (default 1000)
*/
package cliparse

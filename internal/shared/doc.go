// Package shared holds helpers used across albumsvc packages that belong to
// no single layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := NewThing(logger)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "rejected")
package shared

// Package testutils contains shared test helpers.
package testutils

import "go.uber.org/goleak"

// VerifyTestMain verifies that no goroutines leak from a package's tests.
func VerifyTestMain(m goleak.TestingM) {
	goleak.VerifyTestMain(m)
}

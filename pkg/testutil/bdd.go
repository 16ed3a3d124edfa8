package testutil

import "testing"

// Given, When, and Then run a named subtest with a BDD-flavored prefix.
// Scenario tests in this codebase (receipt issuance, duplicate flagging)
// read better as narrated steps than as one flat assertion block.
func Given(t *testing.T, desc string, fn func(t *testing.T)) { step(t, "Given", desc, fn) }

func When(t *testing.T, desc string, fn func(t *testing.T)) { step(t, "When", desc, fn) }

func Then(t *testing.T, desc string, fn func(t *testing.T)) { step(t, "Then", desc, fn) }

func step(t *testing.T, prefix, desc string, fn func(t *testing.T)) {
	t.Helper()
	if !t.Run(prefix+" "+desc, fn) {
		t.FailNow() // later steps depend on earlier ones
	}
}

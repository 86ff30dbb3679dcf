// Package check holds the precondition assertions shared by the allocators.
//
// Every helper panics with an assertion-failure error built by
// github.com/cockroachdb/errors. Callers that recover the panic can
// tell it apart from ordinary errors with errors.HasAssertionFailure.
package check

import "github.com/cockroachdb/errors"

// Precondition panics when cond is false.
func Precondition(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(errors.AssertionFailedf(format, args...))
	}
}

// Live panics when an allocator is used after it has been released.
func Live(released bool, kind string) {
	if released {
		panic(errors.AssertionFailedf("%s: use after Release()", kind))
	}
}

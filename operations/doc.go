/*
Package operations runs deployment work and keeps an audit trail of it.

An Operation performs one side effect, a single function call or view against a NEAR node,
behind a typed handler. A Sequence calls operations in a fixed order and decides what a
failure means for the rest of the run. Each execution is recorded as a Report in a Reporter,
in memory or in a SQL database, whether it succeeded or not.

Nothing is deduplicated. Executing the same operation twice with the same input invokes the
handler twice. Retries only happen when WithRetry is passed.

	op := operations.NewOperation("whitelist-token", semver.MustParse("1.0.0"),
		"Whitelist a token on the factory", handler)

	bundle := operations.NewBundle(ctx, lggr, operations.NewMemoryReporter())
	report, err := operations.ExecuteOperation(bundle, op, deps, input)
*/
package operations

// Package ledger implements the per-base-URL stub state: the ordered call
// history, the explicit mock table and the side-effect table.
//
// A Ledger is pure data plus accessors. It never performs I/O and never decides
// how a request is answered; that is the resolver's job. Tables are keyed by
// (action, path) where action is the lowercased HTTP method and path is the
// request path without query string.
//
//	l := ledger.New(contract)
//	l.RegisterMock("get", "/v2/test", map[string]string{"mock": "call"}, 0)
//	l.RegisterSideEffect("get", "/v2/side", ledger.Sequence(
//	    ledger.Reply(map[string]string{"test": "1"}),
//	    ledger.ReplyStatus(map[string]string{"test": "2"}, 202),
//	))
//
//	calls := l.QueryCalls("post", "")
//
// Side effects are a closed variant: Raise makes every matching call fail with
// the given error, Sequence hands out one scripted response per call and fails
// with ErrSideEffectExhausted once the script runs out.
package ledger

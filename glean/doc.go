// Package glean accumulates facts discovered by a code indexer and writes them
// as a single JSON document in the batch format accepted by the Glean fact
// database ingester.
//
// Facts are collected per predicate in an Output and written exactly once:
//
//	out := glean.New()
//	out.SrcFile(1, "main.go")
//	out.Symbol(2, "scip-go gomod example v1 `main`/main().")
//	if _, err := out.WriteTo(w); err != nil {
//		...
//	}
//
// The produced document is consumed by tooling which compares it byte for
// byte with the output of an older producer, so predicate order, chunk size
// and record order inside each predicate are fixed.
package glean

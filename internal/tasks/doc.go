// package tasks implements the scrape-and-reconcile pipeline behind the
// playlist curator.
//
// The core abstraction is CurationEngine, which assembles each curation kind
// (radio, toptracks, dedup, fusion, suggest) from three stages: the library
// Walker, the Matcher, and the batch Writer. A Controller runs one task at a
// time, owns its state machine, and relays progress updates via channels for
// non-blocking status reporting to the CLI/TUI layer.
//
// Every stage suspends at I/O boundaries: a shared rate limiter is waited
// before each page fetch, search call, and chunk append, and the task context
// is observed at the same points so cancellation takes effect within one
// suspension point.
package tasks

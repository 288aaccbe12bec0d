// Package batch runs the core parser over many independent elementary
// streams concurrently. Independent parser instances over disjoint byte
// ranges share no state, so this package fans them out across a worker
// pool built on golang.org/x/sync/errgroup, the same way prism bounds
// concurrent fan-out work elsewhere in its pipeline.
package batch

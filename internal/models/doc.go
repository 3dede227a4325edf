// package models defines the data model for the curation pipeline.
//
// All values here are created fresh per task invocation and discarded when the
// task ends. [LibrarySnapshot] is the only type with a structural invariant:
// its identifier sets contain no duplicates and no malformed entries.
package models

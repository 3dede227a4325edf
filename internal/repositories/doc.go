// package repositories contains the sqlite-backed response cache.
//
// The cache is a short-TTL, read-through store keyed by request URL. It sits
// outside the pipeline core: the proxy server uses it to avoid refetching the
// same daily playlist page, and expired rows are pruned lazily on read.
package repositories

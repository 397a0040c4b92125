// Package index defines the query interface of the professional search
// index. The matching core treats the index as a black box: it issues
// structured, free-text and neighborhood-scoped queries and consumes scored
// candidate hits. The index/memory sub-package provides an in-process
// implementation used by the CLI and tests.
package index

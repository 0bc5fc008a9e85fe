// Package dynamock provides test doubles for the DynamoDB call surface used
// by the store package.
//
// MockClient is a function-field mock for tests that assert on exact request
// shapes. Fake is an in-memory table that emulates the request subset the
// store actually emits: conditional puts, single-field updates, partition
// prefix queries sorted by sort key, and batch gets with the 100-key limit
// enforced. Fake is not a general DynamoDB emulator; expressions outside
// that subset are rejected.
package dynamock

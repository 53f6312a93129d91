// Package mocks provides centralized mock implementations for testing.
//
// Each mock exposes function fields (for example CreateFn) that override the
// default behavior. Store mocks default to a working in-memory implementation
// so handler and end-to-end tests can exercise real flows without a database.
//
// Usage:
//
//	users := mocks.NewMockUserStore()
//	users.GetByEmailFn = func(ctx context.Context, email string) (*domain.User, error) {
//	    return nil, errors.New("boom")
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Add a compile-time assertion that it satisfies the interface
package mocks

// Package service contains the application use cases: account registration
// and authentication, and the pet post lifecycle. Services orchestrate the
// domain rules, the stores defined in internal/store and attachment storage,
// applying transactional boundaries so every mutating operation is atomic.
//
// Services depend on interfaces only. Concrete stores, the transaction runner,
// password hashing and attachment storage are injected through constructors.
package service

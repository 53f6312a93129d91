// Package domain contains the core business entities, value objects, and
// domain logic of the application: accounts, pet posts, and the validation
// rules applied to pet post form submissions before they reach storage.
// It is independent of any specific infrastructure or delivery mechanism.
package domain

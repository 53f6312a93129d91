// Package uploads stores pet photos on the local filesystem.
//
// Only png, jpg, jpeg and gif files are kept; anything else is dropped
// without error. Stored files get a random prefix so concurrent uploads of
// the same name never collide, and are addressed by a URL reference under
// the configured prefix.
package uploads

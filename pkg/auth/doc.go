// Package auth supplies SMB credentials to the protocol client on demand.
//
// The protocol client calls a Provider whenever it has to authenticate to a
// server or share. The call happens synchronously inside the client's request
// path, so providers must not perform I/O, block, or mutate shared state: they
// only copy configured values into bounded slots.
//
// Slots are bounded by Limits. A configured value longer than its slot is
// truncated to the slot capacity (in bytes, never splitting a UTF-8
// sequence); it is never rejected and never overflows.
//
// Unset credentials mean an anonymous (null) session.
package auth

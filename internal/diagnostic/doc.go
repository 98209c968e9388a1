// Package diagnostic provides the error taxonomy and the structured warning
// collection shared by the mapping reader, the namespace transforms and the
// composition driver.
//
// Key capabilities:
//   - Typed failure kinds (format, schema, conflict, not found, I/O)
//   - errors.Is matching against kind sentinels
//   - Non-fatal warnings collected while reading mapping files
package diagnostic

// Package layer composes quilt mappings on top of intermediary mappings.
//
// A Layer resolves the quilt-mappings and hashed artifacts for one game
// version, merges the quilt mappings with the host-supplied intermediary
// file on their shared "official" namespace, and exports the result keyed
// by intermediary:
//
//	quilt mappings (official -> named)          ----\
//	                                                 merge -> switch source -> keep "named" -> tiny
//	intermediary (obfuscated -> intermediary) -rename-/
//
// The exported file is cached per game version. Consumers always receive the
// cached file as read back from disk, never the in-memory merge.
package layer

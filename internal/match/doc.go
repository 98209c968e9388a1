// Package match provides edit-distance helpers used to suggest the intended
// namespace when a transform names one that does not exist.
package match

// Package normalize decodes loosely typed values from stored documents into
// strict Go values.
//
// Every function here reports failure with a boolean rather than an error.
// Stored data is allowed to be messy and callers substitute a default when a
// value cannot be decoded, so nothing in this package ever fails a request.
package normalize

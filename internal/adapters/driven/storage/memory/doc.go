// Package memory provides in-memory implementations of the driven
// storage and collaborator ports. Used in tests and as lightweight
// defaults when persistence is not required.
package memory

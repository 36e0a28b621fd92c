// Package utils holds small helpers shared by the orgsignal packages:
// panic recovery at API boundaries and a bounded worker pool for batch
// document processing.
package utils

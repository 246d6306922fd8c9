// Package scene handles job source text: sanitization, entry-point discovery,
// quality preset mapping, and artifact extension acceptance.
package scene

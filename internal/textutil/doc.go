// Package textutil provides filename sanitization and the invisible-formatting
// stripper applied to job source text before dispatch.
package textutil

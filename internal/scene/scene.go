package scene

import (
	"regexp"
	"strings"

	"sceneforge/internal/services"
	"sceneforge/internal/textutil"
)

// classDecl matches Python class declarations with an explicit base list.
var classDecl = regexp.MustCompile(`(?m)^\s*class\s+(\w+)\s*\(([^)]*)\)\s*:`)

// Sanitize strips invisible formatting code points that corrupt downstream
// text shaping and normalizes the source text. Always applied before the
// source is written to the job script.
func Sanitize(source string) string {
	return textutil.StripInvisible(source)
}

// EntryPoint discovers the scene class the renderer should run. Classes whose
// base list mentions Scene are preferred; otherwise the first declared class
// is used, mirroring the renderer's own lookup order. Returns ErrValidation
// when the source declares no usable class.
func EntryPoint(source string) (string, error) {
	matches := classDecl.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrValidation, "scene", "entry point", "no scene class found", nil)
	}
	for _, m := range matches {
		if strings.Contains(m[2], "Scene") {
			return m[1], nil
		}
	}
	return matches[0][1], nil
}

// encodingHeader is prepended to job scripts whose first two lines carry no
// coding declaration, so non-ASCII source renders correctly on every host.
const encodingHeader = "#!/usr/bin/env python\n# -*- coding: utf-8 -*-\n"

// EnsureEncodingHeader returns the source with a UTF-8 coding declaration,
// adding one only when the first two lines do not already declare one.
func EnsureEncodingHeader(source string) string {
	lines := strings.SplitN(source, "\n", 3)
	for i := 0; i < len(lines) && i < 2; i++ {
		if strings.Contains(lines[i], "coding") || strings.Contains(lines[i], "encoding") {
			return source
		}
	}
	return encodingHeader + source
}

// mediaExtensions are the artifact types accepted by completion watchers.
var mediaExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".webm": {},
	".gif":  {},
	".png":  {},
}

// AcceptedArtifact reports whether the filename carries an accepted media
// extension.
func AcceptedArtifact(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	_, ok := mediaExtensions[strings.ToLower(name[idx:])]
	return ok
}

// PartialMarker names the renderer's partial movie directory. Paths containing
// it are never candidates: they hold per-animation fragments that exist long
// before the combined artifact.
const PartialMarker = "partial_movie_files"

package scene

import (
	"regexp"
	"strings"
)

// qualityPreset maps a user-facing quality name to its renderer flag.
type qualityPreset struct {
	Flag   string
	Width  int
	Height int
}

var qualityPresets = map[string]qualityPreset{
	"8K":    {Flag: "-qk", Width: 7680, Height: 4320},
	"4K":    {Flag: "-qk", Width: 3840, Height: 2160},
	"1440p": {Flag: "-qp", Width: 2560, Height: 1440},
	"1080p": {Flag: "-qh", Width: 1920, Height: 1080},
	"720p":  {Flag: "-qm", Width: 1280, Height: 720},
	"480p":  {Flag: "-ql", Width: 854, Height: 480},
}

var customResolution = regexp.MustCompile(`^\d{2,5}x\d{2,5}$`)

const fallbackQuality = "720p"

// QualityFlag converts a quality preset or WxH custom resolution into the
// renderer flag. Unknown values fall back to 720p.
func QualityFlag(quality string) string {
	quality = strings.TrimSpace(quality)
	if preset, ok := qualityPresets[quality]; ok {
		return preset.Flag
	}
	if customResolution.MatchString(strings.ToLower(quality)) {
		return "-r" + strings.ToLower(quality)
	}
	return qualityPresets[fallbackQuality].Flag
}

// KnownQuality reports whether quality names a preset or custom resolution.
func KnownQuality(quality string) bool {
	quality = strings.TrimSpace(quality)
	if _, ok := qualityPresets[quality]; ok {
		return true
	}
	return customResolution.MatchString(strings.ToLower(quality))
}

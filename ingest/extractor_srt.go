package ingest

import (
	"regexp"
	"strings"
)

var (
	srtTagRe     = regexp.MustCompile(`<[^>]+>`)
	srtSpeakerRe = regexp.MustCompile(`[\[(][^\])]*:[\])]`)
	srtSoundRe   = regexp.MustCompile(`(?i)[\[(](music|applause|laughter|sound|noise|sfx|♪)[^\])]*[\])]`)
)

// SRTExtractor extracts spoken text from SRT subtitle files, dropping
// sequence numbers, timestamps, markup tags, speaker labels, and sound
// effect annotations. Lecture transcripts and video captions come through
// as one continuous text.
type SRTExtractor struct{}

func (SRTExtractor) Extract(content []byte) (ExtractResult, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	blocks := strings.Split(strings.TrimSpace(text), "\n\n")

	var cues []string
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		// A cue is sequence number, timestamp, then one or more text lines.
		if len(lines) < 3 {
			continue
		}
		if !strings.Contains(lines[1], "-->") {
			continue
		}
		cue := cleanSubtitleText(strings.Join(lines[2:], " "))
		if cue != "" {
			cues = append(cues, cue)
		}
	}

	return ExtractResult{Text: CleanText(strings.Join(cues, " "))}, nil
}

func cleanSubtitleText(text string) string {
	text = srtTagRe.ReplaceAllString(text, "")
	text = srtSoundRe.ReplaceAllString(text, "")
	text = srtSpeakerRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Package brief extracts the verdict from a model's final investigation brief.
//
// Sources are tried from most to least structured: the delimited verdict trailer, then
// the labelled sections of the brief, then a scan of the whole text. A field that no
// source yields falls back to a default and marks the result ambiguous.
package brief

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Cyclone1070/fraudinv/internal/investigation"
)

const (
	DefaultConfidence     = 0.5
	DefaultRecommendation = investigation.Verify
)

// Source names where a field was found.
type Source string

const (
	SourceTrailer Source = "trailer"
	SourceSection Source = "section"
	SourceScan    Source = "scan"
	SourceDefault Source = "default"
)

type Result struct {
	Confidence           float64
	Recommendation       investigation.Recommendation
	ConfidenceSource     Source
	RecommendationSource Source
	Ambiguous            bool
}

var (
	trailerRe = regexp.MustCompile(`(?is)` + investigation.VerdictBegin + `(.*?)` + investigation.VerdictEnd)

	// Labels tolerate markdown emphasis around the label and value. An echoed option list
	// such as "[ESCALATE | VERIFY] -> DISMISS" is skipped to the value after it; group 2
	// catches a value that is itself a member of such a list.
	labelledRecRe = regexp.MustCompile(`(?i)\bRECOMMENDATION[*_\s]*:[*_\s]*` +
		`(?:\[[^\]\n]*\][ \t]*(?:->|=>|→|:)?[*_\s]*)?\[?` +
		`(ESCALATE|VERIFY|MONITOR|DISMISS)\b([ \t]*\|[ \t]*(?:ESCALATE|VERIFY|MONITOR|DISMISS))?`)
	labelledConfRe   = regexp.MustCompile(`(?i)\bCONFIDENCE(?:[ _]SCORE)?[*_\s]*:[*_\s]*` + scoreGroup)
	sectionScoreRe   = regexp.MustCompile(`(?i)\bSCORE[*_\s]*:[*_\s]*` + scoreGroup)
	assessmentRe     = regexp.MustCompile(`(?i)CONFIDENCE ASSESSMENT[*_\s]*:?`)
	confScoreLabelRe = regexp.MustCompile(`(?i)\bCONFIDENCE SCORE[*_\s]*:[*_\s]*` + scoreGroup)
	sectionHeaderRe  = regexp.MustCompile(`(?m)^[ \t#*_]*([A-Z][A-Z ]{3,})[*_]*:`)

	naiveScoreRe = regexp.MustCompile(`Score:\s*(0\.\d+|1\.0)`)
)

// sectionFields are labels inside the confidence section that do not end it.
var sectionFields = map[string]bool{
	"SCORE":            true,
	"CONFIDENCE SCORE": true,
	"REASONING":        true,
}

// scoreGroup captures any decimal; firstScore rejects values outside [0, 1].
const scoreGroup = `(\d+(?:\.\d+)?|\.\d+)`

// Parse never fails; missing fields take their defaults.
func Parse(text string) Result {
	r := Result{
		Confidence:           DefaultConfidence,
		Recommendation:       DefaultRecommendation,
		ConfidenceSource:     SourceDefault,
		RecommendationSource: SourceDefault,
	}

	if block, ok := trailer(text); ok {
		if rec, ok := lastRecommendation(labelledRecRe, block); ok {
			r.Recommendation, r.RecommendationSource = rec, SourceTrailer
		}
		if score, ok := firstScore(labelledConfRe, block); ok {
			r.Confidence, r.ConfidenceSource = score, SourceTrailer
		}
	}

	if r.ConfidenceSource == SourceDefault {
		if score, ok := sectionConfidence(text); ok {
			r.Confidence, r.ConfidenceSource = score, SourceSection
		}
	}
	if r.RecommendationSource == SourceDefault {
		if rec, ok := lastRecommendation(labelledRecRe, text); ok {
			r.Recommendation, r.RecommendationSource = rec, SourceSection
		}
	}

	if r.ConfidenceSource == SourceDefault {
		if score, ok := firstScore(naiveScoreRe, text); ok {
			r.Confidence, r.ConfidenceSource = score, SourceScan
		}
	}
	if r.RecommendationSource == SourceDefault {
		if rec, ok := scanKeywords(text); ok {
			r.Recommendation, r.RecommendationSource = rec, SourceScan
		}
	}

	r.Ambiguous = r.ConfidenceSource == SourceDefault || r.RecommendationSource == SourceDefault
	return r
}

// trailer returns the body of the last verdict block.
func trailer(text string) (string, bool) {
	matches := trailerRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}

func sectionConfidence(text string) (float64, bool) {
	if loc := assessmentRe.FindStringIndex(text); loc != nil {
		body := text[loc[1]:]
		for _, h := range sectionHeaderRe.FindAllStringSubmatchIndex(body, -1) {
			if !sectionFields[strings.TrimSpace(body[h[2]:h[3]])] {
				body = body[:h[0]]
				break
			}
		}
		if score, ok := firstScore(sectionScoreRe, body); ok {
			return score, true
		}
	}
	return firstScore(confScoreLabelRe, text)
}

// firstScore returns the first match that lies in [0, 1].
func firstScore(re *regexp.Regexp, text string) (float64, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v >= 0 && v <= 1 {
			return v, true
		}
	}
	return 0, false
}

// lastRecommendation returns the final labelled value, ignoring members of an option list.
func lastRecommendation(re *regexp.Regexp, text string) (investigation.Recommendation, bool) {
	matches := re.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i][2] != "" {
			continue
		}
		if rec, ok := investigation.ParseRecommendation(matches[i][1]); ok {
			return rec, true
		}
	}
	return "", false
}

// scanKeywords returns the first keyword present in priority order, wherever it appears.
func scanKeywords(text string) (investigation.Recommendation, bool) {
	for _, rec := range investigation.Recommendations {
		if strings.Contains(text, string(rec)) {
			return rec, true
		}
	}
	return "", false
}

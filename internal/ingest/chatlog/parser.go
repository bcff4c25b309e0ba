// Package chatlog proposes movement names found in exported chat logs.
package chatlog

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/claude/pocketlifts/internal/ingest"
)

const maxLineBytes = 1 << 20

var (
	// bracketPrefixRe matches: [1/2/24, 10:04:11] or [2024-01-02 10:04]
	bracketPrefixRe = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)

	// dashPrefixRe matches: 1/2/24, 10:04 PM - or 2024-01-02 10:04 -
	dashPrefixRe = regexp.MustCompile(`^\s*\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4},?\s+\d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp]\.?[Mm]\.?)?\s+[-–]\s+`)

	// senderRe matches the "Name: " that follows a timestamp prefix.
	senderRe = regexp.MustCompile(`^[^:\d]{1,40}:\s+`)

	// tagRe matches a whole message: mv: Overhead Press / Movement: Front Squat
	tagRe = regexp.MustCompile(`(?i)^(?:mv|movement)\s*:\s*(.+)$`)

	// forwardRe matches: Bench Press 135x5 / Squat 100 kg @ 3
	forwardRe = regexp.MustCompile(`(?i)^(.+?)\s+\d+(?:\.\d+)?\s*(?:lbs?|kgs?|#)?\s*(?:x|×|@)\s*\d+\b`)

	// reverseRe matches: 135x5 Bench Press
	reverseRe = regexp.MustCompile(`(?i)^\d+(?:\.\d+)?\s*(?:lbs?|kgs?|#)?\s*(?:x|×|@)\s*\d+\s+(.+)$`)
)

// KnownLifts are matched verbatim anywhere in a line when no explicit form
// applies.
var KnownLifts = []string{
	"Back Squat",
	"Barbell Row",
	"Bench Press",
	"Bicep Curl",
	"Chin Up",
	"Clean and Jerk",
	"Deadlift",
	"Dip",
	"Face Pull",
	"Front Squat",
	"Hip Thrust",
	"Incline Bench Press",
	"Lat Pulldown",
	"Leg Press",
	"Lunge",
	"Military Press",
	"Overhead Press",
	"Pendlay Row",
	"Power Clean",
	"Pull Up",
	"Push Press",
	"Romanian Deadlift",
	"Snatch",
	"Squat",
	"Tricep Extension",
}

var knownLiftRes = compileKnown(KnownLifts)

type knownLift struct {
	name string
	re   *regexp.Regexp
}

func compileKnown(names []string) []knownLift {
	out := make([]knownLift, len(names))
	for i, n := range names {
		out[i] = knownLift{name: n, re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`)}
	}
	return out
}

// Parse reads a whole chat export and returns the candidate movement names.
func Parse(r io.Reader) (ingest.Result, error) {
	return ParseContext(context.Background(), r)
}

// ParseContext is Parse with cancellation checked between lines.
func ParseContext(ctx context.Context, r io.Reader) (ingest.Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var res ingest.Result
	seen := make(map[string]string)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return ingest.Result{}, err
		}
		res.LinesRead++
		names := ParseLine(scanner.Text())
		if len(names) > 0 {
			res.LinesMatched++
		}
		for _, n := range names {
			key := strings.ToLower(n)
			if _, ok := seen[key]; !ok {
				seen[key] = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return ingest.Result{}, fmt.Errorf("reading chat log: %w", err)
	}

	res.Candidates = make([]string, 0, len(seen))
	for _, n := range seen {
		res.Candidates = append(res.Candidates, n)
	}
	SortNames(res.Candidates)
	return res, nil
}

// ParseLine returns the candidate names on a single line.
func ParseLine(line string) []string {
	text, hadPrefix := stripPrefix(line)
	if text == "" {
		return nil
	}

	// A prefixed message may or may not carry a sender, so the tag form is
	// tried on both sides of the sender strip.
	if name := matchTag(text); name != "" {
		return []string{name}
	}
	if hadPrefix {
		text = senderRe.ReplaceAllString(text, "")
		if name := matchTag(text); name != "" {
			return []string{name}
		}
	}

	if m := forwardRe.FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" {
			return []string{name}
		}
	}
	if m := reverseRe.FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" {
			return []string{name}
		}
	}
	return matchKnown(text)
}

// SortNames orders names case-insensitively, falling back to byte order
// for names that differ only in case.
func SortNames(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

func matchTag(text string) string {
	if m := tagRe.FindStringSubmatch(text); m != nil {
		return cleanName(m[1])
	}
	return ""
}

func stripPrefix(line string) (string, bool) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
	for _, re := range []*regexp.Regexp{bracketPrefixRe, dashPrefixRe} {
		if loc := re.FindStringIndex(line); loc != nil {
			return strings.TrimSpace(line[loc[1]:]), true
		}
	}
	return line, false
}

// matchKnown returns known lifts found in text, dropping any match that is
// part of a longer match (Squat inside Front Squat).
func matchKnown(text string) []string {
	type hit struct {
		name       string
		start, end int
	}
	var hits []hit
	for _, k := range knownLiftRes {
		for _, loc := range k.re.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{name: k.name, start: loc[0], end: loc[1]})
		}
	}

	var names []string
	for i, h := range hits {
		covered := false
		for j, o := range hits {
			if i != j && o.start <= h.start && h.end <= o.end && o.end-o.start > h.end-h.start {
				covered = true
				break
			}
		}
		if !covered && !slices.Contains(names, h.name) {
			names = append(names, h.name)
		}
	}
	return names
}

// cleanName trims punctuation and collapses whitespace. Names without a
// letter are rejected.
func cleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("-–:;,.!?*_\"'", r)
	})
	if len([]rune(s)) > 60 || !strings.ContainsFunc(s, unicode.IsLetter) {
		return ""
	}
	return s
}

// Package freq holds the pure parsing helpers for vendor-formatted
// frequency references: base-frequency extraction, distinguished-name
// decomposition and retune-target classification.
package freq

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

var (
	dnTokenRe    = regexp.MustCompile(`(?i)(nrfreqrelation|gutranfreqrelation(?:id)?)\s*=\s*([^,\s]+)`)
	leadingInt   = regexp.MustCompile(`^(\d+)`)
	digitRun     = regexp.MustCompile(`(\d+)`)
	syncFreqRe   = regexp.MustCompile(`GUtranSyncSignalFrequency=(\d+)-`)
	autoPrefixRe = regexp.MustCompile(`(?i)^auto_?`)
)

// Plan carries the configured pre and post frequency values of the retune
// campaign. Classification is purely frequency-driven; where a node stands
// in its own retune journey is the scope resolver's concern, not this one's.
type Plan struct {
	PreValue  string
	PostValue string
}

// ClassifyTarget maps a base frequency to the side of the retune it points
// at. Anything that is not exactly the configured pre or post value is
// Unknown, including empty input.
func (p Plan) ClassifyTarget(frequency string) domain.Target {
	switch strings.TrimSpace(frequency) {
	case "":
		return domain.TargetUnknown
	case strings.TrimSpace(p.PreValue):
		return domain.TargetToPre
	case strings.TrimSpace(p.PostValue):
		return domain.TargetToPost
	default:
		return domain.TargetUnknown
	}
}

// ExtractBase recovers the canonical numeric frequency token from a vendor
// reference string. It understands three shapes:
//
//	NRFreqRelation=648672            → 648672
//	GUtranFreqRelationId=auto647328_120 → 647328
//	653952-30-20-0-1                 → 653952
//
// The empty string is returned when no numeric token exists.
func ExtractBase(reference string) string {
	s := strings.TrimSpace(reference)
	if s == "" {
		return ""
	}

	if m := dnTokenRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimRight(m[2], ".,);")
	}

	s = autoPrefixRe.ReplaceAllString(s, "")
	if m := leadingInt.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	// Last resort: any digit run beats returning the full DN.
	if m := digitRun.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// ParseInt parses the leading digits of a value as an integer, the way
// "653952-30-20-0-1" reads as 653952. The boolean is false when the value
// has no leading digits.
func ParseInt(value string) (int, bool) {
	m := leadingInt.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Band is an inclusive ARFCN/SSB range, e.g. the N77 band [646600, 660000].
type Band struct {
	Low  int
	High int
}

// Contains reports whether the value's leading integer falls in the band.
func (b Band) Contains(value string) bool {
	n, ok := ParseInt(value)
	return ok && n >= b.Low && n <= b.High
}

// ExternalRef is a decomposed external/neighbor cell reference.
type ExternalRef struct {
	FunctionID string
	CellID     string
}

// DecomposeNR splits an NR neighbor reference (nRCellRef / neighborCellRef)
// into its external function and cell identifiers. The boolean is false on
// malformed input; callers log a skip and move on, never error.
func DecomposeNR(reference string) (ExternalRef, bool) {
	return decompose(reference, "ExternalGNBCUCPFunction", "ExternalNRCellCU")
}

// DecomposeGU splits an LTE-side neighbor reference into its external
// GNodeB function and GUtran cell identifiers.
func DecomposeGU(reference string) (ExternalRef, bool) {
	return decompose(reference, "ExternalGNodeBFunction", "ExternalGUtranCell")
}

func decompose(reference, functionKey, cellKey string) (ExternalRef, bool) {
	ref := ExternalRef{
		FunctionID: dnValue(reference, functionKey),
		CellID:     dnValue(reference, cellKey),
	}
	if ref.FunctionID == "" {
		return ExternalRef{}, false
	}
	return ref, true
}

// dnValue extracts the value of one key from a distinguished name such as
// "SubNetwork=X,ExternalGNBCUCPFunction=430090,ExternalNRCellCU=430090_1".
func dnValue(reference, key string) string {
	s := strings.TrimSpace(reference)
	if s == "" {
		return ""
	}
	for _, part := range strings.Split(s, ",") {
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ExtractSyncFrequencies collects every ARFCN embedded in a
// GUtranSyncSignalFrequency=XXXX-... reference list.
func ExtractSyncFrequencies(reference string) []string {
	matches := syncFreqRe.FindAllStringSubmatch(reference, -1)
	seen := map[string]struct{}{}
	var out []string
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// ContainsToken reports whether the text contains the number as a whole
// numeric token (not as a substring of a longer digit run). Profile ids
// embed the frequency between non-digit separators.
func ContainsToken(text string, number int) bool {
	want := strconv.Itoa(number)
	for _, run := range digitRun.FindAllString(text, -1) {
		if run == want {
			return true
		}
	}
	return false
}

// ReplaceToken substitutes every whole numeric token equal to old with new,
// producing the expected post-retune replica of a profile identifier.
func ReplaceToken(text string, old, new int) string {
	oldTok := strconv.Itoa(old)
	return digitRun.ReplaceAllStringFunc(text, func(run string) string {
		if run == oldTok {
			return strconv.Itoa(new)
		}
		return run
	})
}

// LeadingID extracts the leading numeric identifier of a node name, e.g.
// "430090_ALPHA" → "430090". External references embed these identifiers,
// which is how targets are matched back to scoped nodes.
func LeadingID(nodeName string) string {
	if m := leadingInt.FindStringSubmatch(strings.TrimSpace(nodeName)); m != nil {
		return m[1]
	}
	return ""
}

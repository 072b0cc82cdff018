package blobtext

import (
	"strings"
	"unicode"
)

// Typedstream payloads interleave real text with serializer vocabulary.
// These exact strings are framework type names observed in archived bodies
// and never message content.
var noiseTokens = map[string]bool{
	"NSString":                  true,
	"NSMutableString":           true,
	"NSAttributedString":        true,
	"NSMutableAttributedString": true,
	"NSObject":                  true,
	"NSDictionary":              true,
	"NSMutableDictionary":       true,
	"NSNumber":                  true,
	"NSValue":                   true,
	"NSData":                    true,
	"NSMutableData":             true,
	"NSAttributeInfo":           true,
	"NSArray":                   true,
	"NSMutableArray":            true,
}

const (
	// boilerplatePrefix opens every typedstream payload.
	boilerplatePrefix = "streamtyped"
	// attributeMarker starts the per-part attribute section that follows
	// the message text in an archived body.
	attributeMarker = "__kIM"
	// mutableStringNoise leaks into extracted runs when the serializer
	// splices class records into the middle of the text.
	mutableStringNoise = "NSMutableString"
	// maxRuns bounds how much of a large payload is scanned into text.
	maxRuns = 20
	// minRunLen is the shortest printable run worth keeping.
	minRunLen = 3
)

// FromRawScan extracts likely message text from an undecodable payload by
// scanning its bytes for runs of printable ASCII. This is a best-effort
// heuristic tuned against one archive format version; check LooksGarbled
// on the result before presenting it.
func FromRawScan(payload []byte) (text string, ok bool) {
	runs := printableRuns(payload)
	if len(runs) == 0 {
		return "", false
	}

	kept := runs[:0]
	for _, r := range runs {
		if noiseTokens[r] {
			continue
		}
		kept = append(kept, r)
		if len(kept) >= maxRuns {
			break
		}
	}
	if len(kept) == 0 {
		return "", false
	}

	joined := strings.Join(kept, " ")
	joined = strings.TrimPrefix(joined, boilerplatePrefix)
	if idx := strings.Index(joined, attributeMarker); idx >= 0 {
		joined = joined[:idx]
	}
	joined = strings.ReplaceAll(joined, mutableStringNoise, "")
	joined = strings.TrimLeftFunc(joined, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	joined = strings.TrimSpace(joined)

	if joined == "" {
		return "", false
	}
	return joined, true
}

// printableRuns returns the maximal runs of printable ASCII in payload
// that are at least minRunLen bytes long, in order of appearance.
func printableRuns(payload []byte) []string {
	var runs []string
	start := -1
	for i, b := range payload {
		if b >= 0x20 && b <= 0x7e {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minRunLen {
			runs = append(runs, string(payload[start:i]))
		}
		start = -1
	}
	if start >= 0 && len(payload)-start >= minRunLen {
		runs = append(runs, string(payload[start:]))
	}
	return runs
}

package handle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Contact is a parsed vCard entry: one display name and the normalized
// handles (phones and emails) it was reachable at.
type Contact struct {
	Name    string
	Handles []string
}

// ParseVCardFile reads a .vcf file and returns handle → name pairs.
// Handles vCard 2.1 and 3.0. The first name seen for a handle wins, so a
// handle shared between cards keeps its earliest owner.
func ParseVCardFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseVCard(f)
}

// ParseVCard parses vCard data from a reader into handle → name pairs.
// Malformed cards are skipped rather than failing the whole parse.
func ParseVCard(r io.Reader) (map[string]string, error) {
	contacts := make(map[string]string)

	scanner := bufio.NewScanner(r)
	// Long lines are common (base64-encoded photos).
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *Contact
	var structuredName string // N: fallback, used only when FN is absent

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.EqualFold(line, "BEGIN:VCARD"):
			current = &Contact{}
			structuredName = ""

		case strings.EqualFold(line, "END:VCARD"):
			if current != nil {
				name := current.Name
				if name == "" {
					name = structuredName
				}
				if name == "" {
					name = "Unknown"
				}
				for _, h := range current.Handles {
					if _, seen := contacts[h]; !seen {
						contacts[h] = name
					}
				}
			}
			current = nil

		case current == nil:
			continue

		case hasProperty(line, "FN"):
			if v := propertyValue(line); v != "" {
				current.Name = v
			}

		case hasProperty(line, "N"):
			// N:Last;First;Middle;... so join the first two components.
			parts := strings.Split(propertyValue(line), ";")
			var kept []string
			for _, p := range parts[:min(2, len(parts))] {
				if p = strings.TrimSpace(p); p != "" {
					kept = append(kept, p)
				}
			}
			structuredName = strings.Join(kept, " ")

		case hasProperty(line, "TEL"), hasProperty(line, "EMAIL"):
			if h := Normalize(propertyValue(line)); h != "" {
				current.Handles = append(current.Handles, h)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan vcard: %w", err)
	}

	return contacts, nil
}

// hasProperty reports whether a vCard line carries the given property,
// accounting for parameterized forms like "TEL;TYPE=CELL:+1..." and
// "FN;CHARSET=UTF-8:...".
func hasProperty(line, prop string) bool {
	if len(line) < len(prop)+1 {
		return false
	}
	if !strings.EqualFold(line[:len(prop)], prop) {
		return false
	}
	next := line[len(prop)]
	return next == ':' || next == ';'
}

// propertyValue extracts the value after the first colon.
func propertyValue(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}

// Package slots extracts appointment slots from free-form bot text.
//
// The backend renders offered slots into the answer text using a fixed
// layout: a line with a calendar glyph introduces a day, and subsequent
// bulleted lines carry a time plus an "ID: slot_..." token. Parsing is
// best-effort; text that doesn't match yields no slots, never an error.
package slots

import (
	"regexp"
	"strings"
)

// Slot is a bookable appointment time offered by the backend.
type Slot struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

const slotMarker = "Available appointment slots"

var (
	datePattern = regexp.MustCompile(`📅\s+(.*?)(?:,\s+(\d{4}))?$`)
	timePattern = regexp.MustCompile(`(?i)([0-9]+:[0-9]+\s+[AP]M)`)
	idPattern   = regexp.MustCompile(`ID:\s+(slot_[\w-]+)`)
)

// Parse scans bot answer text for appointment slots. It returns nil when
// the text carries no slot section or no line matches the expected layout.
func Parse(text string) []Slot {
	if !strings.Contains(text, slotMarker) {
		return nil
	}

	var out []Slot
	var currentDay, currentDate string

	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "📅") {
			if m := datePattern.FindStringSubmatch(line); m != nil {
				currentDay = m[1]
				currentDate = currentDay
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "•") && !strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "-") {
			continue
		}

		timeMatch := timePattern.FindStringSubmatch(line)
		idMatch := idPattern.FindStringSubmatch(line)
		if timeMatch == nil || idMatch == nil {
			continue
		}
		out = append(out, Slot{
			ID:        idMatch[1],
			Day:       currentDay,
			Date:      currentDate,
			Time:      timeMatch[1],
			Available: true,
		})
	}
	return out
}

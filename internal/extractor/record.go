// record.go - The five-field appointment record and its parsing strategies

package extractor

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Record is the structured appointment data pulled from a document.
// All five keys are always present; nil marks information the document
// did not contain.
type Record struct {
	Date       *string `json:"date"`
	Time       *string `json:"time"`
	Location   *string `json:"location"`
	Department *string `json:"department"`
	Doctor     *string `json:"doctor"`
}

// FoundCount returns how many of the five fields hold a value
func (r Record) FoundCount() int {
	count := 0
	for _, v := range []*string{r.Date, r.Time, r.Location, r.Department, r.Doctor} {
		if v != nil {
			count++
		}
	}
	return count
}

// Field returns a pointer to the named field, or nil for unknown keys
func (r *Record) Field(key string) **string {
	switch key {
	case "date":
		return &r.Date
	case "time":
		return &r.Time
	case "location":
		return &r.Location
	case "department":
		return &r.Department
	case "doctor":
		return &r.Doctor
	}
	return nil
}

// fieldKeys is the fixed key set, in prompt order
var fieldKeys = []string{"date", "time", "location", "department", "doctor"}

// fallbackPatterns match `<key><optional ws/colon/quote><value>` shaped
// substrings, the value ending at the next comma, quote, or closing brace.
var fallbackPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(fieldKeys))
	for _, key := range fieldKeys {
		patterns[key] = regexp.MustCompile(`(?i)\b` + key + `\b"?\s*:?\s*"?([^",}]+)`)
	}
	return patterns
}()

// notFoundSentinels are model spellings of "no value" that normalize to nil
var notFoundSentinels = map[string]bool{
	"":          true,
	"null":      true,
	"none":      true,
	"n/a":       true,
	"not found": true,
	"unknown":   true,
}

// ParseRecord turns a raw model response into a Record. The primary path is
// a direct JSON decode; only a structural parse failure triggers the
// pattern-search fallback (reported via the second return value). The two
// strategies are deliberately separate code paths.
func ParseRecord(raw string) (Record, bool) {
	cleaned := trimCodeFence(raw)

	var record Record
	if err := json.Unmarshal([]byte(cleaned), &record); err == nil {
		normalizeRecord(&record)
		return record, false
	}

	return fallbackParse(cleaned), true
}

// fallbackParse recovers whatever fields it can, one independent pattern
// search per key. Partial extraction is expected; unmatched keys stay nil.
func fallbackParse(text string) Record {
	var record Record
	for _, key := range fieldKeys {
		match := fallbackPatterns[key].FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value := strings.TrimSpace(match[1])
		if isNotFound(value) {
			continue
		}
		*record.Field(key) = &value
	}
	return record
}

// normalizeRecord maps sentinel strings to nil and trims whitespace
func normalizeRecord(record *Record) {
	for _, key := range fieldKeys {
		field := record.Field(key)
		if *field == nil {
			continue
		}
		value := strings.TrimSpace(**field)
		if isNotFound(value) {
			*field = nil
			continue
		}
		*field = &value
	}
}

func isNotFound(value string) bool {
	return notFoundSentinels[strings.ToLower(value)]
}

// trimCodeFence strips markdown ```json fences some models wrap around
// their output
func trimCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

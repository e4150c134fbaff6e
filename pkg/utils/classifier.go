package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"skywage-service/internal/domain/entity"
	"skywage-service/pkg/logger"
)

// Classification is the result of classifying one roster row. Confidence
// below 1 still carries a best-guess type; ambiguity warns, never blocks.
type Classification struct {
	DutyType      entity.DutyType
	Confidence    float64
	Reasoning     string
	Warnings      []string
	FlightNumbers []string
	Sectors       []string
}

var (
	flightNumberPattern = regexp.MustCompile(`\bFZ\s?\d{1,4}\b`)
	sectorPattern       = regexp.MustCompile(`\b([A-Z]{3})\s*-\s*([A-Z]{3})\b`)
)

// keywordRule maps an explicit roster vocabulary hit to a duty type.
// Evaluated in order; first hit wins at full confidence.
type keywordRule struct {
	keywords []string
	variant  entity.DutyType
	reason   string
}

// ASBY precedes SBY so "AIRPORT STANDBY" is not swallowed by the home
// standby rule; multi-word keywords match as substrings, single tokens
// match whole words only.
var keywordRules = []keywordRule{
	{[]string{"ASBY", "AIRPORT STANDBY"}, entity.DutyAsby, "airport standby keyword"},
	{[]string{"SBY", "HOME STANDBY", "STANDBY"}, entity.DutySby, "home standby keyword"},
	{[]string{"RECURRENT", "TRAINING"}, entity.DutyRecurrent, "recurrent training keyword"},
	{[]string{"BUSINESS PROMOTION"}, entity.DutyBusinessPromotion, "business promotion keyword"},
	{[]string{"ADDITIONAL DAY OFF", "DAY OFF", "REST DAY", "OFF"}, entity.DutyOff, "off day keyword"},
}

// DutyClassifier maps duty-code and sector text onto the duty type enum.
type DutyClassifier struct {
	homeBase string
	logger   logger.Logger
}

// NewDutyClassifier creates a classifier anchored at the given home base.
func NewDutyClassifier(homeBase string, logger logger.Logger) *DutyClassifier {
	return &DutyClassifier{
		homeBase: strings.ToUpper(homeBase),
		logger:   logger,
	}
}

// Classify decides the duty type for one calendar row from its duty-code
// text and sector/details text.
func (c *DutyClassifier) Classify(dutyText, detailsText string) Classification {
	combined := strings.ToUpper(strings.TrimSpace(dutyText + " " + detailsText))

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if matchKeyword(combined, kw) {
				return Classification{
					DutyType:   rule.variant,
					Confidence: 1.0,
					Reasoning:  rule.reason,
				}
			}
		}
	}

	flights := flightNumberPattern.FindAllString(combined, -1)
	sectors := c.extractSectors(combined)

	result := c.classifySectors(flights, sectors)
	result.FlightNumbers = flights
	result.Sectors = sectors

	if result.Confidence < 1.0 {
		c.logger.Warn("Low-confidence duty classification",
			"duty", dutyText,
			"type", result.DutyType,
			"confidence", result.Confidence,
			"reasoning", result.Reasoning)
	}
	return result
}

func (c *DutyClassifier) classifySectors(flights, sectors []string) Classification {
	switch {
	case len(sectors) == 0 && len(flights) == 0:
		return Classification{
			DutyType:   entity.DutyUnknown,
			Confidence: 0.2,
			Reasoning:  "no duty keyword, flight number or sector found",
			Warnings:   []string{"row has no recognizable duty content"},
		}

	case len(sectors) == 0:
		return Classification{
			DutyType:   entity.DutyTurnaround,
			Confidence: 0.5,
			Reasoning:  "flight numbers without sector pairs",
			Warnings:   []string{fmt.Sprintf("flight numbers %v have no sectors", flights)},
		}
	}

	firstDep, _ := splitSector(sectors[0])
	_, lastArr := splitSector(sectors[len(sectors)-1])

	if len(sectors) >= 2 && firstDep == c.homeBase && lastArr == c.homeBase {
		conf := 1.0
		if len(flights) == 0 {
			conf = 0.8
		}
		return Classification{
			DutyType:   entity.DutyTurnaround,
			Confidence: conf,
			Reasoning:  "sector chain departs and returns to home base on the same row",
		}
	}

	if len(sectors) == 1 {
		dep, arr := splitSector(sectors[0])
		switch {
		case dep == c.homeBase && arr != c.homeBase:
			return Classification{
				DutyType:   entity.DutyLayover,
				Confidence: 1.0,
				Reasoning:  "single outbound sector with no same-day return",
			}
		case arr == c.homeBase:
			return Classification{
				DutyType:   entity.DutyLayover,
				Confidence: 1.0,
				Reasoning:  "single inbound sector returning to home base",
			}
		default:
			return Classification{
				DutyType:   entity.DutyLayover,
				Confidence: 0.6,
				Reasoning:  "single sector away from home base",
				Warnings:   []string{fmt.Sprintf("sector %s does not touch home base %s", sectors[0], c.homeBase)},
			}
		}
	}

	// Multi-leg row that does not close at home base: treat as a layover leg
	// and let the pairer resolve it.
	return Classification{
		DutyType:   entity.DutyLayover,
		Confidence: 0.7,
		Reasoning:  "multi-sector row does not return to home base",
		Warnings:   []string{"sector chain ends away from home base"},
	}
}

func (c *DutyClassifier) extractSectors(text string) []string {
	matches := sectorPattern.FindAllStringSubmatch(text, -1)
	sectors := make([]string, 0, len(matches))
	for _, m := range matches {
		sectors = append(sectors, m[1]+"-"+m[2])
	}
	return sectors
}

func splitSector(sector string) (string, string) {
	parts := strings.SplitN(sector, "-", 2)
	if len(parts) != 2 {
		return sector, ""
	}
	return parts[0], parts[1]
}

// matchKeyword matches multi-word keywords as substrings and single tokens
// as whole words, so "SBY" does not fire inside "ASBY".
func matchKeyword(text, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if f == keyword {
			return true
		}
	}
	return false
}

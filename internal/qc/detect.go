package qc

import (
	"fmt"
	"regexp"
	"strings"
)

// Contains reports whether text holds any keyword, ignoring case.
// Blank keywords never match.
func Contains(text string, keywords []string) bool {
	return containsLower(strings.ToLower(text), keywords)
}

// CountHits returns how many distinct keywords occur in text, ignoring case.
func CountHits(text string, keywords []string) int {
	t := strings.ToLower(text)
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
	}

	hits := 0
	for k := range seen {
		if strings.Contains(t, k) {
			hits++
		}
	}
	return hits
}

// RegexMatch runs a case-insensitive search. An invalid pattern never matches.
func RegexMatch(text, pattern string) bool {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// containsLower expects t to be lowercased already.
func containsLower(t string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(t, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Detector evaluates the composite signals of a rule set.
type Detector struct {
	rules    RuleSet
	imageExt *regexp.Regexp
}

// NewDetector compiles the patterns in rules.
func NewDetector(rules RuleSet) (*Detector, error) {
	d := &Detector{rules: rules}
	if rules.ImageExtensionPattern != "" {
		re, err := regexp.Compile("(?i)" + rules.ImageExtensionPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: image_extension_pattern: %v", ErrInvalidRuleSet, err)
		}
		d.imageExt = re
	}
	return d, nil
}

// ResolutionStructure requires every resolution header. There is no
// partial credit at this level.
func (d *Detector) ResolutionStructure(text string) bool {
	if len(d.rules.ResolutionHeaders) == 0 {
		return false
	}
	t := strings.ToLower(text)
	for _, h := range d.rules.ResolutionHeaders {
		if !strings.Contains(t, strings.ToLower(h)) {
			return false
		}
	}
	return true
}

// ContactInfo reports a phone number or chat-link token from the contact block.
func (d *Detector) ContactInfo(text string) bool {
	return Contains(text, d.rules.Contact)
}

// EscalationWorkflow requires a hold phrase, at least one strike phrase,
// a closure phrase and the contact block. Only co-occurrence is checked,
// not order of appearance.
func (d *Detector) EscalationWorkflow(text string) bool {
	t := strings.ToLower(text)
	r := d.rules
	if !containsLower(t, r.Hold) {
		return false
	}
	if !containsLower(t, r.Strike1) && !containsLower(t, r.Strike2) && !containsLower(t, r.Strike3) {
		return false
	}
	if !containsLower(t, r.Closure) {
		return false
	}
	return containsLower(t, r.Contact)
}

// Screenshot looks for attachment keywords or an image file extension.
func (d *Detector) Screenshot(text string) bool {
	if Contains(text, d.rules.Screenshot) {
		return true
	}
	return d.imageExt != nil && d.imageExt.MatchString(text)
}

// TeamsConfirmation is strong when a Teams reference and a confirmation
// co-occur, neutral for a Teams reference alone.
func (d *Detector) TeamsConfirmation(text string) Tier {
	t := strings.ToLower(text)
	if !containsLower(t, d.rules.Teams) {
		return TierNone
	}
	if containsLower(t, d.rules.Confirmation) {
		return TierStrong
	}
	return TierNeutral
}

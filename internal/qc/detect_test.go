package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(DefaultRuleSet())
	require.NoError(t, err)
	return d
}

func TestContains(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		keywords []string
		want     bool
	}{
		{"case insensitive", "User CONFIRMED the fix", []string{"user confirmed"}, true},
		{"keyword case ignored", "user confirmed", []string{"User Confirmed"}, true},
		{"no match", "nothing here", []string{"teams"}, false},
		{"empty text", "", []string{"teams"}, false},
		{"blank keyword ignored", "anything", []string{""}, false},
		{"no keywords", "anything", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Contains(tc.text, tc.keywords))
		})
	}
}

func TestCountHits(t *testing.T) {
	routing := []string{"wrong queue", "misrouted", "incorrect routing", "reassign"}

	assert.Equal(t, 0, CountHits("all good", routing))
	assert.Equal(t, 1, CountHits("Sent to WRONG QUEUE, wrong queue again", routing))
	assert.Equal(t, 2, CountHits("misrouted then reassigned", routing))
	assert.Equal(t, 1, CountHits("reassign", []string{"reassign", "REASSIGN"}), "duplicates count once")
}

func TestRegexMatch(t *testing.T) {
	assert.True(t, RegexMatch("see error.PNG", `\.(png|jpe?g)\b`))
	assert.False(t, RegexMatch("png without dot", `\.(png|jpe?g)\b`))
	assert.False(t, RegexMatch("anything", `(`), "invalid pattern never matches")
}

func TestResolutionStructure(t *testing.T) {
	d := newTestDetector(t)

	full := "Issue Reported: VPN down. Probable Cause: driver. Resolution Provided: reinstalled."
	assert.True(t, d.ResolutionStructure(full))
	assert.False(t, d.ResolutionStructure("Issue Reported: VPN down. Probable Cause: driver."))
	assert.False(t, d.ResolutionStructure(""))
}

const (
	holdPhrase    = "I have placed the ticket on hold."
	strikePhrase  = "Strike 1: this is a reminder."
	closurePhrase = "Soft closing the ticket today."
	contactPhrase = "Reach us via Connect Chat or +44 1224 85 1333."
)

func TestEscalationWorkflow(t *testing.T) {
	d := newTestDetector(t)

	cases := []struct {
		name string
		text string
		want bool
	}{
		{"full workflow", holdPhrase + strikePhrase + closurePhrase + contactPhrase, true},
		{"order not checked", contactPhrase + closurePhrase + strikePhrase + holdPhrase, true},
		{"strike 3 only", holdPhrase + "Final notice sent." + closurePhrase + contactPhrase, true},
		{"missing contact", holdPhrase + strikePhrase + closurePhrase, false},
		{"missing hold", strikePhrase + closurePhrase + contactPhrase, false},
		{"missing strike", holdPhrase + closurePhrase + contactPhrase, false},
		{"missing closure", holdPhrase + strikePhrase + contactPhrase, false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.EscalationWorkflow(tc.text))
		})
	}
}

func TestScreenshot(t *testing.T) {
	d := newTestDetector(t)

	assert.True(t, d.Screenshot("Attachment: error"))
	assert.True(t, d.Screenshot("see capture.gif for details"))
	assert.True(t, d.Screenshot("uploaded trace.JPEG"))
	assert.False(t, d.Screenshot("no evidence"))
}

func TestTeamsConfirmation(t *testing.T) {
	d := newTestDetector(t)

	assert.Equal(t, TierStrong, d.TeamsConfirmation("Called on MS Teams, user confirmed."))
	assert.Equal(t, TierNeutral, d.TeamsConfirmation("Pinged on Microsoft Teams."))
	assert.Equal(t, TierNone, d.TeamsConfirmation("thanks for the update"))
	assert.Equal(t, 5, d.TeamsConfirmation("teams thanks").Points())
}

func TestNewDetector_InvalidPattern(t *testing.T) {
	rules := DefaultRuleSet()
	rules.ImageExtensionPattern = "("

	_, err := NewDetector(rules)
	assert.ErrorIs(t, err, ErrInvalidRuleSet)
}

package qc

const (
	passMessage    = "Ticket meets quality standards."
	genericMessage = "Needs improvement."
)

var advice = [numCheckpoints]string{
	CheckpointCategory:      "Reference the ticket category in the resolution notes.",
	CheckpointSubcategory:   "Reference the subcategory in the resolution notes.",
	CheckpointReadPrevious:  "Review previous comments and deployment notes before acting.",
	CheckpointRouting:       "Route the ticket to the correct queue the first time.",
	CheckpointOwnership:     "Keep ownership instead of handing the ticket over early.",
	CheckpointTimely:        "Send the first response to the user sooner.",
	CheckpointPriority:      "Resolve within the target time for the ticket priority.",
	CheckpointEmailFormat:   "Follow the resolution note and email templates, including the contact block.",
	CheckpointTeams:         "Capture the Teams transcript together with the user's confirmation.",
	CheckpointScreenshot:    "Attach screenshots or evidence.",
	CheckpointDocumentShare: "Share documents through the approved location.",
	CheckpointCompliance:    "Use professional language and meet the SLA.",
	CheckpointClientNotes:   "Record the user's confirmation of the resolution.",
}

// Recommend lists coaching messages for checkpoints that scored below the
// neutral tier. A ticket at or above passPercent gets a single pass message.
func Recommend(r Record, passPercent float64) []string {
	if r.Percent >= passPercent {
		return []string{passMessage}
	}
	var out []string
	for _, c := range allCheckpoints {
		if r.Score(c) < TierNeutral.Points() {
			out = append(out, advice[c])
		}
	}
	if len(out) == 0 {
		return []string{genericMessage}
	}
	return out
}

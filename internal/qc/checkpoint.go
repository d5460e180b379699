// Package qc implements the thirteen-checkpoint quality-control rubric
// applied to helpdesk tickets. Every function in this package is pure.
package qc

// Checkpoint identifies one rubric dimension.
type Checkpoint int

const (
	CheckpointCategory Checkpoint = iota
	CheckpointSubcategory
	CheckpointReadPrevious
	CheckpointRouting
	CheckpointOwnership
	CheckpointTimely
	CheckpointPriority
	CheckpointEmailFormat
	CheckpointTeams
	CheckpointScreenshot
	CheckpointDocumentShare
	CheckpointCompliance
	CheckpointClientNotes

	numCheckpoints
)

// MaxPoints is the ceiling of a single checkpoint.
const MaxPoints = 5

// MaxTotal is the fixed ceiling of qc_total.
const MaxTotal = MaxPoints * int(numCheckpoints)

var allCheckpoints = [numCheckpoints]Checkpoint{
	CheckpointCategory,
	CheckpointSubcategory,
	CheckpointReadPrevious,
	CheckpointRouting,
	CheckpointOwnership,
	CheckpointTimely,
	CheckpointPriority,
	CheckpointEmailFormat,
	CheckpointTeams,
	CheckpointScreenshot,
	CheckpointDocumentShare,
	CheckpointCompliance,
	CheckpointClientNotes,
}

var checkpointMeta = [numCheckpoints]struct {
	id, label string
}{
	{"qc_category", "Category Understanding"},
	{"qc_sub_cat", "Subcategory Understanding"},
	{"qc_read_prev", "Read Previous Comments / Deployment Notes"},
	{"qc_routing", "Correct Process Followed (Routing)"},
	{"qc_ownership", "Ownership & Responsibility"},
	{"qc_timely", "Timely Communication"},
	{"qc_priority", "Priority Validation"},
	{"qc_email_format", "Email / KBA Format Guidelines"},
	{"qc_teams", "Teams Transcript / Confirmation"},
	{"qc_screenshot", "Necessary Screenshot Attached"},
	{"qc_doc_share", "Document Sharing (Location)"},
	{"qc_compliance", "Compliance / SLA Adherence"},
	{"qc_client_notes", "Client Notes & Confirmation"},
}

var checkpointByID = func() map[string]Checkpoint {
	m := make(map[string]Checkpoint, numCheckpoints)
	for _, c := range allCheckpoints {
		m[c.ID()] = c
	}
	return m
}()

// Checkpoints returns the checkpoints in rubric order.
func Checkpoints() []Checkpoint {
	out := make([]Checkpoint, numCheckpoints)
	copy(out, allCheckpoints[:])
	return out
}

// ParseCheckpoint looks a checkpoint up by its column id.
func ParseCheckpoint(id string) (Checkpoint, bool) {
	c, ok := checkpointByID[id]
	return c, ok
}

// ID is the output column name, e.g. "qc_category".
func (c Checkpoint) ID() string {
	if c < 0 || c >= numCheckpoints {
		return ""
	}
	return checkpointMeta[c].id
}

// Label is the auditor-facing name.
func (c Checkpoint) Label() string {
	if c < 0 || c >= numCheckpoints {
		return ""
	}
	return checkpointMeta[c].label
}

func (c Checkpoint) String() string {
	return c.ID()
}

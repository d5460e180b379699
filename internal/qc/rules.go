package qc

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidRuleSet = errors.New("invalid rule set")

// RuleSet is the keyword and threshold configuration every detector and
// scorer reads. It is treated as immutable once handed to NewScorer.
type RuleSet struct {
	Hold    []string `yaml:"hold"`
	Strike1 []string `yaml:"strike_1"`
	Strike2 []string `yaml:"strike_2"`
	Strike3 []string `yaml:"strike_3"`
	Closure []string `yaml:"closure"`
	Contact []string `yaml:"contact"`

	ResolutionHeaders []string `yaml:"resolution_headers"`

	Teams        []string `yaml:"teams"`
	Confirmation []string `yaml:"confirmation"`

	Screenshot            []string `yaml:"screenshot"`
	ImageExtensionPattern string   `yaml:"image_extension_pattern"`

	ReadPrevious       []string `yaml:"read_previous"`
	Routing            []string `yaml:"routing"`
	Handover           []string `yaml:"handover"`
	Engagement         []string `yaml:"engagement"`
	DocumentShare      []string `yaml:"document_share"`
	Profanity          []string `yaml:"profanity"`
	ClientConfirmation []string `yaml:"client_confirmation"`

	Thresholds Thresholds         `yaml:"thresholds"`
	Weights    map[string]float64 `yaml:"weights"`
}

// Thresholds holds every numeric cut point used by the checkpoints.
type Thresholds struct {
	ElaborationChars    int     `yaml:"elaboration_chars"`
	ReadPreviousChars   int     `yaml:"read_previous_chars"`
	RoutingHitsPartial  int     `yaml:"routing_hits_partial"`
	TimelyStrongHours   float64 `yaml:"timely_strong_hours"`
	TimelyNeutralHours  float64 `yaml:"timely_neutral_hours"`
	P1MaxHours          float64 `yaml:"p1_max_hours"`
	P2MaxHours          float64 `yaml:"p2_max_hours"`
	DefaultMaxHours     float64 `yaml:"default_max_hours"`
	SLAFallbackMaxHours float64 `yaml:"sla_fallback_max_hours"`
	PassPercent         float64 `yaml:"pass_percent"`
}

// DefaultRuleSet returns a fresh copy of the built-in rubric.
func DefaultRuleSet() RuleSet {
	weights := make(map[string]float64, len(allCheckpoints))
	for _, c := range allCheckpoints {
		weights[c.ID()] = 1
	}

	return RuleSet{
		Hold:    []string{"placed the ticket on hold", "on hold awaiting your response"},
		Strike1: []string{"strike 1", "first reminder", "this is a reminder"},
		Strike2: []string{"strike 2", "second reminder"},
		Strike3: []string{"strike 3", "final reminder", "final notice"},
		Closure: []string{"closure email", "closing the ticket", "soft closing", "resolve/close the ticket"},
		Contact: []string{
			"connect chat",
			"+1 713 430 1333",
			"+44 1224 85 1333",
			"+61 8 6314 2333",
		},

		ResolutionHeaders: []string{"issue reported:", "probable cause:", "resolution provided:"},

		Teams:        []string{"teams", "ms teams", "microsoft teams"},
		Confirmation: []string{"user confirmed", "client confirmed", "thank you", "thanks"},

		Screenshot:            []string{"attachment", "screenshot", ".png", ".jpg", ".jpeg"},
		ImageExtensionPattern: `\.(png|jpe?g|bmp|gif)\b`,

		ReadPrevious:       []string{"as per previous", "see previous", "deployment notes"},
		Routing:            []string{"wrong queue", "misrouted", "incorrect routing", "reassign"},
		Handover:           []string{"handed over to", "transferred to"},
		Engagement:         []string{"working with user", "followed up", "i contacted"},
		DocumentShare:      []string{"sharepoint", "confluence", `\\`, "/sites/"},
		Profanity:          []string{"idiot", "nonsense", "stupid", "shit", "fuck"},
		ClientConfirmation: []string{"user confirmed", "client confirmed", "issue resolved"},

		Thresholds: Thresholds{
			ElaborationChars:    80,
			ReadPreviousChars:   150,
			RoutingHitsPartial:  1,
			TimelyStrongHours:   4,
			TimelyNeutralHours:  24,
			P1MaxHours:          4,
			P2MaxHours:          8,
			DefaultMaxHours:     72,
			SLAFallbackMaxHours: 72,
			PassPercent:         70,
		},
		Weights: weights,
	}
}

// LoadRuleSet overlays the YAML file at path onto the defaults. Keys absent
// from the file keep their default value; an empty path returns the defaults.
func LoadRuleSet(path string) (RuleSet, error) {
	rules := DefaultRuleSet()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rule set %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RuleSet{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidRuleSet, path, err)
	}
	if err := rules.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rules, nil
}

// Marshal renders the rule set as YAML.
func (r RuleSet) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// Validate rejects rule sets that would make a detector always or never fire.
func (r RuleSet) Validate() error {
	lists := map[string][]string{
		"hold":                r.Hold,
		"closure":             r.Closure,
		"contact":             r.Contact,
		"resolution_headers":  r.ResolutionHeaders,
		"teams":               r.Teams,
		"screenshot":          r.Screenshot,
		"document_share":      r.DocumentShare,
		"client_confirmation": r.ClientConfirmation,
	}
	for name, kws := range lists {
		if len(kws) == 0 {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidRuleSet, name)
		}
	}

	for name, kws := range r.keywordTables() {
		for _, kw := range kws {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: %s contains a blank keyword", ErrInvalidRuleSet, name)
			}
		}
	}

	if len(r.Strike1)+len(r.Strike2)+len(r.Strike3) == 0 {
		return fmt.Errorf("%w: at least one strike phrase is required", ErrInvalidRuleSet)
	}

	if r.ImageExtensionPattern != "" {
		if _, err := regexp.Compile(r.ImageExtensionPattern); err != nil {
			return fmt.Errorf("%w: image_extension_pattern: %v", ErrInvalidRuleSet, err)
		}
	}

	th := r.Thresholds
	if th.ElaborationChars < 0 || th.ReadPreviousChars < 0 || th.RoutingHitsPartial < 0 {
		return fmt.Errorf("%w: character and hit thresholds must not be negative", ErrInvalidRuleSet)
	}
	if th.TimelyStrongHours > th.TimelyNeutralHours {
		return fmt.Errorf("%w: timely_strong_hours exceeds timely_neutral_hours", ErrInvalidRuleSet)
	}
	if th.PassPercent < 0 || th.PassPercent > 100 {
		return fmt.Errorf("%w: pass_percent must be within 0-100", ErrInvalidRuleSet)
	}

	for id, w := range r.Weights {
		if _, ok := checkpointByID[id]; !ok {
			return fmt.Errorf("%w: unknown checkpoint %q in weights", ErrInvalidRuleSet, id)
		}
		if w < 0 {
			return fmt.Errorf("%w: weight for %s is negative", ErrInvalidRuleSet, id)
		}
	}
	var sum float64
	for _, c := range allCheckpoints {
		sum += r.weight(c)
	}
	if sum == 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalidRuleSet)
	}
	return nil
}

func (r RuleSet) keywordTables() map[string][]string {
	return map[string][]string{
		"hold":                r.Hold,
		"strike_1":            r.Strike1,
		"strike_2":            r.Strike2,
		"strike_3":            r.Strike3,
		"closure":             r.Closure,
		"contact":             r.Contact,
		"resolution_headers":  r.ResolutionHeaders,
		"teams":               r.Teams,
		"confirmation":        r.Confirmation,
		"screenshot":          r.Screenshot,
		"read_previous":       r.ReadPrevious,
		"routing":             r.Routing,
		"handover":            r.Handover,
		"engagement":          r.Engagement,
		"document_share":      r.DocumentShare,
		"profanity":           r.Profanity,
		"client_confirmation": r.ClientConfirmation,
	}
}

// weight returns the configured weight, 1 when the checkpoint is not listed.
func (r RuleSet) weight(c Checkpoint) float64 {
	if w, ok := r.Weights[c.ID()]; ok {
		return w
	}
	return 1
}

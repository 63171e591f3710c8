package candidate

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Markers lists the literal phrases the scanner looks for. A single space
// inside a phrase matches any amount of whitespace (including none), and all
// matching is case-insensitive.
type Markers struct {
	// Trigger phrases suggest a branching instruction ("☞", "로 이동").
	Trigger []string `yaml:"trigger"`
	// ParenExpand phrases mark an enumerated sub-item annotation such as
	// "(☞ ① 있음)", which is never a real jump.
	ParenExpand []string `yaml:"paren_expand"`
	// DisplayNoise phrases ask the respondent to mark or fill in answers.
	DisplayNoise []string `yaml:"display_noise"`
	// ExplicitMove phrases keep a DisplayNoise line alive.
	ExplicitMove []string `yaml:"explicit_move"`
	// MoveOrSkip phrases are enough evidence on a line without targets.
	MoveOrSkip []string `yaml:"move_or_skip"`
}

// DefaultMarkers returns the built-in marker set for Korean questionnaires.
func DefaultMarkers() Markers {
	return Markers{
		Trigger:      []string{"☞", "⇒", "->", "→", "로 이동", "건너뛰기", "skip"},
		ParenExpand:  []string{"( ☞ ①"},
		DisplayNoise: []string{"모두 표시", "표시해 주세요", "해당 사항 모두 표시", "기입"},
		ExplicitMove: []string{"로 이동", "⇒"},
		MoveOrSkip:   []string{"로 이동", "건너뛰기"},
	}
}

// LoadMarkers reads marker overrides from a YAML file. Lists left empty in
// the file keep their defaults.
func LoadMarkers(path string) (Markers, error) {
	m := DefaultMarkers()

	data, err := os.ReadFile(path)
	if err != nil {
		return m, eris.Wrapf(err, "candidate: read markers %s", path)
	}

	var override Markers
	if err := yaml.Unmarshal(data, &override); err != nil {
		return m, eris.Wrap(err, "candidate: parse markers")
	}

	if len(override.Trigger) > 0 {
		m.Trigger = override.Trigger
	}
	if len(override.ParenExpand) > 0 {
		m.ParenExpand = override.ParenExpand
	}
	if len(override.DisplayNoise) > 0 {
		m.DisplayNoise = override.DisplayNoise
	}
	if len(override.ExplicitMove) > 0 {
		m.ExplicitMove = override.ExplicitMove
	}
	if len(override.MoveOrSkip) > 0 {
		m.MoveOrSkip = override.MoveOrSkip
	}
	return m, nil
}

// compilePhrases builds one case-insensitive alternation from literal phrases.
func compilePhrases(name string, phrases []string) (*regexp.Regexp, error) {
	var alts []string
	for _, p := range phrases {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = regexp.QuoteMeta(f)
		}
		alts = append(alts, strings.Join(quoted, `\s*`))
	}
	if len(alts) == 0 {
		return nil, eris.Errorf("candidate: marker list %q is empty", name)
	}
	re, err := regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
	if err != nil {
		return nil, eris.Wrapf(err, "candidate: compile %s markers", name)
	}
	return re, nil
}

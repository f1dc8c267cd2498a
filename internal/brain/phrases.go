package brain

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrasesYAML []byte

// DialogKind tags a system dialog for the shell's icon choice.
type DialogKind string

const (
	DialogInfo       DialogKind = "info"
	DialogWarning    DialogKind = "warning"
	DialogError      DialogKind = "error"
	DialogAIThinking DialogKind = "ai_thinking"
)

// Dialog is a system dialog the shell may pop up.
type Dialog struct {
	Kind    DialogKind `json:"type" yaml:"kind"`
	Title   string     `json:"title" yaml:"title"`
	Message string     `json:"message" yaml:"message"`
}

// Catalog holds every phrase family used for commentary and dialogs.
type Catalog struct {
	FirstContact        []string            `yaml:"firstContact"`
	FirstTimeApp        map[string][]string `yaml:"firstTimeApp"`
	FirstTimeFallback   []string            `yaml:"firstTimeFallback"`
	FrequentGame        map[string][]string `yaml:"frequentGame"`
	FrequentApp         []string            `yaml:"frequentApp"`
	Regular             map[Mood][]string   `yaml:"regular"`
	DesktopClick        []string            `yaml:"desktopClick"`
	StartMenuPrediction string              `yaml:"startMenuPrediction"`
	StartMenu           []string            `yaml:"startMenu"`
	WindowDrag          []string            `yaml:"windowDrag"`
	WindowResize        []string            `yaml:"windowResize"`
	ContextMenu         []string            `yaml:"contextMenu"`
	DoubleClick         []string            `yaml:"doubleClick"`
	RightClick          []string            `yaml:"rightClick"`
	Hesitation          []string            `yaml:"hesitation"`
	Generic             []string            `yaml:"generic"`
	Dialogs             struct {
		Notices      []Dialog `yaml:"notices"`
		FrequentUser Dialog   `yaml:"frequentUser"`
	} `yaml:"dialogs"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultPhrasesYAML)
	if err != nil {
		panic(fmt.Sprintf("brain: built-in phrase catalog is invalid: %v", err))
	}
	return c
}

// ParseCatalog decodes a YAML catalog and checks that every pool the
// engine draws from is non-empty.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse phrase catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	pools := map[string][]string{
		"firstContact":      c.FirstContact,
		"firstTimeFallback": c.FirstTimeFallback,
		"frequentApp":       c.FrequentApp,
		"desktopClick":      c.DesktopClick,
		"startMenu":         c.StartMenu,
		"windowDrag":        c.WindowDrag,
		"windowResize":      c.WindowResize,
		"contextMenu":       c.ContextMenu,
		"doubleClick":       c.DoubleClick,
		"rightClick":        c.RightClick,
		"hesitation":        c.Hesitation,
		"generic":           c.Generic,
	}
	for name, pool := range pools {
		if len(pool) == 0 {
			return fmt.Errorf("phrase catalog: %s is empty", name)
		}
	}
	for _, mood := range []Mood{MoodExcited, MoodBored, MoodImpressed, MoodConcerned, MoodPlayful} {
		if len(c.Regular[mood]) == 0 {
			return fmt.Errorf("phrase catalog: regular.%s is empty", mood)
		}
	}
	if c.StartMenuPrediction == "" {
		return fmt.Errorf("phrase catalog: startMenuPrediction is empty")
	}
	if len(c.Dialogs.Notices) == 0 {
		return fmt.Errorf("phrase catalog: dialogs.notices is empty")
	}
	if c.Dialogs.FrequentUser.Message == "" {
		return fmt.Errorf("phrase catalog: dialogs.frequentUser is empty")
	}
	return nil
}

// phraseVars fills catalog placeholders.
type phraseVars struct {
	name       string
	app        string
	count      int
	prediction string
}

func (v phraseVars) render(template string) string {
	name := ""
	if v.name != "" {
		name = ", " + v.name
	}
	r := strings.NewReplacer(
		"{name}", name,
		"{app}", v.app,
		"{count}", strconv.Itoa(v.count),
		"{prediction}", v.prediction,
	)
	return r.Replace(template)
}

// Package classifier assigns kill-safety categories to processes.
//
// Rules are evaluated in a fixed order: protected names first, then the
// auto-kill table from top to bottom, and everything else falls through to
// ASK. The first matching rule wins.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fentz26/prochunt/internal/models"
)

const (
	ignoreReason = "protected system process"
	askReason    = "unclassified process"
)

// Rule pairs a pattern with the human-readable label reported on match.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Reason  string `yaml:"reason"`
}

// AutoKillRules are matched against "name command", in this order.
var AutoKillRules = []Rule{
	{`next-server`, "Next.js server"},
	{`node.*next.*dev`, "Next.js dev server"},
	{`node.*webpack.*dev`, "webpack dev server"},
	{`node.*vite`, "Vite dev server"},
	{`node.*turbo`, "Turborepo task runner"},
	{`npm.*run.*dev`, "npm dev script"},
	{`yarn.*dev`, "yarn dev script"},
	{`pnpm.*dev`, "pnpm dev script"},

	{`node.*react-native`, "React Native packager"},
	{`node.*expo`, "Expo dev server"},

	{`claude`, "Claude CLI session"},

	{`node.*esbuild`, "esbuild bundler"},
	{`node.*rollup`, "Rollup bundler"},
	{`tsc.*--watch`, "TypeScript watch compiler"},
}

// IgnorePatterns are anchored process names that must never be touched.
var IgnorePatterns = []string{
	// macOS
	`^kernel_task$`,
	`^launchd$`,
	`^WindowServer$`,
	`^coreaudiod$`,
	`^loginwindow$`,
	`^Finder$`,
	`^Dock$`,
	`^SystemUIServer$`,
	`^mds_stores$`,
	`^mds$`,
	`^mdworker`,
	`^spotlight`,
	`^cfprefsd$`,
	`^distnoted$`,
	`^trustd$`,
	`^securityd$`,

	// Linux
	`^init$`,
	`^systemd`,
	`^kthreadd$`,
	`^dbus-daemon$`,
	`^Xorg$`,
	`^Xwayland$`,
	`^gnome-shell$`,
	`^pipewire`,
	`^pulseaudio$`,
	`^sshd$`,
}

type compiledRule struct {
	re     *regexp.Regexp
	reason string
}

// Classifier holds the compiled, ordered rule tables.
// It is safe for concurrent use.
type Classifier struct {
	ignore   []*regexp.Regexp
	autoKill []compiledRule
}

// New compiles the built-in tables followed by the extra patterns. Extras are
// appended after the built-ins and never change their precedence.
func New(extraIgnore []string, extraAutoKill []Rule) (*Classifier, error) {
	c := &Classifier{}

	for _, p := range append(append([]string{}, IgnorePatterns...), extraIgnore...) {
		re, err := compile(p)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		c.ignore = append(c.ignore, re)
	}

	for _, r := range append(append([]Rule{}, AutoKillRules...), extraAutoKill...) {
		re, err := compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("auto-kill pattern %q: %w", r.Pattern, err)
		}
		reason := r.Reason
		if reason == "" {
			reason = r.Pattern
		}
		c.autoKill = append(c.autoKill, compiledRule{re: re, reason: reason})
	}

	return c, nil
}

// Default returns a classifier with only the built-in tables.
func Default() *Classifier {
	c, err := New(nil, nil)
	if err != nil {
		panic(err)
	}
	return c
}

func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// Classify returns the category and reason for a process. It is a pure
// function of its inputs and always returns exactly one category.
func (c *Classifier) Classify(name, command string) (models.Category, string) {
	for _, re := range c.ignore {
		if re.MatchString(name) {
			return models.CategoryIgnore, ignoreReason
		}
	}

	full := strings.ToLower(name + " " + command)
	for _, r := range c.autoKill {
		if r.re.MatchString(full) {
			return models.CategoryAutoKill, r.reason
		}
	}

	return models.CategoryAsk, askReason
}

// Visible drops IGNORE records. Every display path goes through it.
func Visible(records []models.ProcessRecord) []models.ProcessRecord {
	out := make([]models.ProcessRecord, 0, len(records))
	for _, r := range records {
		if r.Category != models.CategoryIgnore {
			out = append(out, r)
		}
	}
	return out
}

// Partition splits visible records into AUTO_KILL and ASK, keeping order.
func Partition(records []models.ProcessRecord) (autoKill, ask []models.ProcessRecord) {
	for _, r := range records {
		switch r.Category {
		case models.CategoryAutoKill:
			autoKill = append(autoKill, r)
		case models.CategoryAsk:
			ask = append(ask, r)
		}
	}
	return autoKill, ask
}

package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over full command paths such as
// "translations list". The shell built-ins are always included.
func NewCompleter(commands ...string) *Completer {
	all := append([]string{"exit", "help", "history", "quit"}, commands...)
	sort.Strings(all)
	uniq := all[:0]
	for i, c := range all {
		if i == 0 || c != all[i-1] {
			uniq = append(uniq, c)
		}
	}
	return &Completer{commands: uniq}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.Join(strings.Fields(prefix), " ")
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Commands returns every known command path.
func (c *Completer) Commands() []string {
	return append([]string(nil), c.commands...)
}

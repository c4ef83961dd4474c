// Package assemble groups translated units by target distribution and
// flattens them into per-distribution shell script text.
package assemble

import (
	"strings"

	"github.com/openstack-archive/rst2bash/internal/translate"
)

// Shell wrapping applied per action. Config statements are rewritten in
// place through iniset_sudo; inject statements are appended to the target
// file through a heredoc; console statements pass through unwrapped.
const (
	pathAssignPrefix = "\nconf="
	configWrapper    = "iniset_sudo $conf "
	injectWrapper    = "\ncat<< INJECT | sudo tee -a $conf\n"
)

// Assembler accumulates rendered unit blocks per distribution, in region
// traversal order. A unit declaring multiple distros is duplicated
// verbatim into each accumulator.
type Assembler struct {
	blocks map[string][]string
}

// New creates an empty Assembler.
func New() *Assembler {
	return &Assembler{blocks: make(map[string][]string)}
}

// Add renders one unit and appends the result to every distro it declares.
func (a *Assembler) Add(u translate.Unit) {
	block := RenderUnit(u)
	for _, distro := range u.Distros {
		a.blocks[distro] = append(a.blocks[distro], block)
	}
}

// Scripts flattens the accumulated blocks into one script text per
// distribution.
func (a *Assembler) Scripts() map[string]string {
	scripts := make(map[string]string, len(a.blocks))
	for distro, blocks := range a.blocks {
		scripts[distro] = strings.Join(blocks, "")
	}
	return scripts
}

// RenderUnit derives the shell text for one unit: an optional path
// variable assignment, then each statement wrapped according to the
// unit's action.
func RenderUnit(u translate.Unit) string {
	var b strings.Builder

	if u.Path != "" {
		b.WriteString(pathAssignPrefix + u.Path + "\n")
	}

	wrapper := ""
	switch u.Action {
	case translate.ActionConfig:
		wrapper = configWrapper
	case translate.ActionInject:
		wrapper = injectWrapper
	}

	for _, stmt := range u.Statements {
		b.WriteString(wrapper + stmt + "\n")
	}
	return b.String()
}

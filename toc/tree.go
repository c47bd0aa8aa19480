package toc

import (
	"github.com/sfi2k7/hubconsole/params"
	"github.com/xlab/treeprint"
)

// Tree renders the table as an indented tree, one branch per section.
// Entries selected by name and typ are marked with '*'.
func (t Table) Tree(name, typ string, p params.Params) string {
	root := treeprint.New()
	active := SelectedCategory(typ)
	for _, s := range t.Sections() {
		title := s.Title()
		if s.Category == active {
			title += " *"
		}
		branch := root.AddBranch(title)
		for _, e := range s.Entries {
			label := e.Display + "  " + e.Link(p)
			if e.Selected(name, typ) {
				label = "* " + label
			}
			branch.AddNode(label)
		}
	}
	return root.String()
}

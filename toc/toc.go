// Package toc builds the table of contents shown next to collection
// documentation.
package toc

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/sfi2k7/hubconsole/params"
)

type Category string

const (
	Documentation Category = "documentation"
	Modules       Category = "modules"
	Roles         Category = "roles"
	Plugins       Category = "plugins"
	Playbooks     Category = "playbooks"
)

// Categories is the display order.
var Categories = []Category{Documentation, Modules, Roles, Plugins, Playbooks}

const docsType = "docs"

type DocFile struct {
	Name string `json:"name"`
	HTML string `json:"html,omitempty"`
}

type Content struct {
	ContentName string `json:"content_name"`
	ContentType string `json:"content_type"`
}

// DocsBlob is the documentation payload of a collection version.
type DocsBlob struct {
	DocumentationFiles []DocFile `json:"documentation_files"`
	Contents           []Content `json:"contents"`
}

type Entry struct {
	Display string
	Name    string
	Type    string
	URL     string
}

// Selected reports whether e matches the page named by name and typ. With
// no name the readme is selected.
func (e Entry) Selected(name, typ string) bool {
	if name == "" && e.Name == "readme" {
		return true
	}
	return name == e.Name && typ == e.Type
}

// Link is the entry URL carrying the current view parameters.
func (e Entry) Link(p params.Params) string {
	if p.Len() == 0 {
		return e.URL
	}
	return e.URL + "?" + p.Encode()
}

type Section struct {
	Category Category
	Entries  []Entry
}

// Title is the expandable heading, e.g. "Modules (3)".
func (s Section) Title() string {
	return capitalize(string(s.Category) + " (" + strconv.Itoa(len(s.Entries)) + ")")
}

// Table groups entries by category.
type Table map[Category][]Entry

// Build groups the documentation files and contents of blob. Each category
// is sorted by display name with names starting with '_' last.
func Build(blob DocsBlob, namespace, collection string) Table {
	base := "/" + url.PathEscape(namespace) + "/" + url.PathEscape(collection)
	t := Table{}

	t[Documentation] = append(t[Documentation], Entry{
		Display: "Readme",
		Name:    "readme",
		Type:    docsType,
		URL:     base + "/docs",
	})
	for _, f := range blob.DocumentationFiles {
		name := sanitizeDocsURL(f.Name)
		display := strings.SplitN(f.Name, ".", 2)[0]
		display = strings.Join(strings.Split(display, "_"), " ")
		t[Documentation] = append(t[Documentation], Entry{
			Display: upperFirst(display),
			Name:    name,
			Type:    docsType,
			URL:     base + "/docs/" + url.PathEscape(name),
		})
	}

	for _, c := range blob.Contents {
		e := Entry{
			Display: c.ContentName,
			Name:    c.ContentName,
			Type:    c.ContentType,
			URL:     base + "/content/" + url.PathEscape(c.ContentType) + "/" + url.PathEscape(c.ContentName),
		}
		cat := categoryOf(c.ContentType)
		t[cat] = append(t[cat], e)
	}

	for _, entries := range t {
		sortEntries(entries)
	}
	return t
}

// Sections returns the non-empty categories in display order.
func (t Table) Sections() []Section {
	var out []Section
	for _, c := range Categories {
		if len(t[c]) == 0 {
			continue
		}
		out = append(out, Section{Category: c, Entries: t[c]})
	}
	return out
}

// SelectedCategory is the category holding pages of type typ.
func SelectedCategory(typ string) Category {
	if typ == "" || typ == docsType {
		return Documentation
	}
	return categoryOf(typ)
}

func categoryOf(contentType string) Category {
	switch contentType {
	case "role":
		return Roles
	case "module":
		return Modules
	case "playbook":
		return Playbooks
	}
	return Plugins
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Display, entries[j].Display
		au, bu := strings.HasPrefix(a, "_"), strings.HasPrefix(b, "_")
		if au != bu {
			return bu
		}
		return a < b
	})
}

// sanitizeDocsURL turns a documentation file name into a path segment.
func sanitizeDocsURL(name string) string {
	return strings.ReplaceAll(name, ".", "-")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func capitalize(s string) string {
	return upperFirst(strings.ToLower(s))
}

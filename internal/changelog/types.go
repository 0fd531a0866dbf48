package changelog

// Record is one raw commit as produced by the log query.
// Message is the subject line, a blank line, then the body.
type Record struct {
	Hash    string
	Message string
}

// Entry is a classified conventional commit. It is built once by Parse and
// never modified afterwards.
type Entry struct {
	Hash string
	// Type is the literal type token as written (feat, fix, mysec, ...).
	Type string
	// Component is the scope; empty means the entry has no component.
	Component string
	Subject   string
	// Closes lists issue numbers in order of first appearance, without duplicates.
	Closes []string
	// Breaks lists issue numbers the change breaks.
	Breaks       []string
	Breaking     bool
	BreakingNote string
}

// NoComponent is the component group name for entries without a component.
const NoComponent = ""

// Header carries the release heading rendered above the sections.
type Header struct {
	Version  string
	Subtitle string
	// Date is preformatted (YYYY-MM-DD); empty omits it.
	Date string
	// Patch selects the smaller heading used for patch releases.
	Patch bool
}

// ComponentGroup holds the entries of one component inside a section.
type ComponentGroup struct {
	Name    string
	Entries []Entry
}

// Section is a titled group of component groups.
type Section struct {
	Title      string
	Components []ComponentGroup
}

// Len returns the number of entries across all component groups.
func (s Section) Len() int {
	n := 0
	for _, g := range s.Components {
		n += len(g.Entries)
	}
	return n
}

// Document is the aggregated changelog for one release.
// Sections holds every configured section in order, including empty ones.
type Document struct {
	Header   Header
	Sections []Section
}

// NonEmptySections returns the sections that have at least one entry,
// in document order.
func (d *Document) NonEmptySections() []Section {
	var out []Section
	for _, s := range d.Sections {
		if s.Len() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Breaking returns the breaking entries in document order.
func (d *Document) Breaking() []Entry {
	var out []Entry
	for _, s := range d.Sections {
		for _, g := range s.Components {
			for _, e := range g.Entries {
				if e.Breaking {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// Len returns the number of entries in the document.
func (d *Document) Len() int {
	n := 0
	for _, s := range d.Sections {
		n += s.Len()
	}
	return n
}

package feed

import "github.com/jaehyo/sodam/internal/timefmt"

// Section is one run of messages rendered under a single date header.
type Section struct {
	// DateLabel is the header text. Empty for a leading run of messages
	// whose stored time could not be parsed.
	DateLabel string
	Entries   []Entry
}

// GroupByDate splits an ordered snapshot into date sections: one header per
// run of equal calendar dates, emitted immediately before the first message
// of the run. Messages without a valid time never open a header; they attach
// to the current section.
//
// Recomputed each render pass; never cached.
func GroupByDate(entries []Entry, codec timefmt.Codec) []Section {
	var sections []Section
	current := -1
	for _, e := range entries {
		if e.Msg.Time.IsZero() {
			if current < 0 {
				sections = append(sections, Section{})
				current = 0
			}
			sections[current].Entries = append(sections[current].Entries, e)
			continue
		}
		label := codec.FormatDate(e.Msg.Time)
		if current < 0 || sections[current].DateLabel != label {
			sections = append(sections, Section{DateLabel: label})
			current = len(sections) - 1
		}
		sections[current].Entries = append(sections[current].Entries, e)
	}
	return sections
}

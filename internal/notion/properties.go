package notion

// Properties maps database column names to property values for a new page.
type Properties map[string]Property

// Property is a single page property value. Exactly one field is set.
type Property struct {
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Relation    []PageRef      `json:"relation,omitempty"`
}

// RichText is a plain text run.
type RichText struct {
	Text TextContent `json:"text"`
}

type TextContent struct {
	Content string `json:"content"`
}

type DateValue struct {
	Start string `json:"start"`
}

type SelectOption struct {
	Name string `json:"name"`
}

// PageRef points at another page, used by relation properties.
type PageRef struct {
	ID string `json:"id"`
}

func Title(s string) Property {
	return Property{Title: []RichText{{Text: TextContent{Content: s}}}}
}

func Text(s string) Property {
	return Property{RichText: []RichText{{Text: TextContent{Content: s}}}}
}

// Date sets the start of a date property. start is passed through as given
// (ISO 8601 date or date-time).
func Date(start string) Property {
	return Property{Date: &DateValue{Start: start}}
}

func Select(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

func MultiSelect(names ...string) Property {
	opts := make([]SelectOption, 0, len(names))
	for _, n := range names {
		opts = append(opts, SelectOption{Name: n})
	}
	return Property{MultiSelect: opts}
}

func Number(v float64) Property {
	return Property{Number: &v}
}

func Relation(ids ...string) Property {
	refs := make([]PageRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, PageRef{ID: id})
	}
	return Property{Relation: refs}
}

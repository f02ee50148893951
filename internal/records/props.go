package records

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"obra/internal/core"
)

// Title returns the plain text of the record's title property, whichever
// name it carries.
func Title(p notionapi.Page) string {
	for _, prop := range p.Properties {
		if t, ok := prop.(*notionapi.TitleProperty); ok {
			return plain(t.Title)
		}
	}
	return ""
}

// Number reads a numeric property. Formula and rollup properties are read
// when they evaluate to a number. Missing or non-numeric properties read as 0.
func Number(p notionapi.Page, key string) float64 {
	switch v := p.Properties[key].(type) {
	case *notionapi.NumberProperty:
		return v.Number
	case *notionapi.FormulaProperty:
		if v.Formula.Type == "number" {
			return v.Formula.Number
		}
	case *notionapi.RollupProperty:
		if v.Rollup.Type == "number" {
			return v.Rollup.Number
		}
	}
	return 0
}

// Amount is Number converted to cents.
func Amount(p notionapi.Page, key string) core.Money {
	return core.FromFloat(Number(p, key))
}

// Text reads a textual property: rich text, title, email or phone number.
func Text(p notionapi.Page, key string) string {
	switch v := p.Properties[key].(type) {
	case *notionapi.RichTextProperty:
		return plain(v.RichText)
	case *notionapi.TitleProperty:
		return plain(v.Title)
	case *notionapi.EmailProperty:
		return v.Email
	case *notionapi.PhoneNumberProperty:
		return v.PhoneNumber
	}
	return ""
}

func Select(p notionapi.Page, key string) string {
	if v, ok := p.Properties[key].(*notionapi.SelectProperty); ok {
		return v.Select.Name
	}
	return ""
}

// Date returns the start of a date property as YYYY-MM-DD, in the offset the
// date was written with.
func Date(p notionapi.Page, key string) string {
	v, ok := p.Properties[key].(*notionapi.DateProperty)
	if !ok || v.Date == nil || v.Date.Start == nil {
		return ""
	}
	return time.Time(*v.Date.Start).Format(core.DateLayout)
}

func RelationIDs(p notionapi.Page, key string) []string {
	v, ok := p.Properties[key].(*notionapi.RelationProperty)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(v.Relation))
	for _, r := range v.Relation {
		ids = append(ids, r.ID.String())
	}
	return ids
}

// RelationID returns the first related record id, or "".
func RelationID(p notionapi.Page, key string) string {
	if ids := RelationIDs(p, key); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func Checkbox(p notionapi.Page, key string) bool {
	v, ok := p.Properties[key].(*notionapi.CheckboxProperty)
	return ok && v.Checkbox
}

func URL(p notionapi.Page, key string) string {
	if v, ok := p.Properties[key].(*notionapi.URLProperty); ok {
		return v.URL
	}
	return ""
}

func plain(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		switch {
		case r.PlainText != "":
			b.WriteString(r.PlainText)
		case r.Text != nil:
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}}
}

// Property builders for record creation and updates.

func TitleProp(s string) notionapi.Property {
	return &notionapi.TitleProperty{Title: richText(s)}
}

func TextProp(s string) notionapi.Property {
	return &notionapi.RichTextProperty{RichText: richText(s)}
}

func NumberProp(v float64) notionapi.Property {
	return &notionapi.NumberProperty{Number: v}
}

func SelectProp(name string) notionapi.Property {
	return &notionapi.SelectProperty{Select: notionapi.Option{Name: name}}
}

// DateProp builds a date property from YYYY-MM-DD. Unparseable input yields
// an empty date.
func DateProp(date string) notionapi.Property {
	t, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return &notionapi.DateProperty{}
	}
	d := notionapi.Date(t)
	return &notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &d},
	}
}

func RelationProp(ids ...string) notionapi.Property {
	rel := make([]notionapi.Relation, 0, len(ids))
	for _, id := range ids {
		rel = append(rel, notionapi.Relation{ID: notionapi.PageID(id)})
	}
	return &notionapi.RelationProperty{Relation: rel}
}

func EmailProp(s string) notionapi.Property {
	return &notionapi.EmailProperty{Email: s}
}

func PhoneProp(s string) notionapi.Property {
	return &notionapi.PhoneNumberProperty{PhoneNumber: s}
}

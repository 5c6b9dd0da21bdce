package domain

import (
	"fmt"
	"strings"

	"stemma/internal/geom"
)

// Sex is the optional biological sex recorded for a person
type Sex string

const (
	SexUnknown Sex = ""
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
)

// ParseSex accepts male/female (or m/f) in any case; empty means unknown
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SexUnknown, nil
	case "male", "m":
		return SexMale, nil
	case "female", "f":
		return SexFemale, nil
	default:
		return SexUnknown, fmt.Errorf("invalid sex %q", s)
	}
}

// Person layout constants
const (
	PersonWidth    = 128.0
	PersonHeight   = 96.0
	PersonPadding  = 0.2
	PersonFontSize = 16.0
	PersonLineGap  = 5.0
	PersonBorder   = 2.0
)

// Border colors by sex
var (
	MaleBorder    = RGB(0.25, 0.47, 0.85)
	FemaleBorder  = RGB(0.86, 0.31, 0.47)
	UnknownBorder = RGB(0.5, 0.5, 0.5)
)

// Person is the genealogical node: a fixed size card naming one individual
type Person struct {
	id        NodeID
	anchor    geom.Point
	sex       Sex
	firstName string
	lastName  string
}

// NewPerson creates an unnamed person anchored at anchor with a fresh id
func NewPerson(anchor geom.Point) *Person {
	return &Person{id: NewNodeID(), anchor: anchor}
}

// RestorePerson recreates a person with a known id, as read from a layout
func RestorePerson(id NodeID, anchor geom.Point, sex Sex, firstName, lastName string) *Person {
	return &Person{id: id, anchor: anchor, sex: sex, firstName: firstName, lastName: lastName}
}

func (p *Person) ID() NodeID { return p.id }
func (p *Person) Anchor() geom.Point { return p.anchor }
func (p *Person) SetAnchor(a geom.Point) { p.anchor = a }
func (p *Person) Size() geom.Size { return geom.Size{Width: PersonWidth, Height: PersonHeight} }
func (p *Person) Contains(q geom.Point) bool { return Contains(p, q) }

func (p *Person) Sex() Sex { return p.sex }
func (p *Person) FirstName() string { return p.firstName }
func (p *Person) LastName() string { return p.lastName }

func (p *Person) SetSex(s Sex) { p.sex = s }
func (p *Person) SetFirstName(name string) { p.firstName = name }
func (p *Person) SetLastName(name string) { p.lastName = name }

// DisplayName joins the non-empty name parts
func (p *Person) DisplayName() string {
	return strings.TrimSpace(p.firstName + " " + p.lastName)
}

// BorderColor is the outline color for the person's sex
func (p *Person) BorderColor() Color {
	switch p.sex {
	case SexMale:
		return MaleBorder
	case SexFemale:
		return FemaleBorder
	default:
		return UnknownBorder
	}
}

// DrawContent draws the sex-colored border and the first and last name lines.
// Text is placed inside the card at a 20% inset; the last name sits one font
// height plus a small gap below the first name.
func (p *Person) DrawContent(s Surface, hovered bool) {
	border := p.BorderColor()
	if hovered {
		border = border.WithAlpha(0.5)
	}
	s.StrokeRectangle(Bounds(p), PersonBorder, border)

	inset := geom.Vector{
		X: PersonWidth * PersonPadding,
		Y: PersonHeight * PersonPadding,
	}
	if p.firstName != "" {
		s.FillText(Text{
			Content:  p.firstName,
			Position: p.anchor.Add(inset),
			Size:     PersonFontSize,
			Color:    Black,
		})
	}
	if p.lastName != "" {
		s.FillText(Text{
			Content:  p.lastName,
			Position: p.anchor.Add(inset).Add(geom.Vector{Y: PersonFontSize + PersonLineGap}),
			Size:     PersonFontSize,
			Color:    Black,
		})
	}
}

var _ Node = (*Person)(nil)

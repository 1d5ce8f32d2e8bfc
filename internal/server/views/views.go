// Package views loads the HTML pages once per process and renders profile
// records into them with every field HTML-escaped.
package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/htmlx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// Page file names looked up in a Source.
const (
	RegisterPage = "register.html"
	ProfilePage  = "profile.html"
)

// Templates holds the cached page bodies.
type Templates struct {
	register []byte
	profile  page
}

// New builds Templates from page bodies already in memory.
func New(register []byte, profile string) *Templates {
	return &Templates{register: register, profile: compile(profile)}
}

// Load reads both pages from src. Nothing is read again after this.
func Load(ctx context.Context, src Source) (*Templates, error) {
	register, err := src.Read(ctx, RegisterPage)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", RegisterPage, err)
	}
	profile, err := src.Read(ctx, ProfilePage)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ProfilePage, err)
	}
	return New(register, string(profile)), nil
}

// Register returns the registration page as-is.
func (t *Templates) Register() []byte {
	return t.register
}

// RenderProfile substitutes {{id}}, {{name}}, {{email}}, {{hobbies}} and
// {{location}} everywhere in the profile page.
func (t *Templates) RenderProfile(u *models.User) string {
	return t.profile.render(u)
}

// Render fills the placeholders of tmpl with escaped fields of u. The
// substitution is a single pass: a value that itself looks like a
// placeholder is emitted literally.
func Render(tmpl string, u *models.User) string {
	return compile(tmpl).render(u)
}

const (
	fieldID = iota
	fieldName
	fieldEmail
	fieldHobbies
	fieldLocation
	fieldCount
)

var placeholders = [fieldCount]string{
	fieldID:       "{{id}}",
	fieldName:     "{{name}}",
	fieldEmail:    "{{email}}",
	fieldHobbies:  "{{hobbies}}",
	fieldLocation: "{{location}}",
}

// segment is a literal chunk followed by an optional placeholder (field < 0
// means none).
type segment struct {
	literal string
	field   int
}

// page is a template split at its placeholders once, at load time.
type page struct {
	segments []segment
	size     int
}

func compile(tmpl string) page {
	var p page
	rest := tmpl
	lit := 0
	for {
		i := strings.Index(rest[lit:], "{{")
		if i < 0 {
			break
		}
		at := lit + i
		field := -1
		for f, ph := range placeholders {
			if strings.HasPrefix(rest[at:], ph) {
				field = f
				break
			}
		}
		if field < 0 {
			lit = at + 1
			continue
		}
		p.segments = append(p.segments, segment{literal: rest[:at], field: field})
		rest = rest[at+len(placeholders[field]):]
		lit = 0
	}
	p.segments = append(p.segments, segment{literal: rest, field: -1})
	p.size = len(tmpl)
	return p
}

func (p page) render(u *models.User) string {
	var values [fieldCount]string
	values[fieldID] = htmlx.Escape(u.ID)
	values[fieldName] = htmlx.Escape(u.Name)
	values[fieldEmail] = htmlx.Escape(u.Email)
	values[fieldHobbies] = htmlx.Escape(u.Hobbies)
	values[fieldLocation] = htmlx.Escape(u.Location)

	var b strings.Builder
	b.Grow(p.size + len(values[fieldName]) + len(values[fieldEmail]) + len(values[fieldHobbies]) + len(values[fieldLocation]))
	for _, s := range p.segments {
		b.WriteString(s.literal)
		if s.field >= 0 {
			b.WriteString(values[s.field])
		}
	}
	return b.String()
}

// Package content holds the hand-authored data shown on the portfolio page.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed portfolio.yaml
var defaultCatalog []byte

// ErrNotFound is returned when a lookup falls outside the catalog.
var ErrNotFound = errors.New("content: not found")

// Section indexes, in display order.
const (
	SectionHome = iota
	SectionAbout
	SectionEducation
	SectionTimeline
	SectionCertificates
)

// NavLabels names each scroll-addressable section. The nav bar is built
// from this list so every nav index is valid.
var NavLabels = []string{"Home", "About", "Education", "Timeline", "Certificates"}

// NavItem is one entry in the sticky navigation bar.
type NavItem struct {
	Index int
	Label string
}

// Nav returns the navigation items in display order.
func Nav() []NavItem {
	items := make([]NavItem, len(NavLabels))
	for i, l := range NavLabels {
		items[i] = NavItem{Index: i, Label: l}
	}
	return items
}

// CertificateRecord describes one certification shown in the grid and
// viewable in the modal overlay.
type CertificateRecord struct {
	Title        string `yaml:"title"`
	Organization string `yaml:"organization"`
	Year         string `yaml:"year"`
	Image        string `yaml:"image"`
}

// TimelineEntry is one stop on the journey timeline.
type TimelineEntry struct {
	Year        string `yaml:"year"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

type SkillGroup struct {
	Name   string `yaml:"name"`
	Color  string `yaml:"color"`
	Skills string `yaml:"skills"`
}

type Education struct {
	Degree      string   `yaml:"degree"`
	Institution string   `yaml:"institution"`
	Period      string   `yaml:"period"`
	Summary     string   `yaml:"summary"`
	Badges      []string `yaml:"badges"`
}

type Profile struct {
	Name      string `yaml:"name"`
	Tagline   string `yaml:"tagline"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	Location  string `yaml:"location"`
	Photo     string `yaml:"photo"`
	About     string `yaml:"about"`
	Copyright string `yaml:"copyright"`
}

// Catalog is the full static content surface. It is never mutated after
// Load returns.
type Catalog struct {
	Profile      Profile             `yaml:"profile"`
	Skills       []SkillGroup        `yaml:"skills"`
	Education    []Education         `yaml:"education"`
	Timeline     []TimelineEntry     `yaml:"timeline"`
	Certificates []CertificateRecord `yaml:"certificates"`

	aboutHTML template.HTML
}

// Default decodes the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}

// Load decodes a YAML catalog and renders the about text.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Typographer))
	var buf bytes.Buffer
	if err := md.Convert([]byte(c.Profile.About), &buf); err != nil {
		return nil, fmt.Errorf("rendering about text: %w", err)
	}
	c.aboutHTML = template.HTML(buf.String())
	return &c, nil
}

func (c *Catalog) validate() error {
	if c.Profile.Name == "" {
		return fmt.Errorf("catalog: profile.name is required")
	}
	for i, cert := range c.Certificates {
		if cert.Title == "" || cert.Image == "" {
			return fmt.Errorf("catalog: certificate %d needs a title and an image", i)
		}
	}
	return nil
}

// AboutHTML is the about text rendered from Markdown.
func (c *Catalog) AboutHTML() template.HTML { return c.aboutHTML }

// Certificate returns the record at index.
func (c *Catalog) Certificate(index int) (CertificateRecord, error) {
	if index < 0 || index >= len(c.Certificates) {
		return CertificateRecord{}, fmt.Errorf("certificate %d: %w", index, ErrNotFound)
	}
	return c.Certificates[index], nil
}

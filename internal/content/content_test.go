package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Vijai Kiren S", c.Profile.Name)
	assert.Len(t, c.Certificates, 4)
	assert.Len(t, c.Timeline, 5)
	assert.Contains(t, string(c.AboutHTML()), "<strong>Eventique</strong>")
	assert.True(t, strings.HasPrefix(string(c.AboutHTML()), "<p>"))
}

func TestCertificateLookup(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	rec, err := c.Certificate(1)
	require.NoError(t, err)
	assert.Equal(t, "RSET", rec.Organization)

	for _, idx := range []int{-1, len(c.Certificates)} {
		_, err := c.Certificate(idx)
		assert.True(t, errors.Is(err, ErrNotFound), "index %d", idx)
	}
}

func TestLoadRejectsInvalidCatalog(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "profile: ["},
		{"missing name", "profile:\n  tagline: x\n"},
		{"certificate without image", "profile:\n  name: A\ncertificates:\n  - title: T\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestNavMatchesSections(t *testing.T) {
	nav := Nav()
	require.Len(t, nav, 5)
	assert.Equal(t, NavItem{Index: SectionHome, Label: "Home"}, nav[0])
	assert.Equal(t, NavItem{Index: SectionCertificates, Label: "Certificates"}, nav[4])
}

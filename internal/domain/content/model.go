package content

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// CardDescriptionLimit is the number of characters shown on a project card.
const CardDescriptionLimit = 160

// Domain errors
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrEmptyID         = errors.New("content item id is required")
)

// Link is a labeled navigation target.
type Link struct {
	Label    string `json:"label"`
	Href     string `json:"href"`
	Dropdown bool   `json:"dropdown,omitempty"`
}

// Navbar is the header document.
type Navbar struct {
	Logo       string `json:"logo"`
	Links      []Link `json:"links"`
	RightLinks []Link `json:"rightLinks"`
}

// Footer is the footer document.
type Footer struct {
	Brand struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"brand"`
	Links struct {
		Title string `json:"title"`
		Items []Link `json:"items"`
	} `json:"links"`
	Contact struct {
		Title   string `json:"title"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	} `json:"contact"`
	Socials   []Social `json:"socials"`
	Copyright string   `json:"copyright"`
}

// Social is a footer social network link. Icon selects the rendered glyph.
type Social struct {
	Platform string `json:"platform"`
	Href     string `json:"href"`
	Icon     string `json:"icon"`
}

// Project is a portfolio entry shown in the projects grid.
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	Participants []string `json:"participants,omitempty"`
	YouTube      string   `json:"youtube,omitempty"`
	Instagram    string   `json:"instagram,omitempty"`
}

// Service is an offering that can be requested through the contact modal.
type Service struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ServiceCatalog is the services document.
type ServiceCatalog struct {
	SectionTitle          string    `json:"sectionTitle"`
	SectionTitleHighlight string    `json:"sectionTitleHighlight"`
	SectionSubtitle       string    `json:"sectionSubtitle"`
	Items                 []Service `json:"items"`
}

// Site bundles every content document.
type Site struct {
	Navbar   Navbar
	Footer   Footer
	Projects []Project
	Services ServiceCatalog
}

// Validate checks that projects and services carry unique, non-empty ids.
// PRE: none
// POST: Returns nil if every id is present and unique within its list
func (s *Site) Validate() error {
	seen := make(map[string]bool, len(s.Projects))
	for i, p := range s.Projects {
		if p.ID == "" {
			return fmt.Errorf("projects[%d]: %w", i, ErrEmptyID)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate project id %q", p.ID)
		}
		seen[p.ID] = true
	}
	seen = make(map[string]bool, len(s.Services.Items))
	for i, svc := range s.Services.Items {
		if svc.ID == "" {
			return fmt.Errorf("services.items[%d]: %w", i, ErrEmptyID)
		}
		if seen[svc.ID] {
			return fmt.Errorf("duplicate service id %q", svc.ID)
		}
		seen[svc.ID] = true
	}
	return nil
}

// ProjectByID looks up a project.
func (s *Site) ProjectByID(id string) (Project, error) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, ErrProjectNotFound
}

// ServiceByID looks up a service.
func (s *Site) ServiceByID(id string) (Service, error) {
	for _, svc := range s.Services.Items {
		if svc.ID == id {
			return svc, nil
		}
	}
	return Service{}, ErrServiceNotFound
}

// HasMore reports whether the card text is truncated and the detail modal is offered.
func (p Project) HasMore() bool {
	return utf8.RuneCountInString(p.Description) > CardDescriptionLimit
}

// CardDescription returns the description cut to the card limit.
func (p Project) CardDescription() string {
	return Truncate(p.Description, CardDescriptionLimit)
}

// HasSocials reports whether any social link is set.
func (p Project) HasSocials() bool {
	return p.YouTube != "" || p.Instagram != ""
}

// Truncate cuts text to max characters, trims trailing space and appends "...".
// Text at or under the limit is returned unchanged.
func Truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

// IsLastOdd reports whether index is the final tile of an odd-length grid.
// That tile spans the full row.
func IsLastOdd(index, total int) bool {
	return index == total-1 && total%2 != 0
}

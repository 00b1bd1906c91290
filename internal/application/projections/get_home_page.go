package projections

import (
	"time"

	"breakthebeat/internal/domain/content"
	"breakthebeat/internal/domain/modal"
)

// HomePageContent supplies the current site documents.
type HomePageContent interface {
	Site() content.Site
}

// HomePageDeps holds dependencies for the home page projection.
type HomePageDeps struct {
	Content HomePageContent
	Now     func() time.Time
}

// HomePageInput is the visitor UI state the page is rendered with.
type HomePageInput struct {
	MenuOpen     bool
	ScrollLocked bool
	Project      modal.State[content.Project]
	Contact      modal.State[content.Service]
}

// ProjectCard is one tile of the projects grid.
type ProjectCard struct {
	ID           string
	Name         string
	Image        string
	Summary      string
	HasMore      bool
	Participants []string
	YouTube      string
	Instagram    string
	HasSocials   bool
	FullRow      bool
}

// ServiceCard is one tile of the services grid.
type ServiceCard struct {
	ID          string
	Title       string
	Description string
	Icon        string
}

// ServicesSection is the services heading plus its cards.
type ServicesSection struct {
	Title     string
	Highlight string
	Subtitle  string
	Cards     []ServiceCard
}

// ProjectDetail is the open project modal.
type ProjectDetail struct {
	Name        string
	Description string
	YouTube     string
	Instagram   string
	HasSocials  bool
}

// ContactForm is the open contact modal.
type ContactForm struct {
	ServiceID    string
	ServiceTitle string
	Submitting   bool
	Status       *modal.Status
	AutoClose    bool
}

// HomePage is the full view model of the single page.
type HomePage struct {
	Navbar       content.Navbar
	Footer       content.Footer
	Projects     []ProjectCard
	Services     ServicesSection
	ProjectModal *ProjectDetail
	ContactModal *ContactForm
	MenuOpen     bool
	ScrollLocked bool
	Year         int
}

// QueryHomePage maps the content documents and visitor state to the page view model.
// PRE: deps.Content is loaded
// POST: ProjectModal and ContactModal are nil unless open; content is not mutated
func QueryHomePage(input HomePageInput, deps HomePageDeps) HomePage {
	site := deps.Content.Site()
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	page := HomePage{
		Navbar:       site.Navbar,
		Footer:       site.Footer,
		MenuOpen:     input.MenuOpen,
		ScrollLocked: input.ScrollLocked,
		Year:         now().Year(),
		Services: ServicesSection{
			Title:     site.Services.SectionTitle,
			Highlight: site.Services.SectionTitleHighlight,
			Subtitle:  site.Services.SectionSubtitle,
		},
	}

	page.Projects = make([]ProjectCard, 0, len(site.Projects))
	for i, p := range site.Projects {
		page.Projects = append(page.Projects, ProjectCard{
			ID:           p.ID,
			Name:         p.Name,
			Image:        p.Image,
			Summary:      p.CardDescription(),
			HasMore:      p.HasMore(),
			Participants: p.Participants,
			YouTube:      p.YouTube,
			Instagram:    p.Instagram,
			HasSocials:   p.HasSocials(),
			FullRow:      content.IsLastOdd(i, len(site.Projects)),
		})
	}

	page.Services.Cards = make([]ServiceCard, 0, len(site.Services.Items))
	for _, s := range site.Services.Items {
		page.Services.Cards = append(page.Services.Cards, ServiceCard{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Icon:        s.Icon,
		})
	}

	if input.Project.IsOpen && input.Project.HasSelection {
		p := input.Project.Selected
		page.ProjectModal = &ProjectDetail{
			Name:        p.Name,
			Description: p.Description,
			YouTube:     p.YouTube,
			Instagram:   p.Instagram,
			HasSocials:  p.HasSocials(),
		}
	}

	if input.Contact.IsOpen && input.Contact.HasSelection {
		c := input.Contact
		page.ContactModal = &ContactForm{
			ServiceID:    c.Selected.ID,
			ServiceTitle: c.Selected.Title,
			Submitting:   c.IsSubmitting,
			Status:       c.Status,
			AutoClose:    c.Phase == modal.PhaseSuccess,
		}
	}

	return page
}

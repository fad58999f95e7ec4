package domain

// Record is a server-owned row addressed by identifier.
type Record interface {
	RecordID() int64
}

type News struct {
	ID          int64  `json:"id"`
	Title       string `json:"titulo"`
	Summary     string `json:"resumen"`
	Content     string `json:"contenido"`
	Visible     Flag   `json:"visible"`
	PublishedAt string `json:"fecha_publicacion,omitempty"`
}

func (n News) RecordID() int64 { return n.ID }

type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	StartsAt    string `json:"fecha_inicio,omitempty"`
	EndsAt      string `json:"fecha_fin,omitempty"`
	Place       string `json:"lugar"`
	Visible     Flag   `json:"visible"`
}

func (e Event) RecordID() int64 { return e.ID }

// Course categories accepted by the backend.
const (
	CategorySpecialization = "especializacion"
	CategoryShort          = "corto"
)

type Course struct {
	ID          int64  `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Category    string `json:"categoria"`
	ImageURL    string `json:"imagen_url"`
	Visible     Flag   `json:"visible"`
	Order       Order  `json:"orden"`
}

func (c Course) RecordID() int64      { return c.ID }
func (c Course) SortOrder() Order     { return c.Order }
func (c Course) SortCategory() string { return c.Category }
func (c Course) SortID() int64        { return c.ID }

type Service struct {
	ID          int64  `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Order       Order  `json:"orden"`
	Visible     Flag   `json:"visible"`
}

func (s Service) RecordID() int64      { return s.ID }
func (s Service) SortOrder() Order     { return s.Order }
func (s Service) SortCategory() string { return "" }
func (s Service) SortID() int64        { return s.ID }

type FAQ struct {
	ID          int64  `json:"id"`
	Question    string `json:"pregunta"`
	ShortAnswer string `json:"respuesta_corta"`
	LongAnswer  string `json:"respuesta_larga"`
	Visible     Flag   `json:"visible"`
	Order       Order  `json:"orden"`
}

func (f FAQ) RecordID() int64      { return f.ID }
func (f FAQ) SortOrder() Order     { return f.Order }
func (f FAQ) SortCategory() string { return "" }
func (f FAQ) SortID() int64        { return f.ID }

// AdmissionStep is one step of the published admission process.
type AdmissionStep struct {
	ID          int64  `json:"id"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Order       Order  `json:"orden"`
	Visible     Flag   `json:"visible"`
}

func (a AdmissionStep) RecordID() int64      { return a.ID }
func (a AdmissionStep) SortOrder() Order     { return a.Order }
func (a AdmissionStep) SortCategory() string { return "" }
func (a AdmissionStep) SortID() int64        { return a.ID }

type RegulationItem struct {
	ID        int64  `json:"id"`
	SectionID int64  `json:"section_id"`
	Title     string `json:"titulo"`
	Content   string `json:"contenido"`
	Order     Order  `json:"orden"`
	Visible   Flag   `json:"visible"`
}

func (i RegulationItem) RecordID() int64      { return i.ID }
func (i RegulationItem) SortOrder() Order     { return i.Order }
func (i RegulationItem) SortCategory() string { return "" }
func (i RegulationItem) SortID() int64        { return i.ID }

type RegulationSection struct {
	ID          int64            `json:"id"`
	Title       string           `json:"titulo"`
	Description string           `json:"descripcion"`
	Order       Order            `json:"orden"`
	Visible     Flag             `json:"visible"`
	Items       []RegulationItem `json:"items"`
}

func (s RegulationSection) RecordID() int64      { return s.ID }
func (s RegulationSection) SortOrder() Order     { return s.Order }
func (s RegulationSection) SortCategory() string { return "" }
func (s RegulationSection) SortID() int64        { return s.ID }

// Regulation is the institutional regulation document: free HTML text, an
// optional PDF and an ordered tree of sections.
type Regulation struct {
	ContentHTML string              `json:"content_html"`
	PDFPath     string              `json:"pdf_path,omitempty"`
	Sections    []RegulationSection `json:"sections"`
}

type Social struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Contact is the singleton contact profile.
type Contact struct {
	Phones     []string `json:"phones"`
	Emails     []string `json:"emails"`
	Address    string   `json:"address"`
	Schedule   string   `json:"schedule"`
	SocialText string   `json:"social_text"`
	Socials    []Social `json:"socials"`
	HeroImage  string   `json:"hero_image,omitempty"`
}

// AdminUser is an account with access to the administrator panel.
type AdminUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   Flag   `json:"is_active"`
	Verified Flag   `json:"verified"`
}

func (u AdminUser) RecordID() int64 { return u.ID }

// PasswordReset is the backend acknowledgement of a password change.
type PasswordReset struct {
	UserEmail    string `json:"user_email"`
	TempPassword string `json:"temp_password"`
}

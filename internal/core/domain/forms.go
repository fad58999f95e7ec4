package domain

import "strings"

// Edit buffers. Each form mirrors the field set one admin view submits for
// its resource; Trimmed returns the copy that is validated and sent.

type NewsForm struct {
	Title   string `json:"titulo"    form:"titulo"    validate:"required"`
	Summary string `json:"resumen"   form:"resumen"`
	Content string `json:"contenido" form:"contenido" validate:"required"`
	Visible bool   `json:"visible"   form:"visible"`
}

func (f NewsForm) Trimmed() NewsForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Summary = strings.TrimSpace(f.Summary)
	f.Content = strings.TrimSpace(f.Content)
	return f
}

type EventForm struct {
	Title       string `json:"titulo"       form:"titulo"       validate:"required"`
	Description string `json:"descripcion"  form:"descripcion"`
	Place       string `json:"lugar"        form:"lugar"`
	StartsAt    string `json:"fecha_inicio" form:"fecha_inicio" validate:"omitempty,datetime=2006-01-02"`
	EndsAt      string `json:"fecha_fin"    form:"fecha_fin"    validate:"omitempty,datetime=2006-01-02"`
	Visible     bool   `json:"visible"      form:"visible"`
}

func (f EventForm) Trimmed() EventForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Place = strings.TrimSpace(f.Place)
	f.StartsAt = dateOnly(f.StartsAt)
	f.EndsAt = dateOnly(f.EndsAt)
	return f
}

// dateOnly keeps the YYYY-MM-DD prefix of a backend timestamp.
func dateOnly(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

type CourseForm struct {
	Title       string `json:"titulo"      form:"titulo"      validate:"required"`
	Description string `json:"descripcion" form:"descripcion"`
	Category    string `json:"categoria"   form:"categoria"   validate:"required,oneof=especializacion corto"`
	ImageURL    string `json:"imagen_url"  form:"imagen_url"`
	Visible     bool   `json:"visible"     form:"visible"`
	Order       int    `json:"orden"       form:"orden"       validate:"min=0"`
}

func (f CourseForm) Trimmed() CourseForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	return f
}

type ServiceForm struct {
	Title       string `json:"titulo"      form:"titulo"      validate:"required"`
	Description string `json:"descripcion" form:"descripcion"`
	Order       int    `json:"orden"       form:"orden"       validate:"min=0"`
	Visible     bool   `json:"visible"     form:"visible"`
}

func (f ServiceForm) Trimmed() ServiceForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if f.Order == 0 {
		f.Order = 1
	}
	return f
}

type FAQForm struct {
	Question    string `json:"pregunta"        form:"pregunta"        validate:"required"`
	ShortAnswer string `json:"respuesta_corta" form:"respuesta_corta"`
	LongAnswer  string `json:"respuesta_larga" form:"respuesta_larga"`
	Visible     bool   `json:"visible"         form:"visible"`
	Order       int    `json:"orden"           form:"orden"`
}

func (f FAQForm) Trimmed() FAQForm {
	f.Question = strings.TrimSpace(f.Question)
	f.ShortAnswer = strings.TrimSpace(f.ShortAnswer)
	f.LongAnswer = strings.TrimSpace(f.LongAnswer)
	return f
}

type AdmissionForm struct {
	Title       string `json:"titulo"      form:"titulo"      validate:"required"`
	Description string `json:"descripcion" form:"descripcion"`
	Order       int    `json:"orden"       form:"orden"       validate:"min=0"`
	Visible     bool   `json:"visible"     form:"visible"`
}

func (f AdmissionForm) Trimmed() AdmissionForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	return f
}

type SectionForm struct {
	Title       string `json:"titulo"      form:"titulo"`
	Description string `json:"descripcion" form:"descripcion"`
	Order       int    `json:"orden"       form:"orden"`
	Visible     bool   `json:"visible"     form:"visible"`
}

func (f SectionForm) Trimmed() SectionForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if f.Order < 1 {
		f.Order = 1
	}
	return f
}

type ItemForm struct {
	SectionID int64  `json:"section_id" form:"section_id" validate:"required"`
	Title     string `json:"titulo"     form:"titulo"`
	Content   string `json:"contenido"  form:"contenido"`
	Order     int    `json:"orden"      form:"orden"`
	Visible   bool   `json:"visible"    form:"visible"`
}

func (f ItemForm) Trimmed() ItemForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
	if f.Order < 1 {
		f.Order = 1
	}
	return f
}

type AdminUserForm struct {
	Name     string `json:"name"     form:"name"     validate:"required"`
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role"     form:"role"     validate:"required,oneof=admin superadmin"`
}

// Trimmed trims name and email. The password is sent as typed but a
// whitespace-only password counts as empty.
func (f AdminUserForm) Trimmed() AdminUserForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	if strings.TrimSpace(f.Password) == "" {
		f.Password = ""
	}
	if f.Role == "" {
		f.Role = RoleAdmin
	}
	return f
}

// Trimmed drops blank phones, emails and incomplete social links.
func (c Contact) Trimmed() Contact {
	out := Contact{
		Phones:     compact(c.Phones),
		Emails:     compact(c.Emails),
		Address:    strings.TrimSpace(c.Address),
		Schedule:   strings.TrimSpace(c.Schedule),
		SocialText: strings.TrimSpace(c.SocialText),
		Socials:    []Social{},
		HeroImage:  c.HeroImage,
	}
	for _, s := range c.Socials {
		s.Label = strings.TrimSpace(s.Label)
		s.URL = strings.TrimSpace(s.URL)
		if s.Label != "" && s.URL != "" {
			out.Socials = append(out.Socials, s)
		}
	}
	return out
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

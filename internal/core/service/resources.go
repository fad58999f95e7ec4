package service

import (
	"net/url"
	"strconv"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

// Administrator collections. Field sets and encodings follow what the
// backend accepts for each resource.

var NewsResource = Resource[domain.News, domain.NewsForm]{
	Name: "news",
	Path: "/admin/news",
	Trim: domain.NewsForm.Trimmed,
	Encode: func(f domain.NewsForm) ports.Body {
		return ports.Form(url.Values{
			"titulo":    {f.Title},
			"resumen":   {f.Summary},
			"contenido": {f.Content},
			"visible":   {flagValue(f.Visible)},
		})
	},
	ToForm: func(n domain.News) domain.NewsForm {
		return domain.NewsForm{Title: n.Title, Summary: n.Summary, Content: n.Content, Visible: n.Visible.Truthy(false)}
	},
	Blank: func() domain.NewsForm { return domain.NewsForm{Visible: true} },
}

var EventsResource = Resource[domain.Event, domain.EventForm]{
	Name: "event",
	Path: "/admin/events",
	Trim: domain.EventForm.Trimmed,
	Encode: func(f domain.EventForm) ports.Body {
		v := url.Values{
			"titulo":      {f.Title},
			"descripcion": {f.Description},
			"lugar":       {f.Place},
			"visible":     {flagValue(f.Visible)},
		}
		if f.StartsAt != "" {
			v.Set("fecha_inicio", f.StartsAt)
		}
		if f.EndsAt != "" {
			v.Set("fecha_fin", f.EndsAt)
		}
		return ports.Form(v)
	},
	ToForm: func(e domain.Event) domain.EventForm {
		return domain.EventForm{
			Title:       e.Title,
			Description: e.Description,
			Place:       e.Place,
			StartsAt:    e.StartsAt,
			EndsAt:      e.EndsAt,
			Visible:     e.Visible.Truthy(false),
		}.Trimmed()
	},
	Blank: func() domain.EventForm { return domain.EventForm{Visible: true} },
}

var CoursesResource = Resource[domain.Course, domain.CourseForm]{
	Name: "course",
	Path: "/admin/courses",
	Trim: domain.CourseForm.Trimmed,
	Encode: func(f domain.CourseForm) ports.Body {
		return ports.JSON(map[string]any{
			"titulo":      f.Title,
			"descripcion": f.Description,
			"categoria":   f.Category,
			"imagen_url":  nullable(f.ImageURL),
			"visible":     domain.NewFlag(f.Visible),
			"orden":       f.Order,
		})
	},
	ToForm: func(c domain.Course) domain.CourseForm {
		return domain.CourseForm{
			Title:       c.Title,
			Description: c.Description,
			Category:    c.Category,
			ImageURL:    c.ImageURL,
			Visible:     c.Visible.Truthy(false),
			Order:       c.Order.Or(0),
		}
	},
	Blank: func() domain.CourseForm {
		return domain.CourseForm{Category: domain.CategorySpecialization, Visible: true}
	},
	Sort: domain.SortRecords[domain.Course],
}

var ServicesResource = Resource[domain.Service, domain.ServiceForm]{
	Name: "service",
	Path: "/admin/services",
	Trim: domain.ServiceForm.Trimmed,
	Encode: func(f domain.ServiceForm) ports.Body {
		v := url.Values{
			"titulo":  {f.Title},
			"orden":   {strconv.Itoa(f.Order)},
			"visible": {flagValue(f.Visible)},
		}
		if f.Description != "" {
			v.Set("descripcion", f.Description)
		}
		return ports.Form(v)
	},
	ToForm: func(s domain.Service) domain.ServiceForm {
		return domain.ServiceForm{Title: s.Title, Description: s.Description, Order: s.Order.Or(1), Visible: s.Visible.Truthy(true)}
	},
	Blank: func() domain.ServiceForm { return domain.ServiceForm{Order: 1, Visible: true} },
	Sort:  domain.SortRecords[domain.Service],
}

var FAQResource = Resource[domain.FAQ, domain.FAQForm]{
	Name: "question",
	Path: "/admin/faq",
	Trim: domain.FAQForm.Trimmed,
	Encode: func(f domain.FAQForm) ports.Body {
		return ports.JSON(map[string]any{
			"pregunta":        f.Question,
			"respuesta_corta": nullable(f.ShortAnswer),
			"respuesta_larga": nullable(f.LongAnswer),
			"visible":         domain.NewFlag(f.Visible),
			"orden":           f.Order,
		})
	},
	ToForm: func(q domain.FAQ) domain.FAQForm {
		return domain.FAQForm{
			Question:    q.Question,
			ShortAnswer: q.ShortAnswer,
			LongAnswer:  q.LongAnswer,
			Visible:     q.Visible.Truthy(false),
			Order:       q.Order.Or(0),
		}
	},
	Blank: func() domain.FAQForm { return domain.FAQForm{Visible: true} },
	Sort:  domain.SortRecords[domain.FAQ],
}

var AdmissionsResource = Resource[domain.AdmissionStep, domain.AdmissionForm]{
	Name: "admission step",
	Path: "/admin/admissions",
	Trim: domain.AdmissionForm.Trimmed,
	Encode: func(f domain.AdmissionForm) ports.Body {
		return ports.JSON(map[string]any{
			"titulo":      f.Title,
			"descripcion": f.Description,
			"orden":       f.Order,
			"visible":     domain.NewFlag(f.Visible),
		})
	},
	ToForm: func(a domain.AdmissionStep) domain.AdmissionForm {
		return domain.AdmissionForm{Title: a.Title, Description: a.Description, Order: a.Order.Or(0), Visible: a.Visible.Truthy(true)}
	},
	Blank: func() domain.AdmissionForm { return domain.AdmissionForm{Visible: true} },
	Sort:  domain.SortRecords[domain.AdmissionStep],
}

func flagValue(v bool) string {
	return domain.NewFlag(v).FormValue()
}

// nullable sends empty text as JSON null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

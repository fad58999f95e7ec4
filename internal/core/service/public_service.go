package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

// coursesQuery fetches the whole catalogue in one page.
const coursesQuery = "/courses?page=1&limit=200"

// CourseCatalogue is the public course offer split by category.
type CourseCatalogue struct {
	Specialization []domain.Course `json:"especializacion"`
	Short          []domain.Course `json:"corto"`
}

// RegulationPage is the public regulation with the PDF made absolute.
type RegulationPage struct {
	ContentHTML string                     `json:"content_html"`
	PDFURL      string                     `json:"pdf_url,omitempty"`
	Sections    []domain.RegulationSection `json:"sections"`
}

// PublicService reads the unauthenticated views of every resource.
type PublicService struct {
	api  ports.Dispatcher
	base string
	log  zerolog.Logger
}

// NewPublicService resolves asset paths against base, the backend origin.
func NewPublicService(api ports.Dispatcher, base string, log zerolog.Logger) *PublicService {
	return &PublicService{api: api, base: base, log: log.With().Str("view", "public").Logger()}
}

func (s *PublicService) get(ctx context.Context, path string) (ports.Payload, error) {
	p, err := s.api.Do(ctx, domain.ScopePublic, ports.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("public view failed to load")
	}
	return p, err
}

func list[T any](ctx context.Context, s *PublicService, path string) ([]T, error) {
	p, err := s.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return ports.DecodeList[T](p)
}

func (s *PublicService) News(ctx context.Context) ([]domain.News, error) {
	return list[domain.News](ctx, s, "/news")
}

func (s *PublicService) Events(ctx context.Context) ([]domain.Event, error) {
	return list[domain.Event](ctx, s, "/events")
}

func (s *PublicService) FAQ(ctx context.Context) ([]domain.FAQ, error) {
	return list[domain.FAQ](ctx, s, "/faq")
}

func (s *PublicService) Admissions(ctx context.Context) ([]domain.AdmissionStep, error) {
	items, err := list[domain.AdmissionStep](ctx, s, "/admissions")
	if err != nil {
		return nil, err
	}
	domain.SortRecords(items)
	return items, nil
}

// Services returns the visible services in display order. Rows without a
// visible flag are shown.
func (s *PublicService) Services(ctx context.Context) ([]domain.Service, error) {
	items, err := list[domain.Service](ctx, s, "/services")
	if err != nil {
		return nil, err
	}
	shown := make([]domain.Service, 0, len(items))
	for _, it := range items {
		if it.Visible.Truthy(true) {
			shown = append(shown, it)
		}
	}
	domain.SortRecords(shown)
	return shown, nil
}

// Courses groups the catalogue by category. Categories are matched without
// case or accents; courses in neither group are left out.
func (s *PublicService) Courses(ctx context.Context) (*CourseCatalogue, error) {
	items, err := list[domain.Course](ctx, s, coursesQuery)
	if err != nil {
		return nil, err
	}

	out := &CourseCatalogue{Specialization: []domain.Course{}, Short: []domain.Course{}}
	for _, c := range items {
		c.ImageURL = ResolveAsset(s.base, c.ImageURL)
		switch cat := NormalizeCategory(c.Category); {
		case strings.Contains(cat, domain.CategorySpecialization):
			out.Specialization = append(out.Specialization, c)
		case strings.Contains(cat, domain.CategoryShort):
			out.Short = append(out.Short, c)
		}
	}
	return out, nil
}

func (s *PublicService) Contact(ctx context.Context) (*domain.Contact, error) {
	p, err := s.get(ctx, "/contact")
	if err != nil {
		return nil, err
	}
	c, err := decodeContact(p)
	if err != nil {
		return nil, err
	}
	c.HeroImage = ResolveAsset(s.base, c.HeroImage)
	return c, nil
}

func (s *PublicService) Regulation(ctx context.Context) (*RegulationPage, error) {
	p, err := s.get(ctx, "/regulation")
	if err != nil {
		return nil, err
	}
	doc, err := decodeRegulation(p)
	if err != nil {
		return nil, err
	}
	return &RegulationPage{
		ContentHTML: SanitizeHTML(doc.ContentHTML),
		PDFURL:      ResolveAsset(s.base, doc.PDFPath),
		Sections:    doc.Sections,
	}, nil
}

// NormalizeCategory lowercases a category label and strips its accents.
func NormalizeCategory(s string) string {
	return strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
}

// ResolveAsset turns a stored upload path into a URL under base. Absolute
// URLs are returned unchanged; backslashes from Windows paths become slashes.
func ResolveAsset(base, path string) string {
	if path == "" {
		return ""
	}
	clean := strings.ReplaceAll(path, `\`, "/")
	if strings.HasPrefix(clean, "http") {
		return clean
	}
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}
	return strings.TrimRight(base, "/") + clean
}

package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/pkg/validate"
)

const (
	regulationPath = "/admin/regulation"
	sectionsPath   = regulationPath + "/sections"
	itemsPath      = regulationPath + "/items"

	newSectionTitle = "New section"
	newItemTitle    = "New item"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

// SanitizeHTML strips markup that is unsafe to publish from operator text.
func SanitizeHTML(s string) string {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()
	})
	return htmlPolicy.Sanitize(s)
}

// RegulationService edits the regulation document and its section tree.
// Every mutation returns the document as re-read from the backend, or the
// text explaining why it could not be re-read.
type RegulationService struct {
	api ports.Dispatcher
	log zerolog.Logger
}

func NewRegulationService(api ports.Dispatcher, log zerolog.Logger) *RegulationService {
	return &RegulationService{api: api, log: log.With().Str("resource", "regulation").Logger()}
}

func (s *RegulationService) Load(ctx context.Context) (*domain.Regulation, error) {
	payload, err := s.api.Do(ctx, domain.ScopeAdmin, ports.Request{Method: http.MethodGet, Path: regulationPath})
	if err != nil {
		return nil, err
	}
	return decodeRegulation(payload)
}

func decodeRegulation(p ports.Payload) (*domain.Regulation, error) {
	var doc domain.Regulation
	if err := p.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode regulation: %w", err)
	}
	if doc.Sections == nil {
		doc.Sections = []domain.RegulationSection{}
	}
	domain.SortRecords(doc.Sections)
	for i := range doc.Sections {
		if doc.Sections[i].Items == nil {
			doc.Sections[i].Items = []domain.RegulationItem{}
		}
		domain.SortRecords(doc.Sections[i].Items)
	}
	return &doc, nil
}

// SaveText stores the free-text body after sanitising it.
func (s *RegulationService) SaveText(ctx context.Context, contentHTML string) (Refreshed[*domain.Regulation], error) {
	clean := SanitizeHTML(contentHTML)
	if clean != contentHTML {
		s.log.Debug().Msg("regulation text sanitised before save")
	}
	return s.mutate(ctx, http.MethodPut, regulationPath, ports.JSON(map[string]any{"content_html": clean}))
}

// UploadPDF stores the downloadable copy and returns its path.
func (s *RegulationService) UploadPDF(ctx context.Context, up Upload) (string, error) {
	return upload(ctx, s.api, regulationPath+"/upload-pdf", "pdf", pdfUpload, up, "pdf_path", "pdf_url")
}

// CreateSection appends a placeholder section after the existing ones.
func (s *RegulationService) CreateSection(ctx context.Context) (Refreshed[*domain.Regulation], error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return Refreshed[*domain.Regulation]{}, err
	}
	return s.mutate(ctx, http.MethodPost, sectionsPath, ports.JSON(map[string]any{
		"titulo":      newSectionTitle,
		"descripcion": "",
		"orden":       len(doc.Sections) + 1,
		"visible":     domain.NewFlag(true),
	}))
}

func (s *RegulationService) SaveSection(ctx context.Context, id int64, form domain.SectionForm) (Refreshed[*domain.Regulation], error) {
	form = form.Trimmed()
	return s.mutate(ctx, http.MethodPut, fmt.Sprintf("%s/%d", sectionsPath, id), ports.JSON(map[string]any{
		"titulo":      form.Title,
		"descripcion": form.Description,
		"orden":       form.Order,
		"visible":     domain.NewFlag(form.Visible),
	}))
}

// DeleteSection removes a section together with its items.
func (s *RegulationService) DeleteSection(ctx context.Context, id int64, confirm Confirmer) (Refreshed[*domain.Regulation], error) {
	if confirm == nil || !confirm.Confirm(ctx, "Delete this section and all of its items?") {
		return Refreshed[*domain.Regulation]{}, domain.ErrNotConfirmed
	}
	return s.mutate(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", sectionsPath, id), nil)
}

// CreateItem appends a placeholder item to sectionID.
func (s *RegulationService) CreateItem(ctx context.Context, sectionID int64) (Refreshed[*domain.Regulation], error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return Refreshed[*domain.Regulation]{}, err
	}
	count := -1
	for _, sec := range doc.Sections {
		if sec.ID == sectionID {
			count = len(sec.Items)
		}
	}
	if count < 0 {
		return Refreshed[*domain.Regulation]{}, fmt.Errorf("section %d: %w", sectionID, domain.ErrNotFound)
	}
	return s.mutate(ctx, http.MethodPost, itemsPath, ports.JSON(map[string]any{
		"section_id": sectionID,
		"titulo":     newItemTitle,
		"contenido":  "",
		"orden":      count + 1,
		"visible":    domain.NewFlag(true),
	}))
}

func (s *RegulationService) SaveItem(ctx context.Context, id int64, form domain.ItemForm) (Refreshed[*domain.Regulation], error) {
	form = form.Trimmed()
	if err := validate.Struct(form); err != nil {
		return Refreshed[*domain.Regulation]{}, err
	}
	return s.mutate(ctx, http.MethodPut, fmt.Sprintf("%s/%d", itemsPath, id), ports.JSON(map[string]any{
		"section_id": form.SectionID,
		"titulo":     form.Title,
		"contenido":  form.Content,
		"orden":      form.Order,
		"visible":    domain.NewFlag(form.Visible),
	}))
}

func (s *RegulationService) DeleteItem(ctx context.Context, id int64, confirm Confirmer) (Refreshed[*domain.Regulation], error) {
	if confirm == nil || !confirm.Confirm(ctx, "Delete this item?") {
		return Refreshed[*domain.Regulation]{}, domain.ErrNotConfirmed
	}
	return s.mutate(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", itemsPath, id), nil)
}

func (s *RegulationService) mutate(ctx context.Context, method, path string, body ports.Body) (Refreshed[*domain.Regulation], error) {
	if _, err := s.api.Do(ctx, domain.ScopeAdmin, ports.Request{Method: method, Path: path, Body: body}); err != nil {
		if !domain.IsAuthRequired(err) {
			s.log.Error().Err(err).Str("method", method).Str("path", path).Msg("regulation update failed")
		}
		return Refreshed[*domain.Regulation]{}, err
	}
	return refresh(ctx, s.log, "the regulation", s.Load)
}

package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

const contactPath = "/admin/contact"

// ContactService edits the singleton contact profile.
type ContactService struct {
	api ports.Dispatcher
	log zerolog.Logger
}

func NewContactService(api ports.Dispatcher, log zerolog.Logger) *ContactService {
	return &ContactService{api: api, log: log.With().Str("resource", "contact").Logger()}
}

func (s *ContactService) Load(ctx context.Context) (*domain.Contact, error) {
	payload, err := s.api.Do(ctx, domain.ScopeAdmin, ports.Request{Method: http.MethodGet, Path: contactPath})
	if err != nil {
		return nil, err
	}
	return decodeContact(payload)
}

func decodeContact(p ports.Payload) (*domain.Contact, error) {
	var c domain.Contact
	if err := p.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode contact: %w", err)
	}
	if c.Phones == nil {
		c.Phones = []string{}
	}
	if c.Emails == nil {
		c.Emails = []string{}
	}
	if c.Socials == nil {
		c.Socials = []domain.Social{}
	}
	return &c, nil
}

// Save stores the cleaned profile. The hero image is managed by UploadHero
// and is never part of the saved text.
func (s *ContactService) Save(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	clean := c.Trimmed()
	_, err := s.api.Do(ctx, domain.ScopeAdmin, ports.Request{
		Method: http.MethodPut,
		Path:   contactPath,
		Body: ports.JSON(map[string]any{
			"phones":      clean.Phones,
			"emails":      clean.Emails,
			"address":     clean.Address,
			"schedule":    clean.Schedule,
			"social_text": clean.SocialText,
			"socials":     clean.Socials,
		}),
	})
	if err != nil {
		if !domain.IsAuthRequired(err) {
			s.log.Error().Err(err).Msg("saving contact failed")
		}
		return nil, err
	}
	clean.HeroImage = c.HeroImage
	return &clean, nil
}

// UploadHero replaces the contact page image and returns its URL.
func (s *ContactService) UploadHero(ctx context.Context, up Upload) (string, error) {
	return upload(ctx, s.api, contactPath+"/upload-image", "image", imageUpload, up, "image_url")
}

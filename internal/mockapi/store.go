package mockapi

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/unidet/portal/internal/core/domain"
)

var errRowNotFound = errors.New("record not found")

type row map[string]any

func (r row) clone() row {
	out := make(row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r row) id() int64 {
	id, _ := r["id"].(int64)
	return id
}

func (r row) visible() bool {
	v, ok := r["visible"]
	if !ok || v == nil {
		return true
	}
	return domain.ParseFlag(v)
}

func (r row) text(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (r row) int64Field(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	default:
		return 0
	}
}

// collectionSpec names the required field of a collection and whether new
// rows get an order after the existing ones.
type collectionSpec struct {
	required string
	ordered  bool
	stamp    string
}

var collectionSpecs = map[string]collectionSpec{
	"news":       {required: "titulo", stamp: "fecha_publicacion"},
	"events":     {required: "titulo"},
	"courses":    {required: "titulo", ordered: true},
	"services":   {required: "titulo", ordered: true},
	"faq":        {required: "pregunta", ordered: true},
	"admissions": {required: "titulo", ordered: true},
}

type collection struct {
	spec   collectionSpec
	rows   []row
	nextID int64
}

// store holds every record of the mock backend behind one lock.
type store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	sections    *collection
	items       *collection
	regulation  row
	contact     row
	now         func() time.Time
}

func newStore() *store {
	s := &store{
		collections: make(map[string]*collection),
		sections:    &collection{spec: collectionSpec{ordered: true}, nextID: 1},
		items:       &collection{spec: collectionSpec{ordered: true}, nextID: 1},
		regulation:  row{"content_html": "", "pdf_path": nil},
		contact: row{
			"phones":      []any{},
			"emails":      []any{},
			"address":     "",
			"schedule":    "",
			"social_text": "",
			"socials":     []any{},
			"hero_image":  nil,
		},
		now: time.Now,
	}
	for name, spec := range collectionSpecs {
		s.collections[name] = &collection{spec: spec, nextID: 1}
	}
	return s
}

func (s *store) collection(name string) (*collection, bool) {
	c, ok := s.collections[name]
	return c, ok
}

func (s *store) list(c *collection, onlyVisible bool) []row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]row, 0, len(c.rows))
	for _, r := range c.rows {
		if onlyVisible && !r.visible() {
			continue
		}
		out = append(out, r.clone())
	}
	return out
}

func (s *store) insert(c *collection, in row) (row, error) {
	if c.spec.required != "" && in.text(c.spec.required) == "" {
		return nil, errors.New(c.spec.required + " is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := in.clone()
	r["id"] = c.nextID
	c.nextID++
	if _, ok := r["visible"]; !ok {
		r["visible"] = 1
	}
	if c.spec.ordered {
		if v, ok := r["orden"]; !ok || v == nil || v == "" {
			r["orden"] = int64(len(c.rows) + 1)
		}
	}
	if c.spec.stamp != "" {
		r[c.spec.stamp] = s.now().UTC().Format("2006-01-02 15:04:05")
	}
	c.rows = append(c.rows, r)
	return r.clone(), nil
}

func (s *store) update(c *collection, id int64, in row) (row, error) {
	if c.spec.required != "" {
		if _, sent := in[c.spec.required]; sent && in.text(c.spec.required) == "" {
			return nil, errors.New(c.spec.required + " is required")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range c.rows {
		if r.id() == id {
			for k, v := range in {
				if k != "id" {
					r[k] = v
				}
			}
			return r.clone(), nil
		}
	}
	return nil, errRowNotFound
}

func (s *store) remove(c *collection, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(c, id)
}

func (s *store) removeLocked(c *collection, id int64) error {
	for i, r := range c.rows {
		if r.id() == id {
			c.rows = append(c.rows[:i], c.rows[i+1:]...)
			return nil
		}
	}
	return errRowNotFound
}

// removeSection deletes a regulation section together with its items.
func (s *store) removeSection(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.removeLocked(s.sections, id); err != nil {
		return err
	}
	kept := s.items.rows[:0]
	for _, it := range s.items.rows {
		if it.int64Field("section_id") != id {
			kept = append(kept, it)
		}
	}
	s.items.rows = kept
	return nil
}

func (s *store) sectionExists(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.sections.rows {
		if r.id() == id {
			return true
		}
	}
	return false
}

// regulationDoc assembles the regulation text with its section tree.
func (s *store) regulationDoc(onlyVisible bool) row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sections := make([]row, 0, len(s.sections.rows))
	for _, sec := range s.sections.rows {
		if onlyVisible && !sec.visible() {
			continue
		}
		out := sec.clone()
		items := make([]row, 0)
		for _, it := range s.items.rows {
			if it.int64Field("section_id") != sec.id() || (onlyVisible && !it.visible()) {
				continue
			}
			items = append(items, it.clone())
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].int64Field("orden") < items[j].int64Field("orden") })
		out["items"] = items
		sections = append(sections, out)
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].int64Field("orden") < sections[j].int64Field("orden") })

	doc := s.regulation.clone()
	doc["sections"] = sections
	return doc
}

func (s *store) setRegulation(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regulation[key] = value
}

func (s *store) contactDoc() row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contact.clone()
}

func (s *store) setContact(in row) row {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range []string{"phones", "emails", "address", "schedule", "social_text", "socials", "hero_image"} {
		if v, ok := in[k]; ok {
			s.contact[k] = v
		}
	}
	return s.contact.clone()
}

// Package mockapi is an in-memory implementation of the REST backend the
// portal talks to. It backs local development and the round-trip tests.
package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/domain"
)

const accountKey = "account"

type Options struct {
	Prefix    string
	JWTSecret string
	TokenTTL  time.Duration

	RootName     string
	RootEmail    string
	RootPassword string

	// BcryptCost defaults to bcrypt.DefaultCost. Tests lower it.
	BcryptCost int
	Logger     zerolog.Logger
}

type storedFile struct {
	contentType string
	data        []byte
}

type Server struct {
	prefix   string
	accounts *accounts
	store    *store
	log      zerolog.Logger

	filesMu sync.RWMutex
	files   map[string]storedFile
}

// New builds a server seeded with the root superadmin account.
func New(opts Options) (*Server, error) {
	s := &Server{
		prefix:   strings.TrimRight(opts.Prefix, "/"),
		accounts: newAccounts(opts.JWTSecret, opts.TokenTTL, opts.BcryptCost),
		store:    newStore(),
		log:      opts.Logger,
		files:    make(map[string]storedFile),
	}
	name := opts.RootName
	if name == "" {
		name = "Administrator"
	}
	if _, err := s.accounts.create(name, opts.RootEmail, opts.RootPassword, domain.RoleSuperadmin, true); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns a ready echo instance serving every route.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(s.log)
	e.Use(echomiddleware.Recover())
	s.Register(e)
	return e
}

// Register mounts the routes on e under the configured prefix.
func (s *Server) Register(e *echo.Echo) {
	g := e.Group(s.prefix)

	g.GET("/uploads/:dir/:name", s.serveFile)

	for name := range collectionSpecs {
		g.GET("/"+name, s.publicList(name))
	}
	g.GET("/contact", s.publicContact)
	g.GET("/regulation", s.publicRegulation)

	g.POST("/admin/login", s.login)

	admin := g.Group("/admin", s.requireAccount())
	for name := range collectionSpecs {
		admin.GET("/"+name, s.adminList(name))
		admin.POST("/"+name, s.create(name))
		admin.PUT("/"+name+"/:id", s.update(name))
		admin.DELETE("/"+name+"/:id", s.remove(name))
	}
	admin.POST("/courses/upload-image", s.upload("courses", "image", imageOnly, func(url string) map[string]any {
		return map[string]any{"url": url}
	}))

	admin.GET("/regulation", s.adminRegulation)
	admin.PUT("/regulation", s.saveRegulationText)
	admin.POST("/regulation/upload-pdf", s.upload("regulation", "pdf", pdfOnly, func(url string) map[string]any {
		s.store.setRegulation("pdf_path", url)
		return map[string]any{"pdf_path": url}
	}))
	admin.POST("/regulation/sections", s.createSection)
	admin.PUT("/regulation/sections/:id", s.updateRow(s.store.sections))
	admin.DELETE("/regulation/sections/:id", s.deleteSection)
	admin.POST("/regulation/items", s.createItem)
	admin.PUT("/regulation/items/:id", s.updateRow(s.store.items))
	admin.DELETE("/regulation/items/:id", s.removeRow(s.store.items))

	admin.GET("/contact", s.adminContact)
	admin.PUT("/contact", s.saveContact)
	admin.POST("/contact/upload-image", s.upload("contact", "image", imageOnly, func(url string) map[string]any {
		s.store.setContact(row{"hero_image": url})
		return map[string]any{"image_url": url}
	}))

	users := admin.Group("/users", requireSuperadmin)
	users.GET("", s.listUsers)
	users.POST("", s.createUser)
	users.PUT("/:id", s.updateUser)
	users.DELETE("/:id", s.deleteUser)
	users.POST("/:id/reset-password", s.resetPassword)
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, errorResponse{Error: msg})
			return
		}
		log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// readRow decodes a JSON or form-encoded body into a row. Form values are
// kept as strings, the way a PHP backend would receive them.
func readRow(c echo.Context) (row, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		var r row
		dec := json.NewDecoder(c.Request().Body)
		if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if r == nil {
			r = row{}
		}
		return r, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	r := make(row, len(params))
	for k, vs := range params {
		if len(vs) > 0 {
			r[k] = vs[0]
		}
	}
	return r, nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func items(rows []row) map[string]any {
	return map[string]any{"items": rows}
}

func (s *Server) login(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	if email == "" && strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		r, err := readRow(c)
		if err != nil {
			return err
		}
		email, password = r.text("email"), r.text("password")
	}

	token, acc, err := s.accounts.login(email, password)
	switch {
	case errors.Is(err, errInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errAccountDisabled):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, domain.Session{Token: token, Subject: ptr(acc.subject())})
}

func ptr[T any](v T) *T { return &v }

// requireAccount validates the bearer token and stores the account.
func (s *Server) requireAccount() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			acc, err := s.accounts.verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(accountKey, acc)
			return next(c)
		}
	}
}

func requireSuperadmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		acc, _ := c.Get(accountKey).(*account)
		if acc == nil || acc.Role != domain.RoleSuperadmin {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		return next(c)
	}
}

func (s *Server) publicList(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		col, _ := s.store.collection(name)
		// services are filtered by the client
		return c.JSON(http.StatusOK, items(s.store.list(col, name != "services")))
	}
}

func (s *Server) adminList(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		col, _ := s.store.collection(name)
		return c.JSON(http.StatusOK, items(s.store.list(col, false)))
	}
}

func (s *Server) create(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		col, _ := s.store.collection(name)
		in, err := readRow(c)
		if err != nil {
			return err
		}
		r, err := s.store.insert(col, in)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.JSON(http.StatusCreated, r)
	}
}

func (s *Server) update(name string) echo.HandlerFunc {
	col, _ := s.store.collection(name)
	return s.updateRow(col)
}

func (s *Server) remove(name string) echo.HandlerFunc {
	col, _ := s.store.collection(name)
	return s.removeRow(col)
}

func (s *Server) updateRow(col *collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		in, err := readRow(c)
		if err != nil {
			return err
		}
		r, err := s.store.update(col, id, in)
		switch {
		case errors.Is(err, errRowNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case err != nil:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.JSON(http.StatusOK, r)
	}
}

func (s *Server) removeRow(col *collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := s.store.remove(col, id); err != nil {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]any{"deleted": id})
	}
}

func (s *Server) publicRegulation(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.regulationDoc(true))
}

func (s *Server) adminRegulation(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.regulationDoc(false))
}

func (s *Server) saveRegulationText(c echo.Context) error {
	in, err := readRow(c)
	if err != nil {
		return err
	}
	text, _ := in["content_html"].(string)
	s.store.setRegulation("content_html", text)
	return c.JSON(http.StatusOK, map[string]any{"content_html": text})
}

func (s *Server) createSection(c echo.Context) error {
	in, err := readRow(c)
	if err != nil {
		return err
	}
	r, err := s.store.insert(s.store.sections, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (s *Server) deleteSection(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.store.removeSection(id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) createItem(c echo.Context) error {
	in, err := readRow(c)
	if err != nil {
		return err
	}
	if !s.store.sectionExists(in.int64Field("section_id")) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "section_id does not name a section")
	}
	r, err := s.store.insert(s.store.items, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (s *Server) publicContact(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.contactDoc())
}

func (s *Server) adminContact(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.contactDoc())
}

func (s *Server) saveContact(c echo.Context) error {
	in, err := readRow(c)
	if err != nil {
		return err
	}
	delete(in, "hero_image")
	return c.JSON(http.StatusOK, s.store.setContact(in))
}

type fileCheck func(*mimetype.MIME) bool

func imageOnly(m *mimetype.MIME) bool { return strings.HasPrefix(m.String(), "image/") }
func pdfOnly(m *mimetype.MIME) bool   { return m.Is("application/pdf") }

// upload stores a multipart file under dir and answers with respond(url).
func (s *Server) upload(dir, field string, accept fileCheck, respond func(url string) map[string]any) echo.HandlerFunc {
	return func(c echo.Context) error {
		fh, err := c.FormFile(field)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "missing file field "+field)
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}

		mt := mimetype.Detect(data)
		if !accept(mt) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "unsupported file type "+mt.String())
		}

		name := uuid.NewString() + mt.Extension()
		s.filesMu.Lock()
		s.files[dir+"/"+name] = storedFile{contentType: mt.String(), data: data}
		s.filesMu.Unlock()

		return c.JSON(http.StatusOK, respond("/uploads/"+dir+"/"+name))
	}
}

func (s *Server) serveFile(c echo.Context) error {
	s.filesMu.RLock()
	f, ok := s.files[c.Param("dir")+"/"+c.Param("name")]
	s.filesMu.RUnlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.Blob(http.StatusOK, f.contentType, f.data)
}

func (s *Server) listUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"items": s.accounts.list()})
}

func (s *Server) createUser(c echo.Context) error {
	in, err := readRow(c)
	if err != nil {
		return err
	}
	password, _ := in["password"].(string)
	acc, err := s.accounts.create(in.text("name"), in.text("email"), password, in.text("role"), false)
	switch {
	case errors.Is(err, errAccountExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "name, email and password are required")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusCreated, acc.view())
}

func (s *Server) updateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	in, err := readRow(c)
	if err != nil {
		return err
	}

	if id == 1 {
		if v, ok := in["is_active"]; ok && !domain.ParseFlag(v) {
			return echo.NewHTTPError(http.StatusConflict, "the principal superadmin cannot be deactivated")
		}
		if v, ok := in["role"]; ok && v != domain.RoleSuperadmin {
			return echo.NewHTTPError(http.StatusConflict, "the principal superadmin must keep the superadmin role")
		}
	}

	acc, err := s.accounts.update(id, func(a *account) {
		if v, ok := in["is_active"]; ok {
			a.Active = domain.ParseFlag(v)
		}
		if role := in.text("role"); role == domain.RoleAdmin || role == domain.RoleSuperadmin {
			a.Role = role
		}
		if name := in.text("name"); name != "" {
			a.Name = name
		}
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, acc.view())
}

func (s *Server) deleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if id == 1 {
		return echo.NewHTTPError(http.StatusConflict, "the principal superadmin cannot be deleted")
	}
	if err := s.accounts.remove(id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) resetPassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	in, err := readRow(c)
	if err != nil {
		return err
	}
	password, _ := in["new_password"].(string)
	if password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "new_password is required")
	}
	acc, err := s.accounts.setPassword(id, password)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, domain.PasswordReset{UserEmail: acc.Email, TempPassword: password})
}

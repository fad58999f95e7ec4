package mockapi

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/unidet/portal/internal/core/domain"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errAccountDisabled    = errors.New("account disabled")
	errAccountExists      = errors.New("an account with that email already exists")
	errAccountNotFound    = errors.New("account not found")
	errInvalidToken       = errors.New("invalid token")
)

type account struct {
	ID           int64
	Name         string
	Email        string
	Role         string
	Active       bool
	Verified     bool
	PasswordHash string
	CreatedAt    time.Time
}

func (a *account) subject() domain.Subject {
	return domain.Subject{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role, Active: domain.NewFlag(a.Active)}
}

func (a *account) view() domain.AdminUser {
	return domain.AdminUser{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Role:     a.Role,
		Active:   domain.NewFlag(a.Active),
		Verified: domain.NewFlag(a.Verified),
	}
}

// accounts keeps panel accounts and issues HS256 tokens for them.
type accounts struct {
	mu       sync.RWMutex
	byID     map[int64]*account
	nextID   int64
	secret   []byte
	tokenTTL time.Duration
	cost     int
}

func newAccounts(secret string, tokenTTL time.Duration, cost int) *accounts {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &accounts{
		byID:     make(map[int64]*account),
		nextID:   1,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		cost:     cost,
	}
}

func (s *accounts) create(name, email, password, role string, verified bool) (*account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, errInvalidCredentials
	}
	if role != domain.RoleAdmin && role != domain.RoleSuperadmin {
		role = domain.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byID {
		if a.Email == email {
			return nil, errAccountExists
		}
	}
	a := &account{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		Role:         role,
		Active:       true,
		Verified:     verified,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.byID[a.ID] = a
	s.nextID++
	clone := *a
	return &clone, nil
}

func (s *accounts) login(email, password string) (string, *account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, errInvalidCredentials
	}

	s.mu.RLock()
	var found *account
	for _, a := range s.byID {
		if a.Email == email {
			clone := *a
			found = &clone
			break
		}
	}
	s.mu.RUnlock()

	if found == nil || bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)) != nil {
		return "", nil, errInvalidCredentials
	}
	if !found.Active {
		return "", nil, errAccountDisabled
	}

	token, err := s.generateToken(found)
	if err != nil {
		return "", nil, err
	}
	return token, found, nil
}

func (s *accounts) generateToken(a *account) (string, error) {
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(a.ID, 10),
		"email": a.Email,
		"role":  a.Role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// verify parses a bearer token and returns the live account it names.
func (s *accounts) verify(token string) (*account, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, errInvalidToken
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, errInvalidToken
	}

	a, err := s.get(id)
	if err != nil || !a.Active {
		return nil, errInvalidToken
	}
	return a, nil
}

func (s *accounts) get(id int64) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, errAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *accounts) list() []domain.AdminUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AdminUser, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a.view())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *accounts) update(id int64, fn func(*account)) (*account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, errAccountNotFound
	}
	fn(a)
	clone := *a
	return &clone, nil
}

func (s *accounts) setPassword(id int64, password string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	return s.update(id, func(a *account) { a.PasswordHash = string(hash) })
}

func (s *accounts) remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return errAccountNotFound
	}
	delete(s.byID, id)
	return nil
}

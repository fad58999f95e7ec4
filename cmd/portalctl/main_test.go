package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/mockapi"
)

func newBackend(t *testing.T) string {
	t.Helper()
	mock, err := mockapi.New(mockapi.Options{
		Prefix:       "/unidet-api/public",
		JWTSecret:    "cli-test",
		RootEmail:    "root@unidet.mx",
		RootPassword: "root-pass",
		BcryptCost:   bcrypt.MinCost,
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/unidet-api/public"
}

// portalctl runs one invocation; state persists in dir between calls.
func portalctl(t *testing.T, api, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := BuildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", api, "--state-dir", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	api, dir := newBackend(t), t.TempDir()

	out, err := portalctl(t, api, dir, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")

	_, err = portalctl(t, api, dir, "", "login", "--email", "root@unidet.mx", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	out, err = portalctl(t, api, dir, "root@unidet.mx\nroot-pass\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as root@unidet.mx (superadmin)")

	out, err = portalctl(t, api, dir, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, `"elevated": true`)

	out, err = portalctl(t, api, dir, "", "login", "--email", "root@unidet.mx", "--password", "root-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "already logged in")

	_, err = portalctl(t, api, dir, "", "logout")
	require.NoError(t, err)
	out, err = portalctl(t, api, dir, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestNewsLifecycle(t *testing.T) {
	api, dir := newBackend(t), t.TempDir()

	_, err := portalctl(t, api, dir, "", "news", "list")
	require.Error(t, err)
	assert.True(t, domain.IsAuthRequired(err), "expected auth required, got %v", err)

	_, err = portalctl(t, api, dir, "", "login", "--email", "root@unidet.mx", "--password", "root-pass")
	require.NoError(t, err)

	_, err = portalctl(t, api, dir, "", "news", "create", "--set", "titulo=Hola")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = portalctl(t, api, dir, "", "news", "create", "--set", "nope=1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	out, err := portalctl(t, api, dir, "", "news", "create", "--set", "titulo=Hola", "--set", "contenido=Bienvenidos", "--set", "visible=true")
	require.NoError(t, err)
	assert.Contains(t, out, "Hola")

	out, err = portalctl(t, api, dir, "", "news", "update", "1", "--set", "titulo=Adios")
	require.NoError(t, err)
	assert.Contains(t, out, "Adios")
	assert.NotContains(t, out, "Hola")

	out, err = portalctl(t, api, dir, "n\n", "news", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")

	out, err = portalctl(t, api, dir, "", "news", "delete", "1", "--yes")
	require.NoError(t, err)
	assert.NotContains(t, out, "Adios")

	_, err = portalctl(t, api, dir, "", "news", "update", "1", "--set", "titulo=x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsersRequireSuperadmin(t *testing.T) {
	api := newBackend(t)
	rootDir, anaDir := t.TempDir(), t.TempDir()

	_, err := portalctl(t, api, rootDir, "", "login", "--email", "root@unidet.mx", "--password", "root-pass")
	require.NoError(t, err)

	out, err := portalctl(t, api, rootDir, "", "users", "create", "--name", "Ana", "--email", "ana@unidet.mx", "--password", "ana-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@unidet.mx")

	_, err = portalctl(t, api, rootDir, "", "users", "delete", "1", "--yes")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRuleViolation)
	assert.Equal(t, "the principal superadmin cannot be deleted", describe(err))

	out, err = portalctl(t, api, rootDir, "", "users", "reset-password", "2", "--password", "n3w")
	require.NoError(t, err)
	assert.Contains(t, out, "temporary password: n3w")

	_, err = portalctl(t, api, anaDir, "", "login", "--email", "ana@unidet.mx", "--password", "n3w")
	require.NoError(t, err)
	_, err = portalctl(t, api, anaDir, "", "users", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "superadmin role")

	out, err = portalctl(t, api, anaDir, "", "news", "list")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestApplySets(t *testing.T) {
	form := domain.CourseForm{Title: "Redes", Category: "corto", Order: 4}
	require.NoError(t, applySets(&form, []string{"orden=2", "visible=1", "descripcion=a=b"}))

	assert.Equal(t, "Redes", form.Title)
	assert.Equal(t, 2, form.Order)
	assert.True(t, form.Visible)
	assert.Equal(t, "a=b", form.Description)

	err := applySets(&form, []string{"orden"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	err = applySets(&form, []string{"orden=many"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

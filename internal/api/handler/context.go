package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/unidet/portal/internal/core/service"
)

// idParam parses the :id path parameter and fails fast before any service
// call when it is not a positive integer.
func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// confirmation approves destructive requests sent with ?confirm=true. The
// browser asks the operator before sending it.
func confirmation(c echo.Context) service.Confirmer {
	ok := confirmed(c)
	return service.ConfirmFunc(func(context.Context, string) bool { return ok })
}

func confirmed(c echo.Context) bool {
	return c.QueryParam("confirm") == "true"
}

// formUpload opens the multipart file in field. A missing file yields an
// empty Upload, which the services reject as a validation error.
func formUpload(c echo.Context, field string) (service.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return service.Upload{}, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, func() {}, err
	}
	return service.Upload{Filename: fh.Filename, Content: f}, func() { _ = f.Close() }, nil
}

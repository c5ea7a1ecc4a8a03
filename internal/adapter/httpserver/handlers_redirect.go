package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/pscheid92/redirector/internal/platform/errors"
)

// HeaderResolvedDomain carries the domain whose rules were consulted.
const HeaderResolvedDomain = "X-Resolved-Domain"

func (s *Server) handleRedirect(c echo.Context) error {
	req := c.Request()

	host, err := NormalizeHost(req.Host)
	if err != nil {
		return apperrors.ValidationError("invalid host").WithContext("host", req.Host)
	}

	ctx, cancel := context.WithTimeout(req.Context(), s.config.StoreTimeout)
	defer cancel()

	res, err := s.redirects.Handle(ctx, host, rawPath(req), req.URL.Query())
	if err != nil {
		return err
	}

	c.Response().Header().Set(HeaderResolvedDomain, res.ResolvedDomain)
	if res.Found() {
		c.Response().Header().Set(echo.HeaderLocation, res.Location)
	}
	return c.NoContent(res.Status)
}

// rawPath returns the request path exactly as sent by the client, without
// percent-decoding.
func rawPath(req *http.Request) string {
	if strings.HasPrefix(req.RequestURI, "/") {
		path, _, _ := strings.Cut(req.RequestURI, "?")
		return path
	}
	return req.URL.EscapedPath()
}

package pubcard

import (
	"context"
	"html/template"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds the HTML pages the framework renders itself. Replace them
// with WithViews to match a site's own templates.
type ViewFuncs struct {
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

var errorPage = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><p>{{.Message}}</p><p><a href="/">Back home</a></p></body>
</html>
`))

func errorView(title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return errorPage.Execute(w, struct{ Title, Message string }{title, message})
	})
}

func defaultViews() ViewFuncs {
	return ViewFuncs{
		NotFound: func() templ.Component {
			return errorView("Not found", "The page you are looking for does not exist.")
		},
		ServerError: func() templ.Component {
			return errorView("Something went wrong", "Please try again in a moment.")
		},
	}
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// Package formserver serves one declared form over HTTP: GET renders it, POST
// validates the submission and either renders it back with errors or
// reports the accepted values.
package formserver

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bunrouter"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/andreyvit/formkit/forms"
	"github.com/andreyvit/formkit/httperrors"
	"github.com/andreyvit/formkit/logging"
	"github.com/andreyvit/formkit/rules"
	"github.com/andreyvit/formkit/tokens"
)

const (
	DefaultCookieName = "formkit_session"
	DefaultMaxMemory  = 8 << 20
)

type Options struct {
	Definition forms.FormConfig

	// Path the form is served at, "/" by default.
	Path  string
	Title string

	// Template is placeholder markup ("[{email}]"), HTMLTemplate a path to an
	// html/template file. With neither, the form renders its own layout.
	Template     string
	HTMLTemplate string

	// Store keeps CSRF and captcha challenges; required when the definition
	// has such fields.
	Store tokens.Store

	// Limiter throttles POSTs per client address; nil disables throttling.
	Limiter *RateLimiter

	// TrustedProxies may report the client address in X-Forwarded-For.
	TrustedProxies Proxies

	CookieName string
	MaxMemory  int64
}

type Server struct {
	opt    Options
	router *bunrouter.Router
}

func New(opt Options) *Server {
	if opt.Path == "" {
		opt.Path = "/"
	}
	if opt.CookieName == "" {
		opt.CookieName = DefaultCookieName
	}
	if opt.MaxMemory == 0 {
		opt.MaxMemory = DefaultMaxMemory
	}
	s := &Server{opt: opt}
	s.router = bunrouter.New()
	s.router.GET(opt.Path, s.handle(s.show))
	s.router.POST(opt.Path, s.handle(s.submit))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) handle(f func(ctx context.Context, w http.ResponseWriter, r *http.Request) error) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		start := time.Now()
		r := req.Request
		ctx := logging.WithAttrs(r.Context(), "remote", s.opt.TrustedProxies.ClientIP(r))
		sw := &statusWriter{ResponseWriter: w}

		err := f(ctx, sw, r)
		if err != nil {
			http.Error(sw, httperrors.HTTPMessage(err), httperrors.HTTPCode(err))
		}
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		logRequest(ctx, r, start, sw.status, err)
		return nil
	}
}

func logRequest(ctx context.Context, r *http.Request, start time.Time, status int, err error) {
	attrs := []any{"method", r.Method, "path", r.URL.Path, "status", status, "dur_us", time.Since(start).Microseconds()}
	if err != nil {
		attrs = append(attrs, "err_id", httperrors.ErrorID(err), "err", err)
		logging.From(ctx).Warn("http: request failed", attrs...)
		return
	}
	logging.From(ctx).Info("http", attrs...)
}

// session returns the session ID from the cookie, starting a new session if
// the cookie is missing or malformed.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.opt.CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.opt.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) build(ctx context.Context, w http.ResponseWriter, r *http.Request) (*forms.Form, *tokens.Keeper, error) {
	var keeper *tokens.Keeper
	if s.opt.Store != nil {
		keeper = tokens.NewKeeper(s.opt.Store, s.session(w, r))
	}
	b := &forms.Builder{
		Tokens:         keeper,
		RefreshCaptcha: r.URL.Query().Get("captcha") == "1",
	}
	form, err := b.Form(ctx, s.opt.Definition)
	if err != nil {
		return nil, nil, httperrors.Unavailable.Wrap(err)
	}
	if form.Action() == "" {
		form.SetAction(forms.RequestAction(r))
	}
	return form, keeper, nil
}

func (s *Server) show(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	form, _, err := s.build(ctx, w, r)
	if err != nil {
		return err
	}
	return s.writeForm(w, http.StatusOK, form)
}

func (s *Server) submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := s.opt.Limiter.Enforce(ctx, s.opt.TrustedProxies.ClientIP(r)); err != nil {
		return err
	}
	form, keeper, err := s.build(ctx, w, r)
	if err != nil {
		return err
	}
	if err := r.ParseMultipartForm(s.opt.MaxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return httperrors.BadRequest.Wrap(err)
	}
	form.SetFieldValues(forms.ValuesFromURL(r.PostForm))
	if r.MultipartForm != nil {
		form.SetFiles(forms.MultipartFiles(r.MultipartForm.File))
	}

	if !form.IsValid() {
		logging.From(ctx).Info("form: rejected submission", "errors", form.AllErrors())
		return s.writeForm(w, http.StatusUnprocessableEntity, form)
	}

	// an answered captcha is not good for another submission
	if keeper != nil {
		if err := keeper.Clear(ctx, tokens.KindCaptcha); err != nil {
			return httperrors.Unavailable.Wrap(err)
		}
	}
	values := form.ToArray(forms.ArrayOptions{Exclude: secretFields(form)})
	logging.From(ctx).Info("form: accepted submission", "fields", len(values))

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(values)
	}
	return s.writePage(w, http.StatusOK, resultTmpl, resultData(values))
}

// secretFields lists fields whose values are not echoed back.
func secretFields(form *forms.Form) []string {
	var result []string
	for _, e := range form.Fields() {
		switch e.(type) {
		case *forms.CSRF, *forms.Captcha:
			result = append(result, e.Name())
		default:
			if e.Type() == "password" {
				result = append(result, e.Name())
			}
		}
	}
	return result
}

func (s *Server) renderForm(form *forms.Form) (string, error) {
	switch {
	case s.opt.HTMLTemplate != "":
		ft, err := forms.NewFileTemplate(form, s.opt.HTMLTemplate)
		if err != nil {
			return "", err
		}
		return ft.Render()
	case s.opt.Template != "":
		return forms.NewTemplate(form, s.opt.Template).Render(), nil
	default:
		return form.Render(), nil
	}
}

func (s *Server) writeForm(w http.ResponseWriter, status int, form *forms.Form) error {
	markup, err := s.renderForm(form)
	if err != nil {
		return httperrors.Unavailable.Wrap(err)
	}
	return s.writePage(w, status, formTmpl, template.HTML(markup))
}

func (s *Server) writePage(w http.ResponseWriter, status int, body *template.Template, data any) error {
	var buf strings.Builder
	if err := body.Execute(&buf, data); err != nil {
		return httperrors.Unavailable.Wrap(err)
	}
	var page strings.Builder
	err := pageTmpl.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{s.opt.Title, template.HTML(buf.String())})
	if err != nil {
		return httperrors.Unavailable.Wrap(err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write([]byte(page.String()))
	return err
}

type resultItem struct {
	Name  string
	Value string
}

func resultData(values map[string]any) []resultItem {
	keys := maps.Keys(values)
	slices.Sort(keys)
	items := make([]resultItem, 0, len(keys))
	for _, k := range keys {
		var str string
		if list, ok := values[k].([]string); ok {
			str = strings.Join(list, ", ")
		} else {
			str = rules.String(values[k])
		}
		items = append(items, resultItem{k, str})
	}
	return items
}

var (
	pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}}{{else}}Form{{end}}</title>
</head>
<body>
{{.Body}}</body>
</html>
`))

	formTmpl = template.Must(template.New("form").Parse(`{{.}}`))

	resultTmpl = template.Must(template.New("result").Parse(`<p>Thank you, your submission was accepted.</p>
<dl>
{{range .}}<dt>{{.Name}}</dt><dd>{{.Value}}</dd>
{{end}}</dl>
`))
)

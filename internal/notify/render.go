package notify

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/rotisserie/eris"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names.
const (
	AdminInquiry       = "admin_inquiry"
	ClientConfirmation = "client_confirmation"
)

// Renderer builds messages from the embedded templates. Each template name
// has a .subject.tmpl, .txt.tmpl and .html.tmpl file.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

func NewRenderer() (*Renderer, error) {
	text, err := texttemplate.ParseFS(templateFS, "templates/*.subject.tmpl", "templates/*.txt.tmpl")
	if err != nil {
		return nil, eris.Wrap(err, "notify: parse text templates")
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, eris.Wrap(err, "notify: parse html templates")
	}
	return &Renderer{text: text, html: html}, nil
}

// Render fills name's templates with data. From and To are left to the caller.
func (r *Renderer) Render(name string, data any) (Message, error) {
	var subject, text, html bytes.Buffer

	if err := r.text.ExecuteTemplate(&subject, name+".subject.tmpl", data); err != nil {
		return Message{}, eris.Wrapf(err, "notify: render %s subject", name)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return Message{}, eris.Wrapf(err, "notify: render %s text", name)
	}
	if err := r.html.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return Message{}, eris.Wrapf(err, "notify: render %s html", name)
	}

	return Message{
		Subject: strings.TrimSpace(subject.String()),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templates embed.FS

// PromptText показывается, пока пользователь ничего не отправил.
const PromptText = "👆 Enter a URL or upload a file to get a short URL 👆"

// PageData — данные для шаблона главной страницы.
type PageData struct {
	Message string
	Prompt  string
	Kind    Kind
}

// IsLink сообщает, что сообщение нужно показать ссылкой.
func (d PageData) IsLink() bool { return d.Kind == KindLink }

// IsFailure сообщает, что сообщение нужно показать строкой ошибки.
func (d PageData) IsFailure() bool { return d.Kind == KindFailure }

// NewPageData собирает данные страницы из последнего сообщения.
func NewPageData(msg string) PageData {
	return PageData{
		Message: msg,
		Prompt:  PromptText,
		Kind:    Classify(msg),
	}
}

// Page рендерит HTML-страницы из встроенных шаблонов.
type Page struct {
	tmpl *template.Template
}

// NewPage разбирает встроенные шаблоны.
func NewPage() (*Page, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Page{tmpl: tmpl}, nil
}

// Render рисует главную страницу с сообщением msg.
func (p *Page) Render(w io.Writer, msg string) error {
	return p.tmpl.ExecuteTemplate(w, "index.html", NewPageData(msg))
}

// RenderFailure рисует общую страницу ошибки.
func (p *Page) RenderFailure(w io.Writer) error {
	return p.tmpl.ExecuteTemplate(w, "error.html", nil)
}

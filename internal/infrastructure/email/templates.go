// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/meetbridge/meeting-service/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// RenderedEmail holds both HTML and text versions of a rendered email
type RenderedEmail struct {
	HTML string
	Text string
}

// MeetingTemplateManager defines the interface for rendering meeting email templates
type MeetingTemplateManager interface {
	RenderArtifactsReady(data domain.ArtifactsReadyEmail) (*RenderedEmail, error)
}

// TemplateSet holds HTML and text versions of a template
type TemplateSet struct {
	HTML *htmltemplate.Template
	Text *texttemplate.Template
}

// TemplateManager is the default implementation of MeetingTemplateManager
type TemplateManager struct {
	artifactsReady TemplateSet
}

// Ensure TemplateManager implements MeetingTemplateManager
var _ MeetingTemplateManager = (*TemplateManager)(nil)

// NewTemplateManager creates a new template manager with all templates loaded
func NewTemplateManager() (*TemplateManager, error) {
	set, err := loadTemplateSet("artifacts_ready")
	if err != nil {
		return nil, err
	}
	return &TemplateManager{artifactsReady: set}, nil
}

// RenderArtifactsReady renders the recording and summary email with both HTML and text versions
func (tm *TemplateManager) RenderArtifactsReady(data domain.ArtifactsReadyEmail) (*RenderedEmail, error) {
	html, err := renderTemplate(tm.artifactsReady.HTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render artifacts ready HTML: %w", err)
	}

	text, err := renderTemplate(tm.artifactsReady.Text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render artifacts ready text: %w", err)
	}

	return &RenderedEmail{HTML: html, Text: text}, nil
}

// loadTemplateSet loads templates/<name>.html and templates/<name>.txt
func loadTemplateSet(name string) (TemplateSet, error) {
	html, err := htmltemplate.New(name+".html").Funcs(htmltemplate.FuncMap{
		"newLineToBreakLine": newLineToBreakLine,
	}).ParseFS(templateFS, "templates/"+name+".html")
	if err != nil {
		return TemplateSet{}, fmt.Errorf("failed to parse %s.html template: %w", name, err)
	}

	text, err := texttemplate.New(name+".txt").ParseFS(templateFS, "templates/"+name+".txt")
	if err != nil {
		return TemplateSet{}, fmt.Errorf("failed to parse %s.txt template: %w", name, err)
	}

	return TemplateSet{HTML: html, Text: text}, nil
}

// templateExecutor is satisfied by both html/template and text/template templates
type templateExecutor interface {
	Execute(wr io.Writer, data any) error
}

// renderTemplate renders any template with the provided data
func renderTemplate(tmpl templateExecutor, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// newLineToBreakLine escapes text and converts its line breaks to <br> tags
func newLineToBreakLine(text string) htmltemplate.HTML {
	escaped := htmltemplate.HTMLEscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

// Escalation describes an urgent conversation a human should pick up.
type Escalation struct {
	LeadName        string
	LeadPhone       string
	Brand           string
	Channel         string
	Phase           string
	CustomerMessage string
	Reply           string
}

type escalationEmailData struct {
	baseEmailData
	Escalation
}

func renderEmailTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderEscalation(e Escalation) (subject, body string, err error) {
	name := e.LeadName
	if name == "" {
		name = e.LeadPhone
	}
	body, err = renderEmailTemplate("escalation.html", escalationEmailData{
		baseEmailData: baseEmailData{
			Title:      "Urgent conversation",
			Heading:    "A customer needs attention",
			Subheading: fmt.Sprintf("%s flagged their %s message as urgent.", name, e.Channel),
		},
		Escalation: e,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectEscalationFmt, e.Brand, e.Channel, name), body, nil
}

// Package email delivers sweep results through mailgun.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/fabianMendez/faresweep"
)

var tableTemplate = template.Must(template.New("sweep table").Parse(`<table border="1" cellspacing="0" cellpadding="4">
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>`))

// RenderTable renders the assembled table as an HTML table body.
func RenderTable(t *faresweep.Table) (string, error) {
	rows := make([][]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rows = append(rows, t.Row(i))
	}

	buf := new(bytes.Buffer)
	err := tableTemplate.Execute(buf, struct {
		Columns []string
		Rows    [][]string
	}{Columns: t.Columns(), Rows: rows})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

type Sender struct {
	mg   mailgun.Mailgun
	from string
}

// NewSenderFromEnv builds a Sender from the MG_* environment variables used
// by mailgun-go, plus MG_FROM for the sender address.
func NewSenderFromEnv() (*Sender, error) {
	mg, err := mailgun.NewMailgunFromEnv()
	if err != nil {
		return nil, err
	}

	return &Sender{mg: mg, from: os.Getenv("MG_FROM")}, nil
}

// SendTable mails the rendered table to every recipient.
func (s *Sender) SendTable(ctx context.Context, subject string, t *faresweep.Table, to ...string) error {
	html, err := RenderTable(t)
	if err != nil {
		return err
	}

	msg := s.mg.NewMessage(s.from, subject, "", to...)
	msg.SetHtml(html)

	_, _, err = s.mg.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("could not send message: %w", err)
	}

	return nil
}

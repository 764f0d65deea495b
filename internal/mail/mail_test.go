package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	netmail "net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestBuildWithAttachment(t *testing.T) {
	raw, err := Build("PlombiCRM <no-reply@plombicrm.fr>", Message{
		To:      []string{"contact@entreprise.fr"},
		Subject: "Devis signé DV-00001",
		Text:    "Le devis DV-00001 a été signé par Jeanne.",
		Attachments: []Attachment{{
			Filename: "DV-00001-signe.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3 test"),
		}},
	}, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	msg, err := netmail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	if err != nil || subject != "Devis signé DV-00001" {
		t.Fatalf("subject = %q (%v)", subject, err)
	}
	mt, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || mt != "multipart/mixed" {
		t.Fatalf("content type %q %v", mt, err)
	}
	mr := multipart.NewReader(msg.Body, params["boundary"])

	text, err := mr.NextPart()
	if err != nil {
		t.Fatalf("text part: %v", err)
	}
	body, _ := io.ReadAll(text)
	if !strings.Contains(string(body), "a été signé par Jeanne") {
		t.Fatalf("unexpected text body %q", body)
	}

	att, err := mr.NextPart()
	if err != nil {
		t.Fatalf("attachment part: %v", err)
	}
	if att.FileName() != "DV-00001-signe.pdf" {
		t.Fatalf("filename = %q", att.FileName())
	}
	if _, err := mr.NextPart(); err != io.EOF {
		t.Fatalf("expected two parts, got %v", err)
	}
}

func TestBuildHTMLAlternative(t *testing.T) {
	raw, err := Build("a@b.c", Message{To: []string{"x@y.z"}, Subject: "Alertes", HTML: "<p>Bonjour <b>Jean</b>,</p><ul><li>Projet urgent</li></ul>"}, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(string(raw), "multipart/alternative") {
		t.Fatalf("expected alternative part")
	}
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText(`<html><head><style>p{}</style></head><body><p>Bonjour <b>Jean</b>,</p><p>Votre <a href="https://x.fr/d.pdf">devis</a></p><ul><li>Un</li><li>Deux</li></ul></body></html>`)
	want := "Bonjour Jean,\nVotre devis (https://x.fr/d.pdf)\n- Un\n- Deux"
	if got != want {
		t.Fatalf("HTMLToText = %q, want %q", got, want)
	}
}

func TestSMTPSend(t *testing.T) {
	s := NewSMTP(Config{Host: "smtp.example.fr", User: "u", Pass: "p"})
	var gotAddr, gotFrom string
	var gotTo []string
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		return nil
	}
	if err := s.Send(context.Background(), Message{To: []string{"client@example.fr"}, Subject: "Votre devis plomberie BTP", Text: "x"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.fr:587" || gotFrom != "no-reply@plombicrm.fr" || len(gotTo) != 1 {
		t.Fatalf("unexpected envelope %s %s %v", gotAddr, gotFrom, gotTo)
	}
	if err := s.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatalf("expected error without recipient")
	}
}

func TestNewDisabled(t *testing.T) {
	m := New(Config{Host: "smtp.example.fr"})
	if m.Enabled() {
		t.Fatalf("expected disabled mailer without credentials")
	}
	if err := m.Send(context.Background(), Message{To: []string{"a@b.c"}}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

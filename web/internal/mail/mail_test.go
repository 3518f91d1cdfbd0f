package mail

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

func TestRenderWelcome_EscapesHTML(t *testing.T) {
	html, text, err := renderWelcome(Welcome{
		To:   "alice@example.com",
		Name: "<b>Alice</b>",
		URL:  "https://pixelplaylist.example.com/sign-in",
	})
	if err != nil {
		t.Fatalf("renderWelcome() error = %v", err)
	}

	if strings.Contains(html, "<b>Alice</b>") || !strings.Contains(html, "&lt;b&gt;Alice&lt;/b&gt;") {
		t.Errorf("expected escaped name in HTML body:\n%s", html)
	}
	if !strings.Contains(html, `href="https://pixelplaylist.example.com/sign-in"`) {
		t.Errorf("expected start link in HTML body:\n%s", html)
	}
	if !strings.Contains(text, "Get started: https://pixelplaylist.example.com/sign-in") {
		t.Errorf("expected start link in text body:\n%s", text)
	}
}

func TestSendWelcome(t *testing.T) {
	var gotFrom string
	var gotTo []string
	var raw bytes.Buffer

	sender := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		gotFrom, gotTo = from, to
		_, err := msg.WriteTo(&raw)
		return err
	})

	m := NewMailer("hello@pixelplaylist.example.com", sender)
	err := m.SendWelcome(Welcome{To: "alice@example.com", Name: "Alice", URL: "https://pixelplaylist.example.com"})
	if err != nil {
		t.Fatalf("SendWelcome() error = %v", err)
	}

	if gotFrom != "hello@pixelplaylist.example.com" {
		t.Errorf("unexpected envelope sender %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Errorf("unexpected recipients %v", gotTo)
	}
	for _, want := range []string{"Subject: " + WelcomeSubject, "text/plain", "text/html"} {
		if !strings.Contains(raw.String(), want) {
			t.Errorf("expected message to contain %q", want)
		}
	}
}

func TestSendWelcome_SenderError(t *testing.T) {
	relayDown := errors.New("relay down")
	m := NewMailer("hello@pixelplaylist.example.com", gomail.SendFunc(func(string, []string, io.WriterTo) error {
		return relayDown
	}))

	err := m.SendWelcome(Welcome{To: "alice@example.com", Name: "Alice", URL: "https://pixelplaylist.example.com"})
	if err == nil || !strings.Contains(err.Error(), "relay down") {
		t.Errorf("expected sender error to be reported, got %v", err)
	}
}

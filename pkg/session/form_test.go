package session

import (
	"strings"
	"testing"
)

func TestFindForm(t *testing.T) {
	page := `<html><body>
<form name="search" action="/s"><input name="q" value="x"></form>
<form name="signIn" method="post" action="/ap/signin">
  <input type="hidden" name="token" value="abc">
  <input type="email" name="email">
  <input type="checkbox" name="remember" checked>
  <input type="checkbox" name="spam" value="yes">
  <input type="radio" name="create" value="0" checked>
  <input type="radio" name="create" value="1">
  <input type="text" name="off" value="x" disabled>
  <input type="submit" name="go" value="Go">
  <select name="lang"><option value="en">English</option><option value="de" selected>Deutsch</option></select>
  <textarea name="note">hi</textarea>
</form></body></html>`

	form, err := findForm(strings.NewReader(page), "signIn")
	if err != nil {
		t.Fatalf("findForm() error = %v", err)
	}

	if form.Method != "POST" || form.Action != "/ap/signin" {
		t.Errorf("method/action = %s %s", form.Method, form.Action)
	}

	want := map[string]string{
		"token":    "abc",
		"email":    "",
		"remember": "on",
		"create":   "0",
		"lang":     "de",
		"note":     "hi",
	}
	for k, v := range want {
		got, ok := form.Fields[k]
		if !ok || got[0] != v {
			t.Errorf("field %s = %v, want %q", k, got, v)
		}
	}
	for _, k := range []string{"spam", "off", "go", "q"} {
		if _, ok := form.Fields[k]; ok {
			t.Errorf("field %s should not be submitted", k)
		}
	}
}

func TestFindForm_NotFound(t *testing.T) {
	_, err := findForm(strings.NewReader(`<form name="other"></form>`), "signIn")
	if err == nil {
		t.Error("expected error for missing form")
	}
}

func TestFindForm_DefaultMethod(t *testing.T) {
	form, err := findForm(strings.NewReader(`<form id="signIn" action="/x"></form>`), "signIn")
	if err != nil {
		t.Fatal(err)
	}
	if form.Method != "GET" {
		t.Errorf("Method = %q, want GET", form.Method)
	}
}

func TestMetaRefreshURL(t *testing.T) {
	tests := []struct {
		page string
		want string
		ok   bool
	}{
		{`<meta http-equiv="refresh" content="0;url=/player">`, "/player", true},
		{`<meta http-equiv="Refresh" content="1; URL='https://x/y'">`, "https://x/y", true},
		{`<meta http-equiv="refresh" content="5">`, "", false},
		{`<p>nothing</p>`, "", false},
	}

	for _, tt := range tests {
		got, ok := metaRefreshURL(tt.page)
		if got != tt.want || ok != tt.ok {
			t.Errorf("metaRefreshURL(%q) = %q, %v; want %q, %v", tt.page, got, ok, tt.want, tt.ok)
		}
	}
}

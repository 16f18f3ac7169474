package services

import (
	"errors"
	"strings"
	"testing"
)

func TestClassifySmallTalkExactMatch(t *testing.T) {
	cases := []struct {
		query  string
		intent SmallTalkIntent
	}{
		{"hi", IntentGreeting},
		{"  Hello  ", IntentGreeting},
		{"NAMASTE", IntentGreeting},
		{"नमस्ते", IntentGreeting},
		{"good morning", IntentTimeOfDay},
		{"how are you", IntentWellBeing},
		{"thank you", IntentGratitude},
		{"धन्यवाद", IntentGratitude},
		{"bye", IntentFarewell},
		{"who are you", IntentIdentity},
		{"tell me a joke", IntentRefusal},
	}

	for _, tc := range cases {
		intent, ok := ClassifySmallTalk(tc.query)
		if !ok {
			t.Fatalf("query %q should classify as small talk", tc.query)
		}
		if intent != tc.intent {
			t.Fatalf("query %q classified as %q, want %q", tc.query, intent, tc.intent)
		}
	}
}

func TestClassifySmallTalkNeverMatchesSubstrings(t *testing.T) {
	// Greeting-prefixed domain questions must reach the knowledge path.
	queries := []string{
		"hi, what should i do during a flood",
		"hello can you tell me about earthquake safety",
		"thanks but what about aftershocks",
		"how are you supposed to store drinking water",
		"what should i pack in an emergency kit",
	}

	for _, q := range queries {
		if intent, ok := ClassifySmallTalk(q); ok {
			t.Fatalf("query %q wrongly classified as small talk (%q)", q, intent)
		}
	}
}

func TestSmallTalkReplyCoversAllPairs(t *testing.T) {
	for _, lang := range Languages {
		for _, intent := range smallTalkIntents {
			if reply := SmallTalkReply(lang, intent); reply == "" {
				t.Fatalf("no reply for lang=%q intent=%q", lang, intent)
			}
		}
	}
}

func TestApologyReplyEmbedsErrorDetail(t *testing.T) {
	cause := errors.New("connection refused")

	for _, lang := range Languages {
		reply := ApologyReply(lang, cause)
		if !strings.Contains(reply, "connection refused") {
			t.Fatalf("apology for %q does not embed the error detail: %q", lang, reply)
		}
	}
}

func TestParseLanguage(t *testing.T) {
	cases := map[string]Language{
		"en":      LanguageEnglish,
		"hi":      LanguageHindi,
		" HI ":    LanguageHindi,
		"":        LanguageEnglish,
		"fr":      LanguageEnglish,
		"hindi":   LanguageEnglish,
		"english": LanguageEnglish,
	}
	for tag, want := range cases {
		if got := ParseLanguage(tag); got != want {
			t.Fatalf("ParseLanguage(%q) = %q, want %q", tag, got, want)
		}
	}
}

func TestLanguageDirective(t *testing.T) {
	if got := LanguageDirective(LanguageEnglish); got != "" {
		t.Fatalf("English needs no directive, got %q", got)
	}
	if got := LanguageDirective(LanguageHindi); got == "" {
		t.Fatal("Hindi directive must not be empty")
	}
}

func TestValidateSmallTalkTables(t *testing.T) {
	if err := ValidateSmallTalkTables(); err != nil {
		t.Fatalf("shipped tables failed the audit: %v", err)
	}
}

package parser

import (
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// calls scans src with the default scanner and returns the call table.
func calls(src string) map[string]int {
	return NewScanner().Parse(src).Calls
}

// assertCalls fails the test when the call table of src differs from want.
func assertCalls(t *testing.T, src string, want map[string]int) {
	t.Helper()
	got := calls(src)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("src=%q calls mismatch (-want +got):\n%s", src, diff)
	}
}

// assertIncludes fails the test when the include set of src differs from want.
func assertIncludes(t *testing.T, src string, want ...string) {
	t.Helper()
	got := NewScanner().Parse(src).SortedIncludes()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("src=%q includes mismatch (-want +got):\n%s", src, diff)
	}
}

// tags returns the tag of every token ScanAll produces.
func tags(src string) []Tag {
	tokens := NewScanner().ScanAll(src)
	out := make([]Tag, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Tag
	}
	return out
}

// ── basics ───────────────────────────────────────────────────────────────────

func TestParse_Empty(t *testing.T) {
	r := NewScanner().Parse("")
	if len(r.Includes) != 0 || len(r.Calls) != 0 || r.Skipped != 0 {
		t.Fatalf("empty input produced %+v", r)
	}
}

func TestParse_Calls(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[string]int
	}{
		{"single call", "foo();", map[string]int{"foo": 1}},
		{"repeated and member", "foo(); foo(); Bar.baz();", map[string]int{"foo": 2, "Bar.baz": 1}},
		{"arrow chain", "a->b->c();", map[string]int{"a.b.c": 1}},
		{"dot chain", "a.b.c();", map[string]int{"a.b.c": 1}},
		{"mixed chain", "a->b.c();", map[string]int{"a.b.c": 1}},
		{"blanks around separator", "Serial . println (x);", map[string]int{"Serial.println": 1}},
		{"nested call", "f(g(h()));", map[string]int{"f": 1, "g": 1, "h": 1}},
		{"call after operator", "x = y + analogRead(A0);", map[string]int{"analogRead": 1}},
		{"call after brace", "{delay(10);}", map[string]int{"delay": 1}},
		{"definition is not a call", "void setup() { pinMode(13, OUTPUT); }", map[string]int{"pinMode": 1}},
		{"return value is not tracked", "return max(a, b);", nil},
		{"comment between name and paren", "foo /* c */ ();", map[string]int{"foo": 1}},
		{"comment hides call", "/* foo( */ bar();", map[string]int{"bar": 1}},
		{"line comment hides call", "foo(); // bar(\nbaz();", map[string]int{"foo": 1, "baz": 1}},
		{"line comment at end of input", "foo(); // bar(", map[string]int{"foo": 1}},
		{"string literal hides call", `"str(" foo();`, map[string]int{"foo": 1}},
		{"string literal before paren", `"x"(1);`, nil},
		{"escaped quote in string", `"a\"(" bar();`, map[string]int{"bar": 1}},
		{"char literal paren", `c = '('; foo();`, map[string]int{"foo": 1}},
		{"escaped char literal", `c = '\''; foo();`, map[string]int{"foo": 1}},
		{"wide char literal", `c = L'x'; foo();`, map[string]int{"foo": 1}},
		{"subscript breaks chain", "arr[i](x);", nil},
		{"number breaks chain", "x = 10 (y);", nil},
		{"leading separator is inert", ".foo();", map[string]int{"foo": 1}},
		{"dangling separator", "a.();", nil},
		{"double separator", "a..b();", map[string]int{"a.b": 1}},
		{"float literal", "x = 1.5e3; y = .5f; Serial.begin(9600);", map[string]int{"Serial.begin": 1}},
		{"hex literal", "x = 0x1F; foo(0b101);", map[string]int{"foo": 1}},
		{"compound operator", "x<<=foo(1);", map[string]int{"foo": 1}},
		{"directive hides call", "#define F(x) foo(x)\nbar();", map[string]int{"bar": 1}},
		{"continued directive hides call", "#define G(x) \\\n  foo(x)\nbaz();", map[string]int{"baz": 1}},
		{"include clears pending name", "foo\n#include <x.h>\n();", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCalls(t, tt.src, tt.want)
		})
	}
}

func TestParse_Includes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"quoted and angle", "#include \"a.h\"\n#include <b.h>\n", []string{"a.h", "b.h"}},
		{"no space before path", "#include<Wire.h>\n", []string{"Wire.h"}},
		{"blank after hash", "#  include \"x.h\"\n", []string{"x.h"}},
		{"path with directories", "#include <avr/pgmspace.h>", []string{"avr/pgmspace.h"}},
		{"duplicates collapse", "#include <a.h>\n#include <a.h>\n", []string{"a.h"}},
		{"macro include is ignored", "#include CONFIG_H\n", nil},
		{"include inside comment", "/* #include <a.h> */", nil},
		{"include inside string", `s = "#include <a.h>";`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertIncludes(t, tt.src, tt.want...)
		})
	}

	if got := calls("#include \"a.h\"\n#include <b.h>\n"); len(got) != 0 {
		t.Errorf("includes produced calls: %v", got)
	}
}

// ── keywords ─────────────────────────────────────────────────────────────────

func TestParse_Keywords(t *testing.T) {
	assertCalls(t, "if(x)", nil)
	assertCalls(t, "if (x) { return; }", nil)
	assertCalls(t, "while(1) { n = sizeof(int); }", nil)
	assertCalls(t, "x = (int)(y);", nil)
	assertCalls(t, "switch (c) { case 1: break; }", nil)
	assertCalls(t, "catch(e);", map[string]int{"catch": 1})

	cpp := NewScanner(WithKeywords(CppKeywords))
	if got := cpp.Parse("catch(e); throw(x); foo();").Calls; !cmp.Equal(got, map[string]int{"foo": 1}) {
		t.Errorf("cpp keywords: got %v", got)
	}
}

func TestKeywordSetByName(t *testing.T) {
	tests := []struct {
		name    string
		want    KeywordSet
		wantErr bool
	}{
		{"", CKeywords, false},
		{"c", CKeywords, false},
		{"CPP", CppKeywords, false},
		{"c++", CppKeywords, false},
		{"rust", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeywordSetByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("KeywordSetByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && !cmp.Equal(got.Words(), tt.want.Words()) {
				t.Errorf("KeywordSetByName(%q) returned the wrong set", tt.name)
			}
		})
	}

	for _, w := range CKeywords.Words() {
		if !CppKeywords.Contains(w) {
			t.Errorf("CppKeywords is missing C keyword %q", w)
		}
	}
}

// ── recovery ─────────────────────────────────────────────────────────────────

func TestParse_SkipAndReset(t *testing.T) {
	s := NewScanner()
	if s.Recovery() != SkipAndReset {
		t.Fatalf("default recovery = %v, want %v", s.Recovery(), SkipAndReset)
	}

	r := s.Parse("foo@(x);")
	if len(r.Calls) != 0 {
		t.Errorf("unmatched byte did not reset pending name: %v", r.Calls)
	}
	if r.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", r.Skipped)
	}

	r = s.Parse("\x00\xff foo(")
	if !cmp.Equal(r.Calls, map[string]int{"foo": 1}) {
		t.Errorf("binary prefix: got %v", r.Calls)
	}
	if r.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", r.Skipped)
	}
}

func TestParse_UnterminatedBlockComment(t *testing.T) {
	r := NewScanner().Parse("x(); /* foo( bar(")
	if !cmp.Equal(r.Calls, map[string]int{"x": 1}) {
		t.Errorf("got %v", r.Calls)
	}
	if r.Skipped != 0 {
		t.Errorf("unterminated comment should be consumed, Skipped = %d", r.Skipped)
	}
}

func TestParse_UnterminatedString(t *testing.T) {
	// The quote is skipped, the rest is scanned as code.
	r := NewScanner().Parse("\"abc foo(")
	if r.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", r.Skipped)
	}
	if len(r.Calls) != 0 {
		t.Errorf("got %v, want no calls", r.Calls)
	}
}

// ── properties ───────────────────────────────────────────────────────────────

var corpusSamples = []string{
	"#include <Servo.h>\nServo s;\nvoid setup() { s.attach(9); Serial.begin(9600); }\n",
	"void loop() {\n  int v = analogRead(A0); // read\n  s.write(map(v, 0, 1023, 0, 180));\n  delay(15);\n}\n",
	"struct p { int x; } *q; q->x = abs(-3); if (q) { digitalWrite(13, HIGH); }",
	"/* block */ const char *msg = \"hello(\"; lcd.print(msg);",
	"#define LED 13\nfor (int i = 0; i < 10; i++) { blink(LED); }",
}

func TestParse_ConcatenationIsAdditive(t *testing.T) {
	s := NewScanner()
	for i, a := range corpusSamples {
		for j, b := range corpusSamples {
			want := make(map[string]int)
			for k, v := range s.Parse(a).Calls {
				want[k] += v
			}
			for k, v := range s.Parse(b).Calls {
				want[k] += v
			}

			got := s.Parse(a + ";\n" + b).Calls
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("samples %d+%d: (-want +got):\n%s", i, j, diff)
			}
		}
	}
}

func TestParse_KeysAreValid(t *testing.T) {
	s := NewScanner()
	for _, src := range corpusSamples {
		for name, count := range s.Parse(src).Calls {
			if name == "" {
				t.Errorf("empty call name in %q", src)
			}
			if CKeywords.Contains(name) {
				t.Errorf("keyword %q recorded as call in %q", name, src)
			}
			if count <= 0 {
				t.Errorf("non-positive count %d for %q", count, name)
			}
		}
	}
}

func TestParse_RandomInputTerminates(t *testing.T) {
	const alphabet = "ab_.->()[]{};,\"'\\/*#\n \t0123456789eE+x@$\x00\xff"
	rng := rand.New(rand.NewSource(42))
	s := NewScanner()

	for n := 0; n < 500; n++ {
		buf := make([]byte, rng.Intn(200))
		for i := range buf {
			buf[i] = alphabet[rng.Intn(len(alphabet))]
		}
		r := s.Parse(string(buf))
		for name := range r.Calls {
			if name == "" || s.Keywords().Contains(name) || strings.HasSuffix(name, ".") {
				t.Fatalf("invalid call key %q for input %q", name, buf)
			}
		}
	}
}

func TestParse_ConcurrentUse(t *testing.T) {
	s := NewScanner()
	want := s.Parse(strings.Join(corpusSamples, "\n")).Calls

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := s.Parse(strings.Join(corpusSamples, "\n")).Calls
			if !cmp.Equal(want, got) {
				errs <- cmp.Diff(want, got)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for diff := range errs {
		t.Errorf("concurrent scan differs:\n%s", diff)
	}
}

// ── rule table ───────────────────────────────────────────────────────────────

func TestRules_Order(t *testing.T) {
	want := []Tag{
		TagWhitespace, TagBlockComment, TagLineComment, TagInclude, TagDirective,
		TagSeparator, TagOperator, TagNoCall, TagParen, TagString, TagChar,
		TagFloat, TagInteger, TagIdentifier,
	}
	rules := Rules()
	got := make([]Tag, len(rules))
	for i, r := range rules {
		got[i] = r.Tag
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rule order mismatch (-want +got):\n%s", diff)
	}

	// Mutating the copy must not affect the table
	rules[0].Tag = "changed"
	if Rules()[0].Tag != TagWhitespace {
		t.Fatal("Rules() exposed the shared table")
	}
}

func TestScanAll_Tokens(t *testing.T) {
	tests := []struct {
		src  string
		want []Tag
	}{
		{"a->b", []Tag{TagIdentifier, TagSeparator, TagIdentifier}},
		{"x-1", []Tag{TagIdentifier, TagOperator, TagInteger}},
		{"1.5e3 .5f 2e10 10UL 0x1F", []Tag{
			TagFloat, TagWhitespace, TagFloat, TagWhitespace, TagFloat,
			TagWhitespace, TagInteger, TagWhitespace, TagInteger,
		}},
		{"a/b/*c*/", []Tag{TagIdentifier, TagOperator, TagIdentifier, TagBlockComment}},
		{"x[1]", []Tag{TagIdentifier, TagOperator, TagInteger, TagNoCall}},
		{"#include <a.h>\n#pragma once\n", []Tag{TagInclude, TagWhitespace, TagDirective}},
		{`L'a' L`, []Tag{TagChar, TagWhitespace, TagIdentifier}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tags(tt.src)); diff != "" {
				t.Errorf("src=%q tags mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestScanAll_TextAndCapture(t *testing.T) {
	tokens := NewScanner().ScanAll("x<<=y; #include \"lib/a.h\"")
	var texts []string
	for _, tok := range tokens {
		if tok.Kind != KindSilent {
			texts = append(texts, tok.Text)
		}
	}
	want := []string{"x", "<<=", "y", ";", "#include \"lib/a.h\""}
	if diff := cmp.Diff(want, texts); diff != "" {
		t.Fatalf("texts mismatch (-want +got):\n%s", diff)
	}

	last := tokens[len(tokens)-1]
	if last.Capture != "lib/a.h" || last.Kind != KindInclude {
		t.Errorf("include token = %+v", last)
	}
	if last.Pos != 7 {
		t.Errorf("include Pos = %d, want 7", last.Pos)
	}
}

// ── result helpers ───────────────────────────────────────────────────────────

func TestResult_Merge(t *testing.T) {
	a := NewScanner().Parse("#include <a.h>\nfoo(); bar();")
	b := NewScanner().Parse("#include <b.h>\nfoo();")
	a.Merge(b)

	if diff := cmp.Diff(map[string]int{"foo": 2, "bar": 1}, a.Calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.h", "b.h"}, a.SortedIncludes()); diff != "" {
		t.Errorf("includes (-want +got):\n%s", diff)
	}
}

func FuzzParse(f *testing.F) {
	for _, src := range corpusSamples {
		f.Add(src)
	}
	f.Add("/*")
	f.Add("#include <")
	f.Add("\"\\")

	s := NewScanner()
	f.Fuzz(func(t *testing.T, src string) {
		r := s.Parse(src)
		for name, count := range r.Calls {
			if name == "" || count <= 0 || s.Keywords().Contains(name) {
				t.Fatalf("invalid entry %q=%d", name, count)
			}
		}
		if r.Skipped > len(src) {
			t.Fatalf("skipped %d bytes of %d", r.Skipped, len(src))
		}
	})
}

func TestParseFile(t *testing.T) {
	parsed, err := ParseFile("../../testdata/sketches/blink/blink.ino")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	want := map[string]int{"pinMode": 1, "digitalWrite": 2, "delay": 2}
	if diff := cmp.Diff(want, parsed.Result.Calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if len(parsed.Result.Includes) != 0 {
		t.Errorf("unexpected includes: %v", parsed.Result.SortedIncludes())
	}

	if _, err := ParseFile("../../testdata/sketches/missing.ino"); err == nil {
		t.Error("expected error for a missing file")
	}
}

package credentials

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

type recorder struct{ lines []string }

func (r *recorder) Info(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

type fakePrompter struct {
	answer string
	err    error
	calls  int
}

func (f *fakePrompter) Prompt(label string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func noEnv(string) (string, bool) { return "", false }

func TestTokenFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/proj/token.txt", []byte("  stored-token \n"), 0600); err != nil {
		t.Fatal(err)
	}
	prompt := &fakePrompter{answer: "typed"}
	log := &recorder{}
	p := &FileProvider{Fs: fs, Path: "/proj/token.txt", EnvVar: "TX", Lookup: noEnv, Label: "Transifex", Prompter: prompt, Log: log}

	got, err := p.Token()
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if got != "stored-token" {
		t.Fatalf("Token() = %q, want stored-token", got)
	}
	if prompt.calls != 0 {
		t.Fatalf("prompted %d times with a stored token", prompt.calls)
	}
	if len(log.lines) != 1 || !strings.Contains(log.lines[0], "token.txt") {
		t.Fatalf("log = %q", log.lines)
	}
}

func TestTokenPromptsAndPersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	// An empty file counts as no token.
	if err := afero.WriteFile(fs, "/proj/token.txt", []byte("\n"), 0600); err != nil {
		t.Fatal(err)
	}
	prompt := &fakePrompter{answer: " typed-token "}
	p := &FileProvider{Fs: fs, Path: "/proj/token.txt", Lookup: noEnv, Label: "ParaTranz", Prompter: prompt}

	got, err := p.Token()
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if got != "typed-token" {
		t.Fatalf("Token() = %q, want typed-token", got)
	}

	data, err := afero.ReadFile(fs, "/proj/token.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "typed-token" {
		t.Fatalf("token file = %q, want typed-token", data)
	}
	info, err := fs.Stat("/proj/token.txt")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("token file mode = %o, want 600", info.Mode().Perm())
	}

	// Second call reuses the persisted token.
	if _, err := p.Token(); err != nil {
		t.Fatal(err)
	}
	if prompt.calls != 1 {
		t.Fatalf("prompt calls = %d, want 1", prompt.calls)
	}
}

func TestTokenEnvWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/t", []byte("file"), 0600)
	lookup := func(key string) (string, bool) {
		if key == "PARATRANZ_API_TOKEN" {
			return "env-token", true
		}
		return "", false
	}
	p := &FileProvider{Fs: fs, Path: "/t", EnvVar: "PARATRANZ_API_TOKEN", Lookup: lookup}
	if got, _ := p.Token(); got != "env-token" {
		t.Fatalf("Token() = %q, want env-token", got)
	}
}

func TestTokenErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	noPrompt := &FileProvider{Fs: fs, Path: "/t", Lookup: noEnv, Label: "Transifex"}
	if _, err := noPrompt.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Token() without prompter = %v, want ErrNoToken", err)
	}

	empty := &FileProvider{Fs: fs, Path: "/t", Lookup: noEnv, Prompter: &fakePrompter{answer: "   "}}
	if _, err := empty.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Token() with empty answer = %v, want ErrNoToken", err)
	}
	if _, ok := empty.Stored(); ok {
		t.Fatal("empty answer must not be persisted")
	}

	failing := &FileProvider{Fs: fs, Path: "/t", Lookup: noEnv, Prompter: &fakePrompter{err: errors.New("boom")}}
	if _, err := failing.Token(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Token() = %v, want prompt error", err)
	}
}

func TestSaveRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := &FileProvider{Fs: fs, Path: "/state/paratranz_token.txt"}

	if err := p.Save("abc\n"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if got, ok := p.Stored(); !ok || got != "abc" {
		t.Fatalf("Stored() = %q, %v", got, ok)
	}
	if err := p.Remove(); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, ok := p.Stored(); ok {
		t.Fatal("Stored() after Remove = ok")
	}
	if err := p.Remove(); err != nil {
		t.Fatalf("Remove(missing) should be no-op, got: %v", err)
	}
}

func TestStatic(t *testing.T) {
	if got, err := Static("tok").Token(); err != nil || got != "tok" {
		t.Fatalf("Static.Token() = %q, %v", got, err)
	}
	if _, err := Static("").Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Static(\"\").Token() = %v, want ErrNoToken", err)
	}
}

func TestReaderPrompter(t *testing.T) {
	var out strings.Builder
	p := NewReaderPrompter(strings.NewReader("first\nsecond"), &out)

	if got, err := p.Prompt("A: "); err != nil || got != "first" {
		t.Fatalf("Prompt() = %q, %v", got, err)
	}
	if got, err := p.Prompt("B: "); err != nil || got != "second" {
		t.Fatalf("Prompt() = %q, %v", got, err)
	}
	if _, err := p.Prompt("C: "); err == nil {
		t.Fatal("Prompt() at EOF should fail")
	}
	if out.String() != "A: B: C: " {
		t.Fatalf("prompts = %q", out.String())
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q, want ****", got)
	}
	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}

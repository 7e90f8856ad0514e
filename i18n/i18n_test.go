package i18n

import (
	"fmt"
	"testing"
)

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}

	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestInitLoadsEmbeddedCatalog(t *testing.T) {
	oldPo, oldLang := po, lang
	t.Cleanup(func() { po, lang = oldPo, oldLang })

	Init("zh_CN")
	if got := Language(); got != "zh_CN" {
		t.Fatalf("Language() = %q, want %q", got, "zh_CN")
	}
	if got, want := T("Show translation progress"), "显示翻译进度"; got != want {
		t.Fatalf("T() = %q, want %q", got, want)
	}
	if got, want := N("Found %d source file", "Found %d source files", 3), "找到 %d 个源文件"; got != want {
		t.Fatalf("N() = %q, want %q", got, want)
	}
	if got := T("not in the catalog"); got != "not in the catalog" {
		t.Fatalf("T(unknown) = %q, want passthrough", got)
	}
}

func TestInitUnknownLanguagePassesThrough(t *testing.T) {
	oldPo, oldLang := po, lang
	t.Cleanup(func() { po, lang = oldPo, oldLang })

	Init("xx_YY")
	if got := T("Show translation progress"); got != "Show translation progress" {
		t.Fatalf("T() = %q, want passthrough", got)
	}
}

func TestCatalogCoversWorkflowMessages(t *testing.T) {
	oldPo, oldLang := po, lang
	t.Cleanup(func() { po, lang = oldPo, oldLang })

	Init("zh_CN")
	for _, msgid := range []string{
		"Downloaded '%s' successfully.",
		"Uploaded %s successfully.",
		"Extracted %d files to %s",
		"Translation file for '%s' not found. Skipping.",
		"Using %s token from $%s",
	} {
		if got := T(msgid); got == msgid {
			t.Errorf("T(%q) is untranslated", msgid)
		}
	}
	if got, want := fmt.Sprintf(T("Found %d resources in project %s"), 4, "o:a:p:b"), "在项目 o:a:p:b 中找到 4 个资源"; got != want {
		t.Errorf("reordered verbs = %q, want %q", got, want)
	}
}

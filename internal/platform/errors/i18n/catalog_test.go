package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if base.Locale() != "en-US" {
		t.Fatalf("Locale() = %q, want en-US", base.Locale())
	}
	fallback := GetCatalog("")
	if fallback.Locale() != "en-US" {
		t.Fatalf("empty locale resolved to %q, want en-US", fallback.Locale())
	}
	unknown := GetCatalog("xx-invalid-@@")
	if unknown.Locale() != "en-US" {
		t.Fatalf("invalid locale resolved to %q, want en-US", unknown.Locale())
	}
}

func TestGetCatalogMatchesSupportedLocale(t *testing.T) {
	for _, locale := range []string{"pt-BR", "pt", "pt-BR,pt;q=0.9,en;q=0.8"} {
		cat := GetCatalog(locale)
		if cat.Locale() != "pt-BR" {
			t.Fatalf("GetCatalog(%q).Locale() = %q, want pt-BR", locale, cat.Locale())
		}
	}
}

func TestGetCatalogIsCached(t *testing.T) {
	if GetCatalog("pt-BR") != GetCatalog("pt-BR") {
		t.Fatal("expected cached catalog")
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	cat := GetCatalog("en-US")
	got := cat.Format(CodeDiceInvalidSides, map[string]string{"Sides": "0"})
	if got != "A die needs at least one side, got 0" {
		t.Fatalf("Format() = %q", got)
	}

	pt := GetCatalog("pt-BR")
	got = pt.Format(CodeDiceInvalidCount, map[string]string{"Count": "-1"})
	if got != "É preciso rolar pelo menos um dado, recebido -1" {
		t.Fatalf("Format() = %q", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := GetCatalog("en-US")
	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if cat.Format(CodeNotFound, nil) != "<no value> not found" {
		t.Fatalf("expected template to render missing metadata, got %q", cat.Format(CodeNotFound, nil))
	}
}

func TestFormatKeepsPercentSigns(t *testing.T) {
	cat := GetCatalog("en-US")
	got := cat.Format(CodeDiceInvalidNotation, map[string]string{"Notation": "100%"})
	want := "\"100%\" is not valid dice notation (expected something like 3d6+5)"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

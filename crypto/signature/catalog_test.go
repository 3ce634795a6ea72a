package signature

import (
	"errors"
	"testing"
)

func TestLoadCatalogRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"root not array", `{"id":"x"}`},
		{"missing id", `[{"name":"X","matchers":[{"type":"equals","offset":0,"pattern":"A"}]}]`},
		{"missing name", `[{"id":"x","matchers":[{"type":"equals","offset":0,"pattern":"A"}]}]`},
		{"no matchers", `[{"id":"x","name":"X"}]`},
		{"negative read offset", `[{"id":"x","name":"X","read_offset":-1,"matchers":[{"type":"equals","offset":0,"pattern":"A"}]}]`},
		{"negative matcher offset", `[{"id":"x","name":"X","matchers":[{"type":"equals","offset":-4,"pattern":"A"}]}]`},
		{"empty pattern", `[{"id":"x","name":"X","matchers":[{"type":"equals","offset":0,"pattern":""}]}]`},
		{"bad matcher type", `[{"id":"x","name":"X","matchers":[{"type":"regex","offset":0,"pattern":"A"}]}]`},
		{"bad hex pattern", `[{"id":"x","name":"X","matchers":[{"type":"equals","offset":0,"pattern":"zz","encoding":"hex"}]}]`},
		{"bad encoding", `[{"id":"x","name":"X","matchers":[{"type":"equals","offset":0,"pattern":"A","encoding":"base64"}]}]`},
		{"bad status", `[{"id":"x","name":"X","status":"maybe","matchers":[{"type":"equals","offset":0,"pattern":"A"}]}]`},
		{"bad version extractor", `[{"id":"x","name":"X","matchers":[{"type":"equals","offset":0,"pattern":"A"}],"version":{"type":"float","offset":0}}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat, err := LoadCatalog([]byte(tc.raw))
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			if cat.Len() != 0 {
				t.Fatalf("invalid catalog must be empty, got %d definitions", cat.Len())
			}
		})
	}
}

func TestLoadCatalogDefaultsAndHex(t *testing.T) {
	raw := `[
	  {"id":"a","name":"A","matchers":[{"type":"equals","offset":3,"pattern":"4142","encoding":"hex"}]},
	  {"id":"b","name":"B","status":"partial","max_read":64,"matchers":[{"type":"contains","offset":0,"pattern":"MAGIC"}]}
	]`
	cat, err := LoadCatalog([]byte(raw))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 definitions, got %d", cat.Len())
	}
	a := cat.Definitions()[0]
	if a.MaxRead != defaultMaxRead {
		t.Fatalf("max_read should default to %d, got %d", defaultMaxRead, a.MaxRead)
	}
	if string(a.Matchers[0].Pattern) != "AB" {
		t.Fatalf("hex pattern decoded wrong: %q", a.Matchers[0].Pattern)
	}
	b := cat.Definitions()[1]
	if b.MaxRead != 64 {
		t.Fatalf("explicit max_read lost, got %d", b.MaxRead)
	}
}

func TestCatalogFilterIsNonMutatingView(t *testing.T) {
	cat := DefaultCatalog()
	before := cat.Len()
	if before == 0 {
		t.Fatal("builtin catalog must not be empty")
	}
	view := cat.Filter("luks", "no-such-id")
	if view.Len() != 1 {
		t.Fatalf("filtered view should hold 1 definition, got %d", view.Len())
	}
	if view.Definitions()[0].ID != "luks" {
		t.Fatalf("filter kept wrong definition: %s", view.Definitions()[0].ID)
	}
	if cat.Len() != before {
		t.Fatalf("filter mutated the catalog: %d -> %d", before, cat.Len())
	}
	if got := cat.Filter().Len(); got != before {
		t.Fatalf("empty filter must return the full view, got %d", got)
	}
}

func TestVersionExtractorDegradesToEmpty(t *testing.T) {
	cases := []struct {
		name string
		ve   VersionExtractor
		data []byte
		want string
	}{
		{"uint16 ok", VersionExtractor{Kind: "uint16-le", Offset: 2}, []byte{0, 0, 2, 0}, "2"},
		{"uint16 zero", VersionExtractor{Kind: "uint16-le", Offset: 0}, []byte{0, 0}, ""},
		{"uint16 out of range", VersionExtractor{Kind: "uint16-le", Offset: 10}, []byte{1, 2}, ""},
		{"ascii ok", VersionExtractor{Kind: "ascii", Offset: 0, Length: 3}, []byte("1.2\x00"), "1.2"},
		{"ascii trims nul", VersionExtractor{Kind: "ascii", Offset: 0, Length: 4}, []byte("1.2\x00"), "1.2"},
		{"ascii out of range", VersionExtractor{Kind: "ascii", Offset: 2, Length: 8}, []byte("abc"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ve.Extract(tc.data); got != tc.want {
				t.Fatalf("Extract() = %q, want %q", got, tc.want)
			}
		})
	}
}

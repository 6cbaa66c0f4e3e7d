package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"pgregory.net/rapid"
)

const registryPath = "src/links/registry.ts"

func TestOpenFixture(t *testing.T) {
	r := openFixture(t)

	wantNames := []string{
		"sections", "travelTrips", "photographySections", "photographyAwards",
		"musicSections", "musicConcerts", "musicFavorites", "academicsSections",
		"academicsSummerPrograms", "academicsYears", "geographyLinks", "guardianArtsLinks",
	}
	if got := strings.Join(r.Names(), ","); got != strings.Join(wantNames, ",") {
		t.Errorf("Names() = %v\nwant %v", r.Names(), wantNames)
	}

	trips, err := r.ReadList("travelTrips")
	if err != nil {
		t.Fatalf("ReadList(travelTrips) error: %v", err)
	}
	if len(trips) != 9 {
		t.Fatalf("travelTrips has %d entries, want 9", len(trips))
	}
	if trips[8] != (LinkEntry{Href: "/travel/trips/norway-2019", Label: "Norway 2019"}) {
		t.Errorf("last trip = %+v, want Norway 2019", trips[8])
	}

	// Multi-line objects parse like single-line ones.
	awards, err := r.ReadList("photographyAwards")
	if err != nil {
		t.Fatalf("ReadList(photographyAwards) error: %v", err)
	}
	if len(awards) != 1 || awards[0].Label != "Peninsula Photo Competition 2025" {
		t.Errorf("photographyAwards = %+v", awards)
	}

	empty, err := r.ReadList("geographyLinks")
	if err != nil {
		t.Fatalf("ReadList(geographyLinks) error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("geographyLinks = %+v, want empty", empty)
	}
}

func TestReadListNotFound(t *testing.T) {
	r := openFixture(t)
	_, err := r.ReadList("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadList(nope) error = %v, want ErrNotFound", err)
	}
}

// Appending to travelTrips adds one entry at the tail; repeating it is a no-op.
func TestAppendIfAbsentTravelTrips(t *testing.T) {
	fs := fixtureFS(t)
	r, err := Open(fs, registryPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	entry := LinkEntry{Href: "/travel/trips/tokyo-2026", Label: "Tokyo 2026"}

	inserted, err := r.AppendIfAbsent("travelTrips", entry)
	if err != nil {
		t.Fatalf("AppendIfAbsent() error: %v", err)
	}
	if !inserted {
		t.Fatal("first AppendIfAbsent should insert")
	}

	reopened, err := Open(fs, registryPath)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	trips, _ := reopened.ReadList("travelTrips")
	if len(trips) != 10 {
		t.Fatalf("travelTrips has %d entries, want 10", len(trips))
	}
	if trips[9] != entry {
		t.Errorf("last entry = %+v, want %+v", trips[9], entry)
	}

	inserted, err = reopened.AppendIfAbsent("travelTrips", entry)
	if err != nil {
		t.Fatalf("second AppendIfAbsent() error: %v", err)
	}
	if inserted {
		t.Error("second AppendIfAbsent should be a no-op")
	}
	trips, _ = reopened.ReadList("travelTrips")
	if len(trips) != 10 {
		t.Errorf("travelTrips has %d entries after repeat, want 10", len(trips))
	}
}

func TestAppendPreservesUntouchedText(t *testing.T) {
	fs := fixtureFS(t)
	before := readFile(t, fs, registryPath)

	r, err := Open(fs, registryPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := r.AppendIfAbsent("musicConcerts", LinkEntry{Href: "/music/concerts/boygenius-2026", Label: "boygenius 2026"}); err != nil {
		t.Fatalf("AppendIfAbsent() error: %v", err)
	}
	after := readFile(t, fs, registryPath)

	anchor := "  { href: '/music/concerts/reset-2023', label: 'Re:Set 2023' },\n"
	i := strings.Index(before, anchor)
	if i < 0 {
		t.Fatal("fixture anchor missing")
	}
	cut := i + len(anchor)
	if after[:cut] != before[:cut] {
		t.Error("text before the insertion point changed")
	}
	inserted := "  { href: '/music/concerts/boygenius-2026', label: 'boygenius 2026' },\n"
	if !strings.HasPrefix(after[cut:], inserted) {
		t.Errorf("inserted text = %q, want prefix %q", after[cut:cut+len(inserted)], inserted)
	}
	if after[cut+len(inserted):] != before[cut:] {
		t.Error("text after the insertion point changed")
	}
}

func TestAppendEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "empty list",
			src:  "export const links = [];\n",
			want: "export const links = [\n  { href: '/a', label: 'A' },\n];\n",
		},
		{
			name: "missing trailing comma",
			src:  "export const links = [\n    { href: '/x', label: 'X' }\n];\n",
			want: "export const links = [\n    { href: '/x', label: 'X' },\n    { href: '/a', label: 'A' },\n];\n",
		},
		{
			name: "trailing comment",
			src:  "export const links = [\n  { href: '/x', label: 'X' }, // keep\n];\n",
			want: "export const links = [\n  { href: '/x', label: 'X' }, // keep\n  { href: '/a', label: 'A' },\n];\n",
		},
		{
			name: "single line",
			src:  "export const links = [{ href: '/x', label: 'X' }];",
			want: "export const links = [{ href: '/x', label: 'X' },\n  { href: '/a', label: 'A' },\n];",
		},
		{
			name: "typed declaration",
			src:  "export const links: LinkEntry[] = [\n  { href: '/x', label: 'X' },\n] as const;\n",
			want: "export const links: LinkEntry[] = [\n  { href: '/x', label: 'X' },\n  { href: '/a', label: 'A' },\n] as const;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFile(t, fs, "links.ts", tt.src)
			r, err := Open(fs, "links.ts")
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if _, err := r.AppendIfAbsent("links", LinkEntry{Href: "/a", Label: "A"}); err != nil {
				t.Fatalf("AppendIfAbsent() error: %v", err)
			}
			if got := readFile(t, fs, "links.ts"); got != tt.want {
				t.Errorf("result:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestAppendEscapesLabel(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "links.ts", "export const links = [];\n")
	r, err := Open(fs, "links.ts")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	label := `It's a \ "test" with ` + "`ticks`"
	if _, err := r.AppendIfAbsent("links", LinkEntry{Href: "/t", Label: label}); err != nil {
		t.Fatalf("AppendIfAbsent() error: %v", err)
	}

	reopened, err := Open(fs, "links.ts")
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	entries, err := reopened.ReadList("links")
	if err != nil {
		t.Fatalf("ReadList() error: %v", err)
	}
	if entries[0].Label != label {
		t.Errorf("label round-trip = %q, want %q", entries[0].Label, label)
	}
}

func TestMalformedList(t *testing.T) {
	src := `export const good = [ { href: '/a', label: 'A' } ];
export const bad = [ { href: '/a', title: 'A' } ];
export const spread = [ ...good ];
export const config = { site: 'x' };
`
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "links.ts", src)
	r, err := Open(fs, "links.ts")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	if _, err := r.ReadList("good"); err != nil {
		t.Errorf("ReadList(good) error: %v", err)
	}
	for _, name := range []string{"bad", "spread"} {
		if _, err := r.ReadList(name); !errors.Is(err, ErrMalformed) {
			t.Errorf("ReadList(%s) error = %v, want ErrMalformed", name, err)
		}
		if _, err := r.AppendIfAbsent(name, LinkEntry{Href: "/z", Label: "Z"}); !errors.Is(err, ErrMalformed) {
			t.Errorf("AppendIfAbsent(%s) error = %v, want ErrMalformed", name, err)
		}
	}
	// Non-array exports are not lists.
	if r.Has("config") {
		t.Error("object export should not be treated as a list")
	}
	if got := readFile(t, fs, "links.ts"); got != src {
		t.Error("failed appends must not modify the file")
	}
}

func TestOpenErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "links.ts", "export const links = [ { href: '/a' ")
	writeFile(t, fs, "links.json", "{}")

	if _, err := Open(fs, "links.ts"); !errors.Is(err, ErrMalformed) {
		t.Errorf("unterminated document error = %v, want ErrMalformed", err)
	}
	if _, err := Open(fs, "links.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("json document error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Open(fs, "missing.ts"); err == nil {
		t.Error("expected error for missing registry")
	}
}

func TestIgnoresCommentsAndStrings(t *testing.T) {
	src := `/* export const ghost = [ { href: '/ghost', label: 'Ghost' } ]; */
// export const alsoGhost = [];
const note = "export const fake = [];";
export const real = [
  // { href: '/commented', label: 'Commented' },
  { href: '/real', label: 'Real ] bracket' },
];
`
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "links.ts", src)
	r, err := Open(fs, "links.ts")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got := r.Names(); len(got) != 1 || got[0] != "real" {
		t.Fatalf("Names() = %v, want [real]", got)
	}
	entries, _ := r.ReadList("real")
	if len(entries) != 1 || entries[0].Label != "Real ] bracket" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestModuleWithRegExpLiterals(t *testing.T) {
	src := "export const isExternal = (h: string) => /^'http/.test(h);\n" +
		"const slug = (s) => s.replace(/[\"`{]/g, '') / 2;\n" +
		"export const links = [\n" +
		"  { href: '/a', label: 'A' },\n" +
		"];\n"
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "links.ts", src)

	r, err := Open(fs, "links.ts")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got := r.Names(); len(got) != 1 || got[0] != "links" {
		t.Fatalf("Names() = %v, want [links]", got)
	}
	if _, err := r.AppendIfAbsent("links", LinkEntry{Href: "/b", Label: "B"}); err != nil {
		t.Fatalf("AppendIfAbsent() error: %v", err)
	}

	want := strings.Replace(src, "  { href: '/a', label: 'A' },\n", "  { href: '/a', label: 'A' },\n  { href: '/b', label: 'B' },\n", 1)
	if got := readFile(t, fs, "links.ts"); got != want {
		t.Errorf("result:\n%s\nwant:\n%s", got, want)
	}
}

func TestCheck(t *testing.T) {
	src := `export const a = [
  { href: '/x', label: 'X' },
  { href: '/x', label: 'X again' },
  { href: 'relative', label: 'Relative' },
];
export const b = [ 42 ];
`
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "links.ts", src)
	r, err := Open(fs, "links.ts")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	problems := r.Check()
	if len(problems) != 3 {
		t.Fatalf("Check() = %d problems %+v, want 3", len(problems), problems)
	}
	if problems[2].List != "b" {
		t.Errorf("third problem list = %q, want b", problems[2].List)
	}

	if clean := openFixture(t).Check(); len(clean) != 0 {
		t.Errorf("fixture Check() = %+v, want none", clean)
	}
}

func TestAppendWriteFailureLeavesRegistryUsable(t *testing.T) {
	base := fixtureFS(t)
	r, err := Open(afero.NewReadOnlyFs(base), registryPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := r.AppendIfAbsent("travelTrips", LinkEntry{Href: "/travel/trips/oslo", Label: "Oslo"}); err == nil {
		t.Fatal("expected write error on read-only fs")
	}
	trips, err := r.ReadList("travelTrips")
	if err != nil {
		t.Fatalf("ReadList() after failure: %v", err)
	}
	if len(trips) != 9 {
		t.Errorf("in-memory list has %d entries after failed write, want 9", len(trips))
	}
}

// Any sequence of appends keeps one entry per href in first-insertion order.
func TestAppendIfAbsentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "links.ts", []byte("export const links = [];\n"), 0644); err != nil {
			t.Fatalf("seeding: %v", err)
		}
		hrefs := rapid.SliceOf(rapid.SampledFrom([]string{"/a", "/b", "/c", "/d", "/e"})).Draw(t, "hrefs")

		var want []string
		seen := make(map[string]bool)
		for i, h := range hrefs {
			r, err := Open(fs, "links.ts")
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			inserted, err := r.AppendIfAbsent("links", LinkEntry{Href: h, Label: fmt.Sprintf("L%d", i)})
			if err != nil {
				t.Fatalf("AppendIfAbsent() error: %v", err)
			}
			if inserted == seen[h] {
				t.Fatalf("AppendIfAbsent(%s) inserted=%v, already seen=%v", h, inserted, seen[h])
			}
			if !seen[h] {
				seen[h] = true
				want = append(want, h)
			}
		}

		r, err := Open(fs, "links.ts")
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		entries, err := r.ReadList("links")
		if err != nil {
			t.Fatalf("ReadList() error: %v", err)
		}
		if len(entries) != len(want) {
			t.Fatalf("got %d entries, want %d", len(entries), len(want))
		}
		for i, e := range entries {
			if e.Href != want[i] {
				t.Fatalf("entry %d = %s, want %s", i, e.Href, want[i])
			}
		}
	})
}

func TestYAMLRegistry(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "links.yaml", `# Site navigation
travelTrips:
  - href: /travel/trips/rome-2024
    label: Rome 2024
geographyLinks: []
guardianArtsLinks:
`)

	r, err := Open(fs, "links.yaml")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got := strings.Join(r.Names(), ","); got != "travelTrips,geographyLinks,guardianArtsLinks" {
		t.Errorf("Names() = %s", got)
	}

	maps := LinkEntry{Href: "/geography/maps", Label: "Maps"}
	for _, name := range []string{"geographyLinks", "guardianArtsLinks"} {
		inserted, err := r.AppendIfAbsent(name, maps)
		if err != nil {
			t.Fatalf("AppendIfAbsent(%s) error: %v", name, err)
		}
		if !inserted {
			t.Errorf("AppendIfAbsent(%s) should insert", name)
		}
	}

	reopened, err := Open(fs, "links.yaml")
	if err != nil {
		t.Fatalf("reopening: %v\n%s", err, readFile(t, fs, "links.yaml"))
	}
	for _, name := range []string{"geographyLinks", "guardianArtsLinks"} {
		entries, err := reopened.ReadList(name)
		if err != nil {
			t.Fatalf("ReadList(%s) error: %v", name, err)
		}
		if len(entries) != 1 || entries[0] != maps {
			t.Errorf("%s = %+v, want [%+v]", name, entries, maps)
		}
	}
	trips, _ := reopened.ReadList("travelTrips")
	if len(trips) != 1 || trips[0].Label != "Rome 2024" {
		t.Errorf("travelTrips = %+v", trips)
	}
	if content := readFile(t, fs, "links.yaml"); !strings.Contains(content, "# Site navigation") {
		t.Errorf("comment should survive the rewrite:\n%s", content)
	}

	inserted, err := reopened.AppendIfAbsent("geographyLinks", maps)
	if err != nil || inserted {
		t.Errorf("repeat append = %v, %v; want no-op", inserted, err)
	}

	writeFile(t, fs, "bad.yaml", "travelTrips:\n  - href: /a\n")
	bad, err := Open(fs, "bad.yaml")
	if err != nil {
		t.Fatalf("Open(bad) error: %v", err)
	}
	if _, err := bad.ReadList("travelTrips"); !errors.Is(err, ErrMalformed) {
		t.Errorf("ReadList on entry without label = %v, want ErrMalformed", err)
	}
}

func TestYAMLCanonicalRoundTrip(t *testing.T) {
	src := `# Site navigation
travelTrips:
  - href: /travel/trips/rome-2024
    label: Rome 2024
geographyLinks: []
`
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "links.yaml", src)
	r, err := Open(fs, "links.yaml")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := r.AppendIfAbsent("travelTrips", LinkEntry{Href: "/travel/trips/oslo-2025", Label: "Oslo 2025"}); err != nil {
		t.Fatalf("AppendIfAbsent() error: %v", err)
	}

	want := `# Site navigation
travelTrips:
  - href: /travel/trips/rome-2024
    label: Rome 2024
  - href: /travel/trips/oslo-2025
    label: Oslo 2025
geographyLinks: []
`
	if got := readFile(t, fs, "links.yaml"); got != want {
		t.Errorf("result:\n%s\nwant:\n%s", got, want)
	}
}

// ─── Test Helpers ──────────────────────────────────────────────────

func fixtureFS(t *testing.T) afero.Fs {
	t.Helper()
	data, err := os.ReadFile("testdata/registry.ts")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	fs := afero.NewMemMapFs()
	writeFile(t, fs, registryPath, string(data))
	return fs
}

func openFixture(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(fixtureFS(t), registryPath)
	if err != nil {
		t.Fatalf("Open(fixture) error: %v", err)
	}
	return r
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

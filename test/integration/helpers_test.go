//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagesmith-dev/pagesmith/internal/config"
	"github.com/spf13/afero"
)

// testSite holds an isolated site root on disk.
type testSite struct {
	Root string
	FS   afero.Fs // rooted at Root, as the CLI opens it
	Cfg  *config.Config
}

// setupSite creates a site root with the layout, sidebar component, the
// registry fixture and a few pages in various states of conformance.
func setupSite(t *testing.T) *testSite {
	t.Helper()

	root := t.TempDir()
	registryTS, err := os.ReadFile(filepath.Join("..", "..", "internal", "registry", "testdata", "registry.ts"))
	if err != nil {
		t.Fatalf("reading registry fixture: %v", err)
	}
	writeFile(t, filepath.Join(root, "src/links/registry.ts"), string(registryTS))
	writeFile(t, filepath.Join(root, "src/layouts/Page.astro"), "<html><body><slot name=\"sidebar\" /><slot /></body></html>\n")
	writeFile(t, filepath.Join(root, "src/components/LinkList.astro"), "<ul></ul>\n")

	// --- Pages ---
	writeFile(t, filepath.Join(root, "src/pages/index.astro"), "<h1>Home</h1>\n")
	writeFile(t, filepath.Join(root, "src/pages/travel/index.astro"), "<p>Old travel index</p>\n")
	writeFile(t, filepath.Join(root, "src/pages/travel/trips/rome-2024.astro"), `---
import Layout from '../../../layouts/Page.astro';
import Gallery from '../../../components/Gallery.astro';
---
<Layout title="Rome 2024">
  <Gallery />
</Layout>
`)
	writeFile(t, filepath.Join(root, "src/pages/music/concerts/laufey-2025.astro"), "<p>Laufey live.</p>\n")

	cfg, err := config.Load(config.LoadOptions{Root: root})
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	return &testSite{Root: root, FS: afero.NewBasePathFs(afero.NewOsFs(), root), Cfg: cfg}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to not exist: %s", path)
	}
}

func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	if content := readFile(t, path); !strings.Contains(content, substr) {
		t.Errorf("file %s does not contain %q\ncontent:\n%s", path, substr, content)
	}
}

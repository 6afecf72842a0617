package compile

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"ghostkit/config"
	"ghostkit/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs bool, transliterate bool, format config.OutputFormat) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Output.Transliterate = transliterate

	return &state.LocalEnv{
		Log:    logger,
		Cfg:    cfg,
		NoDirs: noDirs,
		Format: format,
	}
}

func TestBuildOutputPath(t *testing.T) {
	tests := []struct {
		name          string
		src           string
		noDirs        bool
		transliterate bool
		format        config.OutputFormat
		want          string
	}{
		{"no dirs", "site/pages/home.yaml", true, false, config.OutputFormatCSS, filepath.Join("/output", "home.css")},
		{"with dirs", "site/pages/home.yaml", false, false, config.OutputFormatCSS, filepath.Join("/output", "site", "pages", "home.css")},
		{"top level", "home.json", false, false, config.OutputFormatHTML, filepath.Join("/output", "home.html")},
		{"document", "home.json", false, false, config.OutputFormatDocument, filepath.Join("/output", "home.yaml")},
		{"escaping dirs", "../../pages/home.yaml", false, false, config.OutputFormatCSS, filepath.Join("/output", "pages", "home.css")},
		{"transliterate", "Книга/Страница.yaml", false, true, config.OutputFormatCSS, filepath.Join("/output", "kniga", "stranitsa.css")},
		{"no transliterate", "Книга/Страница.yaml", false, false, config.OutputFormatCSS, filepath.Join("/output", "Книга", "Страница.css")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate, tt.format)
			if got := buildOutputPath(filepath.FromSlash(tt.src), "/output", env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrepareOutput(t *testing.T) {
	log := zaptest.NewLogger(t)
	dir := t.TempDir()
	name := filepath.Join(dir, "a", "b", "home.css")

	if err := prepareOutput(name, false, log); err != nil {
		t.Fatalf("prepareOutput() error = %v", err)
	}
	if fi, err := os.Stat(filepath.Dir(name)); err != nil || !fi.IsDir() {
		t.Fatalf("output directory was not created: %v", err)
	}
	if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := prepareOutput(name, false, log); err == nil {
		t.Error("existing output must be rejected without overwrite")
	}
	if err := prepareOutput(name, true, log); err != nil {
		t.Errorf("prepareOutput() with overwrite error = %v", err)
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(in))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		return ExitError
	}
	return ExitSuccess
}

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRootNoCode(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, msgNoCode+"\n", out)
}

func TestRootLookup(t *testing.T) {
	out, err := execute(t, "de")
	require.NoError(t, err)
	assert.Equal(t, "Country(Germany, DE), PopularLanguage(German, DE)\n", out)
}

func TestRootInvalidCode(t *testing.T) {
	out, err := execute(t, "usa")
	require.NoError(t, err)
	assert.Equal(t, "Country code must be a 2 character string\n", out)

	out, err = execute(t, "xx")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown country code")
}

func TestRootJSON(t *testing.T) {
	out, err := execute(t, "--json", "fr")
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "FR", parsed["code"])
	assert.Equal(t, "France", parsed["name"])
	assert.Equal(t, "French", parsed["language_name"])
}

func TestRootWithFlag(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"germany", "france", "spain"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".png"), []byte("x"), 0o644))
	}

	out, err := execute(t, "--flags-dir", dir, "--flag", "ES")
	require.NoError(t, err)
	assert.Contains(t, out, "Flag(spain, 1.00)")
}

func TestMatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"us", "united-kingdom"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".png"), []byte("x"), 0o644))
	}

	out, err := execute(t, "match", "--flags-dir", dir, "United", "States")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "united-kingdom\t0.5185\t"), "got %q", out)

	out, err = execute(t, "match", "--flags-dir", dir, "--top", "2", "United States")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "us\t0.2667\t"), "got %q", lines[1])
}

func TestMatchEmptyStore(t *testing.T) {
	_, err := execute(t, "match", "--flags-dir", t.TempDir(), "France")
	assert.Equal(t, ExitConfig, exitCode(err))

	_, err = execute(t, "match", "--flags-dir", filepath.Join(t.TempDir(), "missing"), "France")
	assert.Equal(t, ExitConfig, exitCode(err))
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flags/4x3/de.svg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 640 480"></svg>`))
	}))
	defer server.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "flagpic.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("remote:\n  base_url: "+server.URL+"\n"), 0o644))
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	out, err := execute(t, "fetch", "--config", cfgPath, "--no-cache", "--ratio", "4x3", "--dir", outDir, "DE")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "de_4x3.svg")+"\n", out)

	_, err = execute(t, "fetch", "--config", cfgPath, "--no-cache", "--dir", outDir, "de")
	assert.Equal(t, ExitNotFound, exitCode(err))

	_, err = execute(t, "fetch", "--config", cfgPath, "--no-cache", "--dir", filepath.Join(dir, "missing"), "de")
	assert.Equal(t, ExitConfig, exitCode(err))

	_, err = execute(t, "fetch", "--config", cfgPath, "--ratio", "16x9", "de")
	assert.Equal(t, ExitInvalidInput, exitCode(err))
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	flagsDir := filepath.Join(dir, "flags")
	require.NoError(t, os.Mkdir(flagsDir, 0o755))
	writePNG(t, filepath.Join(flagsDir, "germany.png"), 5, 3, color.RGBA{0, 0, 0, 255})
	writePNG(t, filepath.Join(flagsDir, "france.png"), 3, 2, color.RGBA{0, 0, 255, 255})
	template := filepath.Join(dir, "template.png")
	writePNG(t, template, 20, 20, color.RGBA{})
	outDir := filepath.Join(dir, "profilepics")

	out, err := execute(t, "generate", "--flags-dir", flagsDir, "--template", template, "-o", outDir, "--no-progress", "de", "fr")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	for _, name := range []string{"de.png", "fr.png", "manifest.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	_, err = execute(t, "generate", "--flags-dir", flagsDir, "--template", template, "-o", outDir, "--no-progress", "de", "usa")
	assert.Equal(t, ExitGenerateFailed, exitCode(err))
}

func TestConfigErrors(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "de")
	assert.Equal(t, ExitConfig, exitCode(err))

	_, err = execute(t, "--store", "s3", "de")
	assert.Equal(t, ExitConfig, exitCode(err))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "flagpic dev"), "got %q", out)
}

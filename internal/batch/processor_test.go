package batch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hightemp/flagpic/internal/compose"
	"github.com/hightemp/flagpic/internal/countryinfo"
	"github.com/hightemp/flagpic/internal/flagstore"
	"github.com/hightemp/flagpic/internal/output"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestGenerator(t *testing.T, outDir string, opts ...Option) *Generator {
	t.Helper()
	flagsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(flagsDir, "germany.png"), solidPNG(t, 5, 3, color.RGBA{0, 0, 0, 255}), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(flagsDir, "france.png"), solidPNG(t, 3, 2, color.RGBA{0, 0, 255, 255}), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(flagsDir, "japan.png"), []byte("corrupt"), 0o644))

	store, err := flagstore.NewLocal(flagsDir)
	require.NoError(t, err)

	// Transparent template: the flag shows everywhere it is pasted.
	tmpl := image.NewRGBA(image.Rect(0, 0, 20, 20))
	composer, err := compose.NewComposer(tmpl, image.Pt(10, 10), image.Pt(5, 5))
	require.NoError(t, err)

	return NewGenerator(countryinfo.NewCLDR(), store, composer, outDir, opts...)
}

func TestGenerate(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "profilepics")
	var calls int32
	gen := newTestGenerator(t, outDir,
		WithConcurrency(2),
		WithProgress(func(*output.GenerateResult) { atomic.AddInt32(&calls, 1) }),
	)

	batch, err := gen.Generate(context.Background(), []string{"de", "FR", "usa", "jp"})
	require.NoError(t, err)
	require.Len(t, batch.Results, 4)
	assert.EqualValues(t, 4, calls)

	de := batch.Results[0]
	assert.Equal(t, "DE", de.Code)
	assert.Equal(t, "Germany", de.Name)
	assert.Equal(t, "germany", de.Flag)
	assert.Empty(t, de.Error)
	assert.Equal(t, filepath.Join(outDir, "de.png"), de.Output)

	fr := batch.Results[1]
	assert.Equal(t, "FR", fr.Code)
	assert.Equal(t, "france", fr.Flag)

	assert.Equal(t, "USA", batch.Results[2].Code)
	assert.Contains(t, batch.Results[2].Error, "2 character")

	assert.Equal(t, "japan", batch.Results[3].Flag)
	assert.NotEmpty(t, batch.Results[3].Error, "corrupt flag should fail")

	assert.Equal(t, 2, batch.Failed())

	f, err := os.Open(filepath.Join(outDir, "de.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "outside the flag stays transparent")
	r, g, b, a := img.At(10, 10).RGBA()
	assert.Equal(t, [4]uint32{0, 0, 0, 0xffff}, [4]uint32{r, g, b, a}, "flag pasted at its position")

	_, err = os.Stat(filepath.Join(outDir, "fr.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "jp.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateCancelled(t *testing.T) {
	gen := newTestGenerator(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := gen.Generate(ctx, []string{"de", "fr"})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, batch.Results, 2)
	for _, r := range batch.Results {
		assert.NotEmpty(t, r.Error)
	}
}

func TestGenerateBadOutputDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	gen := newTestGenerator(t, filepath.Join(file, "out"))
	_, err := gen.Generate(context.Background(), []string{"de"})
	assert.Error(t, err)
}

func TestWithConcurrencyBounds(t *testing.T) {
	g := &Generator{}
	WithConcurrency(0)(g)
	assert.Equal(t, 1, g.concurrency)
	WithConcurrency(100)(g)
	assert.Equal(t, 16, g.concurrency)
}

func TestReadCodes(t *testing.T) {
	input := "# countries\nDE\nfr\n\n  de \nusa\nJP\n"

	codes, err := ReadCodes(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "fr", "jp"}, codes)
}

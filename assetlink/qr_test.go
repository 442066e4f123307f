package assetlink

import (
	"bytes"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSVGHasQuietZone(t *testing.T) {
	out, err := SVG("https://fleet.example.com/rental/7")
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "<svg "))
	assert.True(t, strings.HasSuffix(s, "</svg>"))

	_, dim, err := modules("https://fleet.example.com/rental/7")
	require.NoError(t, err)
	want := dim + 2*QuietZone
	assert.Contains(t, s, `viewBox="0 0 `+strconv.Itoa(want)+` `+strconv.Itoa(want)+`"`)
	// 左上角定位图形的第一个模块
	assert.Contains(t, s, "M4 4h1v1h-1z")
	assert.NotContains(t, s, "M0 0h1")
}

func TestPNGDecodes(t *testing.T) {
	out, err := PNG("https://fleet.example.com/jobs/12", 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy())
	assert.LessOrEqual(t, b.Dx(), 256)

	_, dim, _ := modules("https://fleet.example.com/jobs/12")
	scale := b.Dx() / (dim + 2*QuietZone)
	assert.True(t, dark(img.At(QuietZone*scale, QuietZone*scale)))
	assert.False(t, dark(img.At(0, 0)))
}

func TestPNGTinySizeStillRenders(t *testing.T) {
	out, err := PNG("x", 1)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
}

func TestEmptyURL(t *testing.T) {
	_, err := SVG("  ")
	assert.ErrorIs(t, err, ErrEmptyURL)
	_, err = PNG("", 100)
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "https://fleet.example.com/inventory/part/3",
		URL("https://fleet.example.com/", "inventory/part", 3))
}

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/shape"
)

func testDrawing(t *testing.T) *document.Drawing {
	t.Helper()
	d := document.NewEmptyDrawing("drw_test", "test", 400, 300, "#ffffff")

	rect, err := shape.New(shape.KindRect, shape.Style{Stroke: "#000000", StrokeWidth: 2, Fill: "#ff0000"})
	require.NoError(t, err)
	ellipse, err := shape.New(shape.KindEllipse, shape.Style{Stroke: "#0000ff", StrokeWidth: 1, Fill: shape.FillNone})
	require.NoError(t, err)
	ellipse.Rotation = 30
	line, err := shape.New(shape.KindLine, shape.Style{Stroke: "#00ff00", StrokeWidth: 3, Fill: shape.FillNone})
	require.NoError(t, err)

	d.Insert(rect, -1)
	d.Insert(ellipse, -1)
	d.Insert(line, -1)
	return d
}

func TestSVGRoundTrip(t *testing.T) {
	d := testDrawing(t)

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, d))

	got, err := ParseSVG(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, got.Width)
	assert.Equal(t, 300, got.Height)
	assert.Equal(t, "#ffffff", got.Background)
	require.Len(t, got.Shapes, len(d.Shapes))
	for i, want := range d.Shapes {
		assert.Equal(t, want, got.Shapes[i], "shape %d", i)
	}
}

func TestSVGRotateTransform(t *testing.T) {
	d := testDrawing(t)

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, d))
	out := buf.String()

	assert.Contains(t, out, `transform="rotate(30 150 150)"`)
	assert.Equal(t, 1, strings.Count(out, "transform="), "unrotated shapes carry no transform")
	assert.Contains(t, out, `xmlns="http://www.w3.org/2000/svg"`)
}

func TestSVGOmitsHighlight(t *testing.T) {
	d := testDrawing(t)
	d.Shapes[0].Highlighted = true

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, d))
	assert.NotContains(t, buf.String(), "stroke-dasharray")
	assert.NotContains(t, buf.String(), "opacity")
}

func TestParseSVG(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg" width="640px" height="480">
  <g>
    <rect x="10" y="20" width="2" height="40" stroke="red" fill="blue" transform="translate(5 5) rotate(45 20 40)"/>
    <ellipse cx="50" cy="60" rx="10" ry="20" transform="rotate(abc)"/>
  </g>
  <line id="shape_01h455vb4pex5vsknk084sn02q" x1="1" y1="2" x2="3" y2="4" fill="#ff0000" stroke-width="5"/>
  <circle cx="1" cy="1" r="4"/>
</svg>`

	d, err := ParseSVG(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 640, d.Width)
	assert.Equal(t, 480, d.Height)
	require.Len(t, d.Shapes, 3)

	rect := d.Shapes[0]
	assert.Equal(t, &shape.Rect{X: 10, Y: 20, Width: shape.MinSize, Height: 40}, rect.Geometry)
	assert.Equal(t, 45.0, rect.Rotation)
	assert.Equal(t, shape.Style{Stroke: "red", StrokeWidth: 1, Fill: "blue"}, rect.Style)
	assert.True(t, strings.HasPrefix(rect.ID, "shape_"))

	ellipse := d.Shapes[1]
	assert.Zero(t, ellipse.Rotation, "malformed rotate yields 0")

	line := d.Shapes[2]
	assert.Equal(t, "shape_01h455vb4pex5vsknk084sn02q", line.ID)
	assert.Equal(t, shape.FillNone, line.Style.Fill, "lines have no fill")
	assert.Equal(t, 5.0, line.Style.StrokeWidth)
}

func TestParseSVGErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not svg", `<html><rect x="1"/></html>`},
		{"empty", ``},
		{"bad number", `<svg><rect x="wide"/></svg>`},
		{"truncated", `<svg><rect x="1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSVG(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}

	_, err := ParseSVG(strings.NewReader(`<html/>`))
	assert.ErrorIs(t, err, ErrNotSVG)
}

func TestPNG(t *testing.T) {
	d := testDrawing(t)

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, d))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	// Inside the filled rect.
	r, g, b, _ := img.At(150, 125).RGBA()
	assert.Greater(t, r>>8, uint32(200))
	assert.Less(t, g>>8, uint32(60))
	assert.Less(t, b>>8, uint32(60))

	// Background.
	r, g, b, _ = img.At(390, 10).RGBA()
	assert.Equal(t, []uint32{0xff, 0xff, 0xff}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestPNGEmptySurface(t *testing.T) {
	d := document.NewEmptyDrawing("drw_test", "empty", 0, 0, "")
	assert.Error(t, PNG(&bytes.Buffer{}, d))
}

func TestPNGRejectsOversizedSurface(t *testing.T) {
	d := document.NewEmptyDrawing("drw_test", "huge", 60000, 60000, "#ffffff")
	assert.ErrorIs(t, PNG(&bytes.Buffer{}, d), document.ErrCanvasSize)
}

func TestParseSVGRejectsOversizedCanvas(t *testing.T) {
	for _, src := range []string{
		`<svg width="1e30" height="600"/>`,
		`<svg width="800" height="9000px"/>`,
		`<svg width="NaN" height="600"/>`,
		`<svg width="-5" height="600"/>`,
	} {
		_, err := ParseSVG(strings.NewReader(src))
		assert.ErrorIs(t, err, document.ErrCanvasSize, src)
	}
}

func TestHandlerRejectsOversizedCanvas(t *testing.T) {
	h := NewHandler(stubSource{"drw_huge": document.NewEmptyDrawing("drw_huge", "huge", 60000, 60000, "")})

	req := httptest.NewRequest(http.MethodPost, "/export/png", strings.NewReader(`{"width":60000,"height":60000}`))
	req = mux.SetURLVars(req, map[string]string{"format": "png"})
	rec := httptest.NewRecorder()
	h.ExportDocument(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/drawings/drw_huge/export/png", nil)
	req = mux.SetURLVars(req, map[string]string{"drawingId": "drw_huge", "format": "png"})
	rec = httptest.NewRecorder()
	h.ExportDrawing(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType())

	_, err = ParseFormat("gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

type stubSource map[string]*document.Drawing

func (s stubSource) Snapshot(_ context.Context, id string) (*document.Drawing, error) {
	d, ok := s[id]
	if !ok {
		return nil, document.ErrDrawingNotFound
	}
	return d.Snapshot(), nil
}

func TestHandlerExportDrawing(t *testing.T) {
	h := NewHandler(stubSource{"drw_test": testDrawing(t)})

	tests := []struct {
		name        string
		id, format  string
		status      int
		contentType string
	}{
		{"svg", "drw_test", "svg", http.StatusOK, "image/svg+xml"},
		{"png", "drw_test", "png", http.StatusOK, "image/png"},
		{"unknown format", "drw_test", "gif", http.StatusBadRequest, ""},
		{"unknown drawing", "drw_missing", "svg", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/drawings/"+tt.id+"/export/"+tt.format, nil)
			req = mux.SetURLVars(req, map[string]string{"drawingId": tt.id, "format": tt.format})
			rec := httptest.NewRecorder()

			h.ExportDrawing(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
				assert.Equal(t, `attachment; filename="drawing.`+tt.format+`"`, rec.Header().Get("Content-Disposition"))
				assert.NotZero(t, rec.Body.Len())
			}
		})
	}
}

func TestHandlerExportDocument(t *testing.T) {
	h := NewHandler(stubSource{})

	body, err := json.Marshal(testDrawing(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/export/svg", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"format": "svg"})
	rec := httptest.NewRecorder()
	h.ExportDocument(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	d, err := ParseSVG(rec.Body)
	require.NoError(t, err)
	assert.Len(t, d.Shapes, 3)

	req = httptest.NewRequest(http.MethodPost, "/export/svg", strings.NewReader("{"))
	req = mux.SetURLVars(req, map[string]string{"format": "svg"})
	rec = httptest.NewRecorder()
	h.ExportDocument(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerImportSVG(t *testing.T) {
	h := NewHandler(stubSource{})

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, testDrawing(t)))

	rec := httptest.NewRecorder()
	h.ImportSVG(rec, httptest.NewRequest(http.MethodPost, "/import/svg", &buf))
	require.Equal(t, http.StatusOK, rec.Code)

	d, err := document.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, d.Shapes, 3)
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	status int
}

func (b *brokenWriter) Header() http.Header       { return b.header }
func (b *brokenWriter) WriteHeader(status int)    { b.status = status }
func (b *brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestHandlerSurvivesBrokenConnection(t *testing.T) {
	h := NewHandler(stubSource{"drw_test": testDrawing(t)})

	req := httptest.NewRequest(http.MethodGet, "/drawings/drw_test/export/svg", nil)
	req = mux.SetURLVars(req, map[string]string{"drawingId": "drw_test", "format": "svg"})
	w := &brokenWriter{header: http.Header{}}
	h.ExportDrawing(w, req)
	assert.Equal(t, "image/svg+xml", w.header.Get("Content-Type"))

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, testDrawing(t)))
	w = &brokenWriter{header: http.Header{}}
	h.ImportSVG(w, httptest.NewRequest(http.MethodPost, "/import/svg", &buf))
	assert.Equal(t, "application/json", w.header.Get("Content-Type"))
}

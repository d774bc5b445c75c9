package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/typeid"
)

const maxUploadSize = 4 << 20 // 4MB of drawing JSON

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a format name from a request path.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatSVG, FormatPNG:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Write encodes d in format f.
func Write(w io.Writer, f Format, d *document.Drawing) error {
	switch f {
	case FormatSVG:
		return SVG(w, d)
	case FormatPNG:
		return PNG(w, d)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Source yields a consistent copy of a live drawing.
type Source interface {
	Snapshot(ctx context.Context, drawingID string) (*document.Drawing, error)
}

type Handler struct {
	source Source
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

// ExportDocument renders a drawing posted as JSON and returns it as an
// attachment.
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	format, err := ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	d, err := document.Parse(data)
	if err != nil {
		http.Error(w, "invalid drawing: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.serve(w, format, d)
}

// ExportDrawing renders the current state of a live drawing.
func (h *Handler) ExportDrawing(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	format, err := ParseFormat(vars["format"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.source.Snapshot(r.Context(), vars["drawingId"])
	switch {
	case errors.Is(err, document.ErrDrawingNotFound):
		http.Error(w, "drawing not found", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("snapshot drawing", "drawing", vars["drawingId"], "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.serve(w, format, d)
}

// ImportSVG parses uploaded SVG markup and returns the drawing as JSON.
func (h *Handler) ImportSVG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	d, err := ParseSVG(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(d); err != nil {
		slog.Debug("write imported drawing", "drawing", d.ID, "error", err)
	}
}

func (h *Handler) serve(w http.ResponseWriter, format Format, d *document.Drawing) {
	exportID := typeid.NewExportID()
	slog.Info("export started", "export", exportID, "format", format, "drawing", d.ID, "shapes", len(d.Shapes))

	// Encode fully before writing headers so a failure can still become a 500.
	var buf bytes.Buffer
	if err := Write(&buf, format, d); err != nil {
		if errors.Is(err, document.ErrCanvasSize) {
			slog.Info("export rejected", "export", exportID, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("export failed", "export", exportID, "error", err)
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="drawing.%s"`, format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := io.Copy(w, &buf); err != nil {
		slog.Debug("write export", "export", exportID, "error", err)
		return
	}

	slog.Info("export complete", "export", exportID, "size", buf.Len())
}

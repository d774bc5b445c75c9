package drawing

import (
	"context"
	"errors"
	"fmt"

	"github.com/inamate/sketchpad/internal/collab"
	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/typeid"
)

// PlaygroundID names the shared sample drawing opened at startup.
const PlaygroundID = "drw_00000000000000000000000000"

var (
	ErrNotFound  = document.ErrDrawingNotFound
	ErrInvalidID = errors.New("invalid drawing id")
)

// Rooms is the live drawing registry, implemented by *collab.Hub.
type Rooms interface {
	Open(ctx context.Context, d *document.Drawing) (bool, error)
	Snapshot(ctx context.Context, drawingID string) (*document.Drawing, error)
	List(ctx context.Context) ([]collab.DrawingInfo, error)
}

// Canvas holds the surface settings of new drawings.
type Canvas struct {
	Width      int
	Height     int
	Background string
}

type Service struct {
	rooms  Rooms
	canvas Canvas
}

func NewService(rooms Rooms, canvas Canvas) *Service {
	return &Service{rooms: rooms, canvas: canvas}
}

// NewDrawing builds an empty drawing with the configured canvas. It is also
// the hub's factory for rooms joined by id before being created.
func (s *Service) NewDrawing(id string) *document.Drawing {
	return document.NewEmptyDrawing(id, "Untitled", s.canvas.Width, s.canvas.Height, s.canvas.Background)
}

// Create opens a room for a new drawing, seeded with the sample shapes when
// sample is set.
func (s *Service) Create(ctx context.Context, name string, sample bool) (*document.Drawing, error) {
	id := typeid.NewDrawingID()

	var d *document.Drawing
	if sample {
		d = document.NewSampleDrawing(id)
	} else {
		d = s.NewDrawing(id)
	}
	if name != "" {
		d.Name = name
	}

	if _, err := s.rooms.Open(ctx, d); err != nil {
		return nil, fmt.Errorf("open drawing: %w", err)
	}
	return d.Snapshot(), nil
}

// OpenPlayground opens the shared sample drawing if it is not open yet.
func (s *Service) OpenPlayground(ctx context.Context) error {
	d := document.NewSampleDrawing(PlaygroundID)
	d.Name = "Playground"
	_, err := s.rooms.Open(ctx, d)
	return err
}

func (s *Service) Get(ctx context.Context, drawingID string) (*document.Drawing, error) {
	if err := ValidateID(drawingID); err != nil {
		return nil, err
	}
	return s.rooms.Snapshot(ctx, drawingID)
}

func (s *Service) List(ctx context.Context) ([]collab.DrawingInfo, error) {
	return s.rooms.List(ctx)
}

// ValidateID checks that id is a drawing typeid.
func ValidateID(id string) error {
	if err := typeid.Validate(id, typeid.PrefixDrawing); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return nil
}

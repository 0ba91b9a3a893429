package xltrack

import (
	"fmt"
	"math"
	"strings"

	"go.alis.build/alog"
)

// Placement is the computed size of an image fitted into a box, in pixels.
type Placement struct {
	BoxWidth     int
	BoxHeight    int
	Scale        float64 // uniform scale applied to the native size
	ScaledWidth  float64 // native width × Scale
	ScaledHeight float64 // native height × Scale
	Width        int     // placed width after the inset
	Height       int     // placed height after the inset
}

// FitImage scales an imgW×imgH image uniformly to fit a boxW×boxH box and
// subtracts the inset from the scaled size. Placed sizes never drop below 1px.
func FitImage(imgW, imgH, boxW, boxH, insetX, insetY int) (Placement, error) {
	if imgW <= 0 || imgH <= 0 {
		return Placement{}, fmt.Errorf("fit image: invalid image size %dx%d", imgW, imgH)
	}
	scale := math.Min(float64(boxW)/float64(imgW), float64(boxH)/float64(imgH))
	p := Placement{
		BoxWidth:     boxW,
		BoxHeight:    boxH,
		Scale:        scale,
		ScaledWidth:  float64(imgW) * scale,
		ScaledHeight: float64(imgH) * scale,
	}
	p.Width = max(1, int(math.Floor(p.ScaledWidth-float64(insetX))))
	p.Height = max(1, int(math.Floor(p.ScaledHeight-float64(insetY))))
	return p, nil
}

// SetImage fits data into the cell at ref, or into the whole merged region
// when ref belongs to one, and anchors it at the configured offset.
// Formats the grid cannot embed are transcoded to PNG first.
func (s *Sheet) SetImage(ref CellRef, data []byte) (Placement, error) {
	info, err := s.opts.codec.Decode(data)
	if err != nil {
		return Placement{}, fmt.Errorf("set image at %s: %w", ref, err)
	}
	ext, ok := embeddable[strings.ToLower(info.Format)]
	if !ok {
		alog.Debugf(s.opts.logCtx, "sheet %q: transcoding %s image to png", s.name, info.Format)
		data, err = s.opts.codec.Reencode(data, "png")
		if err != nil {
			return Placement{}, fmt.Errorf("set image at %s: %w", ref, err)
		}
		ext = ".png"
	}

	boxW, boxH, err := s.imageBox(ref)
	if err != nil {
		return Placement{}, fmt.Errorf("set image at %s: %w", ref, err)
	}
	p, err := FitImage(info.Width, info.Height, boxW, boxH, s.opts.imageInsetX, s.opts.imageInsetY)
	if err != nil {
		return Placement{}, fmt.Errorf("set image at %s: %w", ref, err)
	}

	pic := Picture{
		Data:      data,
		Extension: ext,
		OffsetX:   s.opts.imageOffsetX,
		OffsetY:   s.opts.imageOffsetY,
		ScaleX:    float64(p.Width) / float64(info.Width),
		ScaleY:    float64(p.Height) / float64(info.Height),
	}
	if err := s.grid.AddPicture(s.name, ref, pic); err != nil {
		return Placement{}, fmt.Errorf("add image at %s: %w", ref, err)
	}
	alog.Debugf(s.opts.logCtx, "sheet %q: placed %dx%d image at %s as %dx%d", s.name, info.Width, info.Height, ref, p.Width, p.Height)
	return p, nil
}

// imageBox returns the pixel size available at ref. For a merged cell it sums
// every spanned column and row and switches the region to centerContinuous.
func (s *Sheet) imageBox(ref CellRef) (int, int, error) {
	region, merged, err := s.mergeContaining(ref)
	if err != nil {
		return 0, 0, err
	}
	if !merged {
		region = NewRect(ref, ref)
	}

	var w, h float64
	for col := region.StartCol; col <= region.EndCol; col++ {
		cw, err := s.grid.ColumnWidth(s.name, col)
		if err != nil {
			return 0, 0, fmt.Errorf("read width of column %s: %w", ColumnName(col), err)
		}
		w += WidthToPixels(cw)
	}
	for row := region.StartRow; row <= region.EndRow; row++ {
		rh, err := s.grid.RowHeight(s.name, row)
		if err != nil {
			return 0, 0, fmt.Errorf("read height of row %d: %w", row, err)
		}
		h += HeightToPixels(rh)
	}

	if merged {
		if err := s.grid.SetHorizontalAlignment(s.name, region, "centerContinuous"); err != nil {
			return 0, 0, err
		}
	}
	return int(w), int(h), nil
}

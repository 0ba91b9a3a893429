package xltrack

// Conversions between sheet units and pixels at 96 DPI with the default
// Calibri 11 font metrics. Column widths are in characters, row heights in points.

// WidthToPixels converts a column width to pixels.
func WidthToPixels(width float64) float64 {
	if width == 0 {
		return 0
	}
	if width <= 1 {
		return width * 12
	}
	return (width-1)*7 + 5
}

// PixelsToWidth converts pixels to a column width. Anything up to 5px is one character.
func PixelsToWidth(px float64) float64 {
	if px <= 5 {
		return 1.0
	}
	return (px-5)/7.0 + 1
}

// HeightToPixels converts a row height in points to pixels.
func HeightToPixels(height float64) float64 {
	return height * 96 / 72
}

// PixelsToHeight converts pixels to a row height in points.
func PixelsToHeight(px float64) float64 {
	return px * 72.0 / 96.0
}

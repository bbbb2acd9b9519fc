package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// Inset shrinks rect by paddingPx on all sides. A padding larger than half
// the rect collapses it to its center line rather than inverting it.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	rect = Normalize(rect)
	if paddingPx <= 0 {
		return rect
	}
	padX := min(paddingPx, rect.Dx()/2)
	padY := min(paddingPx, rect.Dy()/2)
	return image.Rect(rect.Min.X+padX, rect.Min.Y+padY, rect.Max.X-padX, rect.Max.Y-padY)
}

// SplitHorizontal cuts rect into a top band of topHeightPx and the rest.
// topHeightPx is clamped to [0, rect.Dy()].
func SplitHorizontal(rect image.Rectangle, topHeightPx int) (top image.Rectangle, bottom image.Rectangle) {
	rect = Normalize(rect)
	topHeightPx = clamp(topHeightPx, 0, rect.Dy())
	top = image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+topHeightPx)
	bottom = image.Rect(rect.Min.X, rect.Min.Y+topHeightPx, rect.Max.X, rect.Max.Y)
	return top, bottom
}

// SplitVertical cuts rect into a left column of leftWidthPx and the rest.
// leftWidthPx is clamped to [0, rect.Dx()].
func SplitVertical(rect image.Rectangle, leftWidthPx int) (left image.Rectangle, right image.Rectangle) {
	rect = Normalize(rect)
	leftWidthPx = clamp(leftWidthPx, 0, rect.Dx())
	left = image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+leftWidthPx, rect.Max.Y)
	right = image.Rect(rect.Min.X+leftWidthPx, rect.Min.Y, rect.Max.X, rect.Max.Y)
	return left, right
}

// FitSquare returns the largest square that fits into rect, centered.
func FitSquare(rect image.Rectangle) image.Rectangle {
	rect = Normalize(rect)
	size := min(rect.Dx(), rect.Dy())
	minX := rect.Min.X + (rect.Dx()-size)/2
	minY := rect.Min.Y + (rect.Dy()-size)/2
	return image.Rect(minX, minY, minX+size, minY+size)
}

// Grid splits rect into rows x cols cells in row-major order. Cell edges
// are computed from the rect's edges so the cells tile it exactly even when
// the size is not divisible. Non-positive counts yield no cells.
func Grid(rect image.Rectangle, cols, rows int) []image.Rectangle {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	rect = Normalize(rect)
	cells := make([]image.Rectangle, 0, cols*rows)
	for row := 0; row < rows; row++ {
		y0 := rect.Min.Y + rect.Dy()*row/rows
		y1 := rect.Min.Y + rect.Dy()*(row+1)/rows
		for col := 0; col < cols; col++ {
			x0 := rect.Min.X + rect.Dx()*col/cols
			x1 := rect.Min.X + rect.Dx()*(col+1)/cols
			cells = append(cells, image.Rect(x0, y0, x1, y1))
		}
	}
	return cells
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

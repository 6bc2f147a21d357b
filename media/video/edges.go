package video

// Pixel states of the edge map during hysteresis.
const (
	edgeNone   byte = 0
	edgeWeak   byte = 1
	edgeStrong byte = 2

	// EdgeValue is the intensity of a detected edge pixel.
	EdgeValue byte = 255
)

// Canny detects edges in a single-channel plane.
//
// The gradient is a 3x3 Sobel operator with replicated borders and an L1
// magnitude. Non-maximum suppression thins ridges to one pixel, then
// hysteresis keeps weak pixels (magnitude > low) only when they connect to a
// strong pixel (magnitude > high). The result holds 0 or EdgeValue.
func Canny(plane []byte, width, height, low, high int) []byte {
	if low > high {
		low, high = high, low
	}

	dx, dy, mag := sobel(plane, width, height)
	state := suppress(dx, dy, mag, width, height, low, high)
	return hysteresis(state, width, height)
}

// sobel computes the horizontal and vertical gradients and their L1 magnitude.
func sobel(plane []byte, width, height int) (dx, dy, mag []int) {
	n := width * height
	dx = make([]int, n)
	dy = make([]int, n)
	mag = make([]int, n)

	at := func(x, y int) int {
		if x < 0 {
			x = 0
		} else if x >= width {
			x = width - 1
		}
		if y < 0 {
			y = 0
		} else if y >= height {
			y = height - 1
		}
		return int(plane[y*width+x])
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tl, t, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			l, r := at(x-1, y), at(x+1, y)
			bl, b, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			gx := (tr + 2*r + br) - (tl + 2*l + bl)
			gy := (bl + 2*b + br) - (tl + 2*t + tr)

			i := y*width + x
			dx[i] = gx
			dy[i] = gy
			mag[i] = absInt(gx) + absInt(gy)
		}
	}
	return dx, dy, mag
}

// suppress performs non-maximum suppression along the quantized gradient
// direction and classifies the surviving pixels as weak or strong.
func suppress(dx, dy, mag []int, width, height, low, high int) []byte {
	// tan(22.5) and tan(67.5) in 15-bit fixed point
	const (
		tan22 = 13573
		shift = 15
	)

	m := func(x, y int) int {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return mag[y*width+x]
	}

	state := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			v := mag[i]
			if v <= low {
				continue
			}

			ax := absInt(dx[i])
			ay := absInt(dy[i]) << shift
			tg22 := ax * tan22
			tg67 := tg22 + (ax << (shift + 1))

			var isMax bool
			switch {
			case ay < tg22:
				isMax = v > m(x-1, y) && v >= m(x+1, y)
			case ay > tg67:
				isMax = v > m(x, y-1) && v >= m(x, y+1)
			default:
				s := 1
				if (dx[i] < 0) != (dy[i] < 0) {
					s = -1
				}
				isMax = v > m(x-s, y-1) && v > m(x+s, y+1)
			}

			if !isMax {
				continue
			}
			if v > high {
				state[i] = edgeStrong
			} else {
				state[i] = edgeWeak
			}
		}
	}
	return state
}

// hysteresis promotes weak pixels 8-connected to strong ones and renders the map.
func hysteresis(state []byte, width, height int) []byte {
	stack := make([]int, 0, len(state)/8)
	for i, s := range state {
		if s == edgeStrong {
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if state[j] == edgeWeak {
					state[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}

	out := make([]byte, len(state))
	for i, s := range state {
		if s == edgeStrong {
			out[i] = EdgeValue
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

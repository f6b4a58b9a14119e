// Package blur implements the privacy blur applied to a captured desktop.
package blur

import "github.com/eliteGoblin/focusd/dwmlock/internal/domain"

const channels = domain.BytesPerPixel

// Box applies a separable box blur to pixels in place.
//
// Each pass averages every channel over the window [i-radius, i+radius]
// clamped to the image, so edge pixels average fewer samples instead of
// blending with black. Averages are truncated integer divisions. A running
// sum replaces the naive inner loop; the sums, and so the output, are
// identical to summing each window from scratch.
//
// Box is a no-op when radius or either dimension is not positive, or when
// pixels is shorter than width*height*4.
func Box(pixels []byte, width, height, radius int) {
	if radius <= 0 || width <= 0 || height <= 0 {
		return
	}
	if len(pixels) < width*height*channels {
		return
	}

	scratch := make([]byte, width*height*channels)

	// horizontal: pixels -> scratch
	for y := 0; y < height; y++ {
		row := y * width * channels
		blurLine(pixels, scratch, row, channels, width, radius)
	}

	// vertical: scratch -> pixels
	stride := width * channels
	for x := 0; x < width; x++ {
		blurLine(scratch, pixels, x*channels, stride, height, radius)
	}
}

// Frame blurs a captured frame in place.
func Frame(f *domain.Frame, radius int) {
	if f == nil {
		return
	}
	Box(f.Pixels, f.Width, f.Height, radius)
}

// blurLine averages n samples spaced step bytes apart starting at offset,
// reading src and writing dst.
func blurLine(src, dst []byte, offset, step, n, radius int) {
	var sum [channels]uint32

	// initial window for i = 0 is [0, min(radius, n-1)]
	end := radius
	if end > n-1 {
		end = n - 1
	}
	for i := 0; i <= end; i++ {
		idx := offset + i*step
		for c := 0; c < channels; c++ {
			sum[c] += uint32(src[idx+c])
		}
	}

	for i := 0; i < n; i++ {
		start := i - radius
		if start < 0 {
			start = 0
		}
		stop := i + radius
		if stop > n-1 {
			stop = n - 1
		}
		count := uint32(stop - start + 1)

		idx := offset + i*step
		for c := 0; c < channels; c++ {
			dst[idx+c] = byte(sum[c] / count)
		}

		// slide to i+1: add sample i+1+radius, drop sample i-radius
		if in := i + 1 + radius; in <= n-1 {
			inIdx := offset + in*step
			for c := 0; c < channels; c++ {
				sum[c] += uint32(src[inIdx+c])
			}
		}
		if out := i - radius; out >= 0 {
			outIdx := offset + out*step
			for c := 0; c < channels; c++ {
				sum[c] -= uint32(src[outIdx+c])
			}
		}
	}
}

package features

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/mat"
)

// Size is the side length every image is scaled to before descriptors are
// computed. Descriptors assume square Size x Size planes.
const Size = 128

// Plane holds the preprocessed form of one image: normalized RGB channels
// and a grayscale matrix, all at Size x Size.
type Plane struct {
	// W and H are the plane dimensions after resizing (both equal Size).
	W, H int
	// R, G, B are row-major channel values in [0, 1].
	R, G, B []float64
	// Gray is the luma plane with H rows and W columns, values in [0, 1].
	Gray *mat.Dense
}

// Decode reads an image (JPEG, PNG or GIF), scales it to Size x Size with
// Lanczos resampling and splits it into normalized channel planes.
func Decode(r io.Reader) (*Plane, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}

	return FromImage(img), nil
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (*Plane, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// FromImage scales img to Size x Size and splits it into channel planes.
func FromImage(img image.Image) *Plane {
	resized := resize.Resize(Size, Size, img, resize.Lanczos3)

	bounds := resized.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	p := &Plane{
		W:    w,
		H:    h,
		R:    make([]float64, w*h),
		G:    make([]float64, w*h),
		B:    make([]float64, w*h),
		Gray: mat.NewDense(h, w, nil),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			rn := float64(r) / 65535.0
			gn := float64(g) / 65535.0
			bn := float64(b) / 65535.0

			i := y*w + x
			p.R[i] = rn
			p.G[i] = gn
			p.B[i] = bn
			p.Gray.Set(y, x, 0.299*rn+0.587*gn+0.114*bn)
		}
	}

	return p
}

// GrayValues returns the grayscale plane flattened row-major.
func (p *Plane) GrayValues() []float64 {
	out := make([]float64, 0, p.W*p.H)
	for y := 0; y < p.H; y++ {
		out = append(out, p.Gray.RawRowView(y)...)
	}

	return out
}

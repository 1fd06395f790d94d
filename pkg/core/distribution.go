package core

// Distribution1D is a piecewise-constant probability distribution over
// [0,1), built from a list of non-negative weights. It generalizes the
// teacher's weighted_light_sampler.go cumulative-weight list (a discrete
// sampler over scene lights) into an invertible CDF usable both for
// power-weighted light selection and as the building block of
// Distribution2D's row/column sampling for environment-map importance
// sampling.
type Distribution1D struct {
	weights []float64
	cdf     []float64
	total   float64
}

func NewDistribution1D(weights []float64) *Distribution1D {
	d := &Distribution1D{weights: weights, cdf: make([]float64, len(weights)+1)}
	sum := 0.0
	for i, w := range weights {
		sum += w
		d.cdf[i+1] = sum
	}
	d.total = sum
	if sum > 0 {
		for i := range d.cdf {
			d.cdf[i] /= sum
		}
	}
	return d
}

// SampleDiscrete returns the index whose interval contains u, its pdf
// (weight_i / total), and the remapped sample u' usable to recurse into
// a 2D distribution's conditional axis.
func (d *Distribution1D) SampleDiscrete(u float64) (index int, pdf float64, uRemapped float64) {
	n := len(d.weights)
	if n == 0 || d.total <= 0 {
		return 0, 0, 0
	}
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if d.cdf[mid+1] <= u {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	index = lo
	if index >= n {
		index = n - 1
	}
	span := d.cdf[index+1] - d.cdf[index]
	if span <= 0 {
		uRemapped = 0
	} else {
		uRemapped = Clamp((u-d.cdf[index])/span, 0, 1)
	}
	pdf = d.weights[index] / d.total
	return
}

func (d *Distribution1D) PdfDiscrete(index int) float64 {
	if d.total <= 0 || index < 0 || index >= len(d.weights) {
		return 0
	}
	return d.weights[index] / d.total
}

func (d *Distribution1D) Count() int { return len(d.weights) }

// Distribution2D importance-samples a dense 2D function given row-major
// weights, used by the environment emitter to importance-sample a
// lat-long radiance map weighted by sin(theta) per spec's Jacobian note.
type Distribution2D struct {
	conditional []*Distribution1D // one per row
	marginal    *Distribution1D   // over row sums
	width       int
	height      int
}

func NewDistribution2D(weights []float64, width, height int) *Distribution2D {
	d := &Distribution2D{conditional: make([]*Distribution1D, height), width: width, height: height}
	rowSums := make([]float64, height)
	for y := 0; y < height; y++ {
		row := weights[y*width : (y+1)*width]
		d.conditional[y] = NewDistribution1D(row)
		sum := 0.0
		for _, w := range row {
			sum += w
		}
		rowSums[y] = sum
	}
	d.marginal = NewDistribution1D(rowSums)
	return d
}

// Sample returns continuous (u,v) in [0,1)^2 and the joint pdf with
// respect to (u,v), i.e. already divided by the cell area 1/(width*height).
func (d *Distribution2D) Sample(u Vec2) (uv Vec2, pdf float64) {
	y, pdfY, v := d.marginal.SampleDiscrete(u.Y)
	x, pdfX, uu := d.conditional[y].SampleDiscrete(u.X)
	uv = Vec2{(float64(x) + uu) / float64(d.width), (float64(y) + v) / float64(d.height)}
	pdf = pdfX * pdfY * float64(d.width*d.height)
	return
}

func (d *Distribution2D) Pdf(uv Vec2) float64 {
	x := int(uv.X * float64(d.width))
	y := int(uv.Y * float64(d.height))
	if x < 0 {
		x = 0
	}
	if x >= d.width {
		x = d.width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= d.height {
		y = d.height - 1
	}
	return d.conditional[y].PdfDiscrete(x) * d.marginal.PdfDiscrete(y) * float64(d.width*d.height)
}

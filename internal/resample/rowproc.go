package resample

// rowProcessor runs the two-pass separable resample for one target
// row, given shared immutable contributor tables and a private cache
// row owned by the caller (worker).
type rowProcessor struct {
	policy alphaPolicy
	src    *Image
	dst    *Image
	colsX  ContributorTable // horizontal contributors, one per target x
	rowsY  ContributorTable // vertical contributors, one per target y

	// xMinSrc is the first source column the cache row covers; cache[k]
	// corresponds to source column xMinSrc+k.
	xMinSrc int
	cache   []cell
}

func newRowProcessor(mode AlphaMode, src, dst *Image, colsX, rowsY ContributorTable, xMinSrc, xMaxSrc int) *rowProcessor {
	return &rowProcessor{
		policy:  policyFor(mode),
		src:     src,
		dst:     dst,
		colsX:   colsX,
		rowsY:   rowsY,
		xMinSrc: xMinSrc,
		cache:   make([]cell, xMaxSrc-xMinSrc+1),
	}
}

// ProcessRow fills target row y across [xMin, xMax] (inclusive).
func (p *rowProcessor) ProcessRow(y, xMin, xMax int) {
	cy := p.rowsY[y]
	p.verticalPass(cy)
	p.horizontalPass(y, xMin, xMax)
}

// verticalPass overwrites p.cache with the weighted column sums for the
// vertical footprint of contributor cy.
func (p *rowProcessor) verticalPass(cy Contributor) {
	row := cy.Min
	for k := range p.cache {
		px := p.src.Pixel(p.xMinSrc+k, int(row))
		p.policy.Init(&p.cache[k], px, cy.Weights[0])
	}
	for j := int32(1); j <= cy.High; j++ {
		row = cy.Min + j
		w := cy.Weights[j]
		for k := range p.cache {
			px := p.src.Pixel(p.xMinSrc+k, int(row))
			p.policy.Increase(&p.cache[k], px, w)
		}
	}
}

// horizontalPass walks the cache for each target x in [xMin, xMax] and
// writes the clamped output pixel.
func (p *rowProcessor) horizontalPass(y, xMin, xMax int) {
	for x := xMin; x <= xMax; x++ {
		cx := p.colsX[x]
		idx := int(cx.Min) - p.xMinSrc

		var total cell
		p.policy.InitTotal(&total, p.cache[idx], cx.Weights[0])
		for j := int32(1); j <= cx.High; j++ {
			idx++
			p.policy.IncreaseTotal(&total, p.cache[idx], cx.Weights[j])
		}

		out := p.policy.Clamp(total)
		dst := p.dst.Pixel(x, y)
		dst[0], dst[1], dst[2], dst[3] = out[0], out[1], out[2], out[3]
	}
}

package printing

// PageSize represents the paper format requested for a job. The wire protocol
// identifies formats by a small numeric id, so the enum is numeric rather than
// a string.
type PageSize int

const (
	PageSizeA3 PageSize = 1
	PageSizeA4 PageSize = 2
)

// IsValid checks if the PageSize is a valid value
func (p PageSize) IsValid() bool {
	switch p {
	case PageSizeA3, PageSizeA4:
		return true
	}
	return false
}

// String returns the standard paper kind name
func (p PageSize) String() string {
	switch p {
	case PageSizeA3:
		return "A3"
	case PageSizeA4:
		return "A4"
	default:
		return "UNKNOWN"
	}
}

// ID returns the numeric wire identifier
func (p PageSize) ID() int {
	return int(p)
}

// Dimensions returns the portrait paper dimensions in millimeters (width, height)
func (p PageSize) Dimensions() (width, height int) {
	switch p {
	case PageSizeA3:
		return 297, 420
	case PageSizeA4:
		return 210, 297
	default:
		return 210, 297
	}
}

// DimensionsFor returns the paper dimensions in millimeters with width and
// height swapped for landscape orientation.
func (p PageSize) DimensionsFor(o Orientation) (width, height int) {
	width, height = p.Dimensions()
	if o == OrientationLandscape {
		width, height = height, width
	}
	return width, height
}

// AllPageSizes returns all valid PageSize values
func AllPageSizes() []PageSize {
	return []PageSize{PageSizeA3, PageSizeA4}
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// ContentSource identifies where a job's PDF bytes come from
type ContentSource string

const (
	// SourcePDF means the request carries finished PDF content, inline or by locator
	SourcePDF ContentSource = "PDF"
	// SourceHTML means the request carries HTML that must be rendered first
	SourceHTML ContentSource = "HTML"
)

// String returns the string representation of ContentSource
func (s ContentSource) String() string {
	return string(s)
}

// DuplexMode represents the sheet-side setting sent to the spooler.
// The wire protocol exposes a single boolean: single-sided selects simplex,
// double-sided always selects the long-edge binding. There is deliberately no
// way to request the short-edge variant.
type DuplexMode string

const (
	DuplexSimplex  DuplexMode = "SIMPLEX"
	DuplexLongEdge DuplexMode = "DUPLEX_LONG_EDGE"
)

// IsValid checks if the DuplexMode is a valid value
func (d DuplexMode) IsValid() bool {
	switch d {
	case DuplexSimplex, DuplexLongEdge:
		return true
	}
	return false
}

// String returns the string representation of DuplexMode
func (d DuplexMode) String() string {
	return string(d)
}

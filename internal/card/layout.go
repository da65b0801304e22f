package card

import "image/color"

// Card geometry. The canvas matches the Open Graph recommended size.
const (
	cardWidth  = 1200
	cardHeight = 630
	cardPad    = 48
)

// brandName is the wordmark drawn in the footer of every card.
const brandName = "tento"

// profileURLPrefix prefixes the username in the footer link.
const profileURLPrefix = "tento.so/u/"

// Type sizes.
const (
	titleSize  = 58
	handleSize = 28
	bioSize    = 26
	rankSize   = 34
	itemSize   = 32
	blockSize  = 26
	smallSize  = 22
	brandSize  = 34
	footerSize = 24
	tagSize    = 22
)

// List card row band.
const (
	rowHeight = 74
	rowGap    = 6
)

// Palette.
var (
	colorBackground = color.RGBA{R: 0xfd, G: 0xfd, B: 0xfc, A: 0xff}
	colorInk        = color.RGBA{R: 0x1c, G: 0x1b, B: 0x1f, A: 0xff}
	colorMuted      = color.RGBA{R: 0x6e, G: 0x6a, B: 0x75, A: 0xff}
	colorAccent     = color.RGBA{R: 0x7d, G: 0x6b, B: 0xa0, A: 0xff}
	colorBand       = color.RGBA{R: 0xf4, G: 0xf2, B: 0xf8, A: 0xff}
)

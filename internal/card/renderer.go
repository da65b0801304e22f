package card

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/tentoapp/tento-server/internal/domain"
)

// Renderer composes card projections into PNG images.
type Renderer struct {
	fonts  *FontSet
	logger *slog.Logger
}

// NewRenderer creates a renderer drawing with the given font set.
func NewRenderer(fonts *FontSet, logger *slog.Logger) *Renderer {
	return &Renderer{
		fonts:  fonts,
		logger: logger,
	}
}

// faces bundles the sized faces one render needs. Faces are cheap to
// build and not safe to share, so each render gets its own set.
type faces struct {
	title  font.Face
	brand  font.Face
	rank   font.Face
	handle font.Face
	bio    font.Face
	item   font.Face
	block  font.Face
	small  font.Face
	footer font.Face
	tag    font.Face
}

func (r *Renderer) newFaces() (*faces, error) {
	var (
		f   faces
		err error
	)
	if f.title, err = r.fonts.DisplayFace(titleSize); err != nil {
		return nil, fmt.Errorf("title face: %w", err)
	}
	if f.brand, err = r.fonts.DisplayFace(brandSize); err != nil {
		return nil, fmt.Errorf("brand face: %w", err)
	}
	if f.rank, err = r.fonts.DisplayFace(rankSize); err != nil {
		return nil, fmt.Errorf("rank face: %w", err)
	}
	if f.handle, err = r.fonts.BodyFace(handleSize); err != nil {
		return nil, fmt.Errorf("handle face: %w", err)
	}
	if f.bio, err = r.fonts.BodyFace(bioSize); err != nil {
		return nil, fmt.Errorf("bio face: %w", err)
	}
	if f.item, err = r.fonts.BodyFace(itemSize); err != nil {
		return nil, fmt.Errorf("item face: %w", err)
	}
	if f.block, err = r.fonts.BodyFace(blockSize); err != nil {
		return nil, fmt.Errorf("block face: %w", err)
	}
	if f.small, err = r.fonts.BodyFace(smallSize); err != nil {
		return nil, fmt.Errorf("small face: %w", err)
	}
	if f.footer, err = r.fonts.BodyFace(footerSize); err != nil {
		return nil, fmt.Errorf("footer face: %w", err)
	}
	if f.tag, err = r.fonts.BodyFace(tagSize); err != nil {
		return nil, fmt.Errorf("tag face: %w", err)
	}
	return &f, nil
}

// RenderProfileCard draws the profile preview: the user's name and bio
// with their recent lists in a two column grid.
func (r *Renderer) RenderProfileCard(ctx context.Context, card *domain.ProfileCard) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := r.newFaces()
	if err != nil {
		return nil, err
	}

	img := newCanvas()
	contentWidth := cardWidth - 2*cardPad

	y := cardPad + titleSize
	drawText(img, f.title, colorInk, cardPad, y, truncate(f.title, card.Name, contentWidth))

	y += handleSize + 16
	drawText(img, f.handle, colorAccent, cardPad, y, "@"+card.Username)

	if card.Bio != nil && *card.Bio != "" {
		y += bioSize + 18
		drawText(img, f.bio, colorMuted, cardPad, y, truncate(f.bio, *card.Bio, contentWidth))
	}

	gridTop := y + 44
	gridBottom := cardHeight - cardPad - footerSize - 24

	if len(card.Lists) == 0 {
		drawText(img, f.bio, colorMuted, cardPad, gridTop+bioSize, "No lists yet")
	} else {
		r.drawListGrid(img, f, card.Lists, gridTop, gridBottom)
	}

	drawFooter(img, f, card.Username, card.Date)

	return encodePNG(img)
}

// drawListGrid lays recent lists out in two columns, title above a
// single summary line of ranked items.
func (r *Renderer) drawListGrid(img *image.RGBA, f *faces, lists []domain.List, top, bottom int) {
	const colGap = 48
	colWidth := (cardWidth - 2*cardPad - colGap) / 2
	perColumn := (domain.CardMaxLists + 1) / 2
	blockHeight := (bottom - top) / perColumn

	for i, list := range lists {
		if i >= domain.CardMaxLists {
			break
		}
		col := i / perColumn
		row := i % perColumn
		x := cardPad + col*(colWidth+colGap)
		y := top + row*blockHeight + blockSize

		drawText(img, f.block, colorInk, x, y, truncate(f.block, list.Name, colWidth))
		if summary := itemSummary(list.Items); summary != "" {
			drawText(img, f.small, colorMuted, x, y+smallSize+8, truncate(f.small, summary, colWidth))
		}
	}
}

// itemSummary joins ranked items into a single line, e.g.
// "01 OK Computer · 02 Kid A".
func itemSummary(items []domain.ListItem) string {
	var buf bytes.Buffer
	for i, item := range items {
		if i > 0 {
			buf.WriteString("  ·  ")
		}
		fmt.Fprintf(&buf, "%02d %s", item.Rank, item.Value)
	}
	return buf.String()
}

// RenderListCard draws the list preview: the list title, its tags, and
// the top items as ranked rows with alternating backgrounds.
func (r *Renderer) RenderListCard(ctx context.Context, card *domain.ListCard) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := r.newFaces()
	if err != nil {
		return nil, err
	}

	img := newCanvas()
	contentWidth := cardWidth - 2*cardPad

	y := cardPad + titleSize
	drawText(img, f.title, colorInk, cardPad, y, truncate(f.title, card.List.Name, contentWidth))

	y += handleSize + 16
	drawText(img, f.handle, colorAccent, cardPad, y, "@"+card.Username)
	drawTags(img, f, card.List.Tags, y)

	rowsTop := y + 36
	for i, item := range card.List.Items {
		if i >= domain.CardMaxItems {
			break
		}
		rowY := rowsTop + i*(rowHeight+rowGap)
		if i%2 == 0 {
			fillRect(img, image.Rect(cardPad, rowY, cardWidth-cardPad, rowY+rowHeight), colorBand)
		}

		baseline := rowY + (rowHeight+rankSize)/2 - 4
		rank := fmt.Sprintf("%02d", item.Rank)
		drawText(img, f.rank, colorAccent, cardPad+20, baseline, rank)

		textX := cardPad + 20 + textWidth(f.rank, "00") + 28
		maxWidth := cardWidth - cardPad - 20 - textX
		drawText(img, f.item, colorInk, textX, baseline, truncate(f.item, item.Value, maxWidth))
	}

	drawFooter(img, f, card.Username, card.Date)

	return encodePNG(img)
}

// drawTags right-aligns up to CardMaxTags hash tags on the handle line.
func drawTags(img *image.RGBA, f *faces, tags []string, baseline int) {
	n := len(tags)
	if n > domain.CardMaxTags {
		n = domain.CardMaxTags
	}
	x := cardWidth - cardPad
	for i := n - 1; i >= 0; i-- {
		label := "#" + tags[i]
		x -= textWidth(f.tag, label)
		drawText(img, f.tag, colorAccent, x, baseline, label)
		x -= 20
	}
}

// drawFooter draws the wordmark, the profile link, and the date across
// the bottom of the card.
func drawFooter(img *image.RGBA, f *faces, username string, date time.Time) {
	baseline := cardHeight - cardPad

	drawText(img, f.brand, colorAccent, cardPad, baseline, brandName)

	linkX := cardPad + textWidth(f.brand, brandName) + 28
	drawText(img, f.footer, colorMuted, linkX, baseline, profileURLPrefix+username)

	formatted := date.Format("02/01/2006")
	drawText(img, f.footer, colorMuted, cardWidth-cardPad-textWidth(f.footer, formatted), baseline, formatted)
}

func newCanvas() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	fillRect(img, img.Bounds(), colorBackground)
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// truncate cuts s to fit maxWidth, appending an ellipsis when anything
// was removed.
func truncate(face font.Face, s string, maxWidth int) string {
	if textWidth(face, s) <= maxWidth {
		return s
	}
	const ellipsis = "…"
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if textWidth(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func encodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode card png: %w", err)
	}
	return buf.Bytes(), nil
}

package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/adapter"

	"github.com/fogleman/gg"
)

// Compile-time check
var _ adapter.TimetableRenderer = (*TimetableRenderer)(nil)

const (
	margin       = 20.0
	titleHeight  = 50.0
	headerHeight = 50.0
	timeColWidth = 100.0
	blockPadding = 4.0
	blockRadius  = 10.0

	defaultFirstHour = 10
	defaultLastHour  = 18
)

type Options struct {
	Width    int
	Height   int
	FontPath string
	Title    string
}

// TimetableRenderer draws a right-to-left weekly grid: the time column on the
// right, Sunday next to it and Saturday on the far left.
type TimetableRenderer struct {
	opts  Options
	fonts *fontSet
}

func NewTimetableRenderer(opts Options) (*TimetableRenderer, error) {
	if opts.Width <= 0 {
		opts.Width = 1000
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}
	if opts.Title == "" {
		opts.Title = "Ramadan Timetable"
	}
	fonts, err := loadFonts(opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return &TimetableRenderer{opts: opts, fonts: fonts}, nil
}

// layout is the geometry of one render.
type layout struct {
	gridLeft, gridTop float64
	colWidth          float64
	rowHeight         float64
	firstHour         int
	hours             int
}

func (r *TimetableRenderer) newLayout(entries []model.ConvertedEntry) layout {
	first, last := hourWindow(entries)
	w, h := float64(r.opts.Width), float64(r.opts.Height)
	gridWidth := w - 2*margin - timeColWidth
	return layout{
		gridLeft:  margin,
		gridTop:   margin + titleHeight + headerHeight,
		colWidth:  gridWidth / float64(len(model.TimetableDays)),
		rowHeight: (h - 2*margin - titleHeight - headerHeight) / float64(last-first),
		firstHour: first,
		hours:     last - first,
	}
}

// hourWindow covers 10:00-18:00 and widens to fit every entry.
func hourWindow(entries []model.ConvertedEntry) (first, last int) {
	first, last = defaultFirstHour, defaultLastHour
	for _, e := range entries {
		if h := e.Ramadan.Start.Hour(); h < first {
			first = h
		}
		end := e.Ramadan.End.Hour()
		if e.Ramadan.End.Minute() > 0 {
			end++
		}
		if end > last {
			last = end
		}
	}
	return first, last
}

// columnX is the left edge of the column for d. Sunday sits right next to the time column.
func (l layout) columnX(d time.Weekday) float64 {
	idx := 0
	for i, day := range model.TimetableDays {
		if day == d {
			idx = i
			break
		}
	}
	n := len(model.TimetableDays)
	return l.gridLeft + float64(n-1-idx)*l.colWidth
}

func (l layout) timeColX() float64 {
	return l.gridLeft + float64(len(model.TimetableDays))*l.colWidth
}

func (l layout) y(c model.Clock) float64 {
	mins := float64(int(c) - l.firstHour*60)
	return l.gridTop + mins/60*l.rowHeight
}

func (r *TimetableRenderer) Render(ctx context.Context, entries []model.ConvertedEntry) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: nothing to draw", domain.ErrRender)
	}

	sorted := make([]model.ConvertedEntry, len(entries))
	copy(sorted, entries)
	model.SortConverted(sorted)

	l := r.newLayout(sorted)
	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.SetHexColor(colorBackground)
	dc.Clear()

	r.drawTitle(dc)
	r.drawHeader(dc, l)
	r.drawGrid(dc, l)
	r.drawBlocks(dc, l, sorted)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", domain.ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (r *TimetableRenderer) drawTitle(dc *gg.Context) {
	dc.SetFontFace(r.fonts.face(true, 26))
	dc.SetHexColor(colorTitle)
	dc.DrawStringAnchored(r.opts.Title, float64(r.opts.Width)/2, margin+titleHeight/2, 0.5, 0.5)
}

func (r *TimetableRenderer) drawHeader(dc *gg.Context, l layout) {
	top := l.gridTop - headerHeight
	dc.SetFontFace(r.fonts.face(true, 18))
	dc.SetLineWidth(2)

	cell := func(x, w float64, label string) {
		dc.DrawRectangle(x, top, w, headerHeight)
		dc.SetHexColor(colorHeaderFill)
		dc.FillPreserve()
		dc.SetHexColor(colorHeaderLine)
		dc.Stroke()
		dc.DrawStringAnchored(label, x+w/2, top+headerHeight/2, 0.5, 0.5)
	}
	for _, d := range model.TimetableDays {
		cell(l.columnX(d), l.colWidth, d.String())
	}
	cell(l.timeColX(), timeColWidth, "Time")
}

func (r *TimetableRenderer) drawGrid(dc *gg.Context, l layout) {
	dc.SetFontFace(r.fonts.face(false, 16))
	dc.SetLineWidth(1)
	bottom := l.gridTop + float64(l.hours)*l.rowHeight

	for i := 0; i <= l.hours; i++ {
		y := l.gridTop + float64(i)*l.rowHeight
		dc.SetHexColor(colorGridLine)
		dc.DrawLine(l.gridLeft, y, l.timeColX()+timeColWidth, y)
		dc.Stroke()
		if i < l.hours {
			dc.SetHexColor(colorTimeText)
			label := fmt.Sprintf("%02d:00", l.firstHour+i)
			dc.DrawStringAnchored(label, l.timeColX()+timeColWidth/2, y+l.rowHeight/2, 0.5, 0.5)
		}
	}
	dc.SetHexColor(colorGridLine)
	for i := 0; i <= len(model.TimetableDays); i++ {
		x := l.gridLeft + float64(i)*l.colWidth
		dc.DrawLine(x, l.gridTop, x, bottom)
		dc.Stroke()
	}
	dc.DrawLine(l.timeColX()+timeColWidth, l.gridTop, l.timeColX()+timeColWidth, bottom)
	dc.Stroke()
}

func (r *TimetableRenderer) drawBlocks(dc *gg.Context, l layout, entries []model.ConvertedEntry) {
	colors := courseColors(model.Courses(entries))
	courseFace := r.fonts.face(true, 16)
	timeFace := r.fonts.face(false, 12)

	for _, p := range placeBlocks(entries) {
		e := p.entry
		laneWidth := (l.colWidth - 2*blockPadding) / float64(p.lanes)
		x := l.columnX(e.Entry.Day) + blockPadding + float64(p.lane)*laneWidth
		y1, y2 := l.y(e.Ramadan.Start)+blockPadding, l.y(e.Ramadan.End)-blockPadding
		w, h := laneWidth-2, y2-y1
		if h < 4 {
			h = 4
		}

		dc.DrawRoundedRectangle(x, y1, w, h, blockRadius)
		dc.SetHexColor(colors[e.Entry.Course])
		dc.FillPreserve()
		dc.SetHexColor(colorBlockLine)
		dc.SetLineWidth(2)
		dc.Stroke()

		cx := x + w/2
		dc.SetHexColor(colorBlockText)
		if h >= 40 {
			dc.SetFontFace(courseFace)
			dc.DrawStringAnchored(fitText(dc, e.Entry.Course, w-6), cx, y1+h/2-9, 0.5, 0.5)
			dc.SetFontFace(timeFace)
			dc.DrawStringAnchored(fitText(dc, e.Ramadan.Key(), w-6), cx, y1+h/2+11, 0.5, 0.5)
		} else {
			dc.SetFontFace(timeFace)
			dc.DrawStringAnchored(fitText(dc, e.Entry.Course, w-6), cx, y1+h/2, 0.5, 0.5)
		}
	}
}

// fitText trims s with an ellipsis until it fits maxWidth.
func fitText(dc *gg.Context, s string, maxWidth float64) string {
	if w, _ := dc.MeasureString(s); w <= maxWidth {
		return s
	}
	r := []rune(s)
	for len(r) > 1 {
		r = r[:len(r)-1]
		cand := string(r) + "…"
		if w, _ := dc.MeasureString(cand); w <= maxWidth {
			return cand
		}
	}
	return string(r)
}

type placedBlock struct {
	entry       model.ConvertedEntry
	lane, lanes int
}

// placeBlocks assigns side-by-side lanes to overlapping entries of the same day.
func placeBlocks(entries []model.ConvertedEntry) []placedBlock {
	byDay := make(map[time.Weekday][]model.ConvertedEntry)
	for _, e := range entries {
		byDay[e.Entry.Day] = append(byDay[e.Entry.Day], e)
	}

	var out []placedBlock
	for _, d := range model.TimetableDays {
		day := byDay[d]
		sort.SliceStable(day, func(i, j int) bool { return day[i].Ramadan.Start < day[j].Ramadan.Start })

		// split the day into clusters of transitively overlapping entries
		start := 0
		var clusterEnd model.Clock
		for i := range day {
			if i > start && day[i].Ramadan.Start >= clusterEnd {
				out = append(out, assignLanes(day[start:i])...)
				start = i
			}
			if i == start || day[i].Ramadan.End > clusterEnd {
				clusterEnd = day[i].Ramadan.End
			}
		}
		if start < len(day) {
			out = append(out, assignLanes(day[start:])...)
		}
	}
	return out
}

func assignLanes(cluster []model.ConvertedEntry) []placedBlock {
	var laneEnds []model.Clock
	out := make([]placedBlock, 0, len(cluster))
	for _, e := range cluster {
		lane := -1
		for i, end := range laneEnds {
			if e.Ramadan.Start >= end {
				lane = i
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, 0)
		}
		laneEnds[lane] = e.Ramadan.End
		out = append(out, placedBlock{entry: e, lane: lane})
	}
	for i := range out {
		out[i].lanes = len(laneEnds)
	}
	return out
}

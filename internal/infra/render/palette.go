package render

// coursePalette colours courses in first-seen order, wrapping around.
var coursePalette = []string{
	"#C8E36D", "#9B6DB8", "#FF8C42", "#E87A90", "#2D7D5E",
	"#4ECDC4", "#FF6B6B", "#95E1D3", "#F38181", "#AA96DA",
}

const (
	colorBackground = "#FFFFFF"
	colorTitle      = "#2C3E50"
	colorHeaderFill = "#ECF0F1"
	colorHeaderLine = "#2C3E50"
	colorGridLine   = "#BDC3C7"
	colorTimeText   = "#34495E"
	colorBlockLine  = "#2C3E50"
	colorBlockText  = "#FFFFFF"
)

func courseColors(courses []string) map[string]string {
	out := make(map[string]string, len(courses))
	for i, c := range courses {
		out[c] = coursePalette[i%len(coursePalette)]
	}
	return out
}

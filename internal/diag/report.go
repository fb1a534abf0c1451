package diag

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// enPrinter renders large figures with grouping separators so device
// memory sizes and throughput are readable at a glance.
var enPrinter = message.NewPrinter(language.English)

// FormatBytes renders a byte count with thousands separators.
func FormatBytes(n int64) string {
	return enPrinter.Sprintf("%d B", n)
}

func formatGFLOPS(g float64) string {
	if g >= 1 {
		return enPrinter.Sprintf("%.1f GFLOPS", g)
	}
	// Sub-GFLOPS runs (tiny sizes) read better as elements/s
	return enPrinter.Sprintf("%.0f MFLOPS", g*1000)
}

// FormatTensor renders a row-major tensor the way the diagnostic prints
// it: one bracketed row per line, aligned under the opening bracket.
//
//	[[0.3451 0.2813 0.9142]
//	 [0.1123 0.6632 0.0451]]
func FormatTensor(rows, cols int, values []float32) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("[")
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%.4f", values[i*cols+j]))
		}
		sb.WriteString("]")
		if i < rows-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("]\n")
	return sb.String()
}

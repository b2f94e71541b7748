package tui

import "github.com/charmbracelet/lipgloss"

// Color palette, following styles.go's convention of package-level
// lipgloss style vars rather than building styles inline per frame.
const (
	colorFatal   = "#f48771"
	colorError   = "#f48771"
	colorWarn    = "#dcdcaa"
	colorInfo    = "#89d185"
	colorDebug   = "#4fc1ff"
	colorTrace   = "#808080"
	colorUnknown = "#cccccc"

	colorSelectedBg = "#264f78"
	colorBorder     = "#3c3c3c"
	colorDim        = "#808080"
	colorBright     = "#ffffff"
)

// highlightPalette gives each of the four highlight slots a distinct
// background, cycled by insertion order (spec §6's 4-color palette).
var highlightPalette = [PaletteSize]string{"#3d3d1a", "#1a3d3d", "#3d1a3d", "#1a2a3d"}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorDebug))

	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBright))

	selectedRowStyle = lipgloss.NewStyle().Background(lipgloss.Color(colorSelectedBg))

	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)).Bold(true)
	statusOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorInfo))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	searchMatchStyle = lipgloss.NewStyle().Reverse(true)
)

// levelColor maps a severity to its render color (spec §4.I).
func levelColor(name string) string {
	switch name {
	case "FATAL":
		return colorFatal
	case "ERROR":
		return colorError
	case "WARN":
		return colorWarn
	case "INFO":
		return colorInfo
	case "DEBUG":
		return colorDebug
	case "TRACE":
		return colorTrace
	default:
		return colorUnknown
	}
}

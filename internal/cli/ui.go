package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/zipcities/pkg/errors"
	"github.com/matzehuels/zipcities/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	styleTableLabel  = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	styleTableCount  = lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1).Align(lipgloss.Right)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// PrintError prints err to stderr as a user-facing message.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, styleIconError.Render(iconError)+" "+errors.UserMessage(err))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Run Summary
// =============================================================================

// printResult prints the outcome of a pipeline run.
func printResult(res *pipeline.Result) {
	printSuccess("Wrote %s cities", StyleNumber.Render(strconv.Itoa(len(res.Cities))))
	printFile(res.Output)

	status := iconFresh
	statusStyle := styleComputed
	if res.CacheHit {
		status = iconCached
		statusStyle = styleCached
	}
	fmt.Println("  " + StyleDim.Render("run "+res.RunID+" · ") + statusStyle.Render(status))

	if res.CacheHit {
		return
	}
	if res.Parse.Skipped() > 0 {
		printDetail("%d of %d rows skipped", res.Parse.Skipped(), res.Parse.Rows)
	}
	fmt.Println(summaryTable(res))
}

// summaryRows lists the row and dedupe counters shown after a computed run.
func summaryRows(res *pipeline.Result) [][]string {
	p := res.Parse
	s := res.Stats
	return [][]string{
		{"rows read", strconv.Itoa(p.Rows)},
		{"locations kept", strconv.Itoa(p.Kept)},
		{"aliases", strconv.Itoa(p.Aliases)},
		{"skipped: country", strconv.Itoa(p.SkippedCountry)},
		{"skipped: military", strconv.Itoa(p.SkippedMilitary)},
		{"skipped: state", strconv.Itoa(p.SkippedState)},
		{"malformed", strconv.Itoa(p.Malformed)},
		{"candidates", strconv.Itoa(s.Candidates)},
		{"replaced", strconv.Itoa(s.Replaced)},
		{"unique places", strconv.Itoa(s.Unique)},
	}
}

// summaryTable renders summaryRows as a bordered table.
func summaryTable(res *pipeline.Result) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Stage", "Count").
		Rows(summaryRows(res)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleTableHeader
			case col == 1:
				return styleTableCount
			default:
				return styleTableLabel
			}
		}).
		String()
}

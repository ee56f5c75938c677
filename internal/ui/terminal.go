package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Out receives status output. It is stderr so generated SQL can be piped
// from stdout untouched.
var Out io.Writer = os.Stderr

// NullText is how DisplayTable renders a NULL cell.
const NullText = "NULL"

// PrintLogo prints the bulksql logo
func PrintLogo() {
	fmt.Fprintln(Out, LogoStyle.Render(Logo))
}

// PrintTitle prints a styled title
func PrintTitle(title string) {
	fmt.Fprintln(Out, TitleStyle.Render(title))
}

// PrintSubtitle prints a styled subtitle
func PrintSubtitle(subtitle string) {
	fmt.Fprintln(Out, SubtitleStyle.Render(subtitle))
}

func PrintSuccess(message string) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+message))
}

func PrintError(message string) {
	fmt.Fprintln(Out, ErrorStyle.Render("✗ "+message))
}

func PrintWarning(message string) {
	fmt.Fprintln(Out, WarningStyle.Render("! "+message))
}

func PrintInfo(message string) {
	fmt.Fprintln(Out, InfoStyle.Render(message))
}

func PrintHighlight(message string) {
	fmt.Fprintln(Out, HighlightStyle.Render(message))
}

// PrintBox prints content in a styled box
func PrintBox(title string, content string) {
	titleText := HighlightStyle.Render(title)
	contentText := InfoStyle.Render(content)
	boxContent := lipgloss.JoinVertical(lipgloss.Left, titleText, contentText)
	fmt.Fprintln(Out, BoxStyle.Render(boxContent))
}

// ExitWithError prints an error message and exits with code 1
func ExitWithError(message string) {
	PrintError(message)
	os.Exit(1)
}

// DisplayTable writes a styled table to w. A nil cell is shown as NULL.
func DisplayTable(w io.Writer, headers []string, rows [][]*string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && lipgloss.Width(cellText(cell)) > colWidths[i] {
				colWidths[i] = lipgloss.Width(cellText(cell))
			}
		}
	}

	headerCells := make([]string, len(headers))
	for i, header := range headers {
		headerCells[i] = TableHeaderStyle.Render(
			lipgloss.PlaceHorizontal(colWidths[i]+2, lipgloss.Left, header),
		)
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, headerCells...))

	separator := make([]string, len(headers))
	for i, width := range colWidths {
		separator[i] = strings.Repeat("─", width+2)
	}
	fmt.Fprintln(w, HighlightStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, separator...)))

	for _, row := range rows {
		rowCells := make([]string, 0, len(row))
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			style := TableCellStyle
			if cell == nil {
				style = NullCellStyle
			}
			rowCells = append(rowCells, style.Render(
				lipgloss.PlaceHorizontal(colWidths[i]+2, lipgloss.Left, cellText(cell)),
			))
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, rowCells...))
	}
}

func cellText(cell *string) string {
	if cell == nil {
		return NullText
	}
	return *cell
}

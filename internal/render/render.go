// Package render prints the task board and composer as plain text.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ytakahashi/task-manager/internal/models"
	"github.com/ytakahashi/task-manager/internal/tracker"
)

const (
	EmptyBoard      = "Add your first task"
	ValidationHint  = "Please fill out the above*"
	maxCellRunes    = 40
	cellPadding     = 2
	truncatedSuffix = "..."
)

// Tasks prints the task list as a table, or the empty-board prompt.
func Tasks(out io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, EmptyBoard)
		return
	}

	headers := []string{"ID", "TITLE", "DESCRIPTION", "DATE", "STATUS"}
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(task.ID, 10),
			truncate(task.Title),
			truncate(task.Description),
			task.Date,
			task.Status(),
		})
	}
	fmt.Fprint(out, formatTable(headers, rows))
}

// Task prints a single task card.
func Task(out io.Writer, task models.Task) {
	fmt.Fprintf(out, "[%s] %d %s\n", task.Status(), task.ID, task.Title)
	fmt.Fprintf(out, "  %s\n", task.Description)
	fmt.Fprintf(out, "  %s\n", task.Date)
}

// Composer prints the draft and the validation hint when it is raised.
func Composer(out io.Writer, c tracker.Composer) {
	if !c.Open {
		fmt.Fprintln(out, "composer closed")
		return
	}
	fmt.Fprintf(out, "title: %s\n", c.Title)
	fmt.Fprintf(out, "description: %s\n", c.Description)
	if c.ValidationError {
		fmt.Fprintln(out, ValidationHint)
	}
}

// Info prints an informational line.
func Info(out io.Writer, msg string) {
	fmt.Fprintln(out, msg)
}

// Error prints an error line.
func Error(out io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(out, "error: %v\n", err)
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxCellRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxCellRunes-len(truncatedSuffix)]) + truncatedSuffix
}

// formatTable lays out fixed-width columns sized to the widest cell.
func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var result strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				result.WriteString(cell)
				break
			}
			result.WriteString(cell)
			result.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)+cellPadding))
		}
		result.WriteString("\n")
	}

	writeRow(headers)
	for i, width := range widths {
		if i == len(widths)-1 {
			result.WriteString(strings.Repeat("-", width))
			break
		}
		result.WriteString(strings.Repeat("-", width+cellPadding))
	}
	result.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}

	return result.String()
}

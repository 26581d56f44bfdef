package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shaiso/Cascade/internal/domain"
)

// maxMessageWidth — предел длины сообщения в таблице.
const maxMessageWidth = 60

// WriteTable выводит результаты run в виде таблицы с итоговой строкой.
//
// Длинные сообщения обрезаются только при отображении — данные
// результатов не меняются.
func WriteTable(w io.Writer, results []*domain.StepResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := []string{"STEP", "STATUS", "ATTEMPTS", "TIME", "MESSAGE"}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2fs\t%s\n",
			res.Name,
			res.Status(),
			res.Attempts,
			res.TimeTaken.Seconds(),
			truncate(res.Message, maxMessageWidth),
		)
	}

	tw.Flush()

	s := Summarize(results)
	fmt.Fprintf(w, "\n%d steps: %d succeeded, %d failed, %d skipped (%.2fs)\n",
		s.Total, s.Succeeded, s.Failed, s.Skipped, s.Duration.Seconds())
}

// truncate обрезает строку до max символов с многоточием.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

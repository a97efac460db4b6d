package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"i18n-extract/internal/extract"
)

// Write renders msgs to w in the named format ("json" or "tsv").
func Write(w io.Writer, format string, msgs []extract.Message) error {
	switch format {
	case "json":
		return WriteJSON(w, msgs)
	case "tsv":
		return WriteTSV(w, msgs)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteJSON writes msgs as an indented JSON array. An empty result is "[]".
func WriteJSON(w io.Writer, msgs []extract.Message) error {
	if msgs == nil {
		msgs = []extract.Message{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(msgs); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// WriteTSV writes one message per line under a header row.
func WriteTSV(w io.Writer, msgs []extract.Message) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "text\tfile\tline\tpickup\targ")
	for _, m := range msgs {
		fmt.Fprintf(bw, "%s\t%s\t%d\t%s\t%d\n",
			escapeTSV(m.Text),
			escapeTSV(m.File),
			m.Line,
			escapeTSV(m.Pickup),
			m.Arg,
		)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write TSV: %w", err)
	}
	return nil
}

// escapeTSV replaces backslashes, tabs and newlines for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

// Location formats a message position as file:line.
func Location(m extract.Message) string {
	return m.File + ":" + strconv.Itoa(m.Line)
}

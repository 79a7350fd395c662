package repl

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/schema"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// formatValue renders a field value; decimals < 0 prints numbers as is
func formatValue(v interface{}, decimals int) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case float64:
		if decimals < 0 {
			return data.FormatNumber(x)
		}
		return strconv.FormatFloat(x, 'f', decimals, 64)
	case bool:
		if x {
			return ".T."
		}
		return ".F."
	}
	text, err := data.CanonicalJSON(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return text
}

func (s *Shell) structure(string) error {
	tw := newTable(s.out)
	fmt.Fprintln(tw, "field\ttype\tlen\tdec\tobject")
	fmt.Fprintln(tw, "---\t---\t---\t---\t---")
	for _, f := range s.tbl.Structdef() {
		obj := ""
		switch {
		case f.ObjectClass != "":
			obj = "class " + f.ObjectClass
		case f.ObjectTemplate != nil:
			obj = formatValue(f.ObjectTemplate, -1)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", f.Name, f.Type, f.Length, f.Decimals, obj)
	}
	return tw.Flush()
}

// list prints visible records in the current order and puts the cursor back
func (s *Shell) list(args string) error {
	limit := s.pageSize
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			return fmt.Errorf("list needs a positive count")
		}
		limit = n
	}

	t := s.tbl
	fields := t.Structdef()
	mark := t.GetBookmark()
	defer t.GoToBookmark(mark)

	tw := newTable(s.out)
	printHeader(tw, fields)
	shown := 0
	for ok := t.GoTop(); ok && shown < limit; ok = t.Skip(1) {
		printRow(tw, t.Recno(), t.Current(), fields)
		shown++
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "(%d shown)\n", shown)
	return nil
}

func (s *Shell) display(string) error {
	t := s.tbl
	if t.Eof() {
		fmt.Fprintln(s.out, "End of file")
		return nil
	}
	fields := t.Structdef()
	tw := newTable(s.out)
	printHeader(tw, fields)
	printRow(tw, t.Recno(), t.Current(), fields)
	return tw.Flush()
}

func printHeader(tw io.Writer, fields []schema.Field) {
	fmt.Fprint(tw, "recno\tdel")
	for _, f := range fields {
		fmt.Fprintf(tw, "\t%s (%s)", f.Name, f.Type)
	}
	fmt.Fprintln(tw)
	fmt.Fprint(tw, "---\t---")
	for range fields {
		fmt.Fprint(tw, "\t---")
	}
	fmt.Fprintln(tw)
}

func printRow(tw io.Writer, recno int, rec data.Record, fields []schema.Field) {
	del := ""
	if rec.Deleted() {
		del = "*"
	}
	fmt.Fprintf(tw, "%d\t%s", recno, del)
	for _, f := range fields {
		dec := -1
		if f.Type == schema.FieldTypeNumber {
			dec = f.Decimals
		}
		fmt.Fprintf(tw, "\t%s", formatValue(rec[f.Name], dec))
	}
	fmt.Fprintln(tw)
}

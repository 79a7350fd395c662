package repl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type command struct {
	usage string
	help  string
	run   func(s *Shell, args string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":       {"help", "list commands", (*Shell).help},
		"status":     {"status", "cursor, order, filter and setdeleted state", (*Shell).status},
		"structure":  {"structure", "show the field list", (*Shell).structure},
		"list":       {"list [n]", "show up to n visible records from the top", (*Shell).list},
		"display":    {"display", "show the current record", (*Shell).display},
		"?":          {"? expr", "evaluate an expression against the current record", (*Shell).eval},
		"top":        {"top", "go to the first visible record", op(func(s *Shell) bool { return s.tbl.GoTop() })},
		"bottom":     {"bottom", "go to the last visible record", op(func(s *Shell) bool { return s.tbl.GoBottom() })},
		"goto":       {"goto n", "go to record n", (*Shell).gotoRecord},
		"skip":       {"skip [n]", "move n visible records (default 1)", (*Shell).skip},
		"locate":     {"locate cond", "find the first visible record satisfying cond", (*Shell).locate},
		"seek":       {"seek value", "find a key in the current index", (*Shell).seek},
		"append":     {"append", "add a blank record", op(func(s *Shell) bool { return s.tbl.AppendBlank() })},
		"insert":     {"insert {field: value, ...}", "append a record from a map", (*Shell).insert},
		"set":        {"set path value", "assign one field of the current record", (*Shell).set},
		"replace":    {"replace field with expr[, ...] | replace all list [for cond]", "update records", (*Shell).replace},
		"commit":     {"commit", "write the current record", op(func(s *Shell) bool { return s.tbl.Commit() })},
		"delete":     {"delete [all [cond]]", "mark records deleted", (*Shell).deleteRecords},
		"recall":     {"recall [all [cond]]", "clear deleted marks", (*Shell).recallRecords},
		"pack":       {"pack", "remove deleted records", op(func(s *Shell) bool { return s.tbl.Pack() })},
		"zap":        {"zap", "remove every record", op(func(s *Shell) bool { return s.tbl.Zap() })},
		"filter":     {"filter [expr]", "set or clear the filter", (*Shell).filter},
		"setdeleted": {"setdeleted on|off", "hide or show deleted records", (*Shell).setDeleted},
		"index":      {"index on keys", "build an index and make it current", (*Shell).index},
		"order":      {"order [n|keys]", "select the current index, 0 for physical order", (*Shell).order},
		"indexes":    {"indexes", "list indexes", (*Shell).indexes},
		"reindex":    {"reindex", "rebuild every index", op(func(s *Shell) bool { return s.tbl.Reindex() })},
		"quit":       {"quit", "leave the shell", nil},
	}
}

// op adapts a table operation whose failure is reported through Err
func op(fn func(s *Shell) bool) func(s *Shell, args string) error {
	return func(s *Shell, args string) error {
		fn(s)
		s.position()
		return nil
	}
}

// parseValue reads a literal the way a YAML scalar or flow collection reads:
// 5, 2.5, true, 'text', {a: 1}
func parseValue(text string) (interface{}, error) {
	var v interface{}
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("cannot read value %q: %w", text, err)
	}
	return v, nil
}

func (s *Shell) help(string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	tw := newTable(s.out)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", commands[name].usage, commands[name].help)
	}
	return tw.Flush()
}

func (s *Shell) position() {
	t := s.tbl
	switch {
	case t.Reccount() == 0:
		fmt.Fprintln(s.out, "Table is empty")
	case t.Eof():
		fmt.Fprintf(s.out, "End of file (%d records)\n", t.Reccount())
	default:
		mark := ""
		if t.Bof() {
			mark = " [bof]"
		}
		if t.Deleted() {
			mark += " [deleted]"
		}
		fmt.Fprintf(s.out, "Record %d/%d%s\n", t.Recno(), t.Reccount(), mark)
	}
}

func (s *Shell) status(string) error {
	t := s.tbl
	s.position()
	order := "physical"
	if n := t.CurOrder(); n > 0 {
		order = fmt.Sprintf("%d (%s)", n, t.IndexKeyList(n))
	} else if n < 0 {
		order = "suspended"
	}
	filter := t.Filter()
	if filter == "" {
		filter = "none"
	}
	setdel := "off"
	if t.IsSetDeleted() {
		setdel = "on"
	}
	fmt.Fprintf(s.out, "Order: %s\nFilter: %s\nSetdeleted: %s\n", order, filter, setdel)
	return nil
}

func (s *Shell) eval(args string) error {
	v, ok := s.tbl.Eval(args)
	if ok {
		fmt.Fprintln(s.out, formatValue(v, -1))
	}
	return nil
}

func (s *Shell) gotoRecord(args string) error {
	n, err := strconv.Atoi(args)
	if err != nil {
		return fmt.Errorf("goto needs a record number")
	}
	s.tbl.GoTo(n)
	s.position()
	return nil
}

func (s *Shell) skip(args string) error {
	n := 1
	if args != "" {
		var err error
		if n, err = strconv.Atoi(args); err != nil {
			return fmt.Errorf("skip needs a count")
		}
	}
	s.tbl.Skip(n)
	s.position()
	return nil
}

func (s *Shell) locate(args string) error {
	if s.tbl.Locate(args) {
		s.position()
		return nil
	}
	fmt.Fprintln(s.out, "Not found")
	return nil
}

func (s *Shell) seek(args string) error {
	v, err := parseValue(args)
	if err != nil {
		return err
	}
	if s.tbl.Seek(v) {
		s.position()
		return nil
	}
	fmt.Fprintln(s.out, "Not found")
	return nil
}

func (s *Shell) insert(args string) error {
	v, err := parseValue(args)
	if err != nil {
		return err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return fmt.Errorf("insert needs a map such as {code: A1, qty: 5}")
	}
	if s.tbl.InsertInto(m) {
		s.position()
	}
	return nil
}

func (s *Shell) set(args string) error {
	path, text, ok := strings.Cut(args, " ")
	if !ok {
		return fmt.Errorf("usage: set path value")
	}
	v, err := parseValue(strings.TrimSpace(text))
	if err != nil {
		return err
	}
	s.tbl.Set(path, v)
	return nil
}

func (s *Shell) replace(args string) error {
	rest, all := cutWord(args, "all")
	if !all {
		s.tbl.ReplaceWith(args)
		return nil
	}
	list, cond := cutFor(rest)
	if s.tbl.ReplaceAll(list, cond) {
		fmt.Fprintln(s.out, "Replaced")
	}
	return nil
}

func (s *Shell) deleteRecords(args string) error {
	if cond, all := cutWord(args, "all"); all {
		s.tbl.DeleteAll(cond)
		return nil
	}
	s.tbl.Delete()
	return nil
}

func (s *Shell) recallRecords(args string) error {
	if cond, all := cutWord(args, "all"); all {
		s.tbl.RecallAll(cond)
		return nil
	}
	s.tbl.Recall()
	return nil
}

func (s *Shell) filter(args string) error {
	if args == "" {
		s.tbl.ClearFilter()
		return nil
	}
	s.tbl.SetFilter(args)
	return nil
}

func (s *Shell) setDeleted(args string) error {
	switch strings.ToLower(args) {
	case "on":
		s.tbl.SetDeletedOn()
	case "off":
		s.tbl.SetDeletedOff()
	default:
		return fmt.Errorf("usage: setdeleted on|off")
	}
	return nil
}

func (s *Shell) index(args string) error {
	keys, on := cutWord(args, "on")
	if !on || keys == "" {
		return fmt.Errorf("usage: index on keys")
	}
	if s.tbl.IndexOn(keys) {
		fmt.Fprintf(s.out, "Index %d on %s\n", s.tbl.CurOrder(), s.tbl.IndexKeyList(s.tbl.CurOrder()))
	}
	return nil
}

func (s *Shell) order(args string) error {
	if args == "" {
		return s.status("")
	}
	if n, err := strconv.Atoi(args); err == nil {
		s.tbl.SetOrder(n)
		return nil
	}
	if !s.tbl.SetCurIndex(args) {
		return fmt.Errorf("no index on %s", args)
	}
	return nil
}

func (s *Shell) indexes(string) error {
	tw := newTable(s.out)
	fmt.Fprintln(tw, "#\tkeys\texpression")
	for n := 1; n <= s.tbl.IndexCount(); n++ {
		cur := ""
		if n == s.tbl.CurOrder() {
			cur = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%s\n", n, cur, s.tbl.IndexKeyList(n), s.tbl.IndexKeyExp(n))
	}
	return tw.Flush()
}

// cutWord strips a leading keyword, case-insensitively
func cutWord(args, word string) (string, bool) {
	head, rest, _ := strings.Cut(args, " ")
	if !strings.EqualFold(head, word) {
		return args, false
	}
	return strings.TrimSpace(rest), true
}

// cutFor splits "list for cond" at the last " for "
func cutFor(args string) (string, string) {
	i := strings.LastIndex(strings.ToLower(args), " for ")
	if i < 0 {
		return args, ""
	}
	return strings.TrimSpace(args[:i]), strings.TrimSpace(args[i+5:])
}

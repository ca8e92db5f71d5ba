// Package console drives a list page from a line-oriented command stream.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/celerix-dev/celerix-catalog/internal/admin"
	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

// Session reads commands and renders the page after every change.
type Session struct {
	Page   *admin.Page
	Prompt string
}

// Run processes commands from in until QUIT, EOF or ctx is done.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	s.render(out)

	for {
		if s.Prompt != "" {
			fmt.Fprint(out, s.Prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		quit, err := s.exec(ctx, strings.ToUpper(parts[0]), parts[1:], out)
		if err != nil {
			fmt.Fprintln(out, describe(err))
		}
		if quit {
			return nil
		}
	}
}

func (s *Session) exec(ctx context.Context, command string, args []string, out io.Writer) (bool, error) {
	view := s.Page.View

	switch command {
	case "SHOW", "LS":

	case "FILTER":
		if len(args) < 1 {
			return false, usage("FILTER <field> [query]")
		}
		if err := view.SetFilter(args[0], strings.Join(args[1:], " ")); err != nil {
			return false, err
		}

	case "RESET":
		view.ResetFilters()

	case "SORT":
		if len(args) != 1 {
			return false, usage("SORT <field>")
		}
		if err := view.SetSort(args[0]); err != nil {
			return false, err
		}

	case "NEXT":
		view.NextPage()

	case "PREV":
		view.PrevPage()

	case "NEW":
		view.BeginEdit(listview.NewRow)

	case "EDIT":
		if len(args) != 1 {
			return false, usage("EDIT <id>")
		}
		if _, ok := view.Lookup(args[0]); !ok && args[0] != listview.NewRow {
			return false, fmt.Errorf("%w: %s", listview.ErrRecordNotFound, args[0])
		}
		view.BeginEdit(args[0])

	case "SET":
		if len(args) < 3 {
			return false, usage("SET <id|new> <field> <value>")
		}
		if err := view.SetField(args[0], args[1], parseValue(strings.Join(args[2:], " "))); err != nil {
			return false, err
		}

	case "CANCEL":
		id := view.ActiveEdit()
		if len(args) == 1 {
			id = args[0]
		}
		view.CancelEdit(id)

	case "SAVE":
		id := view.ActiveEdit()
		if len(args) == 1 {
			id = args[0]
		}
		if id == listview.NewRow {
			if _, err := s.Page.Create(ctx); err != nil {
				return false, err
			}
			break
		}
		if err := s.Page.Save(ctx, id); err != nil {
			return false, err
		}

	case "DELETE":
		if len(args) != 1 {
			return false, usage("DELETE <id>")
		}
		if err := s.Page.Delete(ctx, args[0]); err != nil {
			return false, err
		}

	case "HELP":
		printHelp(out)
		return false, nil

	case "QUIT", "EXIT":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q (try HELP)", command)
	}

	s.render(out)
	return false, nil
}

// parseValue accepts JSON scalars and falls back to the raw text.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case string, float64, bool, nil:
		return v
	}
	return raw
}

func usage(u string) error {
	return fmt.Errorf("usage: %s", u)
}

func describe(err error) string {
	var re *listview.RecoverableError
	if errors.As(err, &re) {
		return "Alert: " + re.Error()
	}
	return "Error: " + err.Error()
}

func (s *Session) render(out io.Writer) {
	Render(out, s.Page)
}

// Render writes the visible page of p as a table followed by its page info.
// Values of the row being edited are shown from the overlay and marked "*".
func Render(out io.Writer, p *admin.Page) {
	view := p.View
	entity := p.Entity
	sortState := view.Sort()

	fmt.Fprintf(out, "%s\n", entity.Title)
	if filters := view.Filters(); len(filters) > 0 {
		var active []string
		for _, f := range entity.Filterable {
			if q, ok := filters[f]; ok {
				active = append(active, fmt.Sprintf("%s~%q", f, q))
			}
		}
		fmt.Fprintf(out, "Filters: %s\n", strings.Join(active, " "))
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := []string{entity.IDField}
	for _, col := range entity.Columns {
		label := col
		if sortState.Field == col {
			if sortState.Direction == listview.Ascending {
				label += " ↑"
			} else {
				label += " ↓"
			}
		}
		header = append(header, label)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	active := view.ActiveEdit()
	for _, rec := range view.VisibleRows() {
		id := listview.Key(rec[entity.IDField])
		cells := []string{id}
		for _, col := range entity.Columns {
			if id == active {
				cells = append(cells, listview.Text(view.Value(id, col))+"*")
				continue
			}
			cells = append(cells, p.Display(rec, col))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	if active == listview.NewRow {
		draft := view.Overlay(listview.NewRow)
		var fields []string
		for _, col := range entity.Columns {
			fields = append(fields, fmt.Sprintf("%s=%s", col, listview.Text(draft[col])))
		}
		fmt.Fprintf(out, "New %s: %s\n", strings.TrimSuffix(entity.Name, "s"), strings.Join(fields, " "))
	}

	info := view.PageInfo()
	fmt.Fprintf(out, "Page %d of %d (%d matching)\n", info.CurrentPage, info.TotalPages, info.TotalMatching)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `Commands:
  SHOW                          redraw the current page
  FILTER <field> [query]        filter by substring (empty query clears)
  RESET                         clear all filters
  SORT <field>                  sort ascending, again for descending
  NEXT | PREV                   change page
  EDIT <id> | NEW               start editing a row or a new record
  SET <id|new> <field> <value>  change a field of the row being edited
  SAVE [id] | CANCEL [id]       persist or discard the edit
  DELETE <id>                   delete a record
  QUIT`)
}

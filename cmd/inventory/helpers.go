package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// explain renders validation failures one field per line.
func explain(err error) error {
	ex, ok := validation.AsException(err)
	if !ok {
		return err
	}
	msg := "rejected:"
	for _, fe := range ex.Errors {
		msg += fmt.Sprintf("\n  %s: %s", fe.Field(), fe.Error())
	}
	return errors.New(msg)
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d not found", kind, id)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func quantity(q *entity.Quantity) string {
	if q == nil {
		return "-"
	}
	return string(*q)
}

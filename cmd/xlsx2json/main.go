package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/angas/gridfees-go/tariff"
)

// Converts a tariff workbook into the JSON dataset served by gridfees.
func main() {
	in := flag.String("in", "", "path to the tariff workbook")
	out := flag.String("out", "", "output file, stdout when empty")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "-in is required")
		os.Exit(2)
	}

	f, err := os.Open(*in)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	ds, err := tariff.ReadWorkbook(f)
	if err != nil {
		panic(err)
	}

	for _, d := range ds.Duplicates() {
		fmt.Fprintf(os.Stderr, "warning: row %d is shadowed by row %d (%s %s)\n",
			d.Index, d.ShadowedBy, d.Row.Operator, d.Row.VoltageLevel)
	}

	data, err := ds.MarshalJSON()
	if err != nil {
		panic(err)
	}

	if *out == "" {
		if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
			panic(err)
		}
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		panic(err)
	}
}

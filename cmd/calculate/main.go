package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/angas/gridfees-go/calc"
	"github.com/angas/gridfees-go/export"
	"github.com/angas/gridfees-go/tariff"
)

// Reads a calculation request as JSON from -request or stdin and prints
// the result, or the error body, as JSON.
func main() {
	datasetPath := flag.String("dataset", "", "path to the tariff dataset (.json or .xlsx)")
	requestPath := flag.String("request", "", "path to a request file, stdin when empty")
	format := flag.String("format", "json", "output format: json, csv, xlsx or pdf")
	flag.Parse()

	if *datasetPath == "" {
		fmt.Fprintln(os.Stderr, "-dataset is required")
		os.Exit(2)
	}

	ds, err := tariff.LoadFile(*datasetPath)
	if err != nil {
		fail(err)
	}

	req, err := readRequest(*requestPath)
	if err != nil {
		fail(err)
	}

	res, err := calc.Calculate(req, ds)
	if err != nil {
		fail(err)
	}

	if *format == "json" {
		printJSON(res)
		return
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		fail(err)
	}
	data, err := export.Render(f, req, res)
	if err != nil {
		fail(err)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		fail(err)
	}
}

func readRequest(path string) (calc.Request, error) {
	if path == "" {
		return calc.DecodeRequest(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return calc.Request{}, err
	}
	req, err := calc.DecodeRequest(f)
	f.Close()
	return req, err
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fail(err error) {
	printJSON(calc.ErrorBody(err))
	os.Exit(1)
}

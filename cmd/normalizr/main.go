// Command normalizr normalizes and denormalizes JSON or YAML documents
// against a declarative schema definition.
//
//	normalizr normalize -schema def.yaml -in data.json
//	normalizr denormalize -schema def.yaml -in normalized.json
//
// Input is read from -in or stdin. The normalize output is the persisted
// shape {"result": ..., "entities": {type: {id: record}}}; denormalize
// consumes that shape and prints the reconstructed graph.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	normalizr "github.com/nhusher/normalizr"
	"github.com/nhusher/normalizr/schemadef"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "normalize":
		normalizeCmd(os.Args[2:])
	case "denormalize":
		denormalizeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "normalizr CLI\n\nUsage:\n  normalizr normalize -schema def.yaml [-in data.json] [-format json|yaml] [-debug]\n  normalizr denormalize -schema def.yaml [-in normalized.json] [-format json|yaml] [-debug]")
}

type cmdFlags struct {
	schemaPath string
	inPath     string
	format     string
	debug      bool
}

func parseFlags(name string, args []string) cmdFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var cf cmdFlags
	fs.StringVar(&cf.schemaPath, "schema", "", "schema definition file (YAML or JSON)")
	fs.StringVar(&cf.inPath, "in", "", "input file; stdin when omitted")
	fs.StringVar(&cf.format, "format", "", "input format: json or yaml (default: by extension, json for stdin)")
	fs.BoolVar(&cf.debug, "debug", false, "dump the loaded definition to stderr")
	_ = fs.Parse(args)
	if cf.schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	return cf
}

func normalizeCmd(args []string) {
	cf := parseFlags("normalize", args)
	root := loadSchema(cf)
	input := readInput(cf)
	n, err := normalizr.Normalize(input, root)
	if err != nil {
		fatalf("normalize: %v", err)
	}
	emit(n)
}

func denormalizeCmd(args []string) {
	cf := parseFlags("denormalize", args)
	root := loadSchema(cf)
	doc := readInput(cf)
	m, ok := doc.(map[string]any)
	if !ok {
		fatalf("denormalize: input must be an object with result and entities")
	}
	entities := make(normalizr.Store)
	if raw, ok := m["entities"].(map[string]any); ok {
		for key, bucket := range raw {
			bm, ok := bucket.(map[string]any)
			if !ok {
				fatalf("denormalize: entities.%s is not an object", key)
			}
			entities[key] = bm
		}
	}
	out, err := normalizr.Denormalize(m["result"], root, entities)
	if err != nil {
		fatalf("denormalize: %v", err)
	}
	emit(out)
}

func loadSchema(cf cmdFlags) normalizr.Schema {
	data, err := os.ReadFile(cf.schemaPath)
	if err != nil {
		fatalf("read schema: %v", err)
	}
	def, err := schemadef.Load(data)
	if err != nil {
		fatalf("%v", err)
	}
	if cf.debug {
		spew.Fdump(os.Stderr, def)
	}
	root, err := def.Build()
	if err != nil {
		fatalf("%v", err)
	}
	return root
}

func readInput(cf cmdFlags) any {
	var data []byte
	var err error
	if cf.inPath == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(cf.inPath)
	}
	if err != nil {
		fatalf("read input: %v", err)
	}
	switch inputFormat(cf) {
	case "yaml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			fatalf("decode yaml input: %v", err)
		}
		return v
	default:
		var v any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			fatalf("decode json input: %v", err)
		}
		return v
	}
}

func inputFormat(cf cmdFlags) string {
	if cf.format != "" {
		return cf.format
	}
	switch strings.ToLower(filepath.Ext(cf.inPath)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

func emit(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encode output: %v", err)
	}
	fmt.Println(string(out))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/acksell/ddbtoolbox/dynamodb/entity"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/format"
	"github.com/acksell/ddbtoolbox/dynamodb/schema/parse"
	"github.com/acksell/ddbtoolbox/dynamodb/schemafile"
	"github.com/rs/zerolog"
)

type streams struct {
	in  io.Reader
	out io.Writer
}

var std = streams{in: os.Stdin, out: os.Stdout}

func runCheck(args []string, s streams) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	dir := fs.String("dir", ".", "directory to search when no files are given")
	watch := fs.Bool("watch", false, "keep checking a single file whenever it changes")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `ddb check - Validate schema files

Usage:
  ddb check [flags] [file ...]

Without files, every schema_dynamodb.yaml below -dir is checked.
With -watch, the single given file is checked again on every save.

Flags:`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	files := fs.Args()
	if *watch {
		if len(files) != 1 {
			return fmt.Errorf("-watch takes exactly one file")
		}
		return watchSchema(files[0], s)
	}
	if len(files) == 0 {
		found, err := discoverSchemas(*dir)
		if err != nil {
			return fmt.Errorf("failed to search %s: %w", *dir, err)
		}
		if len(found) == 0 {
			return fmt.Errorf("no %s found below %s", schemaFilename, *dir)
		}
		files = found
	}

	var failed int
	for _, path := range files {
		reg, err := loadRegistry(path)
		if err != nil {
			fmt.Fprintf(s.out, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		var entities []string
		for _, name := range reg.Tables() {
			for _, e := range reg.Entities(name) {
				entities = append(entities, e.Name())
			}
		}
		fmt.Fprintf(s.out, "ok   %s (%d tables, entities: %s)\n", path, len(reg.Tables()), strings.Join(entities, ", "))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d schema files are invalid", failed, len(files))
	}
	return nil
}

// watchSchema reports every reload of path until interrupted.
func watchSchema(path string, s streams) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	level, err := cfg.level()
	if err != nil {
		return fmt.Errorf("invalid logLevel in %s: %w", configFilename, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(min(level, zerolog.InfoLevel)).
		With().Timestamp().Logger()

	h, err := schemafile.NewHolder(path, logger)
	if err != nil {
		return err
	}
	h.OnChange(func(reg *schemafile.Registry) {
		fmt.Fprintf(s.out, "ok   %s (%d tables)\n", path, len(reg.Tables()))
	})
	if err := h.WatchFile(); err != nil {
		return err
	}
	defer h.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

// entityFlags are shared by commands working on a single entity.
type entityFlags struct {
	schema string
	entity string
	in     string
}

func (f *entityFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.schema, "schema", "", "schema file (default from ddb.yaml, then ./"+schemaFilename+")")
	fs.StringVar(&f.entity, "entity", "", "entity name (required)")
	fs.StringVar(&f.in, "in", "", "read the JSON item from this file instead of stdin")
}

func (f *entityFlags) load(s streams) (*entity.Entity, map[string]any, error) {
	if f.entity == "" {
		return nil, nil, fmt.Errorf("-entity is required")
	}
	path := f.schema
	if path == "" {
		cfg, err := LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		path = cfg.Schema
	}
	if path == "" {
		path = schemaFilename
	}
	reg, err := loadRegistry(path)
	if err != nil {
		return nil, nil, err
	}
	e, ok := reg.Entity(f.entity)
	if !ok {
		return nil, nil, fmt.Errorf("entity %q is not declared in %s", f.entity, path)
	}

	in := s.in
	if f.in != "" {
		file, err := os.Open(f.in)
		if err != nil {
			return nil, nil, err
		}
		defer file.Close()
		in = file
	}
	item, err := readItem(in)
	if err != nil {
		return nil, nil, err
	}
	return e, item, nil
}

func runParse(args []string, s streams) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	var ef entityFlags
	ef.register(fs)
	mode := fs.String("mode", string(schema.ModePut), "parse mode: put, key or update")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m := schema.Mode(*mode)
	if !m.Valid() {
		return fmt.Errorf("unknown mode %q", *mode)
	}

	e, item, err := ef.load(s)
	if err != nil {
		return err
	}
	p, err := e.Parse(item, parse.WithMode(m))
	if err != nil {
		return err
	}
	return writeJSON(s.out, map[string]any{
		"item": p.Item,
		"key":  p.Key.Item(),
	})
}

func runFormat(args []string, s streams) error {
	fs := flag.NewFlagSet("format", flag.ContinueOnError)
	var ef entityFlags
	ef.register(fs)
	attributes := fs.String("attributes", "", "comma separated attribute paths to keep")
	partial := fs.Bool("partial", false, "allow missing required attributes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, item, err := ef.load(s)
	if err != nil {
		return err
	}
	opts := []format.Option{format.WithPartial(*partial)}
	if *attributes != "" {
		opts = append(opts, format.WithAttributes(strings.Split(*attributes, ",")...))
	}
	formatted, err := e.Format(item, opts...)
	if err != nil {
		return err
	}
	return writeJSON(s.out, formatted)
}

func loadRegistry(path string) (*schemafile.Registry, error) {
	doc, err := schemafile.Load(path)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

func readItem(r io.Reader) (map[string]any, error) {
	var item map[string]any
	if err := json.NewDecoder(r).Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to read JSON item: %w", err)
	}
	return item, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

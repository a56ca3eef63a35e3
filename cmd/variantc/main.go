// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command variantc builds every keyword variant described by a manifest.
//
// Usage:
//
//	variantc [options] <manifest.yaml>
//
// Examples:
//
//	variantc lit.yaml                          # Build and print a summary
//	variantc -o out lit.yaml                   # Write binaries to out/lit/
//	variantc -targets glsl,msl -o out lit.yaml # Also write decompiled sources
//	variantc -cache .variants -codec zstd lit.yaml
//	variantc -redis redis://localhost:6379 lit.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/variants"
	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/compiler"
	"github.com/gogpu/variants/manifest"
	"github.com/gogpu/variants/spirv"
)

var (
	output       = flag.String("o", "", "output directory (default: summary only)")
	workers      = flag.Int("workers", 0, "concurrent sessions (default: GOMAXPROCS)")
	cacheDir     = flag.String("cache", "", "artifact cache directory")
	redisURL     = flag.String("redis", "", "artifact cache Redis URL")
	s3Endpoint   = flag.String("s3", "", "artifact cache S3 endpoint (credentials from AWS_* environment)")
	s3Bucket     = flag.String("bucket", "variants", "artifact cache bucket for -s3")
	s3Secure     = flag.Bool("s3-secure", true, "use TLS for -s3")
	codecName    = flag.String("codec", "lz4", "artifact codec: none, lz4 or zstd")
	targetList   = flag.String("targets", "", "comma-separated decompile targets (glsl, hlsl, msl)")
	validate     = flag.Bool("validate", true, "validate linked SPIR-V")
	strip        = flag.Bool("strip", false, "strip debug instructions")
	listing      = flag.Bool("listing", false, "write .spvasm listings")
	dumpKeywords = flag.Bool("dump-keywords", false, "print the keyword registry")
	verbose      = flag.Bool("v", false, "verbose logging")
	version      = flag.Bool("version", false, "print version")
)

const variantcVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("variantc version %s\n", variantcVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no manifest specified")
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	env, err := compiler.New(compiler.Options{Logger: compiler.NewTextLogger(level)})
	if err != nil {
		return err
	}

	opts := variants.DefaultOptions()
	opts.Validate = *validate
	opts.StripDebug = *strip
	opts.Listing = *listing
	if *workers > 0 {
		opts.Workers = *workers
	}
	if *targetList != "" {
		for _, name := range strings.Split(*targetList, ",") {
			t, err := backend.ParseTarget(strings.TrimSpace(name))
			if err != nil {
				return err
			}
			opts.Targets = append(opts.Targets, t)
		}
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	opts.Store = store

	res, err := variants.Build(ctx, env, m, opts)
	if err != nil {
		if kind := compiler.KindOf(err); kind != compiler.KindOther {
			return fmt.Errorf("%v: %w", kind, err)
		}
		return err
	}

	printSummary(res)
	if *dumpKeywords {
		fmt.Print(env.DumpKeywords())
	}
	if *output != "" {
		return writeResult(filepath.Join(*output, res.Name), res)
	}
	return nil
}

func printSummary(res *variants.Result) {
	fmt.Printf("%s: %d variants, %d excluded, %d cached, %v\n",
		res.Name, len(res.Variants), res.Excluded, res.Hits(), res.Duration.Round(time.Microsecond))
	for _, v := range res.Variants {
		fmt.Printf("  #%-3d 0x%016x %-40s", v.Index, v.Combo, strings.Join(v.Keywords, " "))
		for _, stage := range backend.Stages {
			if ch, ok := v.Diff[stage]; ok {
				fmt.Printf(" %s %d/%d", stage, ch.Shared(), ch.Length)
			}
		}
		fmt.Println()
	}
	for _, group := range res.Duplicates() {
		fmt.Printf("  identical: %v\n", group)
	}
}

func writeResult(dir string, res *variants.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for stage, words := range res.Base {
		if err := os.WriteFile(filepath.Join(dir, "base."+stage.String()+".spv"), spirv.Bytes(words), 0644); err != nil {
			return err
		}
	}
	for _, v := range res.Variants {
		prefix := filepath.Join(dir, fmt.Sprintf("%016x", v.Combo))
		for stage, words := range v.Binaries {
			if err := os.WriteFile(prefix+"."+stage.String()+".spv", spirv.Bytes(words), 0644); err != nil {
				return err
			}
		}
		for stage, text := range v.Listings {
			if err := os.WriteFile(prefix+"."+stage.String()+".spvasm", []byte(text), 0644); err != nil {
				return err
			}
		}
		for stage, byTarget := range v.Sources {
			for target, code := range byTarget {
				if err := os.WriteFile(prefix+"."+stage.String()+target.Ext(), []byte(code), 0644); err != nil {
					return err
				}
			}
		}
		if v.Names != "" {
			if err := os.WriteFile(prefix+".keywords", []byte(v.Names+"\n"), 0644); err != nil {
				return err
			}
		}
	}
	fmt.Printf("Wrote %d variants to %s\n", len(res.Variants), dir)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: variantc [options] <manifest.yaml>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  variantc lit.yaml                       Print a variant summary\n")
	fmt.Fprintf(os.Stderr, "  variantc -o out lit.yaml                Write binaries\n")
	fmt.Fprintf(os.Stderr, "  variantc -targets glsl -o out lit.yaml  Write GLSL too\n")
	fmt.Fprintf(os.Stderr, "  variantc -cache .variants lit.yaml      Reuse cached binaries\n")
}

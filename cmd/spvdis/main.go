// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// spvdis - SPIR-V disassembler
// Generates valid .spvasm text format. With -asm it assembles .spvasm back
// into a binary module.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gogpu/variants/spirv"
)

var (
	assemble = flag.Bool("asm", false, "assemble .spvasm input instead of disassembling")
	output   = flag.String("o", "", "output file (default: stdout)")
	validate = flag.Bool("validate", false, "validate the module")
	strip    = flag.Bool("strip", false, "strip debug instructions")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Usage: spvdis [-asm] [-validate] [-strip] [-o out] <file.spv|file.spvasm>")
		return
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := run(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(data []byte) error {
	var tools spirv.Tools

	var words []uint32
	var err error
	if *assemble {
		words, err = tools.Assemble(string(data))
	} else {
		words, err = spirv.Words(data)
	}
	if err != nil {
		return err
	}

	if *validate {
		if err := tools.Validate(words); err != nil {
			return err
		}
	}
	if *strip {
		if words, err = tools.Optimize(words); err != nil {
			return err
		}
	}

	var out []byte
	if *assemble {
		out = spirv.Bytes(words)
	} else {
		text, err := tools.Disassemble(words)
		if err != nil {
			return err
		}
		out = []byte(text)
	}

	if *output != "" {
		return os.WriteFile(*output, out, 0644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chrissnell/glucosereport/pkg/config"
)

func main() {
	var (
		yamlFile    = flag.String("yaml", "", "Path to YAML configuration file")
		compareFile = flag.String("compare", "", "Second YAML file to compare against (default: built-in defaults)")
	)
	flag.Parse()

	if *yamlFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> [-compare <other.yaml>]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	cfg, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	other, otherName := config.Defaults(), "defaults"
	if *compareFile != "" {
		fmt.Printf("Loading YAML configuration: %s\n", *compareFile)
		other, err = config.NewYAMLProvider(*compareFile).LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
			os.Exit(1)
		}
		otherName = *compareFile
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")
	report(os.Stdout, config.Diff(cfg, other), *yamlFile, otherName)

	fmt.Println("\nTest completed!")
}

func report(w io.Writer, diffs []config.FieldDiff, nameA, nameB string) {
	bySection := make(map[string][]config.FieldDiff)
	for _, d := range diffs {
		bySection[d.Section] = append(bySection[d.Section], d)
	}

	for _, section := range config.Sections() {
		ds := bySection[section]
		if len(ds) == 0 {
			fmt.Fprintf(w, "✓ %s matches\n", section)
			continue
		}
		fmt.Fprintf(w, "✗ %s differs\n", section)
		for _, d := range ds {
			fmt.Fprintf(w, "  %s: %s='%s', %s='%s'\n", d.Field, nameA, d.A, nameB, d.B)
		}
	}
}

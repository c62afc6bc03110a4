package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkdex/inkdex/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "inkdex",
	Short: "Handwritten note ingestion and organization",
	Long: `Inkdex turns handwritten notes into organized documents. It runs OCR over
scanned pages and tablet .note files, detects spatial and semantic structure
in the recognized text, and exports outlines, mind maps, timelines and
flowcharts ranked by confidence.`,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("inkdex %s\n", version.String()))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

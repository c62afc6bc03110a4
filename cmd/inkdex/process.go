package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/inkdex/inkdex/internal/config"
	"github.com/inkdex/inkdex/internal/domain"
	logpkg "github.com/inkdex/inkdex/internal/logger"
	"github.com/inkdex/inkdex/internal/notefile"
	"github.com/inkdex/inkdex/internal/ocr"
	"github.com/inkdex/inkdex/internal/pipeline"
	"github.com/inkdex/inkdex/internal/pipeline/structure"
)

var (
	processQuality string
	processOutDir  string
)

var processCmd = &cobra.Command{
	Use:   "process <file-or-directory>",
	Short: "Run the pipeline over local files and write exports",
	Long: `Process runs OCR and the organization pipeline over a note file (or every
supported file in a directory) without a server or database. For each input it
writes <name>.md with the top-ranked structure and <name>.json with the full
analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args[0])
	},
}

func init() {
	processCmd.Flags().StringVarP(&processQuality, "quality", "q", "", "OCR quality mode (fast, balanced, premium)")
	processCmd.Flags().StringVarP(&processOutDir, "out", "o", "", "Output directory (default: next to each input)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, path string) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if processQuality == "" {
		processQuality = cfg.OCR.DefaultQuality
	}
	quality, err := ocr.ParseQuality(processQuality)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	budget := buildBudget(ctx, cfg, nil, logger)
	router, err := buildRouter(cfg, budget, logger)
	if err != nil {
		return err
	}
	pipe, err := pipeline.New(cfg.Pipeline)
	if err != nil {
		return err
	}

	files, err := collectInputs(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported note files at %s", path)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, file := range files {
		note, analysis, err := processOne(ctx, router, pipe, file, quality)
		if err != nil {
			formatError(out, filepath.Base(file), err)
			failed++
			continue
		}
		if err := writeExports(file, analysis); err != nil {
			formatError(out, filepath.Base(file), err)
			failed++
			continue
		}
		formatFileSummary(out, filepath.Base(file), note, analysis)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".note":
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

func processOne(
	ctx context.Context, router *ocr.Router, pipe *pipeline.Pipeline,
	file string, quality ocr.Quality,
) (domain.Note, domain.Analysis, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return domain.Note{}, domain.Analysis{}, err
	}
	pages, err := notefile.Pages(data)
	if err != nil {
		return domain.Note{}, domain.Analysis{}, err
	}

	note := domain.Note{
		ID:         uuid.NewString(),
		SourceFile: filepath.Base(file),
		PageCount:  len(pages),
		CreatedAt:  time.Now().UTC(),
	}
	for i, page := range pages {
		res, err := router.Recognize(ctx, ocr.Input{Image: page, PageIndex: i}, quality)
		if err != nil {
			return domain.Note{}, domain.Analysis{}, fmt.Errorf("page %d: %w", i+1, err)
		}
		elements, err := domain.ElementsFromOCR(res, i, uuid.NewString)
		if err != nil {
			return domain.Note{}, domain.Analysis{}, err
		}
		note.Elements = append(note.Elements, elements...)
		note.Cost += res.Cost
		if note.Provider == "" {
			note.Provider = res.Provider
		} else if note.Provider != res.Provider {
			note.Provider = "mixed"
		}
	}

	analysis, err := pipe.Organize(ctx, note.ID, note.Elements)
	if err != nil {
		return domain.Note{}, domain.Analysis{}, err
	}
	return note, analysis, nil
}

func writeExports(file string, analysis domain.Analysis) error {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	dir := processOutDir
	if dir == "" {
		dir = filepath.Dir(file)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if len(analysis.Structures) > 0 {
		md := structure.ExportMarkdown(analysis.Structures[0])
		if err := os.WriteFile(filepath.Join(dir, base+".md"), []byte(md), 0o644); err != nil {
			return err
		}
	}

	raw, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, base+".json"), raw, 0o644)
}

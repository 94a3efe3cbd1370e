// cmd/screener/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resume-screener/internal/common/cache"
	"resume-screener/internal/common/config"
	"resume-screener/internal/common/logger"
	"resume-screener/internal/embedding"
	"resume-screener/internal/models"
	"resume-screener/internal/screening"
	"resume-screener/internal/screening/semantic"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default: configs/config.yaml)")
		jobFile    = flag.String("job", "", "path to the job description text file")
		resumeDir  = flag.String("resumes", "", "directory of resume .txt files to rank")
		resumeFile = flag.String("resume", "", "single resume text file (overrides -resumes)")
		keywords   = flag.Bool("keywords", false, "only extract keyword categories from -resume or -job")
	)
	flag.Parse()

	if err := run(*configPath, *jobFile, *resumeDir, *resumeFile, *keywords); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, jobFile, resumeDir, resumeFile string, keywordsOnly bool) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("screener starting", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics, log)
	}

	var opts []screening.Option
	if cfg.Cache.Enabled {
		resultCache, cacheErr := cache.NewResultCache(cfg.Cache)
		if cacheErr != nil {
			return cacheErr
		}
		defer resultCache.Close()
		if pingErr := resultCache.Ping(ctx); pingErr != nil {
			log.WithError(pingErr).Warn("result cache unreachable, continuing without it", nil)
		} else {
			opts = append(opts, screening.WithResultCache(resultCache))
		}
	}

	provider := semantic.Provider(func() (semantic.Embedder, error) {
		return embedding.New(cfg.Embedder)
	})

	engine, err := screening.NewEngine(cfg, provider, log, opts...)
	if err != nil {
		return err
	}

	if keywordsOnly {
		target := resumeFile
		if target == "" {
			target = jobFile
		}
		if target == "" {
			return fmt.Errorf("-keywords requires -resume or -job")
		}
		text, err := os.ReadFile(target)
		if err != nil {
			return err
		}
		return emit(engine.ExtractKeywords(string(text)))
	}

	if jobFile == "" {
		return fmt.Errorf("-job is required")
	}
	jobText, err := os.ReadFile(jobFile)
	if err != nil {
		return err
	}

	if resumeFile != "" {
		text, err := os.ReadFile(resumeFile)
		if err != nil {
			return err
		}
		result, err := engine.CompareOne(ctx, string(jobText), string(text))
		if err != nil {
			return err
		}
		return emit(result)
	}

	if resumeDir == "" {
		return fmt.Errorf("one of -resume or -resumes is required")
	}
	resumes, err := loadResumes(resumeDir)
	if err != nil {
		return err
	}

	summary, items, err := engine.CompareBatch(ctx, string(jobText), resumes)
	if err != nil {
		return err
	}
	return emit(map[string]interface{}{
		"summary": summary,
		"items":   items,
	})
}

// loadResumes reads every .txt file in the directory, sorted by name so
// submission order is reproducible.
func loadResumes(dir string) ([]models.ResumeInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	resumes := make([]models.ResumeInput, 0, len(names))
	for _, name := range names {
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, models.ResumeInput{
			SourceID: strings.TrimSuffix(name, ".txt"),
			Text:     string(text),
		})
	}
	return resumes, nil
}

func serveMetrics(cfg config.MetricsConfig, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())
	log.Info("metrics endpoint listening", map[string]interface{}{
		"address": cfg.Address,
		"path":    cfg.Path,
	})
	if err := http.ListenAndServe(cfg.Address, mux); err != nil {
		log.WithError(err).Warn("metrics endpoint stopped", nil)
	}
}

func emit(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package analysis runs rules and measurements over a repository. Files are
// parsed and registered with one metrics session first, so that metrics
// looking across files see the whole project, then every processor visits
// each tree.
package analysis

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"codemetrics/internal/ast"
	"codemetrics/internal/config"
	"codemetrics/internal/metrics"
	"codemetrics/internal/parse"
	"codemetrics/internal/report"
	"codemetrics/internal/rule"
	"codemetrics/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analyzer orchestrates parsing and evaluation for a repository using a
// bounded number of workers.
type Analyzer struct {
	config  *config.Config
	rules   []rule.Rule
	measure bool
	logger  *zap.Logger
}

func NewAnalyzer(cfg *config.Config, rules []rule.Rule, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		config: cfg,
		rules:  rules,
		logger: logger,
	}
}

// SetMeasure turns on the recording of every metric value in reports.
func (a *Analyzer) SetMeasure(measure bool) {
	a.measure = measure
}

func (a *Analyzer) numThreads() int {
	if a.config == nil || a.config.App.NumFileThreads <= 0 {
		return config.DefaultNumFileThreads
	}
	return a.config.App.NumFileThreads
}

func (a *Analyzer) printParseTree() bool {
	return a.config != nil && a.config.App.PrintParseTree
}

// AnalyzeRepository walks repo.Path and analyses every file with a supported
// language.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, repo *config.Repository) (*report.Report, error) {
	if repo.Disabled {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryDisabled, repo.Name)
	}
	if info, err := os.Stat(repo.Path); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, repo.Path)
	}

	a.logger.Info("Starting analysis for repository",
		zap.String("repo_name", repo.Name),
		zap.String("path", repo.Path),
		zap.Int("rule_count", len(a.rules)))

	sources, err := a.collectSources(ctx, repo)
	if err != nil {
		return nil, err
	}

	gitInfo, err := util.GetGitInfo(ctx, repo.Path)
	if err != nil {
		a.logger.Warn("Failed to get git info", zap.String("repo_name", repo.Name), zap.Error(err))
		gitInfo = nil
	}
	return a.run(ctx, repo, sources, gitInfo, parse.ReadGoModule(repo.Path))
}

// AnalyzeSources analyses in-memory files as if they were the whole
// repository named repo.Name.
func (a *Analyzer) AnalyzeSources(ctx context.Context, repo *config.Repository, sources []Source) (*report.Report, error) {
	return a.run(ctx, repo, sources, nil, "")
}

// collectSources reads every candidate file below repo.Path. Unreadable files
// are logged and left out.
func (a *Analyzer) collectSources(ctx context.Context, repo *config.Repository) ([]Source, error) {
	var sources []Source
	ignored := util.LoadGitignore(repo.Path)
	err := filepath.WalkDir(repo.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			a.logger.Error("Error accessing file", zap.String("path", path), zap.Error(err))
			return nil // Continue processing other files
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		relPath := util.ToRelativePath(repo.Path, path)
		if d.IsDir() {
			if path != repo.Path && (util.ShouldSkipDirectory(path) || ignored.Matches(relPath+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if parse.DetectLanguage(path) == parse.Unknown || util.ShouldSkipFile(path, repo) || ignored.Matches(relPath) {
			a.logger.Debug("Skipping file", zap.String("path", relPath))
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			a.logger.Error("Failed to read file", zap.String("path", path), zap.Error(err))
			return nil
		}
		sources = append(sources, Source{RelativePath: relPath, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory tree: %w", err)
	}
	return sources, nil
}

type parsedFile struct {
	fileCtx *FileContext
	err     error
}

func (a *Analyzer) run(ctx context.Context, repo *config.Repository, sources []Source, gitInfo *util.GitInfo, goModule string) (*report.Report, error) {
	started := time.Now()
	rep := report.New(repo.Name)
	if gitInfo != nil && gitInfo.IsGitRepo {
		rep.Commit = gitInfo.HeadCommitSHA
		rep.Branch = gitInfo.Branch
	}

	session := metrics.NewSession(a.logger)
	rep.SessionID = session.ID()

	processors := []FileProcessor{NewRuleProcessor(a.rules, rep, a.logger)}
	if a.measure {
		processors = append(processors, NewMeasureProcessor(rep, a.logger))
	}

	// Phase 1: parse in parallel and register every tree
	parsed, err := a.parseSources(ctx, sources, goModule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse files for repository %s: %w", repo.Name, err)
	}
	var files []*FileContext
	for i, p := range parsed {
		if p.err != nil {
			rep.AddError(sources[i].RelativePath, p.err)
			continue
		}
		p.fileCtx.Ephemeral = gitInfo != nil && util.IsFileModified(gitInfo, p.fileCtx.RelativePath)
		session.Register(p.fileCtx.Tree)
		files = append(files, p.fileCtx)
		rep.AddFile(report.FileResult{
			Path:       p.fileCtx.RelativePath,
			Language:   p.fileCtx.Tree.Language(),
			SHA:        p.fileCtx.FileSHA,
			Ephemeral:  p.fileCtx.Ephemeral,
			Classes:    len(ast.Classes(p.fileCtx.Tree)),
			Operations: len(ast.Operations(p.fileCtx.Tree)),
		})
	}
	a.logger.Info("Completed file parsing",
		zap.String("repo_name", repo.Name),
		zap.Int("files_parsed", len(files)),
		zap.Int("files_failed", len(sources)-len(files)))

	// Phase 2: evaluate every tree in parallel
	if err := a.processFiles(ctx, session, processors, files); err != nil {
		return nil, fmt.Errorf("failed to process files for repository %s: %w", repo.Name, err)
	}
	for _, p := range processors {
		if err := p.PostProcess(ctx, repo); err != nil {
			return nil, fmt.Errorf("processor %s post-processing failed: %w", p.Name(), err)
		}
	}

	rep.Finish(started)
	a.logger.Info("Completed analysis for repository",
		zap.String("repo_name", repo.Name),
		zap.Int("violations", len(rep.Violations)),
		zap.String("duration", rep.Duration))
	return rep, nil
}

// parseSources translates sources with one parser per worker. Per-file
// failures are returned in the slice; only cancellation fails the phase.
func (a *Analyzer) parseSources(ctx context.Context, sources []Source, goModule string) ([]parsedFile, error) {
	results := make([]parsedFile, len(sources))
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < a.numThreads(); w++ {
		workerID := w
		g.Go(func() error {
			parser := parse.NewFileParser(a.logger, a.printParseTree())
			defer parser.Close()
			parser.SetGoModule(goModule)

			for i := range jobs {
				src := sources[i]
				a.logger.Debug("Worker parsing file",
					zap.Int("worker_id", workerID),
					zap.String("file", src.RelativePath))
				tree, err := parser.ParseContent(gctx, src.RelativePath, src.Content)
				if err != nil {
					results[i] = parsedFile{err: err}
					continue
				}
				results[i] = parsedFile{fileCtx: &FileContext{
					RelativePath: src.RelativePath,
					FileSHA:      util.CalculateFileSHA256(src.Content),
					Tree:         tree,
				}}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for i := range sources {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Analyzer) processFiles(ctx context.Context, session *metrics.Session, processors []FileProcessor, files []*FileContext) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.numThreads())
	for _, fileCtx := range files {
		fileCtx := fileCtx
		g.Go(func() error {
			defer session.Release(fileCtx.Tree)
			for _, p := range processors {
				if err := p.ProcessFile(gctx, session, fileCtx); err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					a.logger.Error("Processor failed to process file",
						zap.String("processor", p.Name()),
						zap.String("path", fileCtx.RelativePath),
						zap.Error(err))
				}
			}
			return nil
		})
	}
	return g.Wait()
}

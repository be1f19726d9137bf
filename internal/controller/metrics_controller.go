package controller

import (
	"errors"
	"net/http"
	"strings"

	"codemetrics/internal/analysis"
	"codemetrics/internal/config"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/registry"
	"codemetrics/internal/rule"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MetricsController handles HTTP requests for analyses and metric listings
type MetricsController struct {
	config *config.Config
	logger *zap.Logger
}

func NewMetricsController(cfg *config.Config, logger *zap.Logger) *MetricsController {
	return &MetricsController{
		config: cfg,
		logger: logger,
	}
}

// -----------------------------------------------------------------------------
// Request/Response Types
// -----------------------------------------------------------------------------

// AnalyzeRequest analyses a configured repository. Rules, when given,
// replace the configured rules for this request.
type AnalyzeRequest struct {
	RepoName string              `json:"repo_name" binding:"required"`
	Rules    []config.RuleConfig `json:"rules"`
	Measure  bool                `json:"measure"`
}

type SourceFile struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// MeasureRequest computes every metric on files sent inline
type MeasureRequest struct {
	Files []SourceFile        `json:"files" binding:"required,min=1,dive"`
	Rules []config.RuleConfig `json:"rules"`
}

type MetricInfo struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	LowerBetter bool     `json:"lower_better"`
	Options     []string `json:"options,omitempty"`
}

type ListMetricsResponse struct {
	Language string       `json:"language"`
	Metrics  []MetricInfo `json:"metrics"`
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func (mc *MetricsController) badRequest(c *gin.Context, msg string, err error) {
	mc.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

func (mc *MetricsController) rules(override []config.RuleConfig) ([]rule.Rule, error) {
	if len(override) > 0 {
		return analysis.RulesFromConfig(override)
	}
	return analysis.RulesFromConfig(mc.config.Rules)
}

func (mc *MetricsController) Analyze(c *gin.Context) {
	var request AnalyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		mc.badRequest(c, "Invalid request payload", err)
		return
	}

	repo, err := mc.config.GetRepository(request.RepoName)
	if err != nil {
		mc.logger.Error("Repository not found in configuration",
			zap.String("repo_name", request.RepoName),
			zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Repository not found",
			"details": err.Error(),
		})
		return
	}

	rules, err := mc.rules(request.Rules)
	if err != nil {
		mc.badRequest(c, "Invalid rule configuration", err)
		return
	}

	mc.logger.Info("Analyzing repository",
		zap.String("repo_name", repo.Name),
		zap.Bool("measure", request.Measure))

	analyzer := analysis.NewAnalyzer(mc.config, rules, mc.logger)
	analyzer.SetMeasure(request.Measure)
	rep, err := analyzer.AnalyzeRepository(c.Request.Context(), repo)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrRepositoryDisabled) || errors.Is(err, analysis.ErrNotADirectory) {
			status = http.StatusUnprocessableEntity
		}
		mc.logger.Error("Failed to analyze repository",
			zap.String("repo_name", repo.Name),
			zap.Error(err))
		c.JSON(status, gin.H{
			"error":   "Failed to analyze repository",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, rep)
}

func (mc *MetricsController) Measure(c *gin.Context) {
	var request MeasureRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		mc.badRequest(c, "Invalid request payload", err)
		return
	}

	// no rules unless asked for
	var rules []rule.Rule
	if len(request.Rules) > 0 {
		var err error
		if rules, err = analysis.RulesFromConfig(request.Rules); err != nil {
			mc.badRequest(c, "Invalid rule configuration", err)
			return
		}
	}

	sources := make([]analysis.Source, len(request.Files))
	for i, f := range request.Files {
		sources[i] = analysis.Source{RelativePath: f.Path, Content: []byte(f.Content)}
	}

	analyzer := analysis.NewAnalyzer(mc.config, rules, mc.logger)
	analyzer.SetMeasure(true)
	rep, err := analyzer.AnalyzeSources(c.Request.Context(), &config.Repository{Name: "inline"}, sources)
	if err != nil {
		mc.logger.Error("Failed to measure files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to measure files",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, rep)
}

func (mc *MetricsController) ListMetrics(c *gin.Context) {
	language := strings.ToLower(c.DefaultQuery("language", "java"))
	keys := registry.ForLanguage(language)
	if keys == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Unsupported language",
			"languages": registry.Languages,
		})
		return
	}

	response := ListMetricsResponse{Language: language}
	for _, k := range append(keys.ClassKeys(), keys.OperationKeys()...) {
		response.Metrics = append(response.Metrics, metricInfo(k))
	}
	c.JSON(http.StatusOK, response)
}

func (mc *MetricsController) ListRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": rule.BuiltinNames()})
}

func metricInfo(k *metrics.Key) MetricInfo {
	meta := k.Metadata()
	info := MetricInfo{
		Name:        k.Name(),
		Category:    string(k.Category()),
		FullName:    meta.FullName,
		Description: meta.Description,
		Unit:        meta.Unit,
		LowerBetter: meta.LowerBetter,
	}
	for _, o := range k.DeclaredOptions() {
		info.Options = append(info.Options, string(o))
	}
	return info
}

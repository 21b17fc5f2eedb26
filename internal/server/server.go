// Package server exposes the valuation engine and saved analyses over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/iwvelando/rental-valuation/internal/analysis"
	"github.com/iwvelando/rental-valuation/internal/cache"
	"github.com/iwvelando/rental-valuation/internal/config"
	"github.com/iwvelando/rental-valuation/internal/storage"
	"github.com/iwvelando/rental-valuation/internal/valuation"
	"github.com/iwvelando/rental-valuation/pkg/constants"
	"go.uber.org/zap"
)

// Options configures NewHandler. Store and Cache are optional: without a
// store the saved-analysis routes are not registered, and without a cache
// every evaluation is computed.
type Options struct {
	Logger      *zap.Logger
	Store       storage.Store
	Cache       cache.Cache
	Policy      config.PolicyConfig
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger  *zap.Logger
	store   storage.Store
	cache   cache.Cache
	policy  config.PolicyConfig
	version string
}

// NewHandler constructs the gin engine serving the valuation API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:  logger,
		store:   opts.Store,
		cache:   opts.Cache,
		policy:  opts.Policy,
		version: version,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(limitBody(maxBodySize))

	api := router.Group("/api")
	{
		api.GET("/version", h.handleVersion)
		api.GET("/policy", h.handlePolicy)
		api.POST("/evaluate", h.handleEvaluate)

		if h.store != nil {
			api.GET("/analyses", h.handleListAnalyses)
			api.POST("/analyses", h.handleSaveAnalysis)
			api.GET("/analyses/:id", h.handleGetAnalysis)
			api.DELETE("/analyses/:id", h.handleDeleteAnalysis)
		}
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("handled request",
			zap.String("op", "server.request"),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

type evaluateRequest struct {
	Input  valuation.Form       `json:"input"`
	Policy *config.PolicyConfig `json:"policy,omitempty"`
}

type evaluateResponse struct {
	Input    valuation.InvestmentInput `json:"input"`
	Metrics  *valuation.Metrics        `json:"metrics"`
	Warnings []string                  `json:"warnings"`
}

type saveRequest struct {
	Name   string         `json:"name"`
	Input  valuation.Form `json:"input"`
	Preset string         `json:"preset,omitempty"`
}

type analysisResponse struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Preset    string                    `json:"preset,omitempty"`
	CreatedAt time.Time                 `json:"createdAt"`
	Input     valuation.InvestmentInput `json:"input"`
	Metrics   *valuation.Metrics        `json:"metrics"`
	Notes     []string                  `json:"notes,omitempty"`
}

type policyResponse struct {
	Preset  string           `json:"preset"`
	Policy  valuation.Policy `json:"policy"`
	Presets []string         `json:"presets"`
}

func (h *handler) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

func (h *handler) handlePolicy(c *gin.Context) {
	const op = "server.handlePolicy"

	policy, err := config.ResolvePolicy(h.policy)
	if err != nil {
		h.respondErrorWithOp(c, http.StatusInternalServerError, err.Error(), op)
		return
	}

	preset := h.policy.Preset
	if preset == "" {
		preset = valuation.DefaultPreset
	}
	c.JSON(http.StatusOK, policyResponse{
		Preset:  preset,
		Policy:  policy,
		Presets: valuation.PresetNames(),
	})
}

func (h *handler) handleEvaluate(c *gin.Context) {
	const op = "server.handleEvaluate"

	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err, op)
		return
	}

	settings := h.policy
	if req.Policy != nil {
		settings = *req.Policy
	}
	policy, err := config.ResolvePolicy(settings)
	if err != nil {
		h.respondErrorWithOp(c, http.StatusBadRequest, err.Error(), op)
		return
	}

	var key string
	if h.cache != nil {
		key, err = cache.Key(op, req.Input, policy)
		if err != nil {
			h.logger.Warn("unable to build cache key", zap.String("op", op), zap.Error(err))
		} else if cached, ok := h.cache.Get(c.Request.Context(), key); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		}
	}

	in := valuation.ParseForm(req.Input)
	warnings := req.Input.Warnings("input")
	if warnings == nil {
		warnings = []string{}
	}
	body, err := json.Marshal(evaluateResponse{
		Input:    in,
		Metrics:  valuation.Evaluate(in, policy),
		Warnings: warnings,
	})
	if err != nil {
		h.respondErrorWithOp(c, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err), op)
		return
	}

	if h.cache != nil && key != "" {
		if err := h.cache.Set(c.Request.Context(), key, string(body)); err != nil {
			h.logger.Warn("unable to cache evaluation", zap.String("op", op), zap.Error(err))
		}
		c.Header("X-Cache", "MISS")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *handler) handleSaveAnalysis(c *gin.Context) {
	const op = "server.handleSaveAnalysis"

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err, op)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.respondErrorWithOp(c, http.StatusBadRequest, "name is required", op)
		return
	}

	policy, err := config.ResolvePolicy(config.PolicyConfig{Preset: req.Preset})
	if err != nil {
		h.respondErrorWithOp(c, http.StatusBadRequest, err.Error(), op)
		return
	}

	saved := &storage.SavedAnalysis{
		Name:   req.Name,
		Preset: req.Preset,
		Input:  valuation.ParseForm(req.Input),
	}
	if err := h.store.Save(c.Request.Context(), saved); err != nil {
		h.respondErrorWithOp(c, http.StatusInternalServerError, err.Error(), op)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(*saved, policy))
}

func (h *handler) handleListAnalyses(c *gin.Context) {
	const op = "server.handleListAnalyses"

	saved, err := h.store.List(c.Request.Context())
	if err != nil {
		h.respondErrorWithOp(c, http.StatusInternalServerError, err.Error(), op)
		return
	}

	results := make([]analysisResponse, 0, len(saved))
	for _, a := range saved {
		results = append(results, h.toResponse(a, h.savedPolicy(a, op)))
	}
	c.JSON(http.StatusOK, results)
}

func (h *handler) handleGetAnalysis(c *gin.Context) {
	const op = "server.handleGetAnalysis"

	saved, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(*saved, h.savedPolicy(*saved, op)))
}

func (h *handler) handleDeleteAnalysis(c *gin.Context) {
	const op = "server.handleDeleteAnalysis"

	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondStoreError(c, err, op)
		return
	}
	c.Status(http.StatusNoContent)
}

// savedPolicy resolves the preset a record was saved with, falling back to
// the default preset if that name is no longer known.
func (h *handler) savedPolicy(a storage.SavedAnalysis, op string) valuation.Policy {
	policy, err := config.ResolvePolicy(config.PolicyConfig{Preset: a.Preset})
	if err != nil {
		h.logger.Warn(fmt.Sprintf("saved analysis %s uses an unavailable preset", a.ID),
			zap.String("op", op),
			zap.Error(err),
		)
		return valuation.DefaultPolicy()
	}
	return policy
}

func (h *handler) toResponse(a storage.SavedAnalysis, policy valuation.Policy) analysisResponse {
	result := analysis.EvaluateInput(h.logger, a.Name, a.Input, policy)

	return analysisResponse{
		ID:        a.ID,
		Name:      a.Name,
		Preset:    a.Preset,
		CreatedAt: a.CreatedAt,
		Input:     result.Input,
		Metrics:   result.Metrics,
		Notes:     result.Notes,
	}
}

func (h *handler) respondBindError(c *gin.Context, err error, op string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.respondErrorWithOp(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), op)
		return
	}
	h.respondErrorWithOp(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), op)
}

func (h *handler) respondStoreError(c *gin.Context, err error, op string) {
	if errors.Is(err, storage.ErrNotFound) {
		h.respondErrorWithOp(c, http.StatusNotFound, err.Error(), op)
		return
	}
	h.respondErrorWithOp(c, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(c *gin.Context, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

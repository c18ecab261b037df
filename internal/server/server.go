// Package server exposes the pricing functions and risk runs over HTTP.
//
//	GET  /health
//	POST /v1/price   one instrument  -> greeks
//	POST /v1/greeks  many instruments -> greeks per instrument
//	POST /v1/risk    positions       -> risk rows + rollup
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-greeks/internal/config"
	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/pricing"
	"github.com/contactkeval/option-greeks/internal/report"
	"github.com/contactkeval/option-greeks/internal/risk"
)

// maxBatch bounds /v1/greeks and /v1/risk request sizes.
const maxBatch = 10000

// errNonFinite rejects inputs that pass validation but still produce NaN or
// ±Inf, which JSON cannot carry.
var errNonFinite = errors.New("inputs produce a non-finite result")

// Server holds request defaults taken from the run configuration.
type Server struct {
	cfg config.Config
	now func() time.Time
}

func New(cfg config.Config) *Server {
	return &Server{cfg: cfg, now: time.Now}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	v1 := r.Group("/v1")
	{
		v1.POST("/price", s.price)
		v1.POST("/greeks", s.greeks)
		v1.POST("/risk", s.runRisk)
	}
	return r
}

// ListenAndServe blocks serving on the configured address.
func (s *Server) ListenAndServe() error {
	logger.Infof("starting REST server on %s", s.cfg.ListenAddr)
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func fail(c *gin.Context, status int, err error) {
	logger.Debugf("%s: %v", c.Request.URL.Path, err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) price(c *gin.Context) {
	var in pricing.Instrument
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := in.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	g := in.Greeks()
	if !g.Finite() {
		fail(c, http.StatusUnprocessableEntity, fmt.Errorf("%+v: %w", in, errNonFinite))
		return
	}
	c.JSON(http.StatusOK, g)
}

type greeksRequest struct {
	Instruments []pricing.Instrument `json:"instruments" binding:"required"`
}

type greeksResponse struct {
	Greeks []pricing.Greeks `json:"greeks"`
}

func (s *Server) greeks(c *gin.Context) {
	var req greeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Instruments) > maxBatch {
		fail(c, http.StatusRequestEntityTooLarge, fmt.Errorf("%d instruments exceeds %d", len(req.Instruments), maxBatch))
		return
	}

	out := make([]pricing.Greeks, len(req.Instruments))
	for i, in := range req.Instruments {
		if err := in.Validate(); err != nil {
			fail(c, http.StatusBadRequest, fmt.Errorf("instrument %d: %w", i, err))
			return
		}
		out[i] = in.Greeks()
		if !out[i].Finite() {
			fail(c, http.StatusUnprocessableEntity, fmt.Errorf("instrument %d: %w", i, errNonFinite))
			return
		}
	}
	c.JSON(http.StatusOK, greeksResponse{Greeks: out})
}

type riskRequest struct {
	AsOf      *time.Time      `json:"as_of"`
	Rate      *float64        `json:"risk_free_rate"`
	Shock     *float64        `json:"shock"`
	Rollup    string          `json:"rollup"` // e.g. "underlying,expiry"; empty means all levels
	Positions []risk.Position `json:"positions" binding:"required,dive"`
}

func (s *Server) runRisk(c *gin.Context) {
	var req riskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Positions) > maxBatch {
		fail(c, http.StatusRequestEntityTooLarge, fmt.Errorf("%d positions exceeds %d", len(req.Positions), maxBatch))
		return
	}

	book := risk.Book{Rate: s.cfg.RiskFreeRate, Shock: s.cfg.Shock, Workers: s.cfg.Workers, AsOf: s.now()}
	if req.AsOf != nil {
		book.AsOf = *req.AsOf
	}
	if req.Rate != nil {
		book.Rate = *req.Rate
	}
	if req.Shock != nil {
		if *req.Shock < 0 || *req.Shock >= 1 {
			fail(c, http.StatusBadRequest, fmt.Errorf("shock %v must be in [0, 1)", *req.Shock))
			return
		}
		book.Shock = *req.Shock
	}
	levels := risk.DefaultLevels
	if req.Rollup != "" {
		var err error
		if levels, err = risk.ParseLevels(req.Rollup); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
	}

	rows, err := book.Run(c.Request.Context(), req.Positions)
	res := &report.Result{AsOf: book.AsOf, Rate: book.Rate, Shock: book.Shock, Rows: rows}
	if err != nil {
		var perr *risk.PositionError
		if !errors.As(err, &perr) {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		res.Skipped = risk.Rejected(err)
	}
	res.Rollup = risk.Rollup(rows, levels...)
	c.JSON(http.StatusOK, res)
}

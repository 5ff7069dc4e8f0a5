/*
Copyright © 2026 the CH4MOD authors.
This file is part of CH4MOD.

CH4MOD is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

CH4MOD is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with CH4MOD.  If not, see <http://www.gnu.org/licenses/>.
*/

package ch4modutil

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/groupcache/lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ch4mod"
	"github.com/spatialmodel/ch4mod/internal/hash"
)

// Server serves simulations over HTTP.
type Server struct {
	Log *logrus.Logger

	params ch4mod.Params
	seed   int64

	registry *prometheus.Registry
	metrics  *ch4mod.Collector

	mu    sync.Mutex
	cache *lru.Cache // simulation records by request hash
}

// NewServer returns a server whose simulations default to params and
// seed. It keeps the results of up to cacheSize simulations in memory;
// if cacheSize < 1 nothing is cached. If log is nil, messages are
// written to standard error.
func NewServer(params ch4mod.Params, seed int64, cacheSize int, log *logrus.Logger) (*Server, error) {
	if log == nil {
		log = newLogger(os.Stderr)
	}
	s := &Server{
		Log:      log,
		params:   params,
		seed:     seed,
		registry: prometheus.NewRegistry(),
	}
	var err error
	if s.metrics, err = ch4mod.NewCollector(s.registry); err != nil {
		return nil, err
	}
	if cacheSize > 0 {
		s.cache = lru.New(cacheSize)
	}
	return s, nil
}

// Router returns the HTTP handler of the server.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.GET("/patterns", s.patterns)
	r.POST("/simulate", s.simulate)
	r.POST("/chart/:kind", s.chart)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.Log.WithFields(logrus.Fields{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start),
	}).Info("request")
}

// PatternInfo describes a water management pattern.
type PatternInfo struct {
	Number      int
	Name        string
	Description string
	Regimes     []string
}

func (s *Server) patterns(c *gin.Context) {
	o := make([]PatternInfo, len(ch4mod.Patterns))
	for i, p := range ch4mod.Patterns {
		o[i] = PatternInfo{
			Number:      int(p),
			Name:        p.String(),
			Description: p.Description(),
		}
		for _, r := range p.Regimes() {
			o[i].Regimes = append(o[i].Regimes, r.String())
		}
	}
	c.JSON(http.StatusOK, o)
}

// SimulateRequest is the body of a simulation request. Unset Params
// and Seed take the server defaults.
type SimulateRequest struct {
	StartDay       int `binding:"required"`
	EndDay         int `binding:"required"`
	WaterRegime    int `binding:"required"`
	SoilSand       float64
	OMN            float64
	OMS            float64
	GrainYield     float64
	AirTemperature []float64 `binding:"required"`

	// ExtendTemperature extends a short AirTemperature by repeating
	// its last value.
	ExtendTemperature bool

	Seed   *int64
	Params struct {
		Q10, InitialEh, EhBase, EhStd *float64
	}

	// OutputVariables are derived columns added to the response.
	OutputVariables map[string]string
}

// SimulateResponse holds the daily results of a simulation. Rows hold
// one value per column; undefined values are null.
type SimulateResponse struct {
	Columns []string
	Rows    [][]*float64
	Summary ch4mod.Summary
}

// scenario converts the request into a simulation.
func (s *Server) scenario(req *SimulateRequest) ch4mod.Scenario {
	sc := ch4mod.Scenario{
		Config: ch4mod.Config{
			StartDay:           req.StartDay,
			EndDay:             req.EndDay,
			Pattern:            ch4mod.Pattern(req.WaterRegime),
			Sand:               req.SoilSand,
			LessDecomposable:   req.OMS,
			EasilyDecomposable: req.OMN,
			GrainYield:         req.GrainYield,
		},
		Params: s.params,
		Seed:   s.seed,
	}
	sc.Config.AirTemperature = seasonTemperatures(req.AirTemperature, &sc.Config, req.ExtendTemperature)
	if req.Seed != nil {
		sc.Seed = *req.Seed
	}
	for _, o := range []struct {
		v   *float64
		dst *float64
	}{
		{req.Params.Q10, &sc.Params.Q10},
		{req.Params.InitialEh, &sc.Params.InitialEh},
		{req.Params.EhBase, &sc.Params.EhBase},
		{req.Params.EhStd, &sc.Params.EhStd},
	} {
		if o.v != nil {
			*o.dst = *o.v
		}
	}
	return sc
}

// run returns the records of sc, from the cache if possible.
func (s *Server) run(sc *ch4mod.Scenario) ([]ch4mod.Record, error) {
	key := hash.Key(sc.Config, sc.Params, sc.Seed)
	if s.cache != nil {
		s.mu.Lock()
		r, ok := s.cache.Get(key)
		s.mu.Unlock()
		if ok {
			return r.([]ch4mod.Record), nil
		}
	}
	start := time.Now()
	records, err := ch4mod.Simulate(&sc.Config, sc.Params, rand.New(rand.NewSource(sc.Seed)))
	s.metrics.Observe(records, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.mu.Lock()
		s.cache.Add(key, records)
		s.mu.Unlock()
	}
	return records, nil
}

// status returns the HTTP status for a simulation error.
func status(err error) int {
	for _, e := range []error{ch4mod.ErrInvalidPattern, ch4mod.ErrInvalidDuration,
		ch4mod.ErrInsufficientInput, ch4mod.ErrInvalidInput} {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := ch4mod.NewOutputter("", req.OutputVariables, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sc := s.scenario(&req)
	records, err := s.run(&sc)
	if err != nil {
		c.JSON(status(err), gin.H{"error": err.Error()})
		return
	}
	results, err := o.Results(records)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp := SimulateResponse{
		Columns: o.Columns(),
		Rows:    make([][]*float64, len(records)),
		Summary: ch4mod.Summarize(records),
	}
	for i := range records {
		row := make([]*float64, len(resp.Columns))
		for j, col := range resp.Columns {
			if v := results[col][i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				row[j] = &v
			}
		}
		resp.Rows[i] = row
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) chart(c *gin.Context) {
	kinds, err := checkCharts([]string{c.Param("kind")})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sc := s.scenario(&req)
	records, err := s.run(&sc)
	if err != nil {
		c.JSON(status(err), gin.H{"error": err.Error()})
		return
	}
	var b bytes.Buffer
	if err := ch4mod.WriteChart(&b, records, kinds[0]); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b.Bytes())
}

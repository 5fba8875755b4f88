package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/kiesman99/pixeliter/internal/analysis"
	"github.com/kiesman99/pixeliter/internal/logger"
	"github.com/kiesman99/pixeliter/internal/rawio"
	"github.com/kiesman99/pixeliter/internal/scan"
	"github.com/kiesman99/pixeliter/pkg/pixel"
	"github.com/kiesman99/pixeliter/pkg/raster"
)

// DefaultMaxBody is the default request body limit in bytes
const DefaultMaxBody = 64 << 20

// Server implements the pixeliter HTTP API
type Server struct {
	startTime time.Time
	version   string
	maxBody   int64
	log       logger.ILogger
}

// NewServer creates a new server instance. A maxBody of zero or less means DefaultMaxBody.
func NewServer(version string, maxBody int64, log logger.ILogger) *Server {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	if log == nil {
		log = logger.NullLogger{}
	}
	return &Server{
		startTime: time.Now(),
		version:   version,
		maxBody:   maxBody,
		log:       log,
	}
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := HealthResponse{
		Status:    Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}
	s.writeJSON(w, http.StatusOK, response)
}

// PostStats computes per-band statistics of the raw samples in the request body
func (s *Server) PostStats(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	params, err := bindRasterParams(r.URL.Query())
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}
	img, err := s.readBody(w, r, params)
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}
	area, err := params.IterationArea()
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}

	res, err := analysis.Stats(r.Context(), img, analysis.Options{
		Area:    area,
		Bands:   params.Select,
		Workers: params.Workers,
	})
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}

	w.Header().Set("X-Request-ID", requestID)
	s.writeJSON(w, http.StatusOK, scan.NewReport(res))
}

// PostRescale applies v*scale+offset to the raw samples in the request body and
// returns the transformed samples of the iteration area
func (s *Server) PostRescale(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFor(r)

	params, err := bindRescaleParams(r.URL.Query())
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}
	src, err := s.readBody(w, r, &params.RasterParams)
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}
	area, err := params.IterationArea()
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}

	g := src.Grid()
	dst, err := raster.NewMosaic(src.Bounds(), src.SampleModel(), image.Pt(g.XOffset, g.YOffset))
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}
	n, err := analysis.Rescale(r.Context(), src, dst, area, params.Scale, params.Offset)
	if err != nil {
		s.handleError(w, err, requestID)
		return
	}

	layout, _ := params.Layout()
	var out bytes.Buffer
	if err := rawio.Write(&out, dst, area, layout.ByteOrder); err != nil {
		s.handleError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("X-Samples-Written", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Bytes()); err != nil {
		s.log.Errorf("Error writing response: %v", err)
	}
}

// readBody decodes the request body as described by params
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, params *RasterParams) (*raster.Mosaic, error) {
	layout, err := params.Layout()
	if err != nil {
		return nil, err
	}
	if layout.Size() > s.maxBody {
		return nil, &http.MaxBytesError{Limit: s.maxBody}
	}
	return rawio.Read(http.MaxBytesReader(w, r.Body, s.maxBody), layout)
}

// handleError maps err to a status code and error code. A deadline error is
// only logged: the timeout middleware writes the 504 itself.
func (s *Server) handleError(w http.ResponseWriter, err error, requestID string) {
	var pe *paramError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, CodeTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), requestID, map[string]interface{}{
				"max_body": tooLarge.Limit,
			})
	case errors.As(err, &pe):
		s.writeErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error(), requestID, map[string]interface{}{
			"parameter": pe.name,
		})
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.writeErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, err.Error(), requestID, nil)
	case errors.Is(err, pixel.ErrInvalidIterationArea):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, CodeInvalidArea, err.Error(), requestID, nil)
	case errors.Is(err, pixel.ErrInvalidArgument), errors.Is(err, pixel.ErrOutOfBounds):
		s.writeErrorResponse(w, http.StatusBadRequest, CodeInvalidArgument, err.Error(), requestID, nil)
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Infof("request %s timed out: %v", requestID, err)
	default:
		s.log.Errorf("request %s failed: %v", requestID, err)
		s.writeErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Internal server error", requestID, nil)
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID string, details map[string]interface{}) {
	response := ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: &requestID,
	}
	if details != nil {
		response.Details = &details
	}
	s.writeJSON(w, statusCode, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("Error encoding response: %v", err)
	}
}

// requestIDFor returns the id assigned by the RequestID middleware, or a fresh one
func requestIDFor(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}

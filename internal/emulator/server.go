package emulator

import (
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yourorg/bucket-upload/internal/metrics"
)

type server struct {
	store *Store
	log   *zap.Logger
}

// NewHandler routes path-style S3 requests to store.
func NewHandler(store *Store, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &server{store: store, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Put("/{bucket}", s.createBucket)
	r.Put("/{bucket}/*", s.putObject)
	r.Get("/{bucket}/*", s.getObject)
	r.Head("/{bucket}/*", s.getObject)
	r.NotFound(s.notImplemented)
	r.MethodNotAllowed(s.notImplemented)
	return r
}

func objectPath(r *http.Request) (bucket, key string) {
	bucket = chi.URLParam(r, "bucket")
	key = chi.URLParam(r, "*")
	if k, err := url.PathUnescape(key); err == nil {
		key = k
	}
	return bucket, key
}

func (s *server) createBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if err := s.store.CreateBucket(bucket); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "InternalError", err.Error())
		return
	}
	w.Header().Set("Location", "/"+bucket)
	w.WriteHeader(http.StatusOK)
}

func (s *server) putObject(w http.ResponseWriter, r *http.Request) {
	bucket, key := objectPath(r)
	if key == "" {
		s.createBucket(w, r)
		return
	}
	if strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked") ||
		strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
		s.writeError(w, r, http.StatusNotImplemented, "NotImplemented", "aws-chunked uploads are not supported")
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "IncompleteBody", err.Error())
		return
	}
	tag, err := s.store.Put(bucket, key, data)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	metrics.EmulatorObjectsStored.Inc()
	s.log.Debug("stored object", zap.String("bucket", bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	w.Header().Set("ETag", tag)
	w.WriteHeader(http.StatusOK)
}

func (s *server) getObject(w http.ResponseWriter, r *http.Request) {
	bucket, key := objectPath(r)
	obj, err := s.store.Get(bucket, key)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	h := w.Header()
	h.Set("ETag", obj.ETag)
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Length", strconv.Itoa(len(obj.Data)))
	h.Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(obj.Data)
	}
}

func (s *server) notImplemented(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusNotImplemented, "NotImplemented", r.Method+" "+r.URL.Path+" is not supported by the emulator")
}

func (s *server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoSuchBucket):
		s.writeError(w, r, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist")
	case errors.Is(err, ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
	default:
		s.writeError(w, r, http.StatusInternalServerError, "InternalError", err.Error())
	}
}

type errorBody struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	Resource  string   `xml:"Resource"`
	RequestID string   `xml:"RequestId"`
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	reqID := middleware.GetReqID(r.Context())
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("x-amz-request-id", reqID)
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, xml.Header)
	_ = xml.NewEncoder(w).Encode(errorBody{Code: code, Message: msg, Resource: r.URL.Path, RequestID: reqID})
}

// requestLogger logs method, path, status and duration for every request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

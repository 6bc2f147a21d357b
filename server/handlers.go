package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opd-ai/clipforge"
	"github.com/opd-ai/clipforge/catalog"
	"github.com/opd-ai/clipforge/limits"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/opd-ai/clipforge/storage"
	"github.com/sirupsen/logrus"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

// multipartOverhead allows for boundaries and the filter field on top of
// the file itself.
const multipartOverhead = 1 << 20

// UploadResponse is returned by POST /upload on success.
type UploadResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type upload struct {
	id           string
	originalName string
	originalExt  string
	mimeType     string
	size         int64
	incomingPath string
	filter       video.FilterKind
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	filterName := strings.TrimSpace(r.FormValue("filter"))
	if header.Filename == "" || filterName == "" {
		writeError(w, http.StatusBadRequest, "invalid file name or filter")
		return
	}

	filename := storage.SanitizeFilename(header.Filename)
	if filename == "" {
		filename = "upload"
	}
	ext := filepath.Ext(filename)

	up := upload{
		id:           uuid.NewString(),
		originalName: strings.TrimSuffix(filename, ext),
		originalExt:  strings.TrimPrefix(ext, "."),
		mimeType:     header.Header.Get("Content-Type"),
		filter:       video.ParseFilterKind(filterName),
	}
	if up.mimeType == "" {
		up.mimeType = mime.TypeByExtension(ext)
	}
	up.incomingPath = filepath.Join(s.layout.IncomingDir(), up.id+"_"+filename)

	up.size, err = saveUpload(file, up.incomingPath)
	if err != nil {
		os.Remove(up.incomingPath)
		s.fail(w, up.id, fmt.Errorf("save upload: %w", err))
		return
	}
	if err := limits.ValidateUploadSize(up.size, s.maxUpload); err != nil {
		os.Remove(up.incomingPath)
		status := http.StatusBadRequest
		if errors.Is(err, limits.ErrUploadTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "Server.handleUpload",
		"video_id": up.id,
		"name":     filename,
		"size":     up.size,
		"filter":   up.filter.String(),
	}).Info("Upload received")

	if err := s.ingest(r.Context(), up); err != nil {
		s.fail(w, up.id, err)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Message: "upload and processing completed",
		ID:      up.id,
	})
}

// ingest moves the upload into its final place, runs the job and records
// the result. On failure the original is moved to trash and the video
// directory removed.
func (s *Server) ingest(ctx context.Context, up upload) error {
	paths, err := s.layout.Create(up.id, up.originalExt, up.filter.String(), s.container)
	if err != nil {
		os.Remove(up.incomingPath)
		return err
	}
	if err := storage.MoveFile(up.incomingPath, paths.Original); err != nil {
		os.Remove(up.incomingPath)
		os.RemoveAll(paths.Dir)
		return fmt.Errorf("move upload: %w", err)
	}

	job := clipforge.Job{
		ID:            up.id,
		SourcePath:    paths.Original,
		Filter:        up.filter,
		VideoPath:     paths.Processed,
		ThumbnailPath: paths.Thumbnail,
		PreviewPath:   paths.Preview,
	}
	result, err := s.pool.Submit(ctx, job)
	if err == nil && !result.Video.OK {
		err = result.Video.Err
	}
	if err != nil {
		s.discard(up.id, paths)
		return fmt.Errorf("process video: %w", err)
	}

	record, err := s.newRecord(up, paths, result)
	if err == nil {
		err = s.catalog.Add(record)
	}
	if err != nil {
		s.discard(up.id, paths)
		return fmt.Errorf("record video: %w", err)
	}

	s.writeMeta(up, paths, result, record.CreatedAt)
	return nil
}

func (s *Server) newRecord(up upload, paths storage.Paths, result *clipforge.Result) (catalog.Record, error) {
	record := catalog.Record{
		ID:           up.id,
		OriginalName: up.originalName,
		OriginalExt:  up.originalExt,
		MimeType:     up.mimeType,
		SizeBytes:    up.size,
		DurationSec:  result.Metadata.DurationSec,
		FPS:          result.Metadata.FPS,
		Width:        result.Metadata.Width,
		Height:       result.Metadata.Height,
		Filter:       up.filter.String(),
		CreatedAt:    time.Now(),
	}

	var err error
	if record.PathOriginal, err = s.layout.Rel(paths.Original); err != nil {
		return record, err
	}
	if record.PathProcessed, err = s.layout.Rel(paths.Processed); err != nil {
		return record, err
	}
	if result.Thumbnail.OK {
		record.PathThumbnail, _ = s.layout.Rel(paths.Thumbnail)
	}
	if result.Preview.OK {
		record.PathPreview, _ = s.layout.Rel(paths.Preview)
	}
	return record, nil
}

func (s *Server) writeMeta(up upload, paths storage.Paths, result *clipforge.Result, createdAt time.Time) {
	meta := storage.Meta{
		ID:        up.id,
		Filter:    up.filter.String(),
		Transcode: result.Transcode,
		CreatedAt: createdAt,
		Artifacts: map[string]bool{
			"video":     result.Video.OK,
			"thumbnail": result.Thumbnail.OK,
			"preview":   result.Preview.OK,
		},
		FilterParams: filterParams(up.filter),
	}

	errs := map[string]string{}
	for name, a := range map[string]clipforge.ArtifactResult{
		"thumbnail": result.Thumbnail,
		"preview":   result.Preview,
	} {
		if !a.OK {
			errs[name] = a.Error
		}
	}
	if len(errs) > 0 {
		meta.Errors = errs
	}

	sum, err := storage.Checksum(paths.Original)
	if err == nil {
		meta.Checksum = sum
		err = storage.WriteMeta(paths.Meta, meta)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Server.writeMeta",
			"video_id": up.id,
			"error":    err.Error(),
		}).Warn("Failed to write meta.json")
	}
}

func filterParams(kind video.FilterKind) map[string]int {
	switch kind {
	case video.FilterPixelize:
		return map[string]int{"block_size": limits.PixelizeBlockSize}
	case video.FilterEdges:
		return map[string]int{
			"low_threshold":  limits.EdgeLowThreshold,
			"high_threshold": limits.EdgeHighThreshold,
		}
	}
	return map[string]int{}
}

func (s *Server) discard(id string, paths storage.Paths) {
	if _, err := s.layout.Trash(paths.Original, id); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Server.discard",
			"video_id": id,
			"error":    err.Error(),
		}).Error("Failed to move original to trash")
	}
	os.RemoveAll(paths.Dir)
}

func (s *Server) fail(w http.ResponseWriter, id string, err error) {
	logrus.WithFields(logrus.Fields{
		"function": "Server.handleUpload",
		"video_id": id,
		"error":    err.Error(),
	}).Error("Upload failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func saveUpload(src io.Reader, path string) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, src)
	if err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalog.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.catalog.Get(r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read video")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>clipforge</title></head>
<body>
<h1>Processed videos</h1>
{{if not .}}<p>No videos yet.</p>{{end}}
<ul>
{{range .}}<li>
{{if .PathThumbnail}}<img src="/media/{{.PathThumbnail}}" width="160" alt="{{.OriginalName}}">{{end}}
<strong>{{.OriginalName}}</strong> ({{.Filter}}, {{printf "%.1f" .DurationSec}}s, {{.CreatedAt.Format "2006-01-02 15:04"}})
<a href="/media/{{.PathProcessed}}">processed</a>
<a href="/media/{{.PathOriginal}}">original</a>
{{if .PathPreview}}<a href="/media/{{.PathPreview}}">preview</a>{{end}}
</li>
{{end}}</ul>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalog.List()
	if err != nil {
		http.Error(w, "failed to list videos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, records); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Server.handleIndex",
			"error":    err.Error(),
		}).Warn("Template rendering failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "writeJSON",
			"error":    err.Error(),
		}).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

package clipforge

import (
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/limits"
	"github.com/opd-ai/clipforge/media"
	"github.com/opd-ai/clipforge/media/preview"
	"github.com/opd-ai/clipforge/media/thumbnail"
	"github.com/opd-ai/clipforge/media/transcode"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidJob indicates a job missing its source or an output path.
var ErrInvalidJob = errors.New("invalid job")

// Job is one unit of work: a source, a filter and fully resolved output paths.
type Job struct {
	ID            string           `json:"id"`
	SourcePath    string           `json:"source_path"`
	Filter        video.FilterKind `json:"-"`
	VideoPath     string           `json:"video_path"`
	ThumbnailPath string           `json:"thumbnail_path"`
	PreviewPath   string           `json:"preview_path"`
}

// Validate checks that every path is set.
func (j Job) Validate() error {
	switch {
	case j.SourcePath == "":
		return fmt.Errorf("%w: missing source path", ErrInvalidJob)
	case j.VideoPath == "":
		return fmt.Errorf("%w: missing video path", ErrInvalidJob)
	case j.ThumbnailPath == "":
		return fmt.Errorf("%w: missing thumbnail path", ErrInvalidJob)
	case j.PreviewPath == "":
		return fmt.Errorf("%w: missing preview path", ErrInvalidJob)
	}
	return nil
}

// ArtifactResult reports one output of a job.
type ArtifactResult struct {
	Path  string `json:"path"`
	OK    bool   `json:"ok"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

func newArtifact(path string, err error) ArtifactResult {
	a := ArtifactResult{Path: path, OK: err == nil, Err: err}
	if err != nil {
		a.Error = err.Error()
	}
	return a
}

// Result is everything a caller needs to record or clean up after a job.
type Result struct {
	JobID       string         `json:"job_id"`
	Filter      string         `json:"filter"`
	Metadata    media.Metadata `json:"metadata"`
	MetadataErr error          `json:"-"`
	Target      video.Geometry `json:"target"`
	Aborted     bool           `json:"aborted"`

	Video     ArtifactResult `json:"video"`
	Thumbnail ArtifactResult `json:"thumbnail"`
	Preview   ArtifactResult `json:"preview"`

	Transcode       *transcode.Report `json:"transcode,omitempty"`
	ThumbnailReport *thumbnail.Report `json:"thumbnail_report,omitempty"`
	PreviewReport   *preview.Report   `json:"preview_report,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// Options configures a Pipeline.
type Options struct {
	MaxWidth         int
	Transcode        transcode.Options
	ThumbnailQuality int
}

// NewOptions returns the default pipeline configuration.
func NewOptions() *Options {
	return &Options{
		MaxWidth:         limits.MaxOutputWidth,
		Transcode:        transcode.DefaultOptions(),
		ThumbnailQuality: limits.ThumbnailQuality,
	}
}

// Pipeline runs jobs against a media backend. It holds no per-job state and
// is safe for concurrent use.
type Pipeline struct {
	backend  interfaces.IMediaBackend
	opts     Options
	encoder  *transcode.Encoder
	thumbs   *thumbnail.Generator
	previews *preview.Generator
}

// NewPipeline creates a pipeline. A nil options value uses NewOptions.
func NewPipeline(backend interfaces.IMediaBackend, options *Options) *Pipeline {
	if options == nil {
		options = NewOptions()
	}
	opts := *options
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = limits.MaxOutputWidth
	}

	thumbs := thumbnail.NewGenerator(backend)
	if opts.ThumbnailQuality > 0 {
		thumbs.SetQuality(opts.ThumbnailQuality)
	}

	return &Pipeline{
		backend:  backend,
		opts:     opts,
		encoder:  transcode.NewEncoder(backend, opts.Transcode),
		thumbs:   thumbs,
		previews: preview.NewGenerator(backend),
	}
}

// Process runs one job: metadata, normalization, transcode, then thumbnail
// and preview in parallel.
//
// The returned error is non-nil only when the job was aborted: an invalid
// job, or ErrCodecUnavailable from the encoder, in which case thumbnail and
// preview are skipped. Every other failure is reported per artifact in the
// Result. Process never deletes any path.
func (p *Pipeline) Process(job Job) (*Result, error) {
	start := time.Now()
	result := &Result{JobID: job.ID, Filter: job.Filter.String()}

	if err := job.Validate(); err != nil {
		result.Aborted = true
		return result, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Pipeline.Process",
		"job_id":   job.ID,
		"source":   job.SourcePath,
		"filter":   result.Filter,
	}).Info("Processing job")

	result.Metadata, result.MetadataErr = media.ExtractMetadata(p.backend, job.SourcePath)
	if result.Metadata.Known() {
		result.Target = video.Normalize(result.Metadata.Width, result.Metadata.Height, p.opts.MaxWidth)
	}

	report, err := p.encoder.Transcode(job.SourcePath, job.VideoPath, result.Target, job.Filter)
	result.Transcode = report
	result.Video = newArtifact(job.VideoPath, err)
	if errors.Is(err, media.ErrCodecUnavailable) {
		result.Aborted = true
		result.Elapsed = time.Since(start)

		logrus.WithFields(logrus.Fields{
			"function": "Pipeline.Process",
			"job_id":   job.ID,
			"error":    err.Error(),
		}).Error("Job aborted")
		return result, err
	}
	if report != nil && result.Target.IsZero() {
		result.Target = report.Target
	}

	p.generateStills(job, result)
	result.Elapsed = time.Since(start)

	logrus.WithFields(logrus.Fields{
		"function":     "Pipeline.Process",
		"job_id":       job.ID,
		"target":       result.Target.String(),
		"video_ok":     result.Video.OK,
		"thumbnail_ok": result.Thumbnail.OK,
		"preview_ok":   result.Preview.OK,
		"elapsed":      result.Elapsed.String(),
	}).Info("Job finished")

	return result, nil
}

// generateStills writes the thumbnail and preview concurrently. Each opens
// its own source handle; failures are recorded, never propagated.
func (p *Pipeline) generateStills(job Job, result *Result) {
	var g errgroup.Group

	g.Go(func() error {
		report, err := p.thumbs.Generate(job.SourcePath, job.ThumbnailPath, result.Target)
		result.ThumbnailReport = report
		result.Thumbnail = newArtifact(job.ThumbnailPath, err)
		logArtifactFailure(job.ID, media.StageThumbnail, err)
		return nil
	})
	g.Go(func() error {
		report, err := p.previews.Generate(job.SourcePath, job.PreviewPath)
		result.PreviewReport = report
		result.Preview = newArtifact(job.PreviewPath, err)
		logArtifactFailure(job.ID, media.StagePreview, err)
		return nil
	})

	_ = g.Wait()
}

func logArtifactFailure(jobID string, stage media.Stage, err error) {
	if err == nil {
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "Pipeline.generateStills",
		"job_id":   jobID,
		"stage":    stage,
		"error":    err.Error(),
	}).Warn("Artifact failed, job continues")
}

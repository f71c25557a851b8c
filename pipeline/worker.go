package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
	"github.com/ftllc/credit-enroll-pro-sub001/service"
)

// Job is one package generation request handed to the worker pool.
type Job struct {
	EnrollmentID int64
	ClientIP     string
	UserAgent    string
}

// JobStore persists enrollment package state for the worker.
type JobStore interface {
	Get(ctx context.Context, id int64) (*model.Enrollment, error)
	MarkCompleted(ctx context.Context, id int64, pdf []byte, pages int, at time.Time) error
	MarkFailed(ctx context.Context, id int64, msg string) error
}

// ObjectFetcher fetches stored objects (counter-signature rasters).
type ObjectFetcher interface {
	FetchObject(ctx context.Context, objectName string) ([]byte, error)
}

// ObjectUploader archives generated artifacts.
type ObjectUploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
}

// Worker executes the full compositing pipeline for one job: template
// resolution, form fill, signature compositing, certificate generation,
// merge and stamp, persistence. All stage failures collapse into the
// record's failed state; there are no per-stage retries.
type Worker struct {
	Templates TemplateSource
	Jobs      JobStore
	Filler    service.FormFiller
	Objects   ObjectFetcher  // optional; needed only for counter-signatures
	Archive   ObjectUploader // optional; best-effort artifact archive
	Clock     func() time.Time
	Log       *slog.Logger
}

func (w *Worker) now() time.Time {
	if w.Clock != nil {
		return w.Clock()
	}
	return time.Now()
}

func (w *Worker) log() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}

// Run executes the job and translates any stage error into the failed
// terminal state. If even the failure write fails, the record is left in
// processing; that is logged loudly since it needs operator intervention.
func (w *Worker) Run(ctx context.Context, job Job) {
	log := w.log().With("enrollment_id", job.EnrollmentID)

	if err := w.runGuarded(ctx, job); err != nil {
		log.Error("package generation failed", "error", err)
		if mErr := w.Jobs.MarkFailed(ctx, job.EnrollmentID, err.Error()); mErr != nil {
			log.Error("could not persist failed status; record stuck in processing", "error", mErr)
		}
		return
	}
	log.Info("package generation completed")
}

// runGuarded converts panics from the pipeline stages into ordinary stage
// errors. The PDF import layer panics on unparseable input, and a panic
// escaping the worker goroutine would kill the whole process.
func (w *Worker) runGuarded(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()
	return w.process(ctx, job)
}

// buildSigners assembles both signing parties for one job. The
// counter-signer is the company, identified by the package name; it has no
// personal email, and the client's email must not leak into its events.
func buildSigners(e *model.Enrollment, pkg *model.ContractPackage, job Job, clientImg, counterImg []byte) Signers {
	s := Signers{
		Client: Signer{
			Name:   e.FullName(),
			Email:  e.Email,
			Method: model.MethodCanvasDrawn,
			Image:  clientImg,
		},
		ClientIP:  job.ClientIP,
		UserAgent: job.UserAgent,
	}
	if len(counterImg) > 0 {
		s.CounterSigner = Signer{
			Name:   pkg.Name,
			Method: model.MethodStoredSignature,
			Image:  counterImg,
		}
	}
	return s
}

func (w *Worker) process(ctx context.Context, job Job) error {
	e, err := w.Jobs.Get(ctx, job.EnrollmentID)
	if err != nil {
		return fmt.Errorf("load enrollment: %w", err)
	}
	if e == nil {
		return fmt.Errorf("enrollment %d not found", job.EnrollmentID)
	}
	if e.PackageID == "" {
		return fmt.Errorf("enrollment %d has no package identifier", job.EnrollmentID)
	}

	pkg, err := ResolvePackage(ctx, w.Templates, e.Jurisdiction)
	if err != nil {
		return err
	}
	docs := pkg.DocumentsInMergeOrder()
	if len(docs) == 0 {
		return fmt.Errorf("package %q has no documents", pkg.Name)
	}

	signedAt := w.now()

	clientImg, err := DecodeSignatureImage(e.SignatureImage)
	if err != nil {
		return fmt.Errorf("client signature: %w", err)
	}
	var counterImg []byte
	if pkg.SignerID != "" && w.Objects != nil {
		counterImg, err = w.Objects.FetchObject(ctx, "signatures/"+pkg.SignerID+".png")
		if err != nil {
			return fmt.Errorf("counter-signature %q: %w", pkg.SignerID, err)
		}
	}
	signers := buildSigners(e, pkg, job, clientImg, counterImg)

	fields := FormFields(e, pkg, signedAt)
	seq := newSignatureSequence(e.PackageID)

	var (
		merged [][]byte
		events []model.SignatureEvent
	)
	for _, doc := range docs {
		filled, err := w.Filler.Fill(ctx, doc.PDF, fields)
		if err != nil {
			return fmt.Errorf("fill %s: %w", doc.Type, err)
		}
		signed, evts, err := CompositeSignatures(filled, doc.Type, doc.Placements, signers, seq, signedAt)
		if err != nil {
			return fmt.Errorf("composite %s: %w", doc.Type, err)
		}
		merged = append(merged, signed)
		events = append(events, evts...)
	}

	cert, err := BuildCertificate(CertificateMeta{
		PackageName: pkg.Name,
		PackageID:   e.PackageID,
		GeneratedAt: signedAt,
	}, events)
	if err != nil {
		return err
	}
	merged = append(merged, cert)

	final, pages, err := MergeAndStamp(e.PackageID, merged)
	if err != nil {
		return err
	}

	if err := w.Jobs.MarkCompleted(ctx, e.ID, final, pages, w.now()); err != nil {
		return fmt.Errorf("persist package: %w", err)
	}

	if w.Archive != nil {
		name := fmt.Sprintf("packages/%s.pdf", e.PackageID)
		if err := w.Archive.UploadFile(ctx, name, bytes.NewReader(final), int64(len(final)), "application/pdf"); err != nil {
			w.log().Warn("artifact archive failed", "object", name, "error", err)
		}
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phoaar/cacv-bulletin-automation/models"
	"github.com/phoaar/cacv-bulletin-automation/notify"
	"github.com/phoaar/cacv-bulletin-automation/pdf"
	"github.com/phoaar/cacv-bulletin-automation/render"
)

// Stage names reported in StageOutcome.
const (
	StageCleanup    = "cleanup"
	StageTranslate  = "translate"
	StageLinks      = "links"
	StageQR         = "qr"
	StagePrintPDF   = "print-pdf"
	StageBookletPDF = "booklet-pdf"
	StageNotify     = "notify"
	StagePublish    = "publish"
	StageStatus     = "status"
	StageHistory    = "history"
)

// StageOutcome is the result of one optional pipeline stage. Optional stages
// never abort a run.
type StageOutcome struct {
	Stage   string `json:"stage"`
	Skipped bool   `json:"skipped"`
	Err     error  `json:"-"`
}

func (o StageOutcome) OK() bool { return !o.Skipped && o.Err == nil }

// Summary describes one completed run.
type Summary struct {
	RunID       uuid.UUID
	ServiceDate string
	Slug        string
	Status      string
	Issues      []string
	Files       OutputFiles
	Outcomes    []StageOutcome
}

// PDFGenerator prints an HTML file to PDF. It reports false when skipped.
type PDFGenerator interface {
	Generate(ctx context.Context, htmlPath, outPath string, opts pdf.Options) (bool, error)
}

// Translator replaces Chinese text in a bulletin with English.
type Translator interface {
	Translate(ctx context.Context, b models.Bulletin) (models.Bulletin, []models.TranslationFailure)
}

// Publisher pushes the web bulletin to the church website.
type Publisher interface {
	Publish(ctx context.Context, title, html string) error
}

// RunRecorder persists run history.
type RunRecorder interface {
	Record(ctx context.Context, r models.RunRecord) error
}

// Deps are the collaborators of a BulletinService. Translator, PDF,
// Publisher and Recorder may be nil; the matching stage is then skipped.
type Deps struct {
	Store      SheetStore
	Translator Translator
	Notifier   *notify.Notifier
	PDF        PDFGenerator
	Publisher  Publisher
	Recorder   RunRecorder
	LinkClient *http.Client

	OutputDir string
	LiveURL   string
	Logger    *zap.Logger
	Now       func() time.Time
}

type BulletinService struct {
	deps Deps
}

func NewBulletinService(deps Deps) *BulletinService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.LinkClient == nil {
		deps.LinkClient = NewLinkClient()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &BulletinService{deps: deps}
}

// Run executes the pipeline once. Only configuration-level failures (reading
// the spreadsheet, writing output files) are returned as errors.
func (s *BulletinService) Run(ctx context.Context) (Summary, error) {
	log := s.deps.Logger
	started := s.deps.Now()
	sum := Summary{RunID: uuid.New()}

	removed, err := CleanOutputs(s.deps.OutputDir, started)
	sum.Outcomes = append(sum.Outcomes, s.outcome(StageCleanup, false, err))
	if len(removed) > 0 {
		log.Info("Removed old output files", zap.Strings("files", removed))
	}

	log.Info("Fetching bulletin data from Google Sheets…")
	raw, err := FetchBulletin(ctx, s.deps.Store, started, log)
	if err != nil {
		sum.Status = models.RunStatusFailed
		sum.Issues = []string{err.Error()}
		s.record(ctx, &sum, started)
		return sum, err
	}
	raw.LiveURL = s.deps.LiveURL
	sum.ServiceDate = raw.Service.Date
	sum.Slug = Slugify(raw.Service.Date)

	b, failures := raw, []models.TranslationFailure(nil)
	if s.deps.Translator == nil {
		sum.Outcomes = append(sum.Outcomes, s.outcome(StageTranslate, true, nil))
	} else {
		b, failures = s.deps.Translator.Translate(ctx, raw)
		var terr error
		if len(failures) > 0 {
			terr = fmt.Errorf("%d field(s) kept original text", len(failures))
		}
		sum.Outcomes = append(sum.Outcomes, s.outcome(StageTranslate, false, terr))
	}

	issues := Validate(b)
	var (
		linkIssues []string
		g          errgroup.Group
	)
	anns := append([]models.Announcement(nil), b.Announcements...)
	g.Go(func() error {
		linkIssues = CheckLinks(ctx, s.deps.LinkClient, anns)
		return nil
	})
	g.Go(func() error {
		return s.generateQRCodes(&b)
	})
	qrErr := g.Wait()
	sum.Outcomes = append(sum.Outcomes,
		s.outcome(StageLinks, false, nil),
		s.outcome(StageQR, false, qrErr))
	issues = append(issues, linkIssues...)
	issues = append(issues, TranslationIssues(failures)...)
	sum.Issues = issues

	sum.Files = outputFiles(s.deps.OutputDir, sum.Slug)
	web := render.Web(b, failures)
	if err := s.writeOutputs(sum.Files, web, render.Print(b), render.Booklet(b)); err != nil {
		sum.Status = models.RunStatusFailed
		s.record(ctx, &sum, started)
		return sum, err
	}
	log.Info("✅ Bulletin written", zap.String("web", sum.Files.Web))

	printed := s.makePDF(ctx, &sum, StagePrintPDF, sum.Files.PrintHTML, sum.Files.PrintPDF, pdf.Options{})
	s.makePDF(ctx, &sum, StageBookletPDF, sum.Files.BookletHTML, sum.Files.BookletPDF, pdf.Options{Landscape: true})

	sum.Outcomes = append(sum.Outcomes, s.notify(ctx, b, issues, printed, sum.Files.PrintPDF))
	sum.Outcomes = append(sum.Outcomes, s.publish(ctx, b.Service.Date, web))

	if len(issues) == 0 {
		sum.Status = models.RunStatusSuccess
	} else {
		sum.Status = models.RunStatusIssues
		log.Warn(fmt.Sprintf("⚠️  %d issue(s) found", len(issues)), zap.Strings("issues", issues))
	}

	wrote, err := WriteRunStatus(ctx, s.deps.Store, RunStatusText(len(issues)), s.deps.Now())
	sum.Outcomes = append(sum.Outcomes, s.outcome(StageStatus, err == nil && !wrote, err))

	s.record(ctx, &sum, started)
	return sum, nil
}

// generateQRCodes fills the QR code of every announcement that links
// somewhere, plus the live bulletin QR. Encoding failures leave the slot empty.
func (s *BulletinService) generateQRCodes(b *models.Bulletin) error {
	var g errgroup.Group
	svgs := make([]string, len(b.Announcements))
	for i, a := range b.Announcements {
		target := render.FirstURL(a.Title + " " + a.Body)
		if target == "" {
			continue
		}
		g.Go(func() error {
			svg, err := render.QRSvg(target)
			if err != nil {
				return fmt.Errorf("announcement %d: %w", i+1, err)
			}
			svgs[i] = svg
			return nil
		})
	}
	var liveSVG string
	if b.LiveURL != "" {
		g.Go(func() error {
			svg, err := render.QRSvg(b.LiveURL)
			if err != nil {
				return fmt.Errorf("live bulletin: %w", err)
			}
			liveSVG = svg
			return nil
		})
	}
	err := g.Wait()

	for i := range b.Announcements {
		b.Announcements[i].QRSvg = svgs[i]
	}
	b.LiveQRSvg = liveSVG
	return err
}

func (s *BulletinService) writeOutputs(files OutputFiles, web, printHTML, booklet string) error {
	if err := os.MkdirAll(s.deps.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for path, content := range map[string]string{
		files.Web:         web,
		files.PrintHTML:   printHTML,
		files.BookletHTML: booklet,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func (s *BulletinService) makePDF(ctx context.Context, sum *Summary, stage, htmlPath, outPath string, opts pdf.Options) bool {
	if s.deps.PDF == nil {
		sum.Outcomes = append(sum.Outcomes, s.outcome(stage, true, nil))
		return false
	}
	ok, err := s.deps.PDF.Generate(ctx, htmlPath, outPath, opts)
	sum.Outcomes = append(sum.Outcomes, s.outcome(stage, err == nil && !ok, err))
	return ok && err == nil
}

func (s *BulletinService) notify(ctx context.Context, b models.Bulletin, issues []string, hasPDF bool, pdfPath string) StageOutcome {
	if s.deps.Notifier == nil {
		return s.outcome(StageNotify, true, nil)
	}
	var err error
	if len(issues) > 0 {
		err = s.deps.Notifier.NotifyFailures(ctx, b.NotificationEmails, b.Service.Date, b.LiveURL, issues)
	} else {
		if !hasPDF {
			pdfPath = ""
		}
		err = s.deps.Notifier.NotifySuccess(ctx, b.NotificationEmails, b.Service.Date, b.LiveURL, pdfPath)
	}
	if errors.Is(err, notify.ErrSkipped) {
		return s.outcome(StageNotify, true, nil)
	}
	return s.outcome(StageNotify, false, err)
}

func (s *BulletinService) publish(ctx context.Context, serviceDate, web string) StageOutcome {
	if s.deps.Publisher == nil {
		return s.outcome(StagePublish, true, nil)
	}
	err := s.deps.Publisher.Publish(ctx, "CACV English Bulletin · "+serviceDate, web)
	return s.outcome(StagePublish, false, err)
}

func (s *BulletinService) record(ctx context.Context, sum *Summary, started time.Time) {
	if s.deps.Recorder == nil {
		sum.Outcomes = append(sum.Outcomes, s.outcome(StageHistory, true, nil))
		return
	}
	err := s.deps.Recorder.Record(ctx, models.RunRecord{
		ID:          sum.RunID,
		ServiceDate: sum.ServiceDate,
		Slug:        sum.Slug,
		Status:      sum.Status,
		Issues:      sum.Issues,
		StartedAt:   started,
		FinishedAt:  s.deps.Now(),
	})
	sum.Outcomes = append(sum.Outcomes, s.outcome(StageHistory, false, err))
}

// outcome builds a StageOutcome and logs it.
func (s *BulletinService) outcome(stage string, skipped bool, err error) StageOutcome {
	o := StageOutcome{Stage: stage, Skipped: skipped, Err: err}
	switch {
	case err != nil:
		s.deps.Logger.Warn("⚠️  Stage failed", zap.String("stage", stage), zap.Error(err))
	case skipped:
		s.deps.Logger.Debug("Stage skipped", zap.String("stage", stage))
	}
	return o
}

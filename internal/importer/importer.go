package importer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/quillmed/chartextract/internal/audit"
	"github.com/quillmed/chartextract/internal/document"
	"github.com/quillmed/chartextract/internal/parse"
	"github.com/quillmed/chartextract/internal/search"
	"github.com/quillmed/chartextract/internal/store"
)

// Importer walks a directory of clinical documents and runs each through
// extract, dedup, store, archive and index. Documents are processed
// sequentially with a fixed delay between them; any per-document failure
// is logged and the batch moves on. A single bad document never halts an
// import run.
type Importer struct {
	parser  *parse.Parser
	store   store.Service
	archive store.ArchiveService
	search  search.Service
	audit   audit.Service
	logger  *zap.Logger
	delay   time.Duration
}

func New(
	storeService store.Service,
	archiveService store.ArchiveService,
	searchService search.Service,
	auditService audit.Service,
	logger *zap.Logger,
	delay time.Duration,
) *Importer {
	return &Importer{
		parser:  parse.NewParser(),
		store:   storeService,
		archive: archiveService,
		search:  searchService,
		audit:   auditService,
		logger:  logger,
		delay:   delay,
	}
}

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
	Failed   int
}

// Run imports every supported document under dir.
func (i *Importer) Run(ctx context.Context, dir string) (Result, error) {
	paths, err := document.ListDocuments(dir)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for n, path := range paths {
		if n > 0 && i.delay > 0 {
			select {
			case <-time.After(i.delay):
			case <-ctx.Done():
				return res, ctx.Err()
			}
		}

		switch outcome := i.importOne(ctx, path); outcome {
		case outcomeImported:
			res.Imported++
		case outcomeSkipped:
			res.Skipped++
		case outcomeFailed:
			res.Failed++
		}
	}

	return res, nil
}

type outcome int

const (
	outcomeImported outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (i *Importer) importOne(ctx context.Context, path string) outcome {
	text, err := document.LoadText(path)
	if err != nil {
		i.logger.Error("failed to load document", zap.String("path", path), zap.Error(err))
		return outcomeFailed
	}

	rec := i.parser.Parse(text)
	rec.SourceFile = path

	// Filename fallbacks: consulted only when in-text extraction failed.
	if rec.VisitDate == nil {
		rec.VisitDate = document.DateFromFilename(path)
	}
	if rec.Provider == "" {
		rec.Provider = document.ProviderFromFilename(path)
	}

	if err := rec.Validate(); err != nil {
		i.logger.Warn("document produced an empty record, skipping",
			zap.String("path", path))
		return outcomeSkipped
	}

	if existing, err := i.store.FindByTitleAndDate(ctx, rec.Title(), rec.VisitDate); err == nil {
		i.logger.Info("duplicate document, skipping",
			zap.String("path", path), zap.String("existing_id", existing))
		i.audit.LogEvent(ctx, &audit.Event{
			EventType:  audit.EventSkip,
			Action:     "IMPORT",
			Resource:   "clinical_record",
			ResourceID: existing,
			SourceFile: path,
			Status:     "duplicate",
		})
		return outcomeSkipped
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		i.logger.Error("dedup check failed", zap.String("path", path), zap.Error(err))
		return outcomeFailed
	}

	if err := i.store.Create(ctx, rec); err != nil {
		i.logger.Error("failed to store record", zap.String("path", path), zap.Error(err))
		return outcomeFailed
	}

	if err := i.archive.Archive(ctx, &store.ArchivedDocument{
		RecordID:   rec.ID,
		SourceFile: path,
		RawText:    text,
	}); err != nil {
		i.logger.Warn("failed to archive raw text", zap.String("path", path), zap.Error(err))
	}

	if err := i.search.IndexRecord(ctx, rec); err != nil {
		i.logger.Warn("failed to index record", zap.String("path", path), zap.Error(err))
	}

	i.audit.LogEvent(ctx, &audit.Event{
		EventType:  audit.EventImport,
		Action:     "IMPORT",
		Resource:   "clinical_record",
		ResourceID: rec.ID,
		SourceFile: path,
		Status:     "success",
	})

	return outcomeImported
}

package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/filex"
	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/netx"
)

// ExportFormats lists the formats the server renders.
var ExportFormats = []string{"csv", "json", "xlsx", "pdf"}

type ExportAPI interface {
	ExportJobs(ctx context.Context, format string) (client.Export, error)
}

// ExportResult is a downloaded export.
type ExportResult struct {
	Path  string
	Bytes int64
	// Pending counts local changes the file does not contain yet.
	Pending int
}

// ExportService asks the server to render an export and downloads it
// into Dir.
type ExportService struct {
	core *Core
	api  ExportAPI
	dir  string
	http *http.Client
	log  logging.Logger
}

func NewExportService(core *Core, api ExportAPI, dir string) *ExportService {
	return &ExportService{core: core, api: api, dir: dir, log: core.Log.With("module", "export")}
}

func (s *ExportService) Export(ctx context.Context, format string) (ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if !slices.Contains(ExportFormats, format) {
		return ExportResult{}, fmt.Errorf("%w: format must be one of %s", common.ErrorValidation, strings.Join(ExportFormats, ", "))
	}

	exp, err := s.api.ExportJobs(ctx, format)
	if err != nil {
		return ExportResult{}, err
	}

	dir, err := filex.EnsureDir(s.dir)
	if err != nil {
		return ExportResult{}, err
	}
	dst := filex.UniquePath(dir, filepath.Base(exp.FileName))

	n, err := netx.DownloadFromPresignedURL(ctx, s.http, exp.URL, dst)
	if err != nil {
		return ExportResult{}, fmt.Errorf("download export: %w", err)
	}
	s.log.Info(ctx, "export downloaded", "path", dst, "bytes", n, "format", format)

	return ExportResult{Path: dst, Bytes: n, Pending: s.core.Ledger.CountPending()}, nil
}

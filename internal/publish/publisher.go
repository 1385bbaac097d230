// Package publish replaces a folder of a Nexus raw repository with the
// contents of a local directory: delete, wait for the deletion to show,
// upload.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dl-alexandre/nxraw/internal/contenttype"
	"github.com/dl-alexandre/nxraw/internal/exclude"
	"github.com/dl-alexandre/nxraw/internal/logging"
	"github.com/dl-alexandre/nxraw/internal/nexus"
	"github.com/dl-alexandre/nxraw/internal/scanner"
	"github.com/dl-alexandre/nxraw/internal/utils"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// Remote is the subset of the Nexus API a run needs
type Remote interface {
	DeleteFolder(ctx context.Context, repo, folder string) (*nexus.ExtDirectResponse, error)
	BrowseFolder(ctx context.Context, repo, folder string) (int, error)
	PutObject(ctx context.Context, repo, key string, body io.Reader, size int64, contentType string) error
	ObjectURL(repo, key string) string
}

// Target names what gets replaced and with what
type Target struct {
	RepoName   string
	RepoFolder string
	InputDir   string
}

// ProgressFunc is called before each upload with a 1-based index
type ProgressFunc func(index, total int, file scanner.LocalFile)

// Options tunes a Publisher. Zero values fall back to defaults.
type Options struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
	DryRun       bool
	Exclude      *exclude.Matcher
	Progress     ProgressFunc
	Clock        clockwork.Clock
	Fs           afero.Fs
	Logger       logging.Logger
}

// Publisher runs one delete-wait-upload cycle
type Publisher struct {
	target       Target
	remote       Remote
	pollInterval time.Duration
	pollTimeout  time.Duration
	dryRun       bool
	matcher      *exclude.Matcher
	progress     ProgressFunc
	clock        clockwork.Clock
	fs           afero.Fs
	logger       logging.Logger

	mu    sync.Mutex
	state State
	ran   bool
}

// New creates a publisher. The folder loses surrounding slashes.
func New(target Target, remote Remote, opts Options) *Publisher {
	target.RepoFolder = strings.Trim(target.RepoFolder, "/")

	p := &Publisher{
		target:       target,
		remote:       remote,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		dryRun:       opts.DryRun,
		matcher:      opts.Exclude,
		progress:     opts.Progress,
		clock:        opts.Clock,
		fs:           opts.Fs,
		logger:       opts.Logger,
		state:        StateIdle,
	}
	if p.pollInterval <= 0 {
		p.pollInterval = utils.DefaultPollInterval
	}
	if p.pollTimeout <= 0 {
		p.pollTimeout = utils.DefaultPollTimeout
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.logger == nil {
		p.logger = logging.NewNoOpLogger()
	}
	return p
}

// State returns the current phase
func (p *Publisher) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Publisher) transition(to State) {
	p.mu.Lock()
	from := p.state
	if !CanTransition(from, to) {
		p.mu.Unlock()
		panic(fmt.Sprintf("publish: illegal state transition %s -> %s", from, to))
	}
	p.state = to
	p.mu.Unlock()

	p.logger.Debug("State transition",
		logging.F("from", string(from)),
		logging.F("to", string(to)),
	)
}

// Run executes the workflow. A Publisher runs at most once. Failures are
// *Error values and come with a Result describing the work done so far.
func (p *Publisher) Run(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	if p.ran {
		p.mu.Unlock()
		return nil, errors.New("publish: Run called twice")
	}
	p.ran = true
	p.mu.Unlock()

	start := p.clock.Now()
	result := &Result{
		Repository: p.target.RepoName,
		Folder:     p.target.RepoFolder,
		DryRun:     p.dryRun,
		Files:      []FileResult{},
	}
	defer func() {
		result.State = p.State()
		result.Duration = p.clock.Since(start)
		result.DurationMs = result.Duration.Milliseconds()
	}()

	p.logger.Info("Publish starting",
		logging.F("repository", p.target.RepoName),
		logging.F("folder", p.target.RepoFolder),
		logging.F("inputDir", p.target.InputDir),
		logging.F("dryRun", p.dryRun),
	)

	files, err := scanner.ScanLocal(ctx, p.fs, p.target.InputDir, p.matcher)
	if err != nil {
		return result, p.fail(ctx, &Error{Kind: KindScanFailed, Details: err.Error(), Err: err})
	}
	p.logger.Info("Local files enumerated",
		logging.F("files", len(files)),
		logging.F("bytes", scanner.TotalSize(files)),
	)

	if p.dryRun {
		for _, f := range files {
			result.Files = append(result.Files, p.fileResult(f, FilePlanned))
			result.TotalBytes += f.Size
		}
		p.transition(StateDone)
		return result, nil
	}

	p.transition(StateDeleting)
	if err := p.deleteRemoteFolder(ctx); err != nil {
		return result, p.fail(ctx, err)
	}

	p.transition(StateWaitingForDeletion)
	if err := p.waitUntilDeleted(ctx, result); err != nil {
		return result, p.fail(ctx, err)
	}

	p.transition(StateUploading)
	for i, f := range files {
		if p.progress != nil {
			p.progress(i+1, len(files), f)
		}
		fr, err := p.uploadFile(ctx, f)
		result.Files = append(result.Files, fr)
		if err != nil {
			return result, p.fail(ctx, err)
		}
		result.TotalBytes += fr.Size
	}

	p.transition(StateDone)
	p.logger.Info("Publish completed",
		logging.F("files", len(files)),
		logging.F("bytes", result.TotalBytes),
		logging.F("pollAttempts", result.PollAttempts),
		logging.F("duration_ms", p.clock.Since(start).Milliseconds()),
	)
	return result, nil
}

// fail moves to Failed and logs err. A cancelled context takes precedence
// over whatever the phase reported.
func (p *Publisher) fail(ctx context.Context, err *Error) error {
	if ctx.Err() != nil && err.Kind != KindCancelled {
		err = &Error{Kind: KindCancelled, Path: err.Path, Err: ctx.Err()}
	}
	p.transition(StateFailed)
	fields := []logging.Field{logging.F("kind", string(err.Kind))}
	if err.Path != "" {
		fields = append(fields, logging.F("path", err.Path))
	}
	if err.StatusCode != 0 {
		fields = append(fields, logging.F("status", err.StatusCode))
	}
	p.logger.Error(err.Error(), fields...)
	return err
}

// deleteRemoteFolder sends the single deleteFolder call
func (p *Publisher) deleteRemoteFolder(ctx context.Context) *Error {
	p.logger.Info("Deleting remote folder",
		logging.F("repository", p.target.RepoName),
		logging.F("folder", p.target.RepoFolder),
	)

	resp, err := p.remote.DeleteFolder(ctx, p.target.RepoName, p.target.RepoFolder)
	if err != nil {
		return &Error{
			Kind:       KindDeletionFailed,
			StatusCode: nexus.StatusCodeOf(err),
			Details:    errorDetails(err),
			Err:        err,
		}
	}
	if failed, msg := resp.Failure(); failed {
		if msg == "" {
			msg = "server rejected deleteFolder"
		}
		return &Error{Kind: KindDeletionFailed, Details: msg}
	}
	return nil
}

// waitUntilDeleted polls the browse listing until it answers 404. The
// budget is checked after each wait, so a request in flight is never cut
// short by it.
func (p *Publisher) waitUntilDeleted(ctx context.Context, result *Result) *Error {
	start := p.clock.Now()

	for {
		result.PollAttempts++
		status, err := p.remote.BrowseFolder(ctx, p.target.RepoName, p.target.RepoFolder)
		if err != nil {
			return &Error{Kind: KindDeletionCheckFailed, Details: err.Error(), Err: err}
		}

		if status == http.StatusNotFound {
			p.logger.Info("Remote folder deleted",
				logging.F("pollAttempts", result.PollAttempts),
			)
			return nil
		}
		if status < 200 || status > 299 {
			return &Error{Kind: KindDeletionCheckFailed, StatusCode: status}
		}

		p.logger.Debug("Remote folder still present",
			logging.F("status", status),
			logging.F("attempt", result.PollAttempts),
		)

		select {
		case <-ctx.Done():
			return &Error{Kind: KindCancelled, Err: ctx.Err()}
		case <-p.clock.After(p.pollInterval):
		}

		if elapsed := p.clock.Since(start); elapsed > p.pollTimeout {
			return &Error{
				Kind:    KindDeletionTimeout,
				Details: fmt.Sprintf("folder still present after %s (%d checks)", p.pollTimeout, result.PollAttempts),
			}
		}
	}
}

// uploadFile PUTs one file. The returned FileResult is valid even on error.
func (p *Publisher) uploadFile(ctx context.Context, f scanner.LocalFile) (FileResult, *Error) {
	fr := p.fileResult(f, FileFailed)

	file, err := p.fs.Open(f.AbsPath)
	if err != nil {
		return fr, &Error{Kind: KindUploadFailed, Path: f.RelativePath, Details: err.Error(), Err: err}
	}
	defer file.Close()

	// The size at open time is what gets sent, even if the scan saw another.
	info, err := file.Stat()
	if err != nil {
		return fr, &Error{Kind: KindUploadFailed, Path: f.RelativePath, Details: err.Error(), Err: err}
	}
	fr.Size = info.Size()

	p.logger.Debug("Uploading file",
		logging.F("path", f.RelativePath),
		logging.F("url", fr.URL),
		logging.F("contentType", fr.ContentType),
		logging.F("size", fr.Size),
	)

	err = p.remote.PutObject(ctx, p.target.RepoName, p.objectKey(f), io.LimitReader(file, fr.Size), fr.Size, fr.ContentType)
	if err != nil {
		return fr, &Error{
			Kind:       KindUploadFailed,
			Path:       f.RelativePath,
			StatusCode: nexus.StatusCodeOf(err),
			Details:    errorDetails(err),
			Err:        err,
		}
	}

	fr.Status = FileUploaded
	return fr, nil
}

func (p *Publisher) fileResult(f scanner.LocalFile, status FileStatus) FileResult {
	return FileResult{
		Path:        f.RelativePath,
		URL:         p.remote.ObjectURL(p.target.RepoName, p.objectKey(f)),
		ContentType: contenttype.Detect(p.fs, f.AbsPath),
		Size:        f.Size,
		Status:      status,
	}
}

func (p *Publisher) objectKey(f scanner.LocalFile) string {
	return p.target.RepoFolder + "/" + f.RelativePath
}

// errorDetails prefers the server's response text over the Go error
func errorDetails(err error) string {
	var statusErr *nexus.StatusError
	if errors.As(err, &statusErr) {
		if body := strings.TrimSpace(statusErr.Body); body != "" {
			return body
		}
		return http.StatusText(statusErr.StatusCode)
	}
	return err.Error()
}

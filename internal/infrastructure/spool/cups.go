package spool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/localprint/bridge/internal/domain/printing"
)

// CUPSConfig contains configuration for the CUPS spooler adapter
type CUPSConfig struct {
	// LpPath is the lp executable used to submit jobs
	LpPath string
	// LpstatPath is the lpstat executable used to enumerate queues
	LpstatPath string
	// LpoptionsPath is the lpoptions executable used to read capabilities
	LpoptionsPath string
	// Logger for debug output
	Logger *zap.Logger
}

// CUPSSpooler submits jobs through the CUPS command line tools. Submission
// is synchronous: lp exits once the spooler has queued the job, and the
// spooler itself serializes concurrent submissions.
type CUPSSpooler struct {
	config *CUPSConfig
	logger *zap.Logger
}

// NewCUPSSpooler creates a new CUPS-backed spooler
func NewCUPSSpooler(config *CUPSConfig) *CUPSSpooler {
	if config == nil {
		config = &CUPSConfig{}
	}
	if config.LpPath == "" {
		config.LpPath = "lp"
	}
	if config.LpstatPath == "" {
		config.LpstatPath = "lpstat"
	}
	if config.LpoptionsPath == "" {
		config.LpoptionsPath = "lpoptions"
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CUPSSpooler{
		config: config,
		logger: logger,
	}
}

// Printers lists installed printer queues via lpstat -p
func (s *CUPSSpooler) Printers(ctx context.Context) ([]string, error) {
	stdout, stderr, err := s.run(ctx, nil, s.config.LpstatPath, "-p")
	if err != nil {
		// lpstat exits non-zero when no queue exists at all
		if strings.Contains(stderr, "No destinations added") {
			return []string{}, nil
		}
		return nil, NewError(ErrCodeSubmitFailed, "failed to list printers: "+firstLine(stderr), err)
	}
	return parsePrinterList(stdout), nil
}

// Capabilities reads one printer's driver options via lpoptions -p NAME -l
func (s *CUPSSpooler) Capabilities(ctx context.Context, name string) (*printing.PrinterCapabilities, error) {
	stdout, stderr, err := s.run(ctx, nil, s.config.LpoptionsPath, "-p", name, "-l")
	if err != nil {
		if isUnknownPrinter(stderr) {
			return nil, NewError(ErrCodePrinterNotFound, "printer not found: "+name, err)
		}
		return nil, NewError(ErrCodeSubmitFailed, "failed to read printer options: "+firstLine(stderr), err)
	}
	return parseCapabilities(name, stdout), nil
}

// Submit pipes the PDF bytes to lp with the resolved options
func (s *CUPSSpooler) Submit(ctx context.Context, job *printing.ResolvedPrintJob) error {
	args := buildSubmitArgs(job)

	s.logger.Debug("submitting job to spooler",
		zap.String("lp", s.config.LpPath),
		zap.Strings("args", args))

	stdout, stderr, err := s.run(ctx, bytes.NewReader(job.PDF), s.config.LpPath, args...)
	if err != nil {
		if isUnknownPrinter(stderr) {
			return NewError(ErrCodePrinterNotFound, "printer not found: "+job.Settings.Printer, err)
		}
		msg := firstLine(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return NewError(ErrCodeSubmitFailed, "print submission failed: "+msg, err)
	}

	s.logger.Debug("spooler accepted job", zap.String("output", strings.TrimSpace(stdout)))
	return nil
}

// run executes a CUPS tool with stable English output so parsing does not
// depend on the host locale.
func (s *CUPSSpooler) run(ctx context.Context, stdin io.Reader, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	if stdin != nil {
		cmd.Stdin = stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// buildSubmitArgs translates the job settings into lp options. The final "-"
// makes lp read the document from stdin.
func buildSubmitArgs(job *printing.ResolvedPrintJob) []string {
	settings := job.Settings

	args := []string{
		"-d", settings.Printer,
		"-n", strconv.Itoa(settings.Copies),
		"-t", job.JobID,
	}

	switch settings.Duplex {
	case printing.DuplexSimplex:
		args = append(args, "-o", "sides=one-sided")
	case printing.DuplexLongEdge:
		args = append(args, "-o", "sides=two-sided-long-edge")
	}

	if settings.PageRange != nil {
		args = append(args, "-o", fmt.Sprintf("page-ranges=%d-%d", settings.PageRange.From, settings.PageRange.To))
	}

	args = append(args, "-o", "media="+settings.Media)

	if settings.Orientation == printing.OrientationLandscape {
		args = append(args, "-o", "orientation-requested=4")
	}

	args = append(args, "-")
	return args
}

// parsePrinterList extracts queue names from lpstat -p output. Each queue
// appears as "printer NAME is idle..." or "printer NAME disabled...".
func parsePrinterList(out string) []string {
	printers := []string{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "printer" {
			printers = append(printers, fields[1])
		}
	}
	return printers
}

// parseCapabilities extracts the PageSize choices and duplex support from
// lpoptions -l output. Lines look like:
//
//	PageSize/Media Size: *A4 A3 Letter Legal A3Plus
//	Duplex/2-Sided Printing: *None DuplexNoTumble DuplexTumble
func parseCapabilities(name, out string) *printing.PrinterCapabilities {
	caps := &printing.PrinterCapabilities{Name: name}

	for _, line := range strings.Split(out, "\n") {
		option, choices, ok := parseOptionLine(line)
		if !ok {
			continue
		}
		switch option {
		case "PageSize":
			caps.Papers = choices
		case "Duplex":
			for _, choice := range choices {
				if !strings.EqualFold(choice, "None") {
					caps.Duplex = true
					break
				}
			}
		}
	}

	return caps
}

// parseOptionLine splits "Keyword/Description: *choice choice..." into the
// keyword and its choices. The asterisk marks the current default and is
// stripped.
func parseOptionLine(line string) (string, []string, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", nil, false
	}

	keyword := strings.TrimSpace(line[:idx])
	if slash := strings.Index(keyword, "/"); slash >= 0 {
		keyword = keyword[:slash]
	}
	if keyword == "" {
		return "", nil, false
	}

	fields := strings.Fields(line[idx+1:])
	choices := make([]string, 0, len(fields))
	for _, f := range fields {
		choices = append(choices, strings.TrimPrefix(f, "*"))
	}

	return keyword, choices, len(choices) > 0
}

// isUnknownPrinter matches the CUPS not-found phrasings: lpoptions says
// "Unknown printer or class", lp says "The printer or class does not exist".
func isUnknownPrinter(stderr string) bool {
	return strings.Contains(stderr, "Unknown printer") ||
		strings.Contains(stderr, "does not exist")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}

// Ensure CUPSSpooler implements Spooler
var _ Spooler = (*CUPSSpooler)(nil)

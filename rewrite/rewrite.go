package rewrite

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/LegacyCodeHQ/includefix/headerindex"
	"github.com/charmbracelet/log"
)

const includeMarker = "#include"

// quotedPath matches the first non-empty double-quoted string on a line.
var quotedPath = regexp.MustCompile(`"(.+?)"`)

// EligibleExtensions lists the file suffixes the rewriter processes.
var EligibleExtensions = []string{".h", ".cpp", ".hpp", ".c"}

// IsEligible reports whether a file name ends in one of EligibleExtensions.
func IsEligible(name string) bool {
	for _, ext := range EligibleExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Outcome classifies what happened to one line.
type Outcome int

const (
	Unchanged Outcome = iota
	Rewritten
	// ExtractionSkipped marks an include line without a quoted path, such as an angle-bracket include.
	ExtractionSkipped
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Rewritten:
		return "rewritten"
	case ExtractionSkipped:
		return "extraction-skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// LineResult describes the processing of a single line.
type LineResult struct {
	Line    string
	Outcome Outcome
	// IsDirective is set when the line contains the include marker.
	IsDirective bool
	IncludePath string
	Basename    string
	Candidates  []string
	Chosen      string
	Ambiguous   bool
}

// Rewriter rewrites quoted include paths using a header index.
type Rewriter struct {
	index  *headerindex.Index
	policy Policy
	logger *log.Logger
	dryRun bool
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithPolicy sets the tie-break policy used for ambiguous basenames.
func WithPolicy(p Policy) Option {
	return func(r *Rewriter) {
		if p != nil {
			r.policy = p
		}
	}
}

// WithLogger sets the logger receiving ambiguity warnings and per-line debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Rewriter) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDryRun makes RewriteFile process files without writing any output.
func WithDryRun(dryRun bool) Option {
	return func(r *Rewriter) {
		r.dryRun = dryRun
	}
}

// New returns a Rewriter consulting index, which must not be modified afterwards.
func New(index *headerindex.Index, opts ...Option) *Rewriter {
	r := &Rewriter{
		index:  index,
		policy: FirstDiscovered,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RewriteLine resolves the first quoted include path on line.
// The line ending, if any, is carried through untouched.
func (r *Rewriter) RewriteLine(line string) LineResult {
	res := LineResult{Line: line, Outcome: Unchanged}
	if !strings.Contains(line, includeMarker) {
		return res
	}
	res.IsDirective = true

	loc := quotedPath.FindStringSubmatchIndex(line)
	if loc == nil {
		res.Outcome = ExtractionSkipped
		return res
	}
	res.IncludePath = line[loc[2]:loc[3]]
	res.Basename = Basename(res.IncludePath)

	entry, ok := r.index.Lookup(res.Basename)
	if !ok || len(entry.Candidates) == 0 {
		return res
	}
	res.Candidates = entry.Candidates
	res.Ambiguous = entry.IsAmbiguous()
	res.Chosen = r.policy.Choose(entry.Candidates)

	newLine := line[:loc[0]] + `"` + res.Chosen + `"` + line[loc[1]:]
	if newLine != line {
		res.Line = newLine
		res.Outcome = Rewritten
	}
	return res
}

// Rewrite copies in to out line by line, rewriting include directives.
// name identifies the input in diagnostics.
func (r *Rewriter) Rewrite(name string, in io.Reader, out io.Writer) (Stats, error) {
	var stats Stats
	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)

	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return stats, fmt.Errorf("failed to read %s: %w", name, readErr)
		}
		if line != "" {
			res := r.RewriteLine(line)
			stats.record(res)
			r.logLine(name, line, res)
			if _, err := writer.WriteString(res.Line); err != nil {
				return stats, fmt.Errorf("failed to write %s: %w", name, err)
			}
		}
		if readErr != nil {
			break
		}
	}

	if err := writer.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return stats, nil
}

// RewriteFile rewrites src into dst, creating dst's parent directories and
// overwriting any existing file. Files that are not eligible are ignored.
// The source is fully read before dst is opened, so src and dst may be the same file.
func (r *Rewriter) RewriteFile(src, dst string) (Stats, error) {
	if !IsEligible(filepath.Base(src)) {
		return Stats{}, nil
	}
	r.logger.Debug("processing", "file", src)

	content, err := os.ReadFile(src)
	if err != nil {
		return Stats{FilesProcessed: 1}, fmt.Errorf("failed to read %s: %w", src, err)
	}

	var buf bytes.Buffer
	stats, err := r.Rewrite(src, bytes.NewReader(content), &buf)
	stats.FilesProcessed = 1
	if err != nil {
		return stats, err
	}

	if r.dryRun {
		return stats, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return stats, fmt.Errorf("failed to create output directory for %s: %w", dst, err)
	}
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(src); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(dst, buf.Bytes(), mode); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return stats, nil
}

func (r *Rewriter) logLine(name, original string, res LineResult) {
	if !res.IsDirective {
		return
	}
	if res.Ambiguous {
		r.logger.Warn("multiple headers share this name, using "+r.policy.Name()+" candidate",
			"file", name,
			"header", res.Basename,
			"candidates", res.Candidates,
			"chosen", res.Chosen)
	}
	switch res.Outcome {
	case Rewritten:
		r.logger.Debug("include rewritten",
			"file", name,
			"old", strings.TrimRight(original, "\r\n"),
			"new", strings.TrimRight(res.Line, "\r\n"))
	case ExtractionSkipped:
		r.logger.Debug("no quoted path", "file", name, "line", strings.TrimRight(original, "\r\n"))
	default:
		r.logger.Debug("not updated", "file", name, "include", res.IncludePath)
	}
}

// Basename strips directory components from an include path using either slash convention.
func Basename(includePath string) string {
	if i := strings.LastIndexAny(includePath, `/\`); i >= 0 {
		return includePath[i+1:]
	}
	return includePath
}

// qmlscan lists the C++ types a Qt source tree registers with QML.
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fatih/color"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/qmlscan/internal/config"
	"github.com/phobologic/qmlscan/internal/discover"
	"github.com/phobologic/qmlscan/internal/exports"
	"github.com/phobologic/qmlscan/internal/filter"
	"github.com/phobologic/qmlscan/internal/lang"
	"github.com/phobologic/qmlscan/internal/logging"
	"github.com/phobologic/qmlscan/internal/lookup"
	"github.com/phobologic/qmlscan/internal/model"
	"github.com/phobologic/qmlscan/internal/parse"
	"github.com/phobologic/qmlscan/internal/toon"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

type scanFlags struct {
	configFile  string
	format      string
	logLevel    string
	maxFileSize int
	cachePath   string
	bases       bool
	fileFilter  string
	typeFilter  string
	showVersion bool
}

func (f scanFlags) filtered() bool { return f.fileFilter != "" || f.typeFilter != "" }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "qmlscan [flags] [root]",
		Short: "List the C++ types a Qt source tree registers with QML",
		Long: `qmlscan finds qmlRegisterType<T>("uri", major, minor, "Name") calls in
C++ sources and describes each registered class (properties, signals, slots,
invokables and enums) as a QML meta-object.

Registrations whose uri or version is not a literal are reported under the
<default> package. Each resolved class is also exported under <cpp> with its
C++ name.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.showVersion {
				_, _ = fmt.Fprintf(stdout, "qmlscan %s\n", version)
				return nil
			}
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return scan(cmd, root, flags, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "config file (default is qmlscan.yaml in the working directory or root)")
	f.StringVarP(&flags.format, "format", "f", config.FormatTOON, "output format: toon, json or yaml")
	f.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.IntVar(&flags.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "skip files larger than this many bytes")
	f.StringVar(&flags.cachePath, "cache", "", "cache file path")
	f.BoolVar(&flags.bases, "bases", false, "also list the base classes of registered types")
	f.StringVar(&flags.fileFilter, "file", "", "only list objects from files whose path contains this substring")
	f.StringVarP(&flags.typeFilter, "type", "t", "", "only list types whose class or QML name contains this substring, with their bases")
	f.BoolVarP(&flags.showVersion, "version", "V", false, "show version and exit")

	cmd.AddCommand(newVersionCmd(stdout), newInitCmd(stdout, stderr))
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the qmlscan version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = color.New(color.Bold).Fprint(stdout, "qmlscan")
			_, _ = color.New(color.FgCyan).Fprintf(stdout, " %s\n", version)
		},
	}
}

func scan(cmd *cobra.Command, root string, flags scanFlags, stdout, stderr io.Writer) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	cfg, err := config.Load(flags.configFile, root)
	if err != nil {
		return err
	}
	// Flags given on the command line win over the file.
	changed := cmd.Flags().Changed
	if changed("format") {
		cfg.Format = flags.format
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if changed("max-file-size") {
		cfg.MaxFileSize = flags.maxFileSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, stderr)
	defer func() { _ = log.Sync() }()

	// Discover files
	files, err := discover.Files(root, cfg.Extensions)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no C++ files found")
	}

	// Filtered output is never cached.
	useCache := flags.cachePath != "" && !flags.filtered()

	key := cacheKey(root, cfg, flags.bases)

	// Check cache freshness
	if useCache && cacheIsFresh(flags.cachePath, root, files) {
		if data, ok := readCache(flags.cachePath, key); ok {
			_, _ = stdout.Write(data)
			return nil
		}
	}

	// Filter by size
	files = filterBySize(root, files, cfg.MaxFileSize, log)
	if len(files) == 0 {
		return fmt.Errorf("no C++ files found (all exceeded size limit)")
	}

	docs, err := parseFilesConcurrent(root, files, log)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no files could be parsed")
	}

	report := analyze(filepath.Base(root), docs, cfg.Options, flags.bases, log)
	if flags.fileFilter != "" {
		report = filter.ByFile(report, flags.fileFilter)
	}
	if flags.typeFilter != "" {
		report = filter.ByType(report, flags.typeFilter)
	}

	output, err := encode(report, cfg.Format)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", cfg.Format, err)
	}

	// Write cache
	if useCache {
		_ = os.WriteFile(flags.cachePath, append([]byte(cacheHeader+key+"\n"), output...), 0o644)
	}

	_, _ = stdout.Write(output)
	return nil
}

// analyze runs the exports analysis over every document that mentions the
// registration function, in discovery order.
func analyze(root string, docs []*parse.Document, opts exports.Options, bases bool, log *zap.Logger) *model.Report {
	files := make([]lookup.File, len(docs))
	for i, d := range docs {
		files[i] = d
	}
	analyzer := exports.New(lookup.NewSnapshot(files...), opts, log)

	report := &model.Report{Root: root, Objects: []model.FileObject{}}
	for _, doc := range docs {
		if !analyzer.MaybeExportsTypes(doc) {
			continue
		}
		res := analyzer.Run(doc)
		for _, o := range res.Objects {
			report.Objects = append(report.Objects, model.FileObject{File: doc.Path(), FakeMetaObject: *o})
		}
		if !bases {
			continue
		}
		for _, o := range res.Bases() {
			report.Objects = append(report.Objects, model.FileObject{File: doc.Path(), Base: true, FakeMetaObject: *o})
		}
	}
	return report
}

func encode(report *model.Report, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return nil, err
		}
	case config.FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		buf.WriteString(toon.Encode(report))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

const cacheHeader = "# qmlscan cache "

// cacheKey identifies everything besides the sources that shapes the output,
// so a cache written with other settings is not served.
func cacheKey(root string, cfg *config.Config, bases bool) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\x00%s\x00%s\x00%t\x00%d\x00%q\x00%s\x00%q\x00%q",
		version, root, cfg.Format, bases, cfg.MaxFileSize, cfg.Extensions,
		cfg.RegisterFunction, cfg.AssertFunctions, cfg.StringFunctions)
	return hex.EncodeToString(h.Sum(nil))
}

// readCache returns the cached output when the file was written under key.
func readCache(cachePath, key string) ([]byte, bool) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	header, output, ok := bytes.Cut(data, []byte("\n"))
	if !ok || string(header) != cacheHeader+key {
		return nil, false
	}
	return output, true
}

func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, log *zap.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			log.Warn("file skipped", zap.String("file", f.Path), zap.Int("limit", maxSize))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// parseFilesConcurrent parses files with one tree-sitter parser per worker
// and returns the documents in the order of files. Unreadable files are
// logged and left out.
func parseFilesConcurrent(root string, files []discover.FileEntry, log *zap.Logger) ([]*parse.Document, error) {
	type result struct {
		index int
		doc   *parse.Document
	}

	l := lang.Languages[lang.CPP]
	query, err := l.GetIdentifierQuery()
	if err != nil {
		return nil, fmt.Errorf("compiling query for %s: %w", l.Name, err)
	}

	numWorkers := min(runtime.GOMAXPROCS(0), len(files))

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser
			var parser *sitter.Parser

			for idx := range work {
				f := files[idx]
				source, err := os.ReadFile(filepath.Join(root, f.Path))
				if err != nil {
					log.Warn("failed to read file", zap.String("file", f.Path), zap.Error(err))
					continue
				}
				if parser == nil {
					parser = l.NewParser()
				}
				results <- result{index: idx, doc: parse.Parse(parser, query, source, filepath.ToSlash(f.Path))}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]*parse.Document, len(files))
	for r := range results {
		indexed[r.index] = r.doc
	}

	var docs []*parse.Document
	for _, d := range indexed {
		if d != nil {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

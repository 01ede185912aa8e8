package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JackKelly/list-with-depth/internal/observability"
	"github.com/JackKelly/list-with-depth/pkg/depthlist"
	"github.com/JackKelly/list-with-depth/pkg/manifest"
	"github.com/JackKelly/list-with-depth/pkg/match"
	"github.com/JackKelly/list-with-depth/pkg/output"
	"github.com/JackKelly/list-with-depth/pkg/store"
	filestore "github.com/JackKelly/list-with-depth/pkg/store/file"
	"github.com/JackKelly/list-with-depth/pkg/store/s3"
)

var lsCmd = &cobra.Command{
	Use:   "ls [uri]",
	Short: "List objects to a bounded depth",
	Long: `List objects under a prefix, recursing a bounded number of levels.

Depth 0 is a single delimiter listing: the objects directly under the
prefix plus the common prefixes one segment deeper. Each extra level of
depth descends concurrently into those common prefixes; the prefixes at
the final level are reported as the frontier.

The listing either fully succeeds or fully fails: the first listing
error aborts the traversal and no partial results are emitted.

Examples:
  lwd ls s3://bucket/prefix/ --depth 2
  lwd ls s3://bucket/data/**/*.parquet --depth 3
  lwd ls file:///var/data/ --depth 1 --output table
  lwd ls s3://bucket/ --depth 2 --min-size 1MB --modified-after 2024-01-01
  lwd ls --job job.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

var (
	lsJobPath   string
	lsDepth     int
	lsParallel  int
	lsRateLimit float64
	lsPageSize  int
	lsDelimiter string
	lsTimeout   time.Duration

	lsRegion   string
	lsProfile  string
	lsEndpoint string

	lsIncludes       []string
	lsExcludes       []string
	lsIncludeHidden  bool
	lsMinSize        string
	lsMaxSize        string
	lsModifiedAfter  string
	lsModifiedBefore string
	lsKeyRegex       string

	lsOutput      string
	lsDestination string
)

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringVarP(&lsJobPath, "job", "j", "", "Path to job manifest (alternative to a URI argument)")
	lsCmd.Flags().IntVarP(&lsDepth, "depth", "d", 0, "Levels to recurse past the initial listing (0=one level)")
	lsCmd.Flags().IntVar(&lsParallel, "parallel", 4, "Max concurrent listings per level")
	lsCmd.Flags().Float64Var(&lsRateLimit, "rate-limit", 0, "Max listing calls per second (0=unlimited)")
	lsCmd.Flags().IntVar(&lsPageSize, "page-size", 0, "Listing page size (0=store default)")
	lsCmd.Flags().StringVar(&lsDelimiter, "delimiter", "/", "Delimiter for common prefixes")
	lsCmd.Flags().DurationVar(&lsTimeout, "timeout", 0, "Overall listing timeout (0=none)")

	lsCmd.Flags().StringVarP(&lsRegion, "region", "r", "", "AWS region")
	lsCmd.Flags().StringVarP(&lsProfile, "profile", "p", "", "AWS profile")
	lsCmd.Flags().StringVar(&lsEndpoint, "endpoint", "", "Custom S3 endpoint")

	lsCmd.Flags().StringArrayVar(&lsIncludes, "include", nil, "Include glob pattern for object keys (repeatable)")
	lsCmd.Flags().StringArrayVar(&lsExcludes, "exclude", nil, "Exclude glob pattern for object keys (repeatable)")
	lsCmd.Flags().BoolVar(&lsIncludeHidden, "include-hidden", false, "Include dotfile segments")
	lsCmd.Flags().StringVar(&lsMinSize, "min-size", "", "Minimum object size (e.g. 1MB, 512KiB)")
	lsCmd.Flags().StringVar(&lsMaxSize, "max-size", "", "Maximum object size")
	lsCmd.Flags().StringVar(&lsModifiedAfter, "modified-after", "", "Only objects modified after (RFC3339 or YYYY-MM-DD)")
	lsCmd.Flags().StringVar(&lsModifiedBefore, "modified-before", "", "Only objects modified before (RFC3339 or YYYY-MM-DD)")
	lsCmd.Flags().StringVar(&lsKeyRegex, "key-regex", "", "Only objects whose key matches the regex")

	lsCmd.Flags().StringVar(&lsOutput, "output", "jsonl", "Output format (jsonl|table)")
	lsCmd.Flags().StringVarP(&lsDestination, "output-file", "o", "", "Write output to a file instead of stdout")
}

// lsJob is the resolved shape of one listing run, whether it came from
// flags or a manifest.
type lsJob struct {
	lister    store.LevelLister
	storeName string
	prefix    string
	depth     int
	delimiter string
	parallel  int
	rateLimit float64
	pageSize  int

	matcher *match.Matcher
	filter  *match.CompositeFilter

	destination string
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if lsJobPath == "" && len(args) == 0 {
		return exitError(foundry.ExitInvalidArgument, "Missing target", fmt.Errorf("provide a URI argument or --job"))
	}
	if lsJobPath != "" && len(args) > 0 {
		return exitError(foundry.ExitInvalidArgument, "Conflicting targets", fmt.Errorf("--job and a URI argument are mutually exclusive"))
	}

	var (
		job *lsJob
		err error
	)
	if lsJobPath != "" {
		job, err = jobFromManifest(ctx, lsJobPath)
	} else {
		job, err = jobFromFlags(ctx, args[0])
	}
	if err != nil {
		return err
	}
	if closer, ok := job.lister.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if lsTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lsTimeout)
		defer cancel()
	}

	return executeLs(ctx, job)
}

// jobFromFlags builds a run from a URI argument plus flags.
func jobFromFlags(ctx context.Context, uri string) (*lsJob, error) {
	parsed, err := ParseURI(uri)
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", uri), zap.Error(err))
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}

	includes := lsIncludes
	if parsed.IsPattern() {
		includes = append([]string{parsed.Pattern}, includes...)
	}

	matcher, filter, err := buildMatchAndFilter(includes, lsExcludes, lsIncludeHidden, &match.FilterConfig{
		KeyRegex: lsKeyRegex,
		Size:     sizeFilterConfig(lsMinSize, lsMaxSize),
		Modified: dateFilterConfig(lsModifiedAfter, lsModifiedBefore),
	})
	if err != nil {
		return nil, err
	}

	job := &lsJob{
		storeName:   string(parsed.Store),
		prefix:      parsed.Key,
		depth:       lsDepth,
		delimiter:   lsDelimiter,
		parallel:    lsParallel,
		rateLimit:   lsRateLimit,
		pageSize:    lsPageSize,
		matcher:     matcher,
		filter:      filter,
		destination: lsDestination,
	}

	switch parsed.Store {
	case store.StoreS3:
		job.lister, err = s3.New(ctx, s3.Config{
			Bucket:   parsed.Bucket,
			Region:   lsRegion,
			Endpoint: lsEndpoint,
			Profile:  lsProfile,
			// S3-compatible services (moto, MinIO, etc.) require path style.
			ForcePathStyle: lsEndpoint != "",
			MaxKeys:        lsPageSize,
		})
	case store.StoreFile:
		job.lister, err = filestore.New(filestore.Config{BaseDir: parsed.BaseDir})
	default:
		err = fmt.Errorf("store %q is not supported", parsed.Store)
	}
	if err != nil {
		observability.CLILogger.Error("Failed to create store", zap.Error(err))
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to store", err)
	}

	return job, nil
}

// jobFromManifest builds a run from a job manifest file.
func jobFromManifest(ctx context.Context, path string) (*lsJob, error) {
	m, err := manifest.Load(path)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", path),
			zap.Error(err))
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	observability.CLILogger.Debug("Loaded manifest",
		zap.String("path", path),
		zap.String("store", m.Connection.Store),
		zap.String("bucket", m.Connection.Bucket),
		zap.Int("depth", m.Traversal.Depth))

	matcher, filter, err := buildMatchAndFilter(m.Match.Includes, m.Match.Excludes, m.Match.IncludeHidden, m.Match.Filters)
	if err != nil {
		return nil, err
	}

	job := &lsJob{
		storeName:   m.Connection.Store,
		prefix:      m.Traversal.Prefix,
		depth:       m.Traversal.Depth,
		delimiter:   m.Traversal.Delimiter,
		parallel:    m.Traversal.Parallel,
		rateLimit:   m.Traversal.RateLimit,
		pageSize:    m.Traversal.PageSize,
		matcher:     matcher,
		filter:      filter,
		destination: m.Output.Destination,
	}
	if lsDestination != "" {
		job.destination = lsDestination
	}

	switch m.Connection.Store {
	case string(store.StoreS3):
		job.lister, err = s3.New(ctx, s3.Config{
			Bucket:         m.Connection.Bucket,
			Region:         m.Connection.Region,
			Endpoint:       m.Connection.Endpoint,
			Profile:        m.Connection.Profile,
			ForcePathStyle: m.Connection.ForcePathStyle || m.Connection.Endpoint != "",
			MaxKeys:        m.Traversal.PageSize,
		})
	case string(store.StoreFile):
		job.lister, err = filestore.New(filestore.Config{BaseDir: m.Connection.BaseDir})
	default:
		err = fmt.Errorf("store %q is not supported", m.Connection.Store)
	}
	if err != nil {
		observability.CLILogger.Error("Failed to create store", zap.Error(err))
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to store", err)
	}

	return job, nil
}

func buildMatchAndFilter(includes, excludes []string, includeHidden bool, fcfg *match.FilterConfig) (*match.Matcher, *match.CompositeFilter, error) {
	// A plain listing matches everything; build a matcher only when the
	// user scoped it.
	var matcher *match.Matcher
	if len(includes) > 0 || len(excludes) > 0 {
		m, err := match.New(match.Config{
			Includes:      includes,
			Excludes:      excludes,
			IncludeHidden: includeHidden,
		})
		if err != nil {
			observability.CLILogger.Error("Invalid match patterns", zap.Error(err))
			return nil, nil, exitError(foundry.ExitInvalidArgument, "Invalid match patterns", err)
		}
		matcher = m
	}

	var filter *match.CompositeFilter
	if fcfg != nil && (fcfg.Size != nil || fcfg.Modified != nil || fcfg.KeyRegex != "") {
		f, err := match.NewFilterFromConfig(fcfg)
		if err != nil {
			observability.CLILogger.Error("Invalid filters", zap.Error(err))
			return nil, nil, exitError(foundry.ExitInvalidArgument, "Invalid filters", err)
		}
		filter = f
	}

	return matcher, filter, nil
}

// prefixScope prunes recursion to prefixes that can still contain keys
// reachable from the matcher's include patterns. A discovered prefix is
// kept when it sits on the path to some include-derived prefix, or is
// already inside one. Excludes are not applied here: they scope keys,
// not subtrees.
func prefixScope(m *match.Matcher) func(prefix string) bool {
	prefixes := m.Prefixes()
	return func(p string) bool {
		for _, ip := range prefixes {
			if strings.HasPrefix(p, ip) || strings.HasPrefix(ip, p) {
				return true
			}
		}
		return false
	}
}

func sizeFilterConfig(min, max string) *match.SizeFilterConfig {
	if min == "" && max == "" {
		return nil
	}
	return &match.SizeFilterConfig{Min: min, Max: max}
}

func dateFilterConfig(after, before string) *match.DateFilterConfig {
	if after == "" && before == "" {
		return nil
	}
	return &match.DateFilterConfig{After: after, Before: before}
}

// executeLs runs the traversal and emits results.
func executeLs(ctx context.Context, job *lsJob) error {
	if job.depth < 0 {
		return exitError(foundry.ExitInvalidArgument, "Invalid --depth value", depthlist.ErrNegativeDepth)
	}
	if job.parallel < 1 {
		return exitError(foundry.ExitInvalidArgument, "Invalid --parallel value", fmt.Errorf("parallel must be >= 1"))
	}

	jobID := uuid.New().String()
	start := time.Now()

	observability.CLILogger.Debug("Starting listing",
		zap.String("job_id", jobID),
		zap.String("prefix", job.prefix),
		zap.Int("depth", job.depth),
		zap.Int("parallel", job.parallel))

	opts := []depthlist.Option{
		depthlist.WithDelimiter(job.delimiter),
		depthlist.WithMaxInFlight(job.parallel),
	}
	if job.rateLimit > 0 {
		opts = append(opts, depthlist.WithRateLimit(job.rateLimit))
	}
	if job.pageSize > 0 {
		opts = append(opts, depthlist.WithPageSize(job.pageSize))
	}
	if job.matcher != nil {
		opts = append(opts, depthlist.WithPrefixFilter(prefixScope(job.matcher)))
	}

	result, err := depthlist.Traverse(ctx, job.lister, job.prefix, job.depth, opts...)
	if err != nil {
		return reportLsError(ctx, job, jobID, err)
	}

	objects := result.Objects
	if job.matcher != nil || job.filter != nil {
		objects = objects[:0:0]
		for _, obj := range result.Objects {
			if job.matcher != nil && !job.matcher.Match(obj.Key) {
				continue
			}
			if job.filter != nil && !job.filter.Match(&obj) {
				continue
			}
			objects = append(objects, obj)
		}
	}

	if job.destination == "" || job.destination == "stdout" {
		job.destination = "stdout"
	}

	if lsOutput == "table" {
		return outputLsTable(objects, result.CommonPrefixes)
	}
	if lsOutput != "jsonl" {
		return exitError(foundry.ExitInvalidArgument, "Invalid --output value", fmt.Errorf("expected jsonl or table"))
	}

	w, cleanup, err := createLsWriter(job, jobID)
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to create output", err)
	}
	defer cleanup()

	var bytesTotal int64
	for i := range objects {
		obj := &objects[i]
		bytesTotal += obj.Size
		if err := w.WriteObject(ctx, &output.ObjectRecord{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		}); err != nil {
			return err
		}
	}
	for _, cp := range result.CommonPrefixes {
		if err := w.WritePrefix(ctx, &output.PrefixRecord{Prefix: cp}); err != nil {
			return err
		}
	}

	dur := time.Since(start)
	if err := w.WriteSummary(ctx, &output.SummaryRecord{
		Objects:       int64(len(objects)),
		Prefixes:      int64(len(result.CommonPrefixes)),
		BytesTotal:    bytesTotal,
		Depth:         job.depth,
		Duration:      dur,
		DurationHuman: formatDuration(dur),
	}); err != nil {
		return err
	}

	observability.CLILogger.Info("Listing completed",
		zap.String("job_id", jobID),
		zap.Int("objects", len(objects)),
		zap.Int("prefixes", len(result.CommonPrefixes)),
		zap.String("bytes", formatSize(bytesTotal)),
		zap.Duration("duration", dur))

	return nil
}

// reportLsError emits an error record on stdout and maps the failure to
// an exit code.
func reportLsError(ctx context.Context, job *lsJob, jobID string, err error) error {
	rec := &output.ErrorRecord{
		Code:    errorCodeFor(err),
		Message: err.Error(),
		Prefix:  job.prefix,
	}
	var se *store.StoreError
	if errors.As(err, &se) && se.Key != "" {
		rec.Prefix = se.Key
	}

	w := output.NewJSONLWriter(os.Stdout, jobID, job.storeName)
	_ = w.WriteError(context.WithoutCancel(ctx), rec)

	observability.CLILogger.Error("Listing failed",
		zap.String("job_id", jobID),
		zap.Error(err))

	switch {
	case errors.Is(err, depthlist.ErrNegativeDepth):
		return exitError(foundry.ExitInvalidArgument, "Invalid depth", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitError(foundry.ExitSignalInt, "Listing cancelled", err)
	case store.IsNotFound(err), store.IsBucketNotFound(err):
		return exitError(foundry.ExitFileNotFound, "Not found", err)
	default:
		return exitError(foundry.ExitExternalServiceUnavailable, "Listing failed", err)
	}
}

func errorCodeFor(err error) string {
	switch {
	case store.IsAccessDenied(err), store.IsInvalidCredentials(err):
		return output.ErrCodeAccessDenied
	case store.IsNotFound(err), store.IsBucketNotFound(err):
		return output.ErrCodeNotFound
	case store.IsThrottled(err):
		return output.ErrCodeThrottled
	case errors.Is(err, context.DeadlineExceeded):
		return output.ErrCodeTimeout
	default:
		return output.ErrCodeInternal
	}
}

// createLsWriter creates the JSONL writer for the job destination.
func createLsWriter(job *lsJob, jobID string) (output.Writer, func(), error) {
	dest := job.destination
	if dest == "" || dest == "stdout" {
		w := output.NewJSONLWriter(os.Stdout, jobID, job.storeName)
		return w, func() { _ = w.Close() }, nil
	}

	path := strings.TrimPrefix(dest, "file:")
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := output.NewJSONLWriter(f, jobID, job.storeName)
	cleanup := func() {
		_ = w.Close()
		_ = f.Close()
	}
	return w, cleanup, nil
}

func outputLsTable(objects []store.ObjectSummary, prefixes []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED"); err != nil {
		return err
	}

	var totalSize int64
	for _, obj := range objects {
		totalSize += obj.Size
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n",
			obj.Key,
			formatSize(obj.Size),
			obj.LastModified.Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}
	for _, cp := range prefixes {
		if _, err := fmt.Fprintf(tw, "%s\t-\t-\n", cp); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Found %d object(s) (%s total), %d unexplored prefix(es)\n",
		len(objects), formatSize(totalSize), len(prefixes))
	return nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatDuration renders a duration with sensible precision for logs
// and summaries.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

// Command parentcal extracts family calendar events from free-form text
// and keeps them deduplicated in a local SQLite database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/config"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/event"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/extract"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/ocr"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/repo"
	"github.com/stefanpalsson415/parentcopy-new-sub000/internal/store"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:])
	case "ocr":
		err = runOCR(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "delete":
		err = runDelete(os.Args[2:])
	case "review":
		err = runReview(os.Args[2:])
	case "sweep":
		err = runSweep(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "metrics":
		err = runMetrics(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("parentcal %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds the flags shared across commands; rest keeps the
// positional arguments in order.
type cliFlags struct {
	resolve  config.ResolveOptions
	family   string
	children []event.ChildRef
	limit    int
	every    string
	endpoint string
	addr     string
	enhanced bool
	jsonOut  bool
	rest     []string
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{addr: ":9090"}

	next := func(i *int, flag string) (string, error) {
		*i++
		if *i >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return args[*i], nil
	}

	var err error
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--config":
			f.resolve.ConfigPath, err = next(&i, arg)
		case "--db":
			f.resolve.CLIDBPath, err = next(&i, arg)
		case "--tz":
			f.resolve.CLITimezone, err = next(&i, arg)
		case "--region":
			f.resolve.CLIRegion, err = next(&i, arg)
		case "--threshold":
			f.resolve.CLIThreshold, err = next(&i, arg)
		case "--ocr-endpoint":
			f.resolve.CLIOCREndpoint, err = next(&i, arg)
		case "--webhook":
			f.resolve.CLIWebhookURL, err = next(&i, arg)
		case "--family":
			f.family, err = next(&i, arg)
		case "--child":
			var raw string
			if raw, err = next(&i, arg); err == nil {
				f.children = append(f.children, parseChild(raw))
			}
		case "--limit":
			var raw string
			if raw, err = next(&i, arg); err == nil {
				f.limit, err = strconv.Atoi(raw)
			}
		case "--every":
			f.every, err = next(&i, arg)
		case "--endpoint":
			f.endpoint, err = next(&i, arg)
		case "--addr":
			f.addr, err = next(&i, arg)
		case "--enhanced":
			f.enhanced = true
		case "--json":
			f.jsonOut = true
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			f.rest = append(f.rest, arg)
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// parseChild accepts "Name" or "Name=id".
func parseChild(raw string) event.ChildRef {
	if name, id, ok := strings.Cut(raw, "="); ok {
		return event.ChildRef{Name: name, ID: id}
	}
	return event.ChildRef{Name: raw}
}

func (f *cliFlags) familyContext() event.FamilyContext {
	return event.FamilyContext{FamilyID: f.family, Children: f.children}
}

// openRepo resolves configuration and wires store, repository, and
// webhook notifier. The caller owns closing the store and flushing the
// notifier.
func openRepo(f *cliFlags) (*repo.Repository, store.Store, *repo.WebhookNotifier, error) {
	resolved, err := config.ResolveConfig(f.resolve)
	if err != nil {
		return nil, nil, nil, err
	}
	threshold, err := resolved.Threshold()
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := loadLocation(resolved.Timezone.Value)
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := store.NewStore(store.StoreConfig{DBPath: resolved.DBPath.Value})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening store: %w", err)
	}

	r := repo.New(st, repo.Options{
		Pipeline: &extract.Pipeline{
			Location:      loc,
			DefaultRegion: event.Region(resolved.DefaultRegion.Value),
		},
		ConfidenceThreshold: threshold,
		Location:            loc,
	})

	notifier := repo.NewWebhookNotifier(repo.WebhookConfig{
		URL:     resolved.WebhookURL.Value,
		Version: version,
	})
	if notifier.Enabled() {
		r.Subscribe(notifier.Subscriber())
	}

	return r, st, notifier, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

func runExtract(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.rest) == 0 {
		return fmt.Errorf("usage: parentcal extract <text> [--child Name=id]")
	}

	resolved, err := config.ResolveConfig(f.resolve)
	if err != nil {
		return err
	}
	loc, err := loadLocation(resolved.Timezone.Value)
	if err != nil {
		return err
	}

	p := &extract.Pipeline{
		Location:      loc,
		DefaultRegion: event.Region(resolved.DefaultRegion.Value),
	}
	ev := p.Extract(strings.Join(f.rest, " "), f.familyContext())

	out, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runAdd(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.rest) == 0 {
		return fmt.Errorf("usage: parentcal add <text> [--family id] [--child Name=id]")
	}

	r, st, notifier, err := openRepo(f)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := r.Ingest(context.Background(), strings.Join(f.rest, " "), f.familyContext())
	if err != nil {
		return err
	}
	notifier.Flush()

	switch {
	case res.QueuedForReview:
		fmt.Printf("Queued for review (#%d): confidence too low to store automatically\n", res.ReviewID)
	case res.Duplicate:
		fmt.Printf("Duplicate of existing event %s\n", res.Event.UniversalID)
		printEvent(res.Event, f.jsonOut)
	default:
		fmt.Println("Stored:")
		printEvent(res.Event, f.jsonOut)
	}
	return nil
}

func runOCR(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.rest) == 0 {
		return fmt.Errorf("usage: parentcal ocr <image-url> [--enhanced] [--endpoint url]")
	}

	resolved, err := config.ResolveConfig(f.resolve)
	if err != nil {
		return err
	}
	endpoint := f.endpoint
	if endpoint == "" {
		endpoint = resolved.OCREndpoint.Value
	}
	if endpoint == "" {
		return fmt.Errorf("no OCR endpoint configured (use --endpoint or ocr.endpoint in config)")
	}

	client := ocr.NewClient(endpoint)
	text, err := client.Recognize(context.Background(), ocr.Request{
		ImageURL:     f.rest[0],
		EnhancedMode: f.enhanced,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Recognized text:\n%s\n\n", text)

	r, st, notifier, err := openRepo(f)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := r.Ingest(context.Background(), text, f.familyContext())
	if err != nil {
		return err
	}
	notifier.Flush()

	switch {
	case res.QueuedForReview:
		fmt.Printf("Queued for review (#%d)\n", res.ReviewID)
	case res.Duplicate:
		fmt.Printf("Duplicate of existing event %s\n", res.Event.UniversalID)
	default:
		fmt.Println("Stored:")
		printEvent(res.Event, f.jsonOut)
	}
	return nil
}

func runList(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	r, st, _, err := openRepo(f)
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := r.List(context.Background(), f.family, store.ListOpts{Limit: f.limit})
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events.")
		return nil
	}
	for _, ev := range events {
		fmt.Printf("%s  %-10s %-30s %s\n",
			ev.Start.DateTime.Format("2006-01-02 15:04"), ev.EventType, ev.Title, ev.UniversalID)
	}
	return nil
}

func runGet(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.rest) != 1 {
		return fmt.Errorf("usage: parentcal get <universal-id>")
	}

	r, st, _, err := openRepo(f)
	if err != nil {
		return err
	}
	defer st.Close()

	ev, err := r.Get(context.Background(), f.rest[0])
	if err != nil {
		return err
	}
	printEvent(ev, f.jsonOut)
	return nil
}

func runDelete(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.rest) != 1 {
		return fmt.Errorf("usage: parentcal delete <universal-id>")
	}

	r, st, notifier, err := openRepo(f)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := r.Delete(context.Background(), f.rest[0]); err != nil {
		return err
	}
	notifier.Flush()
	fmt.Printf("Deleted %s\n", f.rest[0])
	return nil
}

func runReview(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	sub := "list"
	if len(f.rest) > 0 {
		sub = f.rest[0]
	}

	r, st, notifier, err := openRepo(f)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	switch sub {
	case "list":
		items, err := r.PendingReviews(ctx, f.family, f.limit)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("Review queue is empty.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("#%-4d conf=%.2f  %s\n      %q\n", item.ID, item.Confidence, item.Reason, item.RawText)
		}
		return nil

	case "approve", "reject":
		if len(f.rest) != 2 {
			return fmt.Errorf("usage: parentcal review %s <id>", sub)
		}
		id, err := strconv.ParseInt(f.rest[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid review id %q", f.rest[1])
		}

		if sub == "reject" {
			if err := r.RejectReview(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Rejected #%d\n", id)
			return nil
		}

		res, err := r.ApproveReview(ctx, id)
		if err != nil {
			return err
		}
		notifier.Flush()
		fmt.Printf("Approved #%d, stored as %s\n", id, res.Event.UniversalID)
		return nil

	default:
		return fmt.Errorf("usage: parentcal review [list|approve <id>|reject <id>]")
	}
}

func runSweep(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	r, st, _, err := openRepo(f)
	if err != nil {
		return err
	}
	defer st.Close()

	sweepOnce := func() {
		removed, err := r.Sweep(context.Background(), f.family)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
			return
		}
		fmt.Printf("%s sweep: removed %d duplicate(s)\n", time.Now().Format(time.RFC3339), removed)
	}

	if f.every == "" {
		sweepOnce()
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(f.every, sweepOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", f.every, err)
	}
	fmt.Printf("Sweeping on schedule %q. Ctrl-C to stop.\n", f.every)
	c.Run()
	return nil
}

func runStats(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	_, st, _, err := openRepo(f)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Events:          %d\n", stats.EventCount)
	fmt.Printf("Families:        %d\n", stats.FamilyCount)
	fmt.Printf("Pending reviews: %d\n", stats.PendingReviews)
	if stats.DBSizeBytes > 0 {
		fmt.Printf("DB size:         %.1f KiB\n", float64(stats.DBSizeBytes)/1024)
	}
	return nil
}

func runConfig(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	resolved, err := config.ResolveConfig(f.resolve)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runMetrics(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	fmt.Printf("Serving Prometheus metrics on %s/metrics\n", f.addr)
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(f.addr, nil)
}

func printEvent(ev *event.StandardizedEvent, asJSON bool) {
	if asJSON {
		out, err := json.MarshalIndent(ev, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "encoding event: %v\n", err)
			return
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("  Title:      %s\n", ev.Title)
	fmt.Printf("  Type:       %s\n", ev.EventType)
	fmt.Printf("  Start:      %s (%s)\n", ev.Start.DateTime.Format("Mon Jan 2 2006 15:04"), ev.Start.TimeZone)
	if ev.Location != "" {
		fmt.Printf("  Location:   %s\n", ev.Location)
	}
	if ev.ChildName != "" {
		fmt.Printf("  Child:      %s\n", ev.ChildName)
	}
	if ev.HostName != "" {
		fmt.Printf("  Host:       %s\n", ev.HostName)
	}
	if ev.Recurrence != "" {
		fmt.Printf("  Recurrence: %s\n", ev.Recurrence)
	}
	fmt.Printf("  Confidence: %.2f\n", ev.Confidence)
	fmt.Printf("  ID:         %s\n", ev.UniversalID)
}

func printUsage() {
	fmt.Printf(`parentcal %s — family calendar event extraction

Usage:
  parentcal <command> [arguments]

Commands:
  extract <text>      Run extraction only and print the result as JSON
  add <text>          Extract, standardize, and store an event
  ocr <image-url>     Recognize text in an image, then extract and store
  list                List stored events for a family
  get <id>            Show one event by universal ID
  delete <id>         Delete an event
  review              Manage the low-confidence review queue
  sweep               Merge duplicate events missed by the insert check
  stats               Show store statistics
  config              Print resolved configuration with provenance
  metrics             Serve Prometheus metrics over HTTP
  version             Print version

Common Flags:
  --family <id>       Family the operation applies to
  --child Name[=id]   Known child, repeatable
  --db <path>         Database path
  --tz <zone>         IANA timezone for extracted times
  --threshold <0..1>  Confidence below which events go to review
  --config <path>     Config file (default ~/.parentcal/config.yaml)
  --json              Print events as JSON

Command Flags:
  ocr:    --endpoint <url> --enhanced
  sweep:  --every <cron spec>
  list:   --limit <n>
  metrics: --addr <host:port>
`, version)
}

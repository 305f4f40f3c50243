package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rohmanhakim/gridcrawl/internal/blobstore"
	"github.com/rohmanhakim/gridcrawl/internal/broker"
	"github.com/rohmanhakim/gridcrawl/internal/config"
	"github.com/rohmanhakim/gridcrawl/internal/crawlengine"
	"github.com/rohmanhakim/gridcrawl/internal/dispatcher"
	"github.com/rohmanhakim/gridcrawl/internal/docstore"
	"github.com/rohmanhakim/gridcrawl/internal/fetcher"
	"github.com/rohmanhakim/gridcrawl/internal/indexer"
	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/internal/robots"
	"github.com/rohmanhakim/gridcrawl/internal/searchapi"
	"github.com/rohmanhakim/gridcrawl/internal/searchindex"
	"github.com/rohmanhakim/gridcrawl/internal/supervisor"
	"github.com/rohmanhakim/gridcrawl/pkg/timeutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile string

	crawlURL        string
	crawlDepth      int
	crawlPoliteness float64

	searchKeywords string
	searchMode     string
	searchSize     int

	listenAddr string

	inMemory bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gridcrawl",
	Short: "A distributed web crawler with indexed full-text search.",
	Long: `gridcrawl dispatches, executes, and indexes bounded-depth web
crawls across a pool of worker nodes coordinated through a message
broker, a shared task store, and a full-text search index.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "in-memory", false, "use in-memory broker/store/index/blob adapters instead of the configured real ones")

	crawlCmd.Flags().StringVarP(&crawlURL, "url", "u", "", "seed URL to crawl (required)")
	crawlCmd.Flags().IntVarP(&crawlDepth, "depth", "d", -1, "maximum link depth from the seed URL (defaults to the configured default depth)")
	crawlCmd.Flags().Float64VarP(&crawlPoliteness, "politeness", "p", -1, "crawl-delay fallback in seconds (defaults to the configured default politeness)")
	_ = crawlCmd.MarkFlagRequired("url")

	searchCmd.Flags().StringVarP(&searchKeywords, "keywords", "k", "", "search keywords (required)")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", string(searchindex.ModeMatch), "search mode: match, phrase, or boolean")
	searchCmd.Flags().IntVarP(&searchSize, "size", "n", 10, "maximum number of results")
	_ = searchCmd.MarkFlagRequired("keywords")

	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address for the search API")

	rootCmd.AddCommand(crawlCmd, searchCmd, statusCmd, monitorCmd, workerCmd, serveCmd)
}

// InitConfig reads the config file if one was given via --config-file,
// falling back to FromEnv(), and exits the process on failure. It mirrors
// this repo's InitConfig/InitConfigWithError split so tests can exercise
// the error path without os.Exit.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError reads the config file if one was given via
// --config-file, falling back to FromEnv().
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}
	return config.FromEnv()
}

func ResetFlags() {
	cfgFile = ""
	crawlURL = ""
	crawlDepth = -1
	crawlPoliteness = -1
	searchKeywords = ""
	searchMode = string(searchindex.ModeMatch)
	searchSize = 10
	listenAddr = ":8080"
	inMemory = false
}

func SetConfigFileForTest(path string)      { cfgFile = path }
func SetCrawlURLForTest(url string)         { crawlURL = url }
func SetCrawlDepthForTest(depth int)        { crawlDepth = depth }
func SetCrawlPolitenessForTest(p float64)   { crawlPoliteness = p }
func SetSearchKeywordsForTest(k string)     { searchKeywords = k }
func SetSearchModeForTest(m string)         { searchMode = m }
func SetSearchSizeForTest(n int)            { searchSize = n }
func SetInMemoryForTest(v bool)             { inMemory = v }

// --------------------------------------------------------------------
// Shared wiring
// --------------------------------------------------------------------

// deps bundles every external collaborator a subcommand might need. Each
// field is either a real ecosystem-library adapter or, with --in-memory,
// the matching in-process fake — the same port/adapter seam the engine,
// dispatcher, and supervisor are built against.
type deps struct {
	cfg    config.Config
	sink   obslog.Sink
	clock  timeutil.Clock
	broker broker.Broker
	store  docstore.Store
	index  searchindex.Index
	blob   blobstore.Store
}

func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	sink := obslog.NewLogfmtSink(os.Stderr)
	clock := timeutil.NewRealClock()

	if inMemory {
		idx := searchindex.NewMemIndex()
		if err := idx.EnsureIndex(ctx); err != nil {
			return nil, fmt.Errorf("ensure in-memory index: %w", err)
		}
		return &deps{
			cfg:    cfg,
			sink:   sink,
			clock:  clock,
			broker: broker.NewInMemoryBroker(),
			store:  docstore.NewMemStore(),
			index:  idx,
			blob:   blobstore.NewMemStore(),
		}, nil
	}

	b, err := broker.NewAMQPBroker(cfg.BrokerURL())
	if err != nil {
		return nil, fmt.Errorf("connect broker: %w", err)
	}
	store, err := docstore.NewPGStore(ctx, cfg.DocstoreURL())
	if err != nil {
		return nil, fmt.Errorf("connect docstore: %w", err)
	}
	idx, err := searchindex.NewESIndex(cfg.IndexURL())
	if err != nil {
		return nil, fmt.Errorf("connect index: %w", err)
	}
	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	blob, err := blobstore.NewS3Store(ctx, cfg.BlobBucket())
	if err != nil {
		return nil, fmt.Errorf("connect blob store: %w", err)
	}

	return &deps{cfg: cfg, sink: sink, clock: clock, broker: b, store: store, index: idx, blob: blob}, nil
}

// --------------------------------------------------------------------
// crawl
// --------------------------------------------------------------------

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Dispatch a new crawl task for a seed URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := InitConfig()
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cfg)
		if err != nil {
			return err
		}

		depth := crawlDepth
		if depth < 0 {
			depth = cfg.DefaultDepth()
		}
		politeness := crawlPoliteness
		if politeness < 0 {
			politeness = cfg.DefaultPoliteness().Seconds()
		}

		disp := dispatcher.New(d.broker, d.store, d.clock)
		taskID, err := disp.EnqueueCrawl(ctx, crawlURL, depth, politeness)
		if err != nil {
			return fmt.Errorf("enqueue crawl: %w", err)
		}

		fmt.Printf("task_id: %s\n", taskID)
		return nil
	},
}

// --------------------------------------------------------------------
// search
// --------------------------------------------------------------------

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the full-text index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := InitConfig()
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cfg)
		if err != nil {
			return err
		}

		mode := searchindex.Mode(searchMode)
		switch mode {
		case searchindex.ModeMatch, searchindex.ModePhrase, searchindex.ModeBoolean:
		default:
			return fmt.Errorf("invalid --mode %q: must be match, phrase, or boolean", searchMode)
		}

		hits, err := d.index.Search(ctx, mode, searchKeywords, searchSize)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		urls := make([]string, 0, len(hits))
		for _, h := range hits {
			fmt.Println(h.URL)
			urls = append(urls, h.URL)
		}
		_ = d.store.AppendSearchHistory(ctx, docstore.SearchHistoryRecord{
			Keywords:  searchKeywords,
			Mode:      string(mode),
			Size:      searchSize,
			Results:   urls,
			Timestamp: d.clock.Now(),
		})
		return nil
	},
}

// --------------------------------------------------------------------
// status
// --------------------------------------------------------------------

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print crawl and indexing progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := InitConfig()
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cfg)
		if err != nil {
			return err
		}

		pagesCrawled, err := d.store.CountPages(ctx)
		if err != nil {
			return fmt.Errorf("count pages: %w", err)
		}
		pagesIndexed, err := d.index.Count(ctx)
		if err != nil {
			return fmt.Errorf("count indexed pages: %w", err)
		}
		queued, err := d.store.CountByStatus(ctx, docstore.StatusQueued)
		if err != nil {
			return fmt.Errorf("count queued: %w", err)
		}
		started, err := d.store.CountByStatus(ctx, docstore.StatusStarted)
		if err != nil {
			return fmt.Errorf("count started: %w", err)
		}
		completed, err := d.store.CountByStatus(ctx, docstore.StatusCompleted)
		if err != nil {
			return fmt.Errorf("count completed: %w", err)
		}
		failed, err := d.store.CountByStatus(ctx, docstore.StatusFailed)
		if err != nil {
			return fmt.Errorf("count failed: %w", err)
		}
		timedOut, err := d.store.CountByStatus(ctx, docstore.StatusTimeout)
		if err != nil {
			return fmt.Errorf("count timeout: %w", err)
		}
		requeued, err := d.store.CountByStatus(ctx, docstore.StatusRequeued)
		if err != nil {
			return fmt.Errorf("count requeued: %w", err)
		}

		brokerUp := d.broker.Ping(ctx) == nil
		indexUp := d.index.Ping(ctx) == nil

		fmt.Printf("pages_crawled: %d\n", pagesCrawled)
		fmt.Printf("pages_indexed: %d\n", pagesIndexed)
		fmt.Printf("total_tasks: %d\n", queued+started+completed+failed+timedOut+requeued)
		fmt.Printf("active_crawlers: %d\n", started)
		fmt.Printf("broker_up: %t\n", brokerUp)
		fmt.Printf("index_up: %t\n", indexUp)
		return nil
	},
}

// --------------------------------------------------------------------
// monitor
// --------------------------------------------------------------------

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the supervisor's heartbeat and stale-task scan in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := InitConfig()
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cfg)
		if err != nil {
			return err
		}

		disp := dispatcher.New(d.broker, d.store, d.clock)
		sup := supervisor.New(d.broker, d.index, d.store, disp, d.clock, d.sink,
			cfg.HeartbeatInterval(), cfg.StaleScanInterval(), cfg.StaleAfter())

		sup.Run(ctx)
		return nil
	},
}

// --------------------------------------------------------------------
// worker
// --------------------------------------------------------------------

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume crawl messages from the broker and execute them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := InitConfig()
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cfg)
		if err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(d.sink, cfg.UserAgent())
		robotsFetcher := robots.NewRobotsFetcher(d.sink, cfg.UserAgent(), nil)
		handoff := indexer.NewHandoff(d.index, d.store, d.sink, d.clock, time.Now().UnixNano())
		engine := crawlengine.New(f, robotsFetcher, d.store, d.blob, handoff, d.clock, d.sink, cfg.UserAgent())

		return d.broker.Consume(ctx, func(ctx context.Context, msg broker.CrawlMessage) error {
			return engine.RunTask(ctx, msg.TaskID, msg.URL, msg.Depth, msg.Politeness)
		})
	},
}

// --------------------------------------------------------------------
// serve
// --------------------------------------------------------------------

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP search API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := InitConfig()
		ctx := cmd.Context()

		d, err := buildDeps(ctx, cfg)
		if err != nil {
			return err
		}

		api := searchapi.New(d.index, d.store, d.clock, d.sink)
		r := gin.New()
		r.Use(gin.Recovery())
		api.Register(r)

		fmt.Printf("listening on %s\n", listenAddr)
		return http.ListenAndServe(listenAddr, r)
	},
}

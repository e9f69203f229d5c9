package main

import (
	"context"
	"flag"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitechat/bitechat/api"
	"github.com/bitechat/bitechat/bus"
	"github.com/bitechat/bitechat/config"
	"github.com/bitechat/bitechat/token"
)

var (
	flagConfig  = flag.String("config", "", "path to yaml config file")
	flagBaseURL = flag.String("base-url", "", "API base URL including /api/v1, overrides config")
	flagDataDir = flag.String("data-dir", "", "dir for the token store and profiler output, overrides config")

	flagMetricsAddr    = flag.String("metrics-addr", "", "expose prometheus /metrics on this address, overrides config")
	flagDisableMetrics = flag.Bool("disable-metrics", false, "disable the metrics listener even when configured")
)

func main() {
	flag.Parse()

	// NOTE: os.Exit() does not call defers.
	os.Exit(run())
}

func run() int {
	defer glog.Flush()

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return errorf("config: %v", err)
	}
	if *flagBaseURL != "" {
		cfg.Server.BaseURL = *flagBaseURL
	}
	if *flagDataDir != "" {
		cfg.DataDir = *flagDataDir
	}
	if *flagMetricsAddr != "" {
		cfg.Metrics.Addr = *flagMetricsAddr
	}

	if v := validateConfig(cfg); v > 0 {
		return v
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return errorf("data dir: error create dir `%s`: %v", cfg.DataDir, err)
	}

	tokens, err := token.Open(filepath.Join(cfg.DataDir, "bitechat.db"))
	if err != nil {
		return errorf("token store: %v", err)
	}
	defer tokens.Close()

	authBus := bus.New()
	client := api.NewClient(cfg.Server.BaseURL, tokens, authBus)

	if cfg.Metrics.Addr != "" && !*flagDisableMetrics {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{},
		))
		go func() {
			glog.Infof("metrics on http://%s/metrics", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				glog.Errorf("metrics listener: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newRepl(ctx, client, tokens, authBus, cfg)

	replDone := make(chan struct{})
	go func() {
		r.loop()
		close(replDone)
	}()

	pid := os.Getpid()
	glog.Infof("bitechat client started, pid %d", pid)
	glog.V(5).Infof("`kill -USR1 %d` to dump goroutines; `kill -USR2 %d` to start/stop profiler", pid, pid)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGTERM, syscall.SIGINT)

	var prof *Profiler

	for {
		select {
		case <-replDone:
			r.shutdown()
			if prof != nil {
				prof.Stop()
			}
			return 0
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGUSR1:
				dumpGoroutines(cfg.DataDir)
			case syscall.SIGUSR2:
				if prof == nil {
					prof = StartProfiler(cfg.DataDir)
				} else {
					prof.Stop()
					prof = nil
				}
			case syscall.SIGTERM, syscall.SIGINT:
				glog.Infof("received signal `%s`, stopping", sig)
				r.shutdown()
				if prof != nil {
					prof.Stop()
				}
				cancel()
				return 0
			}
		}
	}
}

func validateConfig(cfg *config.Config) int {
	if cfg.Server.BaseURL == "" {
		return errorf("server.base_url is required")
	}
	u, err := url.Parse(cfg.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return errorf("server.base_url: expect http(s) URL, got `%s`", cfg.Server.BaseURL)
	}
	if cfg.DataDir == "" {
		return errorf("data_dir is required")
	}
	if cfg.Chat.PageSize == 0 || cfg.Chat.PageSize > 100 {
		return errorf("chat.page_size MUST in range [1, 100]")
	}
	return 0
}

func errorf(fmt string, args ...interface{}) int {
	glog.Errorf(fmt, args...)
	return 1
}

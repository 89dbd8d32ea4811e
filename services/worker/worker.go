package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"sjsage522/buildorderworker/internal/crawler"
	"sjsage522/buildorderworker/logger"
	"sjsage522/buildorderworker/services/exporter"
	"sjsage522/buildorderworker/services/publisher"
)

// PublishKey is the stream field holding a base64 JSON match record
const PublishKey = "b64_buildorder"

// Options configures a Worker
type Options struct {
	// OutputPath is where every snapshot is exported
	OutputPath string
	// Interval between runs; zero runs once
	Interval time.Duration
	// Summary receives the per-run table; nil disables it
	Summary io.Writer
}

// Worker runs crawls and hands their records to the exporter and publisher
type Worker struct {
	ctx       context.Context
	crawler   crawler.Crawler
	players   []crawler.PlayerTag
	exporter  exporter.Exporter
	publisher publisher.Publisher
	opts      Options
	log       *logger.Logger
}

// NewWorker creates a new worker. pub may be nil.
func NewWorker(
	ctx context.Context,
	c crawler.Crawler,
	players []crawler.PlayerTag,
	exp exporter.Exporter,
	pub publisher.Publisher,
	opts Options,
) *Worker {
	return &Worker{
		ctx:       ctx,
		crawler:   c,
		players:   players,
		exporter:  exp,
		publisher: pub,
		opts:      opts,
		log:       logger.ForWorker(),
	}
}

// Start runs once, or repeatedly every Interval until the context ends
func (w *Worker) Start() error {
	if w.opts.Interval <= 0 {
		_, err := w.RunOnce()
		return err
	}

	for {
		if _, err := w.RunOnce(); err != nil {
			w.log.Error().Err(err).Msg("run failed")
		}

		select {
		case <-w.ctx.Done():
			w.log.Info().Msg("worker stopped")
			return nil
		case <-time.After(w.opts.Interval):
		}
	}
}

// RunOnce performs one full crawl and writes its snapshot. A crawl with
// no records is reported and leaves the output file untouched.
func (w *Worker) RunOnce() (crawler.CrawlResult, error) {
	names := make([]string, 0, len(w.players))
	for _, p := range w.players {
		names = append(names, p.Name)
	}
	w.log.Info().Strs("players", names).Str("output", w.opts.OutputPath).Msg("starting crawl")

	result := w.crawler.Scrape(w.ctx, w.players)
	log := w.log.WithField("run_id", result.RunID)

	if len(result.Records) == 0 {
		log.Warn().
			Int("list_failures", result.Stats.ListFailures).
			Int("detail_failures", result.Stats.DetailFailures).
			Msg("no records collected, skipping export")
		return result, nil
	}

	if err := w.exporter.Export(result.Records, w.opts.OutputPath); err != nil {
		log.Error().Err(err).Msg("export failed")
		return result, err
	}
	log.Info().
		Int("records", len(result.Records)).
		Str("format", w.exporter.Format()).
		Str("path", w.opts.OutputPath).
		Msg("snapshot written")

	if w.publisher != nil {
		w.publish(log, result.Records)
	}

	if w.opts.Summary != nil {
		RenderSummary(w.opts.Summary, result)
	}
	return result, nil
}

// publish sends each record to the publisher and trims the streams after
func (w *Worker) publish(log *logger.Logger, records []crawler.MatchRecord) {
	failed := 0
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			failed++
			log.Error().Err(err).Int("replay_id", r.ReplayID).Msg("failed to encode record")
			continue
		}
		if err := w.publisher.Publish(w.ctx, PublishKey, data); err != nil {
			failed++
			log.Error().Err(err).Int("replay_id", r.ReplayID).Msg("failed to publish record")
		}
	}

	if err := w.publisher.TrimStreams(w.ctx); err != nil {
		log.Error().Err(err).Msg("failed to trim streams")
	}
	log.Info().Int("published", len(records)-failed).Int("failed", failed).Msg("records published")
}

// RenderSummary writes a table of the run's records followed by a totals line
func RenderSummary(out io.Writer, result crawler.CrawlResult) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Replay", "Matchup", "Map", "Players", "Build steps"})

	for _, r := range result.Records {
		players := make([]string, 0, len(r.Players))
		steps := make([]string, 0, len(r.Players))
		for _, p := range r.Players {
			players = append(players, fmt.Sprintf("%s (%s)", p.Name, p.Race))
			steps = append(steps, strconv.Itoa(len(p.BuildOrder)))
		}
		t.AppendRow(table.Row{r.ReplayID, r.Matchup, r.Map, strings.Join(players, " vs "), strings.Join(steps, "/")})
	}

	t.AppendFooter(table.Row{"", "", "", "Total", len(result.Records)})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(out, "%d records from %d unique replays (%d list failures, %d detail failures) in %s\n",
		len(result.Records),
		result.Stats.Unique,
		result.Stats.ListFailures,
		result.Stats.DetailFailures,
		result.Stats.Duration.Round(time.Millisecond),
	)
}

package main

// Drives the overlay stack against an in-memory page host, either from a YAML
// scenario file or a built-in walkthrough:
//   go run ./cmd/overlay-sim -scenario scenario.yaml

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sentiment-scoop/internal/extension/analysisclient"
	"sentiment-scoop/internal/extension/authstate"
	"sentiment-scoop/internal/extension/navwatch"
	"sentiment-scoop/internal/extension/overlay"
	"sentiment-scoop/internal/extension/page"
	"sentiment-scoop/internal/extension/syncctl"
	"sentiment-scoop/internal/extension/videoid"
)

type scenario struct {
	StartURL        string `yaml:"start_url"`
	Token           string `yaml:"token"`
	BackendURL      string `yaml:"backend_url"`
	SettleDelayMs   int    `yaml:"settle_delay_ms"`
	PollIntervalMs  int    `yaml:"poll_interval_ms"`
	AliveIntervalMs int    `yaml:"alive_interval_ms"`
	Steps           []step `yaml:"steps"`
}

type step struct {
	Action string `yaml:"action"`
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	WaitMs int    `yaml:"wait_ms"`
}

func main() {
	scenarioPath := flag.String("scenario", "", "path to a YAML scenario; empty runs the built-in walkthrough")
	flag.Parse()

	sc := defaultScenario()
	if *scenarioPath != "" {
		raw, err := os.ReadFile(*scenarioPath)
		if err != nil {
			log.Fatalf("read scenario: %v", err)
		}
		if err := yaml.Unmarshal(raw, &sc); err != nil {
			log.Fatalf("parse scenario: %v", err)
		}
	}
	if sc.StartURL == "" {
		sc.StartURL = "https://www.youtube.com/watch?v=sim00000001"
	}

	run(sc)
}

func defaultScenario() scenario {
	return scenario{
		StartURL:        "https://www.youtube.com/watch?v=sim00000001",
		Token:           "sim-token",
		SettleDelayMs:   50,
		PollIntervalMs:  20,
		AliveIntervalMs: 500,
		Steps: []step{
			{Action: "push", URL: "https://www.youtube.com/watch?v=sim00000002", WaitMs: 200},
			{Action: "clear-token", WaitMs: 200},
			{Action: "set-token", Token: "sim-token", WaitMs: 200},
			{Action: "silent", URL: "https://www.youtube.com/watch?v=sim00000003", WaitMs: 300},
			{Action: "pop", URL: "https://www.youtube.com/watch?v=sim00000002", WaitMs: 200},
			{Action: "reload", WaitMs: 200},
		},
	}
}

func run(sc scenario) {
	ctx := context.Background()

	host := page.NewHost(sc.StartURL)
	comments := page.NewElement("div")
	comments.ID = overlay.CommentsSectionID
	host.Document().Append(host.Document().Body(), comments)

	store := page.NewMemoryKV()
	if sc.Token != "" {
		if err := store.Set(ctx, authstate.StorageKey, sc.Token); err != nil {
			log.Fatalf("seed token: %v", err)
		}
	}
	auth := authstate.New(store)
	if err := auth.Refresh(ctx); err != nil {
		log.Fatalf("auth refresh: %v", err)
	}

	ids := videoid.NewTracker(host, host)

	var analyzer overlay.Analyzer
	if sc.BackendURL != "" {
		analyzer = analysisclient.New(sc.BackendURL, auth)
	} else {
		analyzer = cannedAnalyzer{}
	}

	ui := overlay.New(host.Document(), analyzer, ids.Current)
	ctrl := syncctl.New(ids, auth, ui)

	cancelAuth := auth.OnChange(func(token string) {
		logf("auth changed (token set: %t)", token != "")
		ctrl.AuthChanged(ctx)
	})
	defer cancelAuth()

	watcher := navwatch.New(host, host.Document(), func() bool {
		return host.Document().FindByID(overlay.CommentsSectionID) != nil
	}, navwatch.Config{
		SettleDelay:   time.Duration(sc.SettleDelayMs) * time.Millisecond,
		PollInterval:  time.Duration(sc.PollIntervalMs) * time.Millisecond,
		AliveInterval: time.Duration(sc.AliveIntervalMs) * time.Millisecond,
	}, func() {
		ctrl.Evaluate(ctx)
	})
	watcher.Start()
	defer watcher.Stop()

	ctrl.Evaluate(ctx)
	report(host, ui, ctrl, "initial")

	for i, st := range sc.Steps {
		applyStep(ctx, st, host, store, ui)
		wait := time.Duration(st.WaitMs) * time.Millisecond
		if wait <= 0 {
			wait = 200 * time.Millisecond
		}
		time.Sleep(wait)
		ui.Wait()
		report(host, ui, ctrl, fmt.Sprintf("step %d (%s)", i+1, st.Action))
	}

	ctrl.Shutdown()
	report(host, ui, ctrl, "shutdown")
}

func applyStep(ctx context.Context, st step, host *page.Host, store *page.MemoryKV, ui *overlay.Renderer) {
	switch st.Action {
	case "push":
		host.PushState(st.URL)
	case "replace":
		host.ReplaceState(st.URL)
	case "pop":
		host.PopTo(st.URL)
	case "silent":
		host.SilentNavigate(st.URL)
	case "set-token":
		if err := store.Set(ctx, authstate.StorageKey, st.Token); err != nil {
			logf("set token: %v", err)
		}
	case "clear-token":
		if err := store.Delete(ctx, authstate.StorageKey); err != nil {
			logf("clear token: %v", err)
		}
	case "reload":
		ui.ForceReload(ctx)
	case "wait":
		// The post-step sleep handles it.
	default:
		logf("unknown action %q skipped", st.Action)
	}
}

func report(host *page.Host, ui *overlay.Renderer, ctrl *syncctl.Controller, label string) {
	logf("%s: url=%s variant=%q render=%s controller=%s",
		label, host.Location(), ui.Variant(), ui.State(), ctrl.State())
}

func logf(format string, args ...any) {
	log.Printf("overlay-sim: "+format, args...)
}

// cannedAnalyzer stands in for the backend so the simulator works offline.
type cannedAnalyzer struct{}

func (cannedAnalyzer) Analyze(ctx context.Context, videoID string, forceRefresh bool) analysisclient.Result {
	return analysisclient.Result{
		Summary:             "Viewers are broadly positive about " + videoID,
		Verdict:             1,
		TotalComments:       "1234",
		MostHelpfulComments: []string{"Great breakdown at 2:15", "The sources are linked in the description"},
		CommentsData:        []int{90, 55, 25, 10},
		CreatedAt:           time.Now().UTC().Format(time.RFC3339),
	}
}

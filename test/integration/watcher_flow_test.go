package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"renjiwatch/internal/checkpoint"
	"renjiwatch/internal/config"
	"renjiwatch/internal/crawler"
	"renjiwatch/internal/evaluator"
	"renjiwatch/internal/formatter"
	"renjiwatch/internal/logger"
	"renjiwatch/internal/notifier"
)

const listingTemplate = `
<html><body>
<div ya="20"><div><div><table>
  <tr><td>
    <a href="/news/123">住院部搬迁公告</a>
    <span style="float:right">【%s】</span>
  </td></tr>
  <tr><td>
    <a href="/news/122">门诊时间调整</a>
    <span style="float:right">【2026-01-05】</span>
  </td></tr>
</table></div></div></div>
</body></html>
`

func testConfig(t *testing.T, sourceURL string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Watcher.SourceURL = sourceURL
	cfg.Watcher.CheckpointFile = filepath.Join(t.TempDir(), "checkpoint.txt")
	cfg.Watcher.Debug = true
	cfg.Mail = config.MailConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 465,
		SendAddr: "bot@example.com",
		SendPass: "hunter2",
		RecvAddr: "vip@example.com",
		SendName: "RenjiNotification",
		RecvName: "Anonymous VIP",
	}

	return cfg
}

func TestWatcherFlow_UpdateThenDuplicateRun(t *testing.T) {
	recent := time.Now().Add(-time.Hour).Format("2006-01-02")
	page := fmt.Sprintf(listingTemplate, recent)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	log := logger.NewLogger("error")

	// 1. Fetch
	feed, err := crawler.NewFetcher(cfg, log).Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(feed) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(feed))
	}

	// 2. Evaluate: no checkpoint yet, recent leading record.
	store := checkpoint.NewStore(cfg.Watcher.CheckpointFile, log)
	last, _ := store.Read()

	eval := evaluator.New(cfg.Watcher.CheckIntervalHours, log)

	decision, err := eval.Evaluate(feed, last)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if decision.Outcome != evaluator.OutcomeNotifyUpdate {
		t.Fatalf("Expected NOTIFY_UPDATE, got %s", decision.Outcome)
	}

	// 3. Notify through the debug sink, then persist.
	body, err := formatter.RenderHTML(feed)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	var sink bytes.Buffer

	mailer := notifier.NewMailerWithSink(cfg.Mail, cfg.Watcher.Debug, &sink, log)
	if !mailer.Send(cfg.Mail.SubjectOr(notifier.SubjectUpdate), body, false) {
		t.Fatal("Expected debug send to succeed")
	}

	if !strings.Contains(sink.String(), "Subject: Renji Subscription") {
		t.Errorf("Unexpected debug output:\n%s", sink.String())
	}

	if err := store.Write(decision.Digest); err != nil {
		t.Fatalf("Checkpoint write failed: %v", err)
	}

	// 4. Second run over identical content must skip.
	last, found := store.Read()
	if !found {
		t.Fatal("Expected persisted checkpoint")
	}

	repeat, err := eval.Evaluate(feed, last)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if repeat.Outcome != evaluator.OutcomeSkip {
		t.Errorf("Expected SKIP on duplicate run, got %s", repeat.Outcome)
	}
}

func TestWatcherFlow_StructureMissTriggersFailureMail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>redesigned page</p></body></html>"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	log := logger.NewLogger("error")

	feed, err := crawler.NewFetcher(cfg, log).Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(feed) != 0 {
		t.Fatalf("Expected empty feed, got %d records", len(feed))
	}

	decision, err := evaluator.New(cfg.Watcher.CheckIntervalHours, log).Evaluate(feed, "")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if decision.Outcome != evaluator.OutcomeNotifyFailure {
		t.Fatalf("Expected NOTIFY_FAILURE, got %s", decision.Outcome)
	}

	body, err := formatter.RenderHTML(feed)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	if !strings.Contains(body, ">[]</code>") {
		t.Error("Expected empty JSON array body")
	}

	var sink bytes.Buffer

	mailer := notifier.NewMailerWithSink(cfg.Mail, true, &sink, log)
	if !mailer.Send(cfg.Mail.SubjectOr(notifier.SubjectFailure), body, true) {
		t.Fatal("Expected debug send to succeed")
	}

	out := sink.String()
	if !strings.Contains(out, "Subject: Renji Subscription Error") {
		t.Errorf("Expected failure subject, got:\n%s", out)
	}

	if !strings.Contains(out, "text/html") {
		t.Errorf("Expected HTML failure mail, got:\n%s", out)
	}
}

func TestWatcherFlow_StaleFeedSkips(t *testing.T) {
	old := time.Now().Add(-72 * time.Hour).Format("2006-01-02")
	page := fmt.Sprintf(listingTemplate, old)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	log := logger.NewLogger("error")

	feed, err := crawler.NewFetcher(cfg, log).Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	decision, err := evaluator.New(cfg.Watcher.CheckIntervalHours, log).Evaluate(feed, "")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if decision.Outcome != evaluator.OutcomeSkip {
		t.Errorf("Expected SKIP for stale feed, got %s", decision.Outcome)
	}
}

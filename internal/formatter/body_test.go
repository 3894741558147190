package formatter

import (
	"strings"
	"testing"
	"time"

	"renjiwatch/internal/models"
)

func TestRenderHTML_WrapsFeedJSON(t *testing.T) {
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	title := "门诊公告"
	feed := models.Feed{{Title: &title, Date: &date}}

	body, err := RenderHTML(feed)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="zh_CN">`,
		`<code class="prettyprint">`,
		"门诊公告",
		`"date": "2026-08-29"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
}

func TestRenderHTML_EmptyFeedIsEmptyArray(t *testing.T) {
	body, err := RenderHTML(nil)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	if !strings.Contains(body, ">[]</code>") {
		t.Errorf("Expected empty JSON array body, got:\n%s", body)
	}
}

func TestRenderTable_AlignsCJKColumns(t *testing.T) {
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	short := "短"
	long := "比较长的公告标题"
	link := "https://www.renji.com//news/9"
	feed := models.Feed{
		{Title: &short, Date: &date, Link: &link},
		{Title: &long},
	}

	table := RenderTable(feed)
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}

	if !strings.HasPrefix(lines[0], "DATE") {
		t.Errorf("Expected header row, got %q", lines[0])
	}

	// Absent fields render as placeholders.
	if !strings.Contains(lines[2], "-") {
		t.Errorf("Expected placeholder cells in %q", lines[2])
	}

	if !strings.Contains(table, link) {
		t.Error("Expected link column to carry the full URL")
	}
}

func TestRenderTable_EmptyFeed(t *testing.T) {
	table := RenderTable(nil)

	if !strings.HasPrefix(table, "DATE") {
		t.Errorf("Expected header-only table, got %q", table)
	}

	if len(strings.Split(strings.TrimRight(table, "\n"), "\n")) != 1 {
		t.Errorf("Expected a single header line, got %q", table)
	}
}

// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"errors"
	"testing"
	"time"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
)

func TestParseTimeFlag(t *testing.T) {
	now := time.Date(2026, 8, 11, 12, 0, 0, 0, time.UTC)

	got, err := parseTimeFlag("", now)
	if err != nil || !got.IsZero() {
		t.Errorf("empty: got (%v, %v), want zero time", got, err)
	}

	got, err = parseTimeFlag("36h", now)
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if want := now.Add(-36 * time.Hour); !got.Equal(want) {
		t.Errorf("duration: got %v, want %v", got, want)
	}

	got, err = parseTimeFlag("2026-08-01", now)
	if err != nil {
		t.Fatalf("date: %v", err)
	}
	if want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("date: got %v, want %v", got, want)
	}

	got, err = parseTimeFlag("2026-08-01T09:30:00Z", now)
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if want := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("rfc3339: got %v, want %v", got, want)
	}

	if _, err := parseTimeFlag("next tuesday", now); err == nil {
		t.Error("parseTimeFlag accepted garbage")
	}
}

func TestParseLabels(t *testing.T) {
	labels, err := parseLabels([]string{"region=eu-central", "channel=nightly"})
	if err != nil {
		t.Fatalf("parseLabels: %v", err)
	}
	if labels["region"] != "eu-central" || labels["channel"] != "nightly" {
		t.Errorf("labels: got %v", labels)
	}

	// Values may contain "=".
	labels, err = parseLabels([]string{"build=tag=v1.2"})
	if err != nil {
		t.Fatalf("parseLabels: %v", err)
	}
	if labels["build"] != "tag=v1.2" {
		t.Errorf("value with equals: got %q", labels["build"])
	}

	if _, err := parseLabels([]string{"no-separator"}); err == nil {
		t.Error("parseLabels accepted a pair without =")
	}
	if _, err := parseLabels([]string{"=value"}); err == nil {
		t.Error("parseLabels accepted an empty key")
	}
	if labels, err := parseLabels(nil); err != nil || labels != nil {
		t.Errorf("nil input: got (%v, %v), want (nil, nil)", labels, err)
	}
}

func TestBuildFilter(t *testing.T) {
	now := time.Date(2026, 8, 11, 12, 0, 0, 0, time.UTC)
	params := historyParams{
		Kind:       "index",
		Executable: "ingestd",
		Search:     "len is 3",
		Labels:     []string{"region=eu-central"},
		Since:      "24h",
		Limit:      50,
	}

	filter, err := buildFilter(&params, now)
	if err != nil {
		t.Fatalf("buildFilter: %v", err)
	}
	if filter.Kind != "index" {
		t.Errorf("Kind: got %q", filter.Kind)
	}
	if filter.Executable != "ingestd" {
		t.Errorf("Executable: got %q", filter.Executable)
	}
	if filter.Search != "len is 3" {
		t.Errorf("Search: got %q", filter.Search)
	}
	if filter.Labels["region"] != "eu-central" {
		t.Errorf("Labels: got %v", filter.Labels)
	}
	if want := now.Add(-24 * time.Hour); !filter.Since.Equal(want) {
		t.Errorf("Since: got %v, want %v", filter.Since, want)
	}
	if !filter.Until.IsZero() {
		t.Errorf("Until: got %v, want zero", filter.Until)
	}
	if filter.Limit != 50 {
		t.Errorf("Limit: got %d", filter.Limit)
	}
}

func TestBuildFilterRejectsUnknownKind(t *testing.T) {
	params := historyParams{Kind: "segfault"}

	_, err := buildFilter(&params, time.Now())
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Category != cli.CategoryValidation {
		t.Fatalf("unknown kind: got %v, want validation", err)
	}
}

func TestBuildFilterRejectsBadSince(t *testing.T) {
	params := historyParams{Since: "yesterdayish"}

	_, err := buildFilter(&params, time.Now())
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Category != cli.CategoryValidation {
		t.Fatalf("bad since: got %v, want validation", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short): got %q", got)
	}
	if got := truncate("exactly-10", 10); got != "exactly-10" {
		t.Errorf("truncate at limit: got %q", got)
	}
	got := truncate("a very long fault message indeed", 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncate length: got %d runes (%q)", len([]rune(got)), got)
	}
	if got[len(got)-len("…"):] != "…" {
		t.Errorf("truncate marker: got %q", got)
	}
}

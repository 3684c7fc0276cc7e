// Package ingest reads scraper batch exports from the boundary into domain
// postings. Scraping itself lives outside this repository; the exchange
// format is a JSON file with one entry per scraped posting.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jobradar/job-radar/internal/posting"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// batchFile accepts both a bare JSON array of postings and the
// items-envelope some scrapers emit.
type batchFile struct {
	Items []map[string]any `json:"items"`
}

// Report summarizes one ingestion pass. Malformed entries never abort the
// batch: they are skipped and listed here instead.
type Report struct {
	Total    int
	Accepted int
	Updated  int
	Skipped  []SkippedEntry
}

type SkippedEntry struct {
	Index  int
	ID     string
	Reason string
}

// FromFile reads a scraper export. Duplicate posting ids within the batch
// collapse to the last occurrence, matching the update semantics of
// re-scrapes.
func FromFile(path string, logger *zap.Logger) (*posting.Postings, *Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading postings file: %w", err)
	}

	items, err := decodeItems(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing postings file %s: %w", path, err)
	}

	report := &Report{Total: len(items)}
	postings := &posting.Postings{}

	for idx, raw := range items {
		p, err := decodePosting(raw)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedEntry{Index: idx, Reason: err.Error()})
			logger.Warn("skipping malformed posting",
				zap.Int("index", idx),
				zap.Error(err),
			)
			continue
		}

		if reason := validate(p); reason != "" {
			report.Skipped = append(report.Skipped, SkippedEntry{Index: idx, ID: p.ID, Reason: reason})
			logger.Warn("skipping invalid posting",
				zap.Int("index", idx),
				zap.String("posting_id", p.ID),
				zap.String("reason", reason),
			)
			continue
		}

		if postings.FindByID(p.ID) != nil {
			report.Updated++
		}
		postings.Upsert(p)
	}

	report.Accepted = postings.Len()

	logger.Info("ingested postings batch",
		zap.String("path", path),
		zap.Int("total", report.Total),
		zap.Int("accepted", report.Accepted),
		zap.Int("updated_in_batch", report.Updated),
		zap.Int("skipped", len(report.Skipped)),
	)

	return postings, report, nil
}

func decodeItems(data []byte) ([]map[string]any, error) {
	var envelope batchFile
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Items != nil {
		return envelope.Items, nil
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func decodePosting(raw map[string]any) (*posting.Posting, error) {
	var p posting.Posting
	cfg := &mapstructure.DecoderConfig{
		Result:  &p,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	return &p, nil
}

// validate enforces the minimum a posting needs to participate in training
// and matching. Everything else (location, timestamps) is optional display
// metadata.
func validate(p *posting.Posting) string {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return "missing posting id"
	case strings.TrimSpace(p.Title) == "":
		return "missing title"
	case strings.TrimSpace(p.Company) == "":
		return "missing company"
	default:
		return ""
	}
}

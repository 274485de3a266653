package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/impactlens/dashboard-bff/internal/utils"
	"github.com/tidwall/gjson"
)

// DefaultReportType tags entries whose upstream payload carries no type at
// all.
const DefaultReportType = "business-overview"

// Field alias tables, in order of precedence. These encode every name the
// backend has used for each attribute across its history.
var (
	idFields        = []string{"id", "report_id"}
	typeFields      = []string{"report_type", "type", "kind"}
	statusFields    = []string{"status", "state", "phase"}
	createdAtFields = []string{"created_at", "createdAt", "created", "timestamp", "generated_at", "date"}
	csvURLFields    = []string{"csv_url", "csvUrl", "csv"}
	jsonURLFields   = []string{"json_url", "jsonUrl", "json"}

	// The generic export link predates per-format URLs and only ever
	// pointed at a PDF, so it backstops the dedicated field.
	pdfURLFields = []string{"pdf_url", "pdfUrl", "export_link", "exportLink"}
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer converts heterogeneous backend report payloads into ordered
// Report view models. Normalization is pure: no I/O, and a fixed clock
// yields identical output for identical input.
type Normalizer struct {
	nowTime     func() time.Time
	defaultType string
}

type NormalizerOption func(*Normalizer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.nowTime = nowFunc
	}
}

// WithDefaultType overrides the tag applied to untyped entries.
func WithDefaultType(reportType string) NormalizerOption {
	return func(n *Normalizer) {
		n.defaultType = reportType
	}
}

func NewNormalizer(options ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		nowTime:     time.Now,
		defaultType: DefaultReportType,
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

// Normalize accepts a raw list payload in any of the shapes the backend
// has produced (bare array, {data:[...]}, {reports:[...]}) and returns the
// canonical reports in input order. Unrecognized shapes yield an empty
// slice, never an error.
func (n *Normalizer) Normalize(raw []byte) []Report {
	entries := listEntries(gjson.ParseBytes(raw))
	now := n.nowTime()

	normalized := make([]Report, 0, len(entries))
	for i, entry := range entries {
		normalized = append(normalized, n.normalizeEntry(entry, i, now))
	}
	return normalized
}

func listEntries(parsed gjson.Result) []gjson.Result {
	if parsed.IsArray() {
		return parsed.Array()
	}
	if data := parsed.Get("data"); data.IsArray() {
		return data.Array()
	}
	if reports := parsed.Get("reports"); reports.IsArray() {
		return reports.Array()
	}
	return nil
}

func (n *Normalizer) normalizeEntry(entry gjson.Result, index int, now time.Time) Report {
	id := firstString(entry, idFields)
	if id == "" {
		// Synthetic ids keep list keys unique but are not stable across
		// reloads; callers must not persist them.
		id = fmt.Sprintf("tmp-%d-%d", now.UnixMilli(), index)
	}

	return Report{
		ID:         id,
		ReportType: utils.FirstNonEmpty(firstString(entry, typeFields), n.defaultType),
		Status:     normalizeStatus(firstString(entry, statusFields)),
		CreatedAt:  normalizeTimestamp(entry, now),
		CSVURL:     optionalURL(entry, csvURLFields),
		JSONURL:    optionalURL(entry, jsonURLFields),
		PDFURL:     optionalURL(entry, pdfURLFields),
	}
}

// normalizeStatus lower-cases the upstream value and validates it against
// the canonical set. Unknown and missing statuses fall back to ready;
// observed product behavior, kept deliberately.
func normalizeStatus(raw string) Status {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if status.IsValid() {
		return status
	}
	return StatusReady
}

func normalizeTimestamp(entry gjson.Result, now time.Time) string {
	for _, field := range createdAtFields {
		value := entry.Get(field)
		if !value.Exists() {
			continue
		}
		if value.Type == gjson.Number {
			return unixTimestamp(value.Int()).Format(time.RFC3339)
		}
		str := value.String()
		if str == "" {
			continue
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, str); err == nil {
				return t.Format(time.RFC3339)
			}
		}
	}
	return now.Format(time.RFC3339)
}

// unixTimestamp interprets a numeric created-at as seconds, or as
// milliseconds when the magnitude makes seconds implausible.
func unixTimestamp(v int64) time.Time {
	if v > 1e12 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

func optionalURL(entry gjson.Result, fields []string) *string {
	url := firstString(entry, fields)
	if url == "" {
		return nil
	}
	return utils.Ptr(url)
}

func firstString(entry gjson.Result, fields []string) string {
	for _, field := range fields {
		if value := entry.Get(field); value.Type == gjson.String && value.String() != "" {
			return value.String()
		}
	}
	return ""
}

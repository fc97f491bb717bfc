package health

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is one named check in a report.
type Entry struct {
	Name   string
	Tags   []string
	Result Result
}

// Report is the merged outcome of one aggregation run.
type Report struct {
	// Status is the worst status of any entry.
	Status Status

	// TotalDuration is the wall time of the whole run.
	TotalDuration time.Duration

	// MachineName is the host that produced the report.
	MachineName string

	// Entries are in registration order.
	Entries []Entry
}

type reportJSON struct {
	Status        string      `json:"status"`
	TotalDuration string      `json:"totalDuration"`
	MachineName   string      `json:"machineName"`
	Results       []entryJSON `json:"results"`
}

type entryJSON struct {
	Name                string            `json:"name"`
	Status              string            `json:"status"`
	Description         string            `json:"description"`
	Duration            string            `json:"duration"`
	Tags                []string          `json:"tags"`
	Exception           *string           `json:"exception"`
	ExceptionStackTrace *string           `json:"exceptionStackTrace"`
	Data                map[string]string `json:"data"`
}

// MarshalJSON encodes the report in its wire form. Durations use the
// [d.]hh:mm:ss.fffffff layout and data values are stringified.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Status:        r.Status.String(),
		TotalDuration: FormatDuration(r.TotalDuration),
		MachineName:   r.MachineName,
		Results:       make([]entryJSON, 0, len(r.Entries)),
	}

	for _, e := range r.Entries {
		ej := entryJSON{
			Name:        e.Name,
			Status:      e.Result.Status.String(),
			Description: e.Result.Message,
			Duration:    FormatDuration(e.Result.Duration),
			Tags:        e.Tags,
			Data:        stringify(e.Result.Details),
		}
		if ej.Tags == nil {
			ej.Tags = []string{}
		}
		if e.Result.Error != nil {
			msg := e.Result.Error.Error()
			ej.Exception = &msg
		}
		if e.Result.Stack != "" {
			stack := e.Result.Stack
			ej.ExceptionStackTrace = &stack
		}
		out.Results = append(out.Results, ej)
	}

	return json.Marshal(out)
}

// FormatDuration renders d as [d.]hh:mm:ss.fffffff, seven fractional digits
// of 100ns ticks.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	ticks := int64(d / 100)
	frac := ticks % 1e7
	secs := ticks / 1e7
	days := secs / 86400
	secs %= 86400

	clock := fmt.Sprintf("%02d:%02d:%02d.%07d", secs/3600, (secs/60)%60, secs%60, frac)
	if days > 0 {
		return fmt.Sprintf("%s%d.%s", sign, days, clock)
	}
	return sign + clock
}

func stringify(details map[string]any) map[string]string {
	out := make(map[string]string, len(details))
	for k, v := range details {
		switch v := v.(type) {
		case string:
			out[k] = v
		case time.Time:
			out[k] = v.UTC().Format(time.RFC3339)
		case fmt.Stringer:
			out[k] = v.String()
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

package dataset

import (
	"github.com/ulleunglab/transport-dashboard/internal/notice"
)

// LoadSMS reads the 울릉알리미 SMS export into notice messages. Rows
// whose sms_resDate cell cannot be parsed are dropped; when the export
// has no date column at all, messages load with a zero timestamp and
// the year filters downstream exclude them.
func (l *Loader) LoadSMS(path string) []notice.Message {
	tbl, err := readTable(path)
	if err != nil {
		l.log.Warn("sms export unreadable", "file", path, "error", err)
		return nil
	}
	msgIdx := tbl.col("sms_msg")
	if msgIdx < 0 {
		if !tbl.empty() {
			l.log.Warn("sms export missing sms_msg column", "file", path)
		}
		return nil
	}
	dateIdx := tbl.col("sms_resDate")

	var out []notice.Message
	for _, row := range tbl.rows {
		m := notice.Message{Text: get(row, msgIdx)}
		if dateIdx >= 0 {
			ts, ok := parseDate(get(row, dateIdx))
			if !ok {
				continue
			}
			m.ReceivedAt = ts
		}
		out = append(out, m)
	}
	return out
}

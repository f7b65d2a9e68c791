package storage

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Record is a redacted, human-readable view of one stored key. Message
// bodies and password hashes never appear in it.
type Record struct {
	Key      string
	Kind     string
	EntityID string
	At       time.Time
	Detail   string
}

// Prefixes lists the key spaces an operator can browse.
var Prefixes = []string{messagePrefix, inboxPrefix, userPrefix, emailPrefix, notePrefix, "meta:", "seq:"}

// Describe decodes the value stored under key. Unknown or undecodable
// values come back as RAW records with their size.
func Describe(key string, val []byte) Record {
	record := Record{Key: key, Kind: "RAW", Detail: fmt.Sprintf("%d bytes", len(val))}
	switch {
	case strings.HasPrefix(key, messagePrefix):
		m, err := DecodeMessage(val)
		if err != nil {
			return record
		}
		record.Kind, record.EntityID, record.At = "MESSAGE", m.ID, m.CreatedAt
		record.Detail = fmt.Sprintf("#%d %s -> %s, %d chars, read=%t",
			m.Seq, short(m.SenderID), short(m.ReceiverID), len([]rune(m.Body)), m.Read)
	case strings.HasPrefix(key, inboxPrefix):
		record.Kind, record.Detail = "INDEX", string(val)
	case strings.HasPrefix(key, userPrefix):
		a, err := decodeAccount(val)
		if err != nil {
			return record
		}
		record.Kind, record.EntityID = "USER", a.ID
		record.Detail = fmt.Sprintf("%s (%s)", a.Name, a.Role)
	case strings.HasPrefix(key, emailPrefix):
		record.Kind, record.EntityID = "EMAIL", string(val)
	case strings.HasPrefix(key, notePrefix):
		n, err := decodeCaseNote(val)
		if err != nil {
			return record
		}
		record.Kind, record.EntityID, record.At = "CASE_NOTE", n.ID, n.UpdatedAt
		record.Detail = fmt.Sprintf("survivor %s, counsellor %s, risk %s",
			short(n.SurvivorID), short(n.CounsellorID), n.RiskLevel)
	case key == clockKey && len(val) == 8:
		record.Kind = "CLOCK"
		record.At = time.Unix(0, int64(binary.BigEndian.Uint64(val))).UTC()
		record.Detail = record.At.Format(time.RFC3339Nano)
	}
	return record
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

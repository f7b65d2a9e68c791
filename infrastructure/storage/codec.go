package storage

import (
	"fmt"
	"safe-space/domain"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in protobuf wire format. Field numbers below are part of
// the on-disk format: never reuse or renumber them.
const (
	messageID protowire.Number = iota + 1
	messageSeq
	messageSender
	messageReceiver
	messageBody
	messageCreatedAt
	messageRead
)

const (
	accountID protowire.Number = iota + 1
	accountName
	accountEmail
	accountHash
	accountRole
	accountCreatedAt
)

const (
	noteID protowire.Number = iota + 1
	noteSurvivor
	noteCounsellor
	noteText
	noteRisk
	noteCreatedAt
	noteUpdatedAt
)

type field struct {
	num protowire.Number
	typ protowire.Type
	str string
	u64 uint64
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	return appendVarint(b, num, protowire.EncodeZigZag(t.UnixNano()))
}

func decodeTime(v uint64) time.Time {
	return time.Unix(0, protowire.DecodeZigZag(v)).UTC()
}

// walk decodes b field by field. Unknown fields are skipped so older
// binaries can read records written by newer ones.
func walk(b []byte, fn func(f field)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			s, m := protowire.ConsumeString(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			fn(field{num: num, typ: typ, str: s})
			b = b[m:]
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			fn(field{num: num, typ: typ, u64: v})
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			b = b[m:]
		}
	}
	return nil
}

func EncodeMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, messageID, m.ID)
	b = appendVarint(b, messageSeq, m.Seq)
	b = appendString(b, messageSender, m.SenderID)
	b = appendString(b, messageReceiver, m.ReceiverID)
	b = appendString(b, messageBody, m.Body)
	b = appendTime(b, messageCreatedAt, m.CreatedAt)
	b = appendVarint(b, messageRead, protowire.EncodeBool(m.Read))
	return b
}

func DecodeMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	err := walk(b, func(f field) {
		switch f.num {
		case messageID:
			m.ID = f.str
		case messageSeq:
			m.Seq = f.u64
		case messageSender:
			m.SenderID = f.str
		case messageReceiver:
			m.ReceiverID = f.str
		case messageBody:
			m.Body = f.str
		case messageCreatedAt:
			m.CreatedAt = decodeTime(f.u64)
		case messageRead:
			m.Read = protowire.DecodeBool(f.u64)
		}
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}

func encodeAccount(a domain.Account) []byte {
	var b []byte
	b = appendString(b, accountID, a.ID)
	b = appendString(b, accountName, a.Name)
	b = appendString(b, accountEmail, a.Email)
	b = appendString(b, accountHash, a.PasswordHash)
	b = appendString(b, accountRole, string(a.Role))
	b = appendTime(b, accountCreatedAt, a.CreatedAt)
	return b
}

func decodeAccount(b []byte) (domain.Account, error) {
	var a domain.Account
	err := walk(b, func(f field) {
		switch f.num {
		case accountID:
			a.ID = f.str
		case accountName:
			a.Name = f.str
		case accountEmail:
			a.Email = f.str
		case accountHash:
			a.PasswordHash = f.str
		case accountRole:
			a.Role = domain.Role(f.str)
		case accountCreatedAt:
			a.CreatedAt = decodeTime(f.u64)
		}
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("decode account: %w", err)
	}
	return a, nil
}

func encodeCaseNote(n domain.CaseNote) []byte {
	var b []byte
	b = appendString(b, noteID, n.ID)
	b = appendString(b, noteSurvivor, n.SurvivorID)
	b = appendString(b, noteCounsellor, n.CounsellorID)
	b = appendString(b, noteText, n.Notes)
	b = appendString(b, noteRisk, string(n.RiskLevel))
	b = appendTime(b, noteCreatedAt, n.CreatedAt)
	b = appendTime(b, noteUpdatedAt, n.UpdatedAt)
	return b
}

func decodeCaseNote(b []byte) (domain.CaseNote, error) {
	var n domain.CaseNote
	err := walk(b, func(f field) {
		switch f.num {
		case noteID:
			n.ID = f.str
		case noteSurvivor:
			n.SurvivorID = f.str
		case noteCounsellor:
			n.CounsellorID = f.str
		case noteText:
			n.Notes = f.str
		case noteRisk:
			n.RiskLevel = domain.RiskLevel(f.str)
		case noteCreatedAt:
			n.CreatedAt = decodeTime(f.u64)
		case noteUpdatedAt:
			n.UpdatedAt = decodeTime(f.u64)
		}
	})
	if err != nil {
		return domain.CaseNote{}, fmt.Errorf("decode case note: %w", err)
	}
	return n, nil
}

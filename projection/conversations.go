// Package projection builds read-side views from the message log.
// Handles grouping and ordering of conversations.
// Never writes to the store.
package projection

import (
	"safe-space/domain"
	"slices"

	"github.com/samber/lo"
)

// Conversations folds every message involving self into one summary per
// counterpart, most recently active first. Profiles are left empty.
func Conversations(self string, messages []domain.Message) []domain.ConversationSummary {
	groups := lo.GroupBy(messages, func(m domain.Message) string {
		return m.Counterpart(self)
	})

	summaries := lo.MapToSlice(groups, func(counterpart string, thread []domain.Message) domain.ConversationSummary {
		last := thread[0]
		for _, m := range thread[1:] {
			if last.Before(m) {
				last = m
			}
		}
		return domain.ConversationSummary{
			CounterpartID: counterpart,
			LastMessage:   last,
			UnreadCount: lo.CountBy(thread, func(m domain.Message) bool {
				return m.IsUnreadFor(self)
			}),
		}
	})

	slices.SortFunc(summaries, func(a, b domain.ConversationSummary) int {
		switch {
		case b.LastMessage.Before(a.LastMessage):
			return -1
		case a.LastMessage.Before(b.LastMessage):
			return 1
		}
		return 0
	})
	return summaries
}

// UnreadTotal sums the unread counts of summaries.
func UnreadTotal(summaries []domain.ConversationSummary) int {
	return lo.SumBy(summaries, func(s domain.ConversationSummary) int {
		return s.UnreadCount
	})
}

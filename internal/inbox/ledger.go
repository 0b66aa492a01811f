// Inboxsync - Real-time Notification Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inboxsync

package inbox

import "github.com/tomtom215/inboxsync/internal/models"

type origin uint8

const (
	originPage origin = iota
	originPush
)

// entry is a notification plus where it came from. pushMark orders push
// arrivals so a page-1 response can tell which pushes it already covers.
type entry struct {
	models.Notification
	origin   origin
	pushMark uint64
}

// ledger is the reconciled inbox window. It does no locking and no I/O;
// the Store serializes every call.
//
// Merges never flip a notification from read back to unread. Only the
// rollback of a failed mark-as-read does that.
type ledger struct {
	entries     []entry
	unread      int
	currentPage int
	hasMore     bool

	pushSeq uint64

	page1Issued  uint64
	page1Applied uint64

	// countIssued versions every authoritative count source, fetches at
	// issue time and pushes at arrival. countApplied is the version of the
	// value currently held.
	countIssued  uint64
	countApplied uint64
}

func (l *ledger) index(id string) int {
	for i := range l.entries {
		if l.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *ledger) readSet() map[string]bool {
	read := make(map[string]bool)
	for i := range l.entries {
		if l.entries[i].IsRead {
			read[l.entries[i].ID] = true
		}
	}
	return read
}

func (l *ledger) decrementUnread() {
	if l.unread > 0 {
		l.unread--
	}
}

// receive applies a pushed notification. A new id is prepended and bumps
// the counter when unread. A known id is replaced in place without touching
// the counter. Returns true when the notification was inserted.
func (l *ledger) receive(n models.Notification) bool {
	if i := l.index(n.ID); i >= 0 {
		if l.entries[i].IsRead {
			n.IsRead = true
		}
		l.entries[i].Notification = n
		return false
	}

	l.pushSeq++
	l.entries = append([]entry{{Notification: n, origin: originPush, pushMark: l.pushSeq}}, l.entries...)
	if !n.IsRead {
		l.unread++
	}
	return true
}

// issueCount hands out the version for an unread-count fetch.
func (l *ledger) issueCount() uint64 {
	l.countIssued++
	return l.countIssued
}

// setCount applies an authoritative count unless a newer one is held.
func (l *ledger) setCount(count int, version uint64) bool {
	if version <= l.countApplied {
		return false
	}
	l.unread = count
	l.countApplied = version
	return true
}

// pushCount applies a pushed count. Pushes are always the newest source.
func (l *ledger) pushCount(count int) {
	l.setCount(count, l.issueCount())
}

// markRead marks id read and decrements the counter if it was unread.
// Absent ids change nothing.
func (l *ledger) markRead(id string) bool {
	i := l.index(id)
	if i < 0 || l.entries[i].IsRead {
		return false
	}
	l.entries[i].IsRead = true
	l.decrementUnread()
	return true
}

// markUnread flips id back to unread. Used only by rollbacks.
func (l *ledger) markUnread(id string) bool {
	i := l.index(id)
	if i < 0 || !l.entries[i].IsRead {
		return false
	}
	l.entries[i].IsRead = false
	return true
}

// markAllRead marks everything read, zeroes the counter and returns the ids
// that were unread along with the previous counter.
func (l *ledger) markAllRead() ([]string, int) {
	var flipped []string
	for i := range l.entries {
		if !l.entries[i].IsRead {
			l.entries[i].IsRead = true
			flipped = append(flipped, l.entries[i].ID)
		}
	}
	prev := l.unread
	l.unread = 0
	return flipped, prev
}

// replaceHead applies a latest-snapshot: the pushed head becomes list and
// the paged tail is kept, deduplicated by id. The counter is unaffected.
func (l *ledger) replaceHead(list []models.Notification) {
	read := l.readSet()
	seen := make(map[string]bool, len(list))
	out := make([]entry, 0, len(list)+len(l.entries))

	for _, n := range list {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if read[n.ID] {
			n.IsRead = true
		}
		l.pushSeq++
		out = append(out, entry{Notification: n, origin: originPush, pushMark: l.pushSeq})
	}
	for _, e := range l.entries {
		if e.origin == originPage && !seen[e.ID] {
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	l.entries = out
}

// issuePage1 tags a page-1 request. The returned mark is the last push
// the request can possibly reflect.
func (l *ledger) issuePage1() (seq, mark uint64) {
	l.page1Issued++
	return l.page1Issued, l.pushSeq
}

// applyPage1 merges a page-1 response. Pushes newer than mark that the page
// does not contain stay on top; older pushes it does not contain are gone.
// Beyond page 1 the already loaded tail is kept. Responses older than the last applied page 1 are discarded.
func (l *ledger) applyPage1(seq, mark uint64, page *models.Page) bool {
	if seq <= l.page1Applied {
		return false
	}
	l.page1Applied = seq

	inPage := make(map[string]bool, len(page.Notifications))
	for i := range page.Notifications {
		inPage[page.Notifications[i].ID] = true
	}

	read := l.readSet()
	seen := make(map[string]bool, len(l.entries)+len(page.Notifications))
	out := make([]entry, 0, len(l.entries)+len(page.Notifications))

	for _, e := range l.entries {
		if e.origin == originPush && e.pushMark > mark && !inPage[e.ID] && !seen[e.ID] {
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	for _, n := range page.Notifications {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if read[n.ID] {
			n.IsRead = true
		}
		out = append(out, entry{Notification: n, origin: originPage})
	}

	if l.currentPage > 1 {
		for _, e := range l.entries {
			if e.origin == originPush && e.pushMark <= mark {
				continue
			}
			if !seen[e.ID] {
				seen[e.ID] = true
				out = append(out, e)
			}
		}
	} else {
		l.currentPage = 1
		l.hasMore = page.HasNext
	}

	l.entries = out
	return true
}

// applyPage appends page n when it directly follows the loaded window.
// Any other page number is stale.
func (l *ledger) applyPage(n int, page *models.Page) bool {
	if n != l.currentPage+1 {
		return false
	}
	for _, notification := range page.Notifications {
		if l.index(notification.ID) >= 0 {
			continue
		}
		l.entries = append(l.entries, entry{Notification: notification, origin: originPage})
	}
	l.currentPage = n
	l.hasMore = page.HasNext
	return true
}

// removal remembers where a deleted entry sat so a rollback can put it back.
type removal struct {
	entry     entry
	index     int
	prevID    string
	nextID    string
	wasUnread bool
}

// remove deletes id and decrements the counter if it was unread.
func (l *ledger) remove(id string) (removal, bool) {
	i := l.index(id)
	if i < 0 {
		return removal{}, false
	}

	r := removal{entry: l.entries[i], index: i, wasUnread: !l.entries[i].IsRead}
	if i > 0 {
		r.prevID = l.entries[i-1].ID
	}
	if i+1 < len(l.entries) {
		r.nextID = l.entries[i+1].ID
	}

	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	if r.wasUnread {
		l.decrementUnread()
	}
	return r, true
}

// restore re-inserts a removed entry after its old predecessor, else before
// its old successor, else at its old index clamped to the window. Nothing
// happens if the id is back already.
func (l *ledger) restore(r removal) bool {
	if l.index(r.entry.ID) >= 0 {
		return false
	}

	pos := -1
	if r.prevID != "" {
		if i := l.index(r.prevID); i >= 0 {
			pos = i + 1
		}
	}
	if pos < 0 && r.nextID != "" {
		if i := l.index(r.nextID); i >= 0 {
			pos = i
		}
	}
	if pos < 0 {
		pos = r.index
		if pos > len(l.entries) {
			pos = len(l.entries)
		}
	}

	l.entries = append(l.entries, entry{})
	copy(l.entries[pos+1:], l.entries[pos:])
	l.entries[pos] = r.entry
	return true
}

func (l *ledger) notifications() []models.Notification {
	out := make([]models.Notification, len(l.entries))
	for i := range l.entries {
		out[i] = l.entries[i].Notification
	}
	return out
}

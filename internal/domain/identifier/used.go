package identifier

// UsedIDs is the set of unique ids already taken in the current session.
// It is rebuilt from the loaded product list and is not safe for concurrent use:
// one request or one CLI run owns it.
type UsedIDs struct {
	ids map[string]struct{}
}

// NewUsedIDs builds a set from raw ids. Values are stored formatted.
func NewUsedIDs(ids ...string) *UsedIDs {
	u := &UsedIDs{ids: make(map[string]struct{}, len(ids))}
	for _, v := range ids {
		u.Add(v)
	}
	return u
}

// Add records id as taken. Empty ids are ignored.
func (u *UsedIDs) Add(id string) {
	if f := FormatUniqueID(id); f != "" {
		u.ids[f] = struct{}{}
	}
}

// Remove frees id.
func (u *UsedIDs) Remove(id string) {
	delete(u.ids, FormatUniqueID(id))
}

// Has reports whether id is taken.
func (u *UsedIDs) Has(id string) bool {
	_, ok := u.ids[FormatUniqueID(id)]
	return ok
}

// Len returns the number of taken ids.
func (u *UsedIDs) Len() int {
	return len(u.ids)
}

